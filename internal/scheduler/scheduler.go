// Package scheduler implements the length scheduler (component E): three
// disciplines (global, fixed, adaptive) that produce the next (length,
// target_level) ticket for the driver to hand to the expander. Grounded on
// run_enumeration / run_enumeration_fixedLenghts /
// run_enumeration_optimizedLengths in enumNG.c.
package scheduler

import (
	"sort"

	"github.com/omenforge/omen/internal/chain"
	"github.com/omenforge/omen/internal/model"
)

// Ticket is one (length, target_level) unit of work.
type Ticket struct {
	Length      int
	TargetLevel int
}

// Scheduler produces tickets until the candidate space for the configured
// discipline is exhausted.
type Scheduler interface {
	// Next returns the next ticket, or false once every length/level
	// combination this discipline covers has been exhausted.
	Next() (Ticket, bool)
	// Report feeds back the outcome of running a ticket (attempts emitted,
	// targets cracked during it) so the adaptive discipline can update its
	// per-length crack rate. Global and fixed ignore it.
	Report(t Ticket, attemptsDelta, crackedDelta uint64)
}

// effLevel computes L_eff(len) = (override ?? LN[len]) + floor(len*factor),
// per spec §3's sorted length index definition.
func effLevel(ln []int, length int, override *int, factor float64) int {
	base := ln[length]
	if override != nil {
		base = *override
	}
	return base + int(float64(length)*factor)
}

// lengthLCFunc computes the chain length for a given password length under
// the scheduler's fixed n-gram order and EP-usage flag.
type lengthLCFunc func(passwordLength int) int

func makeLengthLCFunc(n int, epUsed bool) lengthLCFunc {
	return func(p int) int { return chain.Length(p, n, epUsed) }
}

// --- Global discipline -----------------------------------------------------

// Global implements spec §4.5's default discipline: a single global_level
// counter, at each value of which every not-yet-saturated length with
// L_eff(len) <= global_level is issued a ticket, in ascending L_eff order
// (ties broken by ascending length, per spec §3).
type Global struct {
	maxLevel int
	lengthLC lengthLCFunc

	lengths []int // candidate password lengths, ascending L_eff then length
	eff     map[int]int
	done    map[int]bool

	globalLevel int
	cursor      int
}

// NewGlobal builds the global-discipline scheduler over password lengths
// [minLen, maxLen] (inclusive), n-gram order n, and the LN array. maxLen is
// clamped to len(ln)-1 — LN has exactly one entry per length in
// [0, MaxPasswordLength), so a caller-supplied maxLen at or beyond
// MaxPasswordLength would otherwise index past the end of ln.
func NewGlobal(ln []int, minLen, maxLen, n int, epUsed bool, maxLevel int, override *int, factor float64) *Global {
	if maxLen > len(ln)-1 {
		maxLen = len(ln) - 1
	}
	lengths := make([]int, 0, maxLen-minLen+1)
	eff := make(map[int]int)
	for l := minLen; l <= maxLen; l++ {
		lengths = append(lengths, l)
		eff[l] = effLevel(ln, l, override, factor)
	}
	sort.Slice(lengths, func(i, j int) bool {
		if eff[lengths[i]] != eff[lengths[j]] {
			return eff[lengths[i]] < eff[lengths[j]]
		}
		return lengths[i] < lengths[j]
	})
	return &Global{
		maxLevel: maxLevel,
		lengthLC: makeLengthLCFunc(n, epUsed),
		lengths:  lengths,
		eff:      eff,
		done:     make(map[int]bool),
	}
}

func (g *Global) allDone() bool {
	for _, l := range g.lengths {
		if !g.done[l] {
			return false
		}
	}
	return true
}

func (g *Global) Next() (Ticket, bool) {
	for {
		if g.allDone() {
			return Ticket{}, false
		}
		if g.cursor >= len(g.lengths) {
			g.globalLevel++
			g.cursor = 0
			continue
		}
		length := g.lengths[g.cursor]
		if g.done[length] {
			g.cursor++
			continue
		}
		eff := g.eff[length]
		if eff > g.globalLevel {
			// lengths are sorted ascending by eff: nothing further this pass
			g.globalLevel++
			g.cursor = 0
			continue
		}
		g.cursor++
		tl := g.globalLevel - eff
		upper := (g.maxLevel - 1) * g.lengthLC(length)
		if tl > upper {
			g.done[length] = true
			continue
		}
		return Ticket{Length: length, TargetLevel: tl}, true
	}
}

func (g *Global) Report(Ticket, uint64, uint64) {}

// --- Fixed discipline -------------------------------------------------------

// Fixed implements spec §4.5's fixed discipline: a single pinned password
// length, target_level incrementing from 0 until (L-1)*length_LC.
type Fixed struct {
	length      int
	targetLevel int
	upper       int
	exhausted   bool
}

func NewFixed(length, n int, epUsed bool, maxLevel int) *Fixed {
	return &Fixed{
		length: length,
		upper:  (maxLevel - 1) * chain.Length(length, n, epUsed),
	}
}

func (f *Fixed) Next() (Ticket, bool) {
	if f.exhausted || f.targetLevel > f.upper {
		f.exhausted = true
		return Ticket{}, false
	}
	t := Ticket{Length: f.length, TargetLevel: f.targetLevel}
	f.targetLevel++
	return t, true
}

func (f *Fixed) Report(Ticket, uint64, uint64) {}

// --- Adaptive discipline ----------------------------------------------------

// Adaptive implements spec §4.5's crack-rate-driven discipline: per-length
// level and recent crack rate, always advancing the length with the
// highest rate.
type Adaptive struct {
	n        int
	lengthLC lengthLCFunc
	maxLevel int

	lengths []int
	lvl     map[int]int
	rate    map[int]float64
	done    map[int]bool

	pending Ticket
	hasPend bool
}

// NewAdaptive builds the adaptive-discipline scheduler over password
// lengths [minLen, maxLen] (inclusive). maxLen is clamped to
// model.MaxPasswordLength-1, the largest length the model's LN array (and
// so the rest of the pipeline) can represent.
func NewAdaptive(minLen, maxLen, n int, epUsed bool, maxLevel int) *Adaptive {
	if maxLen > model.MaxPasswordLength-1 {
		maxLen = model.MaxPasswordLength - 1
	}
	a := &Adaptive{
		n:        n,
		lengthLC: makeLengthLCFunc(n, epUsed),
		maxLevel: maxLevel,
		lvl:      make(map[int]int),
		rate:     make(map[int]float64),
		done:     make(map[int]bool),
	}
	for l := minLen; l <= maxLen; l++ {
		a.lengths = append(a.lengths, l)
		if l >= n {
			a.rate[l] = 1.0
		} else {
			a.rate[l] = 0
			a.done[l] = true // shorter than n-gram order can never produce a chain
		}
	}
	sort.Ints(a.lengths)
	return a
}

func (a *Adaptive) allDone() bool {
	for _, l := range a.lengths {
		if !a.done[l] {
			return false
		}
	}
	return true
}

func (a *Adaptive) Next() (Ticket, bool) {
	if a.allDone() {
		return Ticket{}, false
	}
	best := -1
	bestRate := -1.0
	for _, l := range a.lengths {
		if a.done[l] {
			continue
		}
		if a.rate[l] > bestRate {
			bestRate = a.rate[l]
			best = l
		}
	}
	if best == -1 {
		return Ticket{}, false
	}
	t := Ticket{Length: best, TargetLevel: a.lvl[best]}
	a.pending = t
	a.hasPend = true
	return t, true
}

// Report updates the crack rate for the length just run and advances its
// level, marking it exhausted once that level reaches
// (L-1)*length_LC(length); the level equal to that bound is not issued.
func (a *Adaptive) Report(t Ticket, attemptsDelta, crackedDelta uint64) {
	rate := float64(crackedDelta) / float64(max64(1, attemptsDelta))
	if rate < 1e-7 {
		rate = 1e-7
	}
	if rate > 1-1e-6 {
		rate = 1 - 1e-6
	}
	a.rate[t.Length] = rate
	a.lvl[t.Length]++
	if a.lvl[t.Length] >= (a.maxLevel-1)*a.lengthLC(t.Length) {
		a.done[t.Length] = true
		a.rate[t.Length] = 0
	}
}

func max64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}
