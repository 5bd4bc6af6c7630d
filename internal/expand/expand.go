// Package expand implements the candidate expander (component G): given a
// level chain and a target password length, it walks the sorted indices to
// emit every realising string exactly once, in the order in which equal-
// level codes were discovered during the index sweep (spec §4.4, §4.5,
// §9). Grounded on enumerate_password / enumerate_password_recursivly /
// handle_createdPassword in enumNG.c.
package expand

import (
	"github.com/omenforge/omen/internal/model"
	"github.com/omenforge/omen/internal/sortedindex"
)

// Emit is called once per candidate with its bytes. The slice is reused
// across calls — copy it if retaining beyond the call. Return false to
// short-circuit the recursion (budget exhausted or full crack, spec §4.4's
// "budget hook").
type Emit func(candidate []byte) bool

// Expander walks a Model's sorted indices to realise level chains into
// candidate strings.
type Expander struct {
	m           *model.Model
	idx         *sortedindex.Indices
	prefixShift int // |Σ|^(n-2), used to slide the rolling prefix window
}

// New builds an Expander bound to m and its current sorted indices. Callers
// must build a fresh Expander after any boost apply/revert, since Indices
// must be rebuilt (spec §3 Lifecycle).
func New(m *model.Model, idx *sortedindex.Indices) *Expander {
	shift := 1
	for i := 0; i < m.N-2; i++ {
		shift *= m.Alphabet.Size()
	}
	return &Expander{m: m, idx: idx, prefixShift: shift}
}

// Expand realises every candidate string of the given length for the given
// chain, optionally checking EP at termination. chain must have length
// chain.Length(length, m.N, epUsed). Stops early if emit returns false.
func (e *Expander) Expand(chainLevels []int, length int, epUsed bool, emit Emit) {
	n := e.m.N
	buf := make([]byte, length)
	positions := make([]int, n-1)
	ipLevel := chainLevels[0]
	for _, p := range e.idx.IP.Codes[ipLevel] {
		e.m.Alphabet.Decode(p, n-1, positions)
		for i, pos := range positions {
			buf[i] = e.m.Alphabet.Char(pos)
		}
		if !e.recurse(buf, n-1, p, chainLevels, length, epUsed, emit) {
			return
		}
	}
}

// recurse places characters at positions [cur, length) given the rolling
// prefix code of the last n-1 characters already written, then emits at
// cur == length. Returns false to propagate a stop request.
func (e *Expander) recurse(buf []byte, cur, prefixCode int, chainLevels []int, length int, epUsed bool, emit Emit) bool {
	n := e.m.N
	if cur == length {
		if epUsed {
			epLevel := chainLevels[len(chainLevels)-1]
			if e.m.EP[prefixCode] != epLevel {
				return true // not a match for this chain; skip, keep enumerating
			}
		}
		return emit(buf)
	}
	level := chainLevels[cur-(n-2)]
	alphaSize := e.m.Alphabet.Size()
	for _, q := range e.idx.CP.Extensions(level, prefixCode) {
		buf[cur] = e.m.Alphabet.Char(q)
		nextPrefix := (prefixCode%e.prefixShift)*alphaSize + q
		if !e.recurse(buf, cur+1, nextPrefix, chainLevels, length, epUsed, emit) {
			return false
		}
	}
	return true
}
