// Package smoothing maps raw n-gram count arrays to discrete levels in
// [0, L) — component B of the enumerator. Only the additive (add-δ) family
// is implemented, matching the reference implementation's smoothing.c; the
// training pass that produces the count arrays themselves is out of scope
// (spec §1, §4.1) — this package starts from counts.
package smoothing

import "math"

// Kind names the array a count array represents. Conditional (CP) smoothing
// uses a different denominator than the other three.
type Kind int

const (
	KindIP Kind = iota // initial probability — non-conditional
	KindCP             // conditional probability
	KindEP             // end probability — non-conditional
	KindLN             // length — non-conditional
)

func (k Kind) String() string {
	switch k {
	case KindIP:
		return "IP"
	case KindCP:
		return "CP"
	case KindEP:
		return "EP"
	case KindLN:
		return "LN"
	default:
		return "?"
	}
}

// Params holds the per-kind δ (additive pseudocount) and levelAdjust factor
// k. Defaults per spec §4.1: δ=1 for IP/CP/EP, 0 for LN; k=250 for
// IP/EP/LN, k=2 for CP.
type Params struct {
	Delta       [4]int
	LevelAdjust [4]int
}

// DefaultParams returns the additive family's documented defaults.
func DefaultParams() Params {
	return Params{
		Delta:       [4]int{KindIP: 1, KindCP: 1, KindEP: 1, KindLN: 0},
		LevelAdjust: [4]int{KindIP: 250, KindCP: 2, KindEP: 250, KindLN: 250},
	}
}

// Apply maps a count array of the given kind to a level array of identical
// shape with values clamped to [0, maxLevel). alphabetSize is |Σ|; it is
// only used for CP's per-prefix grouping and for the |Σ|²·δ denominator of
// the non-conditional kinds (spec §4.1 — the unconditional case uses
// |Σ|² rather than |Σ|, preserved here for bit-compatibility with existing
// trained tables; see DESIGN.md).
func Apply(counts []int64, kind Kind, alphabetSize, maxLevel int, p Params) []int {
	levels := make([]int, len(counts))
	switch kind {
	case KindCP:
		applyConditional(counts, levels, alphabetSize, maxLevel, p.Delta[KindCP], p.LevelAdjust[KindCP])
	default:
		var total int64
		for _, c := range counts {
			total += c
		}
		applyNonConditional(counts, levels, alphabetSize, maxLevel, total, p.Delta[kind], p.LevelAdjust[kind])
	}
	return levels
}

// applyNonConditional implements smoo_additive_funct_nonConditional: the
// denominator adds |Σ|²·δ to the total count across the whole array.
func applyNonConditional(counts []int64, levels []int, alphabetSize, maxLevel int, total int64, delta, levelAdjust int) {
	denom := total + int64(alphabetSize)*int64(alphabetSize)*int64(delta)
	if denom == 0 {
		denom = 1
	}
	for i, c := range counts {
		p := float64(c+int64(delta)) / float64(denom)
		levels[i] = levelFromProbability(p, levelAdjust, maxLevel, 1e-10)
	}
}

// applyConditional implements smoo_additive_funct_conditional: the
// denominator is the sum over the |Σ| continuations sharing the same
// (n-1)-gram prefix, plus |Σ|·δ.
func applyConditional(counts []int64, levels []int, alphabetSize, maxLevel int, delta, levelAdjust int) {
	for pos := range counts {
		prefixBase := pos - pos%alphabetSize
		var sum int64
		for i := 0; i < alphabetSize; i++ {
			sum += counts[prefixBase+i]
		}
		denom := sum + int64(alphabetSize)*int64(delta)
		if denom == 0 {
			denom = 1
		}
		p := float64(counts[pos]+int64(delta)) / float64(denom)
		levels[pos] = levelFromProbability(p, levelAdjust, maxLevel, 1e-9)
	}
}

// levelFromProbability implements: level ← min(L-1, ⌊−ln(min(1, k·p+ε))⌋).
func levelFromProbability(p float64, levelAdjust, maxLevel int, eps float64) int {
	v := p*float64(levelAdjust) + eps
	if v > 1 {
		v = 1
	}
	level := int(math.Floor(-math.Log(v)))
	if level > maxLevel-1 {
		level = maxLevel - 1
	}
	if level < 0 {
		level = 0
	}
	return level
}
