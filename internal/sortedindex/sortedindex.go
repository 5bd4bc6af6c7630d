// Package sortedindex builds level-sorted views of a model's IP and CP
// arrays so the expander can fetch, in O(1), every extension of a given
// prefix at a given level. Grounded on the reference implementation's
// sort_ngrams and the growable per-bucket vectors it builds (enumNG.c),
// held as Go slices (IP: one slice per level; CP: one map per level from
// prefix to a slice of positions) rather than linked nodes.
package sortedindex

import "github.com/omenforge/omen/internal/model"

// IPIndex groups (n-1)-gram codes by level: IPIndex.Codes[level] is the
// growable sequence of codes p with IP[p] == level, in discovery order.
type IPIndex struct {
	Codes [][]int
}

// BuildIP sweeps ip once, bucketing each code by its (already-clamped)
// level.
func BuildIP(ip []int, maxLevel int) *IPIndex {
	idx := &IPIndex{Codes: make([][]int, maxLevel)}
	for code, level := range ip {
		idx.Codes[level] = append(idx.Codes[level], code)
	}
	return idx
}

// CPIndex groups n-gram extensions by (level, prefix): for level ℓ and
// prefix (mGram) p, Buckets[ℓ][p] is the growable sequence of single
// character positions q with CP[p*|Σ|+q] == ℓ, in discovery order.
type CPIndex struct {
	alphabetSize int
	Buckets      []map[int][]int // Buckets[level][prefix] = []position
}

// BuildCP sweeps cp once. cp is indexed by p*alphabetSize+q; prefix codes
// range over [0, len(cp)/alphabetSize).
func BuildCP(cp []int, alphabetSize, maxLevel int) *CPIndex {
	idx := &CPIndex{
		alphabetSize: alphabetSize,
		Buckets:      make([]map[int][]int, maxLevel),
	}
	for i := range idx.Buckets {
		idx.Buckets[i] = make(map[int][]int)
	}
	for code, level := range cp {
		prefix := code / alphabetSize
		q := code % alphabetSize
		idx.Buckets[level][prefix] = append(idx.Buckets[level][prefix], q)
	}
	return idx
}

// Extensions returns the positions q such that CP[prefix*|Σ|+q] == level,
// in discovery order. A nil/empty result means no extension at that level.
func (c *CPIndex) Extensions(level, prefix int) []int {
	return c.Buckets[level][prefix]
}

// Indices bundles the sorted IP and CP views derived from a Model. Rebuilt,
// never mutated, after every boost apply/revert (spec §3 Lifecycle, §4.6).
type Indices struct {
	IP *IPIndex
	CP *CPIndex
}

// Build constructs both sorted views from m's current IP/CP arrays.
func Build(m *model.Model) *Indices {
	return &Indices{
		IP: BuildIP(m.IP, m.MaxLevel),
		CP: BuildCP(m.CP, m.Alphabet.Size(), m.MaxLevel),
	}
}
