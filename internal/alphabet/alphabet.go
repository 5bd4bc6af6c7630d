// Package alphabet implements the bijection between k-grams over an ordered
// character set Σ and integers in [0, |Σ|^k) — component A of the
// enumerator (see get_positionFromNGram / get_nGramFromPosition in the
// reference implementation's common.c).
package alphabet

import "fmt"

// Alphabet is an ordered, immutable sequence of distinct single-byte
// characters. Position of c in Σ is its index.
type Alphabet struct {
	chars []byte
	pos   [256]int16 // pos[c] = index of c in chars, or -1
}

// New builds an Alphabet from a string of distinct bytes. Order is
// significant — it fixes the k-gram encoding — and is preserved as given.
func New(chars string) (*Alphabet, error) {
	if len(chars) == 0 {
		return nil, fmt.Errorf("alphabet: empty character set")
	}
	if len(chars) > 256 {
		return nil, fmt.Errorf("alphabet: size %d exceeds maximum 256", len(chars))
	}
	a := &Alphabet{chars: []byte(chars)}
	for i := range a.pos {
		a.pos[i] = -1
	}
	for i, c := range a.chars {
		if a.pos[c] != -1 {
			return nil, fmt.Errorf("alphabet: duplicate character %q", c)
		}
		a.pos[c] = int16(i)
	}
	return a, nil
}

// Size returns |Σ|.
func (a *Alphabet) Size() int { return len(a.chars) }

// Pos returns the position of c in Σ and true, or (0, false) if c ∉ Σ.
func (a *Alphabet) Pos(c byte) (int, bool) {
	p := a.pos[c]
	if p < 0 {
		return 0, false
	}
	return int(p), true
}

// Char returns the character at position p. Panics if p is out of range —
// callers only ever derive p from the codec below, where it is total.
func (a *Alphabet) Char(p int) byte { return a.chars[p] }

// String returns the alphabet's characters in order.
func (a *Alphabet) String() string { return string(a.chars) }

// Encode computes the integer code of a k-gram: Σᵢ pos(cᵢ)·|Σ|^(k−1−i).
// The codec is total on Σ^k and injective. Returns false if any byte of
// gram is outside Σ.
func (a *Alphabet) Encode(gram []byte) (int, bool) {
	code := 0
	n := a.Size()
	for _, c := range gram {
		p, ok := a.Pos(c)
		if !ok {
			return 0, false
		}
		code = code*n + p
	}
	return code, true
}

// EncodeInts computes the integer code of a k-gram already given as alphabet
// positions (used by the expander, which threads position arrays rather
// than bytes through the recursion).
func (a *Alphabet) EncodeInts(positions []int) int {
	code := 0
	n := a.Size()
	for _, p := range positions {
		code = code*n + p
	}
	return code
}

// Decode is the inverse of Encode: it writes the k positions composing code
// into out (len(out) == k), most significant first.
func (a *Alphabet) Decode(code, k int, out []int) {
	n := a.Size()
	for i := k - 1; i >= 0; i-- {
		out[i] = code % n
		code /= n
	}
}

// DecodeString is Decode followed by a position→byte lookup, returning the
// k-gram as a string.
func (a *Alphabet) DecodeString(code, k int) string {
	positions := make([]int, k)
	a.Decode(code, k, positions)
	buf := make([]byte, k)
	for i, p := range positions {
		buf[i] = a.chars[p]
	}
	return string(buf)
}
