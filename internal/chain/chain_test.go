package chain

import (
	"reflect"
	"testing"
)

func TestChainEnumerationOrder(t *testing.T) {
	// spec scenario 2: length_LC=3, target_level=2, L=11
	c := New(3, 2, 11)
	want := [][]int{
		{0, 0, 2}, {0, 1, 1}, {0, 2, 0}, {1, 0, 1}, {1, 1, 0}, {2, 0, 0},
	}
	var got [][]int
	if !c.Valid() {
		t.Fatal("expected first composition to be valid")
	}
	got = append(got, append([]int(nil), c.Levels()...))
	for c.Next() {
		got = append(got, append([]int(nil), c.Levels()...))
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("chain sequence = %v, want %v", got, want)
	}
}

func TestChainSumsAndBounds(t *testing.T) {
	for _, tl := range []int{0, 1, 5, 10, 20} {
		c := New(4, tl, 6) // L=6, L-1=5
		for c.Valid() {
			sum := 0
			for _, l := range c.Levels() {
				if l < 0 || l > 5 {
					t.Fatalf("level %d out of [0,5]", l)
				}
				sum += l
			}
			if sum != tl {
				t.Fatalf("chain sum = %d, want target_level %d", sum, tl)
			}
			if !c.Next() {
				break
			}
		}
	}
}

func TestChainResetFirstComposition(t *testing.T) {
	// target_level <= L-1: first composition is (0,...,0,target_level)
	c := New(3, 2, 11)
	want := []int{0, 0, 2}
	if !reflect.DeepEqual(c.Levels(), want) {
		t.Errorf("first composition = %v, want %v", c.Levels(), want)
	}
}

func TestChainNoCompositionAboveUpperBound(t *testing.T) {
	c := New(2, 100, 3) // (L-1)*lengthLC = 2*2 = 4, target 100 way above
	if c.Valid() {
		t.Error("expected no composition when target_level exceeds (L-1)*lengthLC")
	}
}

func TestLengthFormula(t *testing.T) {
	if got := Length(3, 2, true); got != 3 {
		t.Errorf("Length(3,2,true) = %d, want 3 (spec §8 scenario 1)", got)
	}
}
