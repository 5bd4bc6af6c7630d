package simulate

import (
	"strings"
	"testing"

	"github.com/omenforge/omen/internal/alphabet"
)

func TestCheckCandidateOnlyCountsFirstHit(t *testing.T) {
	s, err := LoadFromReader(strings.NewReader("abc\nabc\nxyz\n"))
	if err != nil {
		t.Fatal(err)
	}
	if s.SizeOfTestingSet() != 3 {
		t.Fatalf("size = %d, want 3", s.SizeOfTestingSet())
	}
	if !s.CheckCandidate("abc", 3) {
		t.Error("first hit on abc should return true")
	}
	if s.CheckCandidate("abc", 3) {
		t.Error("second hit on already-cracked abc should return false")
	}
	if s.CheckCandidate("missing", 3) {
		t.Error("miss should return false")
	}
	if s.CrackedCount() != 2 {
		t.Errorf("crackedCount = %d, want 2 (abc's multiplicity)", s.CrackedCount())
	}
}

func TestCheckCandidateBoostRemovesEntry(t *testing.T) {
	s, err := LoadFromReader(strings.NewReader("abc\n"))
	if err != nil {
		t.Fatal(err)
	}
	if !s.CheckCandidateBoost("abc", 3) {
		t.Error("expected first hit to return true")
	}
	if s.CheckCandidateBoost("abc", 3) {
		t.Error("entry should have been removed after first hit")
	}
}

func TestFullyCracked(t *testing.T) {
	s, err := LoadFromReader(strings.NewReader("abc\n"))
	if err != nil {
		t.Fatal(err)
	}
	if s.FullyCracked() {
		t.Fatal("should not be fully cracked before any hit")
	}
	s.CheckCandidate("abc", 3)
	if !s.FullyCracked() {
		t.Error("should be fully cracked after the only target is hit")
	}
}

func TestLoadValidatedWarnsOnOutOfAlphabetEntry(t *testing.T) {
	a, err := alphabet.New("abc")
	if err != nil {
		t.Fatal(err)
	}
	s, warnings, err := loadValidatedFromReader(strings.NewReader("abc\nxyz\n"), a)
	if err != nil {
		t.Fatal(err)
	}
	if s.SizeOfTestingSet() != 2 {
		t.Fatalf("size = %d, want 2 (both lines are still inserted)", s.SizeOfTestingSet())
	}
	if len(warnings) == 0 {
		t.Fatal("expected at least one warning for \"xyz\" (y, z outside {a,b,c})")
	}
	for _, w := range warnings {
		if w.Line != 2 {
			t.Errorf("warning %+v should be attributed to line 2", w)
		}
	}
}

func TestLoadValidatedCleanFileProducesNoWarnings(t *testing.T) {
	a, err := alphabet.New("abc")
	if err != nil {
		t.Fatal(err)
	}
	_, warnings, err := loadValidatedFromReader(strings.NewReader("abc\ncab\n"), a)
	if err != nil {
		t.Fatal(err)
	}
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
}
