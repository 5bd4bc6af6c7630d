package textio

import (
	"testing"

	"github.com/omenforge/omen/internal/alphabet"
)

func TestGraphemesSplitsMultiByteCharacterAsOneCluster(t *testing.T) {
	g := Graphemes("aé")
	if len(g) != 2 {
		t.Fatalf("Graphemes(\"aé\") = %v, want 2 clusters", g)
	}
	if g[0] != "a" {
		t.Errorf("first cluster = %q, want \"a\"", g[0])
	}
	if len(g[1]) == 1 {
		t.Errorf("second cluster %q should be the multi-byte é, not a single byte", g[1])
	}
}

func TestValidateAgainstAlphabetFlagsOutOfAlphabetASCII(t *testing.T) {
	a, err := alphabet.New("abc")
	if err != nil {
		t.Fatal(err)
	}
	warnings := ValidateAgainstAlphabet("abz", 3, a)
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1 (for 'z')", len(warnings))
	}
	if warnings[0].Text != "z" || warnings[0].Line != 3 || warnings[0].Kind != "unknown_char" {
		t.Errorf("warning = %+v", warnings[0])
	}
}

func TestValidateAgainstAlphabetFlagsMultiByteCluster(t *testing.T) {
	a, err := alphabet.New("abc")
	if err != nil {
		t.Fatal(err)
	}
	warnings := ValidateAgainstAlphabet("aé", 1, a)
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1 (for the multi-byte cluster)", len(warnings))
	}
}

func TestValidateAgainstAlphabetAcceptsCleanLine(t *testing.T) {
	a, err := alphabet.New("abc")
	if err != nil {
		t.Fatal(err)
	}
	if warnings := ValidateAgainstAlphabet("cab", 1, a); len(warnings) != 0 {
		t.Errorf("expected no warnings for a clean line, got %v", warnings)
	}
}
