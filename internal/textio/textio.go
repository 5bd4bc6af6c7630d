// Package textio validates operator-supplied text (hints, testing-set
// entries) grapheme-cluster by grapheme-cluster rather than byte-by-byte,
// so a multi-byte UTF-8 character is reported as a single unknown
// character instead of being silently mis-split across alphabet lookups
// (spec §7 WarnUnknownChar; see SPEC_FULL.md domain stack).
package textio

import (
	"github.com/clipperhouse/uax29/v2/graphemes"

	"github.com/omenforge/omen/internal/alphabet"
	"github.com/omenforge/omen/internal/errs"
)

// Graphemes splits s into its Unicode grapheme clusters.
func Graphemes(s string) []string {
	var out []string
	for g := range graphemes.FromString(s).All() {
		out = append(out, g)
	}
	return out
}

// ValidateAgainstAlphabet checks that every grapheme cluster of line is a
// single byte present in a. It returns one warning per offending cluster (training-time WarnUnknownChar, spec §7) rather
// than aborting — the caller decides whether to skip the line.
func ValidateAgainstAlphabet(line string, lineNo int, a *alphabet.Alphabet) []errs.Warning {
	var warnings []errs.Warning
	for _, g := range Graphemes(line) {
		if len(g) != 1 {
			warnings = append(warnings, errs.Warning{Kind: "unknown_char", Line: lineNo, Text: g})
			continue
		}
		if _, ok := a.Pos(g[0]); !ok {
			warnings = append(warnings, errs.Warning{Kind: "unknown_char", Line: lineNo, Text: g})
		}
	}
	return warnings
}
