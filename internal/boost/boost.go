// Package boost implements the boosting / deboosting transform on level
// tables (component H): per-target level decrements derived from hints,
// with snapshot/apply/revert semantics. Grounded on boosting.c
// (read_alphas, read_hints, read_password, boost, deboost).
package boost

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/omenforge/omen/internal/errs"
	"github.com/omenforge/omen/internal/model"
)

// Snapshot is a full copy of the three boostable arrays, sufficient to
// restore a Model bit-for-bit after Revert (spec §4.6, §8 boost laws).
type Snapshot struct {
	IP []int
	CP []int
	EP []int
}

// Snap copies m's current IP/CP/EP arrays.
func Snap(m *model.Model) Snapshot {
	return Snapshot{
		IP: append([]int(nil), m.IP...),
		CP: append([]int(nil), m.CP...),
		EP: append([]int(nil), m.EP...),
	}
}

// Restore writes s back into m, undoing any Apply. Arrays are restored
// element-wise into m's existing slices, so anything sharing those slices
// sees the restored values; sortedindex.Indices keeps its own code lists
// rather than a reference to them, so callers must rebuild indices after
// Restore.
func Restore(m *model.Model, s Snapshot) {
	copy(m.IP, s.IP)
	copy(m.CP, s.CP)
	copy(m.EP, s.EP)
}

// Apply mutates m in place per spec §4.6: for each hint H[i] with decrement
// alpha[i], every n-gram window of H[i] has its CP level reduced (clamped
// at 0), the initial (n-1)-gram has its IP level reduced, and — if
// boostEP — the terminal (n-1)-gram has its EP level reduced. hints and
// alphas must have equal length; each hint must be at least n characters.
func Apply(m *model.Model, hints []string, alphas []int, boostEP bool) error {
	if len(hints) != len(alphas) {
		return errs.New(errs.KindConfig, "boost.Apply", errShape("hints and alphas length mismatch"))
	}
	n := m.N
	for i, h := range hints {
		if len(h) < n {
			return errs.New(errs.KindConfig, "boost.Apply", errShape("hint shorter than n-gram order"))
		}
		alpha := alphas[i]

		ipCode, ok := m.Alphabet.Encode([]byte(h[:n-1]))
		if !ok {
			return errs.New(errs.KindModel, "boost.Apply", errShape("hint contains a character outside the alphabet"))
		}
		m.IP[ipCode] = clampSub(m.IP[ipCode], alpha)

		if boostEP {
			epCode, ok := m.Alphabet.Encode([]byte(h[len(h)-(n-1):]))
			if !ok {
				return errs.New(errs.KindModel, "boost.Apply", errShape("hint contains a character outside the alphabet"))
			}
			m.EP[epCode] = clampSub(m.EP[epCode], alpha)
		}

		for w := 0; w+n <= len(h); w++ {
			code, ok := m.Alphabet.Encode([]byte(h[w : w+n]))
			if !ok {
				return errs.New(errs.KindModel, "boost.Apply", errShape("hint contains a character outside the alphabet"))
			}
			m.CP[code] = clampSub(m.CP[code], alpha)
		}
	}
	return nil
}

func clampSub(level, alpha int) int {
	v := level - alpha
	if v < 0 {
		return 0
	}
	return v
}

// ReadAlphas parses the `<alpha>` file: one whitespace-separated line of
// non-negative integers.
func ReadAlphas(path string) ([]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.New(errs.KindIO, "boost.ReadAlphas", err)
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	if !sc.Scan() {
		return nil, errs.New(errs.KindConfig, "boost.ReadAlphas", errShape("empty alpha file"))
	}
	fields := strings.Fields(sc.Text())
	out := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil || v < 0 {
			return nil, errs.New(errs.KindConfig, "boost.ReadAlphas", errShape("alpha values must be non-negative integers"))
		}
		out[i] = v
	}
	return out, nil
}

// ReadHints parses the `<hints>` file: one whitespace-separated line per
// target, the i-th line's fields corresponding to the i-th target in the
// testing-set file, each line's arity matching len(alphas).
func ReadHints(path string, arity int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.New(errs.KindIO, "boost.ReadHints", err)
	}
	defer f.Close()
	var out [][]string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r\n")
		if text == "" {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != arity {
			return nil, errs.New(errs.KindConfig, "boost.ReadHints", errShape("hint line arity does not match alpha count"))
		}
		out = append(out, fields)
	}
	if err := sc.Err(); err != nil {
		return nil, errs.New(errs.KindIO, "boost.ReadHints", err)
	}
	return out, nil
}

func errShape(msg string) error { return &shapeError{msg} }

type shapeError struct{ msg string }

func (e *shapeError) Error() string { return e.msg }
