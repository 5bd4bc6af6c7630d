// Package simulate implements the attack simulator (component I): O(1)
// membership/crack accounting for a testing set, plus the graph-file
// progress side effect from spec §4.7. Grounded on attackSimulator.h/.c
// (simAtt_generateTestingSet, simAtt_checkCandidate,
// simAtt_checkCandidate for the boosting path, print_simulatedAttackResults).
package simulate

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/omenforge/omen/internal/alphabet"
	"github.com/omenforge/omen/internal/errs"
	"github.com/omenforge/omen/internal/model"
	"github.com/omenforge/omen/internal/textio"
)

type target struct {
	count   uint64
	cracked bool
}

// Simulator holds the testing-set multiset and crack accounting state.
type Simulator struct {
	targets        map[string]*target
	order          []string // insertion order, for per-target boosting drivers
	sizeTestingSet uint64
	crackedCount   uint64
	crackedLengths []uint64 // index length-1
}

// LoadFromReader reads a testing-set file (one password per line;
// identical lines form a multiset, spec §6) into a Simulator. Used
// directly by tests and by callers that already have the testing-set
// content in hand; production callers go through LoadValidated instead,
// which also checks every line against the model's alphabet.
func LoadFromReader(r io.Reader) (*Simulator, error) {
	s := &Simulator{
		targets:        make(map[string]*target),
		crackedLengths: make([]uint64, model.MaxPasswordLength),
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		t, ok := s.targets[line]
		if !ok {
			t = &target{}
			s.targets[line] = t
			s.order = append(s.order, line)
		}
		t.count++
		s.sizeTestingSet++
	}
	if err := sc.Err(); err != nil {
		return nil, errs.New(errs.KindIO, "simulate.Load", err)
	}
	return s, nil
}

// LoadValidated is LoadFromReader plus grapheme-cluster-aware alphabet
// validation (internal/textio): every grapheme cluster outside a produces
// a WarnUnknownChar
// (spec §7) instead of silently matching nothing, so an operator can see
// why a testing-set entry can never be cracked by this model. The
// offending entries are still inserted into the multiset — they just can
// never be reached by any candidate this alphabet can produce.
func LoadValidated(path string, a *alphabet.Alphabet) (*Simulator, []errs.Warning, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errs.New(errs.KindIO, "simulate.LoadValidated", err)
	}
	defer f.Close()
	return loadValidatedFromReader(f, a)
}

func loadValidatedFromReader(r io.Reader, a *alphabet.Alphabet) (*Simulator, []errs.Warning, error) {
	s := &Simulator{
		targets:        make(map[string]*target),
		crackedLengths: make([]uint64, model.MaxPasswordLength),
	}
	var warnings []errs.Warning
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if line == "" {
			continue
		}
		warnings = append(warnings, textio.ValidateAgainstAlphabet(line, lineNo, a)...)
		t, ok := s.targets[line]
		if !ok {
			t = &target{}
			s.targets[line] = t
			s.order = append(s.order, line)
		}
		t.count++
		s.sizeTestingSet++
	}
	if err := sc.Err(); err != nil {
		return nil, nil, errs.New(errs.KindIO, "simulate.LoadValidated", err)
	}
	return s, warnings, nil
}

// SizeOfTestingSet returns the total multiset cardinality.
func (s *Simulator) SizeOfTestingSet() uint64 { return s.sizeTestingSet }

// CrackedCount returns the sum of counts of cracked targets.
func (s *Simulator) CrackedCount() uint64 { return s.crackedCount }

// FullyCracked reports whether every target has been cracked.
func (s *Simulator) FullyCracked() bool {
	return s.sizeTestingSet > 0 && s.crackedCount == s.sizeTestingSet
}

// CheckCandidate implements simAtt_checkCandidate: on a first-time hit it
// marks the target cracked and returns true; repeat hits on an already-
// cracked target return false, as does a miss.
func (s *Simulator) CheckCandidate(candidate string, length int) bool {
	t, ok := s.targets[candidate]
	if !ok || t.cracked {
		return false
	}
	t.cracked = true
	s.crackedCount += t.count
	if length >= 1 && length <= len(s.crackedLengths) {
		s.crackedLengths[length-1] += t.count
	}
	return true
}

// CheckCandidateBoost is CheckCandidate for the per-target boosting driver:
// a hit removes the entry outright, since boosting assumes exactly one
// live target at a time (spec §4.7).
func (s *Simulator) CheckCandidateBoost(candidate string, length int) bool {
	t, ok := s.targets[candidate]
	if !ok || t.cracked {
		return false
	}
	t.cracked = true
	s.crackedCount += t.count
	if length >= 1 && length <= len(s.crackedLengths) {
		s.crackedLengths[length-1] += t.count
	}
	delete(s.targets, candidate)
	return true
}

// Targets returns the testing-set entries in file order, for the per-target
// boosting driver (internal/driver) which applies one hint line per target
// in sequence.
func (s *Simulator) Targets() []string {
	return append([]string(nil), s.order...)
}

// ProgressSink writes the (attempts, ratio) and (attempts, last_length)
// graph samples described in spec §4.7, sampling every outputCycle
// attempts where outputCycle = max(1, attemptsMax/100).
type ProgressSink struct {
	crackedW    *bufio.Writer
	lengthW     *bufio.Writer
	outputCycle uint64
}

// NewProgressSink wraps the two graph-file writers.
func NewProgressSink(crackedW, lengthW io.Writer, attemptsMax uint64) *ProgressSink {
	cycle := attemptsMax / 100
	if cycle < 1 {
		cycle = 1
	}
	return &ProgressSink{
		crackedW:    bufio.NewWriter(crackedW),
		lengthW:     bufio.NewWriter(lengthW),
		outputCycle: cycle,
	}
}

// Sample writes a graph sample if attempts lands on an output-cycle
// boundary or the testing set just became fully cracked. Returns true on
// the latter, signalling the driver to terminate (spec §4.7).
func (p *ProgressSink) Sample(attempts uint64, s *Simulator, lastLength int) bool {
	full := s.FullyCracked()
	if attempts%p.outputCycle != 0 && !full {
		return false
	}
	ratio := 0.0
	if s.sizeTestingSet > 0 {
		ratio = float64(s.crackedCount) / float64(s.sizeTestingSet)
	}
	fmt.Fprintf(p.crackedW, "%d %f\n", attempts, ratio)
	fmt.Fprintf(p.lengthW, "%d %d\n", attempts, lastLength)
	return full
}

// Flush flushes both graph-file writers; cmd/omen defers this call so it
// runs on every exit path of a run (spec §4.8's flush guarantee).
func (p *ProgressSink) Flush() error {
	if err := p.crackedW.Flush(); err != nil {
		return errs.New(errs.KindIO, "simulate.ProgressSink.Flush", err)
	}
	if err := p.lengthW.Flush(); err != nil {
		return errs.New(errs.KindIO, "simulate.ProgressSink.Flush", err)
	}
	return nil
}
