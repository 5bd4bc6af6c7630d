// Package runlog is a structured JSONL trace of one enumeration run plus a
// renderer for the human-readable `log.txt` report. Nil-safe methods let
// callers hold a possibly-absent *Log without branching at every call
// site; a Registry owns one Log per run ID and its file handle.
package runlog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/omenforge/omen/internal/errs"
)

// Event is one JSONL line of the run trace.
type Event struct {
	Timestamp   time.Time `json:"ts"`
	Kind        string    `json:"kind"`
	Length      int       `json:"length,omitempty"`
	TargetLevel int       `json:"target_level,omitempty"`
	Attempts    uint64    `json:"attempts,omitempty"`
	Target      string    `json:"target,omitempty"`
	Text        string    `json:"text,omitempty"`
}

const (
	KindChainAdvanced  = "chain_advanced"
	KindBoostApplied   = "boost_applied"
	KindBoostReverted  = "boost_reverted"
	KindTargetCracked  = "target_cracked"
	KindCheckpointSync = "checkpoint_sync"
	KindWarning        = "warning"
	KindRunFinished    = "run_finished"
)

// Log is a single run's JSONL trace writer. A nil *Log is valid and every
// method on it is a no-op, so callers can pass a possibly-absent log
// without branching at every call site.
type Log struct {
	mu sync.Mutex
	f  *os.File
}

// Open creates (or truncates) the JSONL trace file at path.
func Open(path string) (*Log, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errs.New(errs.KindIO, "runlog.Open", err)
	}
	return &Log{f: f}, nil
}

// Write appends one event as a JSON line. Nil-safe: a nil *Log silently
// discards.
func (l *Log) Write(evt Event) {
	if l == nil {
		return
	}
	evt.Timestamp = evt.Timestamp.UTC()
	l.mu.Lock()
	defer l.mu.Unlock()
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	l.f.Write(data)
	l.f.Write([]byte("\n"))
}

// Close closes the underlying file. Nil-safe.
func (l *Log) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}

// Registry owns one Log per run ID through an Open/Get/Close lifecycle,
// so a process that might (in principle) run more than one enumeration
// never leaks file handles.
type Registry struct {
	mu   sync.Mutex
	logs map[string]*Log
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{logs: make(map[string]*Log)}
}

// Open opens a new Log for runID and registers it.
func (r *Registry) Open(runID, path string) (*Log, error) {
	l, err := Open(path)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.logs[runID] = l
	r.mu.Unlock()
	return l, nil
}

// Get returns the Log for runID, or nil (safe to call methods on) if none
// was opened.
func (r *Registry) Get(runID string) *Log {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.logs[runID]
}

// Close closes and forgets the Log for runID.
func (r *Registry) Close(runID string) error {
	r.mu.Lock()
	l := r.logs[runID]
	delete(r.logs, runID)
	r.mu.Unlock()
	return l.Close()
}

// Report is the data rendered into log.txt by RenderReport, assembled by
// the driver after a run completes. It mirrors print_settings_enumNG /
// print_report_enumNG / print_log from enumNG.c.
type Report struct {
	RunID          string
	Alphabet       string
	NGram          int
	MaxLevel       int
	Discipline     string
	IgnoreEP       bool
	MaxAttempts    uint64
	AttemptsTotal  uint64
	CrackedCount   uint64
	SizeTestingSet uint64
	CreatedLengths []uint64 // index length-1
	FinalState     string
}

// RenderReport writes the settings block, per-length histogram, and
// results block to w.
func RenderReport(w io.Writer, r Report) error {
	fmt.Fprintf(w, "=== omen run %s ===\n", r.RunID)
	fmt.Fprintf(w, "alphabet: %s\n", r.Alphabet)
	fmt.Fprintf(w, "ngram: %d\n", r.NGram)
	fmt.Fprintf(w, "maxLevel: %d\n", r.MaxLevel)
	fmt.Fprintf(w, "discipline: %s\n", r.Discipline)
	fmt.Fprintf(w, "ignoreEP: %v\n", r.IgnoreEP)
	fmt.Fprintf(w, "maxAttempts: %d\n", r.MaxAttempts)
	fmt.Fprintln(w, "--- created passwords by length ---")
	for i, c := range r.CreatedLengths {
		if c == 0 {
			continue
		}
		fmt.Fprintf(w, "length %2d: %d\n", i+1, c)
	}
	fmt.Fprintln(w, "--- results ---")
	fmt.Fprintf(w, "attempts: %d\n", r.AttemptsTotal)
	if r.SizeTestingSet > 0 {
		fmt.Fprintf(w, "cracked: %d / %d (%.2f%%)\n", r.CrackedCount, r.SizeTestingSet,
			100*float64(r.CrackedCount)/float64(r.SizeTestingSet))
	}
	fmt.Fprintf(w, "final state: %s\n", r.FinalState)
	return nil
}
