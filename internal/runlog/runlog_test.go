package runlog

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteAppendsOneJSONLinePerEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.jsonl")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	l.Write(Event{Kind: KindChainAdvanced, Length: 8, TargetLevel: 3})
	l.Write(Event{Kind: KindTargetCracked, Target: "hunter2", Attempts: 99})
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	var first Event
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("unmarshal first line: %v", err)
	}
	if first.Kind != KindChainAdvanced || first.Length != 8 || first.TargetLevel != 3 {
		t.Errorf("first event = %+v", first)
	}
}

func TestNilLogIsSafeToUse(t *testing.T) {
	var l *Log
	l.Write(Event{Kind: KindWarning})
	if err := l.Close(); err != nil {
		t.Errorf("Close on nil *Log = %v, want nil", err)
	}
}

func TestRegistryOpenGetClose(t *testing.T) {
	r := NewRegistry()
	path := filepath.Join(t.TempDir(), "run.jsonl")
	l, err := r.Open("run-1", path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if r.Get("run-1") != l {
		t.Error("Get after Open should return the same *Log")
	}
	if r.Get("missing") != nil {
		t.Error("Get for an unregistered run ID should return nil, not panic")
	}
	if err := r.Close("run-1"); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if r.Get("run-1") != nil {
		t.Error("Get after Close should forget the run")
	}
}

func TestRenderReportSkipsZeroLengths(t *testing.T) {
	var buf bytes.Buffer
	err := RenderReport(&buf, Report{
		RunID: "run-1", Alphabet: "abc", NGram: 3, MaxLevel: 101,
		Discipline: "global", MaxAttempts: 1000, AttemptsTotal: 500,
		CrackedCount: 2, SizeTestingSet: 10,
		CreatedLengths: []uint64{0, 5, 0, 3},
		FinalState:     "DONE",
	})
	if err != nil {
		t.Fatalf("RenderReport: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "length  1:") || strings.Contains(out, "length  3:") {
		t.Error("zero-count lengths should not appear in the histogram")
	}
	if !strings.Contains(out, "length  2: 5") || !strings.Contains(out, "length  4: 3") {
		t.Errorf("expected non-zero lengths in histogram, got:\n%s", out)
	}
	if !strings.Contains(out, "cracked: 2 / 10") {
		t.Errorf("expected cracked ratio line, got:\n%s", out)
	}
}
