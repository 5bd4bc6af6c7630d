package checkpoint

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestWriteThenRunPersistsLatestState(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ckpt")
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	s.Write(State{RunID: "run-1", Attempts: 10, CrackedCount: 1, Discipline: "global"})
	s.Write(State{RunID: "run-1", Attempts: 20, CrackedCount: 2, Discipline: "global"})

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}

	st, ok, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ok {
		t.Fatal("expected a persisted checkpoint")
	}
	if st.Attempts != 20 || st.CrackedCount != 2 {
		t.Errorf("Load() = %+v, want the last Write (attempts=20 cracked=2)", st)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestLoadWithoutAnyWriteReturnsNotFound(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ckpt")
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	_, ok, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ok {
		t.Error("expected no checkpoint to be found in a fresh database")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ckpt")
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
