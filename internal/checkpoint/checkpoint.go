// Package checkpoint persists enumeration progress (attempt counter, length-
// scheduler state, cracked count, run ID). Nothing in this module fills
// State.SchedulerState or restarts a run from a loaded State; `omen run`
// writes one State after enumeration ends. A LevelDB handle backs an async write
// channel drained by a Run(ctx) loop, so checkpoint flushes never block
// the hot enumeration loop.
package checkpoint

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/omenforge/omen/internal/errs"
)

const stateKey = "state"

// State is the full resumable snapshot of a run.
type State struct {
	RunID          string `json:"run_id"`
	Attempts       uint64 `json:"attempts"`
	CrackedCount   uint64 `json:"cracked_count"`
	Discipline     string `json:"discipline"`
	SchedulerState []byte `json:"scheduler_state,omitempty"`
}

// Store wraps a LevelDB database under results/<run-id>/checkpoint/. Writes
// are queued and applied by Run; Write never blocks the caller.
type Store struct {
	db *leveldb.DB

	mu      sync.Mutex
	writeCh chan State
	closed  bool
}

// Open opens (creating if absent) the checkpoint database at dir.
func Open(dir string) (*Store, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, errs.New(errs.KindIO, "checkpoint.Open", err)
	}
	return &Store{db: db, writeCh: make(chan State, 16)}, nil
}

// Write enqueues a checkpoint write. Never blocks: if the queue (depth 16)
// is full, st itself is logged and discarded — a later Write will
// supersede it anyway since every write is a full-state snapshot.
func (s *Store) Write(st State) {
	select {
	case s.writeCh <- st:
	default:
		log.Printf("[checkpoint] write queue full, dropping intermediate checkpoint for run %s", st.RunID)
	}
}

// Run drains the write queue until ctx is cancelled, then persists every
// write still queued before returning.
func (s *Store) Run(ctx context.Context) {
	for {
		select {
		case st := <-s.writeCh:
			s.persist(st)
		case <-ctx.Done():
			s.drain()
			return
		}
	}
}

func (s *Store) drain() {
	for {
		select {
		case st := <-s.writeCh:
			s.persist(st)
		default:
			return
		}
	}
}

func (s *Store) persist(st State) {
	data, err := json.Marshal(st)
	if err != nil {
		log.Printf("[checkpoint] marshal failed for run %s: %v", st.RunID, err)
		return
	}
	if err := s.db.Put([]byte(stateKey), data, nil); err != nil {
		log.Printf("[checkpoint] put failed for run %s: %v", st.RunID, err)
	}
}

// Load reads the last persisted State, or (State{}, false, nil) if none
// exists yet.
func (s *Store) Load() (State, bool, error) {
	data, err := s.db.Get([]byte(stateKey), nil)
	if err == leveldb.ErrNotFound {
		return State{}, false, nil
	}
	if err != nil {
		return State{}, false, errs.New(errs.KindIO, "checkpoint.Load", err)
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, false, errs.New(errs.KindIO, "checkpoint.Load", err)
	}
	return st, true, nil
}

// Close flushes any queued writes synchronously and closes the database.
// Safe to call after Run has already returned.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.drain()
	if err := s.db.Close(); err != nil {
		return errs.New(errs.KindIO, "checkpoint.Close", err)
	}
	return nil
}
