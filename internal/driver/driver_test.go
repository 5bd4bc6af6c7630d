package driver

import (
	"bytes"
	"context"
	"testing"

	"github.com/omenforge/omen/internal/alphabet"
	"github.com/omenforge/omen/internal/model"
	"github.com/omenforge/omen/internal/simulate"
)

func toyModel(t *testing.T) *model.Model {
	t.Helper()
	a, err := alphabet.New("ab")
	if err != nil {
		t.Fatal(err)
	}
	return &model.Model{
		N:        2,
		MaxLevel: 3,
		Alphabet: a,
		IP:       []int{2, 0},
		CP:       []int{0, 1, 1, 0},
		EP:       []int{0, 0},
		LN:       make([]int, model.MaxPasswordLength),
	}
}

func TestDriverBudgetStop(t *testing.T) {
	m := toyModel(t)
	var sink bytes.Buffer
	d := New("test-run", m, Config{
		Discipline:  DisciplineFixed,
		FixedLength: 3,
		MaxAttempts: 5,
	}, nil, nil, &sink, nil, nil)

	state, err := d.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if state != StateDone {
		t.Errorf("state = %v, want DONE", state)
	}
	if d.Attempts() != 5 {
		t.Errorf("attempts = %d, want 5", d.Attempts())
	}
}

func TestDriverFullCrack(t *testing.T) {
	m := toyModel(t)
	var sink bytes.Buffer

	// Build a testing set with the model's first emitted candidate ("bbb").
	var tsBuf bytes.Buffer
	tsBuf.WriteString("bbb\n")
	ts, err := simulate.LoadFromReader(&tsBuf)
	if err != nil {
		t.Fatal(err)
	}

	d := New("test-run", m, Config{
		Discipline:  DisciplineFixed,
		FixedLength: 3,
		MaxAttempts: 100,
	}, ts, nil, &sink, nil, nil)

	state, err := d.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if state != StateDone {
		t.Errorf("state = %v, want DONE", state)
	}
	if d.CrackedCount() != ts.SizeOfTestingSet() {
		t.Errorf("crackedCount = %d, want %d", d.CrackedCount(), ts.SizeOfTestingSet())
	}
}

func TestDriverBudgetLawMatchesCreatedLengths(t *testing.T) {
	m := toyModel(t)
	var sink bytes.Buffer
	d := New("test-run", m, Config{
		Discipline:  DisciplineFixed,
		FixedLength: 3,
		MaxAttempts: 20,
	}, nil, nil, &sink, nil, nil)

	d.Run(context.Background())

	var sum uint64
	for _, c := range d.CreatedLengths() {
		sum += c
	}
	if sum != d.Attempts() {
		t.Errorf("sum(createdLengths) = %d, want attemptsCount %d", sum, d.Attempts())
	}
}
