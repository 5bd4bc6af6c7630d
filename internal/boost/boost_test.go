package boost

import (
	"reflect"
	"testing"

	"github.com/omenforge/omen/internal/alphabet"
	"github.com/omenforge/omen/internal/model"
)

func newTestModel(t *testing.T) *model.Model {
	t.Helper()
	a, err := alphabet.New("ab")
	if err != nil {
		t.Fatal(err)
	}
	return &model.Model{
		N:        2,
		MaxLevel: 5,
		Alphabet: a,
		IP:       []int{2, 3},
		CP:       []int{1, 2, 3, 4},
		EP:       []int{1, 1},
		LN:       make([]int, model.MaxPasswordLength),
	}
}

func TestApplyThenRevertRestoresBitForBit(t *testing.T) {
	m := newTestModel(t)
	snap := Snap(m)

	if err := Apply(m, []string{"aba"}, []int{1}, true); err != nil {
		t.Fatal(err)
	}
	// sanity: something actually changed
	if reflect.DeepEqual(m.IP, snap.IP) && reflect.DeepEqual(m.CP, snap.CP) {
		t.Fatal("expected Apply to mutate at least one array")
	}

	Restore(m, snap)
	if !reflect.DeepEqual(m.IP, snap.IP) {
		t.Errorf("IP not restored: got %v want %v", m.IP, snap.IP)
	}
	if !reflect.DeepEqual(m.CP, snap.CP) {
		t.Errorf("CP not restored: got %v want %v", m.CP, snap.CP)
	}
	if !reflect.DeepEqual(m.EP, snap.EP) {
		t.Errorf("EP not restored: got %v want %v", m.EP, snap.EP)
	}
}

func TestApplyClampsAtZero(t *testing.T) {
	m := newTestModel(t)
	if err := Apply(m, []string{"aba"}, []int{100}, true); err != nil {
		t.Fatal(err)
	}
	for _, v := range m.IP {
		if v < 0 {
			t.Errorf("IP level went negative: %d", v)
		}
	}
	for _, v := range m.CP {
		if v < 0 {
			t.Errorf("CP level went negative: %d", v)
		}
	}
}
