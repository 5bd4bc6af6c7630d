package driver

import (
	"github.com/omenforge/omen/internal/model"
	"github.com/omenforge/omen/internal/sortedindex"
)

// indicesHolder owns the sorted IP/CP views and rebuilds them on demand
// after a boost apply/revert (spec §3 Lifecycle: "Sorted indices are
// derived from CP/IP/LN and must be rebuilt after any boost cycle").
type indicesHolder struct {
	idx *sortedindex.Indices
}

func newIndicesHolder(m *model.Model) *indicesHolder {
	return &indicesHolder{idx: sortedindex.Build(m)}
}

func (h *indicesHolder) current() *sortedindex.Indices { return h.idx }

func (h *indicesHolder) rebuild(m *model.Model) { h.idx = sortedindex.Build(m) }
