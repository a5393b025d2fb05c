package lmrt

import (
	"errors"
	"slices"

	"github.com/lmrt-project/lmrt-go/pkg/wire"
)

// Unclaimed is the id of a slot allocated ahead of its discovery
// notification.
const Unclaimed wire.TargetID = 0xFF

// ErrTableFull is returned when no ECB slot is left.
var ErrTableFull = errors.New("ecb table full")

// Table is the fixed-capacity ECB table plus the device host ECB.
type Table struct {
	dh  *ECB
	ees []*ECB
	max int
}

// NewTable creates a table with room for maxEE execution environments.
func NewTable(maxEE int) *Table {
	dh := NewECB(wire.DeviceHost)
	dh.Status = StatusActive
	return &Table{
		dh:  dh,
		ees: make([]*ECB, 0, maxEE),
		max: maxEE,
	}
}

// DeviceHost returns the device host ECB.
func (t *Table) DeviceHost() *ECB {
	return t.dh
}

// Capacity returns the number of EE slots.
func (t *Table) Capacity() int {
	return t.max
}

// Len returns the number of allocated EE slots.
func (t *Table) Len() int {
	return len(t.ees)
}

// EEs returns the allocated EE slots in table order. The slice must not be
// modified.
func (t *Table) EEs() []*ECB {
	return t.ees
}

// Find returns the ECB for id, the device host included.
func (t *Table) Find(id wire.TargetID) *ECB {
	if id == wire.DeviceHost {
		return t.dh
	}
	if id == Unclaimed {
		return nil
	}
	for _, e := range t.ees {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// Allocate appends a new ECB for id.
func (t *Table) Allocate(id wire.TargetID) (*ECB, error) {
	if len(t.ees) >= t.max {
		return nil, ErrTableFull
	}
	e := NewECB(id)
	t.ees = append(t.ees, e)
	return e, nil
}

// Claim returns the first unclaimed slot, assigning it id, or allocates a
// new one.
func (t *Table) Claim(id wire.TargetID) (*ECB, error) {
	for _, e := range t.ees {
		if e.ID == Unclaimed {
			e.ID = id
			return e, nil
		}
	}
	return t.Allocate(id)
}

// Reserve allocates up to n unclaimed slots.
func (t *Table) Reserve(n int) int {
	added := 0
	for added < n && len(t.ees) < t.max {
		t.ees = append(t.ees, NewECB(Unclaimed))
		added++
	}
	return added
}

// Compact drops every EE slot for which drop returns true, shifting later
// slots into the gap. Relative order is preserved. It returns the dropped
// ECBs.
func (t *Table) Compact(drop func(*ECB) bool) []*ECB {
	var dropped []*ECB
	t.ees = slices.DeleteFunc(t.ees, func(e *ECB) bool {
		if drop(e) {
			dropped = append(dropped, e)
			return true
		}
		return false
	})
	return dropped
}

// Active returns the Active EEs in table order.
func (t *Table) Active() []*ECB {
	var out []*ECB
	for _, e := range t.ees {
		if e.Status == StatusActive {
			out = append(out, e)
		}
	}
	return out
}

// All returns every EE followed by the device host.
func (t *Table) All() []*ECB {
	out := make([]*ECB, 0, len(t.ees)+1)
	out = append(out, t.ees...)
	return append(out, t.dh)
}

// IsActive reports whether id routes traffic: the device host or an Active
// EE.
func (t *Table) IsActive(id wire.TargetID) bool {
	e := t.Find(id)
	return e != nil && e.Counted()
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	c := &Table{dh: t.dh.Clone(), ees: make([]*ECB, len(t.ees), t.max), max: t.max}
	for i, e := range t.ees {
		c.ees[i] = e.Clone()
	}
	return c
}

// Equal reports whether two tables hold identical state.
func (t *Table) Equal(o *Table) bool {
	return t.max == o.max && t.dh.Equal(o.dh) && slices.EqualFunc(t.ees, o.ees, (*ECB).Equal)
}
