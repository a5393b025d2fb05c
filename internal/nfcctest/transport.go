package nfcctest

import (
	"slices"
	"sync"

	"github.com/lmrt-project/lmrt-go/pkg/wire"
)

// Call records one non-routing transport call.
type Call struct {
	Op     string
	Target wire.TargetID
	Enable bool
	ConnID uint8
	Iface  wire.Interface
	Data   []byte
}

// Transport records every command handed to it.
type Transport struct {
	mu sync.Mutex

	// Routing holds copies of every accepted routing command.
	Routing []wire.SetRoutingCommand
	Calls   []Call

	// FailRouting makes SendSetRouting fail with Err; FailAfter > 0 lets
	// that many routing commands through first.
	FailRouting bool
	FailAfter   int
	FailOps     map[string]bool
	Err         error
}

// NewTransport returns an empty recording transport.
func NewTransport() *Transport {
	return &Transport{FailOps: make(map[string]bool), Err: ErrInjected}
}

func (t *Transport) record(c Call) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.FailOps[c.Op] {
		return t.Err
	}
	t.Calls = append(t.Calls, c)
	return nil
}

// SendSetRouting records a copy of cmd.
func (t *Transport) SendSetRouting(cmd wire.SetRoutingCommand) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.FailRouting {
		if t.FailAfter <= 0 {
			return t.Err
		}
		t.FailAfter--
	}
	cmd.Entries = slices.Clone(cmd.Entries)
	t.Routing = append(t.Routing, cmd)
	return nil
}

func (t *Transport) DeactivateToIdle() error {
	return t.record(Call{Op: "deactivate"})
}

func (t *Transport) Discover(enable bool) error {
	return t.record(Call{Op: "discover", Enable: enable})
}

func (t *Transport) ModeSet(id wire.TargetID, enable bool) error {
	return t.record(Call{Op: "modeset", Target: id, Enable: enable})
}

func (t *Transport) ConnCreate(id wire.TargetID, iface wire.Interface) error {
	return t.record(Call{Op: "conn_create", Target: id, Iface: iface})
}

func (t *Transport) ConnClose(connID uint8) error {
	return t.record(Call{Op: "conn_close", ConnID: connID})
}

func (t *Transport) SendData(connID uint8, data []byte) error {
	return t.record(Call{Op: "data", ConnID: connID, Data: slices.Clone(data)})
}

// Ops returns the recorded calls with the given op.
func (t *Transport) Ops(op string) []Call {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []Call
	for _, c := range t.Calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Entries parses every recorded routing command and returns the entries
// in send order.
func (t *Transport) Entries() ([]wire.Entry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []wire.Entry
	for _, cmd := range t.Routing {
		entries, err := wire.ParseEntries(cmd.Entries)
		if err != nil {
			return nil, err
		}
		out = append(out, entries...)
	}
	return out, nil
}

// Reset forgets every recorded command.
func (t *Transport) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Routing = nil
	t.Calls = nil
}
