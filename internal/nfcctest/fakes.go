package nfcctest

import (
	"errors"
	"sync"
	"time"

	"github.com/lmrt-project/lmrt-go/pkg/engine"
	"github.com/lmrt-project/lmrt-go/pkg/wire"
)

// ErrInjected is the default error returned by failing fakes.
var ErrInjected = errors.New("injected failure")

// Timer is a manual timer. Tests fire tokens explicitly.
type Timer struct {
	mu      sync.Mutex
	Pending map[engine.TimerToken]time.Duration
	Starts  map[engine.TimerToken]int
}

// NewTimer returns a timer with nothing pending.
func NewTimer() *Timer {
	return &Timer{
		Pending: make(map[engine.TimerToken]time.Duration),
		Starts:  make(map[engine.TimerToken]int),
	}
}

func (t *Timer) Start(delay time.Duration, token engine.TimerToken) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Pending[token] = delay
	t.Starts[token]++
}

func (t *Timer) Stop(token engine.TimerToken) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.Pending, token)
}

// Armed reports whether token is pending.
func (t *Timer) Armed(token engine.TimerToken) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.Pending[token]
	return ok
}

// Fire delivers token to e if it is pending and reports whether it was.
func (t *Timer) Fire(e *engine.Engine, token engine.TimerToken) bool {
	t.mu.Lock()
	_, ok := t.Pending[token]
	delete(t.Pending, token)
	t.mu.Unlock()
	if ok {
		e.HandleTimeout(token)
	}
	return ok
}

// Capacity reports fixed controller limits.
type Capacity struct {
	TableSize int
	Payload   int
}

func (c Capacity) MaxTableSize() int      { return c.TableSize }
func (c Capacity) MaxCommandPayload() int { return c.Payload }

// RF is a settable RF discovery state.
type RF struct {
	On bool
}

func (r *RF) Discovering() bool { return r.On }

// Allocator fails once Fail is set.
type Allocator struct {
	Fail  bool
	Calls int
}

func (a *Allocator) Alloc(size int) []byte {
	a.Calls++
	if a.Fail {
		return nil
	}
	return make([]byte, size)
}

// Recorder collects events.
type Recorder struct {
	mu     sync.Mutex
	Events []engine.Event
}

func (r *Recorder) HandleEvent(ev engine.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, ev)
}

// OfType returns the recorded events of the given type.
func (r *Recorder) OfType(typ engine.EventType) []engine.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []engine.Event
	for _, ev := range r.Events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}

// Last returns the last event of the given type and whether there was one.
func (r *Recorder) Last(typ engine.EventType) (engine.Event, bool) {
	evs := r.OfType(typ)
	if len(evs) == 0 {
		return engine.Event{}, false
	}
	return evs[len(evs)-1], true
}

// Reset forgets every recorded event.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = nil
}

var (
	_ engine.Transport = (*Transport)(nil)
	_ engine.Timer     = (*Timer)(nil)
	_ engine.Capacity  = Capacity{}
	_ engine.RFState   = (*RF)(nil)
	_ engine.Allocator = (*Allocator)(nil)
	_ engine.Observer  = (*Recorder)(nil)
)

// EE describes one NFCEE for Harness.Enable.
type EE struct {
	ID         wire.TargetID
	Status     wire.EEStatus
	Interfaces []wire.Interface
}
