package nfcctest

import (
	"testing"

	"github.com/lmrt-project/lmrt-go/pkg/engine"
	"github.com/lmrt-project/lmrt-go/pkg/wire"
)

// Harness wires an Engine to fresh fakes.
type Harness struct {
	Engine    *engine.Engine
	Transport *Transport
	Timer     *Timer
	RF        *RF
	Alloc     *Allocator
	Events    *Recorder
}

// NewHarness builds an engine over the given capacity. configure may
// adjust the configuration before the engine is created.
func NewHarness(t testing.TB, capacity Capacity, configure func(*engine.Config)) *Harness {
	t.Helper()
	h := &Harness{
		Transport: NewTransport(),
		Timer:     NewTimer(),
		RF:        &RF{},
		Alloc:     &Allocator{},
		Events:    &Recorder{},
	}
	cfg := engine.DefaultConfig()
	cfg.RF = h.RF
	cfg.Allocator = h.Alloc
	if configure != nil {
		configure(&cfg)
	}
	h.Engine = engine.New(h.Transport, h.Timer, capacity, cfg)
	if _, err := h.Engine.Register(h.Events); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	return h
}

// Enable runs a complete enumeration announcing ees, then marks the
// system active.
func (h *Harness) Enable(t testing.TB, ees ...EE) {
	t.Helper()
	if err := h.Engine.Enable(); err != nil {
		t.Fatalf("Enable() error = %v", err)
	}
	h.Engine.HandleDiscoverResponse(wire.NCIStatusOK, len(ees))
	for _, ee := range ees {
		h.Engine.HandleDiscoverNotification(engine.DiscoverNotification{
			ID:         ee.ID,
			Status:     ee.Status,
			Interfaces: ee.Interfaces,
		})
	}
	if h.Engine.State() != engine.StateInitDone {
		t.Fatalf("State() = %s after enumeration, want INIT_DONE", h.Engine.State())
	}
	h.Engine.SetActive(true)
}

// Commit fires the routing timer and reports whether it was armed.
func (h *Harness) Commit() bool {
	return h.Timer.Fire(h.Engine, engine.TokenRouting)
}

// AckRouting answers every outstanding routing command with status.
func (h *Harness) AckRouting(status wire.NCIStatus) {
	for h.Engine.Outstanding() > 0 {
		h.Engine.HandleRoutingResponse(status)
	}
}
