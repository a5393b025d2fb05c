package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmrt-project/lmrt-go/internal/nfcctest"
	"github.com/lmrt-project/lmrt-go/pkg/engine"
	"github.com/lmrt-project/lmrt-go/pkg/wire"
)

type eventLog struct {
	mu     sync.Mutex
	events []engine.Event
}

func (l *eventLog) handle(ev engine.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *eventLog) types() []engine.EventType {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]engine.EventType, 0, len(l.events))
	for _, ev := range l.events {
		out = append(out, ev.Type)
	}
	return out
}

func (l *eventLog) has(typ engine.EventType) bool {
	for _, t := range l.types() {
		if t == typ {
			return true
		}
	}
	return false
}

func indexOf(types []engine.EventType, typ engine.EventType) int {
	for i, t := range types {
		if t == typ {
			return i
		}
	}
	return -1
}

func startService(t *testing.T, engCfg engine.Config) (*Service, *nfcctest.Transport, *eventLog) {
	t.Helper()
	transport := nfcctest.NewTransport()
	svc := New(transport, nfcctest.Capacity{TableSize: 720, Payload: wire.MaxRoutingTLVSize}, DefaultConfig(), engCfg)
	events := &eventLog{}
	svc.OnEvent(events.handle)
	require.NoError(t, svc.Start(context.Background()))
	t.Cleanup(func() { _ = svc.Stop() })
	return svc, transport, events
}

func enable(t *testing.T, svc *Service) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, svc.Do(ctx, func(e *engine.Engine) error {
		if err := e.Enable(); err != nil {
			return err
		}
		e.HandleDiscoverResponse(wire.NCIStatusOK, 0)
		e.SetActive(true)
		return nil
	}))
}

func TestServiceLifecycle(t *testing.T) {
	svc := New(nfcctest.NewTransport(), nfcctest.Capacity{}, DefaultConfig(), engine.DefaultConfig())
	assert.Equal(t, StateIdle, svc.State())
	assert.ErrorIs(t, svc.Stop(), ErrNotStarted)
	assert.ErrorIs(t, svc.Post(func(*engine.Engine) {}), ErrNotStarted)

	require.NoError(t, svc.Start(context.Background()))
	assert.Equal(t, StateRunning, svc.State())
	assert.ErrorIs(t, svc.Start(context.Background()), ErrAlreadyStarted)

	require.NoError(t, svc.Stop())
	assert.Equal(t, StateStopped, svc.State())
	assert.ErrorIs(t, svc.Do(context.Background(), func(*engine.Engine) error { return nil }), ErrNotStarted)
}

func TestServiceDoReturnsEngineError(t *testing.T) {
	svc, _, _ := startService(t, engine.DefaultConfig())
	enable(t, svc)

	err := svc.Do(context.Background(), func(e *engine.Engine) error {
		return e.Enable()
	})
	assert.ErrorIs(t, err, engine.ErrSemantic)
}

func TestServiceDoHonorsContext(t *testing.T) {
	svc, _, _ := startService(t, engine.DefaultConfig())

	release := make(chan struct{})
	require.NoError(t, svc.Post(func(*engine.Engine) { <-release }))
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := svc.Do(ctx, func(*engine.Engine) error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestServiceEventsInOrder(t *testing.T) {
	svc, _, events := startService(t, engine.DefaultConfig())
	enable(t, svc)

	require.Eventually(t, func() bool {
		return events.has(engine.EventEnableComplete)
	}, time.Second, 5*time.Millisecond)

	got := events.types()
	require.NotEmpty(t, got)
	assert.Equal(t, engine.EventRegistered, got[0])
	assert.Less(t, indexOf(got, engine.EventRegistered), indexOf(got, engine.EventEnableComplete))
}

func TestServiceTimerDrivesCommit(t *testing.T) {
	cfg := engine.DefaultConfig()
	cfg.Debounce = 10 * time.Millisecond
	svc, _, events := startService(t, cfg)
	enable(t, svc)

	ctx := context.Background()
	require.NoError(t, svc.Do(ctx, func(e *engine.Engine) error {
		return e.AddAID(wire.DeviceHost, []byte{0xA0, 0x00, 0x01}, wire.PowerSwitchOn, 0)
	}))

	outstanding := func() int {
		var n int
		_ = svc.Do(ctx, func(e *engine.Engine) error {
			n = e.Outstanding()
			return nil
		})
		return n
	}
	require.Eventually(t, func() bool { return outstanding() == 1 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, svc.Post(func(e *engine.Engine) { e.HandleRoutingResponse(wire.NCIStatusOK) }))
	require.Eventually(t, func() bool { return outstanding() == 0 }, time.Second, 5*time.Millisecond)
	assert.False(t, events.has(engine.EventRoutingError))
}

func TestServiceSnapshot(t *testing.T) {
	svc, _, _ := startService(t, engine.DefaultConfig())
	enable(t, svc)

	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, svc.SessionID(), snap.SessionID)
	assert.Equal(t, "INIT_DONE", snap.State)
	assert.True(t, snap.Active)
}

func TestServiceStateString(t *testing.T) {
	tests := []struct {
		state ServiceState
		want  string
	}{
		{StateIdle, "IDLE"},
		{StateRunning, "RUNNING"},
		{StateStopping, "STOPPING"},
		{StateStopped, "STOPPED"},
		{ServiceState(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("ServiceState(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
