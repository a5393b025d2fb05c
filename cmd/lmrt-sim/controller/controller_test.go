package controller

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmrt-project/lmrt-go/pkg/engine"
	"github.com/lmrt-project/lmrt-go/pkg/service"
	"github.com/lmrt-project/lmrt-go/pkg/wire"
)

type waiter struct {
	mu   sync.Mutex
	seen map[engine.EventType]int
}

func (w *waiter) handle(ev engine.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.seen[ev.Type]++
}

func (w *waiter) count(typ engine.EventType) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.seen[typ]
}

func startSim(t *testing.T, cfg Config) (*Controller, *service.Service, *waiter) {
	t.Helper()
	ctl := New(cfg)
	engCfg := engine.DefaultConfig()
	engCfg.RF = ctl
	engCfg.Debounce = 10 * time.Millisecond
	svc := service.New(ctl, ctl, service.DefaultConfig(), engCfg)
	ctl.Attach(svc)

	w := &waiter{seen: make(map[engine.EventType]int)}
	svc.OnEvent(w.handle)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, svc.Start(ctx))
	go ctl.Run(ctx)
	t.Cleanup(func() {
		cancel()
		_ = svc.Stop()
	})
	return ctl, svc, w
}

func enableAndWait(t *testing.T, svc *service.Service, w *waiter) {
	t.Helper()
	require.NoError(t, svc.Do(context.Background(), func(e *engine.Engine) error {
		e.SetActive(true)
		return e.Enable()
	}))
	require.Eventually(t, func() bool { return w.count(engine.EventEnableComplete) == 1 },
		time.Second, 5*time.Millisecond)
}

func TestControllerDiscoveryAndRouting(t *testing.T) {
	ctl, svc, w := startSim(t, Config{
		TableSize:  720,
		MaxPayload: wire.MaxRoutingTLVSize,
		Latency:    time.Millisecond,
		EEs: []engine.DiscoverNotification{
			{ID: 0x86, Status: wire.EEStatusEnabled, Interfaces: []wire.Interface{wire.InterfaceAPDU}},
		},
	})
	enableAndWait(t, svc, w)

	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "INIT_DONE", snap.State)
	require.Len(t, snap.Targets, 2)
	assert.Equal(t, uint8(0x86), snap.Targets[0].ID)

	require.NoError(t, svc.Do(context.Background(), func(e *engine.Engine) error {
		return e.AddAID(0x86, []byte{0xA0, 0x00, 0x00, 0x00, 0x03}, wire.PowerSwitchOn, 0)
	}))
	hasAID := func() bool {
		table := ctl.Table()
		return len(table) > 0 && table[0].Tag == wire.TagAID
	}
	require.Eventually(t, hasAID, time.Second, 5*time.Millisecond)
	assert.Equal(t, wire.TargetID(0x86), ctl.Table()[0].Target)
}

func TestControllerModeSet(t *testing.T) {
	ctl, svc, w := startSim(t, Config{
		TableSize:  720,
		MaxPayload: wire.MaxRoutingTLVSize,
		EEs: []engine.DiscoverNotification{
			{ID: 0x86, Status: wire.EEStatusDisabled, Interfaces: []wire.Interface{wire.InterfaceAPDU}},
		},
	})
	enableAndWait(t, svc, w)

	require.NoError(t, svc.Do(context.Background(), func(e *engine.Engine) error {
		return e.ModeSet(0x86, true)
	}))
	require.Eventually(t, func() bool { return w.count(engine.EventModeSet) == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, ctl.Active(0x86))
}

func TestControllerRejectsUnknownModeSet(t *testing.T) {
	ctl := New(Config{})
	ctl.Attach(nopPoster{})
	require.NoError(t, ctl.ModeSet(0x99, true))
	assert.False(t, ctl.Active(0x99))
}

func TestControllerNotAttached(t *testing.T) {
	ctl := New(Config{})
	assert.ErrorIs(t, ctl.Discover(true), ErrNotAttached)
}

func TestControllerRejectsMalformedRouting(t *testing.T) {
	ctl := New(Config{})
	ctl.Attach(nopPoster{})
	err := ctl.SendSetRouting(wire.SetRoutingCommand{Count: 1, Entries: []byte{0x02, 0x01}})
	assert.ErrorIs(t, err, wire.ErrMalformedEntry)
	assert.Zero(t, ctl.Updates())
}

func TestControllerChunkedTable(t *testing.T) {
	ctl := New(Config{})
	ctl.Attach(nopPoster{})

	tech := wire.Entry{Tag: wire.TagTechnology, Target: 0x86, Power: wire.PowerSwitchOn, Value: []byte{0x00}}
	proto := wire.Entry{Tag: wire.TagProtocol, Target: 0x00, Power: wire.PowerSwitchOn, Value: []byte{0x05}}

	require.NoError(t, ctl.SendSetRouting(wire.SetRoutingCommand{More: true, Count: 1, Entries: tech.AppendTo(nil)}))
	assert.Zero(t, ctl.Updates())
	require.NoError(t, ctl.SendSetRouting(wire.SetRoutingCommand{Count: 1, Entries: proto.AppendTo(nil)}))
	assert.Equal(t, 1, ctl.Updates())
	assert.Equal(t, []wire.Entry{tech, proto}, ctl.Table())
}

func TestControllerCapacity(t *testing.T) {
	ctl := New(Config{TableSize: 300, MaxPayload: 64})
	assert.Equal(t, 300, ctl.MaxTableSize())
	assert.Equal(t, 64, ctl.MaxCommandPayload())

	assert.False(t, ctl.Discovering())
	ctl.SetDiscovering(true)
	assert.True(t, ctl.Discovering())
	require.NoError(t, ctl.DeactivateToIdle())
	assert.False(t, ctl.Discovering())
}

type nopPoster struct{}

func (nopPoster) Post(func(*engine.Engine)) error { return nil }
