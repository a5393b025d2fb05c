package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmrt-project/lmrt-go/internal/nfcctest"
	"github.com/lmrt-project/lmrt-go/pkg/engine"
	"github.com/lmrt-project/lmrt-go/pkg/lmrt"
	"github.com/lmrt-project/lmrt-go/pkg/wire"
)

func targetIDs(infos []engine.TargetInfo) []wire.TargetID {
	out := make([]wire.TargetID, 0, len(infos))
	for _, info := range infos {
		out = append(out, info.ID)
	}
	return out
}

func TestEnableEnumeratesTargets(t *testing.T) {
	h := nfcctest.NewHarness(t, defaultCapacity, nil)
	h.Enable(t, ee(0x10), nfcctest.EE{ID: 0x20, Status: wire.EEStatusDisabled})

	assert.Equal(t, engine.StateInitDone, h.Engine.State())
	assert.Equal(t, []wire.TargetID{0x10, 0x20}, targetIDs(h.Engine.Targets()))
	assert.Equal(t, lmrt.StatusActive, h.Engine.ECB(0x10).Status)
	assert.Equal(t, lmrt.StatusInactive, h.Engine.ECB(0x20).Status)
	assert.False(t, h.Timer.Armed(engine.TokenDiscovery))

	ev, ok := h.Events.Last(engine.EventEnableComplete)
	require.True(t, ok)
	assert.Equal(t, wire.StatusOK, ev.Status)
	assert.False(t, ev.Partial)

	// No NewEE for targets found during enumeration.
	assert.Empty(t, h.Events.OfType(engine.EventNewEE))
}

func TestEnableTwiceIsSemanticError(t *testing.T) {
	h := nfcctest.NewHarness(t, defaultCapacity, nil)
	h.Enable(t)

	assert.ErrorIs(t, h.Engine.Enable(), engine.ErrSemantic)
}

func TestEnableTransportFailure(t *testing.T) {
	h := nfcctest.NewHarness(t, defaultCapacity, nil)
	h.Transport.FailOps["discover"] = true

	err := h.Engine.Enable()
	require.ErrorIs(t, err, engine.ErrTransport)
	assert.Equal(t, engine.StateDisabled, h.Engine.State())

	ev, ok := h.Events.Last(engine.EventEnableComplete)
	require.True(t, ok)
	assert.Equal(t, wire.StatusTransportFailure, ev.Status)
}

func TestDiscoveryTimeoutReportsPartial(t *testing.T) {
	h := nfcctest.NewHarness(t, defaultCapacity, nil)
	require.NoError(t, h.Engine.Enable())
	h.Engine.HandleDiscoverResponse(wire.NCIStatusOK, 2)
	h.Engine.HandleDiscoverNotification(engine.DiscoverNotification{ID: 0x10, Status: wire.EEStatusEnabled})
	assert.Equal(t, engine.StateInit, h.Engine.State())

	require.True(t, h.Timer.Fire(h.Engine, engine.TokenDiscovery))
	assert.Equal(t, engine.StateInitDone, h.Engine.State())

	enabled, ok := h.Events.Last(engine.EventEnableComplete)
	require.True(t, ok)
	assert.Equal(t, wire.StatusOK, enabled.Status)
	assert.True(t, enabled.Partial)

	done, ok := h.Events.Last(engine.EventDiscoveryComplete)
	require.True(t, ok)
	assert.True(t, done.Partial)
	assert.Equal(t, []wire.TargetID{0x10}, targetIDs(done.Targets))
	assert.Len(t, h.Engine.Targets(), 1)
}

func TestDiscoverBeforeCompletionIsDeferred(t *testing.T) {
	h := nfcctest.NewHarness(t, defaultCapacity, nil)
	require.NoError(t, h.Engine.Enable())
	h.Engine.HandleDiscoverResponse(wire.NCIStatusOK, 1)

	require.NoError(t, h.Engine.Discover())
	assert.Empty(t, h.Events.OfType(engine.EventDiscoveryComplete))

	h.Engine.HandleDiscoverNotification(engine.DiscoverNotification{ID: 0x10, Status: wire.EEStatusEnabled})
	done, ok := h.Events.Last(engine.EventDiscoveryComplete)
	require.True(t, ok)
	assert.False(t, done.Partial)
	assert.Equal(t, []wire.TargetID{0x10}, targetIDs(done.Targets))

	require.NoError(t, h.Engine.Discover())
	assert.Len(t, h.Events.OfType(engine.EventDiscoveryComplete), 2)
}

func TestNewEEDeferredWhileInactive(t *testing.T) {
	h := nfcctest.NewHarness(t, defaultCapacity, nil)
	require.NoError(t, h.Engine.Enable())
	h.Engine.HandleDiscoverResponse(wire.NCIStatusOK, 0)
	require.Equal(t, engine.StateInitDone, h.Engine.State())

	h.Engine.HandleDiscoverNotification(engine.DiscoverNotification{ID: 0x20, Status: wire.EEStatusEnabled})
	assert.Empty(t, h.Events.OfType(engine.EventNewEE))

	h.Engine.SetActive(true)
	got := h.Events.OfType(engine.EventNewEE)
	require.Len(t, got, 1)
	assert.Equal(t, wire.TargetID(0x20), got[0].Target)
	require.NotNil(t, got[0].Info)
	assert.Equal(t, lmrt.StatusActive, got[0].Info.Status)

	h.Engine.SetActive(false)
	h.Engine.SetActive(true)
	h.Engine.HandleDiscoverNotification(engine.DiscoverNotification{ID: 0x20, Status: wire.EEStatusEnabled})
	assert.Len(t, h.Events.OfType(engine.EventNewEE), 1)
}

func TestHotPlugSchedulesCommit(t *testing.T) {
	h := nfcctest.NewHarness(t, defaultCapacity, nil)
	h.Enable(t)

	h.Engine.HandleDiscoverNotification(engine.DiscoverNotification{ID: 0x30, Status: wire.EEStatusEnabled})
	assert.Len(t, h.Events.OfType(engine.EventNewEE), 1)
	assert.True(t, h.Timer.Armed(engine.TokenRouting))
}

func TestChangesDeferredUntilInitDone(t *testing.T) {
	h := nfcctest.NewHarness(t, defaultCapacity, nil)
	h.Engine.SetActive(true)
	require.NoError(t, h.Engine.Enable())

	require.NoError(t, h.Engine.AddAID(wire.DeviceHost, []byte{0xA0, 0x01}, wire.PowerSwitchOn, 0))
	assert.False(t, h.Timer.Armed(engine.TokenRouting))

	h.Engine.HandleDiscoverResponse(wire.NCIStatusOK, 0)
	assert.True(t, h.Timer.Armed(engine.TokenRouting))
}

func TestStatusRemovedCompactsTable(t *testing.T) {
	h := nfcctest.NewHarness(t, defaultCapacity, nil)
	h.Enable(t, ee(0x10), ee(0x20), ee(0x30))

	h.Engine.HandleStatusNotification(0x20, wire.EEStatusRemoved)
	assert.Equal(t, []wire.TargetID{0x10, 0x30}, targetIDs(h.Engine.Targets()))
	assert.Nil(t, h.Engine.ECB(0x20))
	assert.True(t, h.Timer.Armed(engine.TokenRouting))

	ev, ok := h.Events.Last(engine.EventStatusChanged)
	require.True(t, ok)
	assert.Equal(t, lmrt.StatusRemoved, ev.EEStatus)
}

func TestStatusDisabledStopsCounting(t *testing.T) {
	h := nfcctest.NewHarness(t, defaultCapacity, nil)
	h.Enable(t, ee(0x10))
	require.NoError(t, h.Engine.SetDefaultTechRouting(0x10, lmrt.TechMasks{SwitchOn: wire.TechMaskA}))
	assert.Equal(t, wire.TechProtoEntrySize, h.Engine.TotalTableSize())

	h.Engine.HandleStatusNotification(0x10, wire.EEStatusDisabled)
	assert.Equal(t, lmrt.StatusInactive, h.Engine.ECB(0x10).Status)
	assert.Equal(t, 0, h.Engine.TotalTableSize())
}

func TestModeSet(t *testing.T) {
	h := nfcctest.NewHarness(t, defaultCapacity, nil)
	h.Enable(t, ee(0x10))

	require.NoError(t, h.Engine.ModeSet(0x10, false))
	assert.ErrorIs(t, h.Engine.ModeSet(0x10, true), engine.ErrSemantic)

	h.Engine.HandleModeSetResponse(0x10, wire.NCIStatusOK)
	assert.Equal(t, lmrt.StatusInactive, h.Engine.ECB(0x10).Status)

	ev, ok := h.Events.Last(engine.EventModeSet)
	require.True(t, ok)
	assert.Equal(t, wire.StatusOK, ev.Status)

	calls := h.Transport.Ops("modeset")
	require.Len(t, calls, 1)
	assert.False(t, calls[0].Enable)

	assert.ErrorIs(t, h.Engine.ModeSet(0x77, true), engine.ErrUnknownTarget)
}

func TestModeSetActivationFailureRemovesTarget(t *testing.T) {
	h := nfcctest.NewHarness(t, defaultCapacity, func(c *engine.Config) {
		c.MaxEE = 1
	})
	h.Enable(t, nfcctest.EE{ID: 0x10, Status: wire.EEStatusDisabled})

	require.NoError(t, h.Engine.ModeSet(0x10, true))
	h.Engine.HandleModeSetResponse(0x10, wire.NCIStatusFailed)

	assert.Nil(t, h.Engine.ECB(0x10))
	assert.Empty(t, h.Engine.Targets())

	ev, ok := h.Events.Last(engine.EventModeSet)
	require.True(t, ok)
	assert.Equal(t, wire.StatusFailed, ev.Status)

	err := h.Engine.AddAID(0x10, []byte{0xA0, 0x01}, wire.PowerSwitchOn, 0)
	assert.ErrorIs(t, err, engine.ErrUnknownTarget)
	added, _ := h.Events.Last(engine.EventAIDAdded)
	assert.Equal(t, wire.StatusInvalidParam, added.Status)

	// The freed slot takes a hot-plugged target.
	h.Engine.HandleDiscoverNotification(engine.DiscoverNotification{ID: 0x20, Status: wire.EEStatusEnabled})
	require.NotNil(t, h.Engine.ECB(0x20))
	assert.Equal(t, []wire.TargetID{0x20}, targetIDs(h.Engine.Targets()))
}

func TestClearOnDeactivate(t *testing.T) {
	h := nfcctest.NewHarness(t, defaultCapacity, func(c *engine.Config) {
		c.ClearOnDeactivate = true
	})
	h.Enable(t, ee(0x10))
	require.NoError(t, h.Engine.SetDefaultTechRouting(0x10, lmrt.TechMasks{SwitchOn: wire.TechMaskA}))

	require.NoError(t, h.Engine.ModeSet(0x10, false))
	h.Engine.HandleModeSetResponse(0x10, wire.NCIStatusOK)

	ecb := h.Engine.ECB(0x10)
	assert.True(t, ecb.Tech.IsZero())
	assert.Equal(t, 0, ecb.MaskSize())
}

func TestPowerRecoveryRestoresModeAndConnection(t *testing.T) {
	h := nfcctest.NewHarness(t, defaultCapacity, nil)
	h.Enable(t, ee(0x10))

	require.NoError(t, h.Engine.Connect(0x10, wire.InterfaceAPDU))
	h.Engine.HandleConnCreated(0x10, 1, wire.NCIStatusOK)
	require.NoError(t, h.Engine.SetDefaultTechRouting(0x10, lmrt.TechMasks{SwitchOn: wire.TechMaskA}))
	require.NoError(t, h.Engine.UpdateNow())
	h.AckRouting(wire.NCIStatusOK)

	h.Transport.Reset()
	h.Events.Reset()

	require.NoError(t, h.Engine.EnterPowerRecovery())
	assert.Equal(t, engine.StateRestoring, h.Engine.State())
	assert.Equal(t, lmrt.StatusRestoring, h.Engine.ECB(0x10).Status)
	require.Len(t, h.Transport.Ops("discover"), 1)

	h.Engine.HandleDiscoverResponse(wire.NCIStatusOK, 1)
	h.Engine.HandleDiscoverNotification(engine.DiscoverNotification{
		ID:         0x10,
		Status:     wire.EEStatusDisabled,
		Interfaces: []wire.Interface{wire.InterfaceAPDU},
	})

	modeSets := h.Transport.Ops("modeset")
	require.Len(t, modeSets, 1)
	assert.True(t, modeSets[0].Enable)
	assert.Equal(t, engine.StateRestoring, h.Engine.State())

	h.Engine.HandleModeSetResponse(0x10, wire.NCIStatusOK)
	require.Len(t, h.Transport.Ops("conn_create"), 1)
	assert.Empty(t, h.Events.OfType(engine.EventPowerRecovered))

	h.Engine.HandleConnCreated(0x10, 2, wire.NCIStatusOK)
	assert.Equal(t, engine.StateInitDone, h.Engine.State())
	assert.Len(t, h.Events.OfType(engine.EventPowerRecovered), 1)

	// Restore steps are internal.
	assert.Empty(t, h.Events.OfType(engine.EventModeSet))
	assert.Empty(t, h.Events.OfType(engine.EventConnected))

	ecb := h.Engine.ECB(0x10)
	assert.Equal(t, lmrt.StatusActive, ecb.Status)
	assert.Equal(t, lmrt.ConnConnected, ecb.Conn)
	assert.Equal(t, uint8(2), ecb.ConnID)

	tech := entriesWithTag(t, h.Transport, wire.TagTechnology)
	require.Len(t, tech, 1)
	assert.Equal(t, wire.TargetID(0x10), tech[0].Target)
}

func TestPowerRecoveryDropsMissingTargets(t *testing.T) {
	h := nfcctest.NewHarness(t, defaultCapacity, nil)
	h.Enable(t, ee(0x10), ee(0x20))

	require.NoError(t, h.Engine.EnterPowerRecovery())
	h.Engine.HandleDiscoverResponse(wire.NCIStatusOK, 1)
	h.Engine.HandleDiscoverNotification(engine.DiscoverNotification{ID: 0x10, Status: wire.EEStatusEnabled})

	assert.Equal(t, engine.StateInitDone, h.Engine.State())
	assert.Equal(t, []wire.TargetID{0x10}, targetIDs(h.Engine.Targets()))
	assert.Nil(t, h.Engine.ECB(0x20))
	assert.Len(t, h.Events.OfType(engine.EventPowerRecovered), 1)
	assert.True(t, h.Timer.Armed(engine.TokenRouting))
}

func TestPowerRecoveryTimeout(t *testing.T) {
	h := nfcctest.NewHarness(t, defaultCapacity, nil)
	h.Enable(t, ee(0x10))

	require.NoError(t, h.Engine.EnterPowerRecovery())
	h.Engine.HandleDiscoverResponse(wire.NCIStatusOK, 1)
	require.True(t, h.Timer.Fire(h.Engine, engine.TokenDiscovery))

	assert.Equal(t, engine.StateInitDone, h.Engine.State())
	assert.Empty(t, h.Engine.Targets())
	assert.Len(t, h.Events.OfType(engine.EventPowerRecovered), 1)
}

func TestPowerRecoveryRequiresInitDone(t *testing.T) {
	h := nfcctest.NewHarness(t, defaultCapacity, nil)
	assert.ErrorIs(t, h.Engine.EnterPowerRecovery(), engine.ErrSemantic)
}

func TestDisableKeepsDeviceHostConfig(t *testing.T) {
	h := nfcctest.NewHarness(t, defaultCapacity, nil)
	h.Enable(t, ee(0x10))
	require.NoError(t, h.Engine.AddAID(wire.DeviceHost, []byte{0xA0, 0x01}, wire.PowerSwitchOn, 0))

	require.NoError(t, h.Engine.Disable())
	assert.Equal(t, engine.StateDisabled, h.Engine.State())
	assert.Empty(t, h.Engine.Targets())
	assert.Len(t, h.Engine.ECB(wire.DeviceHost).AIDs, 1)
	assert.False(t, h.Timer.Armed(engine.TokenRouting))

	calls := h.Transport.Ops("discover")
	require.NotEmpty(t, calls)
	assert.False(t, calls[len(calls)-1].Enable)

	ev, ok := h.Events.Last(engine.EventDisableComplete)
	require.True(t, ok)
	assert.Equal(t, wire.StatusOK, ev.Status)
}

func TestDiscoverRequest(t *testing.T) {
	h := nfcctest.NewHarness(t, defaultCapacity, nil)
	h.Enable(t, ee(0x10))

	h.Engine.HandleDiscoverRequestNotification([]engine.DiscoverRequestEntry{
		{Target: 0x10, Mode: wire.ListenA, Protocol: wire.ProtoISODEP},
		{Target: 0x10, Mode: wire.ListenF, Protocol: wire.ProtoT3T},
	})
	ev, ok := h.Events.Last(engine.EventDiscoverRequest)
	require.True(t, ok)
	require.Len(t, ev.Targets, 1)
	assert.Equal(t, wire.ProtoMaskISODEP, ev.Targets[0].Listen.A)

	techs, err := h.Engine.SupportedTechs(0x10)
	require.NoError(t, err)
	assert.Equal(t, wire.TechMaskA|wire.TechMaskF, techs)

	// A late observer receives the outstanding request.
	late := &nfcctest.Recorder{}
	_, err = h.Engine.Register(late)
	require.NoError(t, err)
	assert.Len(t, late.OfType(engine.EventDiscoverRequest), 1)

	h.Engine.HandleDiscoverRequestNotification([]engine.DiscoverRequestEntry{
		{Remove: true, Target: 0x10, Mode: wire.ListenA, Protocol: wire.ProtoISODEP},
		{Remove: true, Target: 0x10, Mode: wire.ListenF, Protocol: wire.ProtoT3T},
	})
	ev, _ = h.Events.Last(engine.EventDiscoverRequest)
	assert.Empty(t, ev.Targets)

	techs, err = h.Engine.SupportedTechs(0x10)
	require.NoError(t, err)
	assert.Zero(t, techs)
}

func TestEEStateAndActionNotifications(t *testing.T) {
	h := nfcctest.NewHarness(t, defaultCapacity, nil)
	h.Enable(t, ee(0x10))

	h.Engine.HandleEEStateNotification(0x10, wire.EEStateInitCompleted)
	assert.Empty(t, h.Events.OfType(engine.EventRecoveryRequired))
	h.Engine.HandleEEStateNotification(0x10, wire.EEStateUnrecoverableError)
	assert.Len(t, h.Events.OfType(engine.EventRecoveryRequired), 1)

	h.Engine.HandleActionNotification(0x10, wire.TriggerSelect, []byte{0xA0, 0x00})
	ev, ok := h.Events.Last(engine.EventAction)
	require.True(t, ok)
	require.NotNil(t, ev.Action)
	assert.Equal(t, wire.TriggerSelect, ev.Action.Trigger)
	assert.Equal(t, []byte{0xA0, 0x00}, ev.Action.Data)
}
