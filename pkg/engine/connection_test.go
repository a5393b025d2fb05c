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

func connected(t *testing.T, h *nfcctest.Harness, id wire.TargetID, connID uint8) {
	t.Helper()
	require.NoError(t, h.Engine.Connect(id, wire.InterfaceAPDU))
	h.Engine.HandleConnCreated(id, connID, wire.NCIStatusOK)
	require.Equal(t, lmrt.ConnConnected, h.Engine.ECB(id).Conn)
}

func TestConnectValidation(t *testing.T) {
	h := nfcctest.NewHarness(t, defaultCapacity, nil)
	h.Enable(t, ee(0x10), nfcctest.EE{ID: 0x20, Status: wire.EEStatusDisabled, Interfaces: []wire.Interface{wire.InterfaceAPDU}})

	tests := []struct {
		name  string
		id    wire.TargetID
		iface wire.Interface
		want  error
	}{
		{"unknown", 0x55, wire.InterfaceAPDU, engine.ErrUnknownTarget},
		{"device host", wire.DeviceHost, wire.InterfaceAPDU, engine.ErrUnknownTarget},
		{"inactive", 0x20, wire.InterfaceAPDU, engine.ErrSemantic},
		{"interface", 0x10, wire.InterfaceT3T, engine.ErrInvalidParam},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, h.Engine.Connect(tt.id, tt.iface), tt.want)
		})
	}
	assert.Empty(t, h.Transport.Ops("conn_create"))
}

func TestConnectionLifecycle(t *testing.T) {
	h := nfcctest.NewHarness(t, defaultCapacity, nil)
	h.Enable(t, ee(0x10))

	assert.ErrorIs(t, h.Engine.SendData(0x10, []byte{0x00}), engine.ErrNotConnected)

	connected(t, h, 0x10, 3)
	ev, ok := h.Events.Last(engine.EventConnected)
	require.True(t, ok)
	assert.Equal(t, uint8(3), ev.ConnID)
	assert.ErrorIs(t, h.Engine.Connect(0x10, wire.InterfaceAPDU), engine.ErrSemantic)

	apdu := []byte{0x00, 0xA4, 0x04, 0x00}
	require.NoError(t, h.Engine.SendData(0x10, apdu))
	data := h.Transport.Ops("data")
	require.Len(t, data, 1)
	assert.Equal(t, uint8(3), data[0].ConnID)
	assert.Equal(t, apdu, data[0].Data)

	h.Engine.HandleData(3, []byte{0x90, 0x00})
	got, ok := h.Events.Last(engine.EventData)
	require.True(t, ok)
	assert.Equal(t, wire.TargetID(0x10), got.Target)
	assert.Equal(t, []byte{0x90, 0x00}, got.Data)

	require.NoError(t, h.Engine.Disconnect(0x10))
	assert.Len(t, h.Events.OfType(engine.EventDisconnected), 1)
	require.Len(t, h.Transport.Ops("conn_close"), 1)

	// The controller confirms the close the engine asked for.
	h.Engine.HandleConnClosed(3)
	assert.Len(t, h.Events.OfType(engine.EventDisconnected), 1)
	assert.Equal(t, lmrt.ConnNone, h.Engine.ECB(0x10).Conn)
}

func TestRemoteClose(t *testing.T) {
	h := nfcctest.NewHarness(t, defaultCapacity, nil)
	h.Enable(t, ee(0x10))
	connected(t, h, 0x10, 4)

	h.Engine.HandleConnClosed(4)
	ev, ok := h.Events.Last(engine.EventDisconnected)
	require.True(t, ok)
	assert.Equal(t, wire.TargetID(0x10), ev.Target)
	assert.ErrorIs(t, h.Engine.Disconnect(0x10), engine.ErrNotConnected)
}

func TestConnectRejected(t *testing.T) {
	h := nfcctest.NewHarness(t, defaultCapacity, nil)
	h.Enable(t, ee(0x10))

	require.NoError(t, h.Engine.Connect(0x10, wire.InterfaceAPDU))
	h.Engine.HandleConnCreated(0x10, 0, wire.NCIStatusNFCEEInterface)

	ev, ok := h.Events.Last(engine.EventConnected)
	require.True(t, ok)
	assert.Equal(t, wire.StatusFailed, ev.Status)
	assert.Equal(t, lmrt.ConnNone, h.Engine.ECB(0x10).Conn)
}

func TestSendDataNoMemory(t *testing.T) {
	h := nfcctest.NewHarness(t, defaultCapacity, nil)
	h.Enable(t, ee(0x10))
	connected(t, h, 0x10, 1)
	h.Alloc.Fail = true

	assert.ErrorIs(t, h.Engine.SendData(0x10, []byte{0x01}), engine.ErrNoMemory)
	assert.Len(t, h.Events.OfType(engine.EventNoMemory), 1)
	assert.Empty(t, h.Transport.Ops("data"))
}

func TestDeactivateClosesConnection(t *testing.T) {
	h := nfcctest.NewHarness(t, defaultCapacity, nil)
	h.Enable(t, ee(0x10))
	connected(t, h, 0x10, 1)

	h.Engine.HandleStatusNotification(0x10, wire.EEStatusDisabled)
	assert.Equal(t, lmrt.ConnNone, h.Engine.ECB(0x10).Conn)
	assert.Len(t, h.Events.OfType(engine.EventDisconnected), 1)
	assert.Len(t, h.Transport.Ops("conn_close"), 1)
}
