package engine

import (
	"fmt"
	"slices"

	"github.com/lmrt-project/lmrt-go/pkg/lmrt"
	"github.com/lmrt-project/lmrt-go/pkg/log"
	"github.com/lmrt-project/lmrt-go/pkg/wire"
)

// Connect opens a logical connection to an Active NFCEE on one of its
// interfaces. Connected is reported when the controller responds.
func (e *Engine) Connect(id wire.TargetID, iface wire.Interface) error {
	ecb := e.table.Find(id)
	if ecb == nil || ecb.IsDeviceHost() {
		return e.result(EventConnected, id, fmt.Errorf("%w: 0x%02x", ErrUnknownTarget, uint8(id)))
	}
	if ecb.Status != lmrt.StatusActive {
		return e.result(EventConnected, id, fmt.Errorf("%w: target is %s", ErrSemantic, ecb.Status))
	}
	if ecb.Conn != lmrt.ConnNone {
		return e.result(EventConnected, id, fmt.Errorf("%w: connection %s", ErrSemantic, ecb.Conn))
	}
	if !ecb.HasInterface(iface) {
		return e.result(EventConnected, id, fmt.Errorf("%w: interface %s", ErrInvalidParam, iface))
	}
	if err := e.connCreate(ecb, iface); err != nil {
		return e.result(EventConnected, id, err)
	}
	return nil
}

func (e *Engine) connCreate(ecb *lmrt.ECB, iface wire.Interface) error {
	target := log.TargetRef(uint8(ecb.ID))
	e.trace.Command(log.LayerConnection, target, log.CommandEvent{Opcode: log.OpConnCreate, Data: []byte{byte(ecb.ID), byte(iface)}})
	if err := e.transport.ConnCreate(ecb.ID, iface); err != nil {
		e.trace.Error(log.LayerConnection, target, "conn create", err)
		return fmt.Errorf("%w: conn create: %w", ErrTransport, err)
	}
	e.setConn(ecb, lmrt.ConnWaiting)
	ecb.ConnIface = iface
	return nil
}

// HandleConnCreated delivers the response to a connection request.
func (e *Engine) HandleConnCreated(id wire.TargetID, connID uint8, status wire.NCIStatus) {
	e.trace.Response(log.LayerConnection, log.TargetRef(uint8(id)), log.ResponseEvent{Opcode: log.OpConnCreate, Status: uint8(status)})
	ecb := e.table.Find(id)
	if ecb == nil || ecb.Conn != lmrt.ConnWaiting {
		e.debugLog("engine: unexpected connection response", "target", id)
		return
	}
	if status == wire.NCIStatusOK {
		ecb.ConnID = connID
		e.setConn(ecb, lmrt.ConnConnected)
	} else {
		e.setConn(ecb, lmrt.ConnNone)
	}

	if ecb.Flags&lmrt.FlagRestore != 0 {
		ecb.Flags &^= lmrt.FlagRestore | lmrt.FlagReconnect
		e.checkRestoreComplete()
		return
	}
	e.report(Event{Type: EventConnected, Status: status.Status(), Target: id, ConnID: connID})
}

// Disconnect closes the logical connection to a target. Disconnected is
// reported immediately.
func (e *Engine) Disconnect(id wire.TargetID) error {
	ecb := e.table.Find(id)
	if ecb == nil || ecb.IsDeviceHost() {
		return e.result(EventDisconnected, id, fmt.Errorf("%w: 0x%02x", ErrUnknownTarget, uint8(id)))
	}
	if ecb.Conn != lmrt.ConnConnected {
		return e.result(EventDisconnected, id, ErrNotConnected)
	}
	e.setConn(ecb, lmrt.ConnDisconnecting)
	err := e.connClose(ecb)
	if err != nil {
		e.setConn(ecb, lmrt.ConnNone)
	}
	return e.result(EventDisconnected, id, err)
}

func (e *Engine) connClose(ecb *lmrt.ECB) error {
	target := log.TargetRef(uint8(ecb.ID))
	e.trace.Command(log.LayerConnection, target, log.CommandEvent{Opcode: log.OpConnClose, Data: []byte{ecb.ConnID}})
	if err := e.transport.ConnClose(ecb.ConnID); err != nil {
		e.trace.Error(log.LayerConnection, target, "conn close", err)
		return fmt.Errorf("%w: conn close: %w", ErrTransport, err)
	}
	return nil
}

// closeConn tears down any connection to ecb without waiting for the
// controller.
func (e *Engine) closeConn(ecb *lmrt.ECB, notify bool) {
	if ecb.Conn == lmrt.ConnNone {
		return
	}
	wasOpen := ecb.Conn == lmrt.ConnConnected
	if wasOpen {
		if err := e.connClose(ecb); err != nil {
			e.debugLog("engine: close failed", "target", ecb.ID, "error", err)
		}
	}
	e.setConn(ecb, lmrt.ConnNone)
	if notify && wasOpen {
		e.report(Event{Type: EventDisconnected, Status: wire.StatusOK, Target: ecb.ID, ConnID: ecb.ConnID})
	}
}

// HandleConnClosed delivers a connection close notification. A close the
// engine did not request is reported as Disconnected.
func (e *Engine) HandleConnClosed(connID uint8) {
	ecb := e.byConn(connID)
	if ecb == nil {
		e.debugLog("engine: close for unknown connection", "conn_id", connID)
		return
	}
	e.trace.Notification(log.LayerConnection, log.TargetRef(uint8(ecb.ID)), log.NotificationEvent{Type: log.NotifyConnClosed})
	remote := ecb.Conn != lmrt.ConnDisconnecting
	e.setConn(ecb, lmrt.ConnNone)
	if remote {
		e.report(Event{Type: EventDisconnected, Status: wire.StatusOK, Target: ecb.ID, ConnID: connID})
	}
}

// SendData sends data to a connected target.
func (e *Engine) SendData(id wire.TargetID, data []byte) error {
	ecb := e.table.Find(id)
	if ecb == nil || ecb.IsDeviceHost() {
		return fmt.Errorf("%w: 0x%02x", ErrUnknownTarget, uint8(id))
	}
	if ecb.Conn != lmrt.ConnConnected {
		return ErrNotConnected
	}
	buf := e.cfg.Allocator.Alloc(len(data))
	if buf == nil {
		e.report(Event{Type: EventNoMemory, Status: wire.StatusNoMemory, Target: id, Err: ErrNoMemory})
		return ErrNoMemory
	}
	copy(buf, data)

	target := log.TargetRef(uint8(id))
	e.trace.Command(log.LayerConnection, target, log.CommandEvent{Opcode: log.OpData, Data: buf})
	if err := e.transport.SendData(ecb.ConnID, buf); err != nil {
		e.trace.Error(log.LayerConnection, target, "send data", err)
		return fmt.Errorf("%w: send data: %w", ErrTransport, err)
	}
	return nil
}

// HandleData delivers data received on a connection.
func (e *Engine) HandleData(connID uint8, data []byte) {
	ecb := e.byConn(connID)
	if ecb == nil || ecb.Conn != lmrt.ConnConnected {
		e.debugLog("engine: data for unknown connection", "conn_id", connID)
		return
	}
	e.trace.Notification(log.LayerConnection, log.TargetRef(uint8(ecb.ID)), log.NotificationEvent{Type: log.NotifyData, Size: len(data)})
	e.report(Event{Type: EventData, Status: wire.StatusOK, Target: ecb.ID, ConnID: connID, Data: slices.Clone(data)})
}

func (e *Engine) byConn(connID uint8) *lmrt.ECB {
	for _, ecb := range e.table.EEs() {
		if ecb.ConnID == connID && (ecb.Conn == lmrt.ConnConnected || ecb.Conn == lmrt.ConnDisconnecting) {
			return ecb
		}
	}
	return nil
}

func (e *Engine) setConn(ecb *lmrt.ECB, s lmrt.ConnState) {
	if ecb.Conn == s {
		return
	}
	e.trace.State(log.LayerConnection, log.TargetRef(uint8(ecb.ID)), log.StateChangeEvent{
		Entity:   log.StateEntityConnection,
		OldState: ecb.Conn.String(),
		NewState: s.String(),
	})
	ecb.Conn = s
}
