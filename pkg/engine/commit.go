package engine

import (
	"errors"
	"fmt"

	"github.com/lmrt-project/lmrt-go/pkg/lmrt"
	"github.com/lmrt-project/lmrt-go/pkg/log"
	"github.com/lmrt-project/lmrt-go/pkg/wire"
)

// needRecommit reports whether the table on the controller is stale.
func (e *Engine) needRecommit() bool {
	if e.sts&stsChangedRouting != 0 {
		return true
	}
	for _, ecb := range e.table.All() {
		if ecb.Dirty != 0 && ecb.HasConfig() {
			return true
		}
	}
	return false
}

// routeTimeout runs when the debounce timer fires or an explicit update is
// requested.
func (e *Engine) routeTimeout() error {
	updateNow := e.sts&stsUpdateNow != 0
	e.sts &^= stsUpdateNow

	var err error
	if e.needRecommit() {
		if e.cfg.RF.Discovering() {
			e.trace.Command(log.LayerRouting, nil, log.CommandEvent{Opcode: log.OpDeactivate})
			if derr := e.transport.DeactivateToIdle(); derr != nil {
				err = fmt.Errorf("%w: deactivate: %w", ErrTransport, derr)
				e.trace.Error(log.LayerRouting, nil, "deactivate", derr)
			}
		}
		err = errors.Join(err, e.commit())
	}

	if e.waitRsp > 0 {
		e.wait |= waitUpdateRsp
	}
	if updateNow {
		if err != nil && e.waitRsp == 0 {
			e.report(Event{Type: EventRoutingUpdated, Status: StatusOf(err), Err: err})
			return err
		}
		e.wait |= waitUpdate
		if e.waitRsp == 0 {
			e.reportUpdate()
		}
	}
	return err
}

// commit serializes every counted ECB and sends the result.
func (e *Engine) commit() error {
	e.refreshLimits()
	maxPayload := e.maxPayload()

	if loser := e.cfg.Conflict.ResolveTechConflict(e.table.Active()); loser != nil {
		loser.Dirty |= lmrt.DirtyTech
		lmrt.UpdateMaskSize(loser, e.cfg.Capabilities)
		e.debugLog("engine: technology conflict resolved", "target", loser.ID)
	}

	changed := e.sts&stsChangedRouting != 0
	counted := e.counted()
	for _, ecb := range counted {
		if ecb.Dirty&lmrt.DirtyRouting != 0 {
			changed = true
		}
	}

	total := e.table.TotalSize()
	if !changed && !(e.sts&stsPrevRouting != 0 && total == 0) {
		e.clearDirty()
		return nil
	}

	buf := e.cfg.Allocator.Alloc(wire.MaxRoutingTLVSize)
	if buf == nil {
		e.report(Event{Type: EventNoMemory, Status: wire.StatusNoMemory, Err: ErrNoMemory})
		return ErrNoMemory
	}

	e.cfg.Metrics.CommitPass()
	p := lmrt.NewPacker(buf[:0], maxPayload, e.sendRouting)
	e.builder.Reset()
	for _, cat := range e.cfg.Capabilities.Order {
		for _, ecb := range counted {
			e.builder.Build(ecb, cat, p)
		}
	}

	if total > 0 {
		e.sts |= stsPrevRouting
	} else {
		e.sts &^= stsPrevRouting
	}
	p.Flush(false)
	e.offRouting = e.builder.OffRouting()

	e.clearDirty()
	e.cfg.Metrics.TableSize(total)
	e.cfg.Metrics.ActiveTargets(len(e.table.Active()))
	e.debugLog("engine: commit pass",
		"commands", p.Sent(),
		"failed", p.Failed(),
		"dropped", p.Dropped(),
		"bytes", p.Bytes(),
		"table_size", total,
		"outstanding", e.waitRsp)

	if err := p.Err(); err != nil {
		status := wire.StatusTransportFailure
		if p.Failed() == 0 {
			status = wire.StatusBufferFull
		}
		e.report(Event{Type: EventRoutingError, Status: status, Err: err})
		return err
	}
	return nil
}

// maxPayload returns the command payload limit the controller declares.
func (e *Engine) maxPayload() int {
	if e.capacity == nil {
		return wire.MaxRoutingTLVSize
	}
	return lmrt.EffectivePayload(e.capacity.MaxCommandPayload())
}

func (e *Engine) checkEntryFits(size int) error {
	if limit := e.maxPayload(); size > limit {
		return fmt.Errorf("%w: entry of %d bytes exceeds command payload %d", ErrBufferFull, size, limit)
	}
	return nil
}

// counted returns the Active EEs followed by the device host.
func (e *Engine) counted() []*lmrt.ECB {
	return append(e.table.Active(), e.table.DeviceHost())
}

func (e *Engine) clearDirty() {
	e.sts &^= stsChangedRouting
	for _, ecb := range e.table.All() {
		ecb.Dirty = 0
	}
}

// sendRouting is the packer's send hook.
func (e *Engine) sendRouting(cmd wire.SetRoutingCommand) error {
	frame, ferr := wire.EncodeSetRouting(cmd)
	if err := e.transport.SendSetRouting(cmd); err != nil {
		e.trace.Error(log.LayerRouting, nil, "set routing", err)
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	e.waitRsp++
	e.cfg.Metrics.CommandSent(len(cmd.Entries))
	if ferr == nil {
		e.trace.Command(log.LayerRouting, nil, log.CommandEvent{
			Opcode:     log.OpSetRouting,
			More:       cmd.More,
			EntryCount: cmd.Count,
			Data:       frame,
		})
	}
	return nil
}

// reportUpdate emits the deferred RoutingUpdated once every response is in.
func (e *Engine) reportUpdate() {
	if e.waitRsp != 0 {
		return
	}
	e.wait &^= waitUpdateRsp
	if e.wait&waitUpdate != 0 {
		e.wait &^= waitUpdate
		e.report(Event{Type: EventRoutingUpdated, Status: wire.StatusOK})
	}
}

// HandleRoutingResponse delivers the controller's response to one routing
// command.
func (e *Engine) HandleRoutingResponse(status wire.NCIStatus) {
	if e.waitRsp == 0 {
		e.debugLog("engine: unexpected routing response", "status", status)
		return
	}
	e.waitRsp--
	e.trace.Response(log.LayerRouting, nil, log.ResponseEvent{
		Opcode:      log.OpSetRouting,
		Status:      uint8(status),
		Outstanding: e.waitRsp,
	})
	if status != wire.NCIStatusOK {
		e.report(Event{Type: EventRoutingError, Status: status.Status()})
	}
	e.reportUpdate()
}

// UpdateNow commits pending changes immediately. A RoutingUpdated event
// follows once every routing response is in.
func (e *Engine) UpdateNow() error {
	if e.wait&(waitUpdate|waitUpdateRsp) != 0 {
		e.report(Event{Type: EventRoutingUpdated, Status: wire.StatusSemanticError, Err: ErrSemantic})
		return ErrSemantic
	}
	e.stopRoutingTimer()
	e.sts |= stsUpdateNow
	return e.routeTimeout()
}

// markChanged records that owner's configuration changed and schedules a
// commit pass.
func (e *Engine) markChanged(owner *lmrt.ECB, flags lmrt.DirtyFlags) {
	if owner != nil {
		owner.Dirty |= flags
	}
	e.sts |= stsChangedRouting
	e.table.UpdateEntrySizes()
	e.startRoutingTimer()
}
