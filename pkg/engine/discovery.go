package engine

import (
	"fmt"
	"slices"

	"github.com/lmrt-project/lmrt-go/pkg/lmrt"
	"github.com/lmrt-project/lmrt-go/pkg/log"
	"github.com/lmrt-project/lmrt-go/pkg/wire"
)

// DiscoverNotification is one NFCEE reported during enumeration.
type DiscoverNotification struct {
	ID          wire.TargetID
	Status      wire.EEStatus
	Interfaces  []wire.Interface
	PowerSupply uint8
}

func statusFromEE(s wire.EEStatus) lmrt.Status {
	switch s {
	case wire.EEStatusEnabled:
		return lmrt.StatusActive
	case wire.EEStatusDisabled:
		return lmrt.StatusInactive
	default:
		return lmrt.StatusRemoved
	}
}

// Enable starts NFCEE enumeration. EnableComplete is reported once every
// announced NFCEE is known or the discovery timeout expires.
func (e *Engine) Enable() error {
	if e.state != StateDisabled {
		return e.result(EventEnableComplete, wire.DeviceHost, ErrSemantic)
	}
	e.timer.Stop(TokenDiscovery)
	e.setState(StateInit, "enable")
	e.expected = 0
	if err := e.discover(true); err != nil {
		e.setState(StateDisabled, "discover failed")
		return e.result(EventEnableComplete, wire.DeviceHost, err)
	}
	e.timer.Start(e.cfg.DiscoveryTimeout, TokenDiscovery)
	return nil
}

// Disable closes every connection, stops enumeration and forgets all
// NFCEEs. Device host configuration is kept.
func (e *Engine) Disable() error {
	if e.state == StateDisabled {
		return e.result(EventDisableComplete, wire.DeviceHost, nil)
	}
	e.stopRoutingTimer()
	e.timer.Stop(TokenDiscovery)
	for _, ecb := range e.table.EEs() {
		e.closeConn(ecb, true)
	}
	err := e.discover(false)

	e.table.Compact(func(*lmrt.ECB) bool { return true })
	e.table.UpdateSizes(e.cfg.Capabilities)
	e.expected = 0
	e.waitRsp = 0
	e.wait = 0
	e.discoverPending = false
	clear(e.modeSets)
	e.setState(StateDisabled, "disable")
	return e.result(EventDisableComplete, wire.DeviceHost, err)
}

// Discover requests the list of known NFCEEs. The DiscoveryComplete event
// is reported immediately when enumeration is done, otherwise when it
// completes.
func (e *Engine) Discover() error {
	switch e.state {
	case StateDisabled:
		return e.result(EventDiscoveryComplete, wire.DeviceHost, ErrSemantic)
	case StateInitDone:
		e.reportDiscovery(false)
	default:
		e.discoverPending = true
	}
	return nil
}

func (e *Engine) discover(enable bool) error {
	var b byte
	if enable {
		b = 1
	}
	e.trace.Command(log.LayerDiscovery, nil, log.CommandEvent{Opcode: log.OpDiscover, Data: []byte{b}})
	if err := e.transport.Discover(enable); err != nil {
		e.trace.Error(log.LayerDiscovery, nil, "discover", err)
		return fmt.Errorf("%w: discover: %w", ErrTransport, err)
	}
	return nil
}

// HandleDiscoverResponse delivers the response to a discover command with
// the number of NFCEEs the controller will announce.
func (e *Engine) HandleDiscoverResponse(status wire.NCIStatus, count int) {
	e.trace.Response(log.LayerDiscovery, nil, log.ResponseEvent{Opcode: log.OpDiscover, Status: uint8(status), Outstanding: count})
	if status != wire.NCIStatusOK {
		e.warnLog("engine: discover rejected", "status", status)
		switch e.state {
		case StateInit:
			e.timer.Stop(TokenDiscovery)
			e.setState(StateInitDone, "discover rejected")
			e.report(Event{Type: EventEnableComplete, Status: status.Status()})
		case StateRestoring:
			e.finishRediscovery()
		}
		return
	}

	switch e.state {
	case StateInit:
		if count == 0 {
			e.finishEnable(false)
			return
		}
		e.table.Reserve(count)
	case StateRestoring:
		if count == 0 {
			e.finishRediscovery()
			return
		}
	}
	e.expected = min(count, e.table.Capacity())
}

// HandleDiscoverNotification delivers one NFCEE discovery notification.
func (e *Engine) HandleDiscoverNotification(n DiscoverNotification) {
	e.trace.Notification(log.LayerDiscovery, log.TargetRef(uint8(n.ID)), log.NotificationEvent{
		Type:   log.NotifyDiscover,
		Status: uint8(n.Status),
		Detail: n.Status.String(),
	})
	if e.expected > 0 {
		e.expected--
	}

	var ecb *lmrt.ECB
	isNew := false
	switch e.state {
	case StateInit, StateRestoring:
		ecb = e.findOrClaim(n.ID)
	case StateInitDone:
		if ecb = e.table.Find(n.ID); ecb == nil {
			ecb = e.findOrClaim(n.ID)
			isNew = ecb != nil
		}
	default:
		e.debugLog("engine: discovery notification while disabled", "target", n.ID)
		return
	}

	if ecb != nil && !ecb.IsDeviceHost() {
		e.applyDiscovery(ecb, n, isNew)
	}

	switch e.state {
	case StateInit:
		if e.expected == 0 {
			e.finishEnable(false)
		}
	case StateRestoring:
		if e.expected == 0 {
			e.finishRediscovery()
		}
	}
}

func (e *Engine) applyDiscovery(ecb *lmrt.ECB, n DiscoverNotification, isNew bool) {
	restoring := e.state == StateRestoring && ecb.Flags&lmrt.FlagRestoring != 0
	ecb.Flags &^= lmrt.FlagRestoring
	ecb.Interfaces = slices.Clone(n.Interfaces)
	ecb.PowerSupply = n.PowerSupply

	status := statusFromEE(n.Status)
	if status == lmrt.StatusRemoved {
		e.removeTarget(ecb, "discovered removed")
		if e.state == StateRestoring {
			e.checkRestoreComplete()
		}
		return
	}

	wasCounted := ecb.Counted()
	e.setStatus(ecb, status, "discovered")
	lmrt.UpdateMaskSize(ecb, e.cfg.Capabilities)
	e.table.UpdateEntrySizes()
	if e.state == StateInitDone && wasCounted != ecb.Counted() {
		e.markChanged(nil, 0)
	}

	if isNew {
		e.notifyNew(ecb)
	}
	if restoring {
		e.restoreOne(ecb)
	}
}

func (e *Engine) findOrClaim(id wire.TargetID) *lmrt.ECB {
	if ecb := e.table.Find(id); ecb != nil {
		return ecb
	}
	ecb, err := e.table.Claim(id)
	if err != nil {
		e.warnLog("engine: no ECB slot for target", "target", id, "error", err)
		return nil
	}
	return ecb
}

// notifyNew reports a hot-plugged NFCEE, deferring the event while the
// system is inactive.
func (e *Engine) notifyNew(ecb *lmrt.ECB) {
	if !e.active {
		ecb.Flags |= lmrt.FlagNotifyPending
		return
	}
	info := targetInfo(ecb)
	e.report(Event{Type: EventNewEE, Status: wire.StatusOK, Target: ecb.ID, Info: &info})
}

func (e *Engine) finishEnable(partial bool) {
	e.timer.Stop(TokenDiscovery)
	e.table.Compact(func(x *lmrt.ECB) bool { return x.ID == lmrt.Unclaimed })
	e.table.UpdateSizes(e.cfg.Capabilities)

	reason := "enumeration complete"
	if partial {
		reason = "discovery timeout"
	}
	e.setState(StateInitDone, reason)
	e.report(Event{Type: EventEnableComplete, Status: wire.StatusOK, Partial: partial})
	if e.discoverPending || partial {
		e.discoverPending = false
		e.reportDiscovery(partial)
	}
	if e.needRecommit() {
		e.startRoutingTimer()
	}
}

func (e *Engine) reportDiscovery(partial bool) {
	e.report(Event{Type: EventDiscoveryComplete, Status: wire.StatusOK, Partial: partial, Targets: e.Targets()})
}

func (e *Engine) discoveryTimeout() {
	switch e.state {
	case StateInit:
		e.warnLog("engine: discovery timed out", "expected", e.expected)
		e.expected = 0
		e.finishEnable(true)
	case StateRestoring:
		e.warnLog("engine: rediscovery timed out", "expected", e.expected)
		e.expected = 0
		e.finishRediscovery()
	}
}

// EnterPowerRecovery rediscovers every NFCEE after a controller low-power
// exit and re-applies mode and connection state. PowerRecovered is reported
// once every target is restored or dropped.
func (e *Engine) EnterPowerRecovery() error {
	if e.state != StateInitDone {
		return e.result(EventPowerRecovered, wire.DeviceHost, ErrSemantic)
	}

	for _, ecb := range e.table.EEs() {
		ecb.OldStatus = ecb.Status
		if ecb.Status != lmrt.StatusRemoved {
			ecb.Flags |= lmrt.FlagRestoring
			e.setStatus(ecb, lmrt.StatusRestoring, "power recovery")
		}
		if ecb.Conn != lmrt.ConnNone {
			ecb.Flags |= lmrt.FlagReconnect
			ecb.Conn = lmrt.ConnNone
		}
	}
	e.stopRoutingTimer()
	e.setState(StateRestoring, "power recovery")
	e.expected = 0

	if err := e.discover(true); err != nil {
		for _, ecb := range e.table.EEs() {
			ecb.Flags &^= lmrt.FlagRestoring | lmrt.FlagReconnect
			e.setStatus(ecb, ecb.OldStatus, "recovery aborted")
		}
		e.setState(StateInitDone, "recovery aborted")
		return e.result(EventPowerRecovered, wire.DeviceHost, err)
	}
	e.timer.Start(e.cfg.DiscoveryTimeout, TokenDiscovery)
	return nil
}

// restoreOne re-applies the pre-recovery state of a rediscovered target.
func (e *Engine) restoreOne(ecb *lmrt.ECB) {
	if len(ecb.Interfaces) > 0 && ecb.Interfaces[0] == wire.InterfaceHCIAccess {
		return
	}
	switch {
	case ecb.OldStatus == lmrt.StatusActive && ecb.Status == lmrt.StatusInactive:
		if err := e.sendModeSet(ecb.ID, true); err == nil {
			ecb.Flags |= lmrt.FlagRestore
		}
	case ecb.Status == lmrt.StatusActive && ecb.Flags&lmrt.FlagReconnect != 0:
		if err := e.connCreate(ecb, ecb.ConnIface); err == nil {
			ecb.Flags |= lmrt.FlagRestore
		}
	}
}

// finishRediscovery drops every target that did not reappear.
func (e *Engine) finishRediscovery() {
	e.timer.Stop(TokenDiscovery)
	dropped := e.table.Compact(func(x *lmrt.ECB) bool {
		return x.ID == lmrt.Unclaimed || x.Flags&lmrt.FlagRestoring != 0
	})
	for _, ecb := range dropped {
		if ecb.ID != lmrt.Unclaimed {
			e.setStatus(ecb, lmrt.StatusRemoved, "not rediscovered")
			e.sts |= stsChangedRouting
		}
	}
	e.table.UpdateEntrySizes()
	e.checkRestoreComplete()
}

func (e *Engine) checkRestoreComplete() {
	if e.state != StateRestoring {
		return
	}
	for _, ecb := range e.table.EEs() {
		if ecb.Flags&(lmrt.FlagRestore|lmrt.FlagRestoring) != 0 {
			return
		}
	}
	if e.expected > 0 {
		return
	}

	e.timer.Stop(TokenDiscovery)
	for _, ecb := range e.table.EEs() {
		ecb.Flags &^= lmrt.FlagReconnect
	}
	e.setState(StateInitDone, "restore complete")
	e.report(Event{Type: EventPowerRecovered, Status: wire.StatusOK})

	if e.sts&stsPrevRouting != 0 {
		e.sts |= stsChangedRouting
		e.stopRoutingTimer()
		if err := e.routeTimeout(); err != nil {
			e.warnLog("engine: post-recovery commit failed", "error", err)
		}
		return
	}
	if e.needRecommit() {
		e.startRoutingTimer()
	}
}

// removeTarget marks ecb Removed and drops it from the table.
func (e *Engine) removeTarget(ecb *lmrt.ECB, reason string) {
	e.setStatus(ecb, lmrt.StatusRemoved, reason)
	e.closeConn(ecb, true)
	delete(e.modeSets, ecb.ID)
	e.table.Compact(func(x *lmrt.ECB) bool { return x == ecb })
	e.markChanged(nil, 0)
}

// ModeSet activates or deactivates an NFCEE. The result is reported as a
// ModeSet event when the controller responds.
func (e *Engine) ModeSet(id wire.TargetID, activate bool) error {
	ecb := e.table.Find(id)
	if ecb == nil || ecb.IsDeviceHost() {
		return e.result(EventModeSet, id, fmt.Errorf("%w: 0x%02x", ErrUnknownTarget, uint8(id)))
	}
	if _, pending := e.modeSets[id]; pending {
		return e.result(EventModeSet, id, fmt.Errorf("%w: mode set pending", ErrSemantic))
	}
	if err := e.sendModeSet(id, activate); err != nil {
		return e.result(EventModeSet, id, err)
	}
	return nil
}

func (e *Engine) sendModeSet(id wire.TargetID, activate bool) error {
	var b byte
	if activate {
		b = 1
	}
	e.trace.Command(log.LayerDiscovery, log.TargetRef(uint8(id)), log.CommandEvent{Opcode: log.OpModeSet, Data: []byte{byte(id), b}})
	if err := e.transport.ModeSet(id, activate); err != nil {
		e.trace.Error(log.LayerDiscovery, log.TargetRef(uint8(id)), "mode set", err)
		return fmt.Errorf("%w: mode set: %w", ErrTransport, err)
	}
	e.modeSets[id] = activate
	return nil
}

// HandleModeSetResponse delivers the response to a mode set command.
func (e *Engine) HandleModeSetResponse(id wire.TargetID, status wire.NCIStatus) {
	activate, ok := e.modeSets[id]
	if !ok {
		e.debugLog("engine: unexpected mode set response", "target", id)
		return
	}
	delete(e.modeSets, id)
	e.trace.Response(log.LayerDiscovery, log.TargetRef(uint8(id)), log.ResponseEvent{Opcode: log.OpModeSet, Status: uint8(status)})

	ecb := e.table.Find(id)
	if ecb == nil {
		return
	}

	wasCounted := ecb.Counted()
	switch {
	case status == wire.NCIStatusOK && activate:
		if ecb.Status != lmrt.StatusRemoved {
			e.setStatus(ecb, lmrt.StatusActive, "mode set")
		}
	case status == wire.NCIStatusOK:
		e.setStatus(ecb, lmrt.StatusInactive, "mode set")
		e.closeConn(ecb, true)
		if e.cfg.ClearOnDeactivate && !(ecb.Tech.IsZero() && ecb.Proto.IsZero()) {
			ecb.Tech = lmrt.TechMasks{}
			ecb.Proto = lmrt.ProtoMasks{}
			lmrt.UpdateMaskSize(ecb, e.cfg.Capabilities)
			ecb.Dirty |= lmrt.DirtyTech | lmrt.DirtyProto
		}
	case activate:
		e.removeTarget(ecb, "activation failed")
	}
	if wasCounted != ecb.Counted() {
		e.markChanged(nil, 0)
	}

	if ecb.Flags&lmrt.FlagRestore != 0 {
		ecb.Flags &^= lmrt.FlagRestore
		if status == wire.NCIStatusOK && activate && ecb.Flags&lmrt.FlagReconnect != 0 {
			if err := e.connCreate(ecb, ecb.ConnIface); err == nil {
				ecb.Flags |= lmrt.FlagRestore
				return
			}
		}
		e.checkRestoreComplete()
		return
	}
	e.report(Event{Type: EventModeSet, Status: status.Status(), Target: id})
}

// HandleStatusNotification delivers an NFCEE status change.
func (e *Engine) HandleStatusNotification(id wire.TargetID, status wire.EEStatus) {
	e.trace.Notification(log.LayerDiscovery, log.TargetRef(uint8(id)), log.NotificationEvent{
		Type:   log.NotifyStatus,
		Status: uint8(status),
		Detail: status.String(),
	})
	ecb := e.table.Find(id)
	if ecb == nil || ecb.IsDeviceHost() {
		e.debugLog("engine: status for unknown target", "target", id)
		return
	}

	if status == wire.EEStatusRemoved {
		e.removeTarget(ecb, "status notification")
	} else {
		wasCounted := ecb.Counted()
		e.setStatus(ecb, statusFromEE(status), "status notification")
		if status == wire.EEStatusDisabled {
			e.closeConn(ecb, true)
		}
		if wasCounted != ecb.Counted() {
			e.markChanged(nil, 0)
		}
	}
	e.report(Event{Type: EventStatusChanged, Status: wire.StatusOK, Target: id, EEStatus: ecb.Status})
}

// HandleEEStateNotification delivers an NFCEE initialization state report.
// An unrecoverable error asks observers to recover the target.
func (e *Engine) HandleEEStateNotification(id wire.TargetID, state wire.EEState) {
	e.trace.Notification(log.LayerDiscovery, log.TargetRef(uint8(id)), log.NotificationEvent{
		Type:   log.NotifyStatus,
		Status: uint8(state),
		Detail: state.String(),
	})
	if state == wire.EEStateUnrecoverableError {
		e.report(Event{Type: EventRecoveryRequired, Status: wire.StatusFailed, Target: id})
	}
}

// DiscoverRequestEntry is one entry of an NFCEE discovery request.
type DiscoverRequestEntry struct {
	Remove   bool
	Target   wire.TargetID
	Mode     wire.ListenMode
	Protocol wire.Protocol
}

func listenField(l *lmrt.ListenInfo, m wire.ListenMode) *wire.ProtoMask {
	switch m {
	case wire.ListenA:
		return &l.A
	case wire.ListenB:
		return &l.B
	case wire.ListenF:
		return &l.F
	case wire.ListenBPrime:
		return &l.BPrime
	default:
		return nil
	}
}

// HandleDiscoverRequestNotification records the listen-mode protocols
// requested by NFCEEs and reports the targets with outstanding requests.
func (e *Engine) HandleDiscoverRequestNotification(entries []DiscoverRequestEntry) {
	e.trace.Notification(log.LayerDiscovery, nil, log.NotificationEvent{
		Type:   log.NotifyDiscoverRequest,
		Size:   len(entries),
		Detail: fmt.Sprintf("%d entries", len(entries)),
	})
	for _, r := range entries {
		ecb := e.table.Find(r.Target)
		if ecb == nil || ecb.IsDeviceHost() {
			continue
		}
		field := listenField(&ecb.Listen, r.Mode)
		if field == nil {
			e.debugLog("engine: unknown listen mode", "mode", r.Mode)
			continue
		}
		if r.Remove {
			*field &^= r.Protocol.Mask()
		} else {
			*field |= r.Protocol.Mask()
		}
		if ecb.Listen == (lmrt.ListenInfo{}) {
			ecb.Flags &^= lmrt.FlagDiscoverRequest
		} else {
			ecb.Flags |= lmrt.FlagDiscoverRequest
		}
	}
	e.report(Event{Type: EventDiscoverRequest, Status: wire.StatusOK, Targets: e.discoverRequestTargets()})
}

func (e *Engine) discoverRequestTargets() []TargetInfo {
	var out []TargetInfo
	for _, ecb := range e.table.Active() {
		if ecb.Flags&lmrt.FlagDiscoverRequest != 0 {
			out = append(out, targetInfo(ecb))
		}
	}
	return out
}

// HandleActionNotification delivers an NFCEE action notification.
func (e *Engine) HandleActionNotification(id wire.TargetID, trigger wire.ActionTrigger, data []byte) {
	e.trace.Notification(log.LayerDiscovery, log.TargetRef(uint8(id)), log.NotificationEvent{
		Type:   log.NotifyAction,
		Size:   len(data),
		Detail: trigger.String(),
	})
	e.report(Event{
		Type:   EventAction,
		Status: wire.StatusOK,
		Target: id,
		Action: &ActionInfo{Trigger: trigger, Data: slices.Clone(data)},
	})
}
