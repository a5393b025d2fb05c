package engine

import (
	"fmt"

	"github.com/lmrt-project/lmrt-go/pkg/lmrt"
	"github.com/lmrt-project/lmrt-go/pkg/wire"
)

// Targets returns the known NFCEEs in table order.
func (e *Engine) Targets() []TargetInfo {
	out := make([]TargetInfo, 0, e.table.Len())
	for _, ecb := range e.table.EEs() {
		if ecb.ID != lmrt.Unclaimed {
			out = append(out, targetInfo(ecb))
		}
	}
	return out
}

// ECB returns a copy of the control block for id, or nil.
func (e *Engine) ECB(id wire.TargetID) *lmrt.ECB {
	if ecb := e.table.Find(id); ecb != nil {
		return ecb.Clone()
	}
	return nil
}

// Table returns a deep copy of the ECB table.
func (e *Engine) Table() *lmrt.Table {
	return e.table.Clone()
}

// TotalTableSize returns the footprint of every counted target.
func (e *Engine) TotalTableSize() int {
	return e.table.TotalSize()
}

// OffRouting reports whether the last commit routed anything outside the
// switch-on state.
func (e *Engine) OffRouting() bool {
	return e.offRouting
}

// MaxAIDConfigLength returns the AID arena size.
func (e *Engine) MaxAIDConfigLength() int {
	return e.limits.AIDConfigLen
}

// Outstanding returns the number of routing responses still awaited.
func (e *Engine) Outstanding() int {
	return e.waitRsp
}

// TechRoute returns, per technology in wire.Technologies order, the
// target that receives it in the given base power state. Unrouted
// technologies resolve to the device host.
func (e *Engine) TechRoute(power wire.PowerState) ([]wire.TargetID, error) {
	var pick func(m lmrt.TechMasks) wire.TechMask
	switch power {
	case wire.PowerSwitchOn:
		pick = func(m lmrt.TechMasks) wire.TechMask { return m.SwitchOn }
	case wire.PowerSwitchOff:
		pick = func(m lmrt.TechMasks) wire.TechMask { return m.SwitchOff }
	case wire.PowerBatteryOff:
		pick = func(m lmrt.TechMasks) wire.TechMask { return m.BatteryOff }
	default:
		return nil, fmt.Errorf("%w: power state %s", ErrInvalidParam, power)
	}

	out := make([]wire.TargetID, len(wire.Technologies))
	for i, t := range wire.Technologies {
		out[i] = wire.DeviceHost
		for _, ecb := range e.table.Active() {
			if pick(ecb.Tech)&t.Mask() != 0 {
				out[i] = ecb.ID
				break
			}
		}
	}
	return out, nil
}

// SupportedTechs returns the technologies a target asked to listen on.
func (e *Engine) SupportedTechs(id wire.TargetID) (wire.TechMask, error) {
	ecb := e.table.Find(id)
	if ecb == nil || ecb.IsDeviceHost() {
		return 0, fmt.Errorf("%w: 0x%02x", ErrUnknownTarget, uint8(id))
	}
	return ecb.Listen.Techs(), nil
}
