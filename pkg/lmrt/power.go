package lmrt

import "github.com/lmrt-project/lmrt-go/pkg/wire"

// ScreenStateSupport describes how the controller encodes screen-state
// power refinements.
type ScreenStateSupport uint8

const (
	// ScreenStateNone strips all screen-state bits.
	ScreenStateNone ScreenStateSupport = iota

	// ScreenStateLegacy is the NCI 1.0 vendor encoding: screen-off-unlock
	// and screen-off-lock share a single screen-off bit.
	ScreenStateLegacy

	// ScreenStateFull is the NCI 2.0 encoding with three distinct bits.
	ScreenStateFull
)

// String returns the support level name.
func (s ScreenStateSupport) String() string {
	switch s {
	case ScreenStateNone:
		return "NONE"
	case ScreenStateLegacy:
		return "LEGACY"
	case ScreenStateFull:
		return "FULL"
	default:
		return "UNKNOWN"
	}
}

// ParseScreenStateSupport parses a support level name.
func ParseScreenStateSupport(s string) (ScreenStateSupport, bool) {
	switch s {
	case "none", "NONE":
		return ScreenStateNone, true
	case "legacy", "LEGACY", "nci1":
		return ScreenStateLegacy, true
	case "full", "FULL", "nci2":
		return ScreenStateFull, true
	}
	return 0, false
}

// OnLock returns the screen-on-lock bit for this encoding.
func (s ScreenStateSupport) OnLock() wire.PowerState {
	if s == ScreenStateNone {
		return 0
	}
	return wire.PowerScreenOnLock
}

// OffUnlock returns the screen-off-unlock bit for this encoding.
func (s ScreenStateSupport) OffUnlock() wire.PowerState {
	if s == ScreenStateNone {
		return 0
	}
	return wire.PowerScreenOffUnlock
}

// OffLock returns the screen-off-lock bit for this encoding.
func (s ScreenStateSupport) OffLock() wire.PowerState {
	switch s {
	case ScreenStateLegacy:
		return wire.PowerScreenOffUnlock
	case ScreenStateFull:
		return wire.PowerScreenOffLock
	default:
		return 0
	}
}

// Normalize maps a caller supplied power-state byte onto this encoding.
func (s ScreenStateSupport) Normalize(p wire.PowerState) wire.PowerState {
	base := p & (wire.PowerSwitchOn | wire.PowerSwitchOff | wire.PowerBatteryOff)
	if p&wire.PowerScreenOnLock != 0 {
		base |= s.OnLock()
	}
	if p&wire.PowerScreenOffUnlock != 0 {
		base |= s.OffUnlock()
	}
	if p&wire.PowerScreenOffLock != 0 {
		base |= s.OffLock()
	}
	return base
}

// PowerMasks holds the per-power-state bitmasks of one routing category.
// The screen refinements only take effect for bits also set in SwitchOn.
type PowerMasks[M ~uint8] struct {
	SwitchOn   M
	SwitchOff  M
	BatteryOff M

	ScreenLock    M
	ScreenOff     M
	ScreenOffLock M
}

// PowerState computes the power-state byte for one technology or protocol
// bit.
func (p PowerMasks[M]) PowerState(bit M, screen ScreenStateSupport) wire.PowerState {
	var ps wire.PowerState
	if p.SwitchOn&bit != 0 {
		ps |= wire.PowerSwitchOn
	}
	if p.SwitchOff&bit != 0 {
		ps |= wire.PowerSwitchOff
	}
	if p.BatteryOff&bit != 0 {
		ps |= wire.PowerBatteryOff
	}
	if ps&wire.PowerSwitchOn != 0 {
		if p.ScreenLock&bit != 0 {
			ps |= screen.OnLock()
		}
		if p.ScreenOff&bit != 0 {
			ps |= screen.OffUnlock()
		}
		if p.ScreenOffLock&bit != 0 {
			ps |= screen.OffLock()
		}
	}
	return ps
}

// Routed returns every bit with a non-zero base power state.
func (p PowerMasks[M]) Routed() M {
	return p.SwitchOn | p.SwitchOff | p.BatteryOff
}

// All returns every bit set in any power state.
func (p PowerMasks[M]) All() M {
	return p.Routed() | p.ScreenLock | p.ScreenOff | p.ScreenOffLock
}

// IsZero reports whether no bit is configured at all.
func (p PowerMasks[M]) IsZero() bool {
	return p.All() == 0
}

// Clear removes bits from every power state.
func (p *PowerMasks[M]) Clear(bits M) {
	p.SwitchOn &^= bits
	p.SwitchOff &^= bits
	p.BatteryOff &^= bits
	p.ScreenLock &^= bits
	p.ScreenOff &^= bits
	p.ScreenOffLock &^= bits
}

// TechMasks is the technology routing configuration of one target.
type TechMasks = PowerMasks[wire.TechMask]

// ProtoMasks is the protocol routing configuration of one target.
type ProtoMasks = PowerMasks[wire.ProtoMask]
