package lmrt

import (
	"slices"

	"github.com/lmrt-project/lmrt-go/pkg/wire"
)

// Builder serializes ECB configuration into routing entries for one commit
// cycle. Call Reset before each cycle.
type Builder struct {
	table *Table
	caps  Capabilities

	nfcDepAdded bool
	offRouting  bool
}

// NewBuilder creates a builder over t.
func NewBuilder(t *Table, caps Capabilities) *Builder {
	return &Builder{table: t, caps: caps}
}

// Reset starts a new commit cycle.
func (b *Builder) Reset() {
	b.nfcDepAdded = false
	b.offRouting = false
}

// OffRouting reports whether any entry built this cycle routes in a power
// state other than switch-on alone.
func (b *Builder) OffRouting() bool {
	return b.offRouting
}

// Build appends the entries of e for category cat to p. It reports whether
// p flushed a command while doing so.
func (b *Builder) Build(e *ECB, cat Category, p *Packer) bool {
	flushed := false
	for _, entry := range b.Entries(e, cat) {
		if p.Add(entry) {
			flushed = true
		}
	}
	return flushed
}

// Entries returns the entries of e for category cat.
func (b *Builder) Entries(e *ECB, cat Category) []wire.Entry {
	switch cat {
	case CategoryTechnology:
		return b.techEntries(e)
	case CategoryProtocol:
		return b.protoEntries(e)
	case CategoryAID:
		return b.aidEntries(e)
	case CategoryAPDU:
		return b.apduEntries(e)
	default:
		return nil
	}
}

func (b *Builder) techEntries(e *ECB) []wire.Entry {
	var out []wire.Entry
	for _, t := range wire.Technologies {
		ps := e.Tech.PowerState(t.Mask(), b.caps.Screen)
		if ps == 0 {
			continue
		}
		b.noteOffRouting(ps)
		out = append(out, wire.Entry{
			Tag:    wire.TagTechnology,
			Target: e.ID,
			Power:  ps,
			Value:  []byte{t.Code()},
		})
	}
	return out
}

func (b *Builder) protoEntries(e *ECB) []wire.Entry {
	var out []wire.Entry
	for _, p := range b.caps.Protocols() {
		ps := e.Proto.PowerState(p.Mask(), b.caps.Screen)
		if ps == 0 {
			continue
		}
		var qualifier uint8
		if p == wire.ProtoISODEP || p == wire.ProtoISO7816 {
			qualifier = b.caps.blockQualifier()
			if e.IsDeviceHost() {
				// Host card emulation stays reachable on the lock screen.
				ps |= b.caps.Screen.OnLock()
			}
		}
		b.noteOffRouting(ps)
		out = append(out, wire.Entry{
			Tag:       wire.TagProtocol,
			Qualifier: qualifier,
			Target:    e.ID,
			Power:     ps,
			Value:     []byte{p.Code()},
		})
	}

	if e.IsDeviceHost() && !b.nfcDepAdded {
		b.nfcDepAdded = true
		if !e.Proto.Routed().Has(wire.ProtoNFCDEP) {
			ps := wire.PowerSwitchOn
			if b.caps.ProvisionMode {
				ps |= b.caps.Screen.OnLock()
			}
			out = append(out, wire.Entry{
				Tag:    wire.TagProtocol,
				Target: wire.DeviceHost,
				Power:  ps,
				Value:  []byte{wire.ProtoNFCDEP.Code()},
			})
		}
	}
	return out
}

func (b *Builder) aidEntries(e *ECB) []wire.Entry {
	var out []wire.Entry
	for _, a := range e.AIDs {
		if !a.Route || !b.table.IsActive(a.Owner) {
			continue
		}
		b.noteOffRouting(a.Power)
		out = append(out, wire.Entry{
			Tag:       wire.TagAID,
			Qualifier: a.Qualifier | b.caps.blockQualifier(),
			Target:    a.Owner,
			Power:     a.Power,
			Value:     slices.Clone(a.AID),
		})
	}
	return out
}

func (b *Builder) apduEntries(e *ECB) []wire.Entry {
	var out []wire.Entry
	for _, a := range e.APDUs {
		if !a.Route || !b.table.IsActive(a.Owner) {
			continue
		}
		b.noteOffRouting(a.Power)
		value := make([]byte, 0, len(a.Pattern)+len(a.Mask))
		value = append(value, a.Pattern...)
		value = append(value, a.Mask...)
		out = append(out, wire.Entry{
			Tag:    wire.TagAPDU,
			Target: a.Owner,
			Power:  a.Power,
			Value:  value,
		})
	}
	return out
}

func (b *Builder) noteOffRouting(ps wire.PowerState) {
	if ps != wire.PowerSwitchOn {
		b.offRouting = true
	}
}
