package lmrt

import (
	"bytes"
	"slices"

	"github.com/lmrt-project/lmrt-go/pkg/wire"
)

// Status is the lifecycle status of an ECB.
type Status uint8

const (
	StatusUnknown Status = iota
	StatusActive
	StatusInactive
	StatusRestoring
	StatusRemoved
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusUnknown:
		return "UNKNOWN"
	case StatusActive:
		return "ACTIVE"
	case StatusInactive:
		return "INACTIVE"
	case StatusRestoring:
		return "RESTORING"
	case StatusRemoved:
		return "REMOVED"
	default:
		return "INVALID"
	}
}

// ConnState is the state of the data-pipe connection to a target.
type ConnState uint8

const (
	ConnNone ConnState = iota
	ConnWaiting
	ConnConnected
	ConnDisconnecting
)

// String returns the connection state name.
func (c ConnState) String() string {
	switch c {
	case ConnNone:
		return "NONE"
	case ConnWaiting:
		return "WAITING"
	case ConnConnected:
		return "CONNECTED"
	case ConnDisconnecting:
		return "DISCONNECTING"
	default:
		return "INVALID"
	}
}

// DirtyFlags records which routing categories changed since the last
// commit.
type DirtyFlags uint8

const (
	DirtyTech DirtyFlags = 1 << iota
	DirtyProto
	DirtyAID
	DirtyAPDU
	DirtyVS

	// DirtyRouting covers the categories carried by the routing table.
	DirtyRouting = DirtyTech | DirtyProto | DirtyAID | DirtyAPDU
)

// String returns the set flags joined with '|'.
func (d DirtyFlags) String() string {
	if d == 0 {
		return "NONE"
	}
	names := []string{"TECH", "PROTO", "AID", "APDU", "VS"}
	var b []byte
	for i, n := range names {
		if d&(1<<i) != 0 {
			if len(b) > 0 {
				b = append(b, '|')
			}
			b = append(b, n...)
		}
	}
	return string(b)
}

// Flags are lifecycle markers used by the discovery state machine.
type Flags uint8

const (
	// FlagRestore marks a target whose configuration is being re-applied
	// after a low-power recovery.
	FlagRestore Flags = 1 << iota

	// FlagRestoring marks a target awaiting its rediscovery notification.
	FlagRestoring

	// FlagDiscoverRequest marks a target that asked for listen-mode
	// discovery.
	FlagDiscoverRequest

	// FlagNotifyPending marks a target whose new-EE notification waits
	// for the system to become active.
	FlagNotifyPending

	// FlagReconnect marks a target whose connection is re-created as part
	// of a restore.
	FlagReconnect
)

// ListenInfo holds the listen-mode protocols a target requested per
// technology through a discovery request notification.
type ListenInfo struct {
	A      wire.ProtoMask
	B      wire.ProtoMask
	F      wire.ProtoMask
	BPrime wire.ProtoMask
}

// Techs returns the technologies with at least one requested protocol.
func (l ListenInfo) Techs() wire.TechMask {
	var m wire.TechMask
	if l.A != 0 {
		m |= wire.TechMaskA
	}
	if l.B != 0 || l.BPrime != 0 {
		m |= wire.TechMaskB
	}
	if l.F != 0 {
		m |= wire.TechMaskF
	}
	return m
}

// ECB is the control block of one routing target.
type ECB struct {
	ID     wire.TargetID
	Status Status

	// Interfaces reported by discovery; the first one is the default.
	Interfaces  []wire.Interface
	PowerSupply uint8

	Conn      ConnState
	ConnID    uint8
	ConnIface wire.Interface

	Tech  TechMasks
	Proto ProtoMasks

	// AIDs and APDUs hold the global ordered entry sequences. Only the
	// device host ECB carries entries.
	AIDs  []AIDEntry
	APDUs []APDUEntry

	Listen ListenInfo

	Dirty DirtyFlags
	Flags Flags

	// Status before a low-power recovery started.
	OldStatus Status

	maskSize int
	aidSize  int
	apduSize int
}

// NewECB returns an ECB for the given target.
func NewECB(id wire.TargetID) *ECB {
	return &ECB{ID: id}
}

// IsDeviceHost reports whether this is the device host ECB.
func (e *ECB) IsDeviceHost() bool {
	return e.ID == wire.DeviceHost
}

// MaskSize returns the cached technology and protocol footprint.
func (e *ECB) MaskSize() int { return e.maskSize }

// AIDSize returns the cached footprint of AID entries routed to this target.
func (e *ECB) AIDSize() int { return e.aidSize }

// APDUSize returns the cached footprint of APDU entries routed to this target.
func (e *ECB) APDUSize() int { return e.apduSize }

// Size returns the cached total footprint of this target.
func (e *ECB) Size() int {
	return e.maskSize + e.aidSize + e.apduSize
}

// HasConfig reports whether the target holds any routing configuration.
func (e *ECB) HasConfig() bool {
	return e.Size() > 0
}

// HasInterface reports whether the target lists iface.
func (e *ECB) HasInterface(iface wire.Interface) bool {
	return slices.Contains(e.Interfaces, iface)
}

// Counted reports whether the target contributes to the table size.
func (e *ECB) Counted() bool {
	return e.IsDeviceHost() || e.Status == StatusActive
}

// Clone returns a deep copy of the ECB.
func (e *ECB) Clone() *ECB {
	c := *e
	c.Interfaces = slices.Clone(e.Interfaces)
	c.AIDs = make([]AIDEntry, len(e.AIDs))
	for i, a := range e.AIDs {
		c.AIDs[i] = a.Clone()
	}
	c.APDUs = make([]APDUEntry, len(e.APDUs))
	for i, a := range e.APDUs {
		c.APDUs[i] = a.Clone()
	}
	return &c
}

// Equal reports whether two ECBs hold identical state, caches included.
func (e *ECB) Equal(o *ECB) bool {
	if e.ID != o.ID || e.Status != o.Status || e.Conn != o.Conn || e.ConnID != o.ConnID ||
		e.Tech != o.Tech || e.Proto != o.Proto || e.Dirty != o.Dirty || e.Flags != o.Flags ||
		e.maskSize != o.maskSize || e.aidSize != o.aidSize || e.apduSize != o.apduSize ||
		e.Listen != o.Listen || e.OldStatus != o.OldStatus || e.PowerSupply != o.PowerSupply ||
		e.ConnIface != o.ConnIface || !slices.Equal(e.Interfaces, o.Interfaces) {
		return false
	}
	return slices.EqualFunc(e.AIDs, o.AIDs, AIDEntry.Equal) &&
		slices.EqualFunc(e.APDUs, o.APDUs, APDUEntry.Equal)
}

// AIDEntry is one AID routing rule.
type AIDEntry struct {
	AID       []byte
	Power     wire.PowerState
	Qualifier uint8
	Route     bool
	Owner     wire.TargetID
}

// Size returns the routing footprint of the entry.
func (a AIDEntry) Size() int {
	return wire.EntryHeaderSize + len(a.AID)
}

// ConfigSize returns the bytes the entry occupies in the AID arena.
func (a AIDEntry) ConfigSize() int {
	return 2 + len(a.AID)
}

// Clone returns a deep copy of the entry.
func (a AIDEntry) Clone() AIDEntry {
	a.AID = slices.Clone(a.AID)
	return a
}

// Equal reports whether two entries are identical.
func (a AIDEntry) Equal(o AIDEntry) bool {
	return bytes.Equal(a.AID, o.AID) && a.Power == o.Power &&
		a.Qualifier == o.Qualifier && a.Route == o.Route && a.Owner == o.Owner
}

// APDUEntry is one APDU pattern routing rule.
type APDUEntry struct {
	Pattern []byte
	Mask    []byte
	Power   wire.PowerState
	Route   bool
	Owner   wire.TargetID
}

// Size returns the routing footprint of the entry.
func (a APDUEntry) Size() int {
	return wire.EntryHeaderSize + len(a.Pattern) + len(a.Mask)
}

// ConfigSize returns the bytes the entry occupies in the APDU arena.
func (a APDUEntry) ConfigSize() int {
	return 2 + len(a.Pattern) + len(a.Mask)
}

// Clone returns a deep copy of the entry.
func (a APDUEntry) Clone() APDUEntry {
	a.Pattern = slices.Clone(a.Pattern)
	a.Mask = slices.Clone(a.Mask)
	return a
}

// Equal reports whether two entries are identical.
func (a APDUEntry) Equal(o APDUEntry) bool {
	return bytes.Equal(a.Pattern, o.Pattern) && bytes.Equal(a.Mask, o.Mask) &&
		a.Power == o.Power && a.Route == o.Route && a.Owner == o.Owner
}

// FindAID returns the index of aid in entries, or -1.
func FindAID(entries []AIDEntry, aid []byte) int {
	return slices.IndexFunc(entries, func(e AIDEntry) bool {
		return bytes.Equal(e.AID, aid)
	})
}

// FindAPDU returns the index of the entry matching pattern, or -1.
//
// An entry matches when half its stored length (pattern plus mask) equals
// len(pattern) and the stored bytes start with pattern.
func FindAPDU(entries []APDUEntry, pattern []byte) int {
	return slices.IndexFunc(entries, func(e APDUEntry) bool {
		stored := len(e.Pattern) + len(e.Mask)
		if stored/2 != len(pattern) {
			return false
		}
		data := append(slices.Clip(e.Pattern), e.Mask...)
		return bytes.HasPrefix(data, pattern)
	})
}
