package wire

import (
	"fmt"
	"strings"
)

// TargetID identifies a routing target: the device host or an NFCEE.
type TargetID uint8

// DeviceHost is the target id of the host processor. It is always present
// and never discovered.
const DeviceHost TargetID = 0x00

// RouteTag is the entry type in the low nibble of a routing TLV tag.
type RouteTag uint8

const (
	// TagTechnology is a technology-based routing entry.
	TagTechnology RouteTag = 0x00

	// TagProtocol is a protocol-based routing entry.
	TagProtocol RouteTag = 0x01

	// TagAID is an AID-based routing entry.
	TagAID RouteTag = 0x02

	// TagSystemCode is a system-code routing entry. Reserved; the engine
	// never emits it.
	TagSystemCode RouteTag = 0x03

	// TagAPDU is an APDU pattern routing entry.
	TagAPDU RouteTag = 0x04
)

// Tag qualifier bits folded into the upper nibble of a routing tag.
const (
	// QualifierLongSelect lets the AID match when it is a prefix of the
	// selected AID.
	QualifierLongSelect uint8 = 0x10

	// QualifierShortSelect lets the AID match when the selected AID is a
	// prefix of it.
	QualifierShortSelect uint8 = 0x20

	// QualifierBlockRoute blocks the route when the target is not powered
	// for the current state.
	QualifierBlockRoute uint8 = 0x40

	// TagTypeMask extracts the RouteTag from a tag byte.
	TagTypeMask uint8 = 0x0F

	// QualifierMask extracts the AID match qualifiers from a tag byte.
	QualifierMask = QualifierLongSelect | QualifierShortSelect
)

// String returns the tag name.
func (t RouteTag) String() string {
	switch t {
	case TagTechnology:
		return "TECHNOLOGY"
	case TagProtocol:
		return "PROTOCOL"
	case TagAID:
		return "AID"
	case TagSystemCode:
		return "SYSTEM_CODE"
	case TagAPDU:
		return "APDU_PATTERN"
	default:
		return "UNKNOWN"
	}
}

// PowerState is the power-state byte of a routing entry.
type PowerState uint8

const (
	PowerSwitchOn        PowerState = 0x01
	PowerSwitchOff       PowerState = 0x02
	PowerBatteryOff      PowerState = 0x04
	PowerScreenOffUnlock PowerState = 0x08
	PowerScreenOnLock    PowerState = 0x10
	PowerScreenOffLock   PowerState = 0x20

	// PowerAll is every power state bit the engine knows about.
	PowerAll = PowerSwitchOn | PowerSwitchOff | PowerBatteryOff |
		PowerScreenOffUnlock | PowerScreenOnLock | PowerScreenOffLock
)

var powerStateNames = []struct {
	bit  PowerState
	name string
}{
	{PowerSwitchOn, "ON"},
	{PowerSwitchOff, "SWITCH_OFF"},
	{PowerBatteryOff, "BATTERY_OFF"},
	{PowerScreenOffUnlock, "SCREEN_OFF_UNLOCK"},
	{PowerScreenOnLock, "SCREEN_ON_LOCK"},
	{PowerScreenOffLock, "SCREEN_OFF_LOCK"},
}

// String returns the set bits joined with '|', or "NONE".
func (p PowerState) String() string {
	if p == 0 {
		return "NONE"
	}
	var parts []string
	for _, n := range powerStateNames {
		if p&n.bit != 0 {
			parts = append(parts, n.name)
		}
	}
	if rest := p &^ PowerAll; rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%02x", uint8(rest)))
	}
	return strings.Join(parts, "|")
}

// Technology is a logical RF technology.
type Technology uint8

const (
	TechA Technology = iota
	TechB
	TechF
)

// Technologies lists the routable technologies in serialization order.
var Technologies = []Technology{TechA, TechB, TechF}

// TechMask is a bitmask of technologies.
type TechMask uint8

const (
	TechMaskA TechMask = 0x01
	TechMaskB TechMask = 0x02
	TechMaskF TechMask = 0x04

	// TechMaskAll covers every routable technology.
	TechMaskAll = TechMaskA | TechMaskB | TechMaskF
)

var techTable = [...]struct {
	code uint8
	mask TechMask
	name string
}{
	TechA: {0x00, TechMaskA, "A"},
	TechB: {0x01, TechMaskB, "B"},
	TechF: {0x02, TechMaskF, "F"},
}

// Code returns the NCI RF technology code.
func (t Technology) Code() uint8 {
	if int(t) >= len(techTable) {
		return 0xFF
	}
	return techTable[t].code
}

// Mask returns the technology's bit in a TechMask.
func (t Technology) Mask() TechMask {
	if int(t) >= len(techTable) {
		return 0
	}
	return techTable[t].mask
}

// String returns the technology name.
func (t Technology) String() string {
	if int(t) >= len(techTable) {
		return "UNKNOWN"
	}
	return techTable[t].name
}

// TechnologyFromCode returns the technology for an NCI technology code.
func TechnologyFromCode(code uint8) (Technology, bool) {
	for i, e := range techTable {
		if e.code == code {
			return Technology(i), true
		}
	}
	return 0, false
}

// Has reports whether the mask contains t.
func (m TechMask) Has(t Technology) bool {
	return m&t.Mask() != 0
}

// String returns the technologies in the mask joined with '|'.
func (m TechMask) String() string {
	if m == 0 {
		return "NONE"
	}
	var parts []string
	for _, t := range Technologies {
		if m.Has(t) {
			parts = append(parts, t.String())
		}
	}
	return strings.Join(parts, "|")
}

// Protocol is a logical RF protocol.
type Protocol uint8

const (
	ProtoT1T Protocol = iota
	ProtoT2T
	ProtoT3T
	ProtoISODEP
	ProtoNFCDEP
	ProtoISO7816
)

// Protocols lists the routable protocols in serialization order.
var Protocols = []Protocol{ProtoT1T, ProtoT2T, ProtoT3T, ProtoISODEP, ProtoNFCDEP, ProtoISO7816}

// ProtoMask is a bitmask of protocols.
type ProtoMask uint8

const (
	ProtoMaskT1T     ProtoMask = 0x01
	ProtoMaskT2T     ProtoMask = 0x02
	ProtoMaskT3T     ProtoMask = 0x04
	ProtoMaskISODEP  ProtoMask = 0x08
	ProtoMaskNFCDEP  ProtoMask = 0x10
	ProtoMaskISO7816 ProtoMask = 0x20

	// ProtoMaskAll covers every routable protocol.
	ProtoMaskAll = ProtoMaskT1T | ProtoMaskT2T | ProtoMaskT3T |
		ProtoMaskISODEP | ProtoMaskNFCDEP | ProtoMaskISO7816
)

var protoTable = [...]struct {
	code uint8
	mask ProtoMask
	name string
}{
	ProtoT1T:     {0x01, ProtoMaskT1T, "T1T"},
	ProtoT2T:     {0x02, ProtoMaskT2T, "T2T"},
	ProtoT3T:     {0x03, ProtoMaskT3T, "T3T"},
	ProtoISODEP:  {0x04, ProtoMaskISODEP, "ISO_DEP"},
	ProtoNFCDEP:  {0x05, ProtoMaskNFCDEP, "NFC_DEP"},
	ProtoISO7816: {0xA0, ProtoMaskISO7816, "ISO7816"},
}

// Code returns the NCI RF protocol code.
func (p Protocol) Code() uint8 {
	if int(p) >= len(protoTable) {
		return 0xFF
	}
	return protoTable[p].code
}

// Mask returns the protocol's bit in a ProtoMask.
func (p Protocol) Mask() ProtoMask {
	if int(p) >= len(protoTable) {
		return 0
	}
	return protoTable[p].mask
}

// String returns the protocol name.
func (p Protocol) String() string {
	if int(p) >= len(protoTable) {
		return "UNKNOWN"
	}
	return protoTable[p].name
}

// ProtocolFromCode returns the protocol for an NCI protocol code.
func ProtocolFromCode(code uint8) (Protocol, bool) {
	for i, e := range protoTable {
		if e.code == code {
			return Protocol(i), true
		}
	}
	return 0, false
}

// Has reports whether the mask contains p.
func (m ProtoMask) Has(p Protocol) bool {
	return m&p.Mask() != 0
}

// String returns the protocols in the mask joined with '|'.
func (m ProtoMask) String() string {
	if m == 0 {
		return "NONE"
	}
	var parts []string
	for _, p := range Protocols {
		if m.Has(p) {
			parts = append(parts, p.String())
		}
	}
	return strings.Join(parts, "|")
}

// Interface is an NFCEE interface type reported at discovery.
type Interface uint8

const (
	InterfaceAPDU        Interface = 0x00
	InterfaceHCIAccess   Interface = 0x01
	InterfaceT3T         Interface = 0x02
	InterfaceTransparent Interface = 0x03
	InterfaceProprietary Interface = 0x80
)

// String returns the interface name.
func (i Interface) String() string {
	switch i {
	case InterfaceAPDU:
		return "APDU"
	case InterfaceHCIAccess:
		return "HCI_ACCESS"
	case InterfaceT3T:
		return "T3T_COMMAND_SET"
	case InterfaceTransparent:
		return "TRANSPARENT"
	case InterfaceProprietary:
		return "PROPRIETARY"
	default:
		return "UNKNOWN"
	}
}

// Wire-level limits.
const (
	// MaxRoutingTLVSize is the maximum number of TLV bytes in one routing
	// command.
	MaxRoutingTLVSize = 0xFD

	// MaxAIDLen is the longest AID the routing table accepts.
	MaxAIDLen = 16

	// MaxAPDUPatternLen is the longest APDU pattern (and mask).
	MaxAPDUPatternLen = 20

	// EntryHeaderSize is tag, length, target and power state.
	EntryHeaderSize = 4

	// TechProtoEntrySize is the size of a technology or protocol entry.
	TechProtoEntrySize = EntryHeaderSize + 1
)
