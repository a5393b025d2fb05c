package wire

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// NCI control packet header fields.
const (
	mtCommand      = 0x20
	mtResponse     = 0x40
	mtNotification = 0x60
	mtMask         = 0xE0
	gidMask        = 0x0F
	oidMask        = 0x3F

	// GroupRF is the NCI RF management group.
	GroupRF = 0x01

	// OpcodeSetRouting is RF_SET_LISTEN_MODE_ROUTING within GroupRF.
	OpcodeSetRouting = 0x01

	// HeaderSize is the NCI control packet header length.
	HeaderSize = 3

	// setRoutingPrefix is the more flag and the entry count.
	setRoutingPrefix = 2
)

// Framing errors.
var (
	ErrShortPacket      = errors.New("packet too short")
	ErrUnexpectedHeader = errors.New("unexpected packet header")
	ErrLengthMismatch   = errors.New("payload length mismatch")
	ErrPayloadTooLarge  = errors.New("routing payload too large")
	ErrMalformedEntry   = errors.New("malformed routing entry")
)

// SetRoutingCommand is one RF_SET_LISTEN_MODE_ROUTING command.
type SetRoutingCommand struct {
	// More is set on every command of a table update but the last.
	More bool

	// Count is the number of TLV entries in Entries.
	Count uint8

	// Entries holds the concatenated TLV entries.
	Entries []byte
}

// EncodeSetRouting frames a routing command as an NCI control packet.
func EncodeSetRouting(cmd SetRoutingCommand) ([]byte, error) {
	if len(cmd.Entries) > MaxRoutingTLVSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(cmd.Entries))
	}

	payloadLen := setRoutingPrefix + len(cmd.Entries)
	packet := make([]byte, 0, HeaderSize+payloadLen)
	packet = append(packet, mtCommand|GroupRF, OpcodeSetRouting, byte(payloadLen))
	if cmd.More {
		packet = append(packet, 0x01)
	} else {
		packet = append(packet, 0x00)
	}
	packet = append(packet, cmd.Count)
	packet = append(packet, cmd.Entries...)
	return packet, nil
}

// DecodeSetRouting parses an NCI control packet carrying a routing command.
func DecodeSetRouting(packet []byte) (SetRoutingCommand, error) {
	payload, err := payloadOf(packet, mtCommand)
	if err != nil {
		return SetRoutingCommand{}, err
	}
	if len(payload) < setRoutingPrefix {
		return SetRoutingCommand{}, ErrShortPacket
	}

	cmd := SetRoutingCommand{
		More:    payload[0] != 0,
		Count:   payload[1],
		Entries: payload[setRoutingPrefix:],
	}

	entries, err := ParseEntries(cmd.Entries)
	if err != nil {
		return SetRoutingCommand{}, err
	}
	if len(entries) != int(cmd.Count) {
		return SetRoutingCommand{}, fmt.Errorf("%w: count %d, found %d entries",
			ErrMalformedEntry, cmd.Count, len(entries))
	}
	return cmd, nil
}

// EncodeSetRoutingResponse frames the controller's response to a routing
// command.
func EncodeSetRoutingResponse(status NCIStatus) []byte {
	return []byte{mtResponse | GroupRF, OpcodeSetRouting, 0x01, byte(status)}
}

// DecodeSetRoutingResponse parses a routing command response.
func DecodeSetRoutingResponse(packet []byte) (NCIStatus, error) {
	payload, err := payloadOf(packet, mtResponse)
	if err != nil {
		return 0, err
	}
	if len(payload) < 1 {
		return 0, ErrShortPacket
	}
	return NCIStatus(payload[0]), nil
}

func payloadOf(packet []byte, mt byte) ([]byte, error) {
	if len(packet) < HeaderSize {
		return nil, ErrShortPacket
	}
	if packet[0]&mtMask != mt || packet[0]&gidMask != GroupRF || packet[1]&oidMask != OpcodeSetRouting {
		return nil, fmt.Errorf("%w: %02x %02x", ErrUnexpectedHeader, packet[0], packet[1])
	}
	if int(packet[2]) != len(packet)-HeaderSize {
		return nil, fmt.Errorf("%w: header says %d, have %d",
			ErrLengthMismatch, packet[2], len(packet)-HeaderSize)
	}
	return packet[HeaderSize:], nil
}

// Entry is one decoded routing TLV.
type Entry struct {
	Tag       RouteTag
	Qualifier uint8
	Target    TargetID
	Power     PowerState
	Value     []byte
}

// Size returns the encoded size of the entry.
func (e Entry) Size() int {
	return EntryHeaderSize + len(e.Value)
}

// AppendTo appends the encoded entry to b.
func (e Entry) AppendTo(b []byte) []byte {
	b = append(b, byte(e.Tag)|e.Qualifier, byte(2+len(e.Value)), byte(e.Target), byte(e.Power))
	return append(b, e.Value...)
}

// Pattern splits an APDU pattern entry value into pattern and mask.
func (e Entry) Pattern() (pattern, mask []byte) {
	half := len(e.Value) / 2
	return e.Value[:half], e.Value[half:]
}

// String returns a one-line description of the entry.
func (e Entry) String() string {
	var value string
	switch e.Tag {
	case TagTechnology:
		if t, ok := TechnologyFromCode(e.valueByte()); ok {
			value = t.String()
		}
	case TagProtocol:
		if p, ok := ProtocolFromCode(e.valueByte()); ok {
			value = p.String()
		}
	case TagAPDU:
		pattern, mask := e.Pattern()
		value = hex.EncodeToString(pattern) + "/" + hex.EncodeToString(mask)
	}
	if value == "" {
		value = hex.EncodeToString(e.Value)
	}
	s := fmt.Sprintf("%s target=0x%02x power=%s value=%s", e.Tag, e.Target, e.Power, value)
	if e.Qualifier != 0 {
		s += fmt.Sprintf(" qualifier=0x%02x", e.Qualifier)
	}
	return s
}

func (e Entry) valueByte() uint8 {
	if len(e.Value) == 0 {
		return 0xFF
	}
	return e.Value[0]
}

// ParseEntries decodes a sequence of concatenated routing TLVs.
func ParseEntries(tlvs []byte) ([]Entry, error) {
	var entries []Entry
	for off := 0; off < len(tlvs); {
		if len(tlvs)-off < EntryHeaderSize {
			return nil, fmt.Errorf("%w: truncated header at offset %d", ErrMalformedEntry, off)
		}
		tag := tlvs[off]
		length := int(tlvs[off+1])
		if length < 2 || off+2+length > len(tlvs) {
			return nil, fmt.Errorf("%w: bad length %d at offset %d", ErrMalformedEntry, length, off)
		}
		entries = append(entries, Entry{
			Tag:       RouteTag(tag & TagTypeMask),
			Qualifier: tag &^ TagTypeMask,
			Target:    TargetID(tlvs[off+2]),
			Power:     PowerState(tlvs[off+3]),
			Value:     append([]byte(nil), tlvs[off+4:off+2+length]...),
		})
		off += 2 + length
	}
	return entries, nil
}
