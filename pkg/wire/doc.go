// Package wire defines the NCI wire format used by the listen mode routing
// engine.
//
// The package holds the static lookup tables that map logical technology
// and protocol identifiers to their NCI codes and bitmasks, the power-state
// and qualifier bits carried by routing entries, and the control-packet
// framing for the RF_SET_LISTEN_MODE_ROUTING command family.
//
// # Routing Entries
//
// Every routing entry is a TLV:
//
//	+-----+-----+--------+-------------+---------+
//	| tag | len | target | power state | value   |
//	+-----+-----+--------+-------------+---------+
//
// The value is a technology code, a protocol code, the AID bytes, or an
// APDU pattern followed by its mask. The upper bits of the tag carry the
// route-block and AID-match qualifiers.
//
// # Command Framing
//
// A routing command payload is a more flag, an entry count and the TLV
// entries. At most MaxRoutingTLVSize bytes of entries fit in one command;
// larger tables are sent as several commands with the more flag set on all
// but the last.
//
// # CBOR
//
// Snapshots of engine state are encoded with CBOR (RFC 8949) using integer
// keys, the same deterministic encoder options as the trace log.
package wire
