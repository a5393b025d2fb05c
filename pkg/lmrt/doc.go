// Package lmrt holds the Listen Mode Routing Table model and the pure
// algorithms that operate on it.
//
// The package has no notion of time, transport or events. It provides:
//
//   - ECB: the per-target control block holding technology, protocol,
//     AID and APDU pattern routing configuration with its size caches
//   - Table: the fixed-capacity ECB table plus the device host ECB
//   - size accounting (footprints and the total table size)
//   - Builder: serialization of one ECB and category into routing entries
//   - Packer: the flush policy that packs entries into length-bounded
//     routing commands without ever splitting an entry
//
// # Entry Ordering
//
// The controller evaluates AID and APDU pattern rules in table order, so
// all such entries live in one ordered sequence held by the device host
// ECB. Each entry records the target it routes to. Entries owned by a
// target that is not Active are skipped during serialization but keep
// their position.
//
// # Size Accounting
//
// Technology and protocol entries are five bytes each. AID and APDU
// pattern entries are four header bytes plus their payload. The total
// table size counts the device host and every Active ECB.
package lmrt
