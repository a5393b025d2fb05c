package lmrt

import "github.com/lmrt-project/lmrt-go/pkg/wire"

// TechProtoFootprint returns the size of the technology and protocol
// entries e would emit.
func TechProtoFootprint(e *ECB, caps Capabilities) int {
	n := 0
	for _, t := range wire.Technologies {
		if e.Tech.PowerState(t.Mask(), caps.Screen) != 0 {
			n += wire.TechProtoEntrySize
		}
	}
	for _, p := range caps.Protocols() {
		if e.Proto.PowerState(p.Mask(), caps.Screen) != 0 {
			n += wire.TechProtoEntrySize
		}
	}
	return n
}

// AIDFootprint returns the size of the routed AID entries stored on e,
// starting at index from.
func AIDFootprint(e *ECB, from int) int {
	n := 0
	for i := max(from, 0); i < len(e.AIDs); i++ {
		if e.AIDs[i].Route {
			n += e.AIDs[i].Size()
		}
	}
	return n
}

// APDUFootprint returns the size of the routed APDU entries stored on e,
// starting at index from.
func APDUFootprint(e *ECB, from int) int {
	n := 0
	for i := max(from, 0); i < len(e.APDUs); i++ {
		if e.APDUs[i].Route {
			n += e.APDUs[i].Size()
		}
	}
	return n
}

// UpdateMaskSize recomputes the technology and protocol cache of e.
func UpdateMaskSize(e *ECB, caps Capabilities) {
	e.maskSize = TechProtoFootprint(e, caps)
}

// UpdateEntrySizes recomputes the AID and APDU caches of every ECB from
// the device host's entry sequences.
func (t *Table) UpdateEntrySizes() {
	for _, e := range t.All() {
		e.aidSize = 0
		e.apduSize = 0
	}
	for _, a := range t.dh.AIDs {
		if owner := t.Find(a.Owner); owner != nil && a.Route {
			owner.aidSize += a.Size()
		}
	}
	for _, a := range t.dh.APDUs {
		if owner := t.Find(a.Owner); owner != nil && a.Route {
			owner.apduSize += a.Size()
		}
	}
}

// UpdateSizes recomputes every size cache.
func (t *Table) UpdateSizes(caps Capabilities) {
	for _, e := range t.All() {
		UpdateMaskSize(e, caps)
	}
	t.UpdateEntrySizes()
}

// TotalSize returns the footprint of the device host and every Active EE.
func (t *Table) TotalSize() int {
	n := t.dh.Size()
	for _, e := range t.ees {
		if e.Status == StatusActive {
			n += e.Size()
		}
	}
	return n
}

// ProjectedSize returns the total size after owner's footprint grows by
// delta. An owner that is not yet counted is included, so its entries
// still fit once it becomes Active.
func (t *Table) ProjectedSize(owner *ECB, delta int) int {
	n := t.TotalSize() + delta
	if !owner.Counted() {
		n += owner.Size()
	}
	return n
}

// ArenaUsage returns the bytes used in the AID and APDU arenas.
func (t *Table) ArenaUsage() (aid, apdu int) {
	for _, a := range t.dh.AIDs {
		aid += a.ConfigSize()
	}
	for _, a := range t.dh.APDUs {
		apdu += a.ConfigSize()
	}
	return aid, apdu
}
