package engine

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/lmrt-project/lmrt-go/pkg/lmrt"
	"github.com/lmrt-project/lmrt-go/pkg/wire"
)

// routable returns the ECB that may own routing configuration.
func (e *Engine) routable(id wire.TargetID) (*lmrt.ECB, error) {
	ecb := e.table.Find(id)
	if ecb == nil || ecb.Status == lmrt.StatusRemoved {
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownTarget, uint8(id))
	}
	return ecb, nil
}

// SetDefaultTechRouting replaces the technology routing of a target.
func (e *Engine) SetDefaultTechRouting(id wire.TargetID, masks lmrt.TechMasks) error {
	return e.result(EventTechSet, id, e.setTech(id, masks))
}

// ClearDefaultTechRouting removes the given technologies from a target in
// every power state.
func (e *Engine) ClearDefaultTechRouting(id wire.TargetID, techs wire.TechMask) error {
	err := e.clearTech(id, techs)
	return e.result(EventTechCleared, id, err)
}

// SetDefaultProtoRouting replaces the protocol routing of a target.
func (e *Engine) SetDefaultProtoRouting(id wire.TargetID, masks lmrt.ProtoMasks) error {
	return e.result(EventProtoSet, id, e.setProto(id, masks))
}

// ClearDefaultProtoRouting removes the given protocols from a target in
// every power state.
func (e *Engine) ClearDefaultProtoRouting(id wire.TargetID, protos wire.ProtoMask) error {
	err := e.clearProto(id, protos)
	return e.result(EventProtoCleared, id, err)
}

func (e *Engine) clearTech(id wire.TargetID, techs wire.TechMask) error {
	ecb, err := e.routable(id)
	if err != nil {
		return err
	}
	masks := ecb.Tech
	masks.Clear(techs)
	return e.applyTech(ecb, masks)
}

func (e *Engine) setTech(id wire.TargetID, masks lmrt.TechMasks) error {
	ecb, err := e.routable(id)
	if err != nil {
		return err
	}
	if masks.All()&^wire.TechMaskAll != 0 {
		return fmt.Errorf("%w: technology mask", ErrInvalidParam)
	}
	return e.applyTech(ecb, masks)
}

func (e *Engine) applyTech(ecb *lmrt.ECB, masks lmrt.TechMasks) error {
	if masks == ecb.Tech {
		return nil
	}
	old := ecb.Tech
	ecb.Tech = masks
	if err := e.checkMaskFit(ecb); err != nil {
		ecb.Tech = old
		return err
	}
	lmrt.UpdateMaskSize(ecb, e.cfg.Capabilities)
	e.markChanged(ecb, lmrt.DirtyTech)
	return nil
}

func (e *Engine) clearProto(id wire.TargetID, protos wire.ProtoMask) error {
	ecb, err := e.routable(id)
	if err != nil {
		return err
	}
	masks := ecb.Proto
	masks.Clear(protos)
	return e.applyProto(ecb, masks)
}

func (e *Engine) setProto(id wire.TargetID, masks lmrt.ProtoMasks) error {
	ecb, err := e.routable(id)
	if err != nil {
		return err
	}
	all := masks.All()
	if all&^wire.ProtoMaskAll != 0 {
		return fmt.Errorf("%w: protocol mask", ErrInvalidParam)
	}
	if all.Has(wire.ProtoISO7816) && !e.cfg.Capabilities.ISO7816 {
		return fmt.Errorf("%w: ISO7816 routing not supported", ErrInvalidParam)
	}
	return e.applyProto(ecb, masks)
}

func (e *Engine) applyProto(ecb *lmrt.ECB, masks lmrt.ProtoMasks) error {
	if masks == ecb.Proto {
		return nil
	}
	old := ecb.Proto
	ecb.Proto = masks
	if err := e.checkMaskFit(ecb); err != nil {
		ecb.Proto = old
		return err
	}
	lmrt.UpdateMaskSize(ecb, e.cfg.Capabilities)
	e.markChanged(ecb, lmrt.DirtyProto)
	return nil
}

// checkMaskFit validates the prospective mask footprint of ecb, whose
// masks already hold the new values while its cache holds the old size.
func (e *Engine) checkMaskFit(ecb *lmrt.ECB) error {
	delta := lmrt.TechProtoFootprint(ecb, e.cfg.Capabilities) - ecb.MaskSize()
	if delta <= 0 {
		return nil
	}
	if n := e.table.ProjectedSize(ecb, delta); n > e.limits.TableSize {
		return fmt.Errorf("%w: %d of %d bytes", ErrBufferFull, n, e.limits.TableSize)
	}
	return nil
}

// AddAID routes aid to a target. Re-adding an AID to its current owner
// updates the power state and qualifier in place.
func (e *Engine) AddAID(id wire.TargetID, aid []byte, power wire.PowerState, qualifier uint8) error {
	return e.result(EventAIDAdded, id, e.addAID(id, aid, power, qualifier))
}

func (e *Engine) addAID(id wire.TargetID, aid []byte, power wire.PowerState, qualifier uint8) error {
	if len(aid) == 0 || len(aid) > wire.MaxAIDLen {
		return fmt.Errorf("%w: AID length %d", ErrInvalidParam, len(aid))
	}
	if qualifier&^wire.QualifierMask != 0 {
		return fmt.Errorf("%w: AID qualifier 0x%02x", ErrInvalidParam, qualifier)
	}
	owner, err := e.routable(id)
	if err != nil {
		return err
	}
	power = e.cfg.Capabilities.Screen.Normalize(power)
	if power == 0 {
		return fmt.Errorf("%w: empty power state", ErrInvalidParam)
	}

	dh := e.table.DeviceHost()
	if i := lmrt.FindAID(dh.AIDs, aid); i >= 0 {
		cur := &dh.AIDs[i]
		if cur.Owner != id {
			return fmt.Errorf("%w: AID routed to 0x%02x", ErrSemantic, uint8(cur.Owner))
		}
		if err := e.checkEntryFits(cur.Size()); err != nil {
			return err
		}
		if !cur.Route {
			if n := e.table.ProjectedSize(owner, cur.Size()); n > e.limits.TableSize {
				return fmt.Errorf("%w: %d of %d bytes", ErrBufferFull, n, e.limits.TableSize)
			}
		}
		cur.Power = power
		cur.Qualifier = qualifier
		cur.Route = true
		e.markChanged(owner, lmrt.DirtyAID)
		return nil
	}

	entry := lmrt.AIDEntry{
		AID:       slices.Clone(aid),
		Power:     power,
		Qualifier: qualifier,
		Route:     true,
		Owner:     id,
	}
	if err := e.checkEntryFits(entry.Size()); err != nil {
		return err
	}
	aidUsed, apduUsed := e.table.ArenaUsage()
	if aidUsed+apduUsed+entry.ConfigSize() > e.limits.AIDConfigLen {
		return fmt.Errorf("%w: AID arena", ErrBufferFull)
	}
	if len(dh.AIDs) >= e.limits.MaxAIDEntries {
		return fmt.Errorf("%w: %d AID entries", ErrBufferFull, len(dh.AIDs))
	}
	if n := e.table.ProjectedSize(owner, entry.Size()); n > e.limits.TableSize {
		return fmt.Errorf("%w: %d of %d bytes", ErrBufferFull, n, e.limits.TableSize)
	}
	dh.AIDs = append(dh.AIDs, entry)
	e.markChanged(owner, lmrt.DirtyAID)
	return nil
}

// RemoveAID removes the entry for aid, whichever target owns it.
func (e *Engine) RemoveAID(aid []byte) error {
	dh := e.table.DeviceHost()
	i := lmrt.FindAID(dh.AIDs, aid)
	if i < 0 {
		return e.result(EventAIDRemoved, wire.DeviceHost, fmt.Errorf("%w: AID not found", ErrInvalidParam))
	}
	owner := dh.AIDs[i].Owner
	dh.AIDs = slices.Delete(dh.AIDs, i, i+1)
	e.markChanged(e.table.Find(owner), lmrt.DirtyAID)
	return e.result(EventAIDRemoved, owner, nil)
}

// RemoveAllAIDs removes every AID entry.
func (e *Engine) RemoveAllAIDs() error {
	dh := e.table.DeviceHost()
	if len(dh.AIDs) > 0 {
		for _, a := range dh.AIDs {
			if owner := e.table.Find(a.Owner); owner != nil {
				owner.Dirty |= lmrt.DirtyAID
			}
		}
		dh.AIDs = nil
		e.markChanged(dh, lmrt.DirtyAID)
	}
	return e.result(EventAIDRemoved, wire.DeviceHost, nil)
}

// AddAPDUPattern routes an APDU pattern to a target.
func (e *Engine) AddAPDUPattern(id wire.TargetID, pattern, mask []byte, power wire.PowerState) error {
	return e.result(EventAPDUAdded, id, e.addAPDU(id, pattern, mask, power))
}

func (e *Engine) addAPDU(id wire.TargetID, pattern, mask []byte, power wire.PowerState) error {
	if len(pattern) == 0 || len(pattern) > wire.MaxAPDUPatternLen {
		return fmt.Errorf("%w: APDU pattern length %d", ErrInvalidParam, len(pattern))
	}
	if len(mask) == 0 || len(mask) > wire.MaxAPDUPatternLen {
		return fmt.Errorf("%w: APDU mask length %d", ErrInvalidParam, len(mask))
	}
	owner, err := e.routable(id)
	if err != nil {
		return err
	}
	power = e.cfg.Capabilities.Screen.Normalize(power)
	if power == 0 {
		return fmt.Errorf("%w: empty power state", ErrInvalidParam)
	}

	dh := e.table.DeviceHost()
	if i := lmrt.FindAPDU(dh.APDUs, pattern); i >= 0 {
		cur := &dh.APDUs[i]
		if cur.Owner != id {
			return fmt.Errorf("%w: APDU pattern routed to 0x%02x", ErrSemantic, uint8(cur.Owner))
		}
		if err := e.checkEntryFits(wire.EntryHeaderSize + len(cur.Pattern) + len(mask)); err != nil {
			return err
		}
		delta := len(mask) - len(cur.Mask)
		if !cur.Route {
			delta += cur.Size()
		}
		if delta > 0 {
			if n := e.table.ProjectedSize(owner, delta); n > e.limits.TableSize {
				return fmt.Errorf("%w: %d of %d bytes", ErrBufferFull, n, e.limits.TableSize)
			}
		}
		if !bytes.Equal(cur.Mask, mask) {
			cur.Mask = slices.Clone(mask)
		}
		cur.Power = power
		cur.Route = true
		e.markChanged(owner, lmrt.DirtyAPDU)
		return nil
	}

	entry := lmrt.APDUEntry{
		Pattern: slices.Clone(pattern),
		Mask:    slices.Clone(mask),
		Power:   power,
		Route:   true,
		Owner:   id,
	}
	if err := e.checkEntryFits(entry.Size()); err != nil {
		return err
	}
	aidUsed, apduUsed := e.table.ArenaUsage()
	if apduUsed+entry.ConfigSize() > e.limits.APDUConfigLen {
		return fmt.Errorf("%w: APDU arena", ErrBufferFull)
	}
	if aidUsed+apduUsed+entry.ConfigSize() > e.limits.AIDConfigLen {
		return fmt.Errorf("%w: AID arena", ErrBufferFull)
	}
	if len(dh.APDUs) >= e.limits.MaxAPDUEntries {
		return fmt.Errorf("%w: %d APDU entries", ErrBufferFull, len(dh.APDUs))
	}
	if n := e.table.ProjectedSize(owner, entry.Size()); n > e.limits.TableSize {
		return fmt.Errorf("%w: %d of %d bytes", ErrBufferFull, n, e.limits.TableSize)
	}
	dh.APDUs = append(dh.APDUs, entry)
	e.markChanged(owner, lmrt.DirtyAPDU)
	return nil
}

// RemoveAPDUPattern removes the entry matching pattern.
func (e *Engine) RemoveAPDUPattern(pattern []byte) error {
	dh := e.table.DeviceHost()
	i := lmrt.FindAPDU(dh.APDUs, pattern)
	if i < 0 {
		return e.result(EventAPDURemoved, wire.DeviceHost, fmt.Errorf("%w: APDU pattern not found", ErrInvalidParam))
	}
	owner := dh.APDUs[i].Owner
	dh.APDUs = slices.Delete(dh.APDUs, i, i+1)
	e.markChanged(e.table.Find(owner), lmrt.DirtyAPDU)
	return e.result(EventAPDURemoved, owner, nil)
}

// RemoveAllAPDUPatterns removes every APDU pattern entry.
func (e *Engine) RemoveAllAPDUPatterns() error {
	dh := e.table.DeviceHost()
	if len(dh.APDUs) > 0 {
		for _, a := range dh.APDUs {
			if owner := e.table.Find(a.Owner); owner != nil {
				owner.Dirty |= lmrt.DirtyAPDU
			}
		}
		dh.APDUs = nil
		e.markChanged(dh, lmrt.DirtyAPDU)
	}
	return e.result(EventAPDURemoved, wire.DeviceHost, nil)
}

// RemainingSize reports the free bytes in the routing table.
func (e *Engine) RemainingSize() int {
	n := e.limits.TableSize - e.table.TotalSize()
	e.report(Event{Type: EventRemainingSize, Status: wire.StatusOK, Remaining: n})
	return n
}
