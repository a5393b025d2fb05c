package lmrt

import "github.com/lmrt-project/lmrt-go/pkg/wire"

// ConflictPolicy resolves technology A/F conflicts between off-host
// targets.
type ConflictPolicy struct {
	Enabled bool

	// Preferred keeps its technology when two EEs split A and F.
	Preferred wire.TargetID
}

// ResolveTechConflict checks whether technology A and technology F are
// routed to two different EEs. If so, the EE that is not Preferred loses
// its technology in every power state. The modified ECB is returned, or nil
// when there was no conflict.
func (p ConflictPolicy) ResolveTechConflict(ees []*ECB) *ECB {
	if !p.Enabled {
		return nil
	}

	var ownerA, ownerF *ECB
	for _, e := range ees {
		routed := e.Tech.Routed()
		if routed.Has(wire.TechA) {
			ownerA = e
		}
		if routed.Has(wire.TechF) {
			ownerF = e
		}
	}
	if ownerA == nil || ownerF == nil || ownerA == ownerF {
		return nil
	}
	if ownerA.IsDeviceHost() || ownerF.IsDeviceHost() {
		return nil
	}

	if ownerF.ID == p.Preferred {
		ownerA.Tech.Clear(wire.TechMaskA)
		return ownerA
	}
	ownerF.Tech.Clear(wire.TechMaskF)
	return ownerF
}
