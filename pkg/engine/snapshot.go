package engine

import (
	"encoding/hex"

	"github.com/lmrt-project/lmrt-go/pkg/lmrt"
	"github.com/lmrt-project/lmrt-go/pkg/wire"
)

// Snapshot is a point-in-time view of the engine for diagnostics.
type Snapshot struct {
	SessionID   string           `cbor:"1,keyasint" json:"session_id"`
	State       string           `cbor:"2,keyasint" json:"state"`
	Active      bool             `cbor:"3,keyasint" json:"active"`
	TableSize   int              `cbor:"4,keyasint" json:"table_size"`
	TotalSize   int              `cbor:"5,keyasint" json:"total_size"`
	Outstanding int              `cbor:"6,keyasint" json:"outstanding"`
	OffRouting  bool             `cbor:"7,keyasint" json:"off_routing"`
	Targets     []TargetSnapshot `cbor:"8,keyasint" json:"targets"`
	AIDs        []AIDSnapshot    `cbor:"9,keyasint,omitempty" json:"aids,omitempty"`
	APDUs       []APDUSnapshot   `cbor:"10,keyasint,omitempty" json:"apdus,omitempty"`
}

// TargetSnapshot describes one ECB.
type TargetSnapshot struct {
	ID       uint8           `cbor:"1,keyasint" json:"id"`
	Status   string          `cbor:"2,keyasint" json:"status"`
	Conn     string          `cbor:"3,keyasint" json:"conn"`
	Tech     lmrt.TechMasks  `cbor:"4,keyasint" json:"tech"`
	Proto    lmrt.ProtoMasks `cbor:"5,keyasint" json:"proto"`
	MaskSize int             `cbor:"6,keyasint" json:"mask_size"`
	AIDSize  int             `cbor:"7,keyasint" json:"aid_size"`
	APDUSize int             `cbor:"8,keyasint" json:"apdu_size"`
	Dirty    string          `cbor:"9,keyasint" json:"dirty"`
}

// AIDSnapshot describes one AID entry.
type AIDSnapshot struct {
	AID       string `cbor:"1,keyasint" json:"aid"`
	Owner     uint8  `cbor:"2,keyasint" json:"owner"`
	Power     string `cbor:"3,keyasint" json:"power"`
	Qualifier uint8  `cbor:"4,keyasint,omitempty" json:"qualifier,omitempty"`
	Route     bool   `cbor:"5,keyasint" json:"route"`
}

// APDUSnapshot describes one APDU pattern entry.
type APDUSnapshot struct {
	Pattern string `cbor:"1,keyasint" json:"pattern"`
	Mask    string `cbor:"2,keyasint" json:"mask"`
	Owner   uint8  `cbor:"3,keyasint" json:"owner"`
	Power   string `cbor:"4,keyasint" json:"power"`
	Route   bool   `cbor:"5,keyasint" json:"route"`
}

// Snapshot captures the current engine state.
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		SessionID:   e.trace.ID(),
		State:       e.state.String(),
		Active:      e.active,
		TableSize:   e.limits.TableSize,
		TotalSize:   e.table.TotalSize(),
		Outstanding: e.waitRsp,
		OffRouting:  e.offRouting,
	}
	for _, ecb := range e.table.All() {
		s.Targets = append(s.Targets, TargetSnapshot{
			ID:       uint8(ecb.ID),
			Status:   ecb.Status.String(),
			Conn:     ecb.Conn.String(),
			Tech:     ecb.Tech,
			Proto:    ecb.Proto,
			MaskSize: ecb.MaskSize(),
			AIDSize:  ecb.AIDSize(),
			APDUSize: ecb.APDUSize(),
			Dirty:    ecb.Dirty.String(),
		})
	}
	dh := e.table.DeviceHost()
	for _, a := range dh.AIDs {
		s.AIDs = append(s.AIDs, AIDSnapshot{
			AID:       hex.EncodeToString(a.AID),
			Owner:     uint8(a.Owner),
			Power:     a.Power.String(),
			Qualifier: a.Qualifier,
			Route:     a.Route,
		})
	}
	for _, a := range dh.APDUs {
		s.APDUs = append(s.APDUs, APDUSnapshot{
			Pattern: hex.EncodeToString(a.Pattern),
			Mask:    hex.EncodeToString(a.Mask),
			Owner:   uint8(a.Owner),
			Power:   a.Power.String(),
			Route:   a.Route,
		})
	}
	return s
}

// EncodeSnapshot returns the CBOR encoding of Snapshot.
func (e *Engine) EncodeSnapshot() ([]byte, error) {
	return wire.Marshal(e.Snapshot())
}

// DecodeSnapshot parses a snapshot produced by EncodeSnapshot.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	err := wire.Unmarshal(data, &s)
	return s, err
}
