package lmrt

import (
	"testing"

	"github.com/lmrt-project/lmrt-go/pkg/wire"
)

func TestTechProtoFootprint(t *testing.T) {
	caps := DefaultCapabilities()
	e := NewECB(0x02)
	e.Tech.SwitchOn = wire.TechMaskA | wire.TechMaskB
	e.Tech.ScreenLock = wire.TechMaskF // no switch-on for F, does not count
	e.Proto.SwitchOff = wire.ProtoMaskISODEP
	e.Proto.SwitchOn = wire.ProtoMaskISO7816

	if got := TechProtoFootprint(e, caps); got != 15 {
		t.Errorf("TechProtoFootprint() = %d, want 15", got)
	}

	caps.ISO7816 = true
	if got := TechProtoFootprint(e, caps); got != 20 {
		t.Errorf("TechProtoFootprint() with ISO7816 = %d, want 20", got)
	}
}

func TestAIDFootprintFrom(t *testing.T) {
	dh := NewECB(wire.DeviceHost)
	dh.AIDs = []AIDEntry{
		{AID: []byte{0xA0, 0x00, 0x00, 0x00, 0x03}, Route: true},
		{AID: []byte{0xA0, 0x00, 0x00, 0x00, 0x04}, Route: false},
		{AID: []byte{0xF0, 0x01}, Route: true},
	}

	if got := AIDFootprint(dh, 0); got != 9+6 {
		t.Errorf("AIDFootprint(0) = %d, want 15", got)
	}
	if got := AIDFootprint(dh, 1); got != 6 {
		t.Errorf("AIDFootprint(1) = %d, want 6", got)
	}
	if got := AIDFootprint(dh, 5); got != 0 {
		t.Errorf("AIDFootprint(5) = %d, want 0", got)
	}
}

func TestAPDUFootprint(t *testing.T) {
	dh := NewECB(wire.DeviceHost)
	dh.APDUs = []APDUEntry{
		{Pattern: []byte{0x00, 0xA4}, Mask: []byte{0xFF, 0xFF}, Route: true},
	}
	if got := APDUFootprint(dh, 0); got != 8 {
		t.Errorf("APDUFootprint() = %d, want 8", got)
	}
}

func TestTotalSizeCountsActiveOnly(t *testing.T) {
	caps := DefaultCapabilities()
	tbl := NewTable(3)
	ee1, _ := tbl.Allocate(0x81)
	ee2, _ := tbl.Allocate(0x82)
	ee1.Status = StatusActive
	ee2.Status = StatusInactive
	ee1.Tech.SwitchOn = wire.TechMaskA
	ee2.Tech.SwitchOn = wire.TechMaskB

	dh := tbl.DeviceHost()
	dh.AIDs = []AIDEntry{
		{AID: []byte{1, 2, 3, 4}, Route: true, Owner: 0x81},
		{AID: []byte{5, 6, 7, 8}, Route: true, Owner: 0x82},
		{AID: []byte{9, 9}, Route: true, Owner: wire.DeviceHost},
	}
	tbl.UpdateSizes(caps)

	if ee1.AIDSize() != 8 || ee2.AIDSize() != 8 || dh.AIDSize() != 6 {
		t.Errorf("AIDSize() = %d/%d/%d, want 8/8/6", ee1.AIDSize(), ee2.AIDSize(), dh.AIDSize())
	}
	if got := tbl.TotalSize(); got != 5+8+6 {
		t.Errorf("TotalSize() = %d, want 19", got)
	}
	if got := tbl.ProjectedSize(ee2, 4); got != 19+5+8+4 {
		t.Errorf("ProjectedSize(inactive) = %d, want 36", got)
	}
	if got := tbl.ProjectedSize(ee1, -5); got != 14 {
		t.Errorf("ProjectedSize(active) = %d, want 14", got)
	}

	aid, apdu := tbl.ArenaUsage()
	if aid != 6+6+4 || apdu != 0 {
		t.Errorf("ArenaUsage() = %d, %d, want 16, 0", aid, apdu)
	}
}

func TestNewLimits(t *testing.T) {
	tests := []struct {
		name      string
		size      int
		dynamic   bool
		wantTable int
		wantAID   int
	}{
		{"unknown size falls back", 0, false, DefaultTableSize, DefaultTableSize},
		{"small table keeps reported size", 40, false, 40, DefaultTableSize},
		{"static", 64, false, 64, 64},
		{"dynamic small keeps all", 100, true, 100, 100},
		{"dynamic reserves", 720, true, 720, 660},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLimits(tt.size, tt.dynamic)
			if l.TableSize != tt.wantTable {
				t.Errorf("TableSize = %d, want %d", l.TableSize, tt.wantTable)
			}
			if l.AIDConfigLen != tt.wantAID {
				t.Errorf("AIDConfigLen = %d, want %d", l.AIDConfigLen, tt.wantAID)
			}
			if l.MaxAIDEntries != tt.wantAID/MinAIDEntrySize {
				t.Errorf("MaxAIDEntries = %d", l.MaxAIDEntries)
			}
			if l.APDUConfigLen > APDUArenaSize {
				t.Errorf("APDUConfigLen = %d exceeds arena", l.APDUConfigLen)
			}
		})
	}
}
