package wire

import (
	"errors"
	"testing"
)

func TestParseTechMask(t *testing.T) {
	tests := []struct {
		in      string
		want    TechMask
		wantErr bool
	}{
		{"", 0, false},
		{"A", TechMaskA, false},
		{"a|f", TechMaskA | TechMaskF, false},
		{"A, B", TechMaskA | TechMaskB, false},
		{"ALL", TechMaskAll, false},
		{"none", 0, false},
		{"Q", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseTechMask(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTechMask(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTechMask(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseProtoMask(t *testing.T) {
	tests := []struct {
		in      string
		want    ProtoMask
		wantErr bool
	}{
		{"ISO_DEP", ProtoMaskISODEP, false},
		{"iso-dep|nfc-dep", ProtoMaskISODEP | ProtoMaskNFCDEP, false},
		{"T1T,T2T,T3T", ProtoMaskT1T | ProtoMaskT2T | ProtoMaskT3T, false},
		{"ISO7816", ProtoMaskISO7816, false},
		{"all", ProtoMaskAll, false},
		{"MIFARE", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseProtoMask(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseProtoMask(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseProtoMask(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParsePowerStateRoundTrip(t *testing.T) {
	for _, p := range []PowerState{
		PowerSwitchOn,
		PowerSwitchOn | PowerScreenOnLock,
		PowerSwitchOff | PowerBatteryOff,
		PowerAll,
	} {
		got, err := ParsePowerState(p.String())
		if err != nil {
			t.Errorf("ParsePowerState(%q) error = %v", p.String(), err)
			continue
		}
		if got != p {
			t.Errorf("ParsePowerState(%q) = %v, want %v", p.String(), got, p)
		}
	}

	if got, err := ParsePowerState("switch_on"); err != nil || got != PowerSwitchOn {
		t.Errorf("ParsePowerState(switch_on) = %v, %v", got, err)
	}
	if _, err := ParsePowerState("ON|HOT"); !errors.Is(err, ErrUnknownName) {
		t.Errorf("ParsePowerState(ON|HOT) error = %v, want ErrUnknownName", err)
	}
}

func TestParseInterface(t *testing.T) {
	for _, i := range []Interface{InterfaceAPDU, InterfaceHCIAccess, InterfaceT3T, InterfaceTransparent, InterfaceProprietary} {
		got, err := ParseInterface(i.String())
		if err != nil || got != i {
			t.Errorf("ParseInterface(%q) = %v, %v, want %v", i.String(), got, err, i)
		}
	}
	if _, err := ParseInterface("usb"); err == nil {
		t.Error("ParseInterface(usb) should fail")
	}
}

func TestParseEEStatus(t *testing.T) {
	tests := map[string]EEStatus{
		"":         EEStatusEnabled,
		"enabled":  EEStatusEnabled,
		"DISABLED": EEStatusDisabled,
		"removed":  EEStatusRemoved,
	}
	for in, want := range tests {
		got, err := ParseEEStatus(in)
		if err != nil || got != want {
			t.Errorf("ParseEEStatus(%q) = %v, %v, want %v", in, got, err, want)
		}
	}
	if _, err := ParseEEStatus("sleeping"); err == nil {
		t.Error("ParseEEStatus(sleeping) should fail")
	}
}
