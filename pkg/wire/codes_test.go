package wire

import "testing"

func TestTechnologyTable(t *testing.T) {
	tests := []struct {
		tech Technology
		code uint8
		mask TechMask
		name string
	}{
		{TechA, 0x00, TechMaskA, "A"},
		{TechB, 0x01, TechMaskB, "B"},
		{TechF, 0x02, TechMaskF, "F"},
	}

	for _, tt := range tests {
		if got := tt.tech.Code(); got != tt.code {
			t.Errorf("%s.Code() = %#x, want %#x", tt.name, got, tt.code)
		}
		if got := tt.tech.Mask(); got != tt.mask {
			t.Errorf("%s.Mask() = %#x, want %#x", tt.name, got, tt.mask)
		}
		if got := tt.tech.String(); got != tt.name {
			t.Errorf("String() = %q, want %q", got, tt.name)
		}
		back, ok := TechnologyFromCode(tt.code)
		if !ok || back != tt.tech {
			t.Errorf("TechnologyFromCode(%#x) = %v, %v", tt.code, back, ok)
		}
	}
}

func TestProtocolTable(t *testing.T) {
	tests := []struct {
		proto Protocol
		code  uint8
		mask  ProtoMask
	}{
		{ProtoT1T, 0x01, ProtoMaskT1T},
		{ProtoT2T, 0x02, ProtoMaskT2T},
		{ProtoT3T, 0x03, ProtoMaskT3T},
		{ProtoISODEP, 0x04, ProtoMaskISODEP},
		{ProtoNFCDEP, 0x05, ProtoMaskNFCDEP},
		{ProtoISO7816, 0xA0, ProtoMaskISO7816},
	}

	for _, tt := range tests {
		t.Run(tt.proto.String(), func(t *testing.T) {
			if got := tt.proto.Code(); got != tt.code {
				t.Errorf("Code() = %#x, want %#x", got, tt.code)
			}
			if got := tt.proto.Mask(); got != tt.mask {
				t.Errorf("Mask() = %#x, want %#x", got, tt.mask)
			}
		})
	}

	if _, ok := ProtocolFromCode(0x77); ok {
		t.Error("ProtocolFromCode(0x77) should not resolve")
	}
}

func TestPowerStateString(t *testing.T) {
	tests := []struct {
		p    PowerState
		want string
	}{
		{0, "NONE"},
		{PowerSwitchOn, "ON"},
		{PowerSwitchOn | PowerScreenOnLock, "ON|SCREEN_ON_LOCK"},
		{PowerSwitchOn | 0x40, "ON|0x40"},
	}
	for _, tt := range tests {
		if got := tt.p.String(); got != tt.want {
			t.Errorf("PowerState(%#x).String() = %q, want %q", uint8(tt.p), got, tt.want)
		}
	}
}

func TestMaskStrings(t *testing.T) {
	if got := (TechMaskA | TechMaskF).String(); got != "A|F" {
		t.Errorf("TechMask.String() = %q, want A|F", got)
	}
	if got := ProtoMask(0).String(); got != "NONE" {
		t.Errorf("ProtoMask(0).String() = %q, want NONE", got)
	}
	if got := (ProtoMaskISODEP | ProtoMaskNFCDEP).String(); got != "ISO_DEP|NFC_DEP" {
		t.Errorf("ProtoMask.String() = %q", got)
	}
}

func TestStatusString(t *testing.T) {
	if StatusBufferFull.String() != "BUFFER_FULL" {
		t.Errorf("StatusBufferFull.String() = %q", StatusBufferFull.String())
	}
	if Status(200).String() != "UNKNOWN" {
		t.Errorf("Status(200).String() = %q, want UNKNOWN", Status(200).String())
	}
	if !StatusOK.IsOK() || StatusFailed.IsOK() {
		t.Error("IsOK() mismatch")
	}
}

func TestNFCEECodeStrings(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"EEStatusRemoved", EEStatusRemoved.String(), "REMOVED"},
		{"EEStatus(9)", EEStatus(9).String(), "UNKNOWN"},
		{"EEStateUnrecoverableError", EEStateUnrecoverableError.String(), "UNRECOVERABLE_ERROR"},
		{"ListenBPrime", ListenBPrime.String(), "LISTEN_B_PRIME"},
		{"TriggerAppInit", TriggerAppInit.String(), "APP_INIT"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s.String() = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}
