package wire

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownName is returned when a symbolic name has no wire value.
var ErrUnknownName = errors.New("unknown name")

func splitNames(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '|' || r == ',' || r == ' '
	})
}

// ParseTechMask parses technology names such as "A|F" or "a,b". "ALL"
// selects every technology and "NONE" or the empty string selects none.
func ParseTechMask(s string) (TechMask, error) {
	var m TechMask
	for _, name := range splitNames(s) {
		switch n := strings.ToUpper(name); n {
		case "ALL":
			m |= TechMaskAll
		case "NONE":
		default:
			found := false
			for _, t := range Technologies {
				if t.String() == n {
					m |= t.Mask()
					found = true
				}
			}
			if !found {
				return 0, fmt.Errorf("%w: technology %q", ErrUnknownName, name)
			}
		}
	}
	return m, nil
}

// ParseProtoMask parses protocol names such as "ISO_DEP|NFC_DEP".
// Dashes are accepted in place of underscores.
func ParseProtoMask(s string) (ProtoMask, error) {
	var m ProtoMask
	for _, name := range splitNames(s) {
		switch n := strings.ReplaceAll(strings.ToUpper(name), "-", "_"); n {
		case "ALL":
			m |= ProtoMaskAll
		case "NONE":
		default:
			found := false
			for _, p := range Protocols {
				if p.String() == n {
					m |= p.Mask()
					found = true
				}
			}
			if !found {
				return 0, fmt.Errorf("%w: protocol %q", ErrUnknownName, name)
			}
		}
	}
	return m, nil
}

// ParsePowerState parses power state names as printed by PowerState.String.
func ParsePowerState(s string) (PowerState, error) {
	var p PowerState
	for _, name := range splitNames(s) {
		n := strings.ToUpper(name)
		if n == "ALL" {
			p |= PowerAll
			continue
		}
		if n == "SWITCH_ON" {
			n = "ON"
		}
		found := false
		for _, e := range powerStateNames {
			if e.name == n {
				p |= e.bit
				found = true
			}
		}
		if !found {
			return 0, fmt.Errorf("%w: power state %q", ErrUnknownName, name)
		}
	}
	return p, nil
}

// ParseInterface parses an NFCEE interface name.
func ParseInterface(s string) (Interface, error) {
	switch strings.ToUpper(s) {
	case "APDU":
		return InterfaceAPDU, nil
	case "HCI", "HCI_ACCESS":
		return InterfaceHCIAccess, nil
	case "T3T", "T3T_COMMAND_SET":
		return InterfaceT3T, nil
	case "TRANSPARENT":
		return InterfaceTransparent, nil
	case "PROPRIETARY":
		return InterfaceProprietary, nil
	}
	return 0, fmt.Errorf("%w: interface %q", ErrUnknownName, s)
}

// ParseEEStatus parses an NFCEE status name.
func ParseEEStatus(s string) (EEStatus, error) {
	switch strings.ToUpper(s) {
	case "", "ENABLED":
		return EEStatusEnabled, nil
	case "DISABLED":
		return EEStatusDisabled, nil
	case "REMOVED":
		return EEStatusRemoved, nil
	}
	return 0, fmt.Errorf("%w: NFCEE status %q", ErrUnknownName, s)
}
