package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/lmrt-project/lmrt-go/pkg/engine"
	"github.com/lmrt-project/lmrt-go/pkg/lmrt"
	"github.com/lmrt-project/lmrt-go/pkg/wire"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Validate checks every field and joins all problems found.
func (f *File) Validate() error {
	var errs []error

	if f.Controller.TableSize < 0 {
		errs = append(errs, invalid("controller.table_size %d is negative", f.Controller.TableSize))
	}
	if p := f.Controller.MaxPayload; p < 0 || p > wire.MaxRoutingTLVSize {
		errs = append(errs, invalid("controller.max_payload %d outside 0..%d", p, wire.MaxRoutingTLVSize))
	}
	if f.Controller.Latency < 0 {
		errs = append(errs, invalid("controller.latency is negative"))
	}
	if f.Engine.Debounce < 0 || f.Engine.DiscoveryTimeout < 0 {
		errs = append(errs, invalid("engine durations must not be negative"))
	}
	if f.Engine.MaxEE < 0 || f.Engine.MaxObservers < 0 {
		errs = append(errs, invalid("engine limits must not be negative"))
	}

	if _, err := f.capabilities(); err != nil {
		errs = append(errs, err)
	}

	seen := make(map[uint8]bool, len(f.EEs))
	for i, ee := range f.EEs {
		if wire.TargetID(ee.ID) == wire.DeviceHost {
			errs = append(errs, invalid("ees[%d]: id 0x00 is the device host", i))
		}
		if seen[ee.ID] {
			errs = append(errs, invalid("ees[%d]: duplicate id 0x%02x", i, ee.ID))
		}
		seen[ee.ID] = true
		if _, err := ee.notification(); err != nil {
			errs = append(errs, fmt.Errorf("ees[%d]: %w", i, err))
		}
	}
	if n := f.Engine.MaxEE; n > 0 && len(f.EEs) > n {
		errs = append(errs, invalid("%d ees exceed engine.max_ee %d", len(f.EEs), n))
	}

	known := func(id uint8) bool {
		return wire.TargetID(id) == wire.DeviceHost || seen[id]
	}
	for i, r := range f.Routes.Tech {
		if !known(r.Target) {
			errs = append(errs, invalid("routes.tech[%d]: unknown target 0x%02x", i, r.Target))
		}
		if _, err := r.TechMasks(); err != nil {
			errs = append(errs, fmt.Errorf("routes.tech[%d]: %w", i, err))
		}
	}
	for i, r := range f.Routes.Proto {
		if !known(r.Target) {
			errs = append(errs, invalid("routes.proto[%d]: unknown target 0x%02x", i, r.Target))
		}
		if _, err := r.ProtoMasks(); err != nil {
			errs = append(errs, fmt.Errorf("routes.proto[%d]: %w", i, err))
		}
	}
	for i, r := range f.Routes.AID {
		if !known(r.Target) {
			errs = append(errs, invalid("routes.aid[%d]: unknown target 0x%02x", i, r.Target))
		}
		if _, _, _, err := r.Parse(); err != nil {
			errs = append(errs, fmt.Errorf("routes.aid[%d]: %w", i, err))
		}
	}
	for i, r := range f.Routes.APDU {
		if !known(r.Target) {
			errs = append(errs, invalid("routes.apdu[%d]: unknown target 0x%02x", i, r.Target))
		}
		if _, _, _, err := r.Parse(); err != nil {
			errs = append(errs, fmt.Errorf("routes.apdu[%d]: %w", i, err))
		}
	}

	return errors.Join(errs...)
}

func (f *File) capabilities() (lmrt.Capabilities, error) {
	caps := lmrt.DefaultCapabilities()
	if s := f.Capabilities.Screen; s != "" {
		screen, ok := lmrt.ParseScreenStateSupport(strings.ToLower(s))
		if !ok {
			return caps, invalid("capabilities.screen %q", s)
		}
		caps.Screen = screen
	}
	caps.ISO7816 = f.Capabilities.ISO7816
	caps.RouteBlockControl = f.Capabilities.RouteBlockControl
	caps.ProvisionMode = f.Capabilities.ProvisionMode
	if len(f.Capabilities.RoutingOrder) > 0 {
		order, err := lmrt.ParseRoutingOrder(f.Capabilities.RoutingOrder)
		if err != nil {
			return caps, fmt.Errorf("%w: capabilities.routing_order: %w", ErrInvalid, err)
		}
		caps.Order = order
	}
	return caps, nil
}

// TechMasks parses the route as technology masks.
func (r PowerRoute) TechMasks() (lmrt.TechMasks, error) {
	var m lmrt.TechMasks
	fields := []struct {
		dst *wire.TechMask
		src string
	}{
		{&m.SwitchOn, r.SwitchOn},
		{&m.SwitchOff, r.SwitchOff},
		{&m.BatteryOff, r.BatteryOff},
		{&m.ScreenLock, r.ScreenLock},
		{&m.ScreenOff, r.ScreenOff},
		{&m.ScreenOffLock, r.ScreenOffLock},
	}
	for _, fl := range fields {
		v, err := wire.ParseTechMask(fl.src)
		if err != nil {
			return m, err
		}
		*fl.dst = v
	}
	return m, nil
}

// ProtoMasks parses the route as protocol masks.
func (r PowerRoute) ProtoMasks() (lmrt.ProtoMasks, error) {
	var m lmrt.ProtoMasks
	fields := []struct {
		dst *wire.ProtoMask
		src string
	}{
		{&m.SwitchOn, r.SwitchOn},
		{&m.SwitchOff, r.SwitchOff},
		{&m.BatteryOff, r.BatteryOff},
		{&m.ScreenLock, r.ScreenLock},
		{&m.ScreenOff, r.ScreenOff},
		{&m.ScreenOffLock, r.ScreenOffLock},
	}
	for _, fl := range fields {
		v, err := wire.ParseProtoMask(fl.src)
		if err != nil {
			return m, err
		}
		*fl.dst = v
	}
	return m, nil
}

// ParseHex decodes a hex string, ignoring spaces and colons.
func ParseHex(s string) ([]byte, error) {
	s = strings.NewReplacer(" ", "", ":", "").Replace(s)
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, invalid("bad hex %q", s)
	}
	return b, nil
}

// ParseMatch parses an AID match mode into tag qualifier bits.
func ParseMatch(s string) (uint8, error) {
	switch strings.ToLower(s) {
	case "", "exact":
		return 0, nil
	case "prefix", "long":
		return wire.QualifierLongSelect, nil
	case "subset", "short":
		return wire.QualifierShortSelect, nil
	}
	return 0, invalid("AID match %q", s)
}

// Parse returns the AID, its power state and its match qualifier.
func (r AIDRoute) Parse() ([]byte, wire.PowerState, uint8, error) {
	aid, err := ParseHex(r.AID)
	if err != nil {
		return nil, 0, 0, err
	}
	if len(aid) == 0 || len(aid) > wire.MaxAIDLen {
		return nil, 0, 0, invalid("AID length %d outside 1..%d", len(aid), wire.MaxAIDLen)
	}
	power, err := parsePower(r.Power)
	if err != nil {
		return nil, 0, 0, err
	}
	qualifier, err := ParseMatch(r.Match)
	if err != nil {
		return nil, 0, 0, err
	}
	return aid, power, qualifier, nil
}

// Parse returns the pattern, mask and power state.
func (r APDURoute) Parse() (pattern, mask []byte, power wire.PowerState, err error) {
	if pattern, err = ParseHex(r.Pattern); err != nil {
		return nil, nil, 0, err
	}
	if mask, err = ParseHex(r.Mask); err != nil {
		return nil, nil, 0, err
	}
	if len(pattern) == 0 || len(pattern) > wire.MaxAPDUPatternLen || len(mask) != len(pattern) {
		return nil, nil, 0, invalid("APDU pattern/mask lengths %d/%d", len(pattern), len(mask))
	}
	if power, err = parsePower(r.Power); err != nil {
		return nil, nil, 0, err
	}
	return pattern, mask, power, nil
}

func parsePower(s string) (wire.PowerState, error) {
	if s == "" {
		return wire.PowerSwitchOn, nil
	}
	return wire.ParsePowerState(s)
}

func (ee EE) notification() (engine.DiscoverNotification, error) {
	status, err := wire.ParseEEStatus(ee.Status)
	if err != nil {
		return engine.DiscoverNotification{}, err
	}
	info := engine.DiscoverNotification{ID: wire.TargetID(ee.ID), Status: status}
	for _, name := range ee.Interfaces {
		iface, err := wire.ParseInterface(name)
		if err != nil {
			return engine.DiscoverNotification{}, err
		}
		info.Interfaces = append(info.Interfaces, iface)
	}
	return info, nil
}
