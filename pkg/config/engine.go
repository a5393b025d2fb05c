package config

import (
	"errors"
	"fmt"

	"github.com/lmrt-project/lmrt-go/pkg/engine"
	"github.com/lmrt-project/lmrt-go/pkg/lmrt"
	"github.com/lmrt-project/lmrt-go/pkg/wire"
)

// EngineConfig returns the engine configuration described by the profile.
// Fields the profile leaves unset keep the engine defaults. Logging,
// metrics and collaborators are left for the caller to fill in.
func (f *File) EngineConfig() (engine.Config, error) {
	cfg := engine.DefaultConfig()
	if f.Engine.Debounce > 0 {
		cfg.Debounce = f.Engine.Debounce
	}
	if f.Engine.DiscoveryTimeout > 0 {
		cfg.DiscoveryTimeout = f.Engine.DiscoveryTimeout
	}
	if f.Engine.MaxEE > 0 {
		cfg.MaxEE = f.Engine.MaxEE
	}
	if f.Engine.MaxObservers > 0 {
		cfg.MaxObservers = f.Engine.MaxObservers
	}
	cfg.DynamicAIDSizing = f.Engine.DynamicAIDSizing
	cfg.ClearOnDeactivate = f.Engine.ClearOnDeactivate

	caps, err := f.capabilities()
	if err != nil {
		return cfg, err
	}
	cfg.Capabilities = caps

	if f.Conflict != nil {
		cfg.Conflict = lmrt.ConflictPolicy{Enabled: true, Preferred: wire.TargetID(f.Conflict.Preferred)}
	}
	return cfg, nil
}

// Notifications returns the discovery notifications the simulated
// controller sends, one per configured NFCEE.
func (f *File) Notifications() ([]engine.DiscoverNotification, error) {
	out := make([]engine.DiscoverNotification, 0, len(f.EEs))
	for i, ee := range f.EEs {
		n, err := ee.notification()
		if err != nil {
			return nil, fmt.Errorf("ees[%d]: %w", i, err)
		}
		out = append(out, n)
	}
	return out, nil
}

// Apply submits the profile's routes to the engine: technology, then
// protocol, then AID, then APDU routes. Every route is attempted; the
// errors of the rejected ones are joined.
func (f *File) Apply(e *engine.Engine) error {
	var errs []error
	for i, r := range f.Routes.Tech {
		masks, err := r.TechMasks()
		if err == nil {
			err = e.SetDefaultTechRouting(wire.TargetID(r.Target), masks)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("routes.tech[%d]: %w", i, err))
		}
	}
	for i, r := range f.Routes.Proto {
		masks, err := r.ProtoMasks()
		if err == nil {
			err = e.SetDefaultProtoRouting(wire.TargetID(r.Target), masks)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("routes.proto[%d]: %w", i, err))
		}
	}
	for i, r := range f.Routes.AID {
		aid, power, qualifier, err := r.Parse()
		if err == nil {
			err = e.AddAID(wire.TargetID(r.Target), aid, power, qualifier)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("routes.aid[%d]: %w", i, err))
		}
	}
	for i, r := range f.Routes.APDU {
		pattern, mask, power, err := r.Parse()
		if err == nil {
			err = e.AddAPDUPattern(wire.TargetID(r.Target), pattern, mask, power)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("routes.apdu[%d]: %w", i, err))
		}
	}
	return errors.Join(errs...)
}
