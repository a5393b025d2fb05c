package engine

import (
	"log/slog"
	"time"

	"github.com/lmrt-project/lmrt-go/pkg/lmrt"
	"github.com/lmrt-project/lmrt-go/pkg/log"
)

// Default configuration values.
const (
	DefaultDebounce         = 1000 * time.Millisecond
	DefaultDiscoveryTimeout = 2000 * time.Millisecond
	DefaultMaxEE            = 4
	DefaultMaxObservers     = 4
)

// Config configures an Engine.
type Config struct {
	// Debounce is the delay between the first configuration change and
	// the commit pass it triggers.
	Debounce time.Duration

	// DiscoveryTimeout bounds NFCEE enumeration and rediscovery.
	DiscoveryTimeout time.Duration

	// MaxEE is the number of execution environment slots.
	MaxEE int

	// MaxObservers bounds Register.
	MaxObservers int

	// Capabilities of the controller and platform.
	Capabilities lmrt.Capabilities

	// Conflict resolves technology A/F splits before each commit pass.
	Conflict lmrt.ConflictPolicy

	// DynamicAIDSizing reserves part of the table for technology and
	// protocol entries.
	DynamicAIDSizing bool

	// ClearOnDeactivate drops a target's technology and protocol routing
	// when it is deactivated.
	ClearOnDeactivate bool

	// Logger is used for operational logging. Nil disables it.
	Logger *slog.Logger

	// ProtocolLogger receives the controller trace. Nil disables it.
	ProtocolLogger log.Logger

	// SessionID stamps trace events. Empty generates a UUID.
	SessionID string

	// Metrics receives counters. Nil disables them.
	Metrics Metrics

	// Allocator provides command scratch buffers. Nil uses the heap.
	Allocator Allocator

	// RF reports RF discovery state. Nil reports idle.
	RF RFState
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		Debounce:         DefaultDebounce,
		DiscoveryTimeout: DefaultDiscoveryTimeout,
		MaxEE:            DefaultMaxEE,
		MaxObservers:     DefaultMaxObservers,
		Capabilities:     lmrt.DefaultCapabilities(),
	}
}

func (c *Config) applyDefaults() {
	if c.Debounce <= 0 {
		c.Debounce = DefaultDebounce
	}
	if c.DiscoveryTimeout <= 0 {
		c.DiscoveryTimeout = DefaultDiscoveryTimeout
	}
	if c.MaxEE <= 0 {
		c.MaxEE = DefaultMaxEE
	}
	if c.MaxObservers <= 0 {
		c.MaxObservers = DefaultMaxObservers
	}
	if len(c.Capabilities.Order) == 0 {
		c.Capabilities.Order = lmrt.DefaultRoutingOrder
	}
	if c.Metrics == nil {
		c.Metrics = noopMetrics{}
	}
	if c.Allocator == nil {
		c.Allocator = HeapAllocator{}
	}
	if c.RF == nil {
		c.RF = idleRF{}
	}
}
