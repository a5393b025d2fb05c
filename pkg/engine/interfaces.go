package engine

import (
	"time"

	"github.com/lmrt-project/lmrt-go/pkg/wire"
)

// Transport sends commands to the controller. Implementations must not
// block on the response; responses and notifications are delivered back
// through the engine's Handle methods.
type Transport interface {
	// SendSetRouting sends one routing command. The command's Entries
	// buffer is reused after the call returns and must not be retained.
	SendSetRouting(cmd wire.SetRoutingCommand) error

	// DeactivateToIdle stops RF discovery so the table can be replaced.
	DeactivateToIdle() error

	// Discover enables or disables NFCEE enumeration.
	Discover(enable bool) error

	// ModeSet enables or disables an NFCEE.
	ModeSet(id wire.TargetID, enable bool) error

	// ConnCreate opens a logical connection to an NFCEE interface.
	ConnCreate(id wire.TargetID, iface wire.Interface) error

	// ConnClose closes a logical connection.
	ConnClose(connID uint8) error

	// SendData sends data on a logical connection.
	SendData(connID uint8, data []byte) error
}

// TimerToken identifies which engine timer expired.
type TimerToken uint8

const (
	// TokenRouting is the debounce timer that triggers a commit pass.
	TokenRouting TimerToken = iota + 1

	// TokenDiscovery bounds NFCEE enumeration.
	TokenDiscovery
)

// String returns the token name.
func (t TimerToken) String() string {
	switch t {
	case TokenRouting:
		return "ROUTING"
	case TokenDiscovery:
		return "DISCOVERY"
	default:
		return "UNKNOWN"
	}
}

// Timer schedules one-shot timers. Expiry is delivered by calling
// Engine.HandleTimeout with the token, serialized with all other engine
// calls. Starting a running token restarts it.
type Timer interface {
	Start(delay time.Duration, token TimerToken)
	Stop(token TimerToken)
}

// Capacity reports controller limits. It is queried once per commit pass.
type Capacity interface {
	// MaxTableSize is the routing table size in bytes.
	MaxTableSize() int

	// MaxCommandPayload is the largest TLV payload of one routing command.
	MaxCommandPayload() int
}

// RFState reports the controller's RF discovery state.
type RFState interface {
	Discovering() bool
}

// Allocator provides scratch buffers. A nil return is an allocation failure.
type Allocator interface {
	Alloc(size int) []byte
}

// Metrics receives engine counters. All methods must be cheap.
type Metrics interface {
	CommandSent(bytes int)
	CommitPass()
	RequestRejected(status wire.Status)
	ActiveTargets(n int)
	TableSize(bytes int)
}

// HeapAllocator allocates from the Go heap.
type HeapAllocator struct{}

// Alloc returns a new buffer of the given size.
func (HeapAllocator) Alloc(size int) []byte {
	return make([]byte, size)
}

type noopMetrics struct{}

func (noopMetrics) CommandSent(int) {}
func (noopMetrics) CommitPass() {}
func (noopMetrics) RequestRejected(wire.Status) {}
func (noopMetrics) ActiveTargets(int) {}
func (noopMetrics) TableSize(int) {}

type idleRF struct{}

func (idleRF) Discovering() bool { return false }

var (
	_ Allocator = HeapAllocator{}
	_ Metrics   = noopMetrics{}
	_ RFState   = idleRF{}
)
