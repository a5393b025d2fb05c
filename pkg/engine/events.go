package engine

import (
	"github.com/lmrt-project/lmrt-go/pkg/lmrt"
	"github.com/lmrt-project/lmrt-go/pkg/wire"
)

// EventType identifies an engine event.
type EventType uint8

const (
	EventRegistered EventType = iota + 1
	EventDeregistered
	EventEnableComplete
	EventDisableComplete
	EventDiscoveryComplete
	EventNewEE
	EventModeSet
	EventStatusChanged
	EventTechSet
	EventTechCleared
	EventProtoSet
	EventProtoCleared
	EventAIDAdded
	EventAIDRemoved
	EventAPDUAdded
	EventAPDURemoved
	EventRemainingSize
	EventRoutingUpdated
	EventRoutingError
	EventBufferFull
	EventNoMemory
	EventPowerRecovered
	EventRecoveryRequired
	EventDiscoverRequest
	EventConnected
	EventDisconnected
	EventData
	EventAction
)

var eventNames = map[EventType]string{
	EventRegistered:        "REGISTERED",
	EventDeregistered:      "DEREGISTERED",
	EventEnableComplete:    "ENABLE_COMPLETE",
	EventDisableComplete:   "DISABLE_COMPLETE",
	EventDiscoveryComplete: "DISCOVERY_COMPLETE",
	EventNewEE:             "NEW_EE",
	EventModeSet:           "MODE_SET",
	EventStatusChanged:     "STATUS_CHANGED",
	EventTechSet:           "TECH_SET",
	EventTechCleared:       "TECH_CLEARED",
	EventProtoSet:          "PROTO_SET",
	EventProtoCleared:      "PROTO_CLEARED",
	EventAIDAdded:          "AID_ADDED",
	EventAIDRemoved:        "AID_REMOVED",
	EventAPDUAdded:         "APDU_ADDED",
	EventAPDURemoved:       "APDU_REMOVED",
	EventRemainingSize:     "REMAINING_SIZE",
	EventRoutingUpdated:    "ROUTING_UPDATED",
	EventRoutingError:      "ROUTING_ERROR",
	EventBufferFull:        "BUFFER_FULL",
	EventNoMemory:          "NO_MEMORY",
	EventPowerRecovered:    "POWER_RECOVERED",
	EventRecoveryRequired:  "RECOVERY_REQUIRED",
	EventDiscoverRequest:   "DISCOVER_REQUEST",
	EventConnected:         "CONNECTED",
	EventDisconnected:      "DISCONNECTED",
	EventData:              "DATA",
	EventAction:            "ACTION",
}

// String returns the event name.
func (t EventType) String() string {
	if n, ok := eventNames[t]; ok {
		return n
	}
	return "UNKNOWN"
}

// TargetInfo describes one execution environment.
type TargetInfo struct {
	ID          wire.TargetID
	Status      lmrt.Status
	Interfaces  []wire.Interface
	PowerSupply uint8

	// Listen holds the protocols the target requested per technology.
	Listen lmrt.ListenInfo
}

// ActionInfo is the payload of an action notification.
type ActionInfo struct {
	Trigger wire.ActionTrigger
	Data    []byte
}

// Event is delivered to observers.
type Event struct {
	Type   EventType
	Status wire.Status
	Target wire.TargetID

	// Err is the error behind a non-OK status, if any.
	Err error

	// Partial is set when enumeration completed by timeout.
	Partial bool

	// Targets is set for discovery and discover-request events.
	Targets []TargetInfo

	// Info is set for new-EE events.
	Info *TargetInfo

	// EEStatus is set for status-changed events.
	EEStatus lmrt.Status

	// Remaining is set for remaining-size events.
	Remaining int

	ConnID uint8
	Data   []byte
	Action *ActionInfo
}

// Observer receives engine events. Observers run on the engine's
// goroutine and must not call back into the engine.
type Observer interface {
	HandleEvent(ev Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ev Event)

// HandleEvent calls f(ev).
func (f ObserverFunc) HandleEvent(ev Event) {
	f(ev)
}

// ObserverID identifies a registered observer.
type ObserverID uint32

func targetInfo(e *lmrt.ECB) TargetInfo {
	return TargetInfo{
		ID:          e.ID,
		Status:      e.Status,
		Interfaces:  append([]wire.Interface(nil), e.Interfaces...),
		PowerSupply: e.PowerSupply,
		Listen:      e.Listen,
	}
}
