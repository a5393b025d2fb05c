package log

import (
	"time"
)

// Event represents a trace event captured by the routing engine.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the engine instance that produced the event (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Direction indicates flow relative to the controller.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// Target is the execution environment the event concerns, if any.
	Target *uint8 `cbor:"6,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Command      *CommandEvent      `cbor:"10,keyasint,omitempty"` // Outgoing controller command
	Response     *ResponseEvent     `cbor:"11,keyasint,omitempty"` // Controller response
	Notification *NotificationEvent `cbor:"12,keyasint,omitempty"` // Unsolicited controller notification
	StateChange  *StateChangeEvent  `cbor:"13,keyasint,omitempty"` // Discovery/target/connection state
	Error        *ErrorEventData    `cbor:"14,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of flow.
type Direction uint8

const (
	// DirectionIn indicates data received from the controller.
	DirectionIn Direction = 0
	// DirectionOut indicates data sent to the controller.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which engine layer captured the event.
type Layer uint8

const (
	// LayerRouting is the routing table build and commit path.
	LayerRouting Layer = 0
	// LayerDiscovery is execution environment discovery and recovery.
	LayerDiscovery Layer = 1
	// LayerConnection is the per-target logical connection path.
	LayerConnection Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerRouting:
		return "ROUTING"
	case LayerDiscovery:
		return "DISCOVERY"
	case LayerConnection:
		return "CONNECTION"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryCommand indicates a command sent to the controller.
	CategoryCommand Category = 0
	// CategoryResponse indicates a response to a command.
	CategoryResponse Category = 1
	// CategoryNotification indicates an unsolicited notification.
	CategoryNotification Category = 2
	// CategoryState indicates a state change.
	CategoryState Category = 3
	// CategoryError indicates an error event.
	CategoryError Category = 4
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryCommand:
		return "COMMAND"
	case CategoryResponse:
		return "RESPONSE"
	case CategoryNotification:
		return "NOTIFICATION"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Opcode identifies a controller command.
type Opcode uint8

const (
	OpSetRouting Opcode = 0
	OpDeactivate Opcode = 1
	OpDiscover   Opcode = 2
	OpModeSet    Opcode = 3
	OpConnCreate Opcode = 4
	OpConnClose  Opcode = 5
	OpData       Opcode = 6
)

// String returns the opcode name.
func (o Opcode) String() string {
	switch o {
	case OpSetRouting:
		return "SET_ROUTING"
	case OpDeactivate:
		return "DEACTIVATE"
	case OpDiscover:
		return "DISCOVER"
	case OpModeSet:
		return "MODE_SET"
	case OpConnCreate:
		return "CONN_CREATE"
	case OpConnClose:
		return "CONN_CLOSE"
	case OpData:
		return "DATA"
	default:
		return "UNKNOWN"
	}
}

// CommandEvent captures an outgoing controller command.
type CommandEvent struct {
	// Opcode is the command being sent.
	Opcode Opcode `cbor:"1,keyasint"`

	// More is the continuation flag of a routing command.
	More bool `cbor:"2,keyasint,omitempty"`

	// EntryCount is the number of routing entries in the command.
	EntryCount uint8 `cbor:"3,keyasint,omitempty"`

	// Size is the framed command size in bytes.
	Size int `cbor:"4,keyasint"`

	// Data is the framed command (may be truncated for large commands).
	Data []byte `cbor:"5,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"6,keyasint,omitempty"`
}

// ResponseEvent captures a controller response.
type ResponseEvent struct {
	// Opcode is the command being answered.
	Opcode Opcode `cbor:"1,keyasint"`

	// Status is the raw controller status code.
	Status uint8 `cbor:"2,keyasint"`

	// Outstanding is the number of routing responses still awaited.
	Outstanding int `cbor:"3,keyasint,omitempty"`
}

// NotificationType identifies an unsolicited controller notification.
type NotificationType uint8

const (
	NotifyDiscover        NotificationType = 0
	NotifyStatus          NotificationType = 1
	NotifyAction          NotificationType = 2
	NotifyDiscoverRequest NotificationType = 3
	NotifyConnClosed      NotificationType = 4
	NotifyData            NotificationType = 5
	NotifyTimeout         NotificationType = 6
)

// String returns the notification type name.
func (n NotificationType) String() string {
	switch n {
	case NotifyDiscover:
		return "DISCOVER"
	case NotifyStatus:
		return "STATUS"
	case NotifyAction:
		return "ACTION"
	case NotifyDiscoverRequest:
		return "DISCOVER_REQUEST"
	case NotifyConnClosed:
		return "CONN_CLOSED"
	case NotifyData:
		return "DATA"
	case NotifyTimeout:
		return "TIMEOUT"
	default:
		return "UNKNOWN"
	}
}

// NotificationEvent captures an unsolicited controller notification.
type NotificationEvent struct {
	// Type of notification.
	Type NotificationType `cbor:"1,keyasint"`

	// Status is the status carried by the notification, if any.
	Status uint8 `cbor:"2,keyasint,omitempty"`

	// Size is the payload size for data notifications.
	Size int `cbor:"3,keyasint,omitempty"`

	// Detail is a short human-readable summary.
	Detail string `cbor:"4,keyasint,omitempty"`
}

// StateChangeEvent captures discovery, target and connection lifecycle events.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityDiscovery indicates a discovery state machine change.
	StateEntityDiscovery StateEntity = 0
	// StateEntityTarget indicates an execution environment status change.
	StateEntityTarget StateEntity = 1
	// StateEntityConnection indicates a logical connection state change.
	StateEntityConnection StateEntity = 2
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityDiscovery:
		return "DISCOVERY"
	case StateEntityTarget:
		return "TARGET"
	case StateEntityConnection:
		return "CONNECTION"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Code is the error code (if applicable).
	Code *int `cbor:"3,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"4,keyasint,omitempty"`
}
