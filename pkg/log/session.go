package log

import (
	"time"

	"github.com/google/uuid"
)

// MaxTraceData bounds the command bytes copied into a CommandEvent.
const MaxTraceData = 256

// NewSessionID returns a fresh session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// Session stamps events with a session ID and timestamp before forwarding
// them to a Logger. A nil logger makes every call a no-op.
type Session struct {
	id     string
	logger Logger
	now    func() time.Time
}

// NewSession creates a Session. An empty id is replaced by a new UUID.
func NewSession(id string, logger Logger) *Session {
	if id == "" {
		id = NewSessionID()
	}
	return &Session{id: id, logger: logger, now: time.Now}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Enabled reports whether events are forwarded anywhere.
func (s *Session) Enabled() bool {
	return s != nil && s.logger != nil
}

// Log stamps and forwards the event.
func (s *Session) Log(event Event) {
	if !s.Enabled() {
		return
	}
	event.SessionID = s.id
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	s.logger.Log(event)
}

// Command records an outgoing command. Data longer than MaxTraceData is
// truncated.
func (s *Session) Command(layer Layer, target *uint8, cmd CommandEvent) {
	if !s.Enabled() {
		return
	}
	if cmd.Size == 0 {
		cmd.Size = len(cmd.Data)
	}
	if len(cmd.Data) > MaxTraceData {
		cmd.Data = cmd.Data[:MaxTraceData]
		cmd.Truncated = true
	}
	cmd.Data = append([]byte(nil), cmd.Data...)
	s.Log(Event{
		Direction: DirectionOut,
		Layer:     layer,
		Category:  CategoryCommand,
		Target:    target,
		Command:   &cmd,
	})
}

// Response records a controller response.
func (s *Session) Response(layer Layer, target *uint8, rsp ResponseEvent) {
	s.Log(Event{
		Direction: DirectionIn,
		Layer:     layer,
		Category:  CategoryResponse,
		Target:    target,
		Response:  &rsp,
	})
}

// Notification records an unsolicited notification.
func (s *Session) Notification(layer Layer, target *uint8, ntf NotificationEvent) {
	s.Log(Event{
		Direction:    DirectionIn,
		Layer:        layer,
		Category:     CategoryNotification,
		Target:       target,
		Notification: &ntf,
	})
}

// State records a state transition. Transitions to the same state are dropped.
func (s *Session) State(layer Layer, target *uint8, sc StateChangeEvent) {
	if sc.OldState == sc.NewState {
		return
	}
	s.Log(Event{
		Direction:   DirectionOut,
		Layer:       layer,
		Category:    CategoryState,
		Target:      target,
		StateChange: &sc,
	})
}

// Error records an error.
func (s *Session) Error(layer Layer, target *uint8, context string, err error) {
	if err == nil {
		return
	}
	s.Log(Event{
		Direction: DirectionOut,
		Layer:     layer,
		Category:  CategoryError,
		Target:    target,
		Error: &ErrorEventData{
			Layer:   layer,
			Message: err.Error(),
			Context: context,
		},
	})
}

// TargetRef returns a pointer suitable for Event.Target.
func TargetRef(id uint8) *uint8 {
	return &id
}
