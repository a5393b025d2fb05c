package log

import (
	"testing"
	"time"
)

func TestNoopLoggerDoesNotPanic(t *testing.T) {
	logger := NoopLogger{}

	event := Event{
		Timestamp: time.Now(),
		SessionID: "test-session",
		Direction: DirectionIn,
		Layer:     LayerRouting,
		Category:  CategoryResponse,
	}

	logger.Log(event)

	event.Response = &ResponseEvent{Opcode: OpSetRouting}
	logger.Log(event)

	event.Response = nil
	event.StateChange = &StateChangeEvent{Entity: StateEntityTarget, NewState: "ACTIVE"}
	logger.Log(event)

	event.StateChange = nil
	event.Error = &ErrorEventData{Message: "test error"}
	logger.Log(event)
}

func TestNoopLoggerIsZeroValue(t *testing.T) {
	var logger NoopLogger
	logger.Log(Event{})
}
