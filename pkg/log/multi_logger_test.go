package log

import (
	"testing"
	"time"
)

// mockLogger records events for testing
type mockLogger struct {
	events []Event
}

func (m *mockLogger) Log(event Event) {
	m.events = append(m.events, event)
}

func TestMultiLoggerCallsAll(t *testing.T) {
	mock1 := &mockLogger{}
	mock2 := &mockLogger{}
	mock3 := &mockLogger{}

	multi := NewMultiLogger(mock1, mock2, mock3)

	multi.Log(Event{
		Timestamp: time.Now(),
		SessionID: "s-123",
		Layer:     LayerRouting,
		Category:  CategoryCommand,
	})

	for i, mock := range []*mockLogger{mock1, mock2, mock3} {
		if len(mock.events) != 1 {
			t.Errorf("logger %d: got %d events, want 1", i, len(mock.events))
			continue
		}
		if mock.events[0].SessionID != "s-123" {
			t.Errorf("logger %d: SessionID = %q, want %q", i, mock.events[0].SessionID, "s-123")
		}
	}
}

func TestMultiLoggerSkipsNil(t *testing.T) {
	mock := &mockLogger{}
	multi := NewMultiLogger(nil, mock, nil)

	multi.Log(Event{SessionID: "s-456"})

	if len(mock.events) != 1 {
		t.Fatalf("got %d events, want 1", len(mock.events))
	}
}

func TestMultiLoggerEmptyList(t *testing.T) {
	multi := NewMultiLogger()
	multi.Log(Event{Timestamp: time.Now()})
}
