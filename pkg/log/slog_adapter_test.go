package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"
)

func decodeSlogLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v\n%s", err, buf.String())
	}
	return entry
}

func TestSlogAdapterLogsCommandEvent(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	adapter.Log(Event{
		Timestamp: time.Now(),
		SessionID: "s-123",
		Direction: DirectionOut,
		Layer:     LayerRouting,
		Category:  CategoryCommand,
		Command:   &CommandEvent{Opcode: OpSetRouting, More: true, EntryCount: 4, Size: 30},
	})

	entry := decodeSlogLine(t, &buf)
	if entry["msg"] != "trace" {
		t.Errorf("msg = %v, want trace", entry["msg"])
	}
	if entry["session_id"] != "s-123" {
		t.Errorf("session_id = %v, want s-123", entry["session_id"])
	}
	if entry["opcode"] != "SET_ROUTING" {
		t.Errorf("opcode = %v, want SET_ROUTING", entry["opcode"])
	}
	if entry["more"] != true {
		t.Errorf("more = %v, want true", entry["more"])
	}
	if entry["entries"] != float64(4) {
		t.Errorf("entries = %v, want 4", entry["entries"])
	}
}

func TestSlogAdapterLogsStateChange(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	adapter.Log(Event{
		SessionID:   "s-1",
		Layer:       LayerDiscovery,
		Category:    CategoryState,
		Target:      TargetRef(0x10),
		StateChange: &StateChangeEvent{Entity: StateEntityTarget, OldState: "INACTIVE", NewState: "ACTIVE", Reason: "mode set"},
	})

	entry := decodeSlogLine(t, &buf)
	if entry["target"] != float64(0x10) {
		t.Errorf("target = %v, want 16", entry["target"])
	}
	if entry["new_state"] != "ACTIVE" || entry["old_state"] != "INACTIVE" {
		t.Errorf("states = %v -> %v", entry["old_state"], entry["new_state"])
	}
	if entry["reason"] != "mode set" {
		t.Errorf("reason = %v, want mode set", entry["reason"])
	}
}

func TestSlogAdapterBelowLevelIsSilent(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))

	adapter.Log(Event{SessionID: "s-1"})

	if buf.Len() != 0 {
		t.Errorf("expected no output at info level, got %q", buf.String())
	}
}
