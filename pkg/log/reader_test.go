package log

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func createTestLogFile(t *testing.T, events []Event) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test"+FileExtension)

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create test log: %v", err)
	}

	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

func readAll(t *testing.T, r *Reader) []Event {
	t.Helper()
	var read []Event
	for {
		event, err := r.Next()
		if err == io.EOF {
			return read
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		read = append(read, event)
	}
}

func TestReaderIteratesEvents(t *testing.T) {
	events := []Event{
		{Timestamp: time.Now(), SessionID: "s-1", Direction: DirectionOut, Layer: LayerRouting, Category: CategoryCommand},
		{Timestamp: time.Now(), SessionID: "s-2", Direction: DirectionIn, Layer: LayerRouting, Category: CategoryResponse},
		{Timestamp: time.Now(), SessionID: "s-3", Direction: DirectionIn, Layer: LayerDiscovery, Category: CategoryState},
	}

	reader, err := NewReader(createTestLogFile(t, events))
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	read := readAll(t, reader)
	if len(read) != 3 {
		t.Fatalf("got %d events, want 3", len(read))
	}
	for i, want := range []string{"s-1", "s-2", "s-3"} {
		if read[i].SessionID != want {
			t.Errorf("event %d: SessionID = %q, want %q", i, read[i].SessionID, want)
		}
	}
}

func TestReaderHandlesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty"+FileExtension)
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	event, err := reader.Next()
	if err != io.EOF {
		t.Errorf("expected io.EOF, got err=%v, event=%+v", err, event)
	}
}

func TestReaderFilter(t *testing.T) {
	t0 := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	events := []Event{
		{Timestamp: t0, SessionID: "a", Direction: DirectionOut, Layer: LayerRouting, Category: CategoryCommand},
		{Timestamp: t0.Add(time.Second), SessionID: "a", Direction: DirectionIn, Layer: LayerDiscovery, Category: CategoryNotification, Target: TargetRef(0x10)},
		{Timestamp: t0.Add(2 * time.Second), SessionID: "b", Direction: DirectionIn, Layer: LayerRouting, Category: CategoryResponse},
		{Timestamp: t0.Add(3 * time.Second), SessionID: "b", Direction: DirectionOut, Layer: LayerConnection, Category: CategoryCommand, Target: TargetRef(0x20)},
	}
	path := createTestLogFile(t, events)

	layer := LayerRouting
	dirIn := DirectionIn
	cat := CategoryCommand
	target := uint8(0x20)
	start := t0.Add(time.Second)
	end := t0.Add(3 * time.Second)

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"none", Filter{}, 4},
		{"session", Filter{SessionID: "a"}, 2},
		{"layer", Filter{Layer: &layer}, 2},
		{"direction", Filter{Direction: &dirIn}, 2},
		{"category", Filter{Category: &cat}, 2},
		{"target", Filter{Target: &target}, 1},
		{"time range", Filter{TimeStart: &start, TimeEnd: &end}, 2},
		{"combined", Filter{SessionID: "b", Layer: &layer, Direction: &dirIn}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader, err := NewFilteredReader(path, tt.filter)
			if err != nil {
				t.Fatalf("NewFilteredReader failed: %v", err)
			}
			defer reader.Close()

			if got := len(readAll(t, reader)); got != tt.want {
				t.Errorf("got %d events, want %d", got, tt.want)
			}
		})
	}
}

func TestReaderMissingFile(t *testing.T) {
	if _, err := NewReader(filepath.Join(t.TempDir(), "missing"+FileExtension)); err == nil {
		t.Error("NewReader on missing file should fail")
	}
}
