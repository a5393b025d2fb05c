package log

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestFileLoggerCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test"+FileExtension)

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	defer logger.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("log file was not created")
	}
	if logger.Path() != path {
		t.Errorf("Path() = %q, want %q", logger.Path(), path)
	}
}

func TestFileLoggerWritesCBOR(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test"+FileExtension)

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	event := Event{
		Timestamp: time.Now(),
		SessionID: "s-123",
		Direction: DirectionOut,
		Layer:     LayerRouting,
		Category:  CategoryCommand,
		Command:   &CommandEvent{Opcode: OpSetRouting, Size: 8, Data: []byte{0x21, 0x01, 0x05}},
	}

	logger.Log(event)
	logger.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("log file is empty")
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("failed to decode event: %v", err)
	}
	if decoded.SessionID != event.SessionID {
		t.Errorf("SessionID: got %q, want %q", decoded.SessionID, event.SessionID)
	}
	if decoded.Command == nil {
		t.Error("Command is nil")
	} else if decoded.Command.Size != 8 {
		t.Errorf("Command.Size: got %d, want 8", decoded.Command.Size)
	}
}

func TestFileLoggerAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test"+FileExtension)

	for _, id := range []string{"first", "second"} {
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger failed: %v", err)
		}
		logger.Log(Event{Timestamp: time.Now(), SessionID: id})
		logger.Close()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}

	dec := NewDecoder(bytes.NewReader(data))
	var got []string
	for {
		var ev Event
		if err := dec.Decode(&ev); err != nil {
			break
		}
		got = append(got, ev.SessionID)
	}
	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Errorf("sessions = %v, want [first second]", got)
	}
}

func TestFileLoggerThreadSafe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test"+FileExtension)
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				logger.Log(Event{Timestamp: time.Now(), SessionID: "s", Layer: LayerRouting})
			}
		}()
	}
	wg.Wait()
	logger.Close()

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	if got := len(readAll(t, reader)); got != 200 {
		t.Errorf("got %d events, want 200", got)
	}
	if logger.Dropped() != 0 {
		t.Errorf("Dropped() = %d, want 0", logger.Dropped())
	}
}

func TestFileLoggerClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test"+FileExtension)
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	if err := logger.Close(); err != nil {
		t.Errorf("first Close failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}

	// Log after close is ignored
	logger.Log(Event{SessionID: "late"})

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != 0 {
		t.Errorf("file size = %d, want 0", info.Size())
	}
}
