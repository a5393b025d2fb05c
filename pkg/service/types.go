package service

import (
	"errors"
	"log/slog"
)

// Service errors.
var (
	ErrNotStarted     = errors.New("service not started")
	ErrAlreadyStarted = errors.New("service already started")
)

// ServiceState represents the service state.
type ServiceState uint8

const (
	// StateIdle - service created but not started.
	StateIdle ServiceState = iota

	// StateRunning - the engine goroutine is running.
	StateRunning

	// StateStopping - service is shutting down.
	StateStopping

	// StateStopped - service has stopped.
	StateStopped
)

// String returns the state name.
func (s ServiceState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRunning:
		return "RUNNING"
	case StateStopping:
		return "STOPPING"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// Config configures a Service.
type Config struct {
	// MailboxSize is the capacity of the engine mailbox (default: 64).
	MailboxSize int

	// Logger is the optional logger for debug output.
	// If nil, logging is disabled.
	Logger *slog.Logger
}

// DefaultConfig returns the default service configuration.
func DefaultConfig() Config {
	return Config{
		MailboxSize: 64,
	}
}
