// Package log provides structured trace logging for the routing engine.
//
// This package defines the Logger interface and Event types for capturing
// controller-facing events at multiple layers (routing, discovery, connection).
// It is separate from operational logging (slog) - the trace provides a
// complete machine-readable record of every command, response and state
// change for debugging and analysis.
//
// # Basic Usage
//
// Applications configure tracing by providing a Logger implementation:
//
//	// For development: log to console via slog
//	cfg.ProtocolLogger = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	cfg.ProtocolLogger, _ = log.NewFileLogger("/var/log/lmrt/engine.lmrtlog")
//
//	// Both: use MultiLogger
//	cfg.ProtocolLogger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Event Types
//
// Events are captured at multiple layers:
//   - Routing: Set-routing commands and their responses (CommandEvent, ResponseEvent)
//   - Discovery: Enumeration notifications and state changes (NotificationEvent, StateChangeEvent)
//   - Connection: Logical connection lifecycle and data
//
// Errors have a dedicated event type.
//
// # File Format
//
// Trace files use CBOR encoding with .lmrtlog extension. The lmrt-log CLI
// tool provides viewing, filtering, and statistics.
package log
