package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes trace events to an slog.Logger.
// Useful for development when you want to see controller traffic in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session_id", event.SessionID),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}

	if event.Target != nil {
		attrs = append(attrs, slog.Uint64("target", uint64(*event.Target)))
	}

	switch {
	case event.Command != nil:
		attrs = append(attrs,
			slog.String("opcode", event.Command.Opcode.String()),
			slog.Int("size", event.Command.Size),
		)
		if event.Command.Opcode == OpSetRouting {
			attrs = append(attrs,
				slog.Bool("more", event.Command.More),
				slog.Int("entries", int(event.Command.EntryCount)),
			)
		}
	case event.Response != nil:
		attrs = append(attrs,
			slog.String("opcode", event.Response.Opcode.String()),
			slog.Int("status", int(event.Response.Status)),
			slog.Int("outstanding", event.Response.Outstanding),
		)
	case event.Notification != nil:
		attrs = append(attrs, slog.String("ntf_type", event.Notification.Type.String()))
		if event.Notification.Detail != "" {
			attrs = append(attrs, slog.String("detail", event.Notification.Detail))
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
		if event.Error.Code != nil {
			attrs = append(attrs, slog.Int("error_code", *event.Error.Code))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "trace", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
