// Package commands implements the lmrt-log CLI commands.
package commands

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/lmrt-project/lmrt-go/pkg/log"
	"github.com/lmrt-project/lmrt-go/pkg/wire"
)

// timeFormat is the timestamp layout used by view and export.
const timeFormat = "2006-01-02T15:04:05.000000Z"

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format(timeFormat)
	session := shortenSessionID(event.SessionID)

	fmt.Fprintf(w, "%s [session:%s] %-3s %s %s%s\n",
		ts, session, event.Direction, event.Layer, typeLabel(event), targetLabel(event.Target))

	switch {
	case event.Command != nil:
		formatCommandDetails(w, event.Command)
	case event.Response != nil:
		formatResponseDetails(w, event.Response)
	case event.Notification != nil:
		formatNotificationDetails(w, event.Notification)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w)
}

// typeLabel names the payload carried by the event.
func typeLabel(event log.Event) string {
	switch {
	case event.Command != nil:
		return event.Command.Opcode.String()
	case event.Response != nil:
		return event.Response.Opcode.String() + "_RSP"
	case event.Notification != nil:
		return event.Notification.Type.String() + "_NTF"
	case event.StateChange != nil:
		return "State"
	case event.Error != nil:
		return "Error"
	default:
		return "Unknown"
	}
}

func targetLabel(target *uint8) string {
	if target == nil {
		return ""
	}
	return fmt.Sprintf(" target=0x%02x", *target)
}

// shortenSessionID returns the first 8 characters of the session ID.
func shortenSessionID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatCommandDetails(w io.Writer, cmd *log.CommandEvent) {
	fmt.Fprintf(w, "  Size: %d bytes\n", cmd.Size)
	if cmd.Opcode == log.OpSetRouting {
		fmt.Fprintf(w, "  Entries: %d  More: %t\n", cmd.EntryCount, cmd.More)
	}
	if len(cmd.Data) > 0 {
		fmt.Fprintf(w, "  Data: %s", hex.EncodeToString(cmd.Data))
		if cmd.Truncated {
			fmt.Fprintf(w, " (truncated)")
		}
		fmt.Fprintln(w)
	}
	if cmd.Opcode == log.OpSetRouting && !cmd.Truncated {
		formatRoutingEntries(w, cmd.Data)
	}
}

// formatRoutingEntries decodes a framed routing command and lists its
// entries. Undecodable data is skipped silently; the hex dump above
// already shows it.
func formatRoutingEntries(w io.Writer, data []byte) {
	rc, err := wire.DecodeSetRouting(data)
	if err != nil {
		return
	}
	entries, err := wire.ParseEntries(rc.Entries)
	if err != nil {
		return
	}
	for _, e := range entries {
		fmt.Fprintf(w, "    %s\n", e)
	}
}

func formatResponseDetails(w io.Writer, rsp *log.ResponseEvent) {
	fmt.Fprintf(w, "  Status: %s (0x%02x)\n", wire.NCIStatus(rsp.Status), rsp.Status)
	if rsp.Outstanding > 0 {
		fmt.Fprintf(w, "  Outstanding: %d\n", rsp.Outstanding)
	}
}

func formatNotificationDetails(w io.Writer, ntf *log.NotificationEvent) {
	if ntf.Status != 0 {
		fmt.Fprintf(w, "  Status: 0x%02x\n", ntf.Status)
	}
	if ntf.Size > 0 {
		fmt.Fprintf(w, "  Size: %d bytes\n", ntf.Size)
	}
	if ntf.Detail != "" {
		fmt.Fprintf(w, "  Detail: %s\n", ntf.Detail)
	}
}

func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	fmt.Fprintf(w, "  Entity: %s\n", sc.Entity)
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", err.Layer)
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Code != nil {
		fmt.Fprintf(w, "  Code: %d\n", *err.Code)
	}
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// ParseLayerFlag parses a layer string (case-insensitive).
func ParseLayerFlag(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "routing":
		return log.LayerRouting, nil
	case "discovery":
		return log.LayerDiscovery, nil
	case "connection":
		return log.LayerConnection, nil
	default:
		return 0, fmt.Errorf("invalid layer: %s (must be routing, discovery, or connection)", s)
	}
}

// ParseDirectionFlag parses a direction string (case-insensitive).
func ParseDirectionFlag(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
	}
}

// ParseCategoryFlag parses a category string (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "command":
		return log.CategoryCommand, nil
	case "response":
		return log.CategoryResponse, nil
	case "notification":
		return log.CategoryNotification, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be command, response, notification, state, or error)", s)
	}
}

// RunView writes every event matching filter to output.
func RunView(path string, filter log.Filter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}
}
