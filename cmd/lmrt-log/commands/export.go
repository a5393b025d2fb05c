package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/lmrt-project/lmrt-go/pkg/log"
)

// RunExport converts the trace at path to format, writing to output or to
// w when output is empty.
func RunExport(path, format, output string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "jsonl":
		return exportJSONL(reader, w)
	case "csv":
		return exportCSV(reader, w)
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(event); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"timestamp", "session_id", "direction", "layer", "category", "target", "type", "status", "size"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		var target, status, size string
		if event.Target != nil {
			target = fmt.Sprintf("0x%02x", *event.Target)
		}
		switch {
		case event.Command != nil:
			size = strconv.Itoa(event.Command.Size)
		case event.Response != nil:
			status = fmt.Sprintf("0x%02x", event.Response.Status)
		case event.Notification != nil:
			status = fmt.Sprintf("0x%02x", event.Notification.Status)
			if event.Notification.Size > 0 {
				size = strconv.Itoa(event.Notification.Size)
			}
		}

		row := []string{
			event.Timestamp.UTC().Format(timeFormat),
			event.SessionID,
			event.Direction.String(),
			event.Layer.String(),
			event.Category.String(),
			target,
			typeLabel(event),
			status,
			size,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
