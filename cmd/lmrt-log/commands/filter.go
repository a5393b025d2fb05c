package commands

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/lmrt-project/lmrt-go/pkg/log"
)

// FilterOptions holds the string-valued criteria accepted on the command
// line. Empty fields match everything.
type FilterOptions struct {
	SessionID string
	Target    string
	TimeStart string
	TimeEnd   string
	Layer     string
	Direction string
	Category  string
}

// Build converts the options into a log.Filter.
func (opts FilterOptions) Build() (log.Filter, error) {
	filter := log.Filter{SessionID: opts.SessionID}

	if opts.Target != "" {
		v, err := strconv.ParseUint(opts.Target, 0, 8)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid target: %s", opts.Target)
		}
		id := uint8(v)
		filter.Target = &id
	}

	if opts.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, opts.TimeStart)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid time-start format: %w", err)
		}
		filter.TimeStart = &t
	}

	if opts.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, opts.TimeEnd)
		if err != nil {
			return log.Filter{}, fmt.Errorf("invalid time-end format: %w", err)
		}
		filter.TimeEnd = &t
	}

	if opts.Layer != "" {
		l, err := ParseLayerFlag(opts.Layer)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Layer = &l
	}

	if opts.Direction != "" {
		d, err := ParseDirectionFlag(opts.Direction)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Direction = &d
	}

	if opts.Category != "" {
		c, err := ParseCategoryFlag(opts.Category)
		if err != nil {
			return log.Filter{}, err
		}
		filter.Category = &c
	}

	return filter, nil
}

// RunFilter copies the events of path matching opts into a new trace file
// at output and returns how many were written.
func RunFilter(path, output string, opts FilterOptions) (int, error) {
	filter, err := opts.Build()
	if err != nil {
		return 0, err
	}

	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	logger, err := log.NewFileLogger(output)
	if err != nil {
		return 0, fmt.Errorf("failed to create output logger: %w", err)
	}
	defer logger.Close()

	count := 0
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, fmt.Errorf("failed to read event: %w", err)
		}
		logger.Log(event)
		count++
	}
	if n := logger.Dropped(); n > 0 {
		return count - n, fmt.Errorf("%d events could not be written", n)
	}
	return count, nil
}
