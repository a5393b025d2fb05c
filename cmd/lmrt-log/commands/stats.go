package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/lmrt-project/lmrt-go/pkg/log"
)

// Stats holds aggregate statistics about a trace file.
type Stats struct {
	TotalEvents       int
	EventsByLayer     map[log.Layer]int
	EventsByCategory  map[log.Category]int
	EventsByDirection map[log.Direction]int
	Sessions          map[string]*SessionStats
	Targets           map[uint8]int
	Errors            int
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// SessionStats holds statistics for one engine session.
type SessionStats struct {
	FirstSeen time.Time
	LastSeen  time.Time
	Events    int

	// RoutingCommands and RoutingBytes count outgoing SET_ROUTING commands.
	RoutingCommands int
	RoutingBytes    int

	// Commits counts routing commands sent without the more flag.
	Commits int
}

// Collect reads the trace at path and aggregates it.
func Collect(path string) (*Stats, error) {
	reader, err := log.NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByLayer:     make(map[log.Layer]int),
		EventsByCategory:  make(map[log.Category]int),
		EventsByDirection: make(map[log.Direction]int),
		Sessions:          make(map[string]*SessionStats),
		Targets:           make(map[uint8]int),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByLayer[event.Layer]++
		stats.EventsByCategory[event.Category]++
		stats.EventsByDirection[event.Direction]++
		if event.Target != nil {
			stats.Targets[*event.Target]++
		}

		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		sess, ok := stats.Sessions[event.SessionID]
		if !ok {
			sess = &SessionStats{FirstSeen: event.Timestamp, LastSeen: event.Timestamp}
			stats.Sessions[event.SessionID] = sess
		}
		sess.Events++
		if event.Timestamp.After(sess.LastSeen) {
			sess.LastSeen = event.Timestamp
		}

		if cmd := event.Command; cmd != nil && cmd.Opcode == log.OpSetRouting {
			sess.RoutingCommands++
			sess.RoutingBytes += cmd.Size
			if !cmd.More {
				sess.Commits++
			}
		}

		if event.Error != nil {
			stats.Errors++
		}
	}
	return stats, nil
}

// RunStats analyzes the trace file and prints statistics to w.
func RunStats(path string, w io.Writer) error {
	stats, err := Collect(path)
	if err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== LMRT Trace Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Millisecond))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Layer:")
	for _, layer := range []log.Layer{log.LayerRouting, log.LayerDiscovery, log.LayerConnection} {
		if count := stats.EventsByLayer[layer]; count > 0 {
			fmt.Fprintf(w, "  %-14s %d\n", layer.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryCommand, log.CategoryResponse, log.CategoryNotification, log.CategoryState, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-14s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Direction:")
	for _, dir := range []log.Direction{log.DirectionIn, log.DirectionOut} {
		if count := stats.EventsByDirection[dir]; count > 0 {
			fmt.Fprintf(w, "  %-14s %d\n", dir.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	if len(stats.Targets) > 0 {
		ids := make([]uint8, 0, len(stats.Targets))
		for id := range stats.Targets {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		fmt.Fprintln(w, "Events by Target:")
		for _, id := range ids {
			fmt.Fprintf(w, "  0x%02x:          %d\n", id, stats.Targets[id])
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Sessions: %d\n", len(stats.Sessions))
	if len(stats.Sessions) > 0 {
		type sessionInfo struct {
			id    string
			stats *SessionStats
		}
		sessions := make([]sessionInfo, 0, len(stats.Sessions))
		for id, ss := range stats.Sessions {
			sessions = append(sessions, sessionInfo{id, ss})
		}
		sort.Slice(sessions, func(i, j int) bool {
			return sessions[i].stats.FirstSeen.Before(sessions[j].stats.FirstSeen)
		})

		fmt.Fprintln(w)
		for _, s := range sessions {
			duration := s.stats.LastSeen.Sub(s.stats.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %d events, duration %s\n", shortenSessionID(s.id), s.stats.Events, duration)
			if s.stats.RoutingCommands > 0 {
				fmt.Fprintf(w, "             Routing: %d commands, %d bytes, %d commits\n",
					s.stats.RoutingCommands, s.stats.RoutingBytes, s.stats.Commits)
			}
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
