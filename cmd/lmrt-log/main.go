// Command lmrt-log is a tool for viewing and analyzing routing engine trace
// files.
//
// Trace files are written by lmrt-sim with the -trace flag, or by any
// program that attaches a log.FileLogger to the engine.
//
// Usage:
//
//	lmrt-log <command> [flags] <file.lmrtlog>
//
// Commands:
//
//	view     View trace file in human-readable format
//	export   Export trace file to JSON or CSV format
//	filter   Filter trace file and write to new file
//	stats    Show statistics about the trace file
//
// Examples:
//
//	# View only routing commands
//	lmrt-log view -layer routing -category command sim.lmrtlog
//
//	# Export to CSV
//	lmrt-log export -format csv -o sim.csv sim.lmrtlog
//
//	# Keep only events concerning one execution environment
//	lmrt-log filter -target 0x86 -o uicc.lmrtlog sim.lmrtlog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lmrt-project/lmrt-go/cmd/lmrt-log/commands"
)

const usage = `lmrt-log - Routing Engine Trace Analyzer

Usage:
  lmrt-log <command> [flags] <file.lmrtlog>

Commands:
  view     View trace file in human-readable format
  export   Export trace file to JSON or CSV format
  filter   Filter trace file and write to new file
  stats    Show statistics about the trace file

Use "lmrt-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// filterFlags registers the shared selection flags on fs.
func filterFlags(fs *flag.FlagSet) *commands.FilterOptions {
	opts := &commands.FilterOptions{}
	fs.StringVar(&opts.SessionID, "session", "", "Filter by session ID")
	fs.StringVar(&opts.Target, "target", "", "Filter by target ID (e.g. 0x86)")
	fs.StringVar(&opts.TimeStart, "time-start", "", "Filter by start time (RFC3339)")
	fs.StringVar(&opts.TimeEnd, "time-end", "", "Filter by end time (RFC3339)")
	fs.StringVar(&opts.Layer, "layer", "", "Filter by layer (routing, discovery, connection)")
	fs.StringVar(&opts.Direction, "direction", "", "Filter by direction (in, out)")
	fs.StringVar(&opts.Category, "category", "", "Filter by category (command, response, notification, state, error)")
	return opts
}

func parseArgs(fs *flag.FlagSet, args []string) string {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: trace file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `lmrt-log view - View trace file in human-readable format

Usage:
  lmrt-log view [flags] <file.lmrtlog>

Flags:
`)
		fs.PrintDefaults()
	}
	opts := filterFlags(fs)
	path := parseArgs(fs, args)

	filter, err := opts.Build()
	if err != nil {
		fail(err)
	}
	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fail(err)
	}
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `lmrt-log export - Export trace file to JSON or CSV format

Usage:
  lmrt-log export [flags] <file.lmrtlog>

Flags:
`)
		fs.PrintDefaults()
	}
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")
	path := parseArgs(fs, args)

	if err := commands.RunExport(path, *format, *output, os.Stdout); err != nil {
		fail(err)
	}
}

func runFilter(args []string) {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `lmrt-log filter - Filter trace file and write to new file

Usage:
  lmrt-log filter [flags] <file.lmrtlog>

Flags:
`)
		fs.PrintDefaults()
	}
	output := fs.String("o", "", "Output file (required)")
	opts := filterFlags(fs)
	path := parseArgs(fs, args)

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	n, err := commands.RunFilter(path, *output, *opts)
	if err != nil {
		fail(err)
	}
	fmt.Printf("Filtered %d events to %s\n", n, *output)
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `lmrt-log stats - Show statistics about the trace file

Usage:
  lmrt-log stats <file.lmrtlog>

`)
	}
	path := parseArgs(fs, args)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fail(err)
	}
}
