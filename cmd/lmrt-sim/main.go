// Command lmrt-sim runs the listen mode routing engine against a
// simulated NFC controller.
//
// The simulator reads a YAML profile describing the controller and its
// NFCEEs, enables NFCEE discovery, applies the profile's initial routes
// and then either waits for a signal or runs an interactive shell.
//
// Usage:
//
//	lmrt-sim [flags]
//
// Flags:
//
//	-profile string       Profile file path (default: built-in single NFCEE profile)
//	-log-level string     Log level: debug, info, warn, error (default "info")
//	-trace string         Write the controller trace to this file (.lmrtlog)
//	-trace-console        Also print the controller trace at debug level
//	-metrics-addr string  Serve Prometheus metrics on this address (e.g. :9464)
//	-interactive          Enable the interactive shell
//
// Examples:
//
//	# Run the default profile interactively
//	lmrt-sim -interactive
//
//	# Run a profile with a trace file and metrics
//	lmrt-sim -profile profiles/default.yaml -trace sim.lmrtlog -metrics-addr :9464
//
// Interactive Commands:
//
//	status      - Show engine and NFCEE status
//	tech        - Set or clear technology routes
//	proto       - Set or clear protocol routes
//	aid, rmaid  - Add or remove AID routes
//	apdu, rmapdu - Add or remove APDU pattern routes
//	commit      - Commit pending changes now
//	size        - Show routing table usage
//	dump        - Dump the engine snapshot
//	recover     - Simulate low power recovery
//	modeset     - Enable or disable an NFCEE
//	quit        - Exit the simulator
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lmrt-project/lmrt-go/cmd/lmrt-sim/controller"
	"github.com/lmrt-project/lmrt-go/cmd/lmrt-sim/interactive"
	"github.com/lmrt-project/lmrt-go/pkg/config"
	"github.com/lmrt-project/lmrt-go/pkg/engine"
	"github.com/lmrt-project/lmrt-go/pkg/log"
	"github.com/lmrt-project/lmrt-go/pkg/metrics"
	"github.com/lmrt-project/lmrt-go/pkg/service"
	"github.com/lmrt-project/lmrt-go/pkg/wire"
)

// Config holds the simulator command line.
type Config struct {
	ProfileFile  string
	LogLevel     string
	TraceFile    string
	TraceConsole bool
	MetricsAddr  string
	Interactive  bool
}

var cfg Config

func init() {
	flag.StringVar(&cfg.ProfileFile, "profile", "", "Profile file path")
	flag.StringVar(&cfg.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.StringVar(&cfg.TraceFile, "trace", "", "Write the controller trace to this file")
	flag.BoolVar(&cfg.TraceConsole, "trace-console", false, "Also print the controller trace at debug level")
	flag.StringVar(&cfg.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	flag.BoolVar(&cfg.Interactive, "interactive", false, "Enable the interactive shell")
}

// defaultProfile is used when no profile file is given.
func defaultProfile() *config.File {
	return &config.File{
		Controller: config.Controller{
			Name:       "sim",
			TableSize:  720,
			MaxPayload: wire.MaxRoutingTLVSize,
			Latency:    2 * time.Millisecond,
		},
		EEs: []config.EE{{ID: 0x86, Interfaces: []string{"apdu"}}},
	}
}

func main() {
	flag.Parse()

	if err := validateConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(2)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "lmrt-sim: %v\n", err)
		os.Exit(1)
	}
}

func validateConfig() error {
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return err
	}
	if cfg.TraceFile != "" && filepath.Ext(cfg.TraceFile) != log.FileExtension {
		return fmt.Errorf("trace file must end in %s, got %q", log.FileExtension, cfg.TraceFile)
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q (use: debug, info, warn, error)", s)
}

// switchWriter lets the log output move to the readline writer once the
// shell exists.
type switchWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *switchWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func (s *switchWriter) Set(w io.Writer) {
	s.mu.Lock()
	s.w = w
	s.mu.Unlock()
}

func run() error {
	profile := defaultProfile()
	if cfg.ProfileFile != "" {
		var err error
		if profile, err = config.Load(cfg.ProfileFile); err != nil {
			return err
		}
	}

	level, _ := parseLevel(cfg.LogLevel)
	out := &switchWriter{w: os.Stderr}
	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))

	logger.Info("LMRT controller simulator",
		"profile", cfg.ProfileFile,
		"table_size", profile.Controller.TableSize,
		"max_payload", profile.Controller.MaxPayload,
		"ees", len(profile.EEs))

	engCfg, err := profile.EngineConfig()
	if err != nil {
		return err
	}
	notifications, err := profile.Notifications()
	if err != nil {
		return err
	}

	// Trace logging
	var traces []log.Logger
	if cfg.TraceFile != "" {
		fl, err := log.NewFileLogger(cfg.TraceFile)
		if err != nil {
			return fmt.Errorf("open trace file: %w", err)
		}
		defer fl.Close()
		traces = append(traces, fl)
		logger.Info("Trace logging enabled", "path", fl.Path())
	}
	if cfg.TraceConsole {
		traces = append(traces, log.NewSlogAdapter(logger))
	}
	switch len(traces) {
	case 0:
	case 1:
		engCfg.ProtocolLogger = traces[0]
	default:
		engCfg.ProtocolLogger = log.NewMultiLogger(traces...)
	}

	name := profile.Controller.Name
	if name == "" {
		name = "sim"
	}
	recorder := metrics.NewRecorder(nil, prometheus.Labels{"controller": name}).WithProcessCollectors()
	engCfg.Metrics = recorder
	engCfg.Logger = logger.With("component", "engine")

	ctl := controller.New(controller.Config{
		TableSize:     profile.Controller.TableSize,
		MaxPayload:    profile.Controller.MaxPayload,
		Latency:       profile.Controller.Latency,
		RejectRouting: profile.Controller.RejectRouting,
		EEs:           notifications,
		Logger:        logger.With("component", "controller"),
	})
	engCfg.RF = ctl

	svc := service.New(ctl, ctl, service.Config{
		MailboxSize: service.DefaultConfig().MailboxSize,
		Logger:      logger.With("component", "service"),
	}, engCfg)
	ctl.Attach(svc)
	svc.OnEvent(func(ev engine.Event) { handleEvent(logger, svc, profile, ev) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	go ctl.Run(ctx)
	logger.Info("Service started", "state", svc.State(), "session", svc.SessionID())

	if cfg.MetricsAddr != "" {
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux(recorder), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server failed", "error", err)
			}
		}()
		defer srv.Close()
		logger.Info("Serving metrics", "addr", cfg.MetricsAddr)
	}

	err = svc.Do(ctx, func(e *engine.Engine) error {
		e.SetActive(true)
		return e.Enable()
	})
	if err != nil {
		return fmt.Errorf("enable: %w", err)
	}

	if cfg.Interactive {
		sh, err := interactive.New(svc, ctl)
		if err != nil {
			return err
		}
		// Redirect log output through readline to avoid interfering with input
		out.Set(sh.Stdout())
		go sh.Run(ctx, cancel)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("Received signal", "signal", sig)
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	if err := svc.Stop(); err != nil {
		logger.Warn("Error stopping service", "error", err)
	}
	cancel()
	logger.Info("Goodbye!")
	return nil
}

func metricsMux(recorder *metrics.Recorder) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", recorder.Handler())
	return mux
}

// handleEvent logs engine events and applies the profile's routes once
// discovery has completed.
func handleEvent(logger *slog.Logger, svc *service.Service, profile *config.File, ev engine.Event) {
	switch ev.Type {
	case engine.EventEnableComplete:
		if !ev.Status.IsOK() {
			logger.Error("NFCEE discovery failed", "status", ev.Status, "error", ev.Err)
			return
		}
		logger.Info("NFCEE discovery complete", "targets", len(ev.Targets), "partial", ev.Partial)
		err := svc.Post(func(e *engine.Engine) {
			if err := profile.Apply(e); err != nil {
				logger.Warn("Some profile routes were rejected", "error", err)
			}
		})
		if err != nil {
			logger.Warn("Failed to apply profile routes", "error", err)
		}
	case engine.EventRoutingUpdated:
		logger.Info("Routing table updated", "status", ev.Status)
	case engine.EventRoutingError:
		logger.Warn("Routing update failed", "status", ev.Status, "error", ev.Err)
	case engine.EventBufferFull:
		logger.Warn("Routing table full", "target", ev.Target)
	case engine.EventNewEE:
		logger.Info("New NFCEE", "target", ev.Target)
	case engine.EventStatusChanged:
		logger.Info("NFCEE status changed", "target", ev.Target, "status", ev.EEStatus)
	case engine.EventPowerRecovered:
		logger.Info("Power recovery complete", "status", ev.Status)
	}
}
