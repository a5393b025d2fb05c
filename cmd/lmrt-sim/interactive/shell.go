// Package interactive provides the interactive command-line interface
// for lmrt-sim.
package interactive

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/lmrt-project/lmrt-go/cmd/lmrt-sim/controller"
	"github.com/lmrt-project/lmrt-go/pkg/config"
	"github.com/lmrt-project/lmrt-go/pkg/engine"
	"github.com/lmrt-project/lmrt-go/pkg/lmrt"
	"github.com/lmrt-project/lmrt-go/pkg/service"
	"github.com/lmrt-project/lmrt-go/pkg/wire"
)

// requestTimeout bounds every engine request issued by a command.
const requestTimeout = 5 * time.Second

// Shell handles interactive mode for lmrt-sim.
type Shell struct {
	svc *service.Service
	ctl *controller.Controller
	out io.Writer
	rl  *readline.Instance
}

// New creates an interactive shell reading from the terminal.
func New(svc *service.Service, ctl *controller.Controller) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "lmrt> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	s := newShell(svc, ctl, rl.Stdout())
	s.rl = rl
	svc.OnEvent(s.handleEvent)
	return s, nil
}

func newShell(svc *service.Service, ctl *controller.Controller, out io.Writer) *Shell {
	return &Shell{svc: svc, ctl: ctl, out: out}
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (s *Shell) Stdout() io.Writer {
	return s.out
}

// Run starts the interactive command loop.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.rl.Close()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.out, "Exiting...")
			cancel()
			return
		}

		if s.Exec(ctx, line) {
			fmt.Fprintln(s.out, "Exiting...")
			cancel()
			return
		}
	}
}

// Exec runs one command line. It reports whether the shell should exit.
func (s *Shell) Exec(ctx context.Context, line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return false
	}

	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	var err error
	switch cmd {
	case "help", "?":
		s.printHelp()

	case "status", "st":
		err = s.cmdStatus(ctx)

	case "tech":
		err = s.cmdTech(ctx, args)

	case "proto":
		err = s.cmdProto(ctx, args)

	case "aid":
		err = s.cmdAID(ctx, args)

	case "rmaid":
		err = s.cmdRemoveAID(ctx, args)

	case "apdu":
		err = s.cmdAPDU(ctx, args)

	case "rmapdu":
		err = s.cmdRemoveAPDU(ctx, args)

	case "commit":
		err = s.do(ctx, func(e *engine.Engine) error { return e.UpdateNow() })

	case "size":
		err = s.cmdSize(ctx)

	case "dump":
		err = s.cmdDump(ctx)

	case "recover":
		err = s.do(ctx, func(e *engine.Engine) error { return e.EnterPowerRecovery() })

	case "modeset":
		err = s.cmdModeSet(ctx, args)

	case "rf":
		err = s.cmdRF(args)

	case "quit", "exit", "q":
		return true

	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
		return false
	}

	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
	}
	return false
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, `
LMRT Simulator Commands:
  Routing:
    tech <target> [on=A|B] [off=..] [battery=..] [lock=..] [screenoff=..] [offlock=..]
    tech <target> clear <techs>
    proto <target> [on=ISO_DEP] ...      - Same syntax as tech, with protocols
    proto <target> clear <protos>
    aid <target> <hex> [power] [match]   - Route an AID (match: exact, prefix, subset)
    rmaid <hex>|all                      - Remove an AID route
    apdu <target> <pattern> <mask> [power]
    rmapdu <pattern>|all                 - Remove an APDU pattern route
    commit                               - Commit pending changes now

  Inspection:
    status                               - Show engine and NFCEE status
    size                                 - Show routing table usage
    dump                                 - Dump the engine snapshot and controller table

  Controller:
    modeset <target> on|off              - Enable or disable an NFCEE
    recover                              - Simulate low power recovery
    rf on|off                            - Set the RF discovery state

  General:
    help                                 - Show this help
    quit                                 - Exit

  Targets are 0x00 (or "dh") for the device host, or an NFCEE id such as 0x86.`)
}

func (s *Shell) do(ctx context.Context, fn func(e *engine.Engine) error) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	return s.svc.Do(ctx, fn)
}

func (s *Shell) cmdStatus(ctx context.Context) error {
	var (
		state     engine.DiscoveryState
		active    bool
		targets   []engine.TargetInfo
		remaining int
		limits    lmrt.Limits
	)
	err := s.do(ctx, func(e *engine.Engine) error {
		state = e.State()
		active = e.Active()
		targets = e.Targets()
		limits = e.Limits()
		remaining = limits.TableSize - e.TotalTableSize()
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(s.out, "\nEngine Status")
	fmt.Fprintln(s.out, "-------------------------------------------")
	fmt.Fprintf(s.out, "  Session:        %s\n", s.svc.SessionID())
	fmt.Fprintf(s.out, "  Service State:  %s\n", s.svc.State())
	fmt.Fprintf(s.out, "  Discovery:      %s\n", state)
	fmt.Fprintf(s.out, "  System Active:  %t\n", active)
	fmt.Fprintf(s.out, "  RF Discovering: %t\n", s.ctl.Discovering())
	fmt.Fprintf(s.out, "  Table:          %d of %d bytes free\n", remaining, limits.TableSize)
	fmt.Fprintf(s.out, "  Table Updates:  %d\n", s.ctl.Updates())

	fmt.Fprintf(s.out, "\nNFCEEs (%d):\n", len(targets))
	for _, t := range targets {
		ifaces := make([]string, len(t.Interfaces))
		for i, iface := range t.Interfaces {
			ifaces[i] = iface.String()
		}
		fmt.Fprintf(s.out, "  0x%02x  %-9s  interfaces: %s\n", uint8(t.ID), t.Status, strings.Join(ifaces, ","))
	}
	fmt.Fprintln(s.out)
	return nil
}

// parseRoute reads key=value power state arguments into a route.
func parseRoute(target wire.TargetID, args []string) (config.PowerRoute, error) {
	r := config.PowerRoute{Target: uint8(target)}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return r, fmt.Errorf("expected state=values, got %q", arg)
		}
		switch strings.ToLower(key) {
		case "on":
			r.SwitchOn = value
		case "off":
			r.SwitchOff = value
		case "battery":
			r.BatteryOff = value
		case "lock":
			r.ScreenLock = value
		case "screenoff":
			r.ScreenOff = value
		case "offlock":
			r.ScreenOffLock = value
		default:
			return r, fmt.Errorf("unknown power state %q", key)
		}
	}
	return r, nil
}

func (s *Shell) cmdTech(ctx context.Context, args []string) error {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: tech <target> [on=A|B] ... | tech <target> clear <techs>")
		return nil
	}
	target, err := ParseTarget(args[0])
	if err != nil {
		return err
	}

	if len(args) == 3 && strings.EqualFold(args[1], "clear") {
		techs, err := wire.ParseTechMask(args[2])
		if err != nil {
			return err
		}
		return s.do(ctx, func(e *engine.Engine) error { return e.ClearDefaultTechRouting(target, techs) })
	}

	route, err := parseRoute(target, args[1:])
	if err != nil {
		return err
	}
	masks, err := route.TechMasks()
	if err != nil {
		return err
	}
	return s.do(ctx, func(e *engine.Engine) error { return e.SetDefaultTechRouting(target, masks) })
}

func (s *Shell) cmdProto(ctx context.Context, args []string) error {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: proto <target> [on=ISO_DEP] ... | proto <target> clear <protos>")
		return nil
	}
	target, err := ParseTarget(args[0])
	if err != nil {
		return err
	}

	if len(args) == 3 && strings.EqualFold(args[1], "clear") {
		protos, err := wire.ParseProtoMask(args[2])
		if err != nil {
			return err
		}
		return s.do(ctx, func(e *engine.Engine) error { return e.ClearDefaultProtoRouting(target, protos) })
	}

	route, err := parseRoute(target, args[1:])
	if err != nil {
		return err
	}
	masks, err := route.ProtoMasks()
	if err != nil {
		return err
	}
	return s.do(ctx, func(e *engine.Engine) error { return e.SetDefaultProtoRouting(target, masks) })
}

func (s *Shell) cmdAID(ctx context.Context, args []string) error {
	if len(args) < 2 {
		fmt.Fprintln(s.out, "Usage: aid <target> <hex> [power] [match]")
		fmt.Fprintln(s.out, "  Example: aid 0x86 A0000000031010 ON|SWITCH_OFF prefix")
		return nil
	}
	target, err := ParseTarget(args[0])
	if err != nil {
		return err
	}
	route := config.AIDRoute{Target: uint8(target), AID: args[1]}
	if len(args) > 2 {
		route.Power = args[2]
	}
	if len(args) > 3 {
		route.Match = args[3]
	}
	aid, power, qualifier, err := route.Parse()
	if err != nil {
		return err
	}
	return s.do(ctx, func(e *engine.Engine) error { return e.AddAID(target, aid, power, qualifier) })
}

func (s *Shell) cmdRemoveAID(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: rmaid <hex>|all")
		return nil
	}
	if strings.EqualFold(args[0], "all") {
		return s.do(ctx, func(e *engine.Engine) error { return e.RemoveAllAIDs() })
	}
	aid, err := config.ParseHex(args[0])
	if err != nil {
		return err
	}
	return s.do(ctx, func(e *engine.Engine) error { return e.RemoveAID(aid) })
}

func (s *Shell) cmdAPDU(ctx context.Context, args []string) error {
	if len(args) < 3 {
		fmt.Fprintln(s.out, "Usage: apdu <target> <pattern> <mask> [power]")
		fmt.Fprintln(s.out, "  Example: apdu dh 00A40400 FFFFFFFF ON")
		return nil
	}
	target, err := ParseTarget(args[0])
	if err != nil {
		return err
	}
	route := config.APDURoute{Target: uint8(target), Pattern: args[1], Mask: args[2]}
	if len(args) > 3 {
		route.Power = args[3]
	}
	pattern, mask, power, err := route.Parse()
	if err != nil {
		return err
	}
	return s.do(ctx, func(e *engine.Engine) error { return e.AddAPDUPattern(target, pattern, mask, power) })
}

func (s *Shell) cmdRemoveAPDU(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: rmapdu <pattern>|all")
		return nil
	}
	if strings.EqualFold(args[0], "all") {
		return s.do(ctx, func(e *engine.Engine) error { return e.RemoveAllAPDUPatterns() })
	}
	pattern, err := config.ParseHex(args[0])
	if err != nil {
		return err
	}
	return s.do(ctx, func(e *engine.Engine) error { return e.RemoveAPDUPattern(pattern) })
}

func (s *Shell) cmdSize(ctx context.Context) error {
	var remaining, total, maxAID int
	var limits lmrt.Limits
	err := s.do(ctx, func(e *engine.Engine) error {
		remaining = e.RemainingSize()
		total = e.TotalTableSize()
		maxAID = e.MaxAIDConfigLength()
		limits = e.Limits()
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "  Used:        %d bytes\n", total)
	fmt.Fprintf(s.out, "  Remaining:   %d bytes\n", remaining)
	fmt.Fprintf(s.out, "  Capacity:    %d bytes\n", limits.TableSize)
	fmt.Fprintf(s.out, "  AID arena:   %d bytes\n", maxAID)
	return nil
}

func (s *Shell) cmdDump(ctx context.Context) error {
	var snap engine.Snapshot
	var encoded []byte
	err := s.do(ctx, func(e *engine.Engine) error {
		snap = e.Snapshot()
		var err error
		encoded, err = e.EncodeSnapshot()
		return err
	})
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, string(data))
	fmt.Fprintf(s.out, "CBOR snapshot (%d bytes): %s\n", len(encoded), hex.EncodeToString(encoded))

	table := s.ctl.Table()
	fmt.Fprintf(s.out, "\nController table (%d entries):\n", len(table))
	for i, entry := range table {
		fmt.Fprintf(s.out, "  %2d  %s\n", i, entry)
	}
	return nil
}

func (s *Shell) cmdModeSet(ctx context.Context, args []string) error {
	if len(args) != 2 {
		fmt.Fprintln(s.out, "Usage: modeset <target> on|off")
		return nil
	}
	target, err := ParseTarget(args[0])
	if err != nil {
		return err
	}
	activate, err := parseOnOff(args[1])
	if err != nil {
		return err
	}
	return s.do(ctx, func(e *engine.Engine) error { return e.ModeSet(target, activate) })
}

func (s *Shell) cmdRF(args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: rf on|off")
		return nil
	}
	on, err := parseOnOff(args[0])
	if err != nil {
		return err
	}
	s.ctl.SetDiscovering(on)
	return nil
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "enable", "1":
		return true, nil
	case "off", "disable", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}

var errBadTarget = errors.New("invalid target")

// ParseTarget parses a target id: "dh", a hex id with 0x prefix, or a
// decimal id.
func ParseTarget(s string) (wire.TargetID, error) {
	if strings.EqualFold(s, "dh") || strings.EqualFold(s, "host") {
		return wire.DeviceHost, nil
	}
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errBadTarget, s)
	}
	return wire.TargetID(v), nil
}

// handleEvent displays engine events.
func (s *Shell) handleEvent(ev engine.Event) {
	switch ev.Type {
	case engine.EventRegistered, engine.EventRemainingSize:
		return
	}
	line := fmt.Sprintf("[EVENT] %s target=0x%02x status=%s", ev.Type, uint8(ev.Target), ev.Status)
	if ev.Err != nil {
		line += " error=" + ev.Err.Error()
	}
	if ev.Partial {
		line += " (partial)"
	}
	fmt.Fprintln(s.out, line)
}
