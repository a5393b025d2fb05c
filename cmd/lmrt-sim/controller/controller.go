// Package controller simulates an NFC controller for lmrt-sim.
//
// Commands from the engine are answered asynchronously: every reply is
// queued and posted back to the engine goroutine after the configured
// latency, in the order the commands were sent.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lmrt-project/lmrt-go/pkg/engine"
	"github.com/lmrt-project/lmrt-go/pkg/wire"
)

// ErrNotAttached is returned when a command arrives before Attach.
var ErrNotAttached = errors.New("controller not attached")

// Poster queues work for the engine goroutine.
type Poster interface {
	Post(fn func(e *engine.Engine)) error
}

// Config describes the simulated controller.
type Config struct {
	TableSize  int
	MaxPayload int
	Latency    time.Duration

	// RejectRouting answers every routing command with a failure.
	RejectRouting bool

	// EEs are reported at every discovery.
	EEs []engine.DiscoverNotification

	// Logger is the optional logger. If nil, logging is disabled.
	Logger *slog.Logger
}

type reply struct {
	name string
	fn   func(e *engine.Engine)
}

// Controller implements engine.Transport, engine.Capacity and
// engine.RFState.
type Controller struct {
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	poster  Poster
	queue   []reply
	pending []wire.Entry
	table   []wire.Entry
	updates int
	conns   map[uint8]wire.TargetID
	connSeq uint8
	active  map[wire.TargetID]bool

	wake        chan struct{}
	discovering atomic.Bool
}

var (
	_ engine.Transport = (*Controller)(nil)
	_ engine.Capacity  = (*Controller)(nil)
	_ engine.RFState   = (*Controller)(nil)
)

// New creates a controller.
func New(cfg Config) *Controller {
	return &Controller{
		cfg:    cfg,
		logger: cfg.Logger,
		conns:  make(map[uint8]wire.TargetID),
		active: make(map[wire.TargetID]bool),
		wake:   make(chan struct{}, 1),
	}
}

// Attach sets the poster replies are delivered through.
func (c *Controller) Attach(p Poster) {
	c.mu.Lock()
	c.poster = p
	c.mu.Unlock()
}

// Run delivers queued replies until ctx is done.
func (c *Controller) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.wake:
		}

		for {
			c.mu.Lock()
			if len(c.queue) == 0 {
				c.mu.Unlock()
				break
			}
			r := c.queue[0]
			c.queue = c.queue[1:]
			poster := c.poster
			c.mu.Unlock()

			if c.cfg.Latency > 0 {
				select {
				case <-ctx.Done():
					return
				case <-time.After(c.cfg.Latency):
				}
			}
			if err := poster.Post(r.fn); err != nil {
				c.debugLog("controller: reply dropped", "reply", r.name, "error", err)
			}
		}
	}
}

func (c *Controller) reply(name string, fn func(e *engine.Engine)) error {
	c.mu.Lock()
	if c.poster == nil {
		c.mu.Unlock()
		return ErrNotAttached
	}
	c.queue = append(c.queue, reply{name: name, fn: fn})
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
	return nil
}

// SendSetRouting implements engine.Transport.
func (c *Controller) SendSetRouting(cmd wire.SetRoutingCommand) error {
	entries, err := wire.ParseEntries(cmd.Entries)
	if err != nil {
		return err
	}
	if len(entries) != int(cmd.Count) {
		return fmt.Errorf("%w: count %d, found %d", wire.ErrMalformedEntry, cmd.Count, len(entries))
	}

	c.mu.Lock()
	c.pending = append(c.pending, entries...)
	if !cmd.More {
		c.table = c.pending
		c.pending = nil
		c.updates++
	}
	c.mu.Unlock()

	for _, e := range entries {
		c.debugLog("controller: routing entry", "entry", e.String())
	}

	status := wire.NCIStatusOK
	if c.cfg.RejectRouting {
		status = wire.NCIStatusRejected
	}
	return c.reply("set-routing", func(e *engine.Engine) { e.HandleRoutingResponse(status) })
}

// DeactivateToIdle implements engine.Transport.
func (c *Controller) DeactivateToIdle() error {
	c.discovering.Store(false)
	c.debugLog("controller: RF deactivated to idle")
	return nil
}

// Discover implements engine.Transport.
func (c *Controller) Discover(enable bool) error {
	if !enable {
		c.mu.Lock()
		clear(c.active)
		clear(c.conns)
		c.mu.Unlock()
		return nil
	}

	ees := c.cfg.EEs
	if err := c.reply("discover", func(e *engine.Engine) {
		e.HandleDiscoverResponse(wire.NCIStatusOK, len(ees))
	}); err != nil {
		return err
	}
	for _, n := range ees {
		if err := c.reply("discover-ntf", func(e *engine.Engine) { e.HandleDiscoverNotification(n) }); err != nil {
			return err
		}
	}
	return nil
}

// ModeSet implements engine.Transport.
func (c *Controller) ModeSet(id wire.TargetID, enable bool) error {
	status := wire.NCIStatusRejected
	if c.known(id) {
		status = wire.NCIStatusOK
		c.mu.Lock()
		c.active[id] = enable
		c.mu.Unlock()
	}
	return c.reply("mode-set", func(e *engine.Engine) { e.HandleModeSetResponse(id, status) })
}

// ConnCreate implements engine.Transport.
func (c *Controller) ConnCreate(id wire.TargetID, iface wire.Interface) error {
	c.mu.Lock()
	c.connSeq++
	connID := c.connSeq
	c.conns[connID] = id
	c.mu.Unlock()

	c.debugLog("controller: connection created", "target", id, "interface", iface, "conn", connID)
	return c.reply("conn-create", func(e *engine.Engine) { e.HandleConnCreated(id, connID, wire.NCIStatusOK) })
}

// ConnClose implements engine.Transport.
func (c *Controller) ConnClose(connID uint8) error {
	c.mu.Lock()
	delete(c.conns, connID)
	c.mu.Unlock()
	return c.reply("conn-close", func(e *engine.Engine) { e.HandleConnClosed(connID) })
}

// SendData implements engine.Transport. The simulated NFCEE answers every
// APDU with status word 9000.
func (c *Controller) SendData(connID uint8, data []byte) error {
	c.mu.Lock()
	_, ok := c.conns[connID]
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown connection %d", connID)
	}
	return c.reply("data", func(e *engine.Engine) { e.HandleData(connID, []byte{0x90, 0x00}) })
}

// MaxTableSize implements engine.Capacity.
func (c *Controller) MaxTableSize() int { return c.cfg.TableSize }

// MaxCommandPayload implements engine.Capacity.
func (c *Controller) MaxCommandPayload() int { return c.cfg.MaxPayload }

// Discovering implements engine.RFState.
func (c *Controller) Discovering() bool { return c.discovering.Load() }

// SetDiscovering sets the RF discovery state.
func (c *Controller) SetDiscovering(on bool) { c.discovering.Store(on) }

// Table returns the last complete routing table received.
func (c *Controller) Table() []wire.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]wire.Entry(nil), c.table...)
}

// Updates returns the number of complete routing table updates received.
func (c *Controller) Updates() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updates
}

// Active reports whether the controller has enabled the NFCEE.
func (c *Controller) Active(id wire.TargetID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active[id]
}

func (c *Controller) known(id wire.TargetID) bool {
	for _, n := range c.cfg.EEs {
		if n.ID == id && n.Status != wire.EEStatusRemoved {
			return true
		}
	}
	return false
}

func (c *Controller) debugLog(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
