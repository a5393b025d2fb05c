package engine

import (
	"log/slog"

	"github.com/lmrt-project/lmrt-go/pkg/lmrt"
	"github.com/lmrt-project/lmrt-go/pkg/log"
	"github.com/lmrt-project/lmrt-go/pkg/wire"
)

// DiscoveryState is the state of the NFCEE discovery state machine.
type DiscoveryState uint8

const (
	StateDisabled DiscoveryState = iota
	StateInit
	StateInitDone
	StateRestoring
)

// String returns the state name.
func (s DiscoveryState) String() string {
	switch s {
	case StateDisabled:
		return "DISABLED"
	case StateInit:
		return "INIT"
	case StateInitDone:
		return "INIT_DONE"
	case StateRestoring:
		return "RESTORING"
	default:
		return "UNKNOWN"
	}
}

// cfgStatus tracks pending routing work.
type cfgStatus uint8

const (
	stsChangedRouting cfgStatus = 1 << iota
	stsUpdateNow
	stsPrevRouting
)

// waitFlags track an explicit update awaiting completion.
type waitFlags uint8

const (
	waitUpdate waitFlags = 1 << iota
	waitUpdateRsp
)

type observerEntry struct {
	id  ObserverID
	obs Observer
}

// Engine owns the ECB table and drives routing commits, discovery and
// connections. It is not safe for concurrent use; every call, including
// Handle* and HandleTimeout, must be serialized by the caller.
type Engine struct {
	cfg       Config
	transport Transport
	timer     Timer
	capacity  Capacity
	logger    *slog.Logger
	trace     *log.Session

	table   *lmrt.Table
	builder *lmrt.Builder
	limits  lmrt.Limits

	state           DiscoveryState
	active          bool
	expected        int
	discoverPending bool

	sts          cfgStatus
	wait         waitFlags
	waitRsp      int
	routingArmed bool
	offRouting   bool

	modeSets map[wire.TargetID]bool

	observers []observerEntry
	nextObs   ObserverID
}

// New creates an engine. The engine holds no configuration until Enable
// completes discovery.
func New(transport Transport, timer Timer, capacity Capacity, cfg Config) *Engine {
	cfg.applyDefaults()
	t := lmrt.NewTable(cfg.MaxEE)
	e := &Engine{
		cfg:       cfg,
		transport: transport,
		timer:     timer,
		capacity:  capacity,
		logger:    cfg.Logger,
		trace:     log.NewSession(cfg.SessionID, cfg.ProtocolLogger),
		table:     t,
		builder:   lmrt.NewBuilder(t, cfg.Capabilities),
		modeSets:  make(map[wire.TargetID]bool),
	}
	e.refreshLimits()
	return e
}

// SessionID returns the identifier stamped on trace events.
func (e *Engine) SessionID() string {
	return e.trace.ID()
}

// State returns the discovery state.
func (e *Engine) State() DiscoveryState {
	return e.state
}

// Active reports whether the system is active.
func (e *Engine) Active() bool {
	return e.active
}

// Limits returns the arena limits derived from the last capacity query.
func (e *Engine) Limits() lmrt.Limits {
	return e.limits
}

// Register adds an observer. The new observer receives a Registered event
// and the current discover-request state.
func (e *Engine) Register(obs Observer) (ObserverID, error) {
	if obs == nil {
		return 0, ErrInvalidParam
	}
	if len(e.observers) >= e.cfg.MaxObservers {
		return 0, ErrObserverLimit
	}
	e.nextObs++
	id := e.nextObs
	e.observers = append(e.observers, observerEntry{id: id, obs: obs})
	e.refreshLimits()

	obs.HandleEvent(Event{Type: EventRegistered, Status: wire.StatusOK})
	if targets := e.discoverRequestTargets(); len(targets) > 0 {
		obs.HandleEvent(Event{Type: EventDiscoverRequest, Status: wire.StatusOK, Targets: targets})
	}
	return id, nil
}

// Deregister removes an observer. It receives a final Deregistered event.
func (e *Engine) Deregister(id ObserverID) error {
	for i, o := range e.observers {
		if o.id == id {
			e.observers = append(e.observers[:i], e.observers[i+1:]...)
			o.obs.HandleEvent(Event{Type: EventDeregistered, Status: wire.StatusOK})
			return nil
		}
	}
	return ErrInvalidParam
}

// SetActive marks the system active or inactive. Becoming active arms the
// routing timer when work is pending and delivers deferred NewEE events.
func (e *Engine) SetActive(active bool) {
	if e.active == active {
		return
	}
	e.active = active
	e.debugLog("engine: active changed", "active", active)
	if !active {
		return
	}
	if e.needRecommit() {
		e.startRoutingTimer()
	}
	for _, ecb := range e.table.EEs() {
		if ecb.Flags&lmrt.FlagNotifyPending == 0 {
			continue
		}
		ecb.Flags &^= lmrt.FlagNotifyPending
		if ecb.Status != lmrt.StatusRemoved {
			info := targetInfo(ecb)
			e.report(Event{Type: EventNewEE, Status: wire.StatusOK, Target: ecb.ID, Info: &info})
		}
	}
}

// HandleTimeout delivers a timer expiry.
func (e *Engine) HandleTimeout(token TimerToken) {
	switch token {
	case TokenRouting:
		if !e.routingArmed {
			return
		}
		e.routingArmed = false
		if err := e.routeTimeout(); err != nil {
			e.warnLog("engine: commit pass failed", "error", err)
		}
	case TokenDiscovery:
		e.trace.Notification(log.LayerDiscovery, nil, log.NotificationEvent{Type: log.NotifyTimeout, Detail: e.state.String()})
		e.discoveryTimeout()
	default:
		e.debugLog("engine: unknown timer token", "token", token)
	}
}

func (e *Engine) refreshLimits() {
	size := 0
	if e.capacity != nil {
		size = e.capacity.MaxTableSize()
	}
	e.limits = lmrt.NewLimits(size, e.cfg.DynamicAIDSizing)
}

func (e *Engine) startRoutingTimer() {
	if !e.active || e.routingArmed || e.state != StateInitDone {
		return
	}
	e.routingArmed = true
	e.timer.Start(e.cfg.Debounce, TokenRouting)
}

func (e *Engine) stopRoutingTimer() {
	if !e.routingArmed {
		return
	}
	e.routingArmed = false
	e.timer.Stop(TokenRouting)
}

// report delivers ev to every observer in registration order.
func (e *Engine) report(ev Event) {
	if ev.Err != nil || !ev.Status.IsOK() {
		e.cfg.Metrics.RequestRejected(ev.Status)
	}
	observers := append([]observerEntry(nil), e.observers...)
	for _, o := range observers {
		o.obs.HandleEvent(ev)
	}
}

// result reports the outcome of a request and returns err unchanged.
func (e *Engine) result(typ EventType, target wire.TargetID, err error) error {
	e.report(Event{Type: typ, Status: StatusOf(err), Target: target, Err: err})
	if StatusOf(err) == wire.StatusBufferFull {
		e.report(Event{Type: EventBufferFull, Status: wire.StatusBufferFull, Target: target, Err: err})
	}
	return err
}

func (e *Engine) setState(s DiscoveryState, reason string) {
	if e.state == s {
		return
	}
	e.trace.State(log.LayerDiscovery, nil, log.StateChangeEvent{
		Entity:   log.StateEntityDiscovery,
		OldState: e.state.String(),
		NewState: s.String(),
		Reason:   reason,
	})
	e.debugLog("engine: discovery state", "from", e.state, "to", s, "reason", reason)
	e.state = s
}

func (e *Engine) setStatus(ecb *lmrt.ECB, s lmrt.Status, reason string) {
	if ecb.Status == s {
		return
	}
	e.trace.State(log.LayerDiscovery, log.TargetRef(uint8(ecb.ID)), log.StateChangeEvent{
		Entity:   log.StateEntityTarget,
		OldState: ecb.Status.String(),
		NewState: s.String(),
		Reason:   reason,
	})
	ecb.Status = s
}

func (e *Engine) debugLog(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}

func (e *Engine) warnLog(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Warn(msg, args...)
	}
}
