package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/lmrt-project/lmrt-go/pkg/engine"
	"github.com/lmrt-project/lmrt-go/pkg/timer"
)

// EventHandler receives engine events on the dispatch goroutine.
type EventHandler func(ev engine.Event)

// Service owns an engine and the goroutine it runs on.
type Service struct {
	mu     sync.Mutex
	state  ServiceState
	config Config
	logger *slog.Logger

	engine *engine.Engine
	timers *timer.Manager

	mailbox chan func(*engine.Engine)
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	dispatch *dispatcher
}

// New creates a service around a new engine. The engine's timer is a
// timer.Manager whose expiries are posted to the mailbox.
func New(transport engine.Transport, capacity engine.Capacity, cfg Config, engCfg engine.Config) *Service {
	if cfg.MailboxSize <= 0 {
		cfg.MailboxSize = DefaultConfig().MailboxSize
	}
	s := &Service{
		config:   cfg,
		logger:   cfg.Logger,
		timers:   timer.NewManager(),
		mailbox:  make(chan func(*engine.Engine), cfg.MailboxSize),
		dispatch: newDispatcher(),
	}
	s.engine = engine.New(transport, s.timers, capacity, engCfg)
	s.timers.OnExpiry(s.handleExpiry)
	if _, err := s.engine.Register(s.dispatch); err != nil {
		s.debugLog("service: observer registration failed", "error", err)
	}
	return s
}

// Start launches the engine and dispatch goroutines.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateIdle {
		return ErrAlreadyStarted
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(2)
	go s.run()
	go func() {
		defer s.wg.Done()
		s.dispatch.run(s.ctx)
	}()
	s.state = StateRunning
	s.debugLog("service: started", "session", s.engine.SessionID())
	return nil
}

// Stop stops the goroutines and every pending timer. Queued work that has
// not run yet is discarded.
func (s *Service) Stop() error {
	s.mu.Lock()
	if s.state != StateRunning {
		s.mu.Unlock()
		return ErrNotStarted
	}
	s.state = StateStopping
	s.mu.Unlock()

	s.timers.StopAll()
	s.cancel()
	s.wg.Wait()

	s.mu.Lock()
	s.state = StateStopped
	s.mu.Unlock()
	s.debugLog("service: stopped")
	return nil
}

// State returns the service state.
func (s *Service) State() ServiceState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SessionID returns the engine's trace session.
func (s *Service) SessionID() string {
	return s.engine.SessionID()
}

// OnEvent adds an event handler.
func (s *Service) OnEvent(h EventHandler) {
	s.dispatch.add(h)
}

// Do runs fn on the engine goroutine and waits for its result.
func (s *Service) Do(ctx context.Context, fn func(e *engine.Engine) error) error {
	done := make(chan error, 1)
	if err := s.post(ctx, func(e *engine.Engine) { done <- fn(e) }); err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ctx.Done():
		return ErrNotStarted
	}
}

// Post queues fn for the engine goroutine without waiting for it to run.
// It blocks while the mailbox is full, so it must not be called from the
// engine goroutine itself.
func (s *Service) Post(fn func(e *engine.Engine)) error {
	return s.post(context.Background(), fn)
}

// Snapshot returns the current engine snapshot.
func (s *Service) Snapshot(ctx context.Context) (engine.Snapshot, error) {
	var snap engine.Snapshot
	err := s.Do(ctx, func(e *engine.Engine) error {
		snap = e.Snapshot()
		return nil
	})
	return snap, err
}

func (s *Service) post(ctx context.Context, fn func(*engine.Engine)) error {
	s.mu.Lock()
	running := s.state == StateRunning
	svcCtx := s.ctx
	s.mu.Unlock()
	if !running {
		return ErrNotStarted
	}

	select {
	case s.mailbox <- fn:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-svcCtx.Done():
		return ErrNotStarted
	}
}

func (s *Service) run() {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			return
		case fn := <-s.mailbox:
			fn(s.engine)
		}
	}
}

func (s *Service) handleExpiry(token engine.TimerToken) {
	if err := s.Post(func(e *engine.Engine) { e.HandleTimeout(token) }); err != nil {
		s.debugLog("service: dropped timer expiry", "token", token, "error", err)
	}
}

func (s *Service) debugLog(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
