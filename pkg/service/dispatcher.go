package service

import (
	"context"
	"sync"

	"github.com/lmrt-project/lmrt-go/pkg/engine"
)

// dispatcher queues engine events and delivers them in order on its own
// goroutine. HandleEvent never blocks the engine.
type dispatcher struct {
	mu       sync.Mutex
	queue    []engine.Event
	handlers []EventHandler
	wake     chan struct{}
}

func newDispatcher() *dispatcher {
	return &dispatcher{wake: make(chan struct{}, 1)}
}

// HandleEvent implements engine.Observer.
func (d *dispatcher) HandleEvent(ev engine.Event) {
	d.mu.Lock()
	d.queue = append(d.queue, ev)
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *dispatcher) add(h EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = append(d.handlers, h)
}

func (d *dispatcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.wake:
		}

		for {
			d.mu.Lock()
			if len(d.queue) == 0 {
				d.mu.Unlock()
				break
			}
			batch := d.queue
			d.queue = nil
			handlers := append([]EventHandler(nil), d.handlers...)
			d.mu.Unlock()

			for _, ev := range batch {
				for _, h := range handlers {
					h(ev)
				}
			}
		}
	}
}

var _ engine.Observer = (*dispatcher)(nil)
