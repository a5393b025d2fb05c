// Package service runs an engine.Engine on its own goroutine.
//
// The engine is single-threaded. Service serializes every access through
// a mailbox: API calls, controller responses and notifications, and timer
// expiries are all posted as closures and executed in order by one
// goroutine.
//
// # Usage
//
//	svc := service.New(transport, capacity, service.DefaultConfig(), engine.DefaultConfig())
//	svc.OnEvent(func(ev engine.Event) { ... })
//	if err := svc.Start(ctx); err != nil { ... }
//	defer svc.Stop()
//
//	err := svc.Do(ctx, func(e *engine.Engine) error {
//		return e.AddAID(0x10, aid, wire.PowerSwitchOn, 0)
//	})
//
// Controller responses arrive on other goroutines and are delivered with
// Post:
//
//	svc.Post(func(e *engine.Engine) { e.HandleRoutingResponse(status) })
//
// # Events
//
// Engine events are queued by the engine goroutine and delivered to
// handlers by a separate dispatch goroutine, in the order the engine
// produced them. Handlers may call Do; they run outside the engine
// goroutine.
package service
