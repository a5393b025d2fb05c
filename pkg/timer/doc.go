// Package timer runs the engine's one-shot timers on the Go runtime.
//
// Manager implements engine.Timer with time.AfterFunc. Expiry is reported
// through the OnExpiry callback, which runs on the timer's goroutine and
// outside the manager's lock. The callback is expected to post the token
// to whatever goroutine owns the engine.
//
// Each Start bumps a per-token generation. A timer that fires after it was
// stopped or restarted finds a newer generation and is dropped, so a stale
// expiry never reaches the callback.
package timer
