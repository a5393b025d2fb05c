// Package engine drives the listen mode routing table of an NFC
// controller.
//
// An Engine owns the ECB table for the device host and every discovered
// execution environment (NFCEE). Configuration requests mutate the table
// and arm a debounce timer; when it fires the engine serializes the table
// into routing commands and hands them to a Transport.
//
// # Concurrency
//
// The engine is single-threaded. Requests, controller responses,
// notifications and timer expiries must be delivered from one goroutine;
// pkg/service provides a mailbox that does this.
//
// # Commit Pass
//
// A commit pass queries controller capacity, resolves technology
// conflicts, and emits entries category by category in the configured
// routing order, Active EEs first and the device host last. The final
// command always goes out with the more flag clear, even when empty, so
// the controller replaces its table atomically.
//
// # Discovery
//
// Enable enumerates NFCEEs (INIT), then reports EnableComplete
// (INIT_DONE). EnterPowerRecovery rediscovers every NFCEE (RESTORING),
// re-applies mode and connection state, drops targets that did not
// reappear, and re-commits the table.
//
// # Events
//
// Every request returns an error and also reports its result to observers
// as an Event carrying a wire.Status.
package engine
