// Package nfcctest provides in-memory fakes of the engine's collaborators
// for tests: a recording transport, a manual timer, fixed capacity, a
// failing allocator and an event recorder.
package nfcctest
