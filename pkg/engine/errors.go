package engine

import (
	"errors"

	"github.com/lmrt-project/lmrt-go/pkg/lmrt"
	"github.com/lmrt-project/lmrt-go/pkg/wire"
)

// Engine errors.
var (
	ErrBufferFull    = errors.New("routing table capacity exceeded")
	ErrSemantic      = errors.New("request conflicts with current state")
	ErrInvalidParam  = errors.New("invalid parameter")
	ErrNoMemory      = errors.New("buffer allocation failed")
	ErrTransport     = errors.New("transport failure")
	ErrUnknownTarget = errors.New("unknown target")
	ErrNotConnected  = errors.New("target not connected")
	ErrObserverLimit = errors.New("too many observers")
)

// StatusOf maps an engine error to the status reported in events.
func StatusOf(err error) wire.Status {
	switch {
	case err == nil:
		return wire.StatusOK
	case errors.Is(err, ErrBufferFull):
		return wire.StatusBufferFull
	case errors.Is(err, ErrSemantic):
		return wire.StatusSemanticError
	case errors.Is(err, ErrInvalidParam), errors.Is(err, ErrUnknownTarget),
		errors.Is(err, ErrNotConnected), errors.Is(err, ErrObserverLimit):
		return wire.StatusInvalidParam
	case errors.Is(err, ErrNoMemory):
		return wire.StatusNoMemory
	case errors.Is(err, ErrTransport):
		return wire.StatusTransportFailure
	case errors.Is(err, lmrt.ErrTableFull):
		return wire.StatusBufferFull
	default:
		return wire.StatusFailed
	}
}
