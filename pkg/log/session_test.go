package log

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionGeneratesUUID(t *testing.T) {
	s := NewSession("", &mockLogger{})
	_, err := uuid.Parse(s.ID())
	assert.NoError(t, err)

	s = NewSession("fixed", &mockLogger{})
	assert.Equal(t, "fixed", s.ID())
}

func TestSessionStampsEvents(t *testing.T) {
	rec := &mockLogger{}
	s := NewSession("s-1", rec)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	s.Response(LayerRouting, nil, ResponseEvent{Opcode: OpSetRouting, Status: 0})

	require.Len(t, rec.events, 1)
	ev := rec.events[0]
	assert.Equal(t, "s-1", ev.SessionID)
	assert.Equal(t, fixed, ev.Timestamp)
	assert.Equal(t, CategoryResponse, ev.Category)
	assert.Equal(t, DirectionIn, ev.Direction)
	require.NotNil(t, ev.Response)
}

func TestSessionCommandTruncates(t *testing.T) {
	rec := &mockLogger{}
	s := NewSession("s-1", rec)
	data := make([]byte, MaxTraceData+10)

	s.Command(LayerRouting, TargetRef(1), CommandEvent{Opcode: OpSetRouting, Data: data})

	require.Len(t, rec.events, 1)
	cmd := rec.events[0].Command
	require.NotNil(t, cmd)
	assert.True(t, cmd.Truncated)
	assert.Len(t, cmd.Data, MaxTraceData)
	assert.Equal(t, MaxTraceData+10, cmd.Size)
}

func TestSessionDropsNoopTransitions(t *testing.T) {
	rec := &mockLogger{}
	s := NewSession("s-1", rec)

	s.State(LayerDiscovery, nil, StateChangeEvent{Entity: StateEntityDiscovery, OldState: "INIT", NewState: "INIT"})
	s.Error(LayerRouting, nil, "commit", nil)
	assert.Empty(t, rec.events)

	s.Error(LayerRouting, nil, "commit", errors.New("boom"))
	require.Len(t, rec.events, 1)
	assert.Equal(t, "boom", rec.events[0].Error.Message)
}

func TestNilSessionIsDisabled(t *testing.T) {
	var s *Session
	assert.False(t, s.Enabled())
	s.Log(Event{})

	s = NewSession("", nil)
	assert.False(t, s.Enabled())
	s.Command(LayerRouting, nil, CommandEvent{})
}
