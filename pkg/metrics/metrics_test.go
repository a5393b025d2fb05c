package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmrt-project/lmrt-go/internal/nfcctest"
	"github.com/lmrt-project/lmrt-go/pkg/engine"
	"github.com/lmrt-project/lmrt-go/pkg/wire"
)

func TestRecorderCounters(t *testing.T) {
	r := NewRecorder(nil, nil)

	r.CommandSent(10)
	r.CommandSent(32)
	r.CommitPass()
	r.RequestRejected(wire.StatusBufferFull)
	r.RequestRejected(wire.StatusBufferFull)
	r.RequestRejected(wire.StatusTimeout)
	r.ActiveTargets(3)
	r.TableSize(96)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.commands))
	assert.Equal(t, 42.0, testutil.ToFloat64(r.commandBytes))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.commitPasses))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.rejections.WithLabelValues("BUFFER_FULL")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.rejections.WithLabelValues("TIMEOUT")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.activeTargets))
	assert.Equal(t, 96.0, testutil.ToFloat64(r.tableSize))
}

func TestRecorderGaugesOverwrite(t *testing.T) {
	r := NewRecorder(nil, nil)
	r.TableSize(100)
	r.TableSize(12)
	r.ActiveTargets(2)
	r.ActiveTargets(0)

	assert.Equal(t, 12.0, testutil.ToFloat64(r.tableSize))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.activeTargets))
}

func TestRecorderExposition(t *testing.T) {
	r := NewRecorder(nil, prometheus.Labels{"controller": "sim"})
	r.CommitPass()

	expected := `
# HELP lmrt_commit_passes_total Routing table commit passes started.
# TYPE lmrt_commit_passes_total counter
lmrt_commit_passes_total{controller="sim"} 1
`
	err := testutil.GatherAndCompare(r.Registry(), strings.NewReader(expected), "lmrt_commit_passes_total")
	assert.NoError(t, err)
}

func TestRecorderSharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg, nil)
	assert.Same(t, reg, r.Registry())

	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	// Only the unlabeled series exist before a rejection is recorded.
	assert.Equal(t, 5, count)

	assert.Panics(t, func() { NewRecorder(reg, nil) })
}

func TestRecorderHandler(t *testing.T) {
	r := NewRecorder(nil, nil)
	r.CommandSent(8)

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "lmrt_routing_command_bytes_total 8")
}

func TestRecorderWiredToEngine(t *testing.T) {
	r := NewRecorder(nil, nil)
	h := nfcctest.NewHarness(t, nfcctest.Capacity{TableSize: 720, Payload: wire.MaxRoutingTLVSize}, func(cfg *engine.Config) {
		cfg.Metrics = r
	})
	h.Enable(t)

	require.NoError(t, h.Engine.AddAID(wire.DeviceHost, []byte{0xA0, 0x00, 0x01}, wire.PowerSwitchOn, 0))
	require.True(t, h.Commit())
	h.AckRouting(wire.NCIStatusOK)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.commitPasses))
	assert.Positive(t, testutil.ToFloat64(r.commands))
	assert.Positive(t, testutil.ToFloat64(r.tableSize))
}
