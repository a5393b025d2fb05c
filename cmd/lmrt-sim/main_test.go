package main

import (
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmrt-project/lmrt-go/pkg/metrics"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", 0, true},
	}
	for _, tt := range tests {
		got, err := parseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidateConfig(t *testing.T) {
	saved := cfg
	t.Cleanup(func() { cfg = saved })

	cfg = Config{LogLevel: "info", TraceFile: "sim.lmrtlog"}
	assert.NoError(t, validateConfig())

	cfg = Config{LogLevel: "info", TraceFile: "sim.log"}
	assert.Error(t, validateConfig())

	cfg = Config{LogLevel: "loud"}
	assert.Error(t, validateConfig())
}

func TestDefaultProfileIsValid(t *testing.T) {
	p := defaultProfile()
	require.NoError(t, p.Validate())
	_, err := p.EngineConfig()
	assert.NoError(t, err)
}

func TestMetricsMux(t *testing.T) {
	rec := metrics.NewRecorder(nil, nil)
	rec.CommitPass()

	rr := httptest.NewRecorder()
	metricsMux(rec).ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 200, rr.Code)
	assert.Contains(t, rr.Body.String(), "lmrt_commit_passes_total 1")

	rr = httptest.NewRecorder()
	metricsMux(rec).ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, 404, rr.Code)
}
