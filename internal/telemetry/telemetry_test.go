package telemetry

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_UnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "loud", "json")

	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())
	log.Debug().Msg("hidden")
	log.Info().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"message":"shown"`)
}

func TestNewLogger_ParsesLevel(t *testing.T) {
	log := newLogger(&bytes.Buffer{}, " DEBUG ", "console")
	assert.Equal(t, zerolog.DebugLevel, log.GetLevel())
}

func TestDiagnosticsDropped(t *testing.T) {
	var buf bytes.Buffer
	m := NewMetrics()
	d := NewDiagnostics(zerolog.New(&buf), m)

	d.Dropped(context.Background(), "cart", "invalid_quantity", strings.Repeat("x", 1000))
	d.Dropped(context.Background(), "cart", "invalid_quantity", "{}")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.DroppedCounter("cart", "invalid_quantity")))
	assert.Contains(t, buf.String(), `"reason":"invalid_quantity"`)
	assert.Less(t, len(strings.Split(buf.String(), "\n")[0]), 512, "record should be truncated")
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics()
	done := m.TrackInFlight()
	m.ObserveHTTP(http.MethodGet, "/cart", http.StatusOK, 5*time.Millisecond)
	done()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `gamershop_http_requests_total{method="GET",route="/cart",status="200"} 1`)
}

func TestSetupTracingWithoutEndpointIsNoop(t *testing.T) {
	shutdown, err := SetupTracing(context.Background(), "gamershop", "", false)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
