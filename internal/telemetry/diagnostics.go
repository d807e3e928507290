// internal/telemetry/diagnostics.go
package telemetry

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// maxRecordLen bounds how much of a rejected record is copied into logs.
const maxRecordLen = 256

// Diagnostics is the structured channel for records dropped by validation.
// Each drop is logged at warn level, counted in Prometheus and attached to
// the active span.
type Diagnostics struct {
	log     zerolog.Logger
	metrics *Metrics
}

func NewDiagnostics(log zerolog.Logger, metrics *Metrics) *Diagnostics {
	return &Diagnostics{
		log:     log.With().Str("component", "diagnostics").Logger(),
		metrics: metrics,
	}
}

// Dropped reports one discarded record.
func (d *Diagnostics) Dropped(ctx context.Context, source, reason, record string) {
	if len(record) > maxRecordLen {
		record = record[:maxRecordLen] + "..."
	}

	d.log.Warn().
		Str("source", source).
		Str("reason", reason).
		Str("record", record).
		Msg("record dropped")

	if d.metrics != nil {
		d.metrics.DroppedCounter(source, reason).Inc()
	}

	trace.SpanFromContext(ctx).AddEvent("record.dropped", trace.WithAttributes(
		attribute.String("drop.source", source),
		attribute.String("drop.reason", reason),
	))
}
