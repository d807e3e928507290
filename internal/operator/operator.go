// internal/operator/operator.go

// Package operator holds the storefront use cases. Each operation calls
// one abstractor operation and writes the result into its store. Calls on
// the same operator are serialised, so the store always reflects the
// outcome of the last completed call.
package operator

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const (
	entityCart  = "cart"
	entityGames = "games"
	entityFlags = "flags"
)

func newCallCounter() metric.Int64Counter {
	counter, err := otel.Meter("gamershop/operator").Int64Counter(
		"gamershop.operator.calls",
		metric.WithDescription("Operator calls by entity, operation and outcome"),
	)
	if err != nil {
		otel.Handle(err)
		return noop.Int64Counter{}
	}
	return counter
}

func recordCall(ctx context.Context, counter metric.Int64Counter, entity, op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	counter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entity", entity),
		attribute.String("operation", op),
		attribute.String("outcome", outcome),
	))
}
