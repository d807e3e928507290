// internal/operator/flags.go
package operator

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric"

	"gamershop/internal/store"
)

// FlagsOperator toggles feature flags at runtime. It performs no I/O.
type FlagsOperator struct {
	store *store.FlagsStore
	log   zerolog.Logger
	calls metric.Int64Counter
}

func NewFlagsOperator(s *store.FlagsStore, log zerolog.Logger) *FlagsOperator {
	return &FlagsOperator{
		store: s,
		log:   log.With().Str("component", "flags_operator").Logger(),
		calls: newCallCounter(),
	}
}

func (o *FlagsOperator) SetCartUseDrawer(ctx context.Context, useDrawer bool) {
	o.store.SetCartUseDrawer(useDrawer)
	recordCall(ctx, o.calls, entityFlags, "set_cart_use_drawer", nil)
	o.log.Info().Bool("use_drawer", useDrawer).Msg("cart flag updated")
}

// SetCartFlag replaces the cart flag. An empty description keeps the
// current one.
func (o *FlagsOperator) SetCartFlag(ctx context.Context, useDrawer bool, description string) {
	o.store.SetCartFlag(useDrawer, description)
	recordCall(ctx, o.calls, entityFlags, "set_cart_flag", nil)
	o.log.Info().Bool("use_drawer", useDrawer).Msg("cart flag updated")
}

func (o *FlagsOperator) Reset(ctx context.Context) {
	o.store.Reset()
	recordCall(ctx, o.calls, entityFlags, "reset", nil)
	o.log.Info().Msg("feature flags reset")
}
