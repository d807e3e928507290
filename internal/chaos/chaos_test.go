package chaos

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamershop/internal/app"
	"gamershop/internal/catalog"
	"gamershop/internal/config"
	"gamershop/internal/storage"
)

func TestEngineRunsPhasesInOrder(t *testing.T) {
	var phases []string
	value := 1.0

	exp := Experiment{
		Name: "toggle",
		SteadyState: []Probe{{
			Name:      "value",
			Query:     func(context.Context) (float64, error) { return value, nil },
			Threshold: Threshold{Operator: ">=", Value: 1},
		}},
		Method: []Action{{Name: "inject", Execute: func(context.Context) error {
			phases = append(phases, "inject")
			value = 0
			return nil
		}}},
		Rollback: []Action{{Name: "rollback", Execute: func(context.Context) error {
			phases = append(phases, "rollback")
			value = 1
			return nil
		}}},
		Validation: []Assertion{{Probe: "value", Condition: func(v float64) bool { return v == 1 }, Message: "value restored"}},
	}

	e := NewEngine(zerolog.Nop())
	result, err := e.Run(context.Background(), exp)
	require.NoError(t, err)

	assert.Equal(t, []string{"inject", "rollback"}, phases)
	assert.True(t, result.SteadyStateValid)
	assert.False(t, result.HypothesisHeld, "the only observation was taken during the fault")
	assert.Equal(t, []string{"value restored"}, result.FailedAssertions)
	require.Len(t, result.Violations, 1)
	assert.Equal(t, 0.0, result.Violations[0].Actual)
	assert.Len(t, e.Results(), 1)
}

func TestEngineAbortsOnInvalidSteadyState(t *testing.T) {
	injected := false
	exp := Experiment{
		Name: "broken",
		SteadyState: []Probe{{
			Name:      "down",
			Query:     func(context.Context) (float64, error) { return 0, errors.New("no data") },
			Threshold: Threshold{Operator: ">", Value: 0},
		}},
		Method: []Action{{Execute: func(context.Context) error { injected = true; return nil }}},
	}

	result, err := NewEngine(zerolog.Nop()).Run(context.Background(), exp)
	assert.ErrorIs(t, err, ErrSteadyStateInvalid)
	assert.False(t, injected)
	assert.False(t, result.SteadyStateValid)
}

func TestEngineRecordsActionErrors(t *testing.T) {
	exp := Experiment{
		Name:     "failing-action",
		Method:   []Action{{Target: "db", Execute: func(context.Context) error { return ErrInjected }}},
		Rollback: []Action{{Target: "db", Execute: func(context.Context) error { return nil }}},
	}

	result, err := NewEngine(zerolog.Nop()).Run(context.Background(), exp)
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "db", result.Errors[0].Component)
	assert.True(t, result.HypothesisHeld)
}

func TestThresholds(t *testing.T) {
	assert.True(t, Threshold{">", 1}.holds(2))
	assert.True(t, Threshold{"<", 1}.holds(0))
	assert.True(t, Threshold{">=", 1}.holds(1))
	assert.True(t, Threshold{"<=", 1}.holds(1))
	assert.True(t, Threshold{"==", 1}.holds(1))
	assert.False(t, Threshold{"!=", 1}.holds(2))
}

func TestStorefrontSurvivesExperiments(t *testing.T) {
	ctx := context.Background()
	games, err := catalog.SeedGames()
	require.NoError(t, err)
	svc := catalog.NewService(games)

	faulty := storage.NewFaulty(storage.NewMemory())
	source := NewFaultySource(catalog.NewLocalSource(svc))

	cfg := config.Default()
	cfg.Storage.Backend = config.BackendMemory
	a, err := app.New(ctx, cfg, zerolog.Nop(),
		app.WithStorage(faulty),
		app.WithCatalog(svc),
		app.WithGamesSource(source),
	)
	require.NoError(t, err)
	defer a.Close()
	require.NoError(t, a.Start(ctx))

	target := Target{App: a, Storage: faulty, Source: source}
	results := NewEngine(zerolog.Nop()).RunAll(ctx, StorefrontExperiments(target, 30*time.Millisecond, 10*time.Millisecond))

	require.Len(t, results, 4)
	for _, r := range results {
		assert.True(t, r.SteadyStateValid, r.Experiment)
		assert.True(t, r.HypothesisHeld, "%s: %v", r.Experiment, r.FailedAssertions)
	}

	require.NoError(t, a.Games.LoadGames(ctx, catalog.Query{Page: 1}))
	assert.NotEmpty(t, a.GamesView.Games(), "catalog recovers after rollback")
}
