// internal/chaos/chaos.go

// Package chaos runs resilience experiments against a live storefront:
// verify a steady state, inject a fault, observe, roll back, then check
// that the hypothesis held.
package chaos

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var ErrSteadyStateInvalid = errors.New("steady state invalid")

// Experiment defines a chaos engineering test
type Experiment struct {
	Name        string
	Hypothesis  string
	SteadyState []Probe
	Method      []Action
	Rollback    []Action
	Validation  []Assertion
	// Duration is how long the system is observed with the fault active.
	Duration time.Duration
	// Interval between observations. Zero samples once.
	Interval time.Duration
}

// Probe measures one system property.
type Probe struct {
	Name      string
	Query     func(context.Context) (float64, error)
	Threshold Threshold
}

type Threshold struct {
	Operator string // >, <, >=, <=, ==
	Value    float64
}

// Action injects or removes a fault.
type Action struct {
	Name    string
	Target  string
	Execute func(context.Context) error
}

// Assertion checks the last observation of a probe.
type Assertion struct {
	Probe     string
	Condition func(float64) bool
	Message   string
}

type Result struct {
	Experiment       string                 `json:"experiment"`
	StartTime        time.Time              `json:"start_time"`
	EndTime          time.Time              `json:"end_time"`
	Duration         time.Duration          `json:"duration"`
	HypothesisHeld   bool                   `json:"hypothesis_held"`
	SteadyStateValid bool                   `json:"steady_state_valid"`
	Violations       []Violation            `json:"violations"`
	Observations     map[string][]DataPoint `json:"observations"`
	Errors           []ErrorEvent           `json:"errors"`
	FailedAssertions []string               `json:"failed_assertions,omitempty"`
}

type Violation struct {
	Probe     string    `json:"probe"`
	Expected  float64   `json:"expected"`
	Actual    float64   `json:"actual"`
	Timestamp time.Time `json:"timestamp"`
}

type DataPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

type ErrorEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Error     string    `json:"error"`
	Component string    `json:"component"`
}

// Engine runs experiments and keeps their results.
type Engine struct {
	tracer  trace.Tracer
	log     zerolog.Logger
	mu      sync.Mutex
	results []Result
}

func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{
		tracer: otel.Tracer("gamershop/chaos"),
		log:    log.With().Str("component", "chaos").Logger(),
	}
}

// Run executes a single experiment. Rollback actions always run once the
// fault has been injected.
func (e *Engine) Run(ctx context.Context, exp Experiment) (*Result, error) {
	ctx, span := e.tracer.Start(ctx, "chaos.run_experiment",
		trace.WithAttributes(attribute.String("experiment.name", exp.Name)))
	defer span.End()

	result := &Result{
		Experiment:   exp.Name,
		StartTime:    time.Now(),
		Observations: make(map[string][]DataPoint),
		Violations:   make([]Violation, 0),
		Errors:       make([]ErrorEvent, 0),
	}

	span.AddEvent("validating_steady_state")
	for _, p := range exp.SteadyState {
		value, err := p.Query(ctx)
		if err != nil || !p.Threshold.holds(value) {
			result.Violations = append(result.Violations, Violation{
				Probe: p.Name, Expected: p.Threshold.Value, Actual: value, Timestamp: time.Now(),
			})
		}
	}
	if len(result.Violations) > 0 {
		e.finish(result)
		return result, ErrSteadyStateInvalid
	}
	result.SteadyStateValid = true

	span.AddEvent("injecting_fault")
	e.execute(ctx, exp.Method, result)

	span.AddEvent("observing_system")
	e.observe(ctx, exp, result)

	span.AddEvent("rolling_back")
	e.execute(ctx, exp.Rollback, result)

	span.AddEvent("validating_assertions")
	result.HypothesisHeld = e.validate(exp.Validation, result)

	e.finish(result)
	span.SetAttributes(
		attribute.Bool("hypothesis_held", result.HypothesisHeld),
		attribute.Int("violations", len(result.Violations)),
	)
	e.log.Info().
		Str("experiment", exp.Name).
		Bool("hypothesis_held", result.HypothesisHeld).
		Int("violations", len(result.Violations)).
		Dur("duration", result.Duration).
		Msg("experiment finished")
	return result, nil
}

// RunAll executes experiments in order, continuing past failures.
func (e *Engine) RunAll(ctx context.Context, exps []Experiment) []*Result {
	results := make([]*Result, 0, len(exps))
	for _, exp := range exps {
		e.log.Info().Str("experiment", exp.Name).Str("hypothesis", exp.Hypothesis).Msg("starting experiment")
		r, err := e.Run(ctx, exp)
		if err != nil {
			e.log.Error().Err(err).Str("experiment", exp.Name).Msg("experiment aborted")
		}
		results = append(results, r)
	}
	return results
}

// Results returns every finished experiment.
func (e *Engine) Results() []Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Result(nil), e.results...)
}

func (e *Engine) execute(ctx context.Context, actions []Action, result *Result) {
	for _, a := range actions {
		if err := a.Execute(ctx); err != nil {
			result.Errors = append(result.Errors, ErrorEvent{
				Timestamp: time.Now(), Error: err.Error(), Component: a.Target,
			})
			trace.SpanFromContext(ctx).RecordError(err)
		}
	}
}

func (e *Engine) observe(ctx context.Context, exp Experiment, result *Result) {
	e.sample(ctx, exp.SteadyState, result)
	if exp.Interval <= 0 || exp.Duration <= 0 {
		return
	}

	observeCtx, cancel := context.WithTimeout(ctx, exp.Duration)
	defer cancel()
	ticker := time.NewTicker(exp.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-observeCtx.Done():
			return
		case <-ticker.C:
			e.sample(ctx, exp.SteadyState, result)
		}
	}
}

func (e *Engine) sample(ctx context.Context, probes []Probe, result *Result) {
	for _, p := range probes {
		value, err := p.Query(ctx)
		if err != nil {
			result.Errors = append(result.Errors, ErrorEvent{
				Timestamp: time.Now(), Error: err.Error(), Component: p.Name,
			})
			continue
		}

		now := time.Now()
		result.Observations[p.Name] = append(result.Observations[p.Name], DataPoint{Timestamp: now, Value: value})
		if !p.Threshold.holds(value) {
			result.Violations = append(result.Violations, Violation{
				Probe: p.Name, Expected: p.Threshold.Value, Actual: value, Timestamp: now,
			})
		}
	}
}

func (e *Engine) validate(assertions []Assertion, result *Result) bool {
	held := true
	for _, a := range assertions {
		points := result.Observations[a.Probe]
		if len(points) == 0 || !a.Condition(points[len(points)-1].Value) {
			result.FailedAssertions = append(result.FailedAssertions, a.Message)
			held = false
		}
	}
	return held
}

func (e *Engine) finish(result *Result) {
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	e.mu.Lock()
	e.results = append(e.results, *result)
	e.mu.Unlock()
}

func (t Threshold) holds(value float64) bool {
	switch t.Operator {
	case ">":
		return value > t.Value
	case "<":
		return value < t.Value
	case ">=":
		return value >= t.Value
	case "<=":
		return value <= t.Value
	case "==":
		return value == t.Value
	default:
		return false
	}
}
