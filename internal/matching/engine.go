// Package matching implements the supervisor matching engine: score-matrix
// construction from semantic similarity, LLM judgment and rule-based fit,
// followed by a capacity-constrained greedy assignment.
package matching

import (
	"context"
	"errors"
	"time"

	"github.com/matthewmjones/dissertation-matching/internal/ai"
	"github.com/matthewmjones/dissertation-matching/internal/roster"

	"go.uber.org/zap"
)

var (
	// ErrEmptyInput is returned when either roster is empty.
	ErrEmptyInput = errors.New("student and supervisor lists must not be empty")
	// ErrMissingCredential is returned when no AI provider is configured.
	ErrMissingCredential = errors.New("no AI provider is configured")
)

const (
	defaultTopK        = 3
	defaultConcurrency = 4
	defaultCallTimeout = 30 * time.Second
)

// Options tune the engine. Zero values fall back to defaults.
type Options struct {
	// TopK is the number of highest-similarity students per supervisor that
	// get re-ranked by the judge.
	TopK int
	// Concurrency bounds in-flight calls to the AI provider.
	Concurrency int
	// CallTimeout applies to each individual provider call.
	CallTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.TopK <= 0 {
		o.TopK = defaultTopK
	}
	if o.Concurrency <= 0 {
		o.Concurrency = defaultConcurrency
	}
	if o.CallTimeout <= 0 {
		o.CallTimeout = defaultCallTimeout
	}
	return o
}

// Engine computes the score matrix and runs the assignment solver.
type Engine struct {
	embedder ai.Embedder
	judge    ai.Judge
	logger   *zap.Logger
	opts     Options
}

// Result is the outcome of one matching run.
type Result struct {
	Assignments []Assignment
	Stats       Stats
}

// NewEngine creates an Engine backed by the given AI capabilities.
func NewEngine(embedder ai.Embedder, judge ai.Judge, logger *zap.Logger, opts Options) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{
		embedder: embedder,
		judge:    judge,
		logger:   logger,
		opts:     opts.withDefaults(),
	}
}

// Run scores every (student, supervisor) pair and produces a
// capacity-respecting assignment. Provider failures are substituted per pair;
// only empty inputs, a missing provider, mixed embedding dimensions or
// cancellation abort the run.
func (e *Engine) Run(ctx context.Context, students []roster.Student, supervisors []roster.Supervisor) (*Result, error) {
	if e.embedder == nil || e.judge == nil {
		return nil, ErrMissingCredential
	}
	if len(students) == 0 || len(supervisors) == 0 {
		return nil, ErrEmptyInput
	}

	e.logger.Info("starting matching run",
		zap.Int("students", len(students)),
		zap.Int("supervisors", len(supervisors)),
		zap.Int("top_k", e.opts.TopK),
	)

	studentEmbeddings, supervisorEmbeddings, err := e.embedRosters(ctx, students, supervisors)
	if err != nil {
		return nil, err
	}

	matrix, err := e.buildMatrix(ctx, students, supervisors, studentEmbeddings, supervisorEmbeddings)
	if err != nil {
		return nil, err
	}

	assignments, stats := Solve(students, supervisors, matrix)

	e.logger.Info("matching run completed",
		zap.Int("assigned", stats.Assigned),
		zap.Int("unassigned", stats.Unassigned),
	)

	return &Result{Assignments: assignments, Stats: stats}, nil
}
