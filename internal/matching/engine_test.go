package matching

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/matthewmjones/dissertation-matching/internal/roster"

	"go.uber.org/zap"
)

type stubEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	vector, ok := s.vectors[text]
	if !ok {
		return nil, errors.New("no stub vector for text")
	}
	return vector, nil
}

type stubJudge struct {
	score float64
	err   error

	mu    sync.Mutex
	calls int
}

func (s *stubJudge) Judge(_ context.Context, _, _ string) (float64, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	return s.score, nil
}

func (s *stubJudge) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func newTestEngine(embedder *stubEmbedder, judge *stubJudge, opts Options) *Engine {
	return NewEngine(embedder, judge, zap.NewNop(), opts)
}

func TestRunRejectsEmptyInput(t *testing.T) {
	engine := newTestEngine(&stubEmbedder{}, &stubJudge{}, Options{})

	_, err := engine.Run(context.Background(), nil, []roster.Supervisor{{ID: "SUP1"}})
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}

	_, err = engine.Run(context.Background(), []roster.Student{{ID: "S1"}}, nil)
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestRunRejectsMissingProvider(t *testing.T) {
	engine := NewEngine(nil, nil, zap.NewNop(), Options{})

	_, err := engine.Run(context.Background(), []roster.Student{{ID: "S1"}}, []roster.Supervisor{{ID: "SUP1"}})
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
}

// Orthogonal embeddings give cosine 0, which rescales to the neutral 5.
func TestRunBlendsJudgmentForCandidatePairs(t *testing.T) {
	students := []roster.Student{{
		ID:             "S1",
		Name:           "Alice",
		PrimarySubject: "Finance",
		Abstract:       "merger performance",
	}}
	supervisors := []roster.Supervisor{{
		ID:                "SUP1",
		Name:              "Prof. Anderson",
		Capacity:          1,
		Confidence:        map[string]int{"finance": 5},
		ResearchInterests: "corporate finance",
	}}

	embedder := &stubEmbedder{vectors: map[string][]float32{
		"merger performance": {1, 0},
		"corporate finance":  {0, 1},
	}}
	judge := &stubJudge{score: 8}

	engine := newTestEngine(embedder, judge, Options{})
	result, err := engine.Run(context.Background(), students, supervisors)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if judge.callCount() != 1 {
		t.Fatalf("expected exactly 1 judgment call, got %d", judge.callCount())
	}

	if len(result.Assignments) != 1 {
		t.Fatalf("expected 1 assignment, got %d", len(result.Assignments))
	}

	// semantic = 0.7*8 + 0.3*5 = 7.1; rule = (0.7*5 + 0.3*3)/5*10 = 8.8;
	// final = 0.4*7.1 + 0.6*8.8 = 8.12.
	got := result.Assignments[0].Score
	if math.Abs(got-8.12) > 1e-9 {
		t.Fatalf("expected score 8.12, got %v", got)
	}

	if !result.Stats.HasAverage || math.Abs(result.Stats.AverageScore-8.12) > 1e-9 {
		t.Fatalf("unexpected stats: %+v", result.Stats)
	}
}

func TestRunJudgmentFailureUsesFallback(t *testing.T) {
	students := []roster.Student{{
		ID:             "S1",
		PrimarySubject: "Finance",
		Abstract:       "abstract",
	}}
	supervisors := []roster.Supervisor{{
		ID:                "SUP1",
		Capacity:          1,
		Confidence:        map[string]int{"finance": 5},
		ResearchInterests: "interests",
	}}

	embedder := &stubEmbedder{vectors: map[string][]float32{
		"abstract":  {1, 0},
		"interests": {0, 1},
	}}
	judge := &stubJudge{err: errors.New("transport failed")}

	engine := newTestEngine(embedder, judge, Options{})
	result, err := engine.Run(context.Background(), students, supervisors)
	if err != nil {
		t.Fatalf("judgment failures must not abort the run: %v", err)
	}

	// Fallback judgment 5 with similarity 5: semantic = 0.7*5 + 0.3*5 = 5;
	// final = 0.4*5 + 0.6*8.8 = 7.28.
	got := result.Assignments[0].Score
	if math.Abs(got-7.28) > 1e-9 {
		t.Fatalf("expected fallback-blended score 7.28, got %v", got)
	}
}

func TestRunHardExclusionZeroesPair(t *testing.T) {
	students := []roster.Student{{
		ID:             "S1",
		PrimarySubject: "Finance",
		Abstract:       "abstract",
	}}
	supervisors := []roster.Supervisor{{
		ID:                "SUP1",
		Capacity:          5,
		Confidence:        map[string]int{"finance": 5},
		WillNotSupervise:  []string{"finance"},
		ResearchInterests: "interests",
	}}

	embedder := &stubEmbedder{vectors: map[string][]float32{
		"abstract":  {1, 0},
		"interests": {1, 0},
	}}
	judge := &stubJudge{score: 10}

	engine := newTestEngine(embedder, judge, Options{})
	result, err := engine.Run(context.Background(), students, supervisors)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if judge.callCount() != 0 {
		t.Fatalf("excluded pairs must not be judged, got %d calls", judge.callCount())
	}
	if len(result.Assignments) != 0 {
		t.Fatalf("excluded pair must never be assigned in the primary pass")
	}
	if result.Stats.Unassigned != 1 {
		t.Fatalf("expected the student to stay unassigned, got %+v", result.Stats)
	}
}

func TestRunTopKGatesJudgments(t *testing.T) {
	students := []roster.Student{
		{ID: "S1", PrimarySubject: "Finance", Abstract: "close match"},
		{ID: "S2", PrimarySubject: "Finance", Abstract: "far match"},
	}
	supervisors := []roster.Supervisor{{
		ID:                "SUP1",
		Capacity:          2,
		Confidence:        map[string]int{"finance": 5},
		ResearchInterests: "interests",
	}}

	// S1 aligns with the supervisor, S2 is orthogonal; with TopK=1 only S1
	// gets a judgment.
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"close match": {1, 0},
		"far match":   {0, 1},
		"interests":   {1, 0},
	}}
	judge := &stubJudge{score: 9}

	engine := newTestEngine(embedder, judge, Options{TopK: 1})
	result, err := engine.Run(context.Background(), students, supervisors)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if judge.callCount() != 1 {
		t.Fatalf("expected 1 judgment for top-1 gating, got %d", judge.callCount())
	}

	scores := make(map[string]float64)
	for _, assignment := range result.Assignments {
		scores[assignment.Student.ID] = assignment.Score
	}

	// S1: similarity 10, semantic = 0.7*9 + 0.3*10 = 9.3, final = 0.4*9.3 + 0.6*8.8 = 9.0.
	if math.Abs(scores["S1"]-9.0) > 1e-9 {
		t.Fatalf("expected S1 score 9.0, got %v", scores["S1"])
	}
	// S2: not a candidate, semantic stays the similarity 5, final = 0.4*5 + 0.6*8.8 = 7.28.
	if math.Abs(scores["S2"]-7.28) > 1e-9 {
		t.Fatalf("expected S2 score 7.28, got %v", scores["S2"])
	}
}

func TestRunEmbeddingFailureExcludesFromCandidates(t *testing.T) {
	students := []roster.Student{{
		ID:             "S1",
		PrimarySubject: "Finance",
		Abstract:       "unembeddable",
	}}
	supervisors := []roster.Supervisor{{
		ID:                "SUP1",
		Capacity:          1,
		Confidence:        map[string]int{"finance": 5},
		ResearchInterests: "interests",
	}}

	// No vector for the student abstract: the fetch fails, the pair's
	// similarity is 0 and no judgment happens.
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"interests": {1, 0},
	}}
	judge := &stubJudge{score: 10}

	engine := newTestEngine(embedder, judge, Options{})
	result, err := engine.Run(context.Background(), students, supervisors)
	if err != nil {
		t.Fatalf("embedding failures must not abort the run: %v", err)
	}

	if judge.callCount() != 0 {
		t.Fatalf("pair without an embedding must not be judged, got %d calls", judge.callCount())
	}

	// semantic = 0, final = 0.6*8.8 = 5.28.
	got := result.Assignments[0].Score
	if math.Abs(got-5.28) > 1e-9 {
		t.Fatalf("expected score 5.28, got %v", got)
	}
}

func TestRunDimensionMismatchFailsLoudly(t *testing.T) {
	students := []roster.Student{{
		ID:             "S1",
		PrimarySubject: "Finance",
		Abstract:       "abstract",
	}}
	supervisors := []roster.Supervisor{{
		ID:                "SUP1",
		Capacity:          1,
		ResearchInterests: "interests",
	}}

	embedder := &stubEmbedder{vectors: map[string][]float32{
		"abstract":  {1, 0, 0},
		"interests": {1, 0},
	}}

	engine := newTestEngine(embedder, &stubJudge{score: 5}, Options{})
	_, err := engine.Run(context.Background(), students, supervisors)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	students := []roster.Student{{ID: "S1", PrimarySubject: "Finance", Abstract: "abstract"}}
	supervisors := []roster.Supervisor{{ID: "SUP1", Capacity: 1, ResearchInterests: "interests"}}

	embedder := &stubEmbedder{err: context.Canceled}
	engine := newTestEngine(embedder, &stubJudge{score: 5}, Options{})

	if _, err := engine.Run(ctx, students, supervisors); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
