package matching

import (
	"context"
	"math"
	"sort"

	"github.com/matthewmjones/dissertation-matching/internal/roster"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Blending weights. Semantic is the judgment/similarity blend; the final
// score weighs it against the deterministic rule-based score.
const (
	judgmentWeight   = 0.7
	similarityWeight = 0.3
	semanticWeight   = 0.4
	ruleWeight       = 0.6

	// judgeFallbackScore substitutes a failed or out-of-range judgment.
	judgeFallbackScore = 5.0
)

// embedRosters fetches embeddings for every student abstract and supervisor
// research interest concurrently. Each goroutine writes to its own slot, so
// completion order never matters. A failed fetch leaves a nil slot; the pair
// scores involving it fall back to similarity 0.
func (e *Engine) embedRosters(ctx context.Context, students []roster.Student, supervisors []roster.Supervisor) ([][]float32, [][]float32, error) {
	studentEmbeddings := make([][]float32, len(students))
	supervisorEmbeddings := make([][]float32, len(supervisors))

	group, groupCtx := errgroup.WithContext(ctx)
	semaphore := make(chan struct{}, e.opts.Concurrency)

	for i := range students {
		group.Go(func() error {
			return e.embedSlot(groupCtx, semaphore, students[i].Abstract, "student", students[i].ID, &studentEmbeddings[i])
		})
	}

	for i := range supervisors {
		group.Go(func() error {
			return e.embedSlot(groupCtx, semaphore, supervisors[i].ResearchInterests, "supervisor", supervisors[i].ID, &supervisorEmbeddings[i])
		})
	}

	if err := group.Wait(); err != nil {
		return nil, nil, err
	}

	return studentEmbeddings, supervisorEmbeddings, nil
}

func (e *Engine) embedSlot(ctx context.Context, semaphore chan struct{}, text, kind, id string, slot *[]float32) error {
	select {
	case semaphore <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-semaphore }()

	callCtx, cancel := context.WithTimeout(ctx, e.opts.CallTimeout)
	defer cancel()

	embedding, err := e.embedder.Embed(callCtx, text)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// Recoverable: pairs involving this record score similarity 0.
		e.logger.Warn("embedding fetch failed",
			zap.String("kind", kind),
			zap.String("id", id),
			zap.Error(err),
		)
		return nil
	}

	*slot = embedding
	return nil
}

type candidatePair struct {
	supervisor int
	student    int
}

// buildMatrix produces the |supervisors| x |students| score matrix. Excluded
// pairs score 0. Candidate pairs (top-K by similarity per supervisor) get an
// LLM judgment blended into their semantic component.
func (e *Engine) buildMatrix(ctx context.Context, students []roster.Student, supervisors []roster.Supervisor, studentEmbeddings, supervisorEmbeddings [][]float32) ([][]float64, error) {
	numStudents := len(students)
	numSupervisors := len(supervisors)

	similarities := make([][]float64, numSupervisors)
	excluded := make([][]bool, numSupervisors)
	for p := range supervisors {
		similarities[p] = make([]float64, numStudents)
		excluded[p] = make([]bool, numStudents)

		for s := range students {
			if supervisors[p].Excludes(students[s].PrimarySubject) {
				excluded[p][s] = true
				continue
			}
			if studentEmbeddings[s] == nil || supervisorEmbeddings[p] == nil {
				continue
			}

			cos, err := Cosine(studentEmbeddings[s], supervisorEmbeddings[p])
			if err != nil {
				// Mixed embedding models in one run. Fail loudly rather than
				// silently degrading every score.
				return nil, err
			}
			similarities[p][s] = RescaleSimilarity(cos)
		}
	}

	candidates := e.selectCandidates(similarities, excluded)

	judgments, err := e.judgeCandidates(ctx, students, supervisors, candidates)
	if err != nil {
		return nil, err
	}

	matrix := make([][]float64, numSupervisors)
	for p := range supervisors {
		matrix[p] = make([]float64, numStudents)
		for s := range students {
			if excluded[p][s] {
				continue
			}

			semantic := similarities[p][s]
			if judgment, ok := judgments[candidatePair{p, s}]; ok {
				semantic = judgmentWeight*judgment + similarityWeight*semantic
			}

			combined := semanticWeight*semantic + ruleWeight*RuleScore(students[s], supervisors[p])
			matrix[p][s] = math.Round(combined*100) / 100
		}
	}

	return matrix, nil
}

// selectCandidates picks, per supervisor, the top-K students by similarity
// among non-excluded, positive-similarity pairs. Ties keep the original
// student order.
func (e *Engine) selectCandidates(similarities [][]float64, excluded [][]bool) []candidatePair {
	var candidates []candidatePair
	for p := range similarities {
		valid := make([]int, 0, len(similarities[p]))
		for s := range similarities[p] {
			if !excluded[p][s] && similarities[p][s] > 0 {
				valid = append(valid, s)
			}
		}

		sort.SliceStable(valid, func(i, j int) bool {
			return similarities[p][valid[i]] > similarities[p][valid[j]]
		})

		limit := e.opts.TopK
		if limit > len(valid) {
			limit = len(valid)
		}
		for _, s := range valid[:limit] {
			candidates = append(candidates, candidatePair{supervisor: p, student: s})
		}
	}
	return candidates
}

// judgeCandidates fetches an LLM judgment for each candidate pair with
// bounded concurrency. A failed or out-of-range judgment substitutes the
// neutral fallback; re-ranking never aborts the run.
func (e *Engine) judgeCandidates(ctx context.Context, students []roster.Student, supervisors []roster.Supervisor, candidates []candidatePair) (map[candidatePair]float64, error) {
	scores := make([]float64, len(candidates))

	group, groupCtx := errgroup.WithContext(ctx)
	semaphore := make(chan struct{}, e.opts.Concurrency)

	for i, pair := range candidates {
		group.Go(func() error {
			select {
			case semaphore <- struct{}{}:
			case <-groupCtx.Done():
				return groupCtx.Err()
			}
			defer func() { <-semaphore }()

			callCtx, cancel := context.WithTimeout(groupCtx, e.opts.CallTimeout)
			defer cancel()

			student := students[pair.student]
			supervisor := supervisors[pair.supervisor]

			score, err := e.judge.Judge(callCtx, student.Abstract, supervisor.ResearchInterests)
			if err != nil {
				if groupCtx.Err() != nil {
					return groupCtx.Err()
				}
				e.logger.Warn("judgment failed, using fallback score",
					zap.String("student_id", student.ID),
					zap.String("supervisor_id", supervisor.ID),
					zap.Float64("fallback", judgeFallbackScore),
					zap.Error(err),
				)
				score = judgeFallbackScore
			}

			scores[i] = score
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	judgments := make(map[candidatePair]float64, len(candidates))
	for i, pair := range candidates {
		judgments[pair] = scores[i]
	}

	return judgments, nil
}
