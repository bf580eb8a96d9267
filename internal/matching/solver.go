package matching

import (
	"math"
	"sort"

	"github.com/matthewmjones/dissertation-matching/internal/roster"
)

// Assignment pairs one student with one supervisor. Default marks a fallback
// assignment to a default supervisor; those carry no numeric score.
type Assignment struct {
	Student    roster.Student
	Supervisor roster.Supervisor
	Score      float64
	Default    bool
}

// Stats summarizes one matching run. AverageScore covers numeric assignments
// only; HasAverage is false when every assignment was a default fallback or
// nothing was assigned.
type Stats struct {
	Total        int
	Assigned     int
	Unassigned   int
	AverageScore float64
	HasAverage   bool
}

type scoredPair struct {
	student    int
	supervisor int
	score      float64
}

// Solve turns the score matrix (indexed [supervisor][student]) into a
// capacity-respecting assignment. Phase 1 walks all positive-score pairs in
// descending score order, committing greedily; ties keep the enumeration
// order (students outer, supervisors inner). This is deliberately a one-pass
// heuristic with no backtracking. Phase 2 places leftover students with the
// first default supervisor that still has capacity.
func Solve(students []roster.Student, supervisors []roster.Supervisor, matrix [][]float64) ([]Assignment, Stats) {
	pairs := make([]scoredPair, 0, len(students)*len(supervisors))
	for s := range students {
		for p := range supervisors {
			if score := matrix[p][s]; score > 0 {
				pairs = append(pairs, scoredPair{student: s, supervisor: p, score: score})
			}
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].score > pairs[j].score
	})

	assigned := make([]bool, len(students))
	remaining := make([]int, len(supervisors))
	for p := range supervisors {
		remaining[p] = supervisors[p].Capacity
	}

	var assignments []Assignment
	for _, pair := range pairs {
		if assigned[pair.student] || remaining[pair.supervisor] <= 0 {
			continue
		}
		assignments = append(assignments, Assignment{
			Student:    students[pair.student],
			Supervisor: supervisors[pair.supervisor],
			Score:      pair.score,
		})
		assigned[pair.student] = true
		remaining[pair.supervisor]--
	}

	for s := range students {
		if assigned[s] {
			continue
		}
		for p := range supervisors {
			if !supervisors[p].IsDefault || remaining[p] <= 0 {
				continue
			}
			assignments = append(assignments, Assignment{
				Student:    students[s],
				Supervisor: supervisors[p],
				Default:    true,
			})
			assigned[s] = true
			remaining[p]--
			break
		}
	}

	return assignments, summarize(len(students), assignments)
}

func summarize(total int, assignments []Assignment) Stats {
	stats := Stats{
		Total:      total,
		Assigned:   len(assignments),
		Unassigned: total - len(assignments),
	}

	sum := 0.0
	numeric := 0
	for _, assignment := range assignments {
		if assignment.Default {
			continue
		}
		sum += assignment.Score
		numeric++
	}

	if numeric > 0 {
		stats.AverageScore = math.Round(sum/float64(numeric)*100) / 100
		stats.HasAverage = true
	}

	return stats
}
