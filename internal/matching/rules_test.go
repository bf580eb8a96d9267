package matching

import (
	"math"
	"testing"

	"github.com/matthewmjones/dissertation-matching/internal/roster"
)

func TestRuleScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		student    roster.Student
		supervisor roster.Supervisor
		want       float64
	}{
		{
			name:    "primary subject only with neutral methodology",
			student: roster.Student{PrimarySubject: "Finance"},
			supervisor: roster.Supervisor{
				Confidence: map[string]int{"finance": 5},
			},
			// subject 5, methodology defaults to 3: (0.7*5 + 0.3*3) / 5 * 10
			want: 8.8,
		},
		{
			name: "secondary subject contributes 0.3 of its confidence",
			student: roster.Student{
				PrimarySubject:   "Finance",
				SecondarySubject: "Strategy",
			},
			supervisor: roster.Supervisor{
				Confidence: map[string]int{"finance": 5, "strategy": 4},
			},
			// subject 5 + 0.3*4 = 6.2: (0.7*6.2 + 0.3*3) / 5 * 10
			want: 10.48,
		},
		{
			name: "methodology mean over matching tags only",
			student: roster.Student{
				PrimarySubject:   "Operations",
				MethodologyNeeds: []string{"statistics", "optimization", "ethnography"},
			},
			supervisor: roster.Supervisor{
				Confidence: map[string]int{"operations": 4, "statistics": 5, "optimization": 3},
			},
			// subject 4, methodology mean (5+3)/2 = 4: (0.7*4 + 0.3*4) / 5 * 10
			want: 8,
		},
		{
			name: "unknown subjects default to confidence 1 and trigger the penalty",
			student: roster.Student{
				PrimarySubject:   "History",
				SecondarySubject: "Philosophy",
			},
			supervisor: roster.Supervisor{
				Confidence: map[string]int{"finance": 5},
			},
			// subject 1 + 0.3*1 = 1.3, methodology 3, then *0.3 penalty
			want: (0.7*1.3 + 0.3*3) / 5 * 10 * 0.3,
		},
		{
			name: "weak primary confidence penalized despite strong methodology",
			student: roster.Student{
				PrimarySubject:   "Marketing",
				MethodologyNeeds: []string{"statistics"},
			},
			supervisor: roster.Supervisor{
				Confidence: map[string]int{"marketing": 1, "statistics": 5},
			},
			// subject 1, methodology 5, rescaled then *0.3
			want: (0.7*1 + 0.3*5) / 5 * 10 * 0.3,
		},
		{
			name: "primary confidence of exactly 2 escapes the penalty",
			student: roster.Student{
				PrimarySubject: "Marketing",
			},
			supervisor: roster.Supervisor{
				Confidence: map[string]int{"marketing": 2},
			},
			want: (0.7*2 + 0.3*3) / 5 * 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := RuleScore(tt.student, tt.supervisor)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestRuleScoreIsNotClamped(t *testing.T) {
	student := roster.Student{
		PrimarySubject:   "Finance",
		SecondarySubject: "Strategy",
		MethodologyNeeds: []string{"statistics"},
	}
	supervisor := roster.Supervisor{
		Confidence: map[string]int{"finance": 5, "strategy": 5, "statistics": 5},
	}

	// subject 5 + 1.5 = 6.5, methodology 5: (0.7*6.5 + 0.3*5) / 5 * 10 = 12.1
	got := RuleScore(student, supervisor)
	if got <= 10 {
		t.Fatalf("expected score above 10 for maximal confidences, got %v", got)
	}
	if math.Abs(got-12.1) > 1e-9 {
		t.Fatalf("expected 12.1, got %v", got)
	}
}
