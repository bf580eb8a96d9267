// Package roster holds the student and supervisor records consumed by the
// matching engine, plus the CSV ingestion that produces them.
package roster

import "strings"

// Student is a single dissertation student. Records are immutable once parsed.
type Student struct {
	ID               string `mapstructure:"student_id"`
	Name             string `mapstructure:"name"`
	PrimarySubject   string `mapstructure:"primary_subject"`
	SecondarySubject string `mapstructure:"secondary_subject"`
	Abstract         string `mapstructure:"abstract"`

	// MethodologyNeeds preserves the order given in the source data.
	MethodologyNeeds []string `mapstructure:"-"`
}

// Supervisor is a member of staff with a capacity and per-tag confidence
// levels on a 1-5 scale.
type Supervisor struct {
	ID                string `mapstructure:"supervisor_id"`
	Name              string `mapstructure:"name"`
	Capacity          int    `mapstructure:"capacity"`
	ResearchInterests string `mapstructure:"research_interests"`
	IsDefault         bool   `mapstructure:"-"`

	// Confidence maps a lowercased subject or methodology tag to the
	// supervisor's declared confidence for it.
	Confidence map[string]int `mapstructure:"-"`

	// WillNotSupervise holds lowercased subject tags that are a hard exclusion.
	WillNotSupervise []string `mapstructure:"-"`
}

// ConfidenceFor returns the supervisor's confidence for the given tag and
// whether one was recorded. Lookup is case-insensitive.
func (s *Supervisor) ConfidenceFor(tag string) (int, bool) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return 0, false
	}
	confidence, ok := s.Confidence[tag]
	if !ok || confidence == 0 {
		return 0, false
	}
	return confidence, true
}

// Excludes reports whether the supervisor hard-excludes the given subject.
func (s *Supervisor) Excludes(subject string) bool {
	subject = strings.ToLower(strings.TrimSpace(subject))
	for _, excluded := range s.WillNotSupervise {
		if excluded == subject {
			return true
		}
	}
	return false
}
