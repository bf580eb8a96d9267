package matching

import "github.com/matthewmjones/dissertation-matching/internal/roster"

// Weights and defaults for the rule-based score. These mirror the documented
// scoring scheme exactly; changing them changes every published match score.
const (
	secondarySubjectWeight = 0.3
	subjectWeight          = 0.7
	methodologyWeight      = 0.3

	defaultConfidence        = 1
	neutralMethodologyScore  = 3
	weakPrimaryThreshold     = 2
	weakPrimaryPenaltyFactor = 0.3
	confidenceScaleMax       = 5
	ruleScaleMax             = 10
)

// RuleScore computes the deterministic subject/methodology fit between one
// student and one supervisor on a nominal 0-10 scale. The result is not
// clamped: extreme confidence inputs may push it slightly above 10.
func RuleScore(student roster.Student, supervisor roster.Supervisor) float64 {
	primary, ok := supervisor.ConfidenceFor(student.PrimarySubject)
	if !ok {
		primary = defaultConfidence
	}

	secondary := 0.0
	if student.SecondarySubject != "" {
		confidence, ok := supervisor.ConfidenceFor(student.SecondarySubject)
		if !ok {
			confidence = defaultConfidence
		}
		secondary = float64(confidence) * secondarySubjectWeight
	}

	subjectScore := float64(primary) + secondary

	methodologySum := 0
	methodologyCount := 0
	for _, tag := range student.MethodologyNeeds {
		if confidence, ok := supervisor.ConfidenceFor(tag); ok {
			methodologySum += confidence
			methodologyCount++
		}
	}

	methodologyScore := float64(neutralMethodologyScore)
	if methodologyCount > 0 {
		methodologyScore = float64(methodologySum) / float64(methodologyCount)
	}

	raw := subjectWeight*subjectScore + methodologyWeight*methodologyScore
	score := raw / confidenceScaleMax * ruleScaleMax

	if primary < weakPrimaryThreshold {
		score *= weakPrimaryPenaltyFactor
	}

	return score
}
