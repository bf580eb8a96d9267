package gemini

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/matthewmjones/dissertation-matching/internal/utils"

	"go.uber.org/zap"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Judge asks the model to rate student/supervisor alignment on a 0-10 scale.
// Failures are returned to the caller; the matching engine decides the
// fallback policy.
type Judge struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

func NewJudge(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Judge {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Judge{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// Judge evaluates the alignment between a student abstract and supervisor
// research interests. The returned score is always within [0, 10]; anything
// the model produces outside that range is an error.
func (j *Judge) Judge(ctx context.Context, studentAbstract, supervisorInterests string) (float64, error) {
	if strings.TrimSpace(studentAbstract) == "" {
		return 0, fmt.Errorf("student abstract is required")
	}
	if strings.TrimSpace(supervisorInterests) == "" {
		return 0, fmt.Errorf("supervisor research interests are required")
	}

	prompt := buildPrompt(studentAbstract, supervisorInterests)

	j.logger.Debug("gemini judge request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, j.maxLogLen)),
	)

	raw, err := j.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return 0, err
	}

	j.logger.Debug("gemini judge response",
		zap.String("response_preview", utils.TruncateForLog(raw, j.maxLogLen)),
	)

	score, err := parseScore(raw)
	if err != nil {
		return 0, err
	}

	return score, nil
}

func buildPrompt(studentAbstract, supervisorInterests string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Student abstract:\n{{STUDENT_ABSTRACT}}\n\nSupervisor interests:\n{{SUPERVISOR_INTERESTS}}\n\nRespond with only a single number between 0-10."
	}
	prompt := strings.ReplaceAll(template, "{{STUDENT_ABSTRACT}}", strings.TrimSpace(studentAbstract))
	prompt = strings.ReplaceAll(prompt, "{{SUPERVISOR_INTERESTS}}", strings.TrimSpace(supervisorInterests))
	return prompt
}

func parseScore(raw string) (float64, error) {
	cleaned := stripCodeFence(raw)

	// Models occasionally wrap the number in prose. Take the first token that
	// parses as a float.
	for _, field := range strings.Fields(cleaned) {
		field = strings.Trim(field, ".,:;")
		score, err := strconv.ParseFloat(field, 64)
		if err != nil {
			continue
		}
		if score < 0 || score > 10 {
			return 0, fmt.Errorf("judge score %v is out of range [0, 10]", score)
		}
		return score, nil
	}

	return 0, fmt.Errorf("judge response is not numeric: %q", utils.TruncateForLog(cleaned, defaultMaxLogLength))
}

func stripCodeFence(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
