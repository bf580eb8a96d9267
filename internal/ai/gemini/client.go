package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matthewmjones/dissertation-matching/internal/utils"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	defaultEmbeddingModel = "gemini-embedding-001"
	defaultRerankerModel  = "gemini-2.5-flash"
)

// Overridable in tests.
var retryDelay = 2 * time.Second

// Generator wraps the Google GenAI client and exposes the two capabilities the
// matching engine needs: text embedding and prompt-based content generation.
type Generator struct {
	client         *genai.Client
	embeddingModel string
	rerankerModel  string
	maxRetries     int
	logger         *zap.Logger
}

// NewGenerator creates a new Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey, embeddingModel, rerankerModel string, maxRetries int, logger *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if embeddingModel = strings.TrimSpace(embeddingModel); embeddingModel == "" {
		embeddingModel = defaultEmbeddingModel
	}
	if rerankerModel = strings.TrimSpace(rerankerModel); rerankerModel == "" {
		rerankerModel = defaultRerankerModel
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{
		client:         client,
		embeddingModel: embeddingModel,
		rerankerModel:  rerankerModel,
		maxRetries:     maxRetries,
		logger:         logger,
	}, nil
}

// Embed returns the embedding vector for the given text using the configured
// embedding model with the semantic similarity task type.
func (g *Generator) Embed(ctx context.Context, text string) ([]float32, error) {
	if g == nil || g.client == nil {
		return nil, errors.New("gemini generator is not initialized")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("text must not be empty")
	}

	contents := []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}

	var result *genai.EmbedContentResponse
	err := g.withRetries(ctx, "embed content", func() error {
		var callErr error
		result, callErr = g.client.Models.EmbedContent(ctx,
			g.embeddingModel,
			contents,
			&genai.EmbedContentConfig{
				TaskType: "SEMANTIC_SIMILARITY",
			},
		)
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}

	if len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, errors.New("gemini api returned no embeddings")
	}

	return result.Embeddings[0].Values, nil
}

// GenerateContent sends the prompt to Gemini and returns the first textual response.
func (g *Generator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.client == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	var resp *genai.GenerateContentResponse
	err := g.withRetries(ctx, "generate content", func() error {
		var callErr error
		resp, callErr = g.client.Models.GenerateContent(ctx, g.rerankerModel, genai.Text(prompt), nil)
		return callErr
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}

	return output, nil
}

func (g *Generator) withRetries(ctx context.Context, op string, call func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		if err = call(); err == nil {
			return nil
		}
		if attempt >= g.maxRetries {
			return err
		}

		g.logger.Debug("retrying gemini call",
			zap.String("operation", op),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)

		if waitErr := utils.WaitFor(ctx, retryDelay); waitErr != nil {
			return waitErr
		}
	}
}

func (g *Generator) EmbeddingModel() string {
	if g == nil {
		return ""
	}
	return g.embeddingModel
}

func (g *Generator) RerankerModel() string {
	if g == nil {
		return ""
	}
	return g.rerankerModel
}
