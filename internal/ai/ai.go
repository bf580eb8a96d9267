package ai

import "context"

// Embedder produces a fixed-length vector representation of the given text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Judge rates the alignment between a student abstract and a supervisor's
// research interests on a 0-10 scale.
type Judge interface {
	Judge(ctx context.Context, studentAbstract, supervisorInterests string) (float64, error)
}
