package domain

import "context"

// Chunk is a unit of indexed paper text together with its metadata.
// Chunks are owned by the index and treated as read-only after retrieval.
type Chunk struct {
	Content     string
	Title       string
	PublishTime string
}

// ScoredChunk is a retrieved chunk with its similarity to the query.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// Role identifies who authored a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry in the conversation log. Assistant turns carry the
// source summaries shown under the answer; user turns never do.
type Turn struct {
	Role    Role
	Content string
	Sources []SourceSummary
}

// Embedder converts free text into a numeric vector representation.
type Embedder interface {
	Name() string
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Retriever performs similarity search over the persisted index.
type Retriever interface {
	Search(ctx context.Context, vector []float32, topK int) ([]ScoredChunk, error)
}

// Generator produces a natural-language completion for a prompt.
type Generator interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}
