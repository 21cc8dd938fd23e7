package pipeline

import (
	"context"
	"fmt"

	"github.com/phuslu/log"

	"cordchat/internal/config"
	embopenai "cordchat/internal/embedding/openai"
	genopenai "cordchat/internal/generate/openai"
	"cordchat/internal/index/sqlite"
	"cordchat/internal/provision"
)

// ConstructionError reports that the pipeline could not be built. It is fatal
// for the session: no partial pipeline exists and nothing is retried until
// the cause is resolved and construction is attempted again.
type ConstructionError struct {
	Cause error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("pipeline construction failed: %v", e.Cause)
}

func (e *ConstructionError) Unwrap() error { return e.Cause }

// Build constructs the full pipeline from configuration: it ensures the index
// artifact is present locally, opens it read-only, and constructs the
// embedding and generation clients. All-or-nothing; any failure is returned
// as a *ConstructionError.
func Build(ctx context.Context, cfg *config.AppConfig) (*Pipeline, error) {
	ready, err := provision.EnsureIndexPresent(ctx, cfg.Artifact, cfg.Index.Dir)
	if err != nil {
		return nil, &ConstructionError{Cause: fmt.Errorf("provisioning index: %w", err)}
	}
	if !ready {
		return nil, &ConstructionError{Cause: fmt.Errorf("vector index unavailable at %s", cfg.Index.Dir)}
	}

	emb, err := embopenai.NewClient(embopenai.Config{
		BaseURL:   cfg.Embedder.BaseURL,
		APIKeyEnv: cfg.Embedder.APIKeyEnv,
		Model:     cfg.Embedder.Model,
		Timeout:   cfg.Embedder.Timeout(),
	})
	if err != nil {
		return nil, &ConstructionError{Cause: fmt.Errorf("embeddings client: %w", err)}
	}

	idx, err := sqlite.Open(cfg.Index.Dir)
	if err != nil {
		return nil, &ConstructionError{Cause: err}
	}

	gen, err := genopenai.NewClient(genopenai.Config{
		BaseURL:     cfg.Generator.BaseURL,
		APIKeyEnv:   cfg.Generator.APIKeyEnv,
		Model:       cfg.Generator.Model,
		Temperature: cfg.Generator.Temperature,
		MaxTokens:   cfg.Generator.MaxTokens,
		Timeout:     cfg.Generator.Timeout(),
	})
	if err != nil {
		_ = idx.Close()
		return nil, &ConstructionError{Cause: fmt.Errorf("chat client: %w", err)}
	}

	count, err := idx.Count(ctx)
	if err != nil {
		_ = idx.Close()
		return nil, &ConstructionError{Cause: fmt.Errorf("reading index: %w", err)}
	}
	log.Info().
		Str("index_dir", cfg.Index.Dir).
		Int("chunks", count).
		Str("model", gen.Name()).
		Msg("pipeline constructed")

	return New(emb, idx, gen, cfg.Index.TopK), nil
}
