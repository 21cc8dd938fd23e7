// Package pipeline composes the embedder, the persisted index and the
// chat-completion client into a single answer operation: embed the question,
// retrieve the most similar chunks, and generate an answer grounded in them.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/phuslu/log"

	"cordchat/internal/domain"
)

// promptTemplate embeds the retrieved context and the question verbatim. The
// instruction to flag insufficient context is part of the contract: the model
// must say so rather than invent an answer.
const promptTemplate = `You are a helpful assistant with access to COVID-19 medical research.

Answer the question using the following context from recent research papers:
%s

Question: %s
Answer: Please provide a comprehensive answer based on the research context. If the context doesn't contain relevant information, please say so clearly.`

// Reply is the outcome of one successful answer: the completion text and the
// display summaries of the chunks it was grounded in.
type Reply struct {
	Text    string
	Sources []domain.SourceSummary
}

// Pipeline is the constructed, reusable bundle of embedder, retriever and
// generator. It is read-only after construction and safe to reuse across
// turns.
type Pipeline struct {
	embedder  domain.Embedder
	retriever domain.Retriever
	generator domain.Generator
	topK      int
}

// New assembles a pipeline from already-constructed components.
func New(emb domain.Embedder, ret domain.Retriever, gen domain.Generator, topK int) *Pipeline {
	if topK <= 0 {
		topK = 5
	}
	return &Pipeline{embedder: emb, retriever: ret, generator: gen, topK: topK}
}

// Answer runs one retrieval-augmented exchange. A single similarity search
// feeds both the prompt context and the returned source summaries, so the
// cited sources are exactly the chunks the answer was conditioned on.
// Retrieving zero chunks is not an error: the prompt carries an empty context
// and the reply carries no sources.
func (p *Pipeline) Answer(ctx context.Context, question string) (Reply, error) {
	vector, err := p.embedder.Embed(ctx, question)
	if err != nil {
		return Reply{}, fmt.Errorf("embedding question: %w", err)
	}
	chunks, err := p.retriever.Search(ctx, vector, p.topK)
	if err != nil {
		return Reply{}, fmt.Errorf("searching index: %w", err)
	}

	contents := make([]string, 0, len(chunks))
	for _, sc := range chunks {
		contents = append(contents, sc.Chunk.Content)
	}
	prompt := fmt.Sprintf(promptTemplate, strings.Join(contents, "\n\n"), question)

	text, err := p.generator.Complete(ctx, prompt)
	if err != nil {
		return Reply{}, fmt.Errorf("generating answer: %w", err)
	}
	log.Debug().Int("retrieved", len(chunks)).Int("answer_len", len(text)).Msg("answered question")

	return Reply{Text: text, Sources: domain.Summaries(chunks)}, nil
}
