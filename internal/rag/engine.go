package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_engine.go -package=mocks -mock_names=Engine=MockEngine hrdocs-ai/internal/rag Engine,Embedder,Generator

import (
	"context"
	"fmt"
	"strings"

	"hrdocs-ai/internal/contextutil"
	"hrdocs-ai/internal/vectorindex"
)

const (
	// topK is how many candidates are retrieved per question.
	topK = 10
	// minScore filters weak candidates; when the filter empties the set,
	// the unfiltered candidates are used instead.
	minScore = 0.3
	// snippetLength bounds the source excerpts returned to callers.
	snippetLength = 200

	noResultsAnswer = "I couldn't find any relevant information in the uploaded documents to answer your question."

	systemPrompt = "You are an HR assistant that helps employees find information in company documents. " +
		"Answer the question using only the information in the provided context. " +
		"Cite the document an answer came from. If the context does not contain the answer, " +
		"respond with: \"The information is not available in the provided documents.\""
)

// Embedder turns text into fixed-length vectors.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator produces an answer from an instruction and a user message.
type Generator interface {
	GenerateAnswer(ctx context.Context, system, user string) (string, error)
}

// Engine answers natural-language questions over the indexed documents.
type Engine interface {
	// Answer retrieves relevant passages for the question and synthesizes
	// an answer with cited sources.
	Answer(ctx context.Context, question string) (QueryResult, error)
}

// ragEngine implements the Engine interface.
type ragEngine struct {
	embedder  Embedder
	index     vectorindex.Index
	generator Generator
}

// NewEngine creates a new query engine.
func NewEngine(embedder Embedder, index vectorindex.Index, generator Generator) Engine {
	return &ragEngine{
		embedder:  embedder,
		index:     index,
		generator: generator,
	}
}

// Answer runs the retrieval-and-generation flow. Generator failures are
// recovered locally with an extractive answer; the caller only sees an
// error when the question itself cannot be embedded or searched.
func (e *ragEngine) Answer(ctx context.Context, question string) (QueryResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	embeddings, err := e.embedder.EmbedTexts(ctx, []string{question})
	if err != nil {
		logger.ErrorContext(ctx, "failed to embed question", "error", err)
		return QueryResult{}, fmt.Errorf("failed to embed question: %w", err)
	}
	if len(embeddings) == 0 {
		return QueryResult{}, fmt.Errorf("no embedding returned for question")
	}

	matches, err := e.index.Search(ctx, embeddings[0], topK)
	if err != nil {
		logger.ErrorContext(ctx, "failed to search index", "error", err)
		return QueryResult{}, fmt.Errorf("failed to search index: %w", err)
	}

	if len(matches) == 0 {
		logger.InfoContext(ctx, "no candidates for question")
		return QueryResult{
			Answer:  noResultsAnswer,
			Sources: []Source{},
		}, nil
	}

	// Drop weak candidates, but never zero out on an overly strict filter.
	filtered := make([]vectorindex.Match, 0, len(matches))
	for _, m := range matches {
		if m.Score > minScore {
			filtered = append(filtered, m)
		}
	}
	if len(filtered) == 0 {
		logger.InfoContext(ctx, "all candidates below score threshold, using unfiltered set", "candidates", len(matches))
		filtered = matches
	}

	contextBlock := buildContext(filtered)

	answer, err := e.generator.GenerateAnswer(ctx, systemPrompt, buildUserMessage(question, contextBlock))
	if err != nil {
		// Degrade gracefully: an extractive answer from the best chunk
		// instead of an error the user would see.
		logger.WarnContext(ctx, "generator unavailable, using extractive answer", "error", err)
		answer = extractiveAnswer(filtered)
	}

	sources := make([]Source, 0, len(filtered))
	for _, m := range filtered {
		sources = append(sources, Source{
			DocumentID:   m.DocumentID,
			DocumentName: m.DocumentName,
			Snippet:      snippet(m.Text),
		})
	}

	logger.InfoContext(ctx, "question answered", "candidates", len(matches), "used", len(filtered), "answer_length", len(answer))
	return QueryResult{
		Answer:  answer,
		Sources: sources,
	}, nil
}

// buildContext concatenates candidates into a context block, each prefixed
// with its source document and relevance percentage, best first.
func buildContext(matches []vectorindex.Match) string {
	var sb strings.Builder
	for i, m := range matches {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "[Document %d: %q (Relevance: %.1f%%)]\n%s", i+1, m.DocumentName, m.Score*100, m.Text)
	}
	return sb.String()
}

func buildUserMessage(question, contextBlock string) string {
	return fmt.Sprintf("CONTEXT FROM DOCUMENTS:\n%s\n\nQUESTION: %s", contextBlock, question)
}

// extractiveAnswer assembles a deterministic answer from the single
// highest-scoring chunk, used when the generation provider is unavailable.
func extractiveAnswer(matches []vectorindex.Match) string {
	top := matches[0]

	var sb strings.Builder
	fmt.Fprintf(&sb, "Based on the document %q, I found the following information:\n\n%s\n\n", top.DocumentName, top.Text)
	fmt.Fprintf(&sb, "This information was found in the document with a relevance score of %.1f%%.", top.Score*100)
	if len(matches) > 1 {
		fmt.Fprintf(&sb, "\n\nI also found %d other relevant documents that might contain additional information.", len(matches)-1)
	}
	return sb.String()
}

// snippet truncates text for display, appending an ellipsis when cut.
func snippet(text string) string {
	if len(text) <= snippetLength {
		return text
	}
	cut := snippetLength
	for cut > 0 && text[cut]&0xc0 == 0x80 {
		cut-- // don't split a UTF-8 sequence
	}
	return text[:cut] + "…"
}
