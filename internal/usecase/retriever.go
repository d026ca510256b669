package usecase

import (
	"context"
	"log/slog"
	"strings"

	"rag-chatbot/internal/domain"
)

const (
	retrievalHitLimit = 5

	ContextUnconfigured = "Relevant context from knowledge base would be retrieved here."
	ContextNoResults    = "No relevant documents found in the knowledge base."
	ContextError        = "Error retrieving context from knowledge base."
)

type Searcher interface {
	Search(ctx context.Context, query string, size int) ([]domain.SearchHit, error)
}

// ContextRetriever turns a query into prompt context. It never fails: an
// unconfigured index, an empty result and a search error each produce their
// own fixed text.
type ContextRetriever struct {
	searcher Searcher
	logger   *slog.Logger
}

// NewContextRetriever accepts a nil searcher, meaning search is not
// configured.
func NewContextRetriever(searcher Searcher, logger *slog.Logger) *ContextRetriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContextRetriever{searcher: searcher, logger: logger}
}

func (r *ContextRetriever) Retrieve(ctx context.Context, query string) string {
	if r.searcher == nil {
		return ContextUnconfigured
	}
	hits, err := r.searcher.Search(ctx, query, retrievalHitLimit)
	if err != nil {
		r.logger.ErrorContext(ctx, "context retrieval failed", "err", err)
		return ContextError
	}
	if len(hits) == 0 {
		return ContextNoResults
	}
	if len(hits) > retrievalHitLimit {
		hits = hits[:retrievalHitLimit]
	}
	blocks := make([]string, 0, len(hits))
	for _, h := range hits {
		blocks = append(blocks, "Document: "+h.Title+"\nContent: "+h.Content)
	}
	return strings.Join(blocks, "\n\n")
}
