package usecase

import (
	"context"
	"errors"
	"log/slog"

	"rag-chatbot/internal/domain"
)

const historyFetchLimit = 10

type HistoryReader interface {
	FetchHistory(ctx context.Context, sessionID string, limit int) ([]domain.Turn, error)
}

// SessionHistory reads the recent turns of a session. History is context for
// the prompt, not a correctness requirement, so read failures yield no turns.
type SessionHistory struct {
	store  HistoryReader
	logger *slog.Logger
}

func NewSessionHistory(store HistoryReader, logger *slog.Logger) (*SessionHistory, error) {
	if store == nil {
		return nil, errors.New("usecase: history reader must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionHistory{store: store, logger: logger}, nil
}

// Fetch returns at most the 10 most recent turns, newest first.
func (h *SessionHistory) Fetch(ctx context.Context, sessionID string) []domain.Turn {
	turns, err := h.store.FetchHistory(ctx, sessionID, historyFetchLimit)
	if err != nil {
		h.logger.ErrorContext(ctx, "history fetch failed", "session_id", sessionID, "err", err)
		return []domain.Turn{}
	}
	if len(turns) > historyFetchLimit {
		turns = turns[:historyFetchLimit]
	}
	return turns
}
