package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"rag-chatbot/internal/domain"
	"rag-chatbot/internal/repository"
)

type TurnAppender interface {
	AppendTurn(ctx context.Context, turn domain.Turn) error
}

// ConversationPersister stores one exchange as a user turn followed by an
// assistant turn sharing the request timestamp.
type ConversationPersister struct {
	store  TurnAppender
	logger *slog.Logger
}

func NewConversationPersister(store TurnAppender, logger *slog.Logger) (*ConversationPersister, error) {
	if store == nil {
		return nil, errors.New("usecase: turn appender must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ConversationPersister{store: store, logger: logger}, nil
}

// Persist writes the user turn, then the assistant turn. Failures are logged
// and swallowed. The assistant turn is skipped when the user turn could not be
// written so an answer is never stored without its question.
func (p *ConversationPersister) Persist(ctx context.Context, sessionID, userID, userMessage, response string, ts time.Time) {
	user := repository.NewTurn(sessionID, userID, domain.RoleUser, userMessage, ts)
	if err := p.store.AppendTurn(ctx, user); err != nil {
		p.logger.ErrorContext(ctx, "saving user turn failed", "session_id", sessionID, "err", err)
		return
	}
	assistant := repository.NewTurn(sessionID, userID, domain.RoleAssistant, response, ts)
	if err := p.store.AppendTurn(ctx, assistant); err != nil {
		p.logger.ErrorContext(ctx, "saving assistant turn failed", "session_id", sessionID, "err", err)
	}
}
