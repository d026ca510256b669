package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"rag-chatbot/internal/domain"
	"rag-chatbot/internal/sanitize"
)

const DefaultUserID = "anonymous"

var (
	nowFunc      = time.Now
	newSessionID = func() string { return uuid.NewString() }
)

// withIdentityDefaults fills a missing session id with a fresh one and a
// missing user id with DefaultUserID.
func withIdentityDefaults(sessionID, userID string) (string, string) {
	if strings.TrimSpace(sessionID) == "" {
		sessionID = newSessionID()
	}
	if strings.TrimSpace(userID) == "" {
		userID = DefaultUserID
	}
	return sessionID, userID
}

type ChatInput struct {
	Message   string
	SessionID string
	UserID    string
}

type ChatOutput struct {
	Response  string
	SessionID string
	Timestamp time.Time
}

// ChatService answers one message: sanitize, gather history and context
// concurrently, assemble the prompt, generate, then persist the exchange.
type ChatService struct {
	history   *SessionHistory
	retriever *ContextRetriever
	generator *GenerationClient
	persister *ConversationPersister
	logger    *slog.Logger
}

func NewChatService(history *SessionHistory, retriever *ContextRetriever, generator *GenerationClient, persister *ConversationPersister, logger *slog.Logger) (*ChatService, error) {
	if history == nil {
		return nil, errors.New("usecase: history must not be nil")
	}
	if retriever == nil {
		return nil, errors.New("usecase: retriever must not be nil")
	}
	if generator == nil {
		return nil, errors.New("usecase: generator must not be nil")
	}
	if persister == nil {
		return nil, errors.New("usecase: persister must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatService{
		history:   history,
		retriever: retriever,
		generator: generator,
		persister: persister,
		logger:    logger,
	}, nil
}

// Chat returns an INVALID_INPUT Error when the message is blank before or
// after sanitizing. Every dependency failure past that point is absorbed, so
// a valid message always yields a response.
func (s *ChatService) Chat(ctx context.Context, in ChatInput) (ChatOutput, error) {
	sessionID, userID := withIdentityDefaults(in.SessionID, in.UserID)
	if strings.TrimSpace(in.Message) == "" {
		return ChatOutput{SessionID: sessionID}, invalidInput("empty message", MsgEmptyMessage)
	}
	message := sanitize.Text(in.Message)
	if message == "" {
		return ChatOutput{SessionID: sessionID}, invalidInput("message empty after sanitizing", MsgEmptyMessage)
	}

	var (
		history   []domain.Turn
		retrieved string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		history = s.history.Fetch(gctx, sessionID)
		return nil
	})
	g.Go(func() error {
		retrieved = s.retriever.Retrieve(gctx, message)
		return nil
	})
	_ = g.Wait() // both branches absorb their own failures

	prompt := AssemblePrompt(message, retrieved, history)
	response := s.generator.Generate(ctx, prompt)

	ts := nowFunc().UTC()
	s.persister.Persist(ctx, sessionID, userID, message, response, ts)

	s.logger.InfoContext(ctx, "chat answered", "session_id", sessionID, "history_turns", len(history))
	return ChatOutput{Response: response, SessionID: sessionID, Timestamp: ts}, nil
}
