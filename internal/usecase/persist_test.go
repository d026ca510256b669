package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rag-chatbot/internal/domain"
)

func TestConversationPersister_WritesUserThenAssistant(t *testing.T) {
	store := &fakeTurnStore{}
	p, err := NewConversationPersister(store, discardLogger())
	require.NoError(t, err)
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	p.Persist(context.Background(), "s1", "u1", "question", "answer", ts)

	require.Len(t, store.turns, 2)
	require.Equal(t, domain.RoleUser, store.turns[0].Role)
	require.Equal(t, "question", store.turns[0].Content)
	require.Equal(t, domain.RoleAssistant, store.turns[1].Role)
	require.Equal(t, "answer", store.turns[1].Content)
	require.NotEqual(t, store.turns[0].Timestamp, store.turns[1].Timestamp)
	require.Equal(t, ts.Add(30*24*time.Hour).Unix(), store.turns[0].TTL)
	require.Equal(t, "u1", store.turns[1].UserID)
}

func TestConversationPersister_UserWriteFailureSkipsAssistant(t *testing.T) {
	store := &fakeTurnStore{appendErr: errors.New("throttled"), failRole: domain.RoleUser}
	p, err := NewConversationPersister(store, discardLogger())
	require.NoError(t, err)

	p.Persist(context.Background(), "s1", "u1", "q", "a", time.Now())

	require.Empty(t, store.turns)
}

func TestConversationPersister_AssistantWriteFailureIsSwallowed(t *testing.T) {
	store := &fakeTurnStore{appendErr: errors.New("throttled"), failRole: domain.RoleAssistant}
	p, err := NewConversationPersister(store, discardLogger())
	require.NoError(t, err)

	require.NotPanics(t, func() {
		p.Persist(context.Background(), "s1", "u1", "q", "a", time.Now())
	})
	require.Len(t, store.turns, 1)
}
