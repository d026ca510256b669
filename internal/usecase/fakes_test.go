package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"rag-chatbot/internal/domain"
	"rag-chatbot/internal/integrations/objectstore"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeTurnStore is an in-memory history store returning turns newest first.
type fakeTurnStore struct {
	mu        sync.Mutex
	turns     []domain.Turn
	fetchErr  error
	appendErr error
	failRole  string
	lastLimit int
}

func (f *fakeTurnStore) FetchHistory(_ context.Context, sessionID string, limit int) ([]domain.Turn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLimit = limit
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	var out []domain.Turn
	for i := len(f.turns) - 1; i >= 0 && len(out) < limit; i-- {
		if f.turns[i].SessionID == sessionID {
			out = append(out, f.turns[i])
		}
	}
	return out, nil
}

func (f *fakeTurnStore) AppendTurn(_ context.Context, turn domain.Turn) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil && (f.failRole == "" || f.failRole == turn.Role) {
		return f.appendErr
	}
	f.turns = append(f.turns, turn)
	return nil
}

type fakeSearcher struct {
	hits     []domain.SearchHit
	err      error
	lastSize int
	queries  []string
}

func (f *fakeSearcher) Search(_ context.Context, query string, size int) ([]domain.SearchHit, error) {
	f.lastSize = size
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.hits, nil
}

type fakeGenerator struct {
	text    string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.text, f.err
}

type fakeObjects struct {
	err  error
	puts []objectstore.Object
}

func (f *fakeObjects) Put(_ context.Context, obj objectstore.Object) error {
	if f.err != nil {
		return f.err
	}
	f.puts = append(f.puts, obj)
	return nil
}

type fakeMetadata struct {
	err     error
	records []domain.DocumentRecord
}

func (f *fakeMetadata) PutDocument(_ context.Context, rec domain.DocumentRecord) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, rec)
	return nil
}

type fakeIndex struct {
	err  error
	docs []domain.IndexedDocument
}

func (f *fakeIndex) Upsert(_ context.Context, doc domain.IndexedDocument) error {
	if f.err != nil {
		return f.err
	}
	f.docs = append(f.docs, doc)
	return nil
}
