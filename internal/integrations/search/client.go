// Package search reads from and writes to the document search index. Queries
// are multi-field fuzzy matches; the index is created with a fixed mapping the
// first time a document is written.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"rag-chatbot/internal/domain"
)

const (
	DefaultIndex    = "documents"
	MaxExcerptChars = 500
	excerptEllipsis = "..."
)

// searchAPI is the minimal index backend required by Client.
type searchAPI interface {
	IndexExists(ctx context.Context, index string) (bool, error)
	CreateIndex(ctx context.Context, index string, body []byte) error
	IndexDocument(ctx context.Context, index, id string, body []byte) error
	Search(ctx context.Context, index string, body []byte) ([]json.RawMessage, error)
}

// Client runs queries and upserts against one index.
type Client struct {
	api   searchAPI
	index string

	ensureMu sync.Mutex
	ensured  bool
}

// New creates a Client for index (DefaultIndex when empty).
func New(api searchAPI, index string) (*Client, error) {
	if api == nil {
		return nil, errors.New("search: api must not be nil")
	}
	index = strings.TrimSpace(index)
	if index == "" {
		index = DefaultIndex
	}
	return &Client{api: api, index: index}, nil
}

var searchFields = []string{"content", "title", "filename"}

type hitSource struct {
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	Filename   string `json:"filename"`
	Content    string `json:"content"`
	S3Key      string `json:"s3_key"`
}

func searchBody(query string, size int) ([]byte, error) {
	return json.Marshal(map[string]any{
		"size": size,
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    searchFields,
				"fuzziness": "AUTO",
			},
		},
		"_source": []string{"document_id", "title", "filename", "content", "s3_key"},
	})
}

// Search returns at most size hits for query with content cut to
// MaxExcerptChars.
func (c *Client) Search(ctx context.Context, query string, size int) ([]domain.SearchHit, error) {
	body, err := searchBody(query, size)
	if err != nil {
		return nil, fmt.Errorf("search: marshal query: %w", err)
	}
	sources, err := c.api.Search(ctx, c.index, body)
	if err != nil {
		return nil, fmt.Errorf("search: query %s: %w", c.index, err)
	}

	hits := make([]domain.SearchHit, 0, len(sources))
	for _, raw := range sources {
		var src hitSource
		if err := json.Unmarshal(raw, &src); err != nil {
			return nil, fmt.Errorf("search: decode hit: %w", err)
		}
		title := src.Title
		if title == "" {
			title = src.Filename
		}
		hits = append(hits, domain.SearchHit{
			DocumentID: src.DocumentID,
			Title:      title,
			Content:    Excerpt(src.Content, MaxExcerptChars),
			S3Key:      src.S3Key,
		})
		if size > 0 && len(hits) == size {
			break
		}
	}
	return hits, nil
}

// Excerpt cuts s to n characters and appends an ellipsis when it was longer.
func Excerpt(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + excerptEllipsis
}
