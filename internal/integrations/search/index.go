package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"rag-chatbot/internal/domain"
)

// indexMapping is the fixed schema of the document index.
var indexMapping = map[string]any{
	"mappings": map[string]any{
		"properties": map[string]any{
			"document_id":      map[string]string{"type": "keyword"},
			"filename":         map[string]string{"type": "text"},
			"title":            map[string]string{"type": "text"},
			"content":          map[string]string{"type": "text"},
			"s3_key":           map[string]string{"type": "keyword"},
			"user_id":          map[string]string{"type": "keyword"},
			"upload_timestamp": map[string]string{"type": "date"},
			"file_type":        map[string]string{"type": "keyword"},
		},
	},
}

// EnsureIndex creates the index with the fixed mapping unless it exists.
// Success is remembered for the life of the Client; failures are retried on
// the next call.
func (c *Client) EnsureIndex(ctx context.Context) error {
	c.ensureMu.Lock()
	defer c.ensureMu.Unlock()
	if c.ensured {
		return nil
	}

	exists, err := c.api.IndexExists(ctx, c.index)
	if err != nil {
		return fmt.Errorf("search: EnsureIndex exists %s: %w", c.index, err)
	}
	if !exists {
		body, err := json.Marshal(indexMapping)
		if err != nil {
			return fmt.Errorf("search: EnsureIndex marshal mapping: %w", err)
		}
		if err := c.api.CreateIndex(ctx, c.index, body); err != nil {
			return fmt.Errorf("search: EnsureIndex create %s: %w", c.index, err)
		}
	}
	c.ensured = true
	return nil
}

// Upsert writes doc keyed by its document id, creating the index first if
// needed. Re-indexing the same id replaces the previous record.
func (c *Client) Upsert(ctx context.Context, doc domain.IndexedDocument) error {
	if doc.DocumentID == "" {
		return errors.New("search: Upsert: document_id is required")
	}
	if err := c.EnsureIndex(ctx); err != nil {
		return err
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("search: Upsert marshal: %w", err)
	}
	if err := c.api.IndexDocument(ctx, c.index, doc.DocumentID, body); err != nil {
		return fmt.Errorf("search: Upsert %s: %w", doc.DocumentID, err)
	}
	return nil
}
