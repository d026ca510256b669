package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"rag-chatbot/internal/domain"
)

const documentTTL = 365 * 24 * time.Hour

// DocumentClient wraps the document metadata table keyed by document_id.
type DocumentClient struct {
	api       dynamodbAPI
	tableName string
}

// NewDocumentClient creates a DocumentClient for tableName.
func NewDocumentClient(api dynamodbAPI, tableName string) (*DocumentClient, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &DocumentClient{api: api, tableName: tableName}, nil
}

// NewDocumentRecord builds the metadata record for a freshly stored upload.
func NewDocumentRecord(documentID, filename, s3Key, userID, sessionID, mimeType string, size int64, ts time.Time) domain.DocumentRecord {
	return domain.DocumentRecord{
		DocumentID: documentID,
		Filename:   filename,
		S3Key:      s3Key,
		UserID:     userID,
		SessionID:  sessionID,
		Size:       size,
		MimeType:   mimeType,
		Status:     domain.DocumentStatusUploaded,
		CreatedAt:  ts.UTC().Format(time.RFC3339),
		TTL:        ts.Add(documentTTL).Unix(),
	}
}

// PutDocument writes rec once; an existing record with the same id is an error.
func (c *DocumentClient) PutDocument(ctx context.Context, rec domain.DocumentRecord) error {
	if rec.DocumentID == "" {
		return errors.New("repository: PutDocument: document_id is required")
	}
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("repository: PutDocument marshal: %w", err)
	}
	_, err = c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(document_id)"),
	})
	if err != nil {
		return fmt.Errorf("repository: PutDocument: %w", err)
	}
	return nil
}
