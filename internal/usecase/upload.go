package usecase

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"rag-chatbot/internal/domain"
	"rag-chatbot/internal/integrations/objectstore"
	"rag-chatbot/internal/repository"
)

const MaxUploadBytes = 10 << 20

var newDocumentID = func() string { return uuid.NewString() }

type ObjectWriter interface {
	Put(ctx context.Context, obj objectstore.Object) error
}

type MetadataWriter interface {
	PutDocument(ctx context.Context, rec domain.DocumentRecord) error
}

type UploadInput struct {
	Filename    string
	FileContent string // base64
	MimeType    string
	SessionID   string
	UserID      string
}

type UploadOutput struct {
	DocumentID string
	Filename   string
	Size       int64
	S3Key      string
	Timestamp  time.Time
}

// UploadService runs validate, store, record metadata, then extract and index.
// Only the object store write is fatal once validation has passed.
type UploadService struct {
	validator DocumentValidator
	objects   ObjectWriter
	metadata  MetadataWriter
	indexer   *DocumentIndexer
	logger    *slog.Logger
}

// NewUploadService requires objects and indexer. A nil metadata writer skips
// the metadata record.
func NewUploadService(objects ObjectWriter, metadata MetadataWriter, indexer *DocumentIndexer, logger *slog.Logger) (*UploadService, error) {
	if objects == nil {
		return nil, errors.New("usecase: object writer must not be nil")
	}
	if indexer == nil {
		return nil, errors.New("usecase: indexer must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadService{objects: objects, metadata: metadata, indexer: indexer, logger: logger}, nil
}

func (s *UploadService) Upload(ctx context.Context, in UploadInput) (UploadOutput, error) {
	in.SessionID, in.UserID = withIdentityDefaults(in.SessionID, in.UserID)

	if strings.TrimSpace(in.Filename) == "" || in.FileContent == "" {
		return UploadOutput{}, invalidInput("missing upload fields", MsgMissingUploadFields)
	}
	mimeType, ok := s.validator.Validate(in.Filename, in.MimeType)
	if !ok {
		return UploadOutput{}, invalidInput("unsupported file type "+in.Filename, MsgUnsupportedFileType)
	}
	data, err := base64.StdEncoding.DecodeString(in.FileContent)
	if err != nil {
		e := invalidInput("decode file content", MsgInvalidEncoding)
		e.Err = err
		return UploadOutput{}, e
	}
	if len(data) > MaxUploadBytes {
		return UploadOutput{}, invalidInput("file too large", MsgFileTooLarge)
	}

	documentID := newDocumentID()
	ts := nowFunc().UTC()
	key := objectstore.DocumentKey(in.UserID, documentID, in.Filename)

	err = s.objects.Put(ctx, objectstore.Object{
		Key:      key,
		Body:     data,
		MimeType: mimeType,
		Metadata: map[string]string{
			"user-id":           in.UserID,
			"session-id":        in.SessionID,
			"document-id":       documentID,
			"original-filename": in.Filename,
		},
	})
	if err != nil {
		return UploadOutput{}, internalError("store document", err)
	}

	size := int64(len(data))
	if s.metadata != nil {
		rec := repository.NewDocumentRecord(documentID, in.Filename, key, in.UserID, in.SessionID, mimeType, size, ts)
		if err := s.metadata.PutDocument(ctx, rec); err != nil {
			s.logger.ErrorContext(ctx, "saving document metadata failed", "document_id", documentID, "err", err)
		}
	} else {
		s.logger.WarnContext(ctx, "documents table not configured, skipping metadata", "document_id", documentID)
	}

	s.indexer.Index(ctx, IndexInput{
		DocumentID: documentID,
		Filename:   in.Filename,
		S3Key:      key,
		UserID:     in.UserID,
		Data:       data,
		UploadedAt: ts,
	})

	s.logger.InfoContext(ctx, "document uploaded", "document_id", documentID, "s3_key", key, "size", size)
	return UploadOutput{
		DocumentID: documentID,
		Filename:   in.Filename,
		Size:       size,
		S3Key:      key,
		Timestamp:  ts,
	}, nil
}
