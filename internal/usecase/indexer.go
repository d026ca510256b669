package usecase

import (
	"context"
	"log/slog"
	"time"

	"rag-chatbot/internal/domain"
	"rag-chatbot/internal/extract"
)

type TextExtractor interface {
	Extract(data []byte, filename string) (string, error)
}

type IndexWriter interface {
	Upsert(ctx context.Context, doc domain.IndexedDocument) error
}

// DocumentIndexer extracts text from a stored document and makes it
// searchable. Nothing it does can fail the upload: documents may exist in
// storage without ever becoming searchable.
type DocumentIndexer struct {
	extractor TextExtractor
	writer    IndexWriter
	logger    *slog.Logger
}

// NewDocumentIndexer accepts a nil writer, meaning search is not configured
// and indexing is skipped. A nil extractor falls back to the default
// registry.
func NewDocumentIndexer(extractor TextExtractor, writer IndexWriter, logger *slog.Logger) *DocumentIndexer {
	if extractor == nil {
		extractor = extract.NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentIndexer{extractor: extractor, writer: writer, logger: logger}
}

type IndexInput struct {
	DocumentID string
	Filename   string
	S3Key      string
	UserID     string
	Data       []byte
	UploadedAt time.Time
}

func (i *DocumentIndexer) Index(ctx context.Context, in IndexInput) {
	if i.writer == nil {
		i.logger.InfoContext(ctx, "search not configured, skipping indexing", "document_id", in.DocumentID)
		return
	}

	text, err := i.extractor.Extract(in.Data, in.Filename)
	if err != nil {
		// text is still the placeholder, so the document stays findable by name
		i.logger.WarnContext(ctx, "text extraction failed", "document_id", in.DocumentID, "filename", in.Filename, "err", err)
	}

	doc := domain.IndexedDocument{
		DocumentID:      in.DocumentID,
		Filename:        in.Filename,
		Title:           in.Filename,
		Content:         text,
		S3Key:           in.S3Key,
		UserID:          in.UserID,
		UploadTimestamp: in.UploadedAt.UTC(),
		FileType:        extract.FileType(in.Filename),
	}
	if err := i.writer.Upsert(ctx, doc); err != nil {
		i.logger.ErrorContext(ctx, "indexing document failed", "document_id", in.DocumentID, "err", err)
		return
	}
	i.logger.InfoContext(ctx, "document indexed", "document_id", in.DocumentID, "chars", len(text))
}
