package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rag-chatbot/internal/extract"
)

func TestDocumentIndexer_SkipsWithoutWriter(t *testing.T) {
	i := NewDocumentIndexer(nil, nil, discardLogger())
	require.NotPanics(t, func() {
		i.Index(context.Background(), IndexInput{DocumentID: "d", Filename: "x.txt", Data: []byte("x")})
	})
}

func TestDocumentIndexer_PlaceholderForUnregisteredType(t *testing.T) {
	idx := &fakeIndex{}
	i := NewDocumentIndexer(extract.NewRegistry(), idx, discardLogger())
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("x", 3600))

	i.Index(context.Background(), IndexInput{
		DocumentID: "d1",
		Filename:   "report.pdf",
		S3Key:      "documents/u/d1/report.pdf",
		UserID:     "u",
		Data:       []byte("%PDF-1.4"),
		UploadedAt: at,
	})

	require.Len(t, idx.docs, 1)
	doc := idx.docs[0]
	require.Equal(t, extract.Placeholder("report.pdf"), doc.Content)
	require.Equal(t, "pdf", doc.FileType)
	require.Equal(t, time.UTC, doc.UploadTimestamp.Location())
	require.True(t, at.Equal(doc.UploadTimestamp))
}

func TestDocumentIndexer_ExtractorFailureIndexesPlaceholder(t *testing.T) {
	reg := extract.NewRegistry()
	reg.Register(".docx", extract.ExtractorFunc(func([]byte, string) (string, error) {
		return "", errors.New("corrupt archive")
	}))
	idx := &fakeIndex{}
	i := NewDocumentIndexer(reg, idx, discardLogger())

	i.Index(context.Background(), IndexInput{DocumentID: "d1", Filename: "a.docx", Data: []byte("PK")})

	require.Len(t, idx.docs, 1)
	require.Equal(t, extract.Placeholder("a.docx"), idx.docs[0].Content)
}
