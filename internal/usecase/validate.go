package usecase

import (
	"mime"
	"strings"

	"rag-chatbot/internal/extract"
)

// allowedTypes maps each accepted extension to its accepted MIME types. The
// first entry is the canonical type used when the caller declares none.
var allowedTypes = map[string][]string{
	".pdf":  {"application/pdf"},
	".txt":  {"text/plain"},
	".docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
	".doc":  {"application/msword"},
	".md":   {"text/markdown", "text/x-markdown", "text/plain"},
	".rtf":  {"application/rtf", "text/rtf"},
}

// DocumentValidator accepts a document only when both its extension and its
// declared MIME type are on the allow-list.
type DocumentValidator struct{}

// Validate reports whether filename and mimeType are acceptable and returns
// the media type to record. An empty mimeType resolves to the extension's
// canonical type; parameters such as charset are ignored.
func (DocumentValidator) Validate(filename, mimeType string) (string, bool) {
	types, ok := allowedTypes[extract.Ext(filename)]
	if !ok {
		return "", false
	}
	if strings.TrimSpace(mimeType) == "" {
		return types[0], true
	}
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return "", false
	}
	for _, t := range types {
		if mediaType == t {
			return mediaType, true
		}
	}
	return "", false
}
