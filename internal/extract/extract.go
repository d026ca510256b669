// Package extract turns uploaded document bytes into plain text. Extraction is
// dispatched on the normalized file extension through a Registry; extensions
// without a registered Extractor get a placeholder naming the type and file.
package extract

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Extractor produces plain text from a document's bytes.
type Extractor interface {
	Extract(data []byte, filename string) (string, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(data []byte, filename string) (string, error)

func (f ExtractorFunc) Extract(data []byte, filename string) (string, error) {
	return f(data, filename)
}

// Registry maps normalized extensions (".txt") to extractors. It is built once
// at startup and only read afterwards.
type Registry struct {
	extractors map[string]Extractor
}

// NewRegistry returns a Registry with the plain-text extractor registered for
// .txt and .md. Every other type falls back to Placeholder.
func NewRegistry() *Registry {
	r := &Registry{extractors: make(map[string]Extractor)}
	r.Register(".txt", PlainText)
	r.Register(".md", PlainText)
	return r
}

// Register binds ext (".docx" or "docx", any case) to e, replacing any
// previous binding.
func (r *Registry) Register(ext string, e Extractor) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	r.extractors[ext] = e
}

// Registered reports whether filename's extension has a dedicated extractor.
func (r *Registry) Registered(filename string) bool {
	_, ok := r.extractors[Ext(filename)]
	return ok
}

// Extract returns the text for filename. When the registered extractor fails
// the placeholder is returned together with the error so the caller can log
// it and still index something.
func (r *Registry) Extract(data []byte, filename string) (string, error) {
	e, ok := r.extractors[Ext(filename)]
	if !ok {
		return Placeholder(filename), nil
	}
	text, err := e.Extract(data, filename)
	if err != nil {
		return Placeholder(filename), fmt.Errorf("extract: %s: %w", filename, err)
	}
	return text, nil
}

// Ext returns the lowercased extension of name including the dot.
func Ext(name string) string {
	return strings.ToLower(filepath.Ext(strings.TrimSpace(name)))
}

// FileType is Ext without the leading dot, used as the index file-type tag.
func FileType(name string) string {
	return strings.TrimPrefix(Ext(name), ".")
}

// Placeholder is the stand-in text for types without real extraction.
func Placeholder(filename string) string {
	kind := strings.ToUpper(FileType(filename))
	if kind == "" {
		kind = "UNKNOWN"
	}
	return fmt.Sprintf("[%s document: %s - text extraction not available for this file type]", kind, filename)
}

// PlainText decodes data as UTF-8, dropping invalid byte sequences.
var PlainText = ExtractorFunc(func(data []byte, _ string) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}
	return strings.ToValidUTF8(string(data), ""), nil
})
