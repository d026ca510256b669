package domain

import "time"

const DocumentStatusUploaded = "uploaded"

// DocumentRecord is the upload metadata written once per accepted document.
type DocumentRecord struct {
	DocumentID string `dynamodbav:"document_id"`
	Filename   string `dynamodbav:"filename"`
	S3Key      string `dynamodbav:"s3_key"`
	UserID     string `dynamodbav:"user_id"`
	SessionID  string `dynamodbav:"session_id"`
	Size       int64  `dynamodbav:"size"`
	MimeType   string `dynamodbav:"mime_type"`
	Status     string `dynamodbav:"status"`
	CreatedAt  string `dynamodbav:"created_at"`
	TTL        int64  `dynamodbav:"ttl"`
}

// IndexedDocument is the searchable form of an uploaded document.
type IndexedDocument struct {
	DocumentID      string    `json:"document_id"`
	Filename        string    `json:"filename"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	S3Key           string    `json:"s3_key"`
	UserID          string    `json:"user_id"`
	UploadTimestamp time.Time `json:"upload_timestamp"`
	FileType        string    `json:"file_type"`
}

// SearchHit is a single retrieved passage.
type SearchHit struct {
	DocumentID string
	Title      string
	Content    string
	S3Key      string
}
