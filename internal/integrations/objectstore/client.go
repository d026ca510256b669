// Package objectstore persists raw uploaded documents in S3.
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// s3API is the minimal S3 interface required by Client.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Object is a document to store.
type Object struct {
	Key      string
	Body     []byte
	MimeType string
	Metadata map[string]string
}

// Client writes documents to a single bucket with server-side encryption.
type Client struct {
	api    s3API
	bucket string
}

// New creates a Client for bucket.
func New(api s3API, bucket string) (*Client, error) {
	if api == nil {
		return nil, errors.New("objectstore: api must not be nil")
	}
	if strings.TrimSpace(bucket) == "" {
		return nil, errors.New("objectstore: bucket must not be empty")
	}
	return &Client{api: api, bucket: bucket}, nil
}

// DocumentKey returns documents/{userID}/{documentID}/{filename}. The filename
// is reduced to its base name so it cannot escape the document prefix.
func DocumentKey(userID, documentID, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	return "documents/" + userID + "/" + documentID + "/" + name
}

// Put stores obj. Any failure is returned; callers treat it as fatal.
func (c *Client) Put(ctx context.Context, obj Object) error {
	if obj.Key == "" {
		return errors.New("objectstore: Put: key is required")
	}
	in := &s3.PutObjectInput{
		Bucket:               aws.String(c.bucket),
		Key:                  aws.String(obj.Key),
		Body:                 bytes.NewReader(obj.Body),
		ContentLength:        aws.Int64(int64(len(obj.Body))),
		ServerSideEncryption: types.ServerSideEncryptionAes256,
		Metadata:             obj.Metadata,
	}
	if obj.MimeType != "" {
		in.ContentType = aws.String(obj.MimeType)
	}
	if _, err := c.api.PutObject(ctx, in); err != nil {
		return fmt.Errorf("objectstore: Put %s: %w", obj.Key, err)
	}
	return nil
}
