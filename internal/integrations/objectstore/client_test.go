package objectstore

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	err      error
	lastIn   *s3.PutObjectInput
	lastBody []byte
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.lastIn = in
	if in.Body != nil {
		f.lastBody, _ = io.ReadAll(in.Body)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestNew_Validates(t *testing.T) {
	_, err := New(nil, "bucket")
	require.ErrorContains(t, err, "must not be nil")
	_, err = New(&fakeS3{}, " ")
	require.ErrorContains(t, err, "bucket")
}

func TestDocumentKey(t *testing.T) {
	require.Equal(t, "documents/u-1/d-1/notes.txt", DocumentKey("u-1", "d-1", "notes.txt"))
	require.Equal(t, "documents/u-1/d-1/passwd", DocumentKey("u-1", "d-1", "../../etc/passwd"))
	require.Equal(t, "documents/u-1/d-1/x.pdf", DocumentKey("u-1", "d-1", `C:\tmp\x.pdf`))
}

func TestPut_HappyPath(t *testing.T) {
	api := &fakeS3{}
	c, err := New(api, "docs-bucket")
	require.NoError(t, err)

	err = c.Put(context.Background(), Object{
		Key:      "documents/u/d/a.txt",
		Body:     []byte("hello"),
		MimeType: "text/plain",
		Metadata: map[string]string{"user-id": "u"},
	})
	require.NoError(t, err)
	require.Equal(t, "docs-bucket", *api.lastIn.Bucket)
	require.Equal(t, "documents/u/d/a.txt", *api.lastIn.Key)
	require.Equal(t, "text/plain", *api.lastIn.ContentType)
	require.Equal(t, types.ServerSideEncryptionAes256, api.lastIn.ServerSideEncryption)
	require.Equal(t, int64(5), *api.lastIn.ContentLength)
	require.Equal(t, "u", api.lastIn.Metadata["user-id"])
	require.Equal(t, []byte("hello"), api.lastBody)
}

func TestPut_Errors(t *testing.T) {
	c, err := New(&fakeS3{err: errors.New("AccessDenied")}, "b")
	require.NoError(t, err)

	err = c.Put(context.Background(), Object{})
	require.ErrorContains(t, err, "key is required")

	err = c.Put(context.Background(), Object{Key: "k", Body: []byte("x")})
	require.ErrorContains(t, err, "AccessDenied")
}
