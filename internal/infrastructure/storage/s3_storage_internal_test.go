package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/intelliservice-api/internal/domain"
	"github.com/jhoicas/intelliservice-api/pkg/config"
)

type fakeS3 struct {
	objects map[string][]byte
	lastPut *s3.PutObjectInput
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	b, _ := io.ReadAll(in.Body)
	f.objects[aws.ToString(in.Key)] = b
	f.lastPut = in
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	b, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}, nil
}

func TestPublicBase(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com/public/ticket-photos",
		publicBase(config.StorageConfig{PublicURL: "https://cdn.example.com/public/ticket-photos/"}))
	assert.Equal(t, "http://minio:9000/ticket-photos",
		publicBase(config.StorageConfig{Endpoint: "http://minio:9000", Bucket: "ticket-photos"}))
	assert.Equal(t, "https://ticket-photos.s3.us-east-1.amazonaws.com",
		publicBase(config.StorageConfig{Bucket: "ticket-photos", Region: "us-east-1"}))
}

func TestUploadYDownload_IdaYVuelta(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}}
	s := newS3Storage(fake, config.StorageConfig{Bucket: "ticket-photos", Endpoint: "http://minio:9000"})

	u, err := s.Upload(context.Background(), "t-1/1700000000000.jpg", "image/jpeg", strings.NewReader("jpeg"), 4)
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000/ticket-photos/t-1/1700000000000.jpg", u)
	assert.Equal(t, "image/jpeg", aws.ToString(fake.lastPut.ContentType))

	b, err := s.Download(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(b))
}

func TestDownload_FueraDelBucketOInexistente(t *testing.T) {
	s := newS3Storage(&fakeS3{objects: map[string][]byte{}}, config.StorageConfig{Bucket: "b", Endpoint: "http://minio:9000"})

	_, err := s.Download(context.Background(), "https://otro.host/logo.png")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.Download(context.Background(), "http://minio:9000/b/no-existe.png")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
