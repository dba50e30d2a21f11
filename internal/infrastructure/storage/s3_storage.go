// Package storage adaptador S3 (AWS, MinIO o el storage S3-compatible del backend) para fotos de tickets.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/jhoicas/intelliservice-api/internal/application/ports"
	"github.com/jhoicas/intelliservice-api/internal/domain"
	"github.com/jhoicas/intelliservice-api/pkg/config"
)

var _ ports.PhotoStorage = (*S3Storage)(nil)

// objectAPI subconjunto del cliente S3 que se usa; permite fakes en tests.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Storage sube y descarga objetos de un bucket.
type S3Storage struct {
	client  objectAPI
	bucket  string
	baseURL string
}

// NewS3Storage crea el cliente. Con Endpoint vacío se usa AWS; con credenciales vacías, la cadena
// de credenciales por defecto del SDK.
func NewS3Storage(ctx context.Context, cfg config.StorageConfig) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage: bucket requerido")
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: configuración AWS: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return newS3Storage(client, cfg), nil
}

func newS3Storage(client objectAPI, cfg config.StorageConfig) *S3Storage {
	return &S3Storage{client: client, bucket: cfg.Bucket, baseURL: publicBase(cfg)}
}

// publicBase prefijo de las URLs públicas: PublicURL si está configurado, si no se deriva
// del endpoint (path-style) o del host virtual de AWS.
func publicBase(cfg config.StorageConfig) string {
	switch {
	case cfg.PublicURL != "":
		return strings.TrimRight(cfg.PublicURL, "/")
	case cfg.Endpoint != "":
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
}

// PublicURL URL pública de una clave.
func (s *S3Storage) PublicURL(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return s.baseURL + "/" + strings.Join(parts, "/")
}

// KeyFromURL inversa de PublicURL; false si la URL no pertenece al bucket.
func (s *S3Storage) KeyFromURL(publicURL string) (string, bool) {
	rest, ok := strings.CutPrefix(publicURL, s.baseURL+"/")
	if !ok || rest == "" {
		return "", false
	}
	key, err := url.PathUnescape(rest)
	if err != nil {
		return "", false
	}
	return key, true
}

// Upload sube el objeto y devuelve su URL pública.
func (s *S3Storage) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	in := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		in.ContentLength = aws.Int64(size)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("storage.Upload %s: %w", key, err)
	}
	return s.PublicURL(key), nil
}

// Download descarga un objeto del bucket por su URL pública.
func (s *S3Storage) Download(ctx context.Context, publicURL string) ([]byte, error) {
	key, ok := s.KeyFromURL(publicURL)
	if !ok {
		return nil, domain.ErrNotFound
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(s.bucket), Key: aws.String(key)})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("storage.Download %s: %w", key, err)
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}
