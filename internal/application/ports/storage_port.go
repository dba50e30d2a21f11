package ports

import (
	"context"
	"io"
)

// PhotoStorage bucket de objetos del backend (fotos de tickets, logos).
// La aplicación no conoce el proveedor; el adaptador S3 vive en infrastructure/storage.
type PhotoStorage interface {
	// Upload sube el objeto y devuelve su URL pública.
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	// Download descarga un objeto del bucket a partir de su URL pública.
	// URLs fuera del bucket devuelven domain.ErrNotFound.
	Download(ctx context.Context, publicURL string) ([]byte, error)
}
