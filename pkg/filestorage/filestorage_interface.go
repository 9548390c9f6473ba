// Package filestorage wraps object storage SDKs behind the FileStorage
// interface so they can act as replicas of a simg folder tree.
//
// Folders map to buckets (MinIO, S3) or containers (Azure Blob) and filenames
// map to object keys. SDK failures are translated to the simg error taxonomy:
// a missing key is simg.ErrObjectNotFound, a missing bucket is
// simg.ErrInvalidFolder and a rejected credential is simg.ErrInvalidCredential.
package filestorage

import (
	"context"
	"io"
)

type FileStorage interface {
	GetObject(ctx context.Context, folder string, filename string) (io.ReadCloser, error)
	PutObject(ctx context.Context, folder string, filename string, reader io.Reader) error
	RemoveObject(ctx context.Context, folder string, filename string) error
}
