package filestorage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
)

// MinioClient is a FileStorage backed by a MinIO server.
type MinioClient struct {
	client *minio.Client
}

// NewMinioClient wraps an existing MinIO client after checking that the
// server answers.
func NewMinioClient(client *minio.Client) (*MinioClient, error) {
	if client == nil {
		return nil, fmt.Errorf("failed to create MinIO client: client is nil")
	}

	_, err := client.ListBuckets(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MinIO: %w", err)
	}

	return &MinioClient{client: client}, nil
}

// GetClient returns the underlying MinIO client.
func (m *MinioClient) GetClient() *minio.Client {
	return m.client
}

// MakeFolder creates the bucket backing folder. A bucket already owned by the
// caller is not an error.
func (m *MinioClient) MakeFolder(ctx context.Context, folder string) error {
	err := m.client.MakeBucket(ctx, folder, minio.MakeBucketOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "BucketAlreadyOwnedByYou" {
			return nil
		}
		return fmt.Errorf("minio: make bucket %s: %w", folder, err)
	}
	return nil
}

// GetObject reads folder/filename. The object is stat'ed first because MinIO
// defers errors of GetObject to the first read.
func (m *MinioClient) GetObject(ctx context.Context, folder string, filename string) (io.ReadCloser, error) {
	object, err := m.client.GetObject(ctx, folder, filename, minio.GetObjectOptions{})
	if err != nil {
		return nil, m.translate("get", folder, filename, err)
	}

	if _, err := object.Stat(); err != nil {
		_ = object.Close()
		return nil, m.translate("get", folder, filename, err)
	}

	return object, nil
}

// PutObject stores reader as folder/filename.
func (m *MinioClient) PutObject(ctx context.Context, folder string, filename string, reader io.Reader) error {
	if reader == nil {
		return fmt.Errorf("reader is nil")
	}

	_, err := m.client.PutObject(ctx, folder, filename, reader, sizeOf(reader), minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return m.translate("put", folder, filename, err)
	}

	return nil
}

// RemoveObject deletes folder/filename. MinIO accepts deletes of missing keys,
// so the object is stat'ed first to report simg.ErrObjectNotFound.
func (m *MinioClient) RemoveObject(ctx context.Context, folder string, filename string) error {
	_, err := m.client.StatObject(ctx, folder, filename, minio.StatObjectOptions{})
	if err != nil {
		return m.translate("remove", folder, filename, err)
	}

	err = m.client.RemoveObject(ctx, folder, filename, minio.RemoveObjectOptions{})
	if err != nil {
		return m.translate("remove", folder, filename, err)
	}

	return nil
}

func (m *MinioClient) translate(op, folder, filename string, err error) error {
	resp := minio.ToErrorResponse(err)
	return wrap("minio", op, folder, filename, s3Codes[resp.Code], err)
}

// sizeOf returns the length of reader when it can be known without reading,
// and -1 otherwise.
func sizeOf(reader io.Reader) int64 {
	switch r := reader.(type) {
	case *bytes.Reader:
		return int64(r.Len())
	case *strings.Reader:
		return int64(r.Len())
	case *bytes.Buffer:
		return int64(r.Len())
	}

	seeker, ok := reader.(io.Seeker)
	if !ok {
		return -1
	}
	cur, err := seeker.Seek(0, io.SeekCurrent)
	if err != nil {
		return -1
	}
	end, err := seeker.Seek(0, io.SeekEnd)
	if err != nil {
		return -1
	}
	if _, err := seeker.Seek(cur, io.SeekStart); err != nil {
		return -1
	}
	return end - cur
}
