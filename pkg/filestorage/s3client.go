package filestorage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	simg "github.com/Nocturnalx/simg-client"
)

// S3Client is a FileStorage backed by AWS S3 or an S3 compatible service.
type S3Client struct {
	client *s3.Client
}

func NewS3Client(client *s3.Client) (*S3Client, error) {
	if client == nil {
		return nil, fmt.Errorf("failed to create S3Client: client is nil")
	}

	_, err := client.ListBuckets(context.TODO(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to AWS S3: %w", err)
	}

	return &S3Client{client: client}, nil
}

func (s *S3Client) GetClient() *s3.Client {
	return s.client
}

// MakeFolder creates the bucket backing folder and waits until it exists.
// A bucket already owned by the caller is not an error.
func (s *S3Client) MakeFolder(ctx context.Context, folder string) error {
	_, err := s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(folder)})
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			return nil
		}
		return fmt.Errorf("s3: create bucket %s: %w", folder, err)
	}

	return s3.NewBucketExistsWaiter(s.client).Wait(ctx, &s3.HeadBucketInput{Bucket: aws.String(folder)}, time.Minute)
}

func (s *S3Client) GetObject(ctx context.Context, folder string, filename string) (io.ReadCloser, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(folder),
		Key:    aws.String(filename),
	})
	if err != nil {
		return nil, s.translate("get", folder, filename, err)
	}

	return result.Body, nil
}

func (s *S3Client) PutObject(ctx context.Context, folder string, filename string, reader io.Reader) error {
	if reader == nil {
		return fmt.Errorf("reader is nil")
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(folder),
		Key:         aws.String(filename),
		Body:        reader,
		ContentType: aws.String("application/octet-stream"),
	})
	if err != nil {
		return s.translate("put", folder, filename, err)
	}

	return nil
}

// RemoveObject deletes folder/filename. S3 deletes are idempotent, so the
// object is headed first to report simg.ErrObjectNotFound.
func (s *S3Client) RemoveObject(ctx context.Context, folder string, filename string) error {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(folder),
		Key:    aws.String(filename),
	})
	if err != nil {
		return s.translate("remove", folder, filename, err)
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(folder),
		Key:    aws.String(filename),
	})
	if err != nil {
		return s.translate("remove", folder, filename, err)
	}

	return nil
}

func (s *S3Client) translate(op, folder, filename string, err error) error {
	var (
		noKey    *types.NoSuchKey
		notFound *types.NotFound
		noBucket *types.NoSuchBucket
		apiErr   smithy.APIError
	)

	var domain error
	switch {
	case errors.As(err, &noKey), errors.As(err, &notFound):
		domain = simg.ErrObjectNotFound
	case errors.As(err, &noBucket):
		domain = simg.ErrInvalidFolder
	case errors.As(err, &apiErr):
		domain = s3Codes[apiErr.ErrorCode()]
	}

	return wrap("s3", op, folder, filename, domain, err)
}
