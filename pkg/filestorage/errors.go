package filestorage

import (
	"fmt"

	simg "github.com/Nocturnalx/simg-client"
)

// s3Codes maps S3 error codes, also used by MinIO, to simg errors.
var s3Codes = map[string]error{
	"NoSuchKey":             simg.ErrObjectNotFound,
	"NotFound":              simg.ErrObjectNotFound,
	"NoSuchBucket":          simg.ErrInvalidFolder,
	"InvalidBucketName":     simg.ErrInvalidFolder,
	"AccessDenied":          simg.ErrInvalidCredential,
	"InvalidAccessKeyId":    simg.ErrInvalidCredential,
	"SignatureDoesNotMatch": simg.ErrInvalidCredential,
}

// wrap annotates err with the operation and object, placing domain first in
// the chain when the backend failure has a simg meaning.
func wrap(backend, op, folder, filename string, domain, err error) error {
	if domain == nil {
		return fmt.Errorf("%s: %s %s/%s: %w", backend, op, folder, filename, err)
	}
	return fmt.Errorf("%s: %s %s/%s: %w: %w", backend, op, folder, filename, domain, err)
}
