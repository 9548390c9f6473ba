package filestorage

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	simg "github.com/Nocturnalx/simg-client"
)

// AzBlobClient is a FileStorage backed by Azure Blob Storage. Folders are
// containers and filenames are blob names.
type AzBlobClient struct {
	client *azblob.Client
}

func NewAzBlobClient(client *azblob.Client) (*AzBlobClient, error) {
	if client == nil {
		return nil, fmt.Errorf("failed to create AzBlobClient: client is nil")
	}

	pager := client.NewListContainersPager(nil)
	_, err := pager.NextPage(context.TODO())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to azure blob: %w", err)
	}

	return &AzBlobClient{client: client}, nil
}

func (a *AzBlobClient) GetClient() *azblob.Client {
	return a.client
}

// MakeFolder creates the container backing folder.
func (a *AzBlobClient) MakeFolder(ctx context.Context, folder string) error {
	_, err := a.client.CreateContainer(ctx, folder, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return fmt.Errorf("azblob: create container %s: %w", folder, err)
	}
	return nil
}

func (a *AzBlobClient) GetObject(ctx context.Context, folder string, filename string) (io.ReadCloser, error) {
	get, err := a.client.DownloadStream(ctx, folder, filename, nil)
	if err != nil {
		return nil, a.translate("get", folder, filename, err)
	}

	return get.NewRetryReader(ctx, &azblob.RetryReaderOptions{}), nil
}

func (a *AzBlobClient) PutObject(ctx context.Context, folder, filename string, reader io.Reader) error {
	if reader == nil {
		return fmt.Errorf("reader is nil")
	}

	_, err := a.client.UploadStream(ctx, folder, filename, reader, nil)
	if err != nil {
		return a.translate("put", folder, filename, err)
	}

	return nil
}

func (a *AzBlobClient) RemoveObject(ctx context.Context, folder string, filename string) error {
	_, err := a.client.DeleteBlob(ctx, folder, filename, nil)
	if err != nil {
		return a.translate("remove", folder, filename, err)
	}

	return nil
}

func (a *AzBlobClient) translate(op, folder, filename string, err error) error {
	var domain error
	switch {
	case bloberror.HasCode(err, bloberror.BlobNotFound):
		domain = simg.ErrObjectNotFound
	case bloberror.HasCode(err, bloberror.ContainerNotFound, bloberror.InvalidResourceName):
		domain = simg.ErrInvalidFolder
	case bloberror.HasCode(err, bloberror.AuthenticationFailed, bloberror.AuthorizationFailure,
		bloberror.AuthorizationPermissionMismatch):
		domain = simg.ErrInvalidCredential
	}

	return wrap("azblob", op, folder, filename, domain, err)
}
