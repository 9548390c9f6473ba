package filestorage_test

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/docker/go-connections/nat"
	"github.com/minio/minio-go/v7"
	miniocreds "github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/azurite"
	"github.com/testcontainers/testcontainers-go/modules/localstack"
	tcminio "github.com/testcontainers/testcontainers-go/modules/minio"

	simg "github.com/Nocturnalx/simg-client"
	"github.com/Nocturnalx/simg-client/pkg/filestorage"
)

const testFolder = "simg-folder"

var (
	minioContainer   *tcminio.MinioContainer
	s3Container      *localstack.LocalStackContainer
	azuriteContainer *azurite.AzuriteContainer

	minioStorage  *filestorage.MinioClient
	s3Storage     *filestorage.S3Client
	azblobStorage *filestorage.AzBlobClient
)

// TestMain starts MinIO, LocalStack and Azurite once for the package and
// terminates them after the run. With -short no container is started and the
// tests that need one are skipped.
func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()

	runMinIOContainer(ctx)
	runS3Container(ctx)
	runAzuriteContainer(ctx)

	code := m.Run()

	for _, c := range []testcontainers.Container{minioContainer, s3Container, azuriteContainer} {
		if err := testcontainers.TerminateContainer(c); err != nil {
			log.Printf("failed to terminate container: %s", err)
		}
	}
	os.Exit(code)
}

func requireContainers(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("replica tests need docker")
	}
}

// storages lists every replica backend under test, each with testFolder
// already created.
func storages(t *testing.T) map[string]filestorage.FileStorage {
	requireContainers(t)
	return map[string]filestorage.FileStorage{
		"minio":  minioStorage,
		"s3":     s3Storage,
		"azblob": azblobStorage,
	}
}

// =====================================================================================================================
// Constructors

// TestNewMinioClient_Nil verifies that a nil SDK client is rejected.
func TestNewMinioClient_Nil(t *testing.T) {
	client, err := filestorage.NewMinioClient(nil)

	require.Nil(t, client)
	assert.ErrorContains(t, err, "client is nil")
}

// TestNewS3Client_Nil verifies that a nil SDK client is rejected.
func TestNewS3Client_Nil(t *testing.T) {
	client, err := filestorage.NewS3Client(nil)

	require.Nil(t, client)
	assert.ErrorContains(t, err, "client is nil")
}

// TestNewAzBlobClient_Nil verifies that a nil SDK client is rejected.
func TestNewAzBlobClient_Nil(t *testing.T) {
	client, err := filestorage.NewAzBlobClient(nil)

	require.Nil(t, client)
	assert.ErrorContains(t, err, "client is nil")
}

// =====================================================================================================================
// Operations, run against every backend

// TestFileStorage_PutGet verifies that an object reads back byte for byte.
func TestFileStorage_PutGet(t *testing.T) {
	body := []byte{0x89, 'P', 'N', 'G', 0x00, 0xff, 0x10}

	for name, storage := range storages(t) {
		t.Run(name, func(t *testing.T) {
			filename := "put-get-" + name + ".png"

			err := storage.PutObject(context.TODO(), testFolder, filename, bytes.NewReader(body))
			require.NoError(t, err)

			assert.Equal(t, body, readObject(t, storage, testFolder, filename))
		})
	}
}

// TestFileStorage_Overwrite verifies that a second put replaces the object.
func TestFileStorage_Overwrite(t *testing.T) {
	for name, storage := range storages(t) {
		t.Run(name, func(t *testing.T) {
			filename := "overwrite-" + name + ".txt"

			require.NoError(t, storage.PutObject(context.TODO(), testFolder, filename, strings.NewReader("first")))
			require.NoError(t, storage.PutObject(context.TODO(), testFolder, filename, strings.NewReader("second")))

			assert.Equal(t, []byte("second"), readObject(t, storage, testFolder, filename))
		})
	}
}

// TestFileStorage_UnsizedReader verifies that a reader of unknown length is
// stored completely.
func TestFileStorage_UnsizedReader(t *testing.T) {
	for name, storage := range storages(t) {
		t.Run(name, func(t *testing.T) {
			filename := "unsized-" + name + ".txt"
			reader := io.MultiReader(strings.NewReader("un"), strings.NewReader("sized"))

			require.NoError(t, storage.PutObject(context.TODO(), testFolder, filename, reader))

			assert.Equal(t, []byte("unsized"), readObject(t, storage, testFolder, filename))
		})
	}
}

// TestFileStorage_PutNilReader verifies that a nil reader is refused before
// reaching the backend.
func TestFileStorage_PutNilReader(t *testing.T) {
	for name, storage := range storages(t) {
		t.Run(name, func(t *testing.T) {
			err := storage.PutObject(context.TODO(), testFolder, "nil-reader", nil)

			assert.ErrorContains(t, err, "reader is nil")
		})
	}
}

// TestFileStorage_GetMissingObject verifies that a missing key maps to
// simg.ErrObjectNotFound.
func TestFileStorage_GetMissingObject(t *testing.T) {
	for name, storage := range storages(t) {
		t.Run(name, func(t *testing.T) {
			obj, err := storage.GetObject(context.TODO(), testFolder, "does-not-exist")

			require.Nil(t, obj)
			require.ErrorIs(t, err, simg.ErrObjectNotFound)
			assert.ErrorIs(t, err, simg.ErrRemote)
		})
	}
}

// TestFileStorage_GetMissingFolder verifies that a missing bucket or container
// is a remote failure. S3 and Azure report it as simg.ErrInvalidFolder; MinIO
// answers the HEAD issued by GetObject without a body, so only the class is
// checked there.
func TestFileStorage_GetMissingFolder(t *testing.T) {
	for name, storage := range storages(t) {
		t.Run(name, func(t *testing.T) {
			obj, err := storage.GetObject(context.TODO(), "no-such-folder", "file.txt")

			require.Nil(t, obj)
			require.ErrorIs(t, err, simg.ErrRemote)
			if name != "minio" {
				assert.ErrorIs(t, err, simg.ErrInvalidFolder)
			}
		})
	}
}

// TestFileStorage_RemoveTwice verifies that the first remove succeeds and the
// second one reports simg.ErrObjectNotFound, matching the simg service.
func TestFileStorage_RemoveTwice(t *testing.T) {
	for name, storage := range storages(t) {
		t.Run(name, func(t *testing.T) {
			filename := "remove-twice-" + name + ".txt"
			require.NoError(t, storage.PutObject(context.TODO(), testFolder, filename, strings.NewReader("x")))

			require.NoError(t, storage.RemoveObject(context.TODO(), testFolder, filename))

			err := storage.RemoveObject(context.TODO(), testFolder, filename)
			assert.ErrorIs(t, err, simg.ErrObjectNotFound)

			_, err = storage.GetObject(context.TODO(), testFolder, filename)
			assert.ErrorIs(t, err, simg.ErrObjectNotFound)
		})
	}
}

// TestFileStorage_ErrorContext verifies that translated errors name the
// backend and the object.
func TestFileStorage_ErrorContext(t *testing.T) {
	for name, storage := range storages(t) {
		t.Run(name, func(t *testing.T) {
			_, err := storage.GetObject(context.TODO(), testFolder, "context-check")

			require.Error(t, err)
			assert.Contains(t, err.Error(), name+": get "+testFolder+"/context-check")
		})
	}
}

// =====================================================================================================================
// MakeFolder

// TestMinioClient_MakeFolder_Idempotent verifies that MinIO tolerates a bucket
// the caller already owns.
func TestMinioClient_MakeFolder_Idempotent(t *testing.T) {
	requireContainers(t)

	require.NoError(t, minioStorage.MakeFolder(context.TODO(), testFolder))

	exists, err := minioStorage.GetClient().BucketExists(context.TODO(), testFolder)
	require.NoError(t, err)
	assert.True(t, exists)
}

// TestMinioClient_MakeFolder_InvalidName verifies that a bucket name MinIO
// refuses is reported.
func TestMinioClient_MakeFolder_InvalidName(t *testing.T) {
	requireContainers(t)

	err := minioStorage.MakeFolder(context.TODO(), "Invalid_Bucket")

	assert.ErrorContains(t, err, "minio: make bucket Invalid_Bucket")
}

// TestS3Client_MakeFolder_Idempotent verifies that S3 tolerates a bucket the
// caller already owns.
func TestS3Client_MakeFolder_Idempotent(t *testing.T) {
	requireContainers(t)

	require.NoError(t, s3Storage.MakeFolder(context.TODO(), "s3-make-folder"))
	require.NoError(t, s3Storage.MakeFolder(context.TODO(), "s3-make-folder"))

	_, err := s3Storage.GetClient().HeadBucket(context.TODO(), &s3.HeadBucketInput{Bucket: aws.String("s3-make-folder")})
	assert.NoError(t, err)
}

// TestAzBlobClient_MakeFolder_Idempotent verifies that an existing container
// is not an error.
func TestAzBlobClient_MakeFolder_Idempotent(t *testing.T) {
	requireContainers(t)

	require.NoError(t, azblobStorage.MakeFolder(context.TODO(), "az-make-folder"))
	require.NoError(t, azblobStorage.MakeFolder(context.TODO(), "az-make-folder"))

	pager := azblobStorage.GetClient().NewListContainersPager(nil)
	page, err := pager.NextPage(context.TODO())
	require.NoError(t, err)

	found := false
	for _, c := range page.ContainerItems {
		if c.Name != nil && *c.Name == "az-make-folder" {
			found = true
		}
	}
	assert.True(t, found, "expected az-make-folder in the list of containers")
}

// =====================================================================================================================
// Helpers

func readObject(t *testing.T, storage filestorage.FileStorage, folder, filename string) []byte {
	t.Helper()

	obj, err := storage.GetObject(context.TODO(), folder, filename)
	require.NoError(t, err)
	defer obj.Close()

	data, err := io.ReadAll(obj)
	require.NoError(t, err)
	return data
}

func runMinIOContainer(ctx context.Context) {
	var err error
	minioContainer, err = tcminio.Run(ctx, "minio/minio:latest",
		tcminio.WithUsername("simgUser"),
		tcminio.WithPassword("simgPassword"),
	)
	if err != nil {
		log.Fatalf("failed to start MinIO container: %s", err)
	}

	endpoint, err := minioContainer.ConnectionString(ctx)
	if err != nil {
		log.Fatalf("failed to get MinIO endpoint: %s", err)
	}

	raw, err := minio.New(endpoint, &minio.Options{
		Creds:  miniocreds.NewStaticV4(minioContainer.Username, minioContainer.Password, ""),
		Secure: false,
	})
	if err != nil {
		log.Fatalf("failed to create MinIO client: %s", err)
	}

	minioStorage, err = filestorage.NewMinioClient(raw)
	if err != nil {
		log.Fatalf("failed to wrap MinIO client: %s", err)
	}
	if err := minioStorage.MakeFolder(ctx, testFolder); err != nil {
		log.Fatalf("failed to create MinIO bucket: %s", err)
	}
}

func runS3Container(ctx context.Context) {
	var err error
	s3Container, err = localstack.Run(ctx, "localstack/localstack:latest")
	if err != nil {
		log.Fatalf("failed to start LocalStack container: %s", err)
	}

	mappedPort, err := s3Container.MappedPort(ctx, nat.Port("4566/tcp"))
	if err != nil {
		log.Fatalf("failed to retrieve mapped port: %s", err)
	}

	host, err := s3Container.Host(ctx)
	if err != nil {
		log.Fatalf("failed to retrieve container host: %s", err)
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "")),
	)
	if err != nil {
		log.Fatalf("failed to load AWS configuration: %s", err)
	}

	raw := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("http://%s:%s", host, mappedPort.Port()))
		o.UsePathStyle = true
	})

	s3Storage, err = filestorage.NewS3Client(raw)
	if err != nil {
		log.Fatalf("failed to wrap S3 client: %s", err)
	}
	if err := s3Storage.MakeFolder(ctx, testFolder); err != nil {
		log.Fatalf("failed to create S3 bucket: %s", err)
	}
}

func runAzuriteContainer(ctx context.Context) {
	var err error
	azuriteContainer, err = azurite.Run(ctx,
		"mcr.microsoft.com/azure-storage/azurite:latest",
		azurite.WithInMemoryPersistence(64),
	)
	if err != nil {
		log.Fatalf("failed to start Azurite container: %s", err)
	}

	endpoint := fmt.Sprintf("%s/%s", azuriteContainer.MustServiceURL(ctx, azurite.BlobService), azurite.AccountName)
	connectionString := fmt.Sprintf("DefaultEndpointsProtocol=http;AccountName=%s;AccountKey=%s;BlobEndpoint=%s;",
		azurite.AccountName, azurite.AccountKey, endpoint)

	raw, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		log.Fatalf("failed to create Azurite client: %s", err)
	}

	azblobStorage, err = filestorage.NewAzBlobClient(raw)
	if err != nil {
		log.Fatalf("failed to wrap Azurite client: %s", err)
	}
	if err := azblobStorage.MakeFolder(ctx, testFolder); err != nil {
		log.Fatalf("failed to create Azurite container: %s", err)
	}
}
