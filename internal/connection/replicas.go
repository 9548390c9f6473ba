package connection

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/aws/aws-sdk-go-v2/aws"
	s3config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/minio/minio-go/v7"
	miniocreds "github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Nocturnalx/simg-client/pkg/filestorage"
)

// CreateMinioConnection connects to a MinIO server. An empty or "default"
// endpoint means localhost:9000; a scheme prefix is stripped and selects TLS
// when minioOptions is nil.
func CreateMinioConnection(endpoint string, config *AuthConfig, minioOptions *minio.Options) (*filestorage.MinioClient, error) {
	if config == nil {
		return nil, fmt.Errorf("AuthConfig cannot be nil")
	}

	secure := strings.HasPrefix(endpoint, "https://")
	endpoint = strings.TrimPrefix(strings.TrimPrefix(endpoint, "https://"), "http://")
	if endpoint == "" || endpoint == "default" {
		endpoint = "localhost:9000"
	}
	if minioOptions == nil {
		minioOptions = &minio.Options{Secure: secure}
	}

	switch config.GetConnectType() {
	case WithCredential:
		if config.GetAccessKey() == "" || config.GetSecretKey() == "" {
			return nil, fmt.Errorf("access key and/or secret key not set")
		}
		minioOptions.Creds = miniocreds.NewStaticV4(config.GetAccessKey(), config.GetSecretKey(), "")
	case WithEnv:
		accessKey := os.Getenv("MINIO_ACCESS_KEY")
		secretKey := os.Getenv("MINIO_SECRET_KEY")
		if accessKey == "" || secretKey == "" {
			return nil, fmt.Errorf("environment variables MINIO_ACCESS_KEY and/or MINIO_SECRET_KEY are not set")
		}
		minioOptions.Creds = miniocreds.NewStaticV4(accessKey, secretKey, "")
	default:
		return nil, fmt.Errorf("invalid connection type for MinIO: %s", config.GetConnectType())
	}

	client, err := minio.New(endpoint, minioOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return filestorage.NewMinioClient(client)
}

// CreateS3Connection connects to AWS S3, or to an S3 compatible service when
// endpoint is set. Path-style addressing is always used.
func CreateS3Connection(endpoint string, config *AuthConfig, awsRegion string) (*filestorage.S3Client, error) {
	if config == nil {
		return nil, fmt.Errorf("AuthConfig cannot be nil")
	}
	if endpoint == "default" {
		endpoint = ""
	}
	if awsRegion == "" {
		awsRegion = "us-east-1"
	}

	opts := []func(*s3config.LoadOptions) error{s3config.WithRegion(awsRegion)}

	switch config.GetConnectType() {
	case WithCredential:
		if config.GetAccessKey() == "" || config.GetSecretKey() == "" {
			return nil, fmt.Errorf("access key and/or secret key not set")
		}
		opts = append(opts, s3config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.GetAccessKey(), config.GetSecretKey(), "")))
	case WithEnv:
		if os.Getenv("AWS_ACCESS_KEY_ID") == "" || os.Getenv("AWS_SECRET_ACCESS_KEY") == "" {
			return nil, fmt.Errorf("environment variables AWS_ACCESS_KEY_ID and/or AWS_SECRET_ACCESS_KEY are not set")
		}
	default:
		return nil, fmt.Errorf("invalid connection type for AWS S3: %s", config.GetConnectType())
	}

	awsCfg, err := s3config.LoadDefaultConfig(context.TODO(), opts...)
	if err != nil {
		return nil, fmt.Errorf("cannot load the AWS configuration: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	return filestorage.NewS3Client(client)
}

// CreateAzBlobConnection connects to Azure Blob Storage. With credentials or
// environment variables an empty endpoint means the public account URL.
func CreateAzBlobConnection(endpoint string, config *AuthConfig) (*filestorage.AzBlobClient, error) {
	if config == nil {
		return nil, fmt.Errorf("AuthConfig cannot be nil")
	}

	var (
		client *azblob.Client
		err    error
	)

	switch config.GetConnectType() {
	case WithCredential:
		client, err = sharedKeyClient(endpoint, config.GetAccessKey(), config.GetSecretKey())
	case WithEnv:
		accountName, okName := os.LookupEnv("AZURE_STORAGE_ACCOUNT_NAME")
		accountKey, okKey := os.LookupEnv("AZURE_STORAGE_ACCOUNT_KEY")
		if !okName || !okKey {
			return nil, fmt.Errorf("environment variables AZURE_STORAGE_ACCOUNT_NAME and/or AZURE_STORAGE_ACCOUNT_KEY are not set")
		}
		client, err = sharedKeyClient(endpoint, accountName, accountKey)
	case WithConnectionString:
		client, err = azblob.NewClientFromConnectionString(config.GetConnectionString(), nil)
	default:
		return nil, fmt.Errorf("invalid connection type: %s", config.GetConnectType())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure Blob Storage client: %w", err)
	}

	return filestorage.NewAzBlobClient(client)
}

func sharedKeyClient(endpoint, accountName, accountKey string) (*azblob.Client, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create shared key credential: %w", err)
	}

	if endpoint == "" || endpoint == "default" {
		endpoint = fmt.Sprintf("https://%s.blob.core.windows.net", accountName)
	}

	return azblob.NewClientWithSharedKeyCredential(endpoint, credential, nil)
}
