package mirror

import (
	"fmt"

	"github.com/minio/minio-go/v7"

	"github.com/Nocturnalx/simg-client/internal/connection"
	"github.com/Nocturnalx/simg-client/pkg/filestorage"
)

type connectionFunc *connection.AuthConfig

// NewMinIOConnection connects a MinIO replica. minioOptions may be nil.
func NewMinIOConnection(endpoint string, method connectionFunc, minioOptions *minio.Options) (*filestorage.MinioClient, error) {
	authConfig := (*connection.AuthConfig)(method)
	if authConfig == nil {
		return nil, fmt.Errorf("connectionMethod cannot be nil")
	}

	switch authConfig.GetConnectType() {
	case connection.WithCredential, connection.WithEnv:
	default:
		return nil, fmt.Errorf("invalid connection method for MinIO; use: ConnectWithCredentials or ConnectWithEnvCredentials")
	}

	return connection.CreateMinioConnection(endpoint, authConfig, minioOptions)
}

// NewS3Connection connects an S3 replica. An empty endpoint means AWS itself.
func NewS3Connection(endpoint string, method connectionFunc, awsRegion string) (*filestorage.S3Client, error) {
	authConfig := (*connection.AuthConfig)(method)
	if authConfig == nil {
		return nil, fmt.Errorf("connectionMethod cannot be nil")
	}

	switch authConfig.GetConnectType() {
	case connection.WithCredential, connection.WithEnv:
	default:
		return nil, fmt.Errorf("invalid connection method for AWS S3; " +
			"use: ConnectWithCredentials or ConnectWithEnvCredentials")
	}

	return connection.CreateS3Connection(endpoint, authConfig, awsRegion)
}

// NewAzBlobConnection connects an Azure Blob Storage replica.
func NewAzBlobConnection(endpoint string, method connectionFunc) (*filestorage.AzBlobClient, error) {
	authConfig := (*connection.AuthConfig)(method)
	if authConfig == nil {
		return nil, fmt.Errorf("connectionMethod cannot be nil")
	}

	switch authConfig.GetConnectType() {
	case connection.WithCredential, connection.WithEnv, connection.WithConnectionString:
	default:
		return nil, fmt.Errorf("invalid connection method for Azure Blob; " +
			"use: ConnectWithCredentials, ConnectWithEnvCredentials or ConnectWithConnectionString")
	}

	return connection.CreateAzBlobConnection(endpoint, authConfig)
}

// ConnectWithCredentials uses an explicit access key (account name for Azure)
// and secret.
func ConnectWithCredentials(identity string, secretAccessKey string) connectionFunc {
	return connection.NewCredentialAuth(identity, secretAccessKey)
}

// ConnectWithEnvCredentials reads credentials from the backend's usual
// environment variables.
func ConnectWithEnvCredentials() connectionFunc {
	return connection.NewEnvAuth()
}

// ConnectWithConnectionString is only accepted by Azure Blob Storage.
func ConnectWithConnectionString(connectionString string) connectionFunc {
	return connection.NewConnectionStringAuth(connectionString)
}
