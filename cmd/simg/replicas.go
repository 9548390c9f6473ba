package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/Nocturnalx/simg-client/internal/config"
	"github.com/Nocturnalx/simg-client/mirror"
	"github.com/Nocturnalx/simg-client/pkg/filestorage"
)

type folderMaker interface {
	MakeFolder(ctx context.Context, folder string) error
}

// openReplicas connects every enabled replica and creates its folders.
func openReplicas(ctx context.Context, cfg config.Replicas) ([]filestorage.FileStorage, error) {
	var replicas []filestorage.FileStorage

	add := func(name string, r config.Replica, storage filestorage.FileStorage, err error) error {
		if err != nil {
			return errors.Wrap(err, name+" connection failed")
		}
		maker := storage.(folderMaker)
		for _, folder := range r.Folders {
			if err := maker.MakeFolder(ctx, folder); err != nil {
				return errors.Wrapf(err, "%s: cannot create folder %s", name, folder)
			}
		}
		replicas = append(replicas, storage)
		return nil
	}

	if r := cfg.MinIO; r.Enabled {
		method := mirror.ConnectWithCredentials(r.AccessKey, r.SecretKey)
		if r.UseEnv {
			method = mirror.ConnectWithEnvCredentials()
		}
		storage, err := mirror.NewMinIOConnection(r.Endpoint, method, nil)
		if err := add("minio", r, storage, err); err != nil {
			return nil, err
		}
	}

	if r := cfg.S3; r.Enabled {
		method := mirror.ConnectWithCredentials(r.AccessKey, r.SecretKey)
		if r.UseEnv {
			method = mirror.ConnectWithEnvCredentials()
		}
		storage, err := mirror.NewS3Connection(r.Endpoint, method, r.Region)
		if err := add("s3", r, storage, err); err != nil {
			return nil, err
		}
	}

	if r := cfg.AzBlob; r.Enabled {
		method := mirror.ConnectWithCredentials(r.AccessKey, r.SecretKey)
		switch {
		case r.ConnectionString != "":
			method = mirror.ConnectWithConnectionString(r.ConnectionString)
		case r.UseEnv:
			method = mirror.ConnectWithEnvCredentials()
		}
		storage, err := mirror.NewAzBlobConnection(r.Endpoint, method)
		if err := add("azblob", r, storage, err); err != nil {
			return nil, err
		}
	}

	return replicas, nil
}
