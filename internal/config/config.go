// Package config loads client and replica settings from a config file and
// SIMG_* environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	simg "github.com/Nocturnalx/simg-client"
	"github.com/Nocturnalx/simg-client/mirror"
)

// Replica describes one object store kept in sync with the simg service.
// A replica is used only when Enabled is set. With UseEnv the backend's usual
// credential variables are read instead of AccessKey and SecretKey. Folders
// are created on the replica before use.
type Replica struct {
	Enabled          bool     `mapstructure:"enabled"`
	Endpoint         string   `mapstructure:"endpoint"`
	AccessKey        string   `mapstructure:"access_key"`
	SecretKey        string   `mapstructure:"secret_key"`
	ConnectionString string   `mapstructure:"connection_string"`
	Region           string   `mapstructure:"region"`
	UseEnv           bool     `mapstructure:"use_env"`
	Folders          []string `mapstructure:"folders"`
}

type Replicas struct {
	MinIO  Replica `mapstructure:"minio"`
	S3     Replica `mapstructure:"s3"`
	AzBlob Replica `mapstructure:"azblob"`
}

type Config struct {
	BaseURL         string   `mapstructure:"base_url"`
	APIKey          string   `mapstructure:"api_key"`
	ReplicationMode string   `mapstructure:"replication_mode"`
	ReadStrategy    string   `mapstructure:"read_strategy"`
	Replicas        Replicas `mapstructure:"replicas"`
}

var keys = []string{
	"base_url", "api_key", "replication_mode", "read_strategy",
}

var replicaKeys = []string{
	"enabled", "endpoint", "access_key", "secret_key", "connection_string", "region", "use_env", "folders",
}

// Load reads path when it is not empty, otherwise ./simg.yaml or
// $HOME/.simg/simg.yaml if either exists. Environment variables override the
// file: SIMG_BASE_URL, SIMG_API_KEY, SIMG_REPLICAS_MINIO_ENDPOINT and so on.
func Load(path string) (*Config, error) {
	v := viper.New()

	for _, k := range keys {
		v.SetDefault(k, "")
	}
	v.SetDefault("replication_mode", "sync")
	v.SetDefault("read_strategy", "primary_first")
	for _, backend := range []string{"minio", "s3", "azblob"} {
		for _, k := range replicaKeys {
			key := "replicas." + backend + "." + k
			switch k {
			case "enabled", "use_env":
				v.SetDefault(key, false)
			case "folders":
				v.SetDefault(key, []string{})
			default:
				v.SetDefault(key, "")
			}
		}
	}

	v.SetEnvPrefix("SIMG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, "Failed to load config")
		}
	} else {
		v.SetConfigName("simg")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.simg")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.Wrap(err, "Failed to load config")
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "Failed to decode config")
	}
	return cfg, nil
}

// ClientConfig returns the settings of the primary simg client.
func (c *Config) ClientConfig() simg.ClientConfig {
	return simg.ClientConfig{BaseURL: c.BaseURL, APIKey: c.APIKey}
}

// Mode parses ReplicationMode: "sync" or "async".
func (c *Config) Mode() (mirror.ReplicationMode, error) {
	switch strings.ToLower(c.ReplicationMode) {
	case "", "sync":
		return mirror.SYNC_REPLICATION, nil
	case "async":
		return mirror.ASYNC_REPLICATION, nil
	}
	return 0, fmt.Errorf("unknown replication_mode %q; use sync or async", c.ReplicationMode)
}

// Strategy parses ReadStrategy: "primary_first" or "round_robin".
func (c *Config) Strategy() (mirror.ReadStrategy, error) {
	switch strings.ToLower(c.ReadStrategy) {
	case "", "primary_first":
		return mirror.READ_PRIMARY_FIRST, nil
	case "round_robin":
		return mirror.ROUND_ROBIN, nil
	}
	return 0, fmt.Errorf("unknown read_strategy %q; use primary_first or round_robin", c.ReadStrategy)
}

// HasReplicas reports whether any replica is enabled.
func (c *Config) HasReplicas() bool {
	return c.Replicas.MinIO.Enabled || c.Replicas.S3.Enabled || c.Replicas.AzBlob.Enabled
}
