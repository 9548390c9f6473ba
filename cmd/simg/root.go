// Root of command-line argument parsing for the simg client.
package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	simg "github.com/Nocturnalx/simg-client"
	"github.com/Nocturnalx/simg-client/internal/config"
	"github.com/Nocturnalx/simg-client/mirror"
)

// store is the surface shared by *simg.Client and *mirror.MirrorClient.
type store interface {
	Send(ctx context.Context, cmd simg.Command) (json.RawMessage, error)
	Delete(ctx context.Context, cmd simg.Command) (string, error)
	Get(ctx context.Context, folder, filename string) ([]byte, error)
}

// app holds what the subcommands share once the root has been set up.
type app struct {
	cfgFile string
	verbose bool

	logger *zap.Logger
	store  store
	mirror *mirror.MirrorClient
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "simg",
		Short:         "Client for the simg object storage service",
		Long:          `Upload, delete and download objects stored in a simg service, optionally mirrored to MinIO, S3 or Azure Blob Storage replicas.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.teardown()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./simg.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log at debug level")

	rootCmd.AddCommand(newUploadCmd(a), newDeleteCmd(a), newGetCmd(a))
	return rootCmd
}

func (a *app) setup(ctx context.Context) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}

	if a.verbose {
		a.logger, err = zap.NewDevelopment()
	} else {
		a.logger, err = zap.NewProduction()
	}
	if err != nil {
		return errors.Wrap(err, "Failed to initialize logger")
	}

	client, err := simg.NewClient(cfg.ClientConfig(), simg.WithLogger(a.logger))
	if err != nil {
		return errors.Wrap(err, "Failed to create client")
	}
	a.store = client

	if !cfg.HasReplicas() {
		return nil
	}

	mode, err := cfg.Mode()
	if err != nil {
		return err
	}
	strategy, err := cfg.Strategy()
	if err != nil {
		return err
	}

	replicas, err := openReplicas(ctx, cfg.Replicas)
	if err != nil {
		return errors.Wrap(err, "Failed to connect replicas")
	}

	a.mirror, err = mirror.NewMirrorClient(client, mode, strategy, replicas...)
	if err != nil {
		return errors.Wrap(err, "Failed to create mirror")
	}
	a.mirror.SetLogger(a.logger)
	a.store = a.mirror

	a.logger.Debug("mirroring enabled", zap.Int("replicas", len(replicas)))
	return nil
}

func (a *app) teardown() {
	if a.mirror != nil {
		a.mirror.Wait()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// execute runs the command line with args, writing results to out.
func execute(ctx context.Context, args []string, out io.Writer) error {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)
	return rootCmd.ExecuteContext(ctx)
}
