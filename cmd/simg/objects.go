package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	simg "github.com/Nocturnalx/simg-client"
)

func newUploadCmd(a *app) *cobra.Command {
	var (
		folder     string
		file       string
		name       string
		randomName bool
	)

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload a file to a folder.",
		Long:  `Upload sends the bytes of --file to --folder. The object is named after the file unless --name or --random-name is given. The service response is printed as returned.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := os.ReadFile(file)
			if err != nil {
				return errors.Wrap(err, "Cannot read file")
			}

			switch {
			case randomName:
				name = uuid.NewString() + filepath.Ext(file)
			case name == "":
				name = filepath.Base(file)
			}

			put, err := simg.NewPutObjectCommand(folder, name, body)
			if err != nil {
				return err
			}

			payload, err := a.store.Send(cmd.Context(), put)
			if len(payload) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), string(payload))
			}
			if err != nil {
				return errors.Wrap(err, "Upload failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&folder, "folder", "f", "", "destination folder")
	cmd.Flags().StringVar(&file, "file", "", "path of the file to upload")
	cmd.Flags().StringVarP(&name, "name", "n", "", "object name (default is the file's base name)")
	cmd.Flags().BoolVar(&randomName, "random-name", false, "name the object with a random UUID, keeping the file extension")
	cmd.MarkFlagRequired("folder")
	cmd.MarkFlagRequired("file")
	cmd.MarkFlagsMutuallyExclusive("name", "random-name")

	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	var folder, name string

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete an object.",
		RunE: func(cmd *cobra.Command, args []string) error {
			del, err := simg.NewDeleteObjectCommand(folder, name)
			if err != nil {
				return err
			}

			filename, err := a.store.Delete(cmd.Context(), del)
			if filename != "" {
				fmt.Fprintln(cmd.OutOrStdout(), filename)
			}
			if err != nil {
				return errors.Wrap(err, "Delete failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&folder, "folder", "f", "", "folder of the object")
	cmd.Flags().StringVarP(&name, "name", "n", "", "object name")
	cmd.MarkFlagRequired("folder")
	cmd.MarkFlagRequired("name")

	return cmd
}

func newGetCmd(a *app) *cobra.Command {
	var folder, name, out string

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Download an object.",
		Long:  `Get writes the bytes of an object to --out, or to standard output when --out is not set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.store.Get(cmd.Context(), folder, name)
			if err != nil {
				return errors.Wrap(err, "Download failed")
			}

			if out == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return errors.Wrap(err, "Cannot write output file")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&folder, "folder", "f", "", "folder of the object")
	cmd.Flags().StringVarP(&name, "name", "n", "", "object name")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default is standard output)")
	cmd.MarkFlagRequired("folder")
	cmd.MarkFlagRequired("name")

	return cmd
}
