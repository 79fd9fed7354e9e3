package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/buildgrid/buildgrid-go/pkg/client"
)

var casCmd = &cobra.Command{
	Use:   "cas",
	Short: "Upload and download blobs from the content-addressable store",
}

var casUploadFileCmd = &cobra.Command{
	Use:   "upload-file <path>",
	Short: "Upload a single file to the CAS",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, instanceName, err := dialClient(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		path := args[0]
		digest, err := client.DigestFile(path)
		if err != nil {
			return err
		}
		ctx := authContext(cmd, cmd.Context())
		if err := c.UploadFile(ctx, instanceName, path, digest); err != nil {
			return err
		}
		fmt.Printf("%s/%d\n", digest.Hash, digest.SizeBytes)
		return nil
	},
}

var casUploadDirCmd = &cobra.Command{
	Use:   "upload-dir <path>",
	Short: "Upload a directory tree to the CAS",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, instanceName, err := dialClient(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		ctx := authContext(cmd, cmd.Context())
		digest, err := c.UploadDirectory(ctx, instanceName, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s/%d\n", digest.Hash, digest.SizeBytes)
		return nil
	},
}

var casDownloadFileCmd = &cobra.Command{
	Use:   "download-file <hash>/<size> <output-path>",
	Short: "Download a single blob from the CAS",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		digest, err := parseDigestArg(args[0])
		if err != nil {
			return err
		}
		c, instanceName, err := dialClient(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		ctx := authContext(cmd, cmd.Context())
		return c.DownloadFile(ctx, instanceName, args[1], digest)
	},
}

var casDownloadDirCmd = &cobra.Command{
	Use:   "download-dir <hash>/<size> <output-path>",
	Short: "Download a directory tree from the CAS",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		digest, err := parseDigestArg(args[0])
		if err != nil {
			return err
		}
		c, instanceName, err := dialClient(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		ctx := authContext(cmd, cmd.Context())
		return c.DownloadDirectory(ctx, instanceName, args[1], digest)
	},
}

func init() {
	casCmd.AddCommand(casUploadFileCmd)
	casCmd.AddCommand(casUploadDirCmd)
	casCmd.AddCommand(casDownloadFileCmd)
	casCmd.AddCommand(casDownloadDirCmd)
	rootCmd.AddCommand(casCmd)
}
