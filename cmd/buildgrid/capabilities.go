package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/buildgrid/buildgrid-go/pkg/pb"
)

var capabilitiesCmd = &cobra.Command{
	Use:   "capabilities",
	Short: "Query the remote server's capabilities",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, instanceName, err := dialClient(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		ctx := authContext(cmd, cmd.Context())
		caps, err := c.Capabilities.GetCapabilities(ctx, &pb.GetCapabilitiesRequest{InstanceName: instanceName})
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(caps, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format capabilities: %w", err)
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(capabilitiesCmd)
}
