package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/buildgrid/buildgrid-go/pkg/pb"
)

var executeCmd = &cobra.Command{
	Use:   "execute",
	Short: "Submit or inspect Executions",
}

var executeDummyCmd = &cobra.Command{
	Use:   "dummy",
	Short: "Submit a trivial no-input Action and stream its Operation updates",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, instanceName, err := dialClient(cmd)
		if err != nil {
			return err
		}
		defer c.Close()
		ctx := authContext(cmd, cmd.Context())

		emptyDir, err := json.Marshal(&pb.Directory{})
		if err != nil {
			return err
		}
		rootDigest, err := c.UploadBytes(ctx, instanceName, emptyDir)
		if err != nil {
			return fmt.Errorf("failed to upload empty input root: %w", err)
		}

		command, err := json.Marshal(&pb.Command{Arguments: []string{"true"}})
		if err != nil {
			return err
		}
		commandDigest, err := c.UploadBytes(ctx, instanceName, command)
		if err != nil {
			return fmt.Errorf("failed to upload command: %w", err)
		}

		action, err := json.Marshal(&pb.Action{
			CommandDigest:   commandDigest,
			InputRootDigest: rootDigest,
		})
		if err != nil {
			return err
		}
		actionDigest, err := c.UploadBytes(ctx, instanceName, action)
		if err != nil {
			return fmt.Errorf("failed to upload action: %w", err)
		}

		stream, err := c.Execution.Execute(ctx, &pb.ExecuteRequest{
			InstanceName: instanceName,
			ActionDigest: actionDigest,
		})
		if err != nil {
			return fmt.Errorf("failed to submit action: %w", err)
		}
		return streamOperations(stream)
	},
}

var executeStatusCmd = &cobra.Command{
	Use:   "status <operation-name>",
	Short: "Attach to an in-flight Operation and stream its updates",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := dialClient(cmd)
		if err != nil {
			return err
		}
		defer c.Close()
		ctx := authContext(cmd, cmd.Context())

		stream, err := c.Execution.WaitExecution(ctx, &pb.WaitExecutionRequest{Name: args[0]})
		if err != nil {
			return err
		}
		return streamOperations(stream)
	},
}

var executeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known Operations",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := dialClient(cmd)
		if err != nil {
			return err
		}
		defer c.Close()
		ctx := authContext(cmd, cmd.Context())

		resp, err := c.Operations.ListOperations(ctx, &pb.ListOperationsRequest{})
		if err != nil {
			return err
		}
		if len(resp.Operations) == 0 {
			fmt.Println("(no operations)")
			return nil
		}
		for _, op := range resp.Operations {
			printOperation(op)
		}
		return nil
	},
}

func init() {
	executeCmd.AddCommand(executeDummyCmd)
	executeCmd.AddCommand(executeStatusCmd)
	executeCmd.AddCommand(executeListCmd)
	rootCmd.AddCommand(executeCmd)
}

func streamOperations(stream pb.ExecutionClient_ExecuteClient) error {
	for {
		op, err := stream.Recv()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		printOperation(op)
		if op.Done {
			return nil
		}
	}
}

func printOperation(op *pb.Operation) {
	out, err := json.MarshalIndent(op, "", "  ")
	if err != nil {
		fmt.Printf("<unprintable operation %s>\n", op.Name)
		return
	}
	fmt.Println(string(out))
}
