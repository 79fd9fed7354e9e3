// Package client wraps the generated BuildGrid gRPC clients for CLI use,
// adapted from the teacher repo's pkg/client: a thin *grpc.ClientConn
// holder with mTLS dialing, simplified to plain file-based credentials
// since BuildGrid has no join-token certificate-request flow (see
// pkg/security's note on why the teacher's CA machinery was dropped).
package client

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/buildgrid/buildgrid-go/pkg/pb"
	"github.com/buildgrid/buildgrid-go/pkg/security"
)

// Client bundles a dialed connection with every service stub a CLI
// command might need.
type Client struct {
	conn *grpc.ClientConn

	Execution    pb.ExecutionClient
	CAS          pb.ContentAddressableStorageClient
	ActionCache  pb.ActionCacheClient
	ByteStream   pb.ByteStreamClient
	Bots         pb.BotsClient
	Capabilities pb.CapabilitiesClient
	Operations   pb.OperationsClient
}

// Options configures how New dials addr.
type Options struct {
	Insecure bool // skip TLS entirely, for local/dev use
	security.ClientConfig
	DialTimeout time.Duration
}

// New dials addr and returns a Client wrapping every service stub.
func New(addr string, opts Options) (*Client, error) {
	dialOpts := []grpc.DialOption{grpc.WithBlock()}

	if opts.Insecure {
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	} else {
		tlsConfig, err := security.ClientTLSConfig(opts.ClientConfig)
		if err != nil {
			return nil, fmt.Errorf("client: failed to build TLS config: %w", err)
		}
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(credentials.NewTLS(tlsConfig)))
	}

	timeout := opts.DialTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	conn, err := grpc.DialContext(ctx, addr, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("client: failed to dial %s: %w", addr, err)
	}

	return &Client{
		conn:         conn,
		Execution:    pb.NewExecutionClient(conn),
		CAS:          pb.NewContentAddressableStorageClient(conn),
		ActionCache:  pb.NewActionCacheClient(conn),
		ByteStream:   pb.NewByteStreamClient(conn),
		Bots:         pb.NewBotsClient(conn),
		Capabilities: pb.NewCapabilitiesClient(conn),
		Operations:   pb.NewOperationsClient(conn),
	}, nil
}

// Close tears down the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
