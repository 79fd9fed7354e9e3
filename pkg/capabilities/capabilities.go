// Package capabilities implements the REAPI Capabilities service: a
// static description of what this server instance supports, so clients
// can adapt their request shape (e.g. whether batch update size limits
// apply) before submitting work.
package capabilities

import (
	"context"

	"github.com/buildgrid/buildgrid-go/pkg/cas"
	"github.com/buildgrid/buildgrid-go/pkg/pb"
)

// Instance implements pb.CapabilitiesServer, reporting fixed capability
// values derived from this binary's build, not from runtime backend
// state — a Capabilities response describes what the server code can do,
// not what is currently configured.
type Instance struct {
	highAPIVersion string
	lowAPIVersion  string
}

// NewInstance returns an Instance reporting REAPI version apiVersion for
// both the low and high bound, since this server does not support a
// version range.
func NewInstance(apiVersion string) *Instance {
	return &Instance{highAPIVersion: apiVersion, lowAPIVersion: apiVersion}
}

func (in *Instance) GetCapabilities(ctx context.Context, req *pb.GetCapabilitiesRequest) (*pb.ServerCapabilities, error) {
	return &pb.ServerCapabilities{
		CacheCapabilities: &pb.CacheCapabilities{
			MaxBatchTotalSizeBytes: cas.MaxBatchTotalSizeBytes,
			SymlinkAbsolutePath:    "DISALLOWED",
		},
		ExecutionCapabilities: &pb.ExecutionCapabilities{
			ExecEnabled: true,
		},
		LowAPIVersion:  in.lowAPIVersion,
		HighAPIVersion: in.highAPIVersion,
	}, nil
}
