package capabilities

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildgrid/buildgrid-go/pkg/pb"
)

func TestGetCapabilities(t *testing.T) {
	in := NewInstance("2.1")
	caps, err := in.GetCapabilities(context.Background(), &pb.GetCapabilitiesRequest{})
	require.NoError(t, err)
	assert.Equal(t, "2.1", caps.LowAPIVersion)
	assert.Equal(t, "2.1", caps.HighAPIVersion)
	assert.True(t, caps.ExecutionCapabilities.ExecEnabled)
	assert.Greater(t, caps.CacheCapabilities.MaxBatchTotalSizeBytes, int64(0))
}
