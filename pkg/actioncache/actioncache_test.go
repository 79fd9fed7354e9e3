package actioncache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildgrid/buildgrid-go/pkg/bgerrors"
	"github.com/buildgrid/buildgrid-go/pkg/cas"
	"github.com/buildgrid/buildgrid-go/pkg/pb"
	"github.com/buildgrid/buildgrid-go/pkg/refcache"
)

func newTestInstance(t *testing.T, cacheFailedActions bool) *Instance {
	t.Helper()
	cache, err := refcache.New(8)
	require.NoError(t, err)
	backend, err := cas.NewMemoryBackend(1 << 20)
	require.NoError(t, err)
	return NewInstance(cache, backend, cacheFailedActions)
}

func newTestInstanceWithBackend(t *testing.T, backend cas.Backend, cacheFailedActions bool) *Instance {
	t.Helper()
	cache, err := refcache.New(8)
	require.NoError(t, err)
	return NewInstance(cache, backend, cacheFailedActions)
}

func TestInstance_UpdateThenGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	inst := newTestInstance(t, false)
	digest := pb.Digest{Hash: "h1", SizeBytes: 10}

	result := pb.ActionResult{ExitCode: 0}
	_, err := inst.UpdateActionResult(ctx, &pb.UpdateActionResultRequest{ActionDigest: digest, ActionResult: result})
	require.NoError(t, err)

	got, err := inst.GetActionResult(ctx, &pb.GetActionResultRequest{ActionDigest: digest})
	require.NoError(t, err)
	assert.Equal(t, int32(0), got.ExitCode)
}

func TestInstance_DoesNotCacheFailedActionsByDefault(t *testing.T) {
	ctx := context.Background()
	inst := newTestInstance(t, false)
	digest := pb.Digest{Hash: "h2", SizeBytes: 10}

	result := pb.ActionResult{ExitCode: 1}
	_, err := inst.UpdateActionResult(ctx, &pb.UpdateActionResultRequest{ActionDigest: digest, ActionResult: result})
	require.NoError(t, err)

	_, err = inst.GetActionResult(ctx, &pb.GetActionResultRequest{ActionDigest: digest})
	assert.True(t, bgerrors.Is(err, bgerrors.KindNotFound))
}

func TestInstance_CachesFailedActionsWhenEnabled(t *testing.T) {
	ctx := context.Background()
	inst := newTestInstance(t, true)
	digest := pb.Digest{Hash: "h3", SizeBytes: 10}

	result := pb.ActionResult{ExitCode: 1}
	_, err := inst.UpdateActionResult(ctx, &pb.UpdateActionResultRequest{ActionDigest: digest, ActionResult: result})
	require.NoError(t, err)

	got, err := inst.GetActionResult(ctx, &pb.GetActionResultRequest{ActionDigest: digest})
	require.NoError(t, err)
	assert.Equal(t, int32(1), got.ExitCode)
}

func TestWriteOnceInstance_RejectsSecondWrite(t *testing.T) {
	ctx := context.Background()
	inner := newTestInstance(t, false)
	wo := NewWriteOnceInstance(inner)
	digest := pb.Digest{Hash: "h4", SizeBytes: 10}

	_, err := wo.UpdateActionResult(ctx, &pb.UpdateActionResultRequest{ActionDigest: digest, ActionResult: pb.ActionResult{ExitCode: 0}})
	require.NoError(t, err)

	_, err = wo.UpdateActionResult(ctx, &pb.UpdateActionResultRequest{ActionDigest: digest, ActionResult: pb.ActionResult{ExitCode: 0}})
	assert.True(t, bgerrors.Is(err, bgerrors.KindUpdateNotAllowed))
}

// TestInstance_EvictsResultWithMissingOutputBlob covers spec §8 scenario
// 3: three cached results (R1 fully present, R2 missing its stdout blob,
// R3 missing an output-file blob) where only R1 should remain
// retrievable after CAS eviction.
func TestInstance_EvictsResultWithMissingOutputBlob(t *testing.T) {
	ctx := context.Background()
	backend, err := cas.NewMemoryBackend(1 << 20)
	require.NoError(t, err)
	inst := newTestInstanceWithBackend(t, backend, false)

	stdoutDigest := pb.Digest{Hash: "stdout1", SizeBytes: 3}
	require.NoError(t, backend.Put(ctx, stdoutDigest, []byte("out")))
	outputDigest := pb.Digest{Hash: "outfile1", SizeBytes: 3}
	require.NoError(t, backend.Put(ctx, outputDigest, []byte("bin")))

	r1Digest := pb.Digest{Hash: "r1", SizeBytes: 1}
	r1 := pb.ActionResult{
		ExitCode:     0,
		StdoutDigest: &stdoutDigest,
		OutputFiles:  []pb.OutputFile{{Path: "out.bin", Digest: outputDigest}},
	}
	_, err = inst.UpdateActionResult(ctx, &pb.UpdateActionResultRequest{ActionDigest: r1Digest, ActionResult: r1})
	require.NoError(t, err)

	// R2 references a stdout blob that was never stored in CAS.
	missingStdout := pb.Digest{Hash: "missing-stdout", SizeBytes: 3}
	r2Digest := pb.Digest{Hash: "r2", SizeBytes: 1}
	r2 := pb.ActionResult{ExitCode: 0, StdoutDigest: &missingStdout}
	_, err = inst.UpdateActionResult(ctx, &pb.UpdateActionResultRequest{ActionDigest: r2Digest, ActionResult: r2})
	require.NoError(t, err)

	// R3 references an output file blob that was never stored in CAS.
	missingOutput := pb.Digest{Hash: "missing-output", SizeBytes: 3}
	r3Digest := pb.Digest{Hash: "r3", SizeBytes: 1}
	r3 := pb.ActionResult{ExitCode: 0, OutputFiles: []pb.OutputFile{{Path: "x.bin", Digest: missingOutput}}}
	_, err = inst.UpdateActionResult(ctx, &pb.UpdateActionResultRequest{ActionDigest: r3Digest, ActionResult: r3})
	require.NoError(t, err)

	got, err := inst.GetActionResult(ctx, &pb.GetActionResultRequest{ActionDigest: r1Digest})
	require.NoError(t, err)
	assert.Equal(t, int32(0), got.ExitCode)

	_, err = inst.GetActionResult(ctx, &pb.GetActionResultRequest{ActionDigest: r2Digest})
	assert.True(t, bgerrors.Is(err, bgerrors.KindNotFound))

	_, err = inst.GetActionResult(ctx, &pb.GetActionResultRequest{ActionDigest: r3Digest})
	assert.True(t, bgerrors.Is(err, bgerrors.KindNotFound))
}
