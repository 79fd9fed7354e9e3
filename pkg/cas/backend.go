// Package cas implements the Content Addressable Storage backends and the
// CAS/ByteStream gRPC service handlers (spec §4.1). Backend is the
// pluggable storage contract; memory, disk, objectstore, redis and
// withcache provide five interchangeable implementations, composed by
// cmd/buildgrid's server from the configuration pkg/config parses.
package cas

import (
	"context"
	"io"

	"github.com/buildgrid/buildgrid-go/pkg/pb"
)

// Backend is the storage contract every CAS implementation satisfies.
// Blobs are identified purely by Digest; a correct Backend never needs to
// inspect blob contents beyond computing/validating the hash.
type Backend interface {
	// Has reports whether digest is present, without reading its data.
	Has(ctx context.Context, digest pb.Digest) (bool, error)
	// Get returns the full blob for digest, or bgerrors.NotFound.
	Get(ctx context.Context, digest pb.Digest) ([]byte, error)
	// Put stores data under digest, overwriting any existing blob with
	// the same digest (content-addressing makes this idempotent).
	Put(ctx context.Context, digest pb.Digest, data []byte) error
	// Delete removes digest's blob, if present.
	Delete(ctx context.Context, digest pb.Digest) error
	// MissingBlobs filters digests down to those Backend does not have,
	// in a single call so networked backends can batch the check.
	MissingBlobs(ctx context.Context, digests []pb.Digest) ([]pb.Digest, error)
	// Reader opens a streaming reader for digest's blob, for ByteStream
	// reads that should not buffer the full blob in memory.
	Reader(ctx context.Context, digest pb.Digest) (io.ReadCloser, error)
	// Writer opens a streaming writer that will be finalized under
	// digest once Close is called; callers validate the digest
	// out-of-band (see bytestream.go) before trusting the blob.
	Writer(ctx context.Context, digest pb.Digest) (io.WriteCloser, error)
}

// MaxBatchTotalSizeBytes bounds BatchUpdateBlobs/BatchReadBlobs requests,
// grounded on the original server's
// ContentAddressableStorageInstance.max_batch_total_size_bytes (2,000,000).
const MaxBatchTotalSizeBytes = 2_000_000
