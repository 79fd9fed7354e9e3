package cas

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/buildgrid/buildgrid-go/pkg/bgerrors"
	"github.com/buildgrid/buildgrid-go/pkg/pb"
)

// ReadBlockSize bounds the size of a single ReadResponse chunk, grounded
// on the original server's ByteStreamInstance.BLOCK_SIZE (1 MiB).
const ReadBlockSize = 1 * 1024 * 1024

// resourceName holds the parsed components of a ByteStream resource path.
// Read paths: "[{instance}/]blobs/{hash}/{size}". Write paths:
// "[{instance}/]uploads/{uuid}/blobs/{hash}/{size}". The instance prefix
// is optional; without it InstanceName is "".
type resourceName struct {
	InstanceName string
	UUID         string
	Digest       pb.Digest
	IsUpload     bool
}

// ParseResourceName validates and decomposes a ByteStream resource name.
func ParseResourceName(name string) (*resourceName, error) {
	parts := strings.Split(name, "/")
	blobsIdx := -1
	for i, p := range parts {
		if p == "blobs" {
			blobsIdx = i
			break
		}
	}
	if blobsIdx < 0 || blobsIdx+2 >= len(parts) {
		return nil, bgerrors.InvalidArgument("malformed resource name: " + name)
	}

	isUpload := false
	for _, p := range parts[:blobsIdx] {
		if p == "uploads" {
			isUpload = true
			break
		}
	}

	instanceName := strings.Join(parts[:blobsIdx], "/")
	if isUpload {
		// strip "uploads/{uuid}" from the instance-name prefix.
		for i, p := range parts {
			if p == "uploads" {
				if i+1 >= len(parts) {
					return nil, bgerrors.InvalidArgument("malformed resource name: " + name)
				}
				instanceName = strings.Join(parts[:i], "/")
				uuidPart := parts[i+1]
				hash := parts[blobsIdx+1]
				sizeStr := parts[blobsIdx+2]
				size, err := strconv.ParseInt(sizeStr, 10, 64)
				if err != nil {
					return nil, bgerrors.InvalidArgument("malformed digest size in resource name: " + name)
				}
				if err := validateHash(hash); err != nil {
					return nil, err
				}
				return &resourceName{
					InstanceName: instanceName,
					UUID:         uuidPart,
					Digest:       pb.Digest{Hash: hash, SizeBytes: size},
					IsUpload:     true,
				}, nil
			}
		}
	}

	hash := parts[blobsIdx+1]
	sizeStr := parts[blobsIdx+2]
	size, err := strconv.ParseInt(sizeStr, 10, 64)
	if err != nil {
		return nil, bgerrors.InvalidArgument("malformed digest size in resource name: " + name)
	}
	if err := validateHash(hash); err != nil {
		return nil, err
	}
	return &resourceName{
		InstanceName: instanceName,
		Digest:       pb.Digest{Hash: hash, SizeBytes: size},
	}, nil
}

func validateHash(hash string) error {
	if len(hash) != hex.EncodedLen(sha256.Size) {
		return bgerrors.InvalidArgument("digest hash has wrong length: " + hash)
	}
	if _, err := hex.DecodeString(hash); err != nil {
		return bgerrors.InvalidArgument("digest hash is not valid hex: " + hash)
	}
	return nil
}

// ByteStreamInstance implements the Read/Write/QueryWriteStatus streaming
// protocol over a Backend, grounded on the original server's
// ByteStreamInstance.
type ByteStreamInstance struct {
	backend Backend
}

// NewByteStreamInstance returns a ByteStreamInstance serving blobs from
// backend.
func NewByteStreamInstance(backend Backend) *ByteStreamInstance {
	return &ByteStreamInstance{backend: backend}
}

// Read streams digest's blob in ReadBlockSize chunks to send, honoring
// readOffset/readLimit exactly as the original server does: offset must
// be within [0, size], a negative limit is rejected with INVALID_ARGUMENT,
// a positive limit truncates the read window and zero reads to the end.
func (i *ByteStreamInstance) Read(ctx context.Context, name string, readOffset, readLimit int64, send func([]byte) error) error {
	rn, err := ParseResourceName(name)
	if err != nil {
		return err
	}
	if readOffset < 0 || readOffset > rn.Digest.SizeBytes {
		return bgerrors.OutOfRange(fmt.Sprintf("read_offset %d out of range for digest size %d", readOffset, rn.Digest.SizeBytes))
	}
	if readLimit < 0 {
		return bgerrors.InvalidArgument(fmt.Sprintf("read_limit %d is negative", readLimit))
	}

	data, err := i.backend.Get(ctx, rn.Digest)
	if err != nil {
		return err
	}

	end := int64(len(data))
	if readLimit > 0 && readOffset+readLimit < end {
		end = readOffset + readLimit
	}
	data = data[readOffset:end]

	for len(data) > 0 {
		n := ReadBlockSize
		if n > len(data) {
			n = len(data)
		}
		if err := send(data[:n]); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

// Write ingests a sequence of WriteRequest chunks for one upload,
// validating the running hash and total size on FinishWrite, then
// committing to backend. Matches the original server's incremental
// hash-as-you-go validation in ByteStreamInstance.write.
func (i *ByteStreamInstance) Write(ctx context.Context, chunks <-chan *pb.WriteRequest) (*pb.WriteResponse, error) {
	h := sha256.New()
	var (
		digest  pb.Digest
		name    string
		written int64
		buf     []byte
	)

	for req := range chunks {
		if name == "" {
			name = req.ResourceName
			rn, err := ParseResourceName(name)
			if err != nil {
				return nil, err
			}
			if !rn.IsUpload {
				return nil, bgerrors.InvalidArgument("write resource name is not an upload path: " + name)
			}
			digest = rn.Digest
		}
		if req.WriteOffset != written {
			return nil, bgerrors.InvalidArgument(fmt.Sprintf("write_offset %d does not match bytes written so far %d", req.WriteOffset, written))
		}
		h.Write(req.Data)
		buf = append(buf, req.Data...)
		written += int64(len(req.Data))

		if req.FinishWrite {
			break
		}
	}

	if written != digest.SizeBytes {
		return nil, bgerrors.InvalidArgument(fmt.Sprintf("bytes written %d does not match digest size %d", written, digest.SizeBytes))
	}
	sum := hex.EncodeToString(h.Sum(nil))
	if sum != digest.Hash {
		return nil, bgerrors.InvalidArgument(fmt.Sprintf("computed hash %s does not match digest hash %s", sum, digest.Hash))
	}

	if err := i.backend.Put(ctx, digest, buf); err != nil {
		return nil, err
	}
	return &pb.WriteResponse{CommittedSize: written}, nil
}

// QueryWriteStatus reports whether a blob has already been fully
// committed. BuildGrid does not support resuming a partial upload mid-way
// (spec §4.1 Non-goals), so this always reports either "complete,
// fully-sized" or "not found".
func (i *ByteStreamInstance) QueryWriteStatus(ctx context.Context, name string) (*pb.QueryWriteStatusResponse, error) {
	rn, err := ParseResourceName(name)
	if err != nil {
		return nil, err
	}
	ok, err := i.backend.Has(ctx, rn.Digest)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, bgerrors.NotFound("upload not found or not committed: " + name)
	}
	return &pb.QueryWriteStatusResponse{CommittedSize: rn.Digest.SizeBytes, Complete: true}, nil
}
