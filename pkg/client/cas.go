package client

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"github.com/buildgrid/buildgrid-go/pkg/pb"
)

func newUploadID() string {
	return uuid.NewString()
}

// DigestFile computes the Digest of the file at path without loading it
// entirely into memory, matching how ByteStream.Write validates against a
// running hash rather than a buffered one.
func DigestFile(path string) (pb.Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return pb.Digest{}, fmt.Errorf("client: failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return pb.Digest{}, fmt.Errorf("client: failed to read %s: %w", path, err)
	}
	return pb.Digest{Hash: hex.EncodeToString(h.Sum(nil)), SizeBytes: size}, nil
}

// UploadFile streams the file at path to the CAS ByteStream write
// endpoint under digest, matching spec §4.2's write resource-name
// grammar (`{instance}/uploads/{uuid}/blobs/{hash}/{size}`).
func (c *Client) UploadFile(ctx context.Context, instanceName, path string, digest pb.Digest) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("client: failed to open %s: %w", path, err)
	}
	defer f.Close()

	stream, err := c.ByteStream.Write(ctx)
	if err != nil {
		return fmt.Errorf("client: failed to open write stream: %w", err)
	}

	resourceName := writeResourceName(instanceName, digest)
	buf := make([]byte, writeChunkSize)
	var offset int64
	first := true
	finished := false

	for {
		n, readErr := f.Read(buf)
		if n > 0 {
			req := &pb.WriteRequest{
				Data:        append([]byte(nil), buf[:n]...),
				WriteOffset: offset,
			}
			if first {
				req.ResourceName = resourceName
				first = false
			}
			offset += int64(n)
			if readErr == io.EOF {
				req.FinishWrite = true
				finished = true
			}
			if err := stream.Send(req); err != nil {
				return fmt.Errorf("client: write stream send failed: %w", err)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("client: failed to read %s: %w", path, readErr)
		}
	}

	if !finished {
		// No request carried FinishWrite yet (an empty file, or a reader that
		// reported io.EOF after its last data): send one terminal zero-byte
		// request to commit the write.
		req := &pb.WriteRequest{WriteOffset: offset, FinishWrite: true}
		if first {
			req.ResourceName = resourceName
		}
		if err := stream.Send(req); err != nil {
			return fmt.Errorf("client: write stream send failed: %w", err)
		}
	}

	resp, err := stream.CloseAndRecv()
	if err != nil {
		return fmt.Errorf("client: write stream close failed: %w", err)
	}
	if resp.CommittedSize != digest.SizeBytes {
		return fmt.Errorf("client: server committed %d bytes, expected %d", resp.CommittedSize, digest.SizeBytes)
	}
	return nil
}

// DownloadFile streams digest's blob from the CAS ByteStream read
// endpoint to a local file at path.
func (c *Client) DownloadFile(ctx context.Context, instanceName, path string, digest pb.Digest) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("client: failed to create %s: %w", path, err)
	}
	defer out.Close()

	return c.readBlob(ctx, instanceName, digest, func(chunk []byte) error {
		_, err := out.Write(chunk)
		return err
	})
}

// UploadBytes uploads data as a single blob and returns its Digest,
// for small blobs (Directory protos) that don't warrant a file on disk.
func (c *Client) UploadBytes(ctx context.Context, instanceName string, data []byte) (pb.Digest, error) {
	digest := digestBytes(data)

	stream, err := c.ByteStream.Write(ctx)
	if err != nil {
		return pb.Digest{}, fmt.Errorf("client: failed to open write stream: %w", err)
	}
	if err := stream.Send(&pb.WriteRequest{
		ResourceName: writeResourceName(instanceName, digest),
		Data:         data,
		FinishWrite:  true,
	}); err != nil {
		return pb.Digest{}, fmt.Errorf("client: write stream send failed: %w", err)
	}
	if _, err := stream.CloseAndRecv(); err != nil {
		return pb.Digest{}, fmt.Errorf("client: write stream close failed: %w", err)
	}
	return digest, nil
}

// FetchBlob downloads digest's blob into memory.
func (c *Client) FetchBlob(ctx context.Context, instanceName string, digest pb.Digest) ([]byte, error) {
	var data []byte
	err := c.readBlob(ctx, instanceName, digest, func(chunk []byte) error {
		data = append(data, chunk...)
		return nil
	})
	return data, err
}

func (c *Client) readBlob(ctx context.Context, instanceName string, digest pb.Digest, sink func([]byte) error) error {
	stream, err := c.ByteStream.Read(ctx, &pb.ReadRequest{
		ResourceName: readResourceName(instanceName, digest),
	})
	if err != nil {
		return fmt.Errorf("client: failed to open read stream: %w", err)
	}

	for {
		resp, err := stream.Recv()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("client: read stream failed: %w", err)
		}
		if err := sink(resp.Data); err != nil {
			return err
		}
	}
}

func digestBytes(data []byte) pb.Digest {
	sum := sha256.Sum256(data)
	return pb.Digest{Hash: hex.EncodeToString(sum[:]), SizeBytes: int64(len(data))}
}

// UploadDirectory recursively uploads every file under root, building and
// uploading a pb.Directory proto per subdirectory, and returns the Digest
// of the root Directory blob (spec §4.1's Merkle-tree input layout).
func (c *Client) UploadDirectory(ctx context.Context, instanceName, root string) (pb.Digest, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return pb.Digest{}, fmt.Errorf("client: failed to read directory %s: %w", root, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	dir := &pb.Directory{}
	for _, entry := range entries {
		childPath := filepath.Join(root, entry.Name())
		if entry.IsDir() {
			childDigest, err := c.UploadDirectory(ctx, instanceName, childPath)
			if err != nil {
				return pb.Digest{}, err
			}
			dir.Directories = append(dir.Directories, pb.DirectoryNode{Name: entry.Name(), Digest: childDigest})
			continue
		}
		digest, err := DigestFile(childPath)
		if err != nil {
			return pb.Digest{}, err
		}
		if err := c.UploadFile(ctx, instanceName, childPath, digest); err != nil {
			return pb.Digest{}, err
		}
		info, err := entry.Info()
		if err != nil {
			return pb.Digest{}, fmt.Errorf("client: failed to stat %s: %w", childPath, err)
		}
		dir.Files = append(dir.Files, pb.FileNode{
			Name:         entry.Name(),
			Digest:       digest,
			IsExecutable: info.Mode()&0o111 != 0,
		})
	}

	data, err := json.Marshal(dir)
	if err != nil {
		return pb.Digest{}, fmt.Errorf("client: failed to marshal directory %s: %w", root, err)
	}
	return c.UploadBytes(ctx, instanceName, data)
}

// DownloadDirectory recursively reconstructs the directory tree rooted at
// digest into the local directory at root, creating root if needed.
func (c *Client) DownloadDirectory(ctx context.Context, instanceName, root string, digest pb.Digest) error {
	data, err := c.FetchBlob(ctx, instanceName, digest)
	if err != nil {
		return err
	}
	var dir pb.Directory
	if err := json.Unmarshal(data, &dir); err != nil {
		return fmt.Errorf("client: stored directory blob is not valid: %s", digest.Hash)
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("client: failed to create directory %s: %w", root, err)
	}
	for _, file := range dir.Files {
		path := filepath.Join(root, file.Name)
		if err := c.DownloadFile(ctx, instanceName, path, file.Digest); err != nil {
			return err
		}
		if file.IsExecutable {
			if err := os.Chmod(path, 0o755); err != nil {
				return fmt.Errorf("client: failed to chmod %s: %w", path, err)
			}
		}
	}
	for _, sub := range dir.Directories {
		if err := c.DownloadDirectory(ctx, instanceName, filepath.Join(root, sub.Name), sub.Digest); err != nil {
			return err
		}
	}
	return nil
}

const writeChunkSize = 1 * 1024 * 1024

func writeResourceName(instanceName string, digest pb.Digest) string {
	prefix := ""
	if instanceName != "" {
		prefix = instanceName + "/"
	}
	return fmt.Sprintf("%suploads/%s/blobs/%s/%d", prefix, newUploadID(), digest.Hash, digest.SizeBytes)
}

func readResourceName(instanceName string, digest pb.Digest) string {
	prefix := ""
	if instanceName != "" {
		prefix = instanceName + "/"
	}
	return fmt.Sprintf("%sblobs/%s/%d", prefix, digest.Hash, digest.SizeBytes)
}
