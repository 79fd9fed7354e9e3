package cas

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/buildgrid/buildgrid-go/pkg/bgerrors"
	"github.com/buildgrid/buildgrid-go/pkg/pb"
)

// DiskBackend stores each blob as one file named after its digest hash,
// sharded two levels deep to avoid pathologically large directories. It
// is a straightforward filesystem mapping with no ecosystem library
// covering this concern better than os/io directly (no pack repo uses a
// blob-store library for local-disk content addressing); this is the one
// CAS backend grounded on the standard library rather than a third-party
// client.
type DiskBackend struct {
	root string
}

// NewDiskBackend returns a DiskBackend rooted at dir, creating it if
// necessary.
func NewDiskBackend(dir string) (*DiskBackend, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &DiskBackend{root: dir}, nil
}

func (b *DiskBackend) path(digest pb.Digest) string {
	h := digest.Hash
	if len(h) < 4 {
		return filepath.Join(b.root, h)
	}
	return filepath.Join(b.root, h[0:2], h[2:4], h)
}

func (b *DiskBackend) Has(_ context.Context, digest pb.Digest) (bool, error) {
	_, err := os.Stat(b.path(digest))
	if os.IsNotExist(err) {
		return false, nil
	}
	return err == nil, err
}

func (b *DiskBackend) Get(_ context.Context, digest pb.Digest) ([]byte, error) {
	data, err := os.ReadFile(b.path(digest))
	if os.IsNotExist(err) {
		return nil, bgerrors.NotFound("blob not found: " + digest.Hash)
	}
	return data, err
}

// Put writes via a temp file plus rename so a reader never observes a
// partially-written blob at the final path.
func (b *DiskBackend) Put(_ context.Context, digest pb.Digest, data []byte) error {
	dest := b.path(digest)
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, dest)
}

func (b *DiskBackend) Delete(_ context.Context, digest pb.Digest) error {
	err := os.Remove(b.path(digest))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (b *DiskBackend) MissingBlobs(ctx context.Context, digests []pb.Digest) ([]pb.Digest, error) {
	var missing []pb.Digest
	for _, d := range digests {
		ok, err := b.Has(ctx, d)
		if err != nil {
			return nil, err
		}
		if !ok {
			missing = append(missing, d)
		}
	}
	return missing, nil
}

func (b *DiskBackend) Reader(_ context.Context, digest pb.Digest) (io.ReadCloser, error) {
	f, err := os.Open(b.path(digest))
	if os.IsNotExist(err) {
		return nil, bgerrors.NotFound("blob not found: " + digest.Hash)
	}
	return f, err
}

func (b *DiskBackend) Writer(_ context.Context, digest pb.Digest) (io.WriteCloser, error) {
	dest := b.path(digest)
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return nil, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".tmp-*")
	if err != nil {
		return nil, err
	}
	return &diskWriter{tmp: tmp, dest: dest}, nil
}

type diskWriter struct {
	tmp  *os.File
	dest string
}

func (w *diskWriter) Write(p []byte) (int, error) {
	return w.tmp.Write(p)
}

func (w *diskWriter) Close() error {
	if err := w.tmp.Close(); err != nil {
		os.Remove(w.tmp.Name())
		return err
	}
	return os.Rename(w.tmp.Name(), w.dest)
}
