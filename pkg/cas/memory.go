package cas

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"sync"

	lru "github.com/hashicorp/golang-lru"

	"github.com/buildgrid/buildgrid-go/pkg/bgerrors"
	"github.com/buildgrid/buildgrid-go/pkg/pb"
)

// MemoryBackend is a bounded in-process Backend built on hashicorp/golang-lru.
// It is intended as a small, fast first tier in front of a durable
// backend (see withcache.go), not as a standalone durable CAS.
//
// Capacity is a byte budget, not an entry count: the underlying lru.Cache
// is given an effectively unbounded entry count and eviction is instead
// driven by maxSizeBytes, via cacheEntry.size and the OnEvicted callback
// wired in NewMemoryBackend.
type MemoryBackend struct {
	mu           sync.RWMutex
	cache        *lru.Cache
	maxSizeBytes int64
	usedBytes    int64
}

// cacheEntry pairs a blob's bytes with the declared digest size it was
// admitted under, so eviction can decrement usedBytes accurately.
type cacheEntry struct {
	data []byte
	size int64
}

// blobCacheKey keys the cache on hash alone: within one CAS instance a
// hash collision across different sizes is already a correctness
// violation the hash function is assumed not to produce.
func blobCacheKey(d pb.Digest) string {
	return d.Hash
}

// NewMemoryBackend returns a MemoryBackend holding at most maxSizeBytes
// bytes of blobs, evicting least-recently-used entries to stay within
// budget. maxSizeBytes <= 0 means unbounded.
func NewMemoryBackend(maxSizeBytes int64) (*MemoryBackend, error) {
	b := &MemoryBackend{maxSizeBytes: maxSizeBytes}
	c, err := lru.NewWithEvict(math.MaxInt32, b.onEvicted)
	if err != nil {
		return nil, err
	}
	b.cache = c
	return b, nil
}

// onEvicted is the lru.Cache eviction callback; it keeps usedBytes in
// sync whenever the cache drops an entry, whether from RemoveOldest,
// Remove, or Purge. Called with b.mu already held by the caller.
func (b *MemoryBackend) onEvicted(_ interface{}, value interface{}) {
	b.usedBytes -= value.(*cacheEntry).size
}

func (b *MemoryBackend) Has(_ context.Context, digest pb.Digest) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cache.Contains(blobCacheKey(digest)), nil
}

func (b *MemoryBackend) Get(_ context.Context, digest pb.Digest) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.cache.Get(blobCacheKey(digest))
	if !ok {
		return nil, bgerrors.NotFound("blob not found: " + digest.Hash)
	}
	return v.(*cacheEntry).data, nil
}

func (b *MemoryBackend) Put(_ context.Context, digest pb.Digest, data []byte) error {
	if err := b.checkBudget(digest); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	key := blobCacheKey(digest)
	if old, ok := b.cache.Peek(key); ok {
		b.usedBytes -= old.(*cacheEntry).size
	}
	for b.maxSizeBytes > 0 && b.usedBytes+digest.SizeBytes > b.maxSizeBytes && b.cache.Len() > 0 {
		b.cache.RemoveOldest()
	}

	cp := make([]byte, len(data))
	copy(cp, data)
	b.cache.Add(key, &cacheEntry{data: cp, size: digest.SizeBytes})
	b.usedBytes += digest.SizeBytes
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, digest pb.Digest) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cache.Remove(blobCacheKey(digest))
	return nil
}

func (b *MemoryBackend) MissingBlobs(ctx context.Context, digests []pb.Digest) ([]pb.Digest, error) {
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

func (b *MemoryBackend) Reader(ctx context.Context, digest pb.Digest) (io.ReadCloser, error) {
	data, err := b.Get(ctx, digest)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *MemoryBackend) Writer(_ context.Context, digest pb.Digest) (io.WriteCloser, error) {
	if err := b.checkBudget(digest); err != nil {
		return nil, err
	}
	return &memoryWriter{backend: b, digest: digest}, nil
}

// checkBudget rejects a blob whose declared size alone can never fit,
// independent of what else is currently cached; this is the
// begin_write-time rejection spec.md §4.1 requires. Eviction of other
// entries to make room for an admissible blob happens later, in Put.
func (b *MemoryBackend) checkBudget(digest pb.Digest) error {
	if b.maxSizeBytes > 0 && digest.SizeBytes > b.maxSizeBytes {
		return bgerrors.OutOfRange(fmt.Sprintf("blob %s exceeds byte budget: %d > %d", digest.Hash, digest.SizeBytes, b.maxSizeBytes))
	}
	return nil
}

type memoryWriter struct {
	backend *MemoryBackend
	digest  pb.Digest
	buf     bytes.Buffer
}

func (w *memoryWriter) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *memoryWriter) Close() error {
	return w.backend.Put(context.Background(), w.digest, w.buf.Bytes())
}
