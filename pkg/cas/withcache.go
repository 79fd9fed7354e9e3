package cas

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"github.com/buildgrid/buildgrid-go/pkg/log"
	"github.com/buildgrid/buildgrid-go/pkg/pb"
)

// WithCacheBackend composes a fast, possibly-lossy cache tier in front of
// an authoritative tier (spec §4.1's "with-cache" storage combinator).
// Reads check cache first and fall through to fallback on a miss,
// populating cache as they go; writes go to both. Per the Open Question
// resolution recorded in DESIGN.md, fallback is always authoritative: a
// write failure on cache is logged and ignored, a write failure on
// fallback is returned to the caller.
type WithCacheBackend struct {
	cache    Backend
	fallback Backend
	log      zerolog.Logger
}

// NewWithCacheBackend composes cache in front of fallback. cache is
// typically a MemoryBackend or a Redis-backed tier (see NewRedisBackend);
// fallback is typically DiskBackend or ObjectStoreBackend.
func NewWithCacheBackend(cache, fallback Backend) *WithCacheBackend {
	return &WithCacheBackend{cache: cache, fallback: fallback, log: log.WithComponent("cas.withcache")}
}

func (b *WithCacheBackend) Has(ctx context.Context, digest pb.Digest) (bool, error) {
	ok, err := b.cache.Has(ctx, digest)
	if err == nil && ok {
		return true, nil
	}
	return b.fallback.Has(ctx, digest)
}

func (b *WithCacheBackend) Get(ctx context.Context, digest pb.Digest) ([]byte, error) {
	data, err := b.cache.Get(ctx, digest)
	if err == nil {
		return data, nil
	}
	data, err = b.fallback.Get(ctx, digest)
	if err != nil {
		return nil, err
	}
	if cacheErr := b.cache.Put(ctx, digest, data); cacheErr != nil {
		b.log.Warn().Str("digest", digest.Hash).Err(cacheErr).Msg("cache tier populate failed, continuing from fallback")
	}
	return data, nil
}

func (b *WithCacheBackend) Put(ctx context.Context, digest pb.Digest, data []byte) error {
	if err := b.fallback.Put(ctx, digest, data); err != nil {
		return err
	}
	if err := b.cache.Put(ctx, digest, data); err != nil {
		b.log.Warn().Str("digest", digest.Hash).Err(err).Msg("cache tier write failed, fallback write already committed")
	}
	return nil
}

func (b *WithCacheBackend) Delete(ctx context.Context, digest pb.Digest) error {
	if err := b.fallback.Delete(ctx, digest); err != nil {
		return err
	}
	if err := b.cache.Delete(ctx, digest); err != nil {
		b.log.Warn().Str("digest", digest.Hash).Err(err).Msg("cache tier delete failed")
	}
	return nil
}

func (b *WithCacheBackend) MissingBlobs(ctx context.Context, digests []pb.Digest) ([]pb.Digest, error) {
	return b.fallback.MissingBlobs(ctx, digests)
}

func (b *WithCacheBackend) Reader(ctx context.Context, digest pb.Digest) (io.ReadCloser, error) {
	data, err := b.Get(ctx, digest)
	if err != nil {
		return nil, err
	}
	return readCloserFromBytes(data), nil
}

func (b *WithCacheBackend) Writer(ctx context.Context, digest pb.Digest) (io.WriteCloser, error) {
	return newBufferedWriter(func(data []byte) error {
		return b.Put(ctx, digest, data)
	}), nil
}
