// Package actioncache implements the ActionCache gRPC service, grounded on
// the original server's actioncache/instance.py ActionCache and
// writeonceaction.py WriteOnceActionCache.
package actioncache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/buildgrid/buildgrid-go/pkg/bgerrors"
	"github.com/buildgrid/buildgrid-go/pkg/cas"
	"github.com/buildgrid/buildgrid-go/pkg/pb"
	"github.com/buildgrid/buildgrid-go/pkg/refcache"
)

func cacheKey(digest pb.Digest) string {
	return fmt.Sprintf("%s_%d", digest.Hash, digest.SizeBytes)
}

// Instance implements pb.ActionCacheServer over a refcache.Cache.
// CacheFailedActions controls whether a non-zero ActionResult.ExitCode is
// still stored: the original server only stores failed-action results
// when this flag is set, since a cached failure is rarely useful and
// wastes cache capacity by default.
type Instance struct {
	cache              *refcache.Cache
	backend            cas.Backend
	cacheFailedActions bool
}

// NewInstance returns an Instance backed by cache. backend is used to
// confirm, on every lookup, that every blob an ActionResult references
// (stdout/stderr, output files, and the recursive contents of output
// directory Trees) is still present — spec §4.3's requirement that a
// cache hit never hands back a reference to a blob CAS has since evicted.
func NewInstance(cache *refcache.Cache, backend cas.Backend, cacheFailedActions bool) *Instance {
	return &Instance{cache: cache, backend: backend, cacheFailedActions: cacheFailedActions}
}

func (i *Instance) GetActionResult(ctx context.Context, req *pb.GetActionResultRequest) (*pb.ActionResult, error) {
	v, err := i.cache.Get(ctx, cacheKey(req.ActionDigest), i.validate)
	if err != nil {
		return nil, err
	}
	result, ok := v.(*pb.ActionResult)
	if !ok {
		return nil, bgerrors.InvalidArgument("cache entry is not an ActionResult")
	}
	return result, nil
}

func (i *Instance) UpdateActionResult(ctx context.Context, req *pb.UpdateActionResultRequest) (*pb.ActionResult, error) {
	result := req.ActionResult
	if result.ExitCode != 0 && !i.cacheFailedActions {
		return &result, nil
	}
	if err := i.cache.Put(ctx, cacheKey(req.ActionDigest), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// validate implements the refcache.Cache validation hook: it walks every
// digest field reachable from a cached ActionResult and reports false if
// any referenced blob is no longer present in CAS.
func (i *Instance) validate(ctx context.Context, v interface{}) (bool, error) {
	if i.backend == nil {
		return true, nil
	}
	result, ok := v.(*pb.ActionResult)
	if !ok {
		return false, nil
	}

	for _, digest := range referencedDigests(result) {
		ok, err := i.backend.Has(ctx, digest)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}

	for _, dir := range result.OutputDirectories {
		ok, err := i.validateTree(ctx, dir.TreeDigest)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}

	return true, nil
}

// referencedDigests collects every top-level blob digest an ActionResult
// points at, excluding the recursive Tree contents handled separately by
// validateTree.
func referencedDigests(result *pb.ActionResult) []pb.Digest {
	var digests []pb.Digest
	if result.StdoutDigest != nil {
		digests = append(digests, *result.StdoutDigest)
	}
	if result.StderrDigest != nil {
		digests = append(digests, *result.StderrDigest)
	}
	for _, f := range result.OutputFiles {
		digests = append(digests, f.Digest)
	}
	for _, d := range result.OutputDirectories {
		digests = append(digests, d.TreeDigest)
	}
	return digests
}

// validateTree fetches the Tree blob at treeDigest and confirms every
// file referenced by its root and every flattened child Directory is
// still present in CAS.
func (i *Instance) validateTree(ctx context.Context, treeDigest pb.Digest) (bool, error) {
	ok, err := i.backend.Has(ctx, treeDigest)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	data, err := i.backend.Get(ctx, treeDigest)
	if err != nil {
		return false, err
	}
	var tree pb.Tree
	if err := json.Unmarshal(data, &tree); err != nil {
		return false, nil
	}

	dirs := tree.Children
	if tree.Root != nil {
		dirs = append(dirs, *tree.Root)
	}
	for _, dir := range dirs {
		for _, f := range dir.Files {
			ok, err := i.backend.Has(ctx, f.Digest)
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
	}

	return true, nil
}
