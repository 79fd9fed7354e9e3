package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/buildgrid/buildgrid-go/pkg/pb"
)

// parseDigestArg parses a "<hash>/<size>" digest argument, the format
// printed by the cas upload-file/upload-dir commands.
func parseDigestArg(s string) (pb.Digest, error) {
	hash, sizeStr, ok := strings.Cut(s, "/")
	if !ok {
		return pb.Digest{}, fmt.Errorf("malformed digest %q, expected <hash>/<size>", s)
	}
	size, err := strconv.ParseInt(sizeStr, 10, 64)
	if err != nil {
		return pb.Digest{}, fmt.Errorf("malformed digest size in %q: %w", s, err)
	}
	return pb.Digest{Hash: hash, SizeBytes: size}, nil
}
