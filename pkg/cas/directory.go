package cas

import (
	"encoding/json"

	"github.com/buildgrid/buildgrid-go/pkg/pb"
)

// marshalDirectory/unmarshalDirectory (de)serialize a Directory the same
// way it is addressed by clients: this server treats blob contents as
// opaque bytes, but GetTree must actually decode Directory blobs to walk
// them, so it uses the same JSON encoding pkg/api's codec uses on the
// wire (see pkg/pb/doc.go) rather than assuming a protobuf byte layout.
func marshalDirectory(dir *pb.Directory) ([]byte, error) {
	return json.Marshal(dir)
}

func unmarshalDirectory(data []byte) (*pb.Directory, error) {
	var dir pb.Directory
	if err := json.Unmarshal(data, &dir); err != nil {
		return nil, err
	}
	return &dir, nil
}
