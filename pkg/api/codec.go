package api

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// Name is registered as the content-subtype for this codec. Clients and
// servers must both dial/serve with grpc.CallContentSubtype(api.Name) (or
// the equivalent default-codec server option) to use it.
const Name = "json"

// jsonCodec implements encoding.Codec with encoding/json, standing in for
// the protobuf wire codec a protoc-generated stack would normally supply
// (see pkg/pb/doc.go). grpc-go's encoding.Codec interface only requires
// Marshal/Unmarshal/Name, so JSON is a drop-in substitute: message framing,
// compression and streaming all happen above this layer unchanged.
type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("json codec: marshal: %w", err)
	}
	return data, nil
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("json codec: unmarshal: %w", err)
	}
	return nil
}

func (jsonCodec) Name() string { return Name }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
