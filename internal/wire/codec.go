// Package wire holds the request/response shapes and thin client stubs
// for the server's gRPC services (Streams, PersistentSubscriptions,
// Gossip, Operations, Users, Projections, ServerFeatures).
//
// spec.md §1 treats message serialization as an opaque "serialization"
// collaborator producing/consoming typed frames from the server's
// published .proto schemas — the wire codec itself is out of scope for
// the core. This package stands in for protoc-gen-go-grpc output: real
// generated stubs marshal with protobuf; here frames are marshaled with
// the jsonCodec below so the rest of the core can be built and tested
// against a real google.golang.org/grpc transport without a protoc step.
// Swapping in generated protobuf stubs later only touches this package.
package wire

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

const codecName = "kurrentdb-json"

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec implements google.golang.org/grpc/encoding.Codec.
type jsonCodec struct{}

func (jsonCodec) Name() string { return codecName }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("wire: marshal frame: %w", err)
	}
	return b, nil
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("wire: unmarshal frame: %w", err)
	}
	return nil
}

// CodecName is the registered codec name channel construction forces
// via grpc.CallContentSubtype so every call on the connection uses it.
const CodecName = codecName
