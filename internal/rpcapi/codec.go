package rpcapi

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// jsonCodec replaces grpc's built-in "proto" codec with a JSON one.
// Registering under the name "proto" makes it the default codec for any
// connection that does not request a content-subtype, so existing
// grpc.NewClient/grpc.NewServer call sites need no extra options.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return "proto"
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
