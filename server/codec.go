package server

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// CodecName selects the wire encoding for the dispatch service. Clients
// must pass grpc.CallContentSubtype(CodecName) on their calls.
const CodecName = "json"

// jsonCodec carries job requests and responses as JSON frames, keeping the
// service free of generated stubs.
type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return CodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
