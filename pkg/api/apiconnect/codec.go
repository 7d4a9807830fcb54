// Package apiconnect holds the Connect clients and handlers of the duesbook
// services. Messages are the plain structs of package api, carried by a JSON
// codec registered on every client and handler.
package apiconnect

import (
	"encoding/json"

	"connectrpc.com/connect"
)

// CodecName is the codec name and the content-subtype on the wire.
const CodecName = "json"

// Codec marshals package api messages with encoding/json.
type Codec struct{}

func (Codec) Name() string { return CodecName }

func (Codec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}

// WithJSON registers Codec. Clients and handlers built by this package
// already include it.
func WithJSON() connect.Option {
	return connect.WithCodec(Codec{})
}
