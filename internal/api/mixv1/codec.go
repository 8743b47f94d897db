package mixv1

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// JSONCodec encodes plain Go messages as JSON. It is registered under the
// "json" name so requests sent as application/json or application/connect+json use it.
type JSONCodec struct{}

// Name implements connect.Codec.
func (JSONCodec) Name() string { return "json" }

// Marshal implements connect.Codec.
func (JSONCodec) Marshal(msg any) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal message")
	}
	return data, nil
}

// Unmarshal implements connect.Codec. An empty body decodes to the zero message.
func (JSONCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return errors.Wrap(err, "failed to unmarshal message")
	}
	return nil
}
