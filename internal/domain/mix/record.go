package mix

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// Marshal validates p and encodes it as a persisted record.
func Marshal(p *Preview) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, errors.Wrap(err, "refusing to store invalid preview")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode preview")
	}
	return data, nil
}

// Unmarshal decodes and validates a persisted record stored under handle.
// Undecodable or structurally invalid data yields an ErrCorrupt error.
func Unmarshal(handle string, data []byte) (*Preview, error) {
	var p Preview
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, NewCorruptError(handle, err)
	}
	if err := p.Validate(); err != nil {
		return nil, NewCorruptError(handle, err)
	}
	if p.ID != handle {
		return nil, NewCorruptError(handle, errors.Newf("record id %q does not match handle", p.ID))
	}
	return &p, nil
}
