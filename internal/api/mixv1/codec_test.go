package mixv1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONCodec(t *testing.T) {
	c := JSONCodec{}
	assert.Equal(t, "json", c.Name())

	t.Run("empty body", func(t *testing.T) {
		var req ListLikedTracksRequest
		require.NoError(t, c.Unmarshal(nil, &req))
	})

	t.Run("field names", func(t *testing.T) {
		data, err := c.Marshal(&GetPreviewRequest{ID: "abc"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"abc"}`, string(data))
	})

	t.Run("malformed", func(t *testing.T) {
		var req GetPreviewRequest
		assert.Error(t, c.Unmarshal([]byte("{"), &req))
	})
}
