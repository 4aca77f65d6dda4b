package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_Typed(t *testing.T) {
	s := NewConfigStore(map[string]any{
		"name":    "pagewise",
		"limit":   int64(7),
		"alpha":   0.7,
		"enabled": true,
	})

	assert.Equal(t, "pagewise", s.GetString("name"))
	assert.Equal(t, 7, s.GetInt("limit"))
	assert.InDelta(t, 0.7, s.GetFloat("alpha"), 1e-9)
	assert.InDelta(t, 7.0, s.GetFloat("limit"), 1e-9)
	assert.True(t, s.GetBool("enabled"))

	// Wrong types fall back to zero values.
	assert.Empty(t, s.GetString("limit"))
	assert.Zero(t, s.GetInt("name"))
	assert.Zero(t, s.GetFloat("enabled"))
	assert.False(t, s.GetBool("missing"))
}

func TestConfigStore_SetAndLoad(t *testing.T) {
	s := NewConfigStore()
	require.NoError(t, s.Set("retrieval.fusion", "weighted"))
	require.NoError(t, s.Load())

	v, ok := s.Get("retrieval.fusion")
	assert.True(t, ok)
	assert.Equal(t, "weighted", v)
	assert.Equal(t, ":memory:", s.Path())
}
