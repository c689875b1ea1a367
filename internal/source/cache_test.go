package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKeyIndependentOfParamOrder(t *testing.T) {
	a := cacheKey("/profile/ACME", map[string]string{"year": "2024", "quarter": "1"})
	b := cacheKey("/profile/ACME", map[string]string{"quarter": "1", "year": "2024"})
	assert.Equal(t, a, b)
}

func TestCacheKeyDiffersByEndpoint(t *testing.T) {
	a := cacheKey("/profile/ACME", nil)
	b := cacheKey("/profile/OTHER", nil)
	assert.NotEqual(t, a, b)
}

func TestCachePutGet(t *testing.T) {
	c := newDiskCache(t.TempDir())

	_, hit := c.Get("/profile/ACME", nil)
	assert.False(t, hit)

	require.NoError(t, c.Put("/profile/ACME", nil, []byte(`{"ok":true}`)))

	data, hit := c.Get("/profile/ACME", nil)
	require.True(t, hit)
	assert.Equal(t, `{"ok":true}`, string(data))
}
