package store

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyGenerator_KeysAreUniqueAndOrdered(t *testing.T) {
	g := NewKeyGenerator()
	fixed := time.UnixMilli(1_700_000_000_000)
	g.now = func() time.Time { return fixed }

	keys := make([]string, 0, 100)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		k, err := g.Next()
		require.NoError(t, err)
		require.NoError(t, ValidateKey(k))
		assert.False(t, seen[k], "duplicate key %s", k)
		seen[k] = true
		keys = append(keys, k)
	}

	assert.True(t, sort.StringsAreSorted(keys))
}
