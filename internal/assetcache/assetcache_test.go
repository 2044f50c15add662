package assetcache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestPutGet_RoundTrips(t *testing.T) {
	c := openTestCache(t)

	ipfs := make([]byte, 34)
	ipfs[0] = 0x12
	ipfs[1] = 0x20
	require.NoError(t, c.Put("RAVENCOIN", 100000000, 0, true, ipfs, 12345, true))

	entry, err := c.Get("RAVENCOIN")
	require.NoError(t, err)
	assert.Equal(t, "RAVENCOIN", entry.Name)
	assert.Equal(t, uint64(100000000), entry.Amount)
	assert.True(t, entry.Reissuable)
	assert.True(t, entry.HasHeight)
	assert.Equal(t, uint32(12345), entry.BlockHeight)
	assert.NotEmpty(t, entry.IPFSHash)
}

func TestGet_MissingReturnsErrNotFound(t *testing.T) {
	c := openTestCache(t)

	_, err := c.Get("NOSUCHASSET")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDelete_RemovesEntry(t *testing.T) {
	c := openTestCache(t)

	require.NoError(t, c.Put("TEMP", 1, 0, false, nil, 0, false))
	require.NoError(t, c.Delete("TEMP"))

	_, err := c.Get("TEMP")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPut_NoIPFSHashLeavesFieldEmpty(t *testing.T) {
	c := openTestCache(t)

	require.NoError(t, c.Put("NOIPFS", 1, 0, false, nil, 0, false))
	entry, err := c.Get("NOIPFS")
	require.NoError(t, err)
	assert.Empty(t, entry.IPFSHash)
}
