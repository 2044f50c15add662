package chainlocator

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildLegacyHeader(timestamp uint32) []byte {
	h := make([]byte, legacyHeaderSize)
	binary.LittleEndian.PutUint32(h[timestampOffset:], timestamp)
	return h
}

func buildKawpowHeader(timestamp uint32, nonce uint64, mix [32]byte) []byte {
	h := make([]byte, kawpowHeaderSize)
	binary.LittleEndian.PutUint32(h[timestampOffset:], timestamp)
	binary.LittleEndian.PutUint64(h[kawpowNonceOffset:], nonce)
	copy(h[kawpowMixHashOffset:], mix[:])
	return h
}

func TestDecodeHeaders_AllLegacy(t *testing.T) {
	const activation = 1000000
	raw := []byte{}
	for i := 0; i < 5; i++ {
		raw = append(raw, buildLegacyHeader(uint32(500000+i))...)
		raw = append(raw, 0x00) // tx-count placeholder
	}

	headers, err := DecodeHeaders(raw, 5, activation)
	require.NoError(t, err)
	require.Len(t, headers, 5)
	for i, h := range headers {
		assert.Equal(t, Legacy, h.Kind)
		assert.Equal(t, uint32(500000+i), h.Timestamp)
	}
}

func TestDecodeHeaders_MixedLegacyThenKawpow(t *testing.T) {
	const activation = 1600000000
	var raw []byte

	for i := 0; i < 3; i++ {
		raw = append(raw, buildLegacyHeader(uint32(1500000000+i))...)
		raw = append(raw, 0x00)
	}
	var mix [32]byte
	mix[0] = 0xAB
	for i := 0; i < 2; i++ {
		raw = append(raw, buildKawpowHeader(uint32(activation+i), uint64(i), mix)...)
		raw = append(raw, 0x00)
	}

	headers, err := DecodeHeaders(raw, 5, activation)
	require.NoError(t, err)
	require.Len(t, headers, 5)

	for i := 0; i < 3; i++ {
		assert.Equal(t, Legacy, headers[i].Kind)
	}
	for i := 3; i < 5; i++ {
		assert.Equal(t, Kawpow, headers[i].Kind)
		assert.Equal(t, uint64(i-3), headers[i].Nonce())
		assert.Equal(t, mix, headers[i].MixHash())
	}
}

func TestDecodeHeaders_TruncatedIsError(t *testing.T) {
	raw := buildLegacyHeader(1500000000)[:40]
	_, err := DecodeHeaders(raw, 1, 1600000000)
	assert.Error(t, err)
}
