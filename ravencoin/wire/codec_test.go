package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageHeaderRoundTrip(t *testing.T) {
	payload := []byte("hello ravencoin")

	var buf bytes.Buffer
	require.NoError(t, WriteMessageHeader(&buf, MainNet, CmdPing, payload))

	hdr, err := ReadMessageHeader(buf.Bytes())
	require.NoError(t, err)

	assert.Equal(t, MainNet, hdr.Magic)
	assert.Equal(t, CmdPing, hdr.Command)
	assert.Equal(t, uint32(len(payload)), hdr.Length)
	assert.NoError(t, VerifyChecksum(hdr, payload))
}

func TestVerifyChecksum_EmptyPayload(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMessageHeader(&buf, MainNet, CmdVerAck, nil))

	hdr, err := ReadMessageHeader(buf.Bytes())
	require.NoError(t, err)
	assert.NoError(t, VerifyChecksum(hdr, nil))
}

func TestVerifyChecksum_Mismatch(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMessageHeader(&buf, MainNet, CmdPing, []byte("abc")))

	hdr, err := ReadMessageHeader(buf.Bytes())
	require.NoError(t, err)
	assert.ErrorIs(t, VerifyChecksum(hdr, []byte("xyz")), ErrChecksumMismatch)
}

func TestDecodeCommand_RejectsNonNulTerminator(t *testing.T) {
	var buf [CommandLength]byte
	for i := range buf {
		buf[i] = 'a'
	}
	_, err := DecodeCommand(buf)
	assert.ErrorIs(t, err, ErrMalformedHeader)
}

func TestReadMessageHeader_WrongLength(t *testing.T) {
	_, err := ReadMessageHeader(make([]byte, 10))
	assert.ErrorIs(t, err, ErrMalformedHeader)
}

func TestFindMagic(t *testing.T) {
	noise := []byte{0x01, 0x02, 0x03}
	var magicBytes [4]byte
	magicBytes[0] = byte(MainNet)
	magicBytes[1] = byte(MainNet >> 8)
	magicBytes[2] = byte(MainNet >> 16)
	magicBytes[3] = byte(MainNet >> 24)

	buf := append(append([]byte{}, noise...), magicBytes[:]...)
	assert.Equal(t, len(noise), FindMagic(buf, MainNet))
	assert.Equal(t, -1, FindMagic(noise, MainNet))
}

func TestVarIntRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 0xfc, 0xfd, 0xffff, 0x10000, 0xffffffff, 0x100000000}
	for _, v := range values {
		var buf bytes.Buffer
		require.NoError(t, WriteVarInt(&buf, v))
		got, err := ReadVarInt(&buf)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}
