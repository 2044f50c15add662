package wire

import (
	"bytes"
	"net"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, magic RavencoinNet, msg Message) Message {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, EncodeMessage(&buf, magic, msg))

	hdr, err := ReadMessageHeader(buf.Next(HeaderLength))
	require.NoError(t, err)
	assert.Equal(t, msg.Command(), hdr.Command)

	payload := buf.Bytes()
	require.NoError(t, VerifyChecksum(hdr, payload))

	decoded, err := DecodePayload(hdr.Command, payload)
	require.NoError(t, err)
	return decoded
}

func TestRoundTrip_Ping(t *testing.T) {
	got := roundTrip(t, MainNet, &MsgPing{Nonce: 0xdeadbeefcafef00d})
	assert.Equal(t, &MsgPing{Nonce: 0xdeadbeefcafef00d}, got)
}

func TestRoundTrip_VerAck(t *testing.T) {
	got := roundTrip(t, MainNet, &MsgVerAck{})
	assert.Equal(t, &MsgVerAck{}, got)
}

func TestRoundTrip_Version(t *testing.T) {
	v := &MsgVersion{
		ProtocolVersion: int32(ProtocolVersion),
		Services:        EnabledServices,
		Timestamp:       1700000000,
		AddrRecv:        NetAddress{IP: net.ParseIP("203.0.113.5"), Port: 8767},
		AddrFrom:        NetAddress{IP: net.ParseIP("127.0.0.1"), Port: 8767},
		Nonce:           123456789,
		UserAgent:       "/ravenspv:0.1.0/",
		StartHeight:     42,
		Relay:           true,
	}
	got := roundTrip(t, MainNet, v).(*MsgVersion)
	assert.Equal(t, v.ProtocolVersion, got.ProtocolVersion)
	assert.Equal(t, v.UserAgent, got.UserAgent)
	assert.Equal(t, v.StartHeight, got.StartHeight)
	assert.True(t, got.Relay)
}

func TestRoundTrip_GetAssetData(t *testing.T) {
	got := roundTrip(t, MainNet, NewMsgGetAssetData("RAVEN"))
	assert.Equal(t, &MsgGetAssetData{AssetName: "RAVEN"}, got)
}

func TestRoundTrip_AssetData_NotFound(t *testing.T) {
	got := roundTrip(t, MainNet, &MsgAssetData{Name: NotFoundAssetName})
	assert.Equal(t, &MsgAssetData{Name: NotFoundAssetName}, got)
}

func TestRoundTrip_AssetData_Found(t *testing.T) {
	want := &MsgAssetData{
		Name:       "RAVEN",
		Amount:     100000000,
		Unit:       8,
		Reissuable: true,
		HasIPFS:    true,
	}
	want.IPFSHash[0] = 0x12
	got := roundTrip(t, MainNet, want).(*MsgAssetData)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Amount, got.Amount)
	assert.True(t, got.Reissuable)
	assert.True(t, got.HasIPFS)
	assert.Equal(t, want.IPFSHash, got.IPFSHash)
}

func TestRoundTrip_AsstNotFound(t *testing.T) {
	want := &MsgAsstNotFound{Assets: []AssetNotFoundEntry{{Name: "FOO"}, {Name: "BAR"}}}
	got := roundTrip(t, MainNet, want)
	assert.Equal(t, want, got, "decoded message mismatch:\nwant: %s\ngot:  %s", spew.Sdump(want), spew.Sdump(got))
}

func TestRoundTrip_GetHeaders(t *testing.T) {
	locators := []chainhash.Hash{{0x01}, {0x02}}
	want := NewMsgGetHeaders(locators, chainhash.Hash{0xff})
	got := roundTrip(t, MainNet, want)
	assert.Equal(t, want, got)
}

func TestRoundTrip_Inv(t *testing.T) {
	want := &MsgInv{
		InvList: []InvVect{
			{Type: InvTypeTx, Hash: chainhash.Hash{0x01}},
			{Type: InvTypeBlock, Hash: chainhash.Hash{0x02}},
		},
	}
	got := roundTrip(t, MainNet, want)
	assert.Equal(t, want, got)
}

func TestDecodePayload_UnknownCommand(t *testing.T) {
	_, err := DecodePayload("bogus", nil)
	assert.Error(t, err)
}
