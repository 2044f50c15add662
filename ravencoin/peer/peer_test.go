package peer

import (
	"bufio"
	"bytes"
	"io"
	"net"
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RavenProject/ravenspv/ravencoin/chaincfg"
	"github.com/RavenProject/ravenspv/ravencoin/wire"
)

// conn mocks a network connection over an in-memory pipe, grounded in the
// bmd/colxd peer test suites' approach to exercising a peer without a real
// socket.
type conn struct {
	io.Reader
	io.Writer
	io.Closer
}

func (conn) LocalAddr() net.Addr                { return fakeAddr{} }
func (conn) RemoteAddr() net.Addr               { return fakeAddr{} }
func (conn) SetDeadline(t time.Time) error      { return nil }
func (conn) SetReadDeadline(t time.Time) error  { return nil }
func (conn) SetWriteDeadline(t time.Time) error { return nil }

type fakeAddr struct{}

func (fakeAddr) Network() string { return "tcp" }
func (fakeAddr) String() string  { return "mock:0" }

// pipe returns two full-duplex mock connections wired to each other: c1's
// writes arrive on c2's reads and vice versa.
func pipe() (*conn, *conn) {
	r1, w1 := io.Pipe() // c1 -> c2
	r2, w2 := io.Pipe() // c2 -> c1
	c1 := &conn{Reader: r2, Writer: w1, Closer: w1}
	c2 := &conn{Reader: r1, Writer: w2, Closer: w2}
	return c1, c2
}

func testPeer(cb Callbacks) (*Peer, *conn) {
	local, remote := pipe()
	p := New(&chaincfg.MainNetParams, "192.168.1.1", 8767, cb, nil)
	p.conn = local
	return p, remote
}

// readOneMessage reads and decodes exactly one framed message from r,
// failing the test if framing or checksum verification fails.
func readOneMessage(t *testing.T, r io.Reader) wire.Message {
	t.Helper()
	br := bufio.NewReader(r)
	hdrBuf := make([]byte, wire.HeaderLength)
	_, err := io.ReadFull(br, hdrBuf)
	require.NoError(t, err)
	hdr, err := wire.ReadMessageHeader(hdrBuf)
	require.NoError(t, err)
	payload := make([]byte, hdr.Length)
	_, err = io.ReadFull(br, payload)
	require.NoError(t, err)
	require.NoError(t, wire.VerifyChecksum(hdr, payload))
	msg, err := wire.DecodePayload(hdr.Command, payload)
	require.NoError(t, err)
	return msg
}

func TestHandshake_FiresConnectedOnceBothDirectionsComplete(t *testing.T) {
	var connectedCalls int
	p, remote := testPeer(Callbacks{Connected: func(*Peer) { connectedCalls++ }})
	defer remote.Close()

	done := make(chan struct{})
	go func() {
		readOneMessage(t, remote) // drains the verack handleVersion sends
		close(done)
	}()

	err := p.handleVersion(p.conn, wire.MainNet, &wire.MsgVersion{
		ProtocolVersion: int32(wire.ProtocolVersion),
		UserAgent:       "/test:0.0.1/",
		StartHeight:     123,
	})
	require.NoError(t, err)
	<-done
	assert.Equal(t, 0, connectedCalls, "must not fire Connected until both sides complete")
	assert.Equal(t, Disconnected, p.StatusNow())

	err = p.handleVerAck(p.conn, wire.MainNet)
	require.NoError(t, err)
	assert.Equal(t, 1, connectedCalls)
	assert.Equal(t, Connected, p.StatusNow())

	err = p.handleVerAck(p.conn, wire.MainNet)
	require.NoError(t, err)
	assert.Equal(t, 1, connectedCalls, "a second verack must not re-fire Connected")
}

func TestHandleVersion_RejectsBelowMinimum(t *testing.T) {
	p, remote := testPeer(Callbacks{})
	defer remote.Close()

	err := p.handleVersion(p.conn, wire.MainNet, &wire.MsgVersion{
		ProtocolVersion: int32(wire.MinProtocolVersion) - 1,
	})
	assert.Error(t, err)
}

func TestHandleInv_OversizedIsFatal(t *testing.T) {
	p, remote := testPeer(Callbacks{})
	defer remote.Close()

	invList := make([]wire.InvVect, wire.MaxInvPerMsg+1)
	err := p.handleInv(p.conn, wire.MainNet, &wire.MsgInv{InvList: invList})
	assert.ErrorIs(t, err, ErrOversizedCollection)
}

func TestHandleInv_TxBeforeFilterIsFatal(t *testing.T) {
	p, remote := testPeer(Callbacks{})
	defer remote.Close()

	err := p.handleInv(p.conn, wire.MainNet, &wire.MsgInv{
		InvList: []wire.InvVect{{Type: wire.InvTypeTx, Hash: chainhash.Hash{}}},
	})
	assert.ErrorIs(t, err, ErrGotInvBeforeFilter)
}

func TestHandleInv_KnownTxFiresHasTx(t *testing.T) {
	var hasTxCalls int
	p, remote := testPeer(Callbacks{HasTx: func(_ *Peer, _ chainhash.Hash) { hasTxCalls++ }})
	defer remote.Close()
	p.sentFilterload = true

	hash := chainhash.Hash{0xAB}
	p.rememberTxHash(hash)

	err := p.handleInv(p.conn, wire.MainNet, &wire.MsgInv{
		InvList: []wire.InvVect{{Type: wire.InvTypeTx, Hash: hash}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, hasTxCalls)
}

func TestSendPing_HandlePong_FIFOOrderAndRTT(t *testing.T) {
	p, remote := testPeer(Callbacks{})
	defer remote.Close()

	var order []int
	done := make(chan struct{})
	go func() {
		readOneMessage(t, remote)
		readOneMessage(t, remote)
		close(done)
	}()

	require.NoError(t, p.SendPing(func(bool) { order = append(order, 1) }))
	require.NoError(t, p.SendPing(func(bool) { order = append(order, 2) }))
	<-done

	require.NoError(t, p.handlePong(&wire.MsgPong{Nonce: 1}))
	require.NoError(t, p.handlePong(&wire.MsgPong{Nonce: 2}))
	assert.Equal(t, []int{1, 2}, order)
	assert.GreaterOrEqual(t, p.PingTime(), time.Duration(0))
}

func TestHandlePong_UnexpectedIsFatal(t *testing.T) {
	p, remote := testPeer(Callbacks{})
	defer remote.Close()

	err := p.handlePong(&wire.MsgPong{Nonce: 999})
	assert.ErrorIs(t, err, ErrUnexpectedPong)
}

func TestAssetData_NotFoundResolvesArmedCallback(t *testing.T) {
	p, remote := testPeer(Callbacks{})
	defer remote.Close()

	var gotName string
	var gotFound bool
	p.asset = &assetWait{name: "MYASSET", callback: func(data *wire.MsgAssetData, found bool) {
		gotName, gotFound = data.Name, found
	}}

	require.NoError(t, p.handleAssetData(&wire.MsgAssetData{Name: wire.NotFoundAssetName}))
	assert.Equal(t, wire.NotFoundAssetName, gotName)
	assert.False(t, gotFound)
	assert.Nil(t, p.asset)
}

func TestAssetData_FoundResolvesArmedCallback(t *testing.T) {
	p, remote := testPeer(Callbacks{})
	defer remote.Close()

	var gotFound bool
	var gotAmount uint64
	p.asset = &assetWait{name: "MYASSET", callback: func(data *wire.MsgAssetData, found bool) {
		gotFound, gotAmount = found, data.Amount
	}}

	require.NoError(t, p.handleAssetData(&wire.MsgAssetData{Name: "MYASSET", Amount: 100}))
	assert.True(t, gotFound)
	assert.Equal(t, uint64(100), gotAmount)
}

func TestReadHeaderResync_SkipsLeadingGarbage(t *testing.T) {
	var payload bytes.Buffer
	require.NoError(t, wire.EncodeMessage(&payload, wire.MainNet, &wire.MsgPing{Nonce: 42}))

	garbage := bytes.Repeat([]byte{0x00}, 17)
	stream := append(garbage, payload.Bytes()...)

	br := bufio.NewReader(bytes.NewReader(stream))
	hdr, err := readHeaderResync(br, wire.MainNet)
	require.NoError(t, err)
	assert.Equal(t, wire.CmdPing, hdr.Command)

	rest, err := io.ReadAll(br)
	require.NoError(t, err)
	assert.Len(t, rest, int(hdr.Length))
}

func TestRerequestBlocks_TrimsToFromBlock(t *testing.T) {
	p, remote := testPeer(Callbacks{})
	defer remote.Close()

	h1 := chainhash.Hash{1}
	h2 := chainhash.Hash{2}
	h3 := chainhash.Hash{3}
	p.knownBlockHashes = []chainhash.Hash{h1, h2, h3}

	errc := make(chan error, 1)
	go func() { errc <- p.RerequestBlocks(h2) }()

	msg := readOneMessage(t, remote)
	require.NoError(t, <-errc)

	gd, ok := msg.(*wire.MsgGetData)
	require.True(t, ok)
	require.Len(t, gd.InvList, 2)
	assert.Equal(t, h2, gd.InvList[0].Hash)
	assert.Equal(t, h3, gd.InvList[1].Hash)
}

func TestHandleMerkleBlock_AllHashesKnownDeliversImmediately(t *testing.T) {
	var delivered []byte
	p, remote := testPeer(Callbacks{RelayedBlock: func(_ *Peer, raw []byte) { delivered = raw }})
	defer remote.Close()
	p.sentFilterload = true

	known := chainhash.Hash{0xaa}
	p.knownTxHashes[known] = struct{}{}

	header := bytes.Repeat([]byte{0x11}, legacyHeaderLenForTest)
	err := p.handleMerkleBlock(&wire.MsgMerkleBlock{Header: header, Hashes: []chainhash.Hash{known}})
	require.NoError(t, err)
	assert.Equal(t, header, delivered)
	assert.False(t, p.block.awaiting)
}

func TestHandleMerkleBlock_UnknownHashesParkPendingBlock(t *testing.T) {
	var delivered []byte
	p, remote := testPeer(Callbacks{RelayedBlock: func(_ *Peer, raw []byte) { delivered = raw }})
	defer remote.Close()
	p.sentFilterload = true

	unknown1 := chainhash.Hash{0x01}
	unknown2 := chainhash.Hash{0x02}
	header := bytes.Repeat([]byte{0x22}, legacyHeaderLenForTest)

	err := p.handleMerkleBlock(&wire.MsgMerkleBlock{Header: header, Hashes: []chainhash.Hash{unknown1, unknown2}})
	require.NoError(t, err)
	assert.Nil(t, delivered)
	require.True(t, p.block.awaiting)
	assert.Equal(t, []chainhash.Hash{unknown2, unknown1}, p.block.pendingTxIDs)

	p.sentGetdataForTx = true
	require.NoError(t, p.handleTx(&wire.MsgTx{Raw: []byte("tx1")}))
	require.True(t, p.block.awaiting, "tx1 matches neither pending hash, so the block stays pending")
}

func TestDispatch_NonTxAbandonsPendingMerkleBlock(t *testing.T) {
	p, remote := testPeer(Callbacks{})
	defer remote.Close()

	p.block = blockSubstate{awaiting: true, pendingTxIDs: []chainhash.Hash{{0x01}}}

	err := p.dispatch(remote, wire.MainNet, &wire.MsgFeeFilter{MinFee: 1000})
	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.ErrorIs(t, protoErr.Err, ErrBlockAbandoned)
	assert.False(t, p.block.awaiting)
}

const legacyHeaderLenForTest = 80
