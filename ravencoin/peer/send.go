package peer

import (
	"fmt"
	"io"
	"net"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/RavenProject/ravenspv/ravencoin/wire"
)

// sendLocked writes msg to conn under p's mutex, serializing all outbound
// traffic for this peer (ordering guarantee O1, §5): a single mutex around
// the send path is the simplest correct implementation of "outbound
// messages are totally ordered and byte-contiguous on the wire."
func (p *Peer) sendLocked(conn io.Writer, magic wire.RavencoinNet, msg wire.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return wire.EncodeMessage(conn, magic, msg)
}

func (p *Peer) connAndMagic() (net.Conn, wire.RavencoinNet, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		return nil, 0, fmt.Errorf("peer: not connected")
	}
	return p.conn, p.params.Net, nil
}

// SendMessage sends an arbitrary pre-built message, for callers
// constructing messages this package doesn't wrap with a dedicated
// Send method.
func (p *Peer) SendMessage(msg wire.Message) error {
	conn, magic, err := p.connAndMagic()
	if err != nil {
		return err
	}
	return p.sendLocked(conn, magic, msg)
}

// SendFilterload sends a bloom filter to the peer (§6).
func (p *Peer) SendFilterload(filter *wire.MsgFilterLoad) error {
	if err := p.SendMessage(filter); err != nil {
		return err
	}
	p.mu.Lock()
	p.sentFilterload = true
	p.mu.Unlock()
	return nil
}

// SendMempool requests the peer's mempool contents, arming the single
// mempool callback slot (§4.2 inv: "receipt of any tx while a mempool
// callback is armed triggers a chained ping").
func (p *Peer) SendMempool(knownHashes []chainhash.Hash, cb func(success bool)) error {
	conn, magic, err := p.connAndMagic()
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.mempool = &mempoolWait{knownHashes: knownHashes, callback: cb}
	p.sentMempool = true
	p.mempoolTime = time.Now().Add(MessageTimeout)
	p.mu.Unlock()
	return p.sendLocked(conn, magic, &wire.MsgMemPool{})
}

// SendGetheaders requests headers following locators, up to hashStop
// (§4.4 step 4).
func (p *Peer) SendGetheaders(locators []chainhash.Hash, hashStop chainhash.Hash) error {
	conn, magic, err := p.connAndMagic()
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.sentGetheaders = true
	p.mu.Unlock()
	return p.sendLocked(conn, magic, wire.NewMsgGetHeaders(locators, hashStop))
}

// SendGetblocks requests block inventory following locators, up to
// hashStop (§4.4 step 4).
func (p *Peer) SendGetblocks(locators []chainhash.Hash, hashStop chainhash.Hash) error {
	conn, magic, err := p.connAndMagic()
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.sentGetblocks = true
	p.mu.Unlock()
	return p.sendLocked(conn, magic, wire.NewMsgGetBlocks(locators, hashStop))
}

// SendInv announces tx hashes to the peer.
func (p *Peer) SendInv(txHashes []chainhash.Hash) error {
	conn, magic, err := p.connAndMagic()
	if err != nil {
		return err
	}
	msg := &wire.MsgInv{}
	for _, h := range txHashes {
		msg.InvList = append(msg.InvList, wire.InvVect{Type: wire.InvTypeTx, Hash: h})
	}
	return p.sendLocked(conn, magic, msg)
}

// SendGetdata requests tx and/or filtered-block data by hash (§4.2
// getdata), bounded by MaxGetDataHashes.
func (p *Peer) SendGetdata(txHashes, blockHashes []chainhash.Hash) error {
	if len(txHashes)+len(blockHashes) > MaxGetDataHashes {
		return fmt.Errorf("peer: getdata request of %d hashes exceeds max %d", len(txHashes)+len(blockHashes), MaxGetDataHashes)
	}
	conn, magic, err := p.connAndMagic()
	if err != nil {
		return err
	}
	msg := &wire.MsgGetData{}
	for _, h := range txHashes {
		msg.InvList = append(msg.InvList, wire.InvVect{Type: wire.InvTypeTx, Hash: h})
	}
	for _, h := range blockHashes {
		msg.InvList = append(msg.InvList, wire.InvVect{Type: wire.InvTypeFilteredBlock, Hash: h})
	}
	if len(txHashes) > 0 {
		p.mu.Lock()
		p.sentGetdataForTx = true
		p.mu.Unlock()
	}
	return p.sendLocked(conn, magic, msg)
}

// SendGetAsset requests metadata for a single Ravencoin asset, arming the
// single asset-data callback slot (§4.2 getassetdata/assetdata). cb receives
// the full decoded assetdata on arrival; found is false both when the peer
// replies with the NotFoundAssetName sentinel and when it sends asstnotfound,
// in which case only data.Name is meaningful.
func (p *Peer) SendGetAsset(name string, cb func(data *wire.MsgAssetData, found bool)) error {
	conn, magic, err := p.connAndMagic()
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.asset = &assetWait{name: name, callback: cb}
	p.mu.Unlock()
	return p.sendLocked(conn, magic, wire.NewMsgGetAssetData(name))
}

// SendGetaddr requests the peer's known address list. A subsequent addr
// message is only accepted by handleAddr if this has been sent first
// (§4.2 addr: "unsolicited ⇒ ignore").
func (p *Peer) SendGetaddr() error {
	conn, magic, err := p.connAndMagic()
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.sentGetaddr = true
	p.mu.Unlock()
	return p.sendLocked(conn, magic, &wire.MsgGetAddr{})
}

// SendPing sends a ping with a fresh nonce, pushing cb onto the pong FIFO
// (O3, §5: pong callbacks are invoked in enqueue order).
func (p *Peer) SendPing(cb func(success bool)) error {
	conn, magic, err := p.connAndMagic()
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.currentPing++
	nonce := p.currentPing
	p.pongFIFO = append(p.pongFIFO, pongWait{
		nonce:     nonce,
		startTime: time.Now(),
		callback:  cb,
	})
	p.mu.Unlock()

	return p.sendLocked(conn, magic, &wire.MsgPing{Nonce: nonce})
}

// Free releases the peer's resources. It is only legal to call once the
// reader has terminated (status == Disconnected), per the resource policy
// in §5: the socket, buffers, and known-hash arrays are owned exclusively
// by the Peer and require no further synchronization once the reader has
// exited.
func (p *Peer) Free() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.knownBlockHashes = nil
	p.knownTxHashes = nil
	p.pongFIFO = nil
	p.mempool = nil
	p.asset = nil
	p.conn = nil
}
