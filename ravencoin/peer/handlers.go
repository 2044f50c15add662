package peer

import (
	"fmt"
	"net"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/RavenProject/ravenspv/ravencoin/chainlocator"
	"github.com/RavenProject/ravenspv/ravencoin/wire"
)

// dispatch is the single entry point readLoop calls for every decoded
// message. It enforces the dispatch precondition that a non-tx message
// arriving while a merkleblock is in progress abandons that block and
// counts as a protocol error (§4.2 dispatch precondition), then routes to
// the per-command handler.
func (p *Peer) dispatch(conn net.Conn, magic wire.RavencoinNet, msg wire.Message) error {
	cmd := msg.Command()

	p.mu.Lock()
	abandoning := p.block.awaiting && cmd != wire.CmdTx
	if abandoning {
		p.block = blockSubstate{}
	}
	p.mu.Unlock()

	var err error
	switch m := msg.(type) {
	case *wire.MsgVersion:
		err = p.handleVersion(conn, magic, m)
	case *wire.MsgVerAck:
		err = p.handleVerAck(conn, magic)
	case *wire.MsgAddr:
		err = p.handleAddr(m)
	case *wire.MsgInv:
		err = p.handleInv(conn, magic, m)
	case *wire.MsgTx:
		err = p.handleTx(m)
	case *wire.MsgHeaders:
		err = p.handleHeaders(conn, magic, m)
	case *wire.MsgGetAddr:
		err = p.handleGetAddr(conn, magic)
	case *wire.MsgGetData:
		err = p.handleGetData(conn, magic, m)
	case *wire.MsgNotFound:
		err = p.handleNotFound(m)
	case *wire.MsgPing:
		err = p.handlePing(conn, magic, m)
	case *wire.MsgPong:
		err = p.handlePong(m)
	case *wire.MsgMerkleBlock:
		err = p.handleMerkleBlock(m)
	case *wire.MsgReject:
		err = p.handleReject(m)
	case *wire.MsgFeeFilter:
		err = p.handleFeeFilter(m)
	case *wire.MsgAssetData:
		err = p.handleAssetData(m)
	case *wire.MsgAsstNotFound:
		err = p.handleAsstNotFound(m)
	case *wire.MsgSendCmpct, *wire.MsgSendHeaders, *wire.MsgMemPool:
		peerLog.Debugf("%s: accepted inert message %q", p.Host(), cmd)
	default:
		peerLog.Debugf("%s: ignoring unhandled message %q", p.Host(), cmd)
	}

	if err != nil {
		return &ProtocolError{Command: cmd, Err: err}
	}
	if abandoning {
		return &ProtocolError{Command: cmd, Err: ErrBlockAbandoned}
	}
	return nil
}

func (p *Peer) handleVersion(conn net.Conn, magic wire.RavencoinNet, m *wire.MsgVersion) error {
	if uint32(m.ProtocolVersion) < wire.MinProtocolVersion {
		return fmt.Errorf("peer: protocol version %d below minimum %d", m.ProtocolVersion, wire.MinProtocolVersion)
	}

	p.mu.Lock()
	p.protocolVersion = uint32(m.ProtocolVersion)
	p.services = m.Services
	p.userAgent = m.UserAgent
	p.lastBlock = m.StartHeight
	p.mu.Unlock()

	if err := p.sendLocked(conn, magic, &wire.MsgVerAck{}); err != nil {
		return err
	}

	p.mu.Lock()
	p.sentVerAck = true
	connected := p.sentVerAck && p.gotVerAck && p.status != Connected
	if connected {
		p.status = Connected
		p.disconnectTime = time.Time{}
	}
	cb := p.callbacks
	p.mu.Unlock()

	if connected && cb.Connected != nil {
		cb.Connected(p)
	}
	return nil
}

func (p *Peer) handleVerAck(conn net.Conn, magic wire.RavencoinNet) error {
	p.mu.Lock()
	p.gotVerAck = true
	connected := p.sentVerAck && p.gotVerAck && p.status != Connected
	if connected {
		p.status = Connected
		p.disconnectTime = time.Time{}
	}
	cb := p.callbacks
	p.mu.Unlock()

	if connected && cb.Connected != nil {
		cb.Connected(p)
	}
	return nil
}

// handleAddr applies the policy the wire layer deliberately leaves to its
// caller (§4.2 addr): drop (non-fatal) if the declared count exceeds
// MaxAddrPerMsg, ignore if unsolicited, skip non-IPv4 or non-full-node
// entries, and normalize timestamps that are absent or implausibly far in
// the future.
func (p *Peer) handleAddr(m *wire.MsgAddr) error {
	p.mu.Lock()
	solicited := p.sentGetaddr
	cb := p.callbacks
	p.mu.Unlock()

	if len(m.AddrList) > wire.MaxAddrPerMsg {
		return nil
	}
	if !solicited {
		return nil
	}

	now := time.Now()
	future := now.Add(10 * time.Minute).Unix()
	const staleFallback = 5 * 24 * time.Hour
	const relayedAgeOffset = 2 * time.Hour

	out := make([]wire.NetAddress, 0, len(m.AddrList))
	for _, na := range m.AddrList {
		if !na.Services.HasNodeNetwork() || !na.IsIPv4() {
			continue
		}
		ts := na.Timestamp
		if ts == 0 || int64(ts) > future {
			ts = uint32(now.Add(-staleFallback).Unix())
		}
		ts -= uint32(relayedAgeOffset / time.Second)
		out = append(out, wire.NetAddress{Timestamp: ts, Services: na.Services, IP: na.IP, Port: na.Port})
	}

	if cb.RelayedPeers != nil && len(out) > 0 {
		cb.RelayedPeers(p, out)
	}
	return nil
}

// handleGetAddr answers with an empty address list: this package never
// relays other peers' addresses onward.
func (p *Peer) handleGetAddr(conn net.Conn, magic wire.RavencoinNet) error {
	return p.sendLocked(conn, magic, &wire.MsgAddr{})
}

// handleInv implements the inv decision tree (§4.2 inv): the
// before-a-filter fatal check, the tx-count ceiling, the non-standard
// announcement sanity check against the locally known chain height, known-
// hash bookkeeping, getdata follow-up for anything unknown, and the
// catch-up pipeline re-issue once a batch reaches 500 block entries.
func (p *Peer) handleInv(conn net.Conn, magic wire.RavencoinNet, m *wire.MsgInv) error {
	if len(m.InvList) > wire.MaxInvPerMsg {
		return fmt.Errorf("%w: inv declares %d entries, max %d", ErrOversizedCollection, len(m.InvList), wire.MaxInvPerMsg)
	}

	p.mu.Lock()
	hasTxBasis := p.sentFilterload || p.sentMempool || p.sentGetblocks
	currentHeight := p.currentBlockHeight
	lastBlock := p.lastBlock
	lastBlockHash := p.lastBlockHash
	needsFilterUpdate := p.needsFilterUpdate
	armedMempool := p.mempool
	p.mu.Unlock()

	var txCount int
	var blockHashes []chainhash.Hash
	for _, iv := range m.InvList {
		switch iv.Type {
		case wire.InvTypeTx:
			txCount++
		case wire.InvTypeBlock, wire.InvTypeFilteredBlock:
			blockHashes = append(blockHashes, iv.Hash)
		}
	}

	if txCount > 0 && !hasTxBasis {
		return ErrGotInvBeforeFilter
	}
	if txCount > 10000 {
		return fmt.Errorf("%w: inv declares %d tx entries", ErrOversizedCollection, txCount)
	}

	blockCount := len(blockHashes)
	if currentHeight > 0 && blockCount > 2 && blockCount < 500 {
		if currentHeight+int32(blockCount) < lastBlock {
			return ErrNonStandardAnnouncement
		}
	}

	if blockCount == 1 && blockHashes[0] == lastBlockHash {
		blockCount = 0
	} else if blockCount == 1 {
		p.mu.Lock()
		p.lastBlockHash = blockHashes[0]
		p.mu.Unlock()
	}

	p.mu.Lock()
	for _, h := range blockHashes {
		p.rememberBlockHash(h)
	}
	p.mu.Unlock()

	var unknownTx []chainhash.Hash
	for _, iv := range m.InvList {
		if iv.Type != wire.InvTypeTx {
			continue
		}
		p.mu.Lock()
		_, known := p.knownTxHashes[iv.Hash]
		p.mu.Unlock()
		if known {
			p.mu.Lock()
			cb := p.callbacks
			p.mu.Unlock()
			if cb.HasTx != nil {
				cb.HasTx(p, iv.Hash)
			}
			continue
		}
		unknownTx = append(unknownTx, iv.Hash)
	}

	if len(unknownTx) > 0 {
		if err := p.SendGetdata(unknownTx, nil); err != nil {
			return err
		}
	}
	if !needsFilterUpdate && len(blockHashes) > 0 {
		if err := p.SendGetdata(nil, blockHashes); err != nil {
			return err
		}
	}
	if blockCount >= 500 && len(blockHashes) > 0 {
		first := blockHashes[0]
		last := blockHashes[len(blockHashes)-1]
		if err := p.SendGetblocks([]chainhash.Hash{last, first}, chainhash.Hash{}); err != nil {
			return err
		}
	}

	if txCount > 0 && armedMempool != nil {
		p.mu.Lock()
		p.mempool = nil
		p.mu.Unlock()
		if err := p.SendPing(armedMempool.callback); err != nil {
			return err
		}
	}

	return nil
}

// handleTx forwards a relayed transaction's raw bytes and, if a merkleblock
// is partway through assembly, removes it from the pending set and
// delivers the block once complete. Transaction parsing (computing the
// real txid from the wire bytes) is an external collaborator's job; this
// package derives a placeholder identity via double-SHA256 of the raw
// bytes purely to drive its own known-hash and block-assembly bookkeeping.
func (p *Peer) handleTx(m *wire.MsgTx) error {
	p.mu.Lock()
	hasBasis := p.sentFilterload || p.sentGetdataForTx
	p.mu.Unlock()
	if !hasBasis {
		return ErrTxBeforeRequest
	}

	hash := chainhash.DoubleHashH(m.Raw)

	p.mu.Lock()
	p.rememberTxHash(hash)
	var deliverRaw []byte
	if p.block.awaiting {
		for i, id := range p.block.pendingTxIDs {
			if id == hash {
				p.block.pendingTxIDs = append(p.block.pendingTxIDs[:i], p.block.pendingTxIDs[i+1:]...)
				break
			}
		}
		if len(p.block.pendingTxIDs) == 0 {
			deliverRaw = p.block.raw
			p.block = blockSubstate{}
		}
	}
	cb := p.callbacks
	p.mu.Unlock()

	if cb.RelayedTx != nil {
		cb.RelayedTx(p, m.Raw)
	}
	if deliverRaw != nil && cb.RelayedBlock != nil {
		cb.RelayedBlock(p, deliverRaw)
	}
	return nil
}

// handleHeaders decodes a headers message's mixed-encoding header list,
// runs the catch-up decision (§4.4), and issues the resulting follow-up
// request. It then relays each header's raw bytes onward; reconstructing a
// verifiable merkleblock from a bare header is an external collaborator's
// job.
func (p *Peer) handleHeaders(conn net.Conn, magic wire.RavencoinNet, m *wire.MsgHeaders) error {
	if m.Count == 0 {
		return nil
	}

	p.mu.Lock()
	engine := p.engine
	kawpowActivation := p.params.KawpowActivationTime
	earliestKeyTime := p.earliestKeyTime
	cb := p.callbacks
	p.mu.Unlock()

	if engine == nil {
		return fmt.Errorf("peer: received headers with no locator engine configured")
	}

	headers, err := chainlocator.DecodeHeaders(m.Raw, m.Count, kawpowActivation)
	if err != nil {
		return fmt.Errorf("peer: invalid headers message: %w", err)
	}

	decision, err := engine.Process(headers, earliestKeyTime)
	if err != nil {
		return fmt.Errorf("peer: locator computation failed: %w", err)
	}

	switch decision.Kind {
	case chainlocator.RequestGetBlocks:
		if err := p.SendGetblocks([]chainhash.Hash{decision.Tail, decision.Head}, chainhash.Hash{}); err != nil {
			return err
		}
	default:
		if err := p.SendGetheaders([]chainhash.Hash{decision.Tail, decision.Head}, chainhash.Hash{}); err != nil {
			return err
		}
	}

	if cb.RelayedBlock != nil {
		for _, h := range headers {
			cb.RelayedBlock(p, h.Body)
		}
	}
	return nil
}

// handleGetData answers a peer's request for tx bytes we hold (the
// RequestedTx callback), replying notfound for anything the owner can't
// supply or that exceeds TxMaxSize.
func (p *Peer) handleGetData(conn net.Conn, magic wire.RavencoinNet, m *wire.MsgGetData) error {
	p.mu.Lock()
	cb := p.callbacks
	p.mu.Unlock()

	var notFound []wire.InvVect
	for _, iv := range m.InvList {
		if iv.Type == wire.InvTypeTx && cb.RequestedTx != nil {
			raw := cb.RequestedTx(p, iv.Hash)
			if raw != nil && len(raw) < wire.TxMaxSize {
				if err := p.sendLocked(conn, magic, &wire.MsgTx{Raw: raw}); err != nil {
					return err
				}
				continue
			}
		}
		notFound = append(notFound, iv)
	}
	if len(notFound) > 0 {
		return p.sendLocked(conn, magic, &wire.MsgNotFound{InvList: notFound})
	}
	return nil
}

func (p *Peer) handleNotFound(m *wire.MsgNotFound) error {
	var tx, block []chainhash.Hash
	for _, iv := range m.InvList {
		if iv.Type == wire.InvTypeTx {
			tx = append(tx, iv.Hash)
		} else {
			block = append(block, iv.Hash)
		}
	}
	p.mu.Lock()
	cb := p.callbacks
	p.mu.Unlock()
	if cb.NotFound != nil {
		cb.NotFound(p, tx, block)
	}
	return nil
}

func (p *Peer) handlePing(conn net.Conn, magic wire.RavencoinNet, m *wire.MsgPing) error {
	return p.sendLocked(conn, magic, &wire.MsgPong{Nonce: m.Nonce})
}

// handlePong pops the pong FIFO head and applies an exponential smoothing
// filter to pingTime, per the FIFO pong-ordering guarantee (O3, §5): a
// pong that doesn't match the head nonce, or arrives with an empty FIFO,
// is a fatal protocol violation rather than something to resync past.
func (p *Peer) handlePong(m *wire.MsgPong) error {
	p.mu.Lock()
	if len(p.pongFIFO) == 0 {
		p.mu.Unlock()
		return ErrUnexpectedPong
	}
	head := p.pongFIFO[0]
	if head.nonce != m.Nonce {
		p.mu.Unlock()
		return fmt.Errorf("%w: got nonce %d, want %d", ErrUnexpectedPong, m.Nonce, head.nonce)
	}
	p.pongFIFO = p.pongFIFO[1:]
	rtt := time.Since(head.startTime)
	if p.pingTime == 0 {
		p.pingTime = rtt
	} else {
		p.pingTime = time.Duration(0.5*float64(p.pingTime) + 0.5*float64(rtt))
	}
	p.mu.Unlock()

	if head.callback != nil {
		head.callback(true)
	}
	return nil
}

// handleMerkleBlock begins tracking a new in-progress block (§4.2
// merkleblock, §3 invariant I3). Hashes the wire layer decoded that this
// peer hasn't already seen relayed as a tx are the ones still outstanding;
// they're kept in reverse order so handleTx can remove a match off the tail
// cheaply. If nothing is outstanding the block is already complete and is
// delivered immediately; otherwise it's parked in p.block until handleTx (or
// the dispatch abandon path) resolves it. Verifying that the hashes and
// flags actually prove inclusion against the header's merkle root is an
// external collaborator's job (§1); the header bytes stand in for the full
// block here the same way handleHeaders relays bare header bytes.
func (p *Peer) handleMerkleBlock(m *wire.MsgMerkleBlock) error {
	p.mu.Lock()
	hasBasis := p.sentFilterload || p.sentGetdataForTx
	cb := p.callbacks
	p.mu.Unlock()
	if !hasBasis {
		return ErrMerkleBlockBeforeRequest
	}

	p.mu.Lock()
	var pending []chainhash.Hash
	for i := len(m.Hashes) - 1; i >= 0; i-- {
		h := m.Hashes[i]
		if _, known := p.knownTxHashes[h]; !known {
			pending = append(pending, h)
		}
	}
	var deliverNow bool
	if len(pending) == 0 {
		deliverNow = true
	} else {
		p.block = blockSubstate{
			awaiting:     true,
			raw:          m.Header,
			pendingTxIDs: pending,
		}
	}
	p.mu.Unlock()

	if deliverNow && cb.RelayedBlock != nil {
		cb.RelayedBlock(p, m.Header)
	}
	return nil
}

func (p *Peer) handleReject(m *wire.MsgReject) error {
	if m.RejectedCommand != wire.CmdTx || !m.HasHash {
		return nil
	}
	p.mu.Lock()
	cb := p.callbacks
	p.mu.Unlock()
	if cb.RejectedTx != nil {
		cb.RejectedTx(p, m.Hash, m.Code)
	}
	return nil
}

func (p *Peer) handleFeeFilter(m *wire.MsgFeeFilter) error {
	p.mu.Lock()
	p.feePerKb = m.MinFee
	cb := p.callbacks
	p.mu.Unlock()
	if cb.SetFeePerKb != nil {
		cb.SetFeePerKb(p, m.MinFee)
	}
	return nil
}

func (p *Peer) handleAssetData(m *wire.MsgAssetData) error {
	p.mu.Lock()
	armed := p.asset
	p.asset = nil
	p.mu.Unlock()
	if armed == nil || armed.callback == nil {
		return nil
	}
	armed.callback(m, m.Name != wire.NotFoundAssetName)
	return nil
}

func (p *Peer) handleAsstNotFound(m *wire.MsgAsstNotFound) error {
	p.mu.Lock()
	armed := p.asset
	p.asset = nil
	p.mu.Unlock()
	if armed == nil || armed.callback == nil {
		return nil
	}
	armed.callback(&wire.MsgAssetData{Name: armed.name}, false)
	return nil
}
