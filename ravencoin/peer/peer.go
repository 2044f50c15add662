// Package peer implements the per-connection state machine and runtime for
// a single Ravencoin SPV peer (§4.3, §4.5): the version handshake, framed
// message dispatch, outstanding-request bookkeeping, and the chain-sync
// follow-up driven by the chainlocator package.
//
// Shared mutable state is protected by one coarse mutex per Peer (Design
// Note, §9): the blocking read loop and any other goroutine calling a
// Send* method or a setter both take the same lock for the duration of a
// state read or mutation. This replaces the volatile-field-plus-atomics
// style common in C ports of this protocol with a single, easy-to-reason
// synchronization primitive, appropriate given a single peer's modest
// message throughput.
package peer

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/btcsuite/btclog"
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/RavenProject/ravenspv/ravencoin/chaincfg"
	"github.com/RavenProject/ravenspv/ravencoin/chainlocator"
	"github.com/RavenProject/ravenspv/ravencoin/wire"
)

// peerLog is the package-level logger, following the btcsuite convention
// of a disabled-by-default logger a caller wires up with UseLogger.
var peerLog btclog.Logger = btclog.Disabled

// UseLogger sets the package-wide logger used by this package's runtime.
func UseLogger(l btclog.Logger) { peerLog = l }

// Status is the connection lifecycle state of a Peer (§4.3).
type Status int

const (
	// Disconnected is the initial state and the state after any
	// terminal disconnect.
	Disconnected Status = iota
	// WaitingForNetwork is entered when Connect is called but the owner
	// reports the network is unreachable.
	WaitingForNetwork
	// Connecting is entered once a connection attempt has been started.
	Connecting
	// Connected is entered once both sides of the version handshake
	// have completed.
	Connected
)

func (s Status) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case WaitingForNetwork:
		return "waiting-for-network"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return fmt.Sprintf("unknown status %d", int(s))
	}
}

// Bit-exact protocol constants (§6).
const (
	// ConnectTimeout bounds a TCP connect attempt.
	ConnectTimeout = 3 * time.Second
	// MessageTimeout bounds the wait for a single message's payload
	// once its header has been read, reset whenever bytes arrive.
	MessageTimeout = 10 * time.Second
	// MaxGetDataHashes bounds the getdata hash count a single
	// SendGetdata call will request.
	MaxGetDataHashes = 50000
	// maxKnownHashes bounds knownBlockHashes and knownTxHashes. Once the
	// cap is reached, the oldest third of knownBlockHashes is evicted, and
	// an arbitrary third of knownTxHashes.
	maxKnownHashes = 50000
)

// LocalHost is the IPv4-mapped IPv6 loopback address this package
// advertises as its own address in the version handshake's "from" field,
// per the bit-exact constant in §6.
var LocalHost = net.ParseIP("::ffff:127.0.0.1")

// Callbacks are the one-way hooks the owner (a Peer Manager) registers to
// observe this connection (§6). Any field left nil is simply not invoked.
type Callbacks struct {
	Connected        func(p *Peer)
	Disconnected     func(p *Peer, err error)
	RelayedPeers     func(p *Peer, addrs []wire.NetAddress)
	RelayedTx        func(p *Peer, raw []byte)
	HasTx            func(p *Peer, hash chainhash.Hash)
	RejectedTx       func(p *Peer, hash chainhash.Hash, code wire.RejectCode)
	RelayedBlock     func(p *Peer, raw []byte)
	NotFound         func(p *Peer, txHashes, blockHashes []chainhash.Hash)
	SetFeePerKb      func(p *Peer, satPerKb uint64)
	RequestedTx      func(p *Peer, hash chainhash.Hash) []byte
	NetworkReachable func() bool
	ThreadCleanup    func(p *Peer)
}

// pongWait is one outstanding ping's bookkeeping, queued in arrival order
// per the pong-FIFO ordering guarantee (O3, §5).
type pongWait struct {
	nonce     uint64
	startTime time.Time
	callback  func(success bool)
}

// mempoolWait is the single outstanding mempool request's bookkeeping.
type mempoolWait struct {
	knownHashes []chainhash.Hash
	callback    func(success bool)
}

// assetWait is the single outstanding asset-data request's bookkeeping.
type assetWait struct {
	name     string
	callback func(data *wire.MsgAssetData, found bool)
}

// blockSubstate models the "partially assembled merkleblock" as a state
// machine rather than a nullable field (Design Note, §9): Idle, or
// awaiting the remaining transactions of a block whose merkleblock has
// already arrived.
type blockSubstate struct {
	awaiting     bool
	raw          []byte
	pendingTxIDs []chainhash.Hash
}

// Peer is the per-connection state and runtime for a single Ravencoin SPV
// wire-protocol peer (§4.3). Exported methods are safe for concurrent use;
// a single mutex serializes all state access between the read loop and any
// caller invoking a Send* method or setter from another goroutine.
type Peer struct {
	mu sync.Mutex

	params *chaincfg.Params
	host   string
	port   uint16
	conn   net.Conn
	cancel context.CancelFunc

	callbacks Callbacks

	status Status

	protocolVersion uint32
	services        wire.ServiceFlag
	userAgent       string
	lastBlock       int32

	sentVersion bool
	sentVerAck  bool
	gotVerAck   bool

	sentMempool        bool
	sentGetheaders     bool
	sentGetblocks      bool
	sentFilterload     bool
	sentGetaddr        bool
	sentGetdataForTx   bool
	needsFilterUpdate  bool
	earliestKeyTime    uint32
	currentBlockHeight int32

	disconnectTime time.Time
	mempoolTime    time.Time

	pongFIFO    []pongWait
	mempool     *mempoolWait
	asset       *assetWait
	currentPing uint64

	knownBlockHashes []chainhash.Hash
	knownTxHashes    map[chainhash.Hash]struct{}
	lastBlockHash    chainhash.Hash

	pingTime   time.Duration
	feePerKb   uint64
	block      blockSubstate
	lastErr    error

	engine *chainlocator.Engine
}

// New allocates a Peer for host:port on the given network, with all capped
// containers empty and all deadlines set to the infinite future (§4.3 New).
// engine supplies the proof-of-work functions the header-chain locator
// engine needs to interpret a headers message (§4.4); it may be nil if the
// caller never expects to receive headers (e.g. a peer used only for
// asset-data queries).
func New(params *chaincfg.Params, host string, port uint16, callbacks Callbacks, engine *chainlocator.Engine) *Peer {
	return &Peer{
		params:          params,
		host:            host,
		port:            port,
		callbacks:       callbacks,
		status:          Disconnected,
		protocolVersion: wire.InitProtoVersion,
		knownTxHashes:   make(map[chainhash.Hash]struct{}),
		disconnectTime:  time.Time{},
		mempoolTime:     time.Time{},
		engine:          engine,
	}
}

// SetCallbacks replaces the peer's callback registry.
func (p *Peer) SetCallbacks(cb Callbacks) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.callbacks = cb
}

// SetEarliestKeyTime sets the wallet's earliest key creation time, the
// reference point the header-chain locator engine uses to decide whether
// catch-up has completed (§4.4 step 2).
func (p *Peer) SetEarliestKeyTime(t uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.earliestKeyTime = t
}

// SetCurrentBlockHeight records the caller's view of the current chain
// height, used to evaluate the inv "non-standard announcement" policy
// check (§4.2 inv).
func (p *Peer) SetCurrentBlockHeight(h int32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.currentBlockHeight = h
}

// SetNeedsFilterUpdate marks that a pending bloom filter update should
// suppress block fetch on the next inv cycle (§4.2 inv).
func (p *Peer) SetNeedsFilterUpdate(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.needsFilterUpdate = v
}

// ScheduleDisconnect sets disconnectTime to now+seconds, or to the
// infinite future if seconds is negative (§4.3 ScheduleDisconnect).
func (p *Peer) ScheduleDisconnect(seconds int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if seconds < 0 {
		p.disconnectTime = time.Time{}
		return
	}
	p.disconnectTime = time.Now().Add(time.Duration(seconds) * time.Second)
}

// Host returns the peer's remote host.
func (p *Peer) Host() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.host
}

// Version returns the peer's negotiated protocol version, or
// wire.InitProtoVersion before the handshake completes.
func (p *Peer) Version() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.protocolVersion
}

// UserAgent returns the peer's advertised user agent string.
func (p *Peer) UserAgent() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.userAgent
}

// LastBlock returns the peer's advertised starting height.
func (p *Peer) LastBlock() int32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastBlock
}

// PingTime returns the peer's exponentially smoothed round-trip time.
func (p *Peer) PingTime() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pingTime
}

// FeePerKb returns the last fee-per-kilobyte the peer asked us to respect.
func (p *Peer) FeePerKb() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.feePerKb
}

// StatusNow returns the peer's current connection status.
func (p *Peer) StatusNow() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// LastError returns the error that caused the most recent disconnect, if
// any.
func (p *Peer) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Connect transitions the peer to Connecting and spawns the runtime
// (§4.5), unless the owner reports the network unreachable, in which case
// the peer enters WaitingForNetwork and Connect returns without spawning
// anything; the caller is expected to retry Connect later.
func (p *Peer) Connect(ctx context.Context) {
	p.mu.Lock()
	if p.status != Disconnected && p.status != WaitingForNetwork {
		p.mu.Unlock()
		return
	}

	reachable := true
	if p.callbacks.NetworkReachable != nil {
		reachable = p.callbacks.NetworkReachable()
	}
	if !reachable {
		p.status = WaitingForNetwork
		p.mu.Unlock()
		return
	}

	p.status = Connecting
	p.disconnectTime = time.Now().Add(ConnectTimeout)
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.mu.Unlock()

	go p.run(runCtx)
}

// Disconnect closes the peer's socket; the read loop observes the closed
// connection and performs the terminal-exit sequence (§4.5).
func (p *Peer) Disconnect() {
	p.mu.Lock()
	conn := p.conn
	cancel := p.cancel
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		conn.Close()
	}
}

// RerequestBlocks trims knownBlockHashes to start at fromBlock and resends
// the remainder as a getdata request for filtered blocks (§4.3
// RerequestBlocks).
func (p *Peer) RerequestBlocks(fromBlock chainhash.Hash) error {
	p.mu.Lock()
	idx := -1
	for i, h := range p.knownBlockHashes {
		if h == fromBlock {
			idx = i
			break
		}
	}
	var remaining []chainhash.Hash
	if idx >= 0 {
		remaining = append([]chainhash.Hash(nil), p.knownBlockHashes[idx:]...)
		p.knownBlockHashes = remaining
	}
	conn := p.conn
	magic := p.params.Net
	p.mu.Unlock()

	if conn == nil || len(remaining) == 0 {
		return nil
	}

	msg := &wire.MsgGetData{}
	for _, h := range remaining {
		msg.InvList = append(msg.InvList, wire.InvVect{Type: wire.InvTypeFilteredBlock, Hash: h})
	}
	return p.sendLocked(conn, magic, msg)
}

// rememberBlockHash records a new block hash into the capped known-hash
// set, evicting the oldest third once the cap is reached (I2: |known| ≤
// 50000 at all observation points).
func (p *Peer) rememberBlockHash(h chainhash.Hash) {
	if len(p.knownBlockHashes) >= maxKnownHashes {
		evict := len(p.knownBlockHashes) / 3
		p.knownBlockHashes = append([]chainhash.Hash(nil), p.knownBlockHashes[evict:]...)
	}
	p.knownBlockHashes = append(p.knownBlockHashes, h)
}

func (p *Peer) rememberTxHash(h chainhash.Hash) {
	if len(p.knownTxHashes) >= maxKnownHashes {
		// Evicting a random third of a map is good enough here: the
		// known-tx set only exists to avoid redundant getdata
		// requests, not to provide an ordering guarantee.
		evict := len(p.knownTxHashes) / 3
		for k := range p.knownTxHashes {
			if evict <= 0 {
				break
			}
			delete(p.knownTxHashes, k)
			evict--
		}
	}
	p.knownTxHashes[h] = struct{}{}
}
