package peer

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/RavenProject/ravenspv/ravencoin/wire"
)

// deadlineTick is how often deadlineLoop checks disconnectTime and
// mempoolTime against the clock. It only needs to be fine-grained relative
// to ConnectTimeout and MessageTimeout, not to network latency.
const deadlineTick = 250 * time.Millisecond

// run dials the peer, performs the outbound half of the version handshake,
// and drives the connection until it terminates (§4.5).
func (p *Peer) run(ctx context.Context) {
	p.mu.Lock()
	host, port, params := p.host, p.port, p.params
	p.mu.Unlock()

	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))
	dialer := net.Dialer{Timeout: ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		p.terminal(err)
		return
	}

	p.mu.Lock()
	p.conn = conn
	p.mu.Unlock()

	version := p.buildVersionMessage()
	if err := p.sendLocked(conn, params.Net, version); err != nil {
		conn.Close()
		p.terminal(err)
		return
	}
	p.mu.Lock()
	p.sentVersion = true
	p.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	br := bufio.NewReaderSize(conn, 4096)
	g.Go(func() error { return p.readLoop(gctx, conn, br, params.Net) })
	g.Go(func() error { return p.deadlineLoop(gctx, conn) })

	err = g.Wait()
	p.terminal(err)
}

// buildVersionMessage constructs the outbound version payload this package
// advertises (§4.2 version, §6 bit-exact constants).
func (p *Peer) buildVersionMessage() *wire.MsgVersion {
	p.mu.Lock()
	defer p.mu.Unlock()

	remoteIP := net.ParseIP(p.host)
	return &wire.MsgVersion{
		ProtocolVersion: int32(wire.ProtocolVersion),
		Services:        wire.EnabledServices,
		Timestamp:       time.Now().Unix(),
		AddrRecv: wire.NetAddress{
			Services: 0,
			IP:       wire.V4MappedIPv6(remoteIP),
			Port:     p.port,
		},
		AddrFrom: wire.NetAddress{
			Services: wire.EnabledServices,
			IP:       LocalHost,
			Port:     0,
		},
		Nonce:       uint64(time.Now().UnixNano()),
		UserAgent:   "/ravenspv:0.1.0/",
		StartHeight: p.currentBlockHeight,
		Relay:       true,
	}
}

// readHeaderResync scans br for the next valid message header, discarding
// exactly the bytes that turn out not to be part of one (§4.2 framing
// resync): a 4-byte magic match is only committed once the full 24-byte
// candidate header parses, so a spurious magic-byte coincidence inside
// garbage never consumes more than the single byte it starts at.
func readHeaderResync(br *bufio.Reader, magic wire.RavencoinNet) (*wire.MessageHeader, error) {
	var wantMagic [4]byte
	binary.LittleEndian.PutUint32(wantMagic[:], uint32(magic))

	for {
		peeked, err := br.Peek(wire.HeaderLength)
		if len(peeked) < 4 {
			if err != nil {
				return nil, err
			}
			return nil, io.ErrUnexpectedEOF
		}

		if string(peeked[0:4]) == string(wantMagic[:]) && len(peeked) == wire.HeaderLength {
			if hdr, decodeErr := wire.ReadMessageHeader(peeked); decodeErr == nil {
				if _, discardErr := br.Discard(wire.HeaderLength); discardErr != nil {
					return nil, discardErr
				}
				return hdr, nil
			}
		}

		if _, err := br.Discard(1); err != nil {
			return nil, err
		}
	}
}

// readFullWithDeadline reads exactly len(buf) bytes from conn, extending
// the read deadline by MessageTimeout after every partial read so the
// timeout measures stalled progress rather than total transfer time
// (§4.5: "reset whenever bytes arrive").
func readFullWithDeadline(conn net.Conn, r io.Reader, buf []byte) error {
	if err := conn.SetReadDeadline(time.Now().Add(MessageTimeout)); err != nil {
		return err
	}
	read := 0
	for read < len(buf) {
		n, err := r.Read(buf[read:])
		read += n
		if err != nil {
			return err
		}
		if n > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(MessageTimeout)); err != nil {
				return err
			}
		}
	}
	return nil
}

// readLoop is the blocking resync-decode-dispatch cycle that runs for the
// lifetime of a connection (§4.5).
func (p *Peer) readLoop(ctx context.Context, conn net.Conn, br *bufio.Reader, magic wire.RavencoinNet) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		hdr, err := readHeaderResync(br, magic)
		if err != nil {
			return err
		}

		payload := make([]byte, hdr.Length)
		if err := readFullWithDeadline(conn, br, payload); err != nil {
			return err
		}

		if err := wire.VerifyChecksum(hdr, payload); err != nil {
			return fmt.Errorf("peer: command %q: %w", hdr.Command, err)
		}

		msg, err := wire.DecodePayload(hdr.Command, payload)
		if err != nil {
			return fmt.Errorf("peer: decoding %q: %w", hdr.Command, err)
		}

		if err := p.dispatch(conn, magic, msg); err != nil {
			return err
		}
	}
}

// deadlineLoop polls disconnectTime and mempoolTime, closing the
// connection once the former elapses and chaining a ping once the latter
// does (§4.5).
func (p *Peer) deadlineLoop(ctx context.Context, conn net.Conn) error {
	ticker := time.NewTicker(deadlineTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			p.mu.Lock()
			timedOut := !p.disconnectTime.IsZero() && now.After(p.disconnectTime)
			mempoolOverdue := p.sentMempool && p.mempool != nil && !p.mempoolTime.IsZero() && now.After(p.mempoolTime)
			var mempoolCb func(success bool)
			if mempoolOverdue {
				mempoolCb = p.mempool.callback
				p.mempool = nil
				p.mempoolTime = time.Time{}
			}
			p.mu.Unlock()

			if timedOut {
				p.mu.Lock()
				p.lastErr = ErrConnectionTimedOut
				p.mu.Unlock()
				conn.Close()
				return ErrConnectionTimedOut
			}
			if mempoolOverdue {
				if err := p.SendPing(mempoolCb); err != nil {
					return err
				}
			}
		}
	}
}

// terminal runs the shared teardown sequence once the runtime's goroutines
// exit for any reason (§4.5): every outstanding callback is resolved with
// failure, in FIFO order for pongs, before the owner is notified.
func (p *Peer) terminal(err error) {
	p.mu.Lock()
	if p.lastErr != nil {
		err = p.lastErr
	} else {
		p.lastErr = err
	}
	p.status = Disconnected
	pongs := p.pongFIFO
	p.pongFIFO = nil
	mempool := p.mempool
	p.mempool = nil
	asset := p.asset
	p.asset = nil
	cb := p.callbacks
	p.mu.Unlock()

	for _, pw := range pongs {
		if pw.callback != nil {
			pw.callback(false)
		}
	}
	if mempool != nil && mempool.callback != nil {
		mempool.callback(false)
	}
	if asset != nil && asset.callback != nil {
		asset.callback(&wire.MsgAssetData{Name: asset.name}, false)
	}

	if cb.Disconnected != nil {
		cb.Disconnected(p, err)
	}
	if cb.ThreadCleanup != nil {
		cb.ThreadCleanup(p)
	}
}
