package chainlocator

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// blockMaxTimeDrift is the forward time-drift tolerance applied to a
// header's timestamp when deciding whether chain catch-up has reached the
// wallet's earliest key time. Bitcoin-family networks commonly tolerate
// up to two hours of future-dated block timestamps; this package uses the
// same figure absent a spec-mandated value.
const blockMaxTimeDrift = 2 * 60 * 60

// sevenDaysSeconds is the fixed catch-up lookback window (§4.4 step 2).
const sevenDaysSeconds = 7 * 24 * 60 * 60

// HashFunc computes a proof-of-work-derived block hash over a legacy
// 80-byte header body. X16R and X16Rv2 share this shape.
type HashFunc func(header []byte) [32]byte

// KawpowFunc computes a KAWPOW light-verification hash from the
// double-SHA-256 of a header's 80-byte prefix, the header's mix hash, and
// its nonce.
type KawpowFunc func(headerHash [32]byte, mixHash [32]byte, nonce uint64) [32]byte

// Engine derives block-chain locators from decoded header sequences and
// decides whether the peer is still catching up. The proof-of-work
// functions are injected since the real algorithms are opaque externals.
type Engine struct {
	X16R                 HashFunc
	X16Rv2               HashFunc
	Kawpow               KawpowFunc
	X16Rv2ActivationTime uint32
}

// reverse32 returns a byte-reversed copy of b, matching the canonical
// display order KAWPOW hash inputs and outputs are compared in.
func reverse32(b [32]byte) [32]byte {
	var out [32]byte
	for i := range b {
		out[i] = b[len(b)-1-i]
	}
	return out
}

// HeaderHash computes the locator hash for a single decoded header,
// dispatching on its encoding (§4.4 step 3).
func (e *Engine) HeaderHash(h Header) (chainhash.Hash, error) {
	switch h.Kind {
	case Legacy:
		fn := e.X16R
		if h.Timestamp >= e.X16Rv2ActivationTime {
			fn = e.X16Rv2
		}
		if fn == nil {
			return chainhash.Hash{}, fmt.Errorf("chainlocator: no hash function configured for legacy header at timestamp %d", h.Timestamp)
		}
		return chainhash.Hash(fn(h.LegacyBody())), nil

	case Kawpow:
		if e.Kawpow == nil {
			return chainhash.Hash{}, fmt.Errorf("chainlocator: no KAWPOW verify function configured")
		}
		var headerHash [32]byte
		copy(headerHash[:], chainhash.DoubleHashB(h.LegacyBody()))
		headerHash = reverse32(headerHash)
		mix := reverse32(h.MixHash())
		out := e.Kawpow(headerHash, mix, h.Nonce())
		return chainhash.Hash(reverse32(out)), nil

	default:
		return chainhash.Hash{}, fmt.Errorf("chainlocator: unknown header kind %v", h.Kind)
	}
}

// Locators computes the tail and head locator hashes for a non-empty
// window of decoded headers (§4.4 step 3), returned in the spec's
// [tail, head] order: tail is derived from the last header in the
// message, head from the first. This mirrors the spec's scenario 5, where
// a message with a legacy prefix and a KAWPOW suffix yields a
// KAWPOW-derived tail locator and an X16R/X16Rv2-derived head locator.
func (e *Engine) Locators(headers []Header) (tail, head chainhash.Hash, err error) {
	if len(headers) == 0 {
		return chainhash.Hash{}, chainhash.Hash{}, fmt.Errorf("chainlocator: cannot compute locators for an empty header window")
	}
	head, err = e.HeaderHash(headers[0])
	if err != nil {
		return chainhash.Hash{}, chainhash.Hash{}, err
	}
	tail, err = e.HeaderHash(headers[len(headers)-1])
	if err != nil {
		return chainhash.Hash{}, chainhash.Hash{}, err
	}
	return tail, head, nil
}

// StillCatchingUp reports whether the peer is still behind
// earliestKeyTime after processing a headers message of the given count
// whose last header carries lastTimestamp (§4.4 step 2).
func StillCatchingUp(count uint64, lastTimestamp, earliestKeyTime uint32) bool {
	if count >= MaxCatchUpBatch {
		return true
	}
	return uint64(lastTimestamp)+sevenDaysSeconds+blockMaxTimeDrift < uint64(earliestKeyTime)
}

// MaxCatchUpBatch is the header count at or above which catch-up is
// assumed to be ongoing regardless of timestamp (§4.4 step 2: count ≥
// 2000), matching MaxHeadersPerMsg.
const MaxCatchUpBatch = 2000

// RequestKind identifies which follow-up request the engine selects after
// processing a headers message.
type RequestKind int

const (
	// RequestGetHeaders continues chain sync once the earliest-key-time
	// window has been reached.
	RequestGetHeaders RequestKind = iota
	// RequestGetBlocks requests full block inventory while still behind
	// the earliest-key-time window.
	RequestGetBlocks
)

// Decision is the engine's recommended follow-up action after processing
// a headers message.
type Decision struct {
	Kind  RequestKind
	Tail  chainhash.Hash
	Head  chainhash.Hash
}

// Process runs the full §4.4 algorithm over a decoded header window:
// computes locators and selects getblocks vs getheaders based on whether
// the peer is still catching up to earliestKeyTime.
func (e *Engine) Process(headers []Header, earliestKeyTime uint32) (Decision, error) {
	if len(headers) == 0 {
		return Decision{}, fmt.Errorf("chainlocator: cannot process an empty headers message")
	}

	tail, head, err := e.Locators(headers)
	if err != nil {
		return Decision{}, err
	}

	lastTimestamp := headers[len(headers)-1].Timestamp
	kind := RequestGetHeaders
	if StillCatchingUp(uint64(len(headers)), lastTimestamp, earliestKeyTime) {
		kind = RequestGetBlocks
	}

	return Decision{Kind: kind, Tail: tail, Head: head}, nil
}
