// Package chainlocator decodes the mixed legacy/KAWPOW header streams a
// headers message carries and derives the block-locator pair used in the
// next getheaders/getblocks request (§4.4).
//
// Header-encoding heteromorphism is modeled here as a closed sum type
// (Header, tagged by Kind) produced by a single decoder that walks the raw
// message bytes and yields a sequence of tagged headers; Engine consumes
// that sequence to compute locators and to decide the catch-up strategy.
// The actual proof-of-work hash functions are injected (HashFunc,
// KawpowFunc) since the real X16R/X16Rv2/KAWPOW algorithms are opaque,
// out-of-scope primitives.
package chainlocator

import (
	"encoding/binary"
	"fmt"
)

// HeaderKind distinguishes the two on-wire block header encodings.
type HeaderKind int

const (
	// Legacy is the 80-byte pre-KAWPOW header encoding.
	Legacy HeaderKind = iota
	// Kawpow is the 120-byte post-fork header encoding, carrying an
	// explicit mix hash and nonce.
	Kawpow
)

func (k HeaderKind) String() string {
	if k == Kawpow {
		return "kawpow"
	}
	return "legacy"
}

const (
	// legacyHeaderSize is the canonical 80-byte header body.
	legacyHeaderSize = 80
	// legacyStride is the on-wire size of a legacy header entry,
	// including the trailing 1-byte tx-count placeholder.
	legacyStride = legacyHeaderSize + 1
	// kawpowHeaderSize is the 120-byte KAWPOW header body (80-byte
	// legacy-compatible prefix + 8-byte nonce + 32-byte mix hash).
	kawpowHeaderSize = 120
	// kawpowStride is the on-wire size of a KAWPOW header entry.
	kawpowStride = kawpowHeaderSize + 1

	// timestampOffset is the byte offset of the 4-byte little-endian
	// timestamp field within either header encoding.
	timestampOffset = 68
	// kawpowNonceOffset is the byte offset of the 8-byte little-endian
	// nonce field within a KAWPOW header.
	kawpowNonceOffset = 80
	// kawpowMixHashOffset is the byte offset of the 32-byte mix hash
	// field within a KAWPOW header.
	kawpowMixHashOffset = 88
)

// Header is one decoded entry from a headers message: either an 80-byte
// legacy header or a 120-byte KAWPOW header, tagged by Kind. Body holds the
// header's hashable bytes (legacyHeaderSize or kawpowHeaderSize, excluding
// the trailing placeholder byte).
type Header struct {
	Kind      HeaderKind
	Index     int
	Timestamp uint32
	Body      []byte
}

// Nonce returns the KAWPOW nonce field. It panics if Kind != Kawpow.
func (h Header) Nonce() uint64 {
	return binary.LittleEndian.Uint64(h.Body[kawpowNonceOffset : kawpowNonceOffset+8])
}

// MixHash returns the KAWPOW mix hash field. It panics if Kind != Kawpow.
func (h Header) MixHash() [32]byte {
	var mh [32]byte
	copy(mh[:], h.Body[kawpowMixHashOffset:kawpowMixHashOffset+32])
	return mh
}

// LegacyBody returns the 80-byte hashable prefix common to both encodings.
func (h Header) LegacyBody() []byte {
	return h.Body[:legacyHeaderSize]
}

// DecodeHeaders walks raw (the payload of a headers message, without its
// leading varint count) and decodes count header entries, switching
// between the legacy and KAWPOW strides by comparing each header's
// timestamp against kawpowActivationTime. The boundary is detected by
// linear scan, matching the spec's observed behavior where a single
// message may carry a legacy-prefix followed by a KAWPOW-suffix but never
// the reverse.
func DecodeHeaders(raw []byte, count uint64, kawpowActivationTime uint32) ([]Header, error) {
	headers := make([]Header, 0, count)
	off := 0
	for i := uint64(0); i < count; i++ {
		if off+timestampOffset+4 > len(raw) {
			return nil, fmt.Errorf("chainlocator: truncated header %d: no room for timestamp", i)
		}
		ts := binary.LittleEndian.Uint32(raw[off+timestampOffset : off+timestampOffset+4])

		kind := Legacy
		stride := legacyStride
		size := legacyHeaderSize
		if ts >= kawpowActivationTime {
			kind = Kawpow
			stride = kawpowStride
			size = kawpowHeaderSize
		}

		if off+size > len(raw) {
			return nil, fmt.Errorf("chainlocator: truncated header %d: want %d body bytes", i, size)
		}
		body := make([]byte, size)
		copy(body, raw[off:off+size])

		headers = append(headers, Header{
			Kind:      kind,
			Index:     int(i),
			Timestamp: ts,
			Body:      body,
		})

		off += stride
	}
	return headers, nil
}
