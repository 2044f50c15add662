// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// MaxBlockLocatorsPerMsg bounds the number of locator hashes this package
// will decode, well above the two this core ever sends, to tolerate other
// implementations' getheaders/getblocks requests if ever parsed.
const MaxBlockLocatorsPerMsg = 500

func decodeLocator(r io.Reader) (int32, []chainhash.Hash, chainhash.Hash, error) {
	var verBuf [4]byte
	if _, err := io.ReadFull(r, verBuf[:]); err != nil {
		return 0, nil, chainhash.Hash{}, err
	}
	version := int32(leUint32(verBuf[:]))

	count, err := ReadVarInt(r)
	if err != nil {
		return 0, nil, chainhash.Hash{}, err
	}
	if count > MaxBlockLocatorsPerMsg {
		return 0, nil, chainhash.Hash{}, errTooManyLocators
	}

	locators := make([]chainhash.Hash, 0, count)
	for i := uint64(0); i < count; i++ {
		var h chainhash.Hash
		if _, err := io.ReadFull(r, h[:]); err != nil {
			return 0, nil, chainhash.Hash{}, err
		}
		locators = append(locators, h)
	}

	var stop chainhash.Hash
	if _, err := io.ReadFull(r, stop[:]); err != nil {
		return 0, nil, chainhash.Hash{}, err
	}

	return version, locators, stop, nil
}

func encodeLocator(w io.Writer, version int32, locators []chainhash.Hash, hashStop chainhash.Hash) error {
	var verBuf [4]byte
	putLeUint32(verBuf[:], uint32(version))
	if _, err := w.Write(verBuf[:]); err != nil {
		return err
	}
	if err := WriteVarInt(w, uint64(len(locators))); err != nil {
		return err
	}
	for _, h := range locators {
		if _, err := w.Write(h[:]); err != nil {
			return err
		}
	}
	_, err := w.Write(hashStop[:])
	return err
}

// MsgGetHeaders implements the getheaders message (§4.4): protocol version,
// a locator hash list (ordered newest-to-oldest by convention), and a stop
// hash.
type MsgGetHeaders struct {
	ProtocolVersion    int32
	BlockLocatorHashes []chainhash.Hash
	HashStop           chainhash.Hash
}

// Command returns CmdGetHeaders.
func (msg *MsgGetHeaders) Command() string { return CmdGetHeaders }

// Decode populates msg from r.
func (msg *MsgGetHeaders) Decode(r io.Reader) error {
	ver, locators, stop, err := decodeLocator(r)
	if err != nil {
		return err
	}
	msg.ProtocolVersion = ver
	msg.BlockLocatorHashes = locators
	msg.HashStop = stop
	return nil
}

// Encode writes msg to w.
func (msg *MsgGetHeaders) Encode(w io.Writer) error {
	return encodeLocator(w, msg.ProtocolVersion, msg.BlockLocatorHashes, msg.HashStop)
}

// NewMsgGetHeaders returns a getheaders message requesting headers following
// locators, advertising this package's ProtocolVersion.
func NewMsgGetHeaders(locators []chainhash.Hash, hashStop chainhash.Hash) *MsgGetHeaders {
	return &MsgGetHeaders{
		ProtocolVersion:    int32(ProtocolVersion),
		BlockLocatorHashes: locators,
		HashStop:           hashStop,
	}
}

// MsgGetBlocks implements the getblocks message, wire-identical to
// getheaders but requesting full block inventory instead of headers.
type MsgGetBlocks struct {
	ProtocolVersion    int32
	BlockLocatorHashes []chainhash.Hash
	HashStop           chainhash.Hash
}

// Command returns CmdGetBlocks.
func (msg *MsgGetBlocks) Command() string { return CmdGetBlocks }

// Decode populates msg from r.
func (msg *MsgGetBlocks) Decode(r io.Reader) error {
	ver, locators, stop, err := decodeLocator(r)
	if err != nil {
		return err
	}
	msg.ProtocolVersion = ver
	msg.BlockLocatorHashes = locators
	msg.HashStop = stop
	return nil
}

// Encode writes msg to w.
func (msg *MsgGetBlocks) Encode(w io.Writer) error {
	return encodeLocator(w, msg.ProtocolVersion, msg.BlockLocatorHashes, msg.HashStop)
}

// NewMsgGetBlocks returns a getblocks message requesting block inventory
// following locators, advertising this package's ProtocolVersion.
func NewMsgGetBlocks(locators []chainhash.Hash, hashStop chainhash.Hash) *MsgGetBlocks {
	return &MsgGetBlocks{
		ProtocolVersion:    int32(ProtocolVersion),
		BlockLocatorHashes: locators,
		HashStop:           hashStop,
	}
}
