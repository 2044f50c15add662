// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"io/ioutil"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// TxMaxSize is the largest serialized transaction this package will relay
// in response to a getdata request (§4.2 getdata).
const TxMaxSize = 100000

// MsgTx carries a tx message's raw payload. Transaction parsing/serializing
// is an external collaborator (§1); this package never interprets the
// bytes, it only frames and delivers them to an injected parser.
type MsgTx struct {
	Raw []byte
}

// Command returns CmdTx.
func (msg *MsgTx) Command() string { return CmdTx }

// Encode writes the raw payload verbatim to w.
func (msg *MsgTx) Encode(w io.Writer) error {
	_, err := w.Write(msg.Raw)
	return err
}

// legacyMerkleHeaderSize and kawpowMerkleHeaderSize are the two block
// header encodings a merkleblock's leading header field can carry (§4.4).
// This package has no access to chaincfg's KawpowActivationTime (it sits
// below chaincfg in the import graph), so Decode distinguishes the two by
// trying each stride and keeping whichever consumes the payload exactly.
const (
	legacyMerkleHeaderSize = 80
	kawpowMerkleHeaderSize = 120
)

// merkleHashHardCap and merkleFlagsHardCap bound allocation against a
// maliciously huge declared count/length; both are generous relative to
// any merkleblock a real chain produces.
const (
	merkleHashHardCap  = 8000
	merkleFlagsHardCap = 1 << 16
)

// MsgMerkleBlock carries a merkleblock message's header, partial-merkle-tree
// hash list, and flag bits. Verifying that the hashes and flags actually
// prove inclusion against the header's merkle root is an external
// collaborator's job (§1); this package only frames the fields so the
// caller's block-assembly bookkeeping (§4.2 merkleblock, §3 invariant I3)
// has real hashes to work with instead of an opaque blob.
type MsgMerkleBlock struct {
	// Header is the opaque block header field: legacyMerkleHeaderSize or
	// kawpowMerkleHeaderSize bytes, handed unparsed to the external
	// header/PoW collaborator.
	Header []byte

	// TotalTransactions is the declared transaction count of the block
	// the partial merkle tree was built from.
	TotalTransactions uint32

	// Hashes is the partial merkle tree's hash list, in on-wire order.
	Hashes []chainhash.Hash

	// Flags is the partial merkle tree's bit-packed flag field.
	Flags []byte
}

// Command returns CmdMerkleBlock.
func (msg *MsgMerkleBlock) Command() string { return CmdMerkleBlock }

// Decode populates msg from r. The header length is not self-declared on
// the wire, so Decode tries the legacy stride first and falls back to the
// KAWPOW stride if the legacy parse doesn't consume the payload exactly.
func (msg *MsgMerkleBlock) Decode(r io.Reader) error {
	raw, err := ioutil.ReadAll(r)
	if err != nil {
		return err
	}

	for _, headerLen := range []int{legacyMerkleHeaderSize, kawpowMerkleHeaderSize} {
		if parsed, ok := tryDecodeMerkleBlock(raw, headerLen); ok {
			*msg = parsed
			return nil
		}
	}
	return fmt.Errorf("wire: merkleblock: payload did not match a legacy or KAWPOW header length")
}

// tryDecodeMerkleBlock attempts to parse raw assuming a headerLen-byte
// header, succeeding only if doing so consumes raw exactly.
func tryDecodeMerkleBlock(raw []byte, headerLen int) (MsgMerkleBlock, bool) {
	if len(raw) < headerLen+4 {
		return MsgMerkleBlock{}, false
	}

	header := raw[:headerLen]
	r := bytes.NewReader(raw[headerLen:])

	var totalBuf [4]byte
	if _, err := io.ReadFull(r, totalBuf[:]); err != nil {
		return MsgMerkleBlock{}, false
	}
	total := binary.LittleEndian.Uint32(totalBuf[:])

	hashCount, err := ReadVarInt(r)
	if err != nil || hashCount > merkleHashHardCap {
		return MsgMerkleBlock{}, false
	}
	hashes := make([]chainhash.Hash, hashCount)
	for i := range hashes {
		if _, err := io.ReadFull(r, hashes[i][:]); err != nil {
			return MsgMerkleBlock{}, false
		}
	}

	flags, err := ReadVarBytes(r, merkleFlagsHardCap, "merkleblock flags")
	if err != nil {
		return MsgMerkleBlock{}, false
	}

	if r.Len() != 0 {
		return MsgMerkleBlock{}, false
	}

	return MsgMerkleBlock{
		Header:            append([]byte(nil), header...),
		TotalTransactions: total,
		Hashes:            hashes,
		Flags:             flags,
	}, true
}

// Encode writes msg to w.
func (msg *MsgMerkleBlock) Encode(w io.Writer) error {
	if _, err := w.Write(msg.Header); err != nil {
		return err
	}
	var totalBuf [4]byte
	binary.LittleEndian.PutUint32(totalBuf[:], msg.TotalTransactions)
	if _, err := w.Write(totalBuf[:]); err != nil {
		return err
	}
	if err := WriteVarInt(w, uint64(len(msg.Hashes))); err != nil {
		return err
	}
	for _, h := range msg.Hashes {
		if _, err := w.Write(h[:]); err != nil {
			return err
		}
	}
	return WriteVarBytes(w, msg.Flags)
}
