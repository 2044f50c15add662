// Copyright (c) 2013-2021 The btcsuite developers
// Copyright (c) 2018-2021 The Raven Core developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MaxAssetNameLength bounds an asset name varstring. Ravencoin asset names
// are capped at 32 characters by consensus; this package is generous to
// avoid rejecting a name it doesn't otherwise validate.
const MaxAssetNameLength = 64

// MaxAssetDataPayload is the largest assetdata payload this package will
// decode (§4.2); larger payloads are dropped.
const MaxAssetDataPayload = 16898

// NotFoundAssetName is the sentinel name an assetdata payload carries when
// the remote peer could not find the requested asset.
const NotFoundAssetName = "_NF"

// ipfsHashLength is the length of a multihash-encoded IPFS hash as carried
// on the wire (34 raw bytes; a caller renders them in base58).
const ipfsHashLength = 34

// MsgGetAssetData implements the getassetdata message (Ravencoin extension,
// §4.2): a request for exactly one asset's metadata.
type MsgGetAssetData struct {
	AssetName string
}

// Command returns CmdGetAssetData.
func (msg *MsgGetAssetData) Command() string { return CmdGetAssetData }

// Decode populates msg from r.
func (msg *MsgGetAssetData) Decode(r io.Reader) error {
	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if count != 1 {
		return fmt.Errorf("wire: getassetdata requests %d assets, want 1", count)
	}
	name, err := ReadVarString(r)
	if err != nil {
		return err
	}
	if len(name) > MaxAssetNameLength {
		return fmt.Errorf("wire: asset name too long (%d bytes)", len(name))
	}
	msg.AssetName = name
	return nil
}

// Encode writes msg to w.
func (msg *MsgGetAssetData) Encode(w io.Writer) error {
	if err := WriteVarInt(w, 1); err != nil {
		return err
	}
	return WriteVarString(w, msg.AssetName)
}

// NewMsgGetAssetData returns a getassetdata message for name.
func NewMsgGetAssetData(name string) *MsgGetAssetData {
	return &MsgGetAssetData{AssetName: name}
}

// MsgAssetData implements the inbound assetdata message (§4.2). When Name
// equals NotFoundAssetName the asset was not found and every other field is
// meaningless. IPFSHash, when HasIPFS is set, is the raw 34-byte multihash;
// rendering it as base58 is the caller's job (assetcache.Cache.Put does this).
type MsgAssetData struct {
	Name        string
	Amount      uint64
	Unit        uint8
	Reissuable  bool
	HasIPFS     bool
	IPFSHash    [ipfsHashLength]byte
	BlockHeight uint32
	HasHeight   bool
}

// Command returns CmdAssetData.
func (msg *MsgAssetData) Command() string { return CmdAssetData }

// Decode populates msg from r. The bound check on the trailing IPFS hash
// follows the corrected reading from §9 Open Question (b): a read is only
// valid if off + ipfsHashLength does not exceed the remaining payload, not
// the inverted "off <= remaining + len" check the original source used.
func (msg *MsgAssetData) Decode(r io.Reader) error {
	payload, err := io.ReadAll(io.LimitReader(r, MaxAssetDataPayload+1))
	if err != nil {
		return err
	}
	if len(payload) > MaxAssetDataPayload {
		return fmt.Errorf("wire: assetdata payload too large (%d bytes)", len(payload))
	}

	off := 0
	name, n, err := readVarStringAt(payload, off)
	if err != nil {
		return err
	}
	msg.Name = name
	off = n

	if name == NotFoundAssetName {
		return nil
	}

	if off+8+1+1+1 > len(payload) {
		return fmt.Errorf("wire: assetdata payload too short for fixed fields")
	}
	msg.Amount = binary.LittleEndian.Uint64(payload[off : off+8])
	off += 8
	msg.Unit = payload[off]
	off++
	msg.Reissuable = payload[off] != 0
	off++
	hasIPFS := payload[off] != 0
	off++
	msg.HasIPFS = hasIPFS

	if hasIPFS {
		if off+ipfsHashLength > len(payload) {
			return fmt.Errorf("wire: assetdata IPFS hash runs past end of payload")
		}
		copy(msg.IPFSHash[:], payload[off:off+ipfsHashLength])
		off += ipfsHashLength
	}

	if off+4 <= len(payload) {
		msg.BlockHeight = binary.LittleEndian.Uint32(payload[off : off+4])
		msg.HasHeight = true
		off += 4
	}

	return nil
}

// Encode writes msg to w.
func (msg *MsgAssetData) Encode(w io.Writer) error {
	if err := WriteVarString(w, msg.Name); err != nil {
		return err
	}
	if msg.Name == NotFoundAssetName {
		return nil
	}

	var fixed [10]byte
	binary.LittleEndian.PutUint64(fixed[0:8], msg.Amount)
	fixed[8] = msg.Unit
	if msg.Reissuable {
		fixed[9] = 1
	}
	if _, err := w.Write(fixed[:]); err != nil {
		return err
	}

	if msg.HasIPFS {
		if _, err := w.Write([]byte{1}); err != nil {
			return err
		}
		if _, err := w.Write(msg.IPFSHash[:]); err != nil {
			return err
		}
	} else {
		if _, err := w.Write([]byte{0}); err != nil {
			return err
		}
	}

	if msg.HasHeight {
		var hbuf [4]byte
		binary.LittleEndian.PutUint32(hbuf[:], msg.BlockHeight)
		if _, err := w.Write(hbuf[:]); err != nil {
			return err
		}
	}
	return nil
}

// readVarStringAt reads a varint-length-prefixed string starting at offset
// off within buf, returning the string and the offset immediately after it.
func readVarStringAt(buf []byte, off int) (string, int, error) {
	if off >= len(buf) {
		return "", 0, fmt.Errorf("wire: truncated varstring")
	}
	count, sz, err := readVarIntAt(buf, off)
	if err != nil {
		return "", 0, err
	}
	off += sz
	if uint64(off)+count > uint64(len(buf)) {
		return "", 0, fmt.Errorf("wire: varstring runs past end of buffer")
	}
	return string(buf[off : uint64(off)+count]), off + int(count), nil
}

// readVarIntAt reads a Bitcoin-style varint starting at offset off within
// buf, returning the value and its encoded size in bytes.
func readVarIntAt(buf []byte, off int) (uint64, int, error) {
	if off >= len(buf) {
		return 0, 0, fmt.Errorf("wire: truncated varint")
	}
	switch disc := buf[off]; {
	case disc < 0xfd:
		return uint64(disc), 1, nil
	case disc == 0xfd:
		if off+3 > len(buf) {
			return 0, 0, fmt.Errorf("wire: truncated varint")
		}
		return uint64(binary.LittleEndian.Uint16(buf[off+1 : off+3])), 3, nil
	case disc == 0xfe:
		if off+5 > len(buf) {
			return 0, 0, fmt.Errorf("wire: truncated varint")
		}
		return uint64(binary.LittleEndian.Uint32(buf[off+1 : off+5])), 5, nil
	default:
		if off+9 > len(buf) {
			return 0, 0, fmt.Errorf("wire: truncated varint")
		}
		return binary.LittleEndian.Uint64(buf[off+1 : off+9]), 9, nil
	}
}

// AssetNotFoundEntry is one (name) entry of an asstnotfound message.
type AssetNotFoundEntry struct {
	Name string
}

// MsgAsstNotFound implements the asstnotfound message (§4.2). The command
// name's misspelling is preserved on the wire: it is what Ravencoin nodes
// actually send (§9 Open Question (a)).
type MsgAsstNotFound struct {
	Assets []AssetNotFoundEntry
}

// Command returns CmdAsstNotFound.
func (msg *MsgAsstNotFound) Command() string { return CmdAsstNotFound }

// Decode populates msg from r.
func (msg *MsgAsstNotFound) Decode(r io.Reader) error {
	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > MaxInvPerMsg {
		return fmt.Errorf("wire: asstnotfound declares %d entries, too many", count)
	}
	msg.Assets = make([]AssetNotFoundEntry, 0, count)
	for i := uint64(0); i < count; i++ {
		name, err := ReadVarString(r)
		if err != nil {
			return err
		}
		if len(name) > MaxAssetNameLength {
			return fmt.Errorf("wire: asset name too long (%d bytes)", len(name))
		}
		msg.Assets = append(msg.Assets, AssetNotFoundEntry{Name: name})
	}
	return nil
}

// Encode writes msg to w.
func (msg *MsgAsstNotFound) Encode(w io.Writer) error {
	if err := WriteVarInt(w, uint64(len(msg.Assets))); err != nil {
		return err
	}
	for _, a := range msg.Assets {
		if err := WriteVarString(w, a.Name); err != nil {
			return err
		}
	}
	return nil
}
