// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"io"
)

// MaxFilterLoadSize bounds the bloom filter bytes this package will
// encode/decode, matching BIP37's 36000-byte cap.
const MaxFilterLoadSize = 36000

// BloomUpdateType identifies how matched outputs update a bloom filter.
type BloomUpdateType uint8

const (
	BloomUpdateNone BloomUpdateType = iota
	BloomUpdateAll
	BloomUpdateP2PubkeyOnly
)

// MsgFilterLoad implements the filterload message (BIP37). Bloom-filter
// construction itself is an external collaborator (§1); this package only
// frames the filter bytes the caller already built.
type MsgFilterLoad struct {
	Filter    []byte
	HashFuncs uint32
	Tweak     uint32
	Flags     BloomUpdateType
}

// Command returns CmdFilterLoad.
func (msg *MsgFilterLoad) Command() string { return CmdFilterLoad }

// Decode populates msg from r.
func (msg *MsgFilterLoad) Decode(r io.Reader) error {
	filter, err := ReadVarBytes(r, MaxFilterLoadSize, "filterload.filter")
	if err != nil {
		return err
	}
	msg.Filter = filter

	var tail [9]byte
	if _, err := io.ReadFull(r, tail[:]); err != nil {
		return err
	}
	msg.HashFuncs = binary.LittleEndian.Uint32(tail[0:4])
	msg.Tweak = binary.LittleEndian.Uint32(tail[4:8])
	msg.Flags = BloomUpdateType(tail[8])
	return nil
}

// Encode writes msg to w.
func (msg *MsgFilterLoad) Encode(w io.Writer) error {
	if err := WriteVarBytes(w, msg.Filter); err != nil {
		return err
	}
	var tail [9]byte
	binary.LittleEndian.PutUint32(tail[0:4], msg.HashFuncs)
	binary.LittleEndian.PutUint32(tail[4:8], msg.Tweak)
	tail[8] = byte(msg.Flags)
	_, err := w.Write(tail[:])
	return err
}
