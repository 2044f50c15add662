// Copyright (c) 2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"io"
)

// MsgSendCmpct represents a BIP152 sendcmpct message. Ravencoin nodes send
// this during handshake on some protocol versions to negotiate compact-block
// relay; this package never requests compact blocks (relaying blocks to
// other peers is out of scope), so decoding it is only enough to accept and
// log the peer's preference.
type MsgSendCmpct struct {
	Announce bool
	Version  uint64
}

// Decode decodes r into the receiver using the wire encoding.
func (msg *MsgSendCmpct) Decode(r io.Reader) error {
	var buf [9]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return err
	}
	msg.Announce = buf[0] != 0
	msg.Version = binary.LittleEndian.Uint64(buf[1:9])
	return nil
}

// Encode encodes the receiver to w using the wire encoding.
func (msg *MsgSendCmpct) Encode(w io.Writer) error {
	var buf [9]byte
	if msg.Announce {
		buf[0] = 1
	}
	binary.LittleEndian.PutUint64(buf[1:9], msg.Version)
	_, err := w.Write(buf[:])
	return err
}

// Command returns the protocol command string for the message.
func (msg *MsgSendCmpct) Command() string {
	return CmdSendCmpct
}

// MaxPayloadLength returns the maximum length the payload can be.
func (msg *MsgSendCmpct) MaxPayloadLength() uint32 {
	return 9
}

// NewMsgSendCmpct returns a new sendcmpct message.
func NewMsgSendCmpct(announce bool, version uint64) *MsgSendCmpct {
	return &MsgSendCmpct{Announce: announce, Version: version}
}
