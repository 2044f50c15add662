// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"io"
)

// MsgPing implements the ping message (§4.2): an 8-byte nonce echoed back as
// pong.
type MsgPing struct {
	Nonce uint64
}

// Command returns CmdPing.
func (msg *MsgPing) Command() string { return CmdPing }

// Decode populates msg from r.
func (msg *MsgPing) Decode(r io.Reader) error {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return err
	}
	msg.Nonce = binary.LittleEndian.Uint64(buf[:])
	return nil
}

// Encode writes msg to w.
func (msg *MsgPing) Encode(w io.Writer) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], msg.Nonce)
	_, err := w.Write(buf[:])
	return err
}

// MsgPong implements the pong message (§4.2).
type MsgPong struct {
	Nonce uint64
}

// Command returns CmdPong.
func (msg *MsgPong) Command() string { return CmdPong }

// Decode populates msg from r.
func (msg *MsgPong) Decode(r io.Reader) error {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return err
	}
	msg.Nonce = binary.LittleEndian.Uint64(buf[:])
	return nil
}

// Encode writes msg to w.
func (msg *MsgPong) Encode(w io.Writer) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], msg.Nonce)
	_, err := w.Write(buf[:])
	return err
}
