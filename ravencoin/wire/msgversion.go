// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MinVersionPayload is the minimum length of a version payload: everything
// up through the nonce, plus a zero-length user-agent varstring, plus
// start-height; the trailing relay byte is optional (§4.2).
const MinVersionPayload = 85

// MaxUserAgentLength bounds the user-agent varstring to keep a malicious
// peer from forcing an unbounded allocation.
const MaxUserAgentLength = 256

// MsgVersion implements the version handshake message (§4.2).
type MsgVersion struct {
	ProtocolVersion int32
	Services        ServiceFlag
	Timestamp       int64
	AddrRecv        NetAddress
	AddrFrom        NetAddress
	Nonce           uint64
	UserAgent       string
	StartHeight     int32
	Relay           bool
}

// Command returns CmdVersion.
func (msg *MsgVersion) Command() string { return CmdVersion }

// Decode populates msg from r.
func (msg *MsgVersion) Decode(r io.Reader) error {
	var fixed [4 + 8 + 8]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		return fmt.Errorf("wire: short version payload: %w", err)
	}
	msg.ProtocolVersion = int32(binary.LittleEndian.Uint32(fixed[0:4]))
	msg.Services = ServiceFlag(binary.LittleEndian.Uint64(fixed[4:12]))
	msg.Timestamp = int64(binary.LittleEndian.Uint64(fixed[12:20]))

	addrRecv, err := decodeNetAddress(r, false)
	if err != nil {
		return fmt.Errorf("wire: short version payload (addr-recv): %w", err)
	}
	msg.AddrRecv = *addrRecv

	addrFrom, err := decodeNetAddress(r, false)
	if err != nil {
		return fmt.Errorf("wire: short version payload (addr-from): %w", err)
	}
	msg.AddrFrom = *addrFrom

	var nonceBuf [8]byte
	if _, err := io.ReadFull(r, nonceBuf[:]); err != nil {
		return fmt.Errorf("wire: short version payload (nonce): %w", err)
	}
	msg.Nonce = binary.LittleEndian.Uint64(nonceBuf[:])

	ua, err := ReadVarString(r)
	if err != nil {
		return fmt.Errorf("wire: short version payload (user-agent): %w", err)
	}
	if len(ua) > MaxUserAgentLength {
		return fmt.Errorf("wire: user agent too long (%d bytes)", len(ua))
	}
	msg.UserAgent = ua

	var heightBuf [4]byte
	if _, err := io.ReadFull(r, heightBuf[:]); err != nil {
		return fmt.Errorf("wire: short version payload (start-height): %w", err)
	}
	msg.StartHeight = int32(binary.LittleEndian.Uint32(heightBuf[:]))

	// A payload that ends after the start height carries no relay byte;
	// BIP37 treats an absent relay flag as true.
	var relayBuf [1]byte
	switch _, err := io.ReadFull(r, relayBuf[:]); err {
	case nil:
		msg.Relay = relayBuf[0] != 0
	case io.EOF:
		msg.Relay = true
	default:
		return fmt.Errorf("wire: short version payload (relay): %w", err)
	}

	return nil
}

// Encode writes msg to w.
func (msg *MsgVersion) Encode(w io.Writer) error {
	var fixed [4 + 8 + 8]byte
	binary.LittleEndian.PutUint32(fixed[0:4], uint32(msg.ProtocolVersion))
	binary.LittleEndian.PutUint64(fixed[4:12], uint64(msg.Services))
	binary.LittleEndian.PutUint64(fixed[12:20], uint64(msg.Timestamp))
	if _, err := w.Write(fixed[:]); err != nil {
		return err
	}

	if err := encodeNetAddress(w, &msg.AddrRecv, false); err != nil {
		return err
	}
	if err := encodeNetAddress(w, &msg.AddrFrom, false); err != nil {
		return err
	}

	var nonceBuf [8]byte
	binary.LittleEndian.PutUint64(nonceBuf[:], msg.Nonce)
	if _, err := w.Write(nonceBuf[:]); err != nil {
		return err
	}

	if err := WriteVarString(w, msg.UserAgent); err != nil {
		return err
	}

	var tail [5]byte
	binary.LittleEndian.PutUint32(tail[0:4], uint32(msg.StartHeight))
	if msg.Relay {
		tail[4] = 1
	}
	_, err := w.Write(tail[:])
	return err
}

// MsgVerAck implements the empty verack message.
type MsgVerAck struct{}

// Command returns CmdVerAck.
func (msg *MsgVerAck) Command() string { return CmdVerAck }

// Encode writes nothing; verack has an empty payload.
func (msg *MsgVerAck) Encode(w io.Writer) error { return nil }

// MsgGetAddr implements the empty getaddr message.
type MsgGetAddr struct{}

// Command returns CmdGetAddr.
func (msg *MsgGetAddr) Command() string { return CmdGetAddr }

// Encode writes nothing; getaddr has an empty payload.
func (msg *MsgGetAddr) Encode(w io.Writer) error { return nil }

// MsgMemPool implements the empty mempool message.
type MsgMemPool struct{}

// Command returns CmdMemPool.
func (msg *MsgMemPool) Command() string { return CmdMemPool }

// Encode writes nothing; mempool has an empty payload.
func (msg *MsgMemPool) Encode(w io.Writer) error { return nil }

// MsgSendHeaders implements the empty sendheaders message. This package
// accepts and logs it without recording the peer's preference, and never
// announces new tips unsolicited, so it never sends one.
type MsgSendHeaders struct{}

// Command returns CmdSendHeaders.
func (msg *MsgSendHeaders) Command() string { return CmdSendHeaders }

// Encode writes nothing; sendheaders has an empty payload.
func (msg *MsgSendHeaders) Encode(w io.Writer) error { return nil }
