// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"errors"
	"io"
)

// MaxAddrPerMsg is the soft limit on the number of addresses allowed in a
// single addr message. Exceeding it is a policy drop, not fatal (§4.2).
const MaxAddrPerMsg = 1000

// MsgAddr implements the addr message (§4.2).
type MsgAddr struct {
	AddrList []*NetAddress
}

// Command returns CmdAddr.
func (msg *MsgAddr) Command() string { return CmdAddr }

// Decode populates msg from r. A declared count above MaxAddrPerMsg is not
// rejected at decode time (the caller applies the policy-drop rule): every
// declared entry is read, up to ten times MaxAddrPerMsg; a larger declared
// count is rejected as malformed.
func (msg *MsgAddr) Decode(r io.Reader) error {
	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}

	// Still consume a number of entries bounded generously above the
	// policy limit so a well-formed-but-long message doesn't desync
	// framing for the next message; anything absurdly large is rejected
	// outright as malformed rather than read.
	const hardCap = 10 * MaxAddrPerMsg
	if count > hardCap {
		return errTooManyAddrEntries
	}

	msg.AddrList = make([]*NetAddress, 0, count)
	for i := uint64(0); i < count; i++ {
		na, err := decodeNetAddress(r, true)
		if err != nil {
			return err
		}
		msg.AddrList = append(msg.AddrList, na)
	}
	return nil
}

// Encode writes msg to w.
func (msg *MsgAddr) Encode(w io.Writer) error {
	if err := WriteVarInt(w, uint64(len(msg.AddrList))); err != nil {
		return err
	}
	for _, na := range msg.AddrList {
		if err := encodeNetAddress(w, na, true); err != nil {
			return err
		}
	}
	return nil
}

var errTooManyAddrEntries = errors.New("wire: addr message declares an unreasonable number of entries")
