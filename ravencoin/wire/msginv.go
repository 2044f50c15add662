// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "io"

// MaxInvPerMsg is the hard limit on inv entries per message (§4.2); a count
// above this is a fatal protocol violation, not a policy drop.
const MaxInvPerMsg = 50000

// invDecodeHardCap bounds allocation against a maliciously huge declared
// count; it is well above MaxInvPerMsg so the business-logic check in the
// peer dispatcher still sees the true (over-limit) count instead of a
// truncated one.
const invDecodeHardCap = 4 * MaxInvPerMsg

// MsgInv implements the inv message (§4.2).
type MsgInv struct {
	InvList []InvVect
}

// Command returns CmdInv.
func (msg *MsgInv) Command() string { return CmdInv }

// Decode populates msg from r.
func (msg *MsgInv) Decode(r io.Reader) error {
	list, err := decodeInvList(r, invDecodeHardCap)
	if err != nil {
		return err
	}
	msg.InvList = list
	return nil
}

// Encode writes msg to w.
func (msg *MsgInv) Encode(w io.Writer) error {
	return encodeInvList(w, msg.InvList)
}

// MsgGetData implements the getdata message (§4.2).
type MsgGetData struct {
	InvList []InvVect
}

// Command returns CmdGetData.
func (msg *MsgGetData) Command() string { return CmdGetData }

// Decode populates msg from r.
func (msg *MsgGetData) Decode(r io.Reader) error {
	list, err := decodeInvList(r, invDecodeHardCap)
	if err != nil {
		return err
	}
	msg.InvList = list
	return nil
}

// Encode writes msg to w.
func (msg *MsgGetData) Encode(w io.Writer) error {
	return encodeInvList(w, msg.InvList)
}

// MsgNotFound implements the notfound message (§4.2), wire-identical to inv.
type MsgNotFound struct {
	InvList []InvVect
}

// Command returns CmdNotFound.
func (msg *MsgNotFound) Command() string { return CmdNotFound }

// Decode populates msg from r.
func (msg *MsgNotFound) Decode(r io.Reader) error {
	list, err := decodeInvList(r, invDecodeHardCap)
	if err != nil {
		return err
	}
	msg.InvList = list
	return nil
}

// Encode writes msg to w.
func (msg *MsgNotFound) Encode(w io.Writer) error {
	return encodeInvList(w, msg.InvList)
}
