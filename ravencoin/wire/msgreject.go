// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// MsgReject implements the BIP61 reject message (§4.2). Hash is only
// populated when Command == CmdTx, per the wire format.
type MsgReject struct {
	RejectedCommand string
	Code            RejectCode
	Reason          string
	Hash            chainhash.Hash
	HasHash         bool
}

// Command returns CmdReject.
func (msg *MsgReject) Command() string { return CmdReject }

// Decode populates msg from r.
func (msg *MsgReject) Decode(r io.Reader) error {
	cmd, err := ReadVarString(r)
	if err != nil {
		return err
	}
	msg.RejectedCommand = cmd

	var codeBuf [1]byte
	if _, err := io.ReadFull(r, codeBuf[:]); err != nil {
		return err
	}
	msg.Code = RejectCode(codeBuf[0])

	reason, err := ReadVarString(r)
	if err != nil {
		return err
	}
	msg.Reason = reason

	if cmd == CmdTx {
		if _, err := io.ReadFull(r, msg.Hash[:]); err != nil {
			return err
		}
		msg.HasHash = true
	}
	return nil
}

// Encode writes msg to w.
func (msg *MsgReject) Encode(w io.Writer) error {
	if err := WriteVarString(w, msg.RejectedCommand); err != nil {
		return err
	}
	if _, err := w.Write([]byte{byte(msg.Code)}); err != nil {
		return err
	}
	if err := WriteVarString(w, msg.Reason); err != nil {
		return err
	}
	if msg.RejectedCommand == CmdTx && msg.HasHash {
		if _, err := w.Write(msg.Hash[:]); err != nil {
			return err
		}
	}
	return nil
}
