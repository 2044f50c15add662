// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"io"
)

// MsgFeeFilter implements the BIP133 feefilter message (§4.2): a minimum
// relay fee rate in satoshis per kilobyte.
type MsgFeeFilter struct {
	MinFee uint64
}

// Command returns CmdFeeFilter.
func (msg *MsgFeeFilter) Command() string { return CmdFeeFilter }

// Decode populates msg from r.
func (msg *MsgFeeFilter) Decode(r io.Reader) error {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return err
	}
	msg.MinFee = binary.LittleEndian.Uint64(buf[:])
	return nil
}

// Encode writes msg to w.
func (msg *MsgFeeFilter) Encode(w io.Writer) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], msg.MinFee)
	_, err := w.Write(buf[:])
	return err
}
