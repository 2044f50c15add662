// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"io"
)

// MaxHeadersPerMsg is the largest number of headers this package will
// accept in a single headers message.
const MaxHeadersPerMsg = 2000

// MsgHeaders implements the headers message (§4.2, §4.4). Header framing is
// trivial (a varint count) but *decoding* a header is not, since a single
// message may mix 80-byte legacy and 120-byte KAWPOW encodings and telling
// them apart requires looking at the timestamp inside each one relative to
// a chain-parameter activation time this package doesn't own. So this type
// only frames the raw header bytes; chainlocator.DecodeHeaders does the
// structured, mixed-encoding decode the locator engine needs (Design Note
// on header-encoding heteromorphism).
type MsgHeaders struct {
	Count uint64
	Raw   []byte
}

// Command returns CmdHeaders.
func (msg *MsgHeaders) Command() string { return CmdHeaders }

// Decode populates msg from r. It validates that the declared count is
// within MaxHeadersPerMsg but does not interpret the header bytes
// themselves.
func (msg *MsgHeaders) Decode(r io.Reader) error {
	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > MaxHeadersPerMsg {
		return fmt.Errorf("wire: headers message declares %d headers, max %d", count, MaxHeadersPerMsg)
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	msg.Count = count
	msg.Raw = raw
	return nil
}

// Encode writes msg to w. Raw must already be the correctly-strided,
// already-encoded header bytes for Count headers (the layout
// chainlocator.DecodeHeaders reads); this type does not recompute strides.
func (msg *MsgHeaders) Encode(w io.Writer) error {
	if err := WriteVarInt(w, msg.Count); err != nil {
		return err
	}
	_, err := w.Write(msg.Raw)
	return err
}
