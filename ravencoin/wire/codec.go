// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wire implements the Ravencoin peer-to-peer wire protocol: the
// message envelope, the primitives used inside message payloads, and one
// parser/builder pair per supported command. Everything in this package is
// a pure function over byte buffers; it performs no I/O of its own.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	btcwire "github.com/btcsuite/btcd/wire"
)

// HeaderLength is the number of bytes in a message envelope preceding the
// payload: magic (4) + command (12) + length (4) + checksum (4).
const HeaderLength = 24

// MaxMessageLength is the largest payload this package will read or write
// from a single message.
const MaxMessageLength = 0x0200_0000 // 32 MiB

// CommandLength is the fixed width of the command field within the header.
const CommandLength = 12

// zeroChecksum is the checksum of a zero-length payload, i.e. the first 4
// bytes of SHA-256(SHA-256("")). It is used by empty-payload messages such
// as verack and getaddr.
var zeroChecksum = [4]byte{0x5d, 0xf6, 0xe0, 0xe2}

// ErrMalformedHeader is returned when a header's command byte 15 is not NUL,
// or the declared payload length exceeds MaxMessageLength.
var ErrMalformedHeader = errors.New("wire: malformed message header")

// ErrChecksumMismatch is returned when a payload's checksum does not match
// the header's declared checksum.
var ErrChecksumMismatch = errors.New("wire: checksum mismatch")

// MessageHeader is the decoded 24-byte envelope preceding a message payload.
type MessageHeader struct {
	Magic    RavencoinNet
	Command  string
	Length   uint32
	Checksum [4]byte
}

// checksum returns the first four bytes of SHA-256(SHA-256(payload)).
func checksum(payload []byte) [4]byte {
	h := chainhash.DoubleHashB(payload)
	var out [4]byte
	copy(out[:], h[:4])
	return out
}

// EncodeCommand renders command into its fixed-width, NUL-padded wire form.
// It panics if command is longer than CommandLength, a programmer error
// since every command used by this package is a package constant.
func EncodeCommand(command string) [CommandLength]byte {
	if len(command) > CommandLength {
		panic("wire: command name too long: " + command)
	}
	var buf [CommandLength]byte
	copy(buf[:], command)
	return buf
}

// DecodeCommand extracts the command string from its fixed-width wire form.
// Byte 15 (the last byte) must be NUL; any other value is a malformed
// header per §4.1.
func DecodeCommand(buf [CommandLength]byte) (string, error) {
	if buf[CommandLength-1] != 0x00 {
		return "", ErrMalformedHeader
	}
	n := bytes.IndexByte(buf[:], 0x00)
	if n < 0 {
		n = CommandLength
	}
	return string(buf[:n]), nil
}

// WriteMessageHeader encodes the envelope for a message with the given
// command and payload into w, using magic as the network identifier.
func WriteMessageHeader(w io.Writer, magic RavencoinNet, command string, payload []byte) error {
	if len(payload) > MaxMessageLength {
		return fmt.Errorf("wire: payload too large to encode (%d bytes): %w", len(payload), ErrMalformedHeader)
	}

	var hdr [HeaderLength]byte
	binary.LittleEndian.PutUint32(hdr[0:4], uint32(magic))
	cmd := EncodeCommand(command)
	copy(hdr[4:16], cmd[:])
	binary.LittleEndian.PutUint32(hdr[16:20], uint32(len(payload)))

	var sum [4]byte
	if len(payload) == 0 {
		sum = zeroChecksum
	} else {
		sum = checksum(payload)
	}
	copy(hdr[20:24], sum[:])

	_, err := w.Write(hdr[:])
	return err
}

// ReadMessageHeader decodes a 24-byte envelope from buf. buf must be exactly
// HeaderLength bytes; callers performing framing resync are expected to have
// already located the magic before calling this.
func ReadMessageHeader(buf []byte) (*MessageHeader, error) {
	if len(buf) != HeaderLength {
		return nil, ErrMalformedHeader
	}

	magic := RavencoinNet(binary.LittleEndian.Uint32(buf[0:4]))

	var cmdBuf [CommandLength]byte
	copy(cmdBuf[:], buf[4:16])
	command, err := DecodeCommand(cmdBuf)
	if err != nil {
		return nil, err
	}

	length := binary.LittleEndian.Uint32(buf[16:20])
	if length > MaxMessageLength {
		return nil, ErrMalformedHeader
	}

	var sum [4]byte
	copy(sum[:], buf[20:24])

	return &MessageHeader{
		Magic:    magic,
		Command:  command,
		Length:   length,
		Checksum: sum,
	}, nil
}

// VerifyChecksum reports whether payload matches the checksum declared in
// hdr, per §4.1.
func VerifyChecksum(hdr *MessageHeader, payload []byte) error {
	var want [4]byte
	if len(payload) == 0 {
		want = zeroChecksum
	} else {
		want = checksum(payload)
	}
	if want != hdr.Checksum {
		return ErrChecksumMismatch
	}
	return nil
}

// FindMagic scans buf for the little-endian encoding of magic and returns
// the offset of its first byte, or -1 if not present. The peer read loop's
// framing resync does not call it; that loop compares the magic against
// each peeked candidate header directly.
func FindMagic(buf []byte, magic RavencoinNet) int {
	var needle [4]byte
	binary.LittleEndian.PutUint32(needle[:], uint32(magic))
	return bytes.Index(buf, needle[:])
}

// The following wrap btcd's wire package varint/varstring helpers, which
// already implement exactly the Bitcoin-style encoding this protocol uses
// (§4.1): values below 0xfd encode as a single byte, 0xfd/0xfe/0xff prefix a
// little-endian uint16/uint32/uint64. btcd's reader rejects non-canonical
// longer-than-necessary encodings, and so does ReadVarInt here.

// ReadVarInt reads a Bitcoin-style variable length integer from r.
func ReadVarInt(r io.Reader) (uint64, error) {
	return btcwire.ReadVarInt(r, InitProtoVersion)
}

// WriteVarInt writes val to w using the Bitcoin-style variable length
// integer encoding.
func WriteVarInt(w io.Writer, val uint64) error {
	return btcwire.WriteVarInt(w, InitProtoVersion, val)
}

// VarIntSerializeSize returns the number of bytes it would take to encode
// val as a Bitcoin-style variable length integer.
func VarIntSerializeSize(val uint64) int {
	return btcwire.VarIntSerializeSize(val)
}

// ReadVarString reads a varint-length-prefixed string from r.
func ReadVarString(r io.Reader) (string, error) {
	return btcwire.ReadVarString(r, InitProtoVersion)
}

// WriteVarString writes s to w as a varint-length-prefixed string.
func WriteVarString(w io.Writer, s string) error {
	return btcwire.WriteVarString(w, InitProtoVersion, s)
}

// ReadVarBytes reads a varint-length-prefixed byte slice from r, rejecting
// declared lengths above maxAllowed to bound allocation from adversarial
// input.
func ReadVarBytes(r io.Reader, maxAllowed uint64, fieldName string) ([]byte, error) {
	count, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if count > maxAllowed {
		return nil, fmt.Errorf("wire: %s exceeds max length (got %d, max %d)", fieldName, count, maxAllowed)
	}
	buf := make([]byte, count)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteVarBytes writes b to w as a varint-length-prefixed byte slice.
func WriteVarBytes(w io.Writer, b []byte) error {
	if err := WriteVarInt(w, uint64(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}
