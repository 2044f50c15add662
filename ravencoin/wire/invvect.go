// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// InvVect is a single entry of an inv/getdata/notfound message: a type tag
// and a 32-byte hash.
type InvVect struct {
	Type InvType
	Hash chainhash.Hash
}

func decodeInvVect(r io.Reader) (InvVect, error) {
	var buf [4 + chainhash.HashSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return InvVect{}, err
	}
	iv := InvVect{Type: InvType(binary.LittleEndian.Uint32(buf[0:4]))}
	copy(iv.Hash[:], buf[4:])
	return iv, nil
}

func encodeInvVect(w io.Writer, iv InvVect) error {
	var buf [4 + chainhash.HashSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(iv.Type))
	copy(buf[4:], iv.Hash[:])
	_, err := w.Write(buf[:])
	return err
}

// decodeInvList reads a varint count followed by that many InvVect entries,
// rejecting a declared count above maxCount outright (the caller decides
// whether that's a policy drop or fatal per command).
func decodeInvList(r io.Reader, maxCount uint64) ([]InvVect, error) {
	count, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if count > maxCount {
		return nil, fmt.Errorf("wire: inventory list too long (got %d, max %d)", count, maxCount)
	}
	list := make([]InvVect, 0, count)
	for i := uint64(0); i < count; i++ {
		iv, err := decodeInvVect(r)
		if err != nil {
			return nil, err
		}
		list = append(list, iv)
	}
	return list, nil
}

func encodeInvList(w io.Writer, list []InvVect) error {
	if err := WriteVarInt(w, uint64(len(list))); err != nil {
		return err
	}
	for _, iv := range list {
		if err := encodeInvVect(w, iv); err != nil {
			return err
		}
	}
	return nil
}
