// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"errors"
)

var errTooManyLocators = errors.New("wire: locator hash list too long")

func leUint32(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}

func putLeUint32(b []byte, v uint32) {
	binary.LittleEndian.PutUint32(b, v)
}
