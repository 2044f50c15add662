// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"io"
	"net"
)

// NetAddress represents the network address of a Ravencoin peer as it
// appears inside version and addr payloads: a v4-mapped-v6 address, a
// big-endian port, and (except inside a version message's embedded
// addresses) a timestamp.
type NetAddress struct {
	Timestamp uint32
	Services  ServiceFlag
	IP        net.IP // always 16 bytes, v4-mapped-v6 for IPv4 peers
	Port      uint16
}

// IsIPv4 reports whether na.IP is an IPv4 address in its v4-mapped-v6 form.
func (na *NetAddress) IsIPv4() bool {
	return na.IP.To4() != nil
}

// decodeNetAddress reads the 16-byte-address form shared by version and addr
// payloads. hasTimestamp selects whether a leading 4-byte timestamp is
// present (it is absent from the two embedded addresses in a version
// message).
func decodeNetAddress(r io.Reader, hasTimestamp bool) (*NetAddress, error) {
	na := &NetAddress{}

	if hasTimestamp {
		var tsBuf [4]byte
		if _, err := io.ReadFull(r, tsBuf[:]); err != nil {
			return nil, err
		}
		na.Timestamp = binary.LittleEndian.Uint32(tsBuf[:])
	}

	var svcBuf [8]byte
	if _, err := io.ReadFull(r, svcBuf[:]); err != nil {
		return nil, err
	}
	na.Services = ServiceFlag(binary.LittleEndian.Uint64(svcBuf[:]))

	ip := make(net.IP, 16)
	if _, err := io.ReadFull(r, ip); err != nil {
		return nil, err
	}
	na.IP = ip

	var portBuf [2]byte
	if _, err := io.ReadFull(r, portBuf[:]); err != nil {
		return nil, err
	}
	na.Port = binary.BigEndian.Uint16(portBuf[:])

	return na, nil
}

func encodeNetAddress(w io.Writer, na *NetAddress, hasTimestamp bool) error {
	if hasTimestamp {
		var tsBuf [4]byte
		binary.LittleEndian.PutUint32(tsBuf[:], na.Timestamp)
		if _, err := w.Write(tsBuf[:]); err != nil {
			return err
		}
	}

	var svcBuf [8]byte
	binary.LittleEndian.PutUint64(svcBuf[:], uint64(na.Services))
	if _, err := w.Write(svcBuf[:]); err != nil {
		return err
	}

	ip := na.IP.To16()
	if ip == nil {
		ip = make(net.IP, 16)
	}
	if _, err := w.Write(ip); err != nil {
		return err
	}

	var portBuf [2]byte
	binary.BigEndian.PutUint16(portBuf[:], na.Port)
	_, err := w.Write(portBuf[:])
	return err
}

// v4InV6Prefix is the fixed 12-byte prefix of a v4-mapped-v6 address
// (::ffff:0:0/96).
var v4InV6Prefix = []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0xff, 0xff}

// V4MappedIPv6 renders a 4-byte IPv4 address as a 16-byte v4-mapped-v6
// address, the form required on the wire (§3).
func V4MappedIPv6(ip net.IP) net.IP {
	v4 := ip.To4()
	if v4 == nil {
		return ip.To16()
	}
	out := make(net.IP, 16)
	copy(out, v4InV6Prefix)
	copy(out[12:], v4)
	return out
}
