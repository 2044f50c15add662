// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"strconv"
	"strings"
)

// Protocol versions negotiated during the version handshake. The sender of
// this package always advertises ProtocolVersion; peers that advertise a
// version below MinProtocolVersion are rejected.
const (
	// ProtocolVersion is the version this package advertises in its own
	// outbound version message.
	ProtocolVersion uint32 = 70027

	// MinProtocolVersion is the lowest peer-advertised version this
	// package will complete a handshake with.
	MinProtocolVersion uint32 = 70026

	// InitProtoVersion is the assumed version of a peer prior to
	// completing the version/verack exchange.
	InitProtoVersion uint32 = 209

	// GetHeadersVersion is the version 'getheaders' was introduced at
	// upstream; kept for documentation parity with the reference chain
	// parameters, this package never talks to anything older.
	GetHeadersVersion uint32 = 31800

	// AssetDataVersion is the version assetdata/getassetdata became
	// available.
	AssetDataVersion uint32 = 70017

	// X16Rv2Version is the peer-advertised version at which getassetdata
	// replies with asstnotfound and assetdata payloads drop the
	// trailing block hash.
	X16Rv2Version uint32 = 70025

	// KawpowVersion is the peer-advertised version at which KAWPOW
	// headers may appear on the wire.
	KawpowVersion uint32 = 70027

	// CaddrTimeVersion is the version timestamps were added to the addr
	// message's entries.
	CaddrTimeVersion uint32 = 31402

	// FeeFilterVersion is the version the feefilter message became
	// available.
	FeeFilterVersion uint32 = 70013
)

// EnabledServices are the services this package advertises about itself in
// its outbound version message. The core never serves blocks, transactions,
// or UTXO queries, so it advertises no services of its own.
const EnabledServices ServiceFlag = 0

// ServiceFlag identifies services supported by a Ravencoin peer.
type ServiceFlag uint64

const (
	// SFNodeNetwork indicates a peer is a full node that can be queried
	// for blocks and transactions.
	SFNodeNetwork ServiceFlag = 1 << iota

	// SFNodeGetUTXO indicates a peer supports the getutxos/utxos
	// commands (BIP0064).
	SFNodeGetUTXO

	// SFNodeBloom indicates a peer supports bloom filtering (BIP0111).
	SFNodeBloom

	// SFNodeWitness indicates a peer supports segregated witness.
	SFNodeWitness

	// SFNodeXthin indicates a peer supports xthin blocks.
	SFNodeXthin

	// SFNodeBit5 is reserved for a service defined by bit 5.
	SFNodeBit5

	// SFNodeCF indicates a peer supports committed filters.
	SFNodeCF

	// SFNode2X indicates a peer is running segwit2x software.
	SFNode2X
)

var sfStrings = map[ServiceFlag]string{
	SFNodeNetwork: "SFNodeNetwork",
	SFNodeGetUTXO: "SFNodeGetUTXO",
	SFNodeBloom:   "SFNodeBloom",
	SFNodeWitness: "SFNodeWitness",
	SFNodeXthin:   "SFNodeXthin",
	SFNodeBit5:    "SFNodeBit5",
	SFNodeCF:      "SFNodeCF",
	SFNode2X:      "SFNode2X",
}

var orderedSFStrings = []ServiceFlag{
	SFNodeNetwork,
	SFNodeGetUTXO,
	SFNodeBloom,
	SFNodeWitness,
	SFNodeXthin,
	SFNodeBit5,
	SFNodeCF,
	SFNode2X,
}

// HasNodeNetwork reports whether f advertises SFNodeNetwork.
func (f ServiceFlag) HasNodeNetwork() bool {
	return f&SFNodeNetwork == SFNodeNetwork
}

// String returns the ServiceFlag in human-readable form.
func (f ServiceFlag) String() string {
	if f == 0 {
		return "0x0"
	}

	s := ""
	for _, flag := range orderedSFStrings {
		if f&flag == flag {
			s += sfStrings[flag] + "|"
			f -= flag
		}
	}

	s = strings.TrimRight(s, "|")
	if f != 0 {
		s += "|0x" + strconv.FormatUint(uint64(f), 16)
	}
	return strings.TrimLeft(s, "|")
}

// RavencoinNet represents which Ravencoin network a message belongs to. It is
// carried as the first four bytes of every message envelope (§4.1).
type RavencoinNet uint32

// The three networks this package knows how to frame. Magic numbers are
// bit-exact with the specification; they are unrelated to the numbers a
// full-node chain-parameters table would use for transaction/address
// encoding, which this package does not implement.
const (
	// MainNet is the magic for the main Ravencoin network.
	MainNet RavencoinNet = 0x4e564152

	// TestNet is the magic for the Ravencoin test network.
	TestNet RavencoinNet = 0x544e5652

	// RegTest is the magic for the Ravencoin regression-test network.
	RegTest RavencoinNet = 0x574f5243
)

var bnStrings = map[RavencoinNet]string{
	MainNet: "MainNet",
	TestNet: "TestNet",
	RegTest: "RegTest",
}

// String returns the RavencoinNet in human-readable form.
func (n RavencoinNet) String() string {
	if s, ok := bnStrings[n]; ok {
		return s
	}
	return fmt.Sprintf("Unknown RavencoinNet (%d)", uint32(n))
}

// Standard TCP ports for each network. DefaultPort is configured externally
// by the caller (chaincfg.Params); these are provided for convenience.
const (
	MainNetPort = 8767
	TestNetPort = 18770
	RegTestPort = 18444
)

// Message command strings. These occupy the 12-byte, NUL-padded command
// field of the wire envelope (§4.1).
const (
	CmdVersion      = "version"
	CmdVerAck       = "verack"
	CmdAddr         = "addr"
	CmdInv          = "inv"
	CmdTx           = "tx"
	CmdHeaders      = "headers"
	CmdGetAddr      = "getaddr"
	CmdGetData      = "getdata"
	CmdNotFound     = "notfound"
	CmdPing         = "ping"
	CmdPong         = "pong"
	CmdMerkleBlock  = "merkleblock"
	CmdReject       = "reject"
	CmdFeeFilter    = "feefilter"
	CmdGetAssetData = "getassetdata"
	CmdAssetData    = "assetdata"
	CmdAsstNotFound = "asstnotfound"
	CmdGetHeaders   = "getheaders"
	CmdGetBlocks    = "getblocks"
	CmdFilterLoad   = "filterload"
	CmdMemPool      = "mempool"
	CmdSendCmpct    = "sendcmpct"
	CmdSendHeaders  = "sendheaders"
)

// InvType represents the allowed types of an inventory vector (§4.2 inv).
type InvType uint32

const (
	InvTypeError         InvType = 0
	InvTypeTx            InvType = 1
	InvTypeBlock         InvType = 2
	InvTypeFilteredBlock InvType = 3
)

var invTypeStrings = map[InvType]string{
	InvTypeError:         "ERROR",
	InvTypeTx:            "MSG_TX",
	InvTypeBlock:         "MSG_BLOCK",
	InvTypeFilteredBlock: "MSG_FILTERED_BLOCK",
}

// String returns the InvType in human-readable form.
func (t InvType) String() string {
	if s, ok := invTypeStrings[t]; ok {
		return s
	}
	return fmt.Sprintf("Unknown InvType (%d)", uint32(t))
}

// RejectCode represents a BIP61 reject code.
type RejectCode uint8

const (
	RejectMalformed       RejectCode = 0x01
	RejectInvalid         RejectCode = 0x10
	RejectObsolete        RejectCode = 0x11
	RejectDuplicate       RejectCode = 0x12
	RejectNonstandard     RejectCode = 0x40
	RejectDust            RejectCode = 0x41
	RejectInsufficientFee RejectCode = 0x42
	RejectCheckpoint      RejectCode = 0x43
)
