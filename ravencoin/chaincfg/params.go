// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaincfg defines the network parameters an SPV peer connection
// needs to dial a Ravencoin node and interpret its header stream: network
// identity, seed hosts, the genesis hash, and the two proof-of-work
// activation timestamps that govern header decoding (§4.2, §4.4). Full
// consensus parameters (address encoding, HD key magics, BIP0009
// deployments, checkpoints) belong to a full node's chain validator, not
// a peer connection, and are intentionally absent.
package chaincfg

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/RavenProject/ravenspv/ravencoin/wire"
)

// DNSSeed identifies a DNS seed host used to discover peers.
type DNSSeed struct {
	Host         string
	HasFiltering bool
}

// String returns the hostname of the seed.
func (d DNSSeed) String() string { return d.Host }

// Params defines a Ravencoin network by the parameters an SPV peer
// connection needs.
type Params struct {
	// Name is a human-readable identifier for the network.
	Name string

	// Net is the magic bytes used to identify the network on the wire.
	Net wire.RavencoinNet

	// DefaultPort is the default peer-to-peer TCP port for the network.
	DefaultPort string

	// DNSSeeds lists hosts used to discover peers.
	DNSSeeds []DNSSeed

	// GenesisHash is the hash of the first block of the chain, used as
	// the implicit locator root before any headers have been received.
	GenesisHash *chainhash.Hash

	// X16Rv2ActivationTime is the header timestamp at or after which a
	// legacy (80-byte) header's proof of work is interpreted with X16Rv2
	// instead of X16R (§4.4 step 3).
	X16Rv2ActivationTime uint32

	// KawpowActivationTime is the header timestamp at or after which a
	// header uses the 120-byte KAWPOW encoding instead of the 80-byte
	// legacy encoding (§4.2 headers, §4.4 step 1).
	KawpowActivationTime uint32
}

func mustHash(hexStr string) *chainhash.Hash {
	h, err := chainhash.NewHashFromStr(hexStr)
	if err != nil {
		panic(err)
	}
	return h
}

// MainNetParams defines the network parameters for the main Ravencoin
// network.
var MainNetParams = Params{
	Name:        "mainnet",
	Net:         wire.MainNet,
	DefaultPort: "8767",
	DNSSeeds: []DNSSeed{
		{Host: "seed-raven.bitactivate.com"},
		{Host: "seed-raven.ravencoin.com"},
		{Host: "seed-raven.ravencoin.org"},
	},
	GenesisHash:          mustHash("0000006b444bc2f2ffe627be9d9e7e7a0730000870ef6eb6da46c8eae389df90"),
	X16Rv2ActivationTime: 1569945600, // 2019-10-01T16:00:00Z
	KawpowActivationTime: 1588788000, // 2020-05-06T18:00:00Z
}

// TestNetParams defines the network parameters for the Ravencoin test
// network.
var TestNetParams = Params{
	Name:        "testnet",
	Net:         wire.TestNet,
	DefaultPort: "18770",
	DNSSeeds: []DNSSeed{
		{Host: "seed-testnet-raven.bitactivate.com"},
		{Host: "seed-testnet-raven.ravencoin.com"},
		{Host: "seed-testnet-raven.ravencoin.org"},
	},
	GenesisHash:          mustHash("000000ecfc5e6324a079542221d00e10362bdc894d56500c414060eea8a3ad5a"),
	X16Rv2ActivationTime: 1569931200, // 2019-10-01T12:00:00Z
	KawpowActivationTime: 1587740400, // 2020-04-24T15:00:00Z
}

// RegTestParams defines the network parameters for the Ravencoin
// regression-test network. There is no public genesis hash or DNS seed for
// a locally-bootstrapped regtest chain; activation times are set to zero so
// every header decodes as KAWPOW, matching how regtest harnesses are
// typically configured to skip legacy mining entirely.
var RegTestParams = Params{
	Name:                 "regtest",
	Net:                  wire.RegTest,
	DefaultPort:          "18444",
	X16Rv2ActivationTime: 0,
	KawpowActivationTime: 0,
}

var (
	// ErrDuplicateNet is returned by Register when params.Net has
	// already been registered.
	ErrDuplicateNet = errors.New("chaincfg: duplicate Ravencoin network")

	// ErrUnknownNet is returned by ParamsForNet when no network with the
	// given magic has been registered.
	ErrUnknownNet = errors.New("chaincfg: unknown Ravencoin network")
)

var registered = map[wire.RavencoinNet]*Params{
	wire.MainNet: &MainNetParams,
	wire.TestNet: &TestNetParams,
	wire.RegTest: &RegTestParams,
}

// Register adds params to the set of known networks, so that a caller
// wiring up a custom network (e.g. a private regtest harness with real
// seed hosts) can look it up the same way as a built-in one.
func Register(params *Params) error {
	if _, ok := registered[params.Net]; ok {
		return ErrDuplicateNet
	}
	registered[params.Net] = params
	return nil
}

// ParamsForNet returns the registered Params for net, or ErrUnknownNet.
func ParamsForNet(net wire.RavencoinNet) (*Params, error) {
	p, ok := registered[net]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNet, net)
	}
	return p, nil
}
