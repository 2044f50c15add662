// Command ravenpeerd dials a single Ravencoin node over SPV and logs the
// handshake, relayed transactions/blocks, and asset announcements it sees,
// caching the latter to disk. It is a demonstration harness for the
// ravencoin/peer package, following the flag-plus-graceful-shutdown shape
// of the pack's node binaries (grounded on moronibr-BYC's cmd/byc-node).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btclog"
	"go.uber.org/zap"

	"github.com/RavenProject/ravenspv/internal/assetcache"
	"github.com/RavenProject/ravenspv/internal/logging"
	"github.com/RavenProject/ravenspv/internal/powstub"
	"github.com/RavenProject/ravenspv/ravencoin/chaincfg"
	"github.com/RavenProject/ravenspv/ravencoin/chainlocator"
	"github.com/RavenProject/ravenspv/ravencoin/peer"
	"github.com/RavenProject/ravenspv/ravencoin/wire"
)

func main() {
	host := flag.String("host", "seed-raven.bitactivate.com", "peer hostname or IP to dial")
	port := flag.Uint("port", 8767, "peer TCP port")
	network := flag.String("network", "mainnet", "network: mainnet, testnet, or regtest")
	dataDir := flag.String("datadir", "./ravenpeerd-data", "directory for the asset metadata cache")
	logLevel := flag.String("loglevel", "info", "trace, debug, info, warn, error, or critical")
	flag.Parse()

	level := parseLogLevel(*logLevel)
	peerLogger, zapBase, err := logging.NewProduction("peer", level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ravenpeerd: building logger: %v\n", err)
		os.Exit(1)
	}
	defer zapBase.Sync()
	peer.UseLogger(peerLogger)
	log := zapBase.Sugar()

	params, err := resolveParams(*network)
	if err != nil {
		log.Fatalw("unknown network", "network", *network, "error", err)
	}

	cache, err := assetcache.Open(*dataDir)
	if err != nil {
		log.Fatalw("opening asset cache", "dir", *dataDir, "error", err)
	}
	defer cache.Close()

	engine := &chainlocator.Engine{
		X16R:                 powstub.X16R,
		X16Rv2:               powstub.X16Rv2,
		Kawpow:               powstub.LightVerify,
		X16Rv2ActivationTime: params.X16Rv2ActivationTime,
	}

	callbacks := peer.Callbacks{
		Connected: func(p *peer.Peer) {
			log.Infow("handshake complete", "peer", p.Host())
		},
		Disconnected: func(p *peer.Peer, err error) {
			log.Infow("disconnected", "peer", p.Host(), "error", err)
		},
		RelayedTx: func(p *peer.Peer, raw []byte) {
			log.Debugw("relayed tx", "bytes", len(raw))
		},
		HasTx: func(p *peer.Peer, hash chainhash.Hash) {
			log.Debugw("peer already has tx", "hash", hash.String())
		},
		RejectedTx: func(p *peer.Peer, hash chainhash.Hash, code wire.RejectCode) {
			log.Warnw("tx rejected", "hash", hash.String(), "code", code)
		},
		RelayedBlock: func(p *peer.Peer, raw []byte) {
			log.Debugw("relayed block", "bytes", len(raw))
		},
		NotFound: func(p *peer.Peer, txHashes, blockHashes []chainhash.Hash) {
			log.Warnw("notfound", "txs", len(txHashes), "blocks", len(blockHashes))
		},
		SetFeePerKb: func(p *peer.Peer, satPerKb uint64) {
			log.Infow("peer fee filter", "satPerKb", satPerKb)
		},
		RequestedTx: func(p *peer.Peer, hash chainhash.Hash) []byte {
			return nil
		},
		NetworkReachable: func() bool { return true },
		ThreadCleanup: func(p *peer.Peer) {
			log.Debugw("peer thread cleanup", "peer", p.Host())
		},
	}

	p := peer.New(params, *host, uint16(*port), callbacks, engine)

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutting down")
		cancel()
		p.Disconnect()
	}()

	log.Infow("connecting", "host", *host, "port", *port, "network", params.Name)
	p.Connect(ctx)

	go demoAssetLookup(p, cache, log)

	<-ctx.Done()
	time.Sleep(500 * time.Millisecond) // let Disconnect's callbacks settle
}

// demoAssetLookup requests one well-known asset's metadata once the
// handshake has a chance to complete, caching whatever the peer reports.
func demoAssetLookup(p *peer.Peer, cache *assetcache.Cache, log *zap.SugaredLogger) {
	time.Sleep(5 * time.Second)
	if p.StatusNow() != peer.Connected {
		return
	}
	err := p.SendGetAsset("RAVEN", func(data *wire.MsgAssetData, found bool) {
		if !found {
			log.Infow("asset not found", "name", data.Name)
			return
		}
		var ipfsHash []byte
		if data.HasIPFS {
			ipfsHash = data.IPFSHash[:]
		}
		if err := cache.Put(data.Name, data.Amount, data.Unit, data.Reissuable, ipfsHash, data.BlockHeight, data.HasHeight); err != nil {
			log.Warnw("caching asset", "name", data.Name, "error", err)
		}
	})
	if err != nil {
		log.Warnw("requesting asset data", "error", err)
	}
}

func resolveParams(network string) (*chaincfg.Params, error) {
	switch network {
	case "mainnet":
		return &chaincfg.MainNetParams, nil
	case "testnet":
		return &chaincfg.TestNetParams, nil
	case "regtest":
		return &chaincfg.RegTestParams, nil
	default:
		return nil, fmt.Errorf("unrecognized network %q", network)
	}
}

func parseLogLevel(s string) btclog.Level {
	switch s {
	case "trace":
		return btclog.LevelTrace
	case "debug":
		return btclog.LevelDebug
	case "warn":
		return btclog.LevelWarn
	case "error":
		return btclog.LevelError
	case "critical":
		return btclog.LevelCritical
	default:
		return btclog.LevelInfo
	}
}
