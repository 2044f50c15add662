// Package assetcache persists asset metadata a peer connection learns
// about via getassetdata/assetdata/asstnotfound (§4.2) across restarts, in
// the bucket-per-concern, Update/View style the pack's storage layers use
// (grounded on moronibr-BYC's internal/storage/db.go, adapted from bbolt's
// transaction API to badger's).
package assetcache

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v2"
	"github.com/mr-tron/base58"
)

// ErrNotFound is returned by Get when name has no cached entry.
var ErrNotFound = errors.New("assetcache: asset not found")

// Entry is what Cache stores for a single asset name, mirroring the fields
// of wire.MsgAssetData that matter once the wire message itself is gone.
type Entry struct {
	Name        string    `json:"name"`
	Amount      uint64    `json:"amount"`
	Unit        uint8     `json:"unit"`
	Reissuable  bool      `json:"reissuable"`
	IPFSHash    string    `json:"ipfs_hash,omitempty"` // base58, empty if HasIPFS was false
	BlockHeight uint32    `json:"block_height,omitempty"`
	HasHeight   bool      `json:"has_height"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Cache is a badger-backed key-value store of asset metadata, keyed by
// asset name.
type Cache struct {
	db *badger.DB
}

// Open opens (creating if necessary) a badger database rooted at dir.
func Open(dir string) (*Cache, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // the caller's structured logger owns diagnostics, not badger's own
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

func assetKey(name string) []byte {
	return []byte("asset:" + name)
}

// Put records or replaces an asset's metadata. ipfsHash, when non-empty, is
// expected to already be the raw 34-byte multihash as carried on the wire;
// Put stores its base58 encoding, the conventional display form for an
// IPFS hash.
func (c *Cache) Put(name string, amount uint64, unit uint8, reissuable bool, ipfsHash []byte, blockHeight uint32, hasHeight bool) error {
	entry := Entry{
		Name:        name,
		Amount:      amount,
		Unit:        unit,
		Reissuable:  reissuable,
		BlockHeight: blockHeight,
		HasHeight:   hasHeight,
		UpdatedAt:   time.Now().UTC(),
	}
	if len(ipfsHash) > 0 {
		entry.IPFSHash = base58.Encode(ipfsHash)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(assetKey(name), data)
	})
}

// Get retrieves a previously cached asset's metadata, returning ErrNotFound
// if name has never been cached.
func (c *Cache) Get(name string) (Entry, error) {
	var entry Entry
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(assetKey(name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	return entry, err
}

// Delete removes a cached entry, e.g. once a peer reports asstnotfound for
// a name this cache previously believed existed.
func (c *Cache) Delete(name string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(assetKey(name))
	})
}
