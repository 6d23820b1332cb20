// Package swapstore persists one record per swap, keyed by its 128-bit
// id, using a single bbolt database file. It follows the teacher's
// channeldb/db.go shape: a thin *bbolt.DB wrapper with an Open
// constructor that creates missing buckets, and a Wipe for tests.
package swapstore

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/btcsuite/btcd/chaincfg"
	bolt "go.etcd.io/bbolt"
)

const (
	dbName           = "swaps.db"
	dbFilePermission = 0600
)

// byteOrder is the preferred integer encoding, matching channeldb's
// choice so bucket cursor scans over integer-keyed data iterate in
// order; swapstore itself only keys by swapid, but shares the
// convention for any future secondary index.
var byteOrder = binary.BigEndian

// swapBucketName holds one key per swap id, value the versioned, encoded
// Record.
var swapBucketName = []byte("swap-records")

// DB is the persistent store for swap records.
type DB struct {
	*bolt.DB
	dbPath string
	params *chaincfg.Params
}

// Open opens (creating if necessary) the swap store at dbPath. params
// is used to decode the Bitcoin addresses embedded in persisted swap
// records, so must match the network the swap was created under.
func Open(dbPath string, params *chaincfg.Params) (*DB, error) {
	path := filepath.Join(dbPath, dbName)

	if !fileExists(dbPath) {
		if err := os.MkdirAll(dbPath, 0700); err != nil {
			return nil, fmt.Errorf("creating swapstore directory: %w", err)
		}
	}

	bdb, err := bolt.Open(path, dbFilePermission, nil)
	if err != nil {
		return nil, fmt.Errorf("opening swapstore database: %w", err)
	}

	err = bdb.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(swapBucketName)
		return err
	})
	if err != nil {
		bdb.Close()
		return nil, fmt.Errorf("initializing swapstore buckets: %w", err)
	}

	return &DB{DB: bdb, dbPath: dbPath, params: params}, nil
}

// Wipe deletes all persisted swap records in a single atomic
// transaction, used by tests that want a clean store between cases.
func (d *DB) Wipe() error {
	return d.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(swapBucketName); err != nil && err != bolt.ErrBucketNotFound {
			return err
		}
		_, err := tx.CreateBucket(swapBucketName)
		return err
	})
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
