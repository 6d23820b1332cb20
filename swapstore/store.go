package swapstore

import (
	bolt "go.etcd.io/bbolt"

	"github.com/btcxmr/swapcore/swapid"
)

// Put overwrites the persisted record for rec.SwapID. A swap task
// calls this once per state transition: the per-swap serialization
// invariant means writes are never concurrent for the same id, so a
// single overwrite (rather than an append log) is sufficient and keeps
// the store's size bounded by swap count, not swap history length.
func (d *DB) Put(rec Record) error {
	data, err := Encode(rec)
	if err != nil {
		return err
	}
	return d.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(swapBucketName)
		return b.Put(rec.SwapID[:], data)
	})
}

// Get loads the persisted record for id, or *ErrSwapNotFound if none
// exists.
func (d *DB) Get(id swapid.ID) (Record, error) {
	var rec Record
	err := d.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(swapBucketName)
		data := b.Get(id[:])
		if data == nil {
			return &ErrSwapNotFound{ID: id.String()}
		}
		// bbolt's Get returns a slice valid only for the transaction's
		// lifetime; copy it before decoding outside the closure.
		buf := make([]byte, len(data))
		copy(buf, data)

		decoded, err := Decode(buf, d.params)
		if err != nil {
			return err
		}
		rec = decoded
		return nil
	})
	return rec, err
}

// Delete removes a swap's persisted record, used once a swap reaches a
// terminal state and its task has finished.
func (d *DB) Delete(id swapid.ID) error {
	return d.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(swapBucketName)
		return b.Delete(id[:])
	})
}

// List returns every persisted record, so that swap tasks that were
// in flight when the process last stopped can be resumed at startup.
func (d *DB) List() ([]Record, error) {
	var records []Record
	err := d.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(swapBucketName)
		return b.ForEach(func(k, v []byte) error {
			buf := make([]byte, len(v))
			copy(buf, v)

			rec, err := Decode(buf, d.params)
			if err != nil {
				return err
			}
			records = append(records, rec)
			return nil
		})
	})
	return records, err
}
