package kvengine

import (
	"bytes"
	"fmt"
	"io"

	bolt "go.etcd.io/bbolt"
)

var rootBucket = []byte("graphd")

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = fmt.Errorf("kvengine: key not found")

// Engine is a bbolt-backed key/value engine: one ordered bucket, raw byte
// keys, raw byte values. Callers are responsible for the key layouts
// (pkg/keycodec) and value encodings (pkg/row) that give the raw bytes
// meaning.
type Engine struct {
	db *bolt.DB
}

// Open opens (creating if necessary) a bbolt file at path and ensures the
// root bucket exists.
func Open(path string) (*Engine, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("kvengine: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(rootBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kvengine: create root bucket: %w", err)
	}
	return &Engine{db: db}, nil
}

// Close releases the underlying file handle.
func (e *Engine) Close() error {
	return e.db.Close()
}

// Get reads the value stored at key. Returns ErrNotFound if absent.
func (e *Engine) Get(key []byte) ([]byte, error) {
	var out []byte
	err := e.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(rootBucket).Get(key)
		if v == nil {
			return ErrNotFound
		}
		out = append(out, v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// KV is one key/value pair returned from a scan.
type KV struct {
	Key   []byte
	Value []byte
}

// ScanPrefix returns every key/value pair whose key starts with prefix,
// in ascending key order.
func (e *Engine) ScanPrefix(prefix []byte) ([]KV, error) {
	var out []KV
	err := e.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(rootBucket).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			out = append(out, KV{Key: append([]byte{}, k...), Value: append([]byte{}, v...)})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Op is one mutation within a Batch: a Put (Value non-nil) or a Remove
// (Value nil).
type Op struct {
	Key   []byte
	Value []byte
}

// IsRemove reports whether this op deletes its key.
func (o Op) IsRemove() bool { return o.Value == nil }

// ApplyBatch commits every op in ops atomically: either all are visible
// afterward or none are. Within a batch the last operation on a given key
// wins (pkg/batch's contract); ApplyBatch does not deduplicate, it relies
// on bbolt applying puts/deletes in order within one transaction.
func (e *Engine) ApplyBatch(ops []Op) error {
	return e.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(rootBucket)
		for _, op := range ops {
			if op.IsRemove() {
				if err := b.Delete(op.Key); err != nil {
					return fmt.Errorf("kvengine: delete %x: %w", op.Key, err)
				}
				continue
			}
			if err := b.Put(op.Key, op.Value); err != nil {
				return fmt.Errorf("kvengine: put %x: %w", op.Key, err)
			}
		}
		return nil
	})
}

// Snapshot writes a consistent point-in-time copy of the whole engine to
// w, for use by pkg/replicatedkv's raft snapshot machinery.
func (e *Engine) Snapshot(w io.Writer) error {
	return e.db.View(func(tx *bolt.Tx) error {
		_, err := tx.WriteTo(w)
		return err
	})
}
