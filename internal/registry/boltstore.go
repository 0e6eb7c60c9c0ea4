// =================================
// File: internal/registry/boltstore.go
// =================================
package registry

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.etcd.io/bbolt"

	"github.com/pumpforge/launchpad/internal/types"
)

var (
	bucketLaunches = []byte("launches")
	bucketOrder    = []byte("launch_order")
)

const openLockTimeout = 2 * time.Second

// BoltStore is the durable Registry backed by a bbolt file. Records are
// gob-encoded under the token address; a second bucket maps a big-endian
// sequence number to the token so List preserves creation order.
type BoltStore struct {
	db *bbolt.DB
}

var _ Registry = (*BoltStore)(nil)

// OpenBolt opens or creates the registry database at dbPath. A restarting
// daemon can race the old process for the file lock, so the open is retried
// with exponential backoff before giving up.
func OpenBolt(ctx context.Context, dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("registry: create directory: %w", err)
	}

	open := func() (*bbolt.DB, error) {
		return bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: openLockTimeout})
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxInterval = 2 * time.Second

	db, err := backoff.Retry(ctx, open,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(5))
	if err != nil {
		return nil, fmt.Errorf("registry: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketLaunches, bucketOrder} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("registry: create buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// Put appends a launch record. Returns ErrDuplicate if the token is already
// registered.
func (s *BoltStore) Put(entry Entry) error {
	key := []byte(entry.Token)
	return s.db.Update(func(tx *bbolt.Tx) error {
		launches := tx.Bucket(bucketLaunches)
		if launches.Get(key) != nil {
			return ErrDuplicate
		}

		data, err := encodeGob(entry)
		if err != nil {
			return fmt.Errorf("registry: encode entry: %w", err)
		}
		if err := launches.Put(key, data); err != nil {
			return fmt.Errorf("registry: put entry: %w", err)
		}

		order := tx.Bucket(bucketOrder)
		seq, err := order.NextSequence()
		if err != nil {
			return fmt.Errorf("registry: next sequence: %w", err)
		}
		if err := order.Put(seqKey(seq), key); err != nil {
			return fmt.Errorf("registry: put order index: %w", err)
		}
		return nil
	})
}

// Get returns the record for token, or ErrNotFound.
func (s *BoltStore) Get(token types.Address) (Entry, error) {
	var entry Entry
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketLaunches).Get([]byte(token))
		if data == nil {
			return ErrNotFound
		}
		if err := decodeGob(data, &entry); err != nil {
			return fmt.Errorf("registry: decode entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// List returns all records in creation order.
func (s *BoltStore) List() ([]Entry, error) {
	var entries []Entry
	err := s.db.View(func(tx *bbolt.Tx) error {
		launches := tx.Bucket(bucketLaunches)
		return tx.Bucket(bucketOrder).ForEach(func(_, token []byte) error {
			data := launches.Get(token)
			if data == nil {
				return nil // stale index entry
			}
			var entry Entry
			if err := decodeGob(data, &entry); err != nil {
				return fmt.Errorf("registry: decode entry in list: %w", err)
			}
			entries = append(entries, entry)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// seqKey encodes a sequence number as an 8-byte big-endian key so the order
// bucket iterates in insertion order.
func seqKey(seq uint64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, seq)
	return k
}

func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeGob(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}
