package persist

import (
	"fmt"

	bolt "go.etcd.io/bbolt"
)

var (
	vaultBucket = []byte("vault")
	documentKey = []byte("document")
)

// BoltStore keeps the vault document in a bbolt database. Saves are
// transactional, and bbolt's file lock keeps a second process from
// opening the same vault concurrently.
type BoltStore struct {
	path string
}

// NewBoltStore returns a store backed by the bbolt database at path.
func NewBoltStore(path string) *BoltStore {
	return &BoltStore{path: path}
}

func (s *BoltStore) open() (*bolt.DB, error) {
	db, err := bolt.Open(s.path, vaultFileMode, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open vault database: %w", err)
	}
	return db, nil
}

func (s *BoltStore) Exists() (bool, error) {
	db, err := s.open()
	if err != nil {
		return false, err
	}
	defer db.Close()

	var exists bool
	err = db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(vaultBucket)
		exists = bucket != nil && bucket.Get(documentKey) != nil
		return nil
	})
	return exists, err
}

func (s *BoltStore) Load() ([]byte, error) {
	db, err := s.open()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var data []byte
	err = db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(vaultBucket)
		if bucket == nil {
			return fmt.Errorf("vault bucket not found")
		}
		doc := bucket.Get(documentKey)
		if doc == nil {
			return fmt.Errorf("vault document not found")
		}
		// Make a copy since the slice is only valid during the transaction
		data = append([]byte(nil), doc...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *BoltStore) Save(data []byte) error {
	db, err := s.open()
	if err != nil {
		return err
	}
	defer db.Close()

	return db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(vaultBucket)
		if err != nil {
			return fmt.Errorf("failed to create vault bucket: %w", err)
		}
		return bucket.Put(documentKey, data)
	})
}
