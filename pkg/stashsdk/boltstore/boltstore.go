// Package boltstore persists stashsdk session state in a local bbolt file,
// the moral equivalent of a browser's local storage for CLI clients.
package boltstore

import (
	"os"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/stashbin/stashbin/pkg/stashsdk"
)

var bucketSession = []byte("session")

// Store is a bbolt-backed stashsdk.Storage.
type Store struct {
	db *bolt.DB
}

// Open creates or opens the session database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, os.FileMode(0o600), &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSession)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Get(key string) (string, error) {
	var value string
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketSession).Get([]byte(key))
		if v == nil {
			return stashsdk.ErrKeyNotFound
		}
		value = string(v)
		return nil
	})
	return value, err
}

func (s *Store) Set(key, value string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSession).Put([]byte(key), []byte(value))
	})
}

func (s *Store) Delete(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSession).Delete([]byte(key))
	})
}
