// Package bolt stores loads and users in a single embedded bbolt file. Every
// write runs in a bbolt read-write transaction, so writers are serialized
// across the whole file rather than per load.
package bolt

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/truckmitra/backend/domain"
)

var (
	loadsBucket  = []byte("loads")
	eventsBucket = []byte("load_events")
	usersBucket  = []byte("users")
	emailsBucket = []byte("user_emails")
)

// Open initializes the bbolt file and ensures every bucket exists.
func Open(path string) (*bbolt.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{loadsBucket, eventsBucket, usersBucket, emailsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func sequenceKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}

func timeNow() time.Time {
	return domain.Stamp(time.Now())
}
