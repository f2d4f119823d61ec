package store

import (
	"context"
	"strconv"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketWatchGroups = []byte("watch_groups")

// Bolt stores watch flags in a local bbolt file. Keys are decimal group ids;
// presence means enabled.
type Bolt struct {
	db *bolt.DB
}

// OpenBolt opens (or creates) the store file.
func OpenBolt(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, e := tx.CreateBucketIfNotExists(bucketWatchGroups)
		return e
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Bolt{db: db}, nil
}

func (s *Bolt) Enable(_ context.Context, groupID int64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketWatchGroups).Put(key(groupID), []byte{1})
	})
}

func (s *Bolt) Disable(_ context.Context, groupID int64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketWatchGroups).Delete(key(groupID))
	})
}

func (s *Bolt) Enabled(_ context.Context, groupID int64) (bool, error) {
	var enabled bool
	err := s.db.View(func(tx *bolt.Tx) error {
		enabled = tx.Bucket(bucketWatchGroups).Get(key(groupID)) != nil
		return nil
	})
	return enabled, err
}

func (s *Bolt) ListEnabled(_ context.Context) ([]int64, error) {
	var ids []int64
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketWatchGroups).ForEach(func(k, _ []byte) error {
			id, err := strconv.ParseInt(string(k), 10, 64)
			if err != nil {
				return nil // skip foreign keys rather than fail the listing
			}
			ids = append(ids, id)
			return nil
		})
	})
	return ids, err
}

func (s *Bolt) Close() error { return s.db.Close() }

func key(groupID int64) []byte {
	return []byte(strconv.FormatInt(groupID, 10))
}
