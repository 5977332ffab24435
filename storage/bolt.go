package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"jarvis/model"
)

const boltHistoryFile = "history.bolt"

var historyBucket = []byte("history")

// Bolt stores one message per key in a bucket, keyed by big-endian position
type Bolt struct {
	db   *bolt.DB
	path string
}

func NewBolt(dataDir string) (*Bolt, error) {
	path := filepath.Join(dataDir, boltHistoryFile)

	// A second instance holding the file lock fails fast instead of hanging
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	return &Bolt{db: db, path: path}, nil
}

func (s *Bolt) Load() ([]model.Message, error) {
	messages := []model.Message{}
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(historyBucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var msg model.Message
			if err := json.Unmarshal(v, &msg); err != nil {
				return fmt.Errorf("entry %d: %w", binary.BigEndian.Uint64(k), err)
			}
			messages = append(messages, msg)
			return nil
		})
	})
	if err != nil {
		return nil, &PersistenceError{Op: "load", Path: s.path, Err: err}
	}
	if err := validate(messages); err != nil {
		return nil, &PersistenceError{Op: "load", Path: s.path, Err: err}
	}
	return messages, nil
}

// Save recreates the bucket so it reflects messages exactly
func (s *Bolt) Save(messages []model.Message) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(historyBucket) != nil {
			if err := tx.DeleteBucket(historyBucket); err != nil {
				return err
			}
		}
		b, err := tx.CreateBucket(historyBucket)
		if err != nil {
			return err
		}
		for i, msg := range messages {
			enc, err := json.Marshal(msg)
			if err != nil {
				return err
			}
			if err := b.Put(positionKey(i), enc); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &PersistenceError{Op: "save", Path: s.path, Err: err}
	}
	return nil
}

func (s *Bolt) Clear() error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(historyBucket) == nil {
			return nil
		}
		return tx.DeleteBucket(historyBucket)
	})
	if err != nil {
		return &PersistenceError{Op: "clear", Path: s.path, Err: err}
	}
	return nil
}

func (s *Bolt) Close() error {
	return s.db.Close()
}

func positionKey(i int) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(i))
	return key
}
