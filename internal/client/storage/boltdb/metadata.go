package boltdb

import (
	"context"
	"encoding/binary"
	"fmt"

	"go.etcd.io/bbolt"
)

const (
	keyLastSavedAt = "last_saved_at"
	keyLayout      = "card_layout"
)

// SaveLastSavedAt saves the unix time of the last successful diary save
func (s *Storage) SaveLastSavedAt(ctx context.Context, timestamp int64) error {
	return s.update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketMetadata)
		if err != nil {
			return err
		}

		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(timestamp))

		if err := b.Put([]byte(keyLastSavedAt), buf); err != nil {
			return fmt.Errorf("failed to save last saved timestamp: %w", err)
		}

		return nil
	})
}

// GetLastSavedAt retrieves the time of the last successful diary save
// Returns 0 if nothing has been saved yet
func (s *Storage) GetLastSavedAt(ctx context.Context) (int64, error) {
	var timestamp int64

	err := s.view(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketMetadata)
		if err != nil {
			return err
		}

		buf := b.Get([]byte(keyLastSavedAt))
		if len(buf) != 8 {
			return nil
		}

		timestamp = int64(binary.BigEndian.Uint64(buf))
		return nil
	})

	if err != nil {
		return 0, fmt.Errorf("failed to get last saved timestamp: %w", err)
	}

	return timestamp, nil
}

// SaveLayout remembers the card layout chosen last
func (s *Storage) SaveLayout(ctx context.Context, name string) error {
	return s.update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketMetadata)
		if err != nil {
			return err
		}
		if err := b.Put([]byte(keyLayout), []byte(name)); err != nil {
			return fmt.Errorf("failed to save layout: %w", err)
		}
		return nil
	})
}

// GetLayout returns the remembered card layout, empty if none
func (s *Storage) GetLayout(ctx context.Context) (string, error) {
	var name string

	err := s.view(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketMetadata)
		if err != nil {
			return err
		}
		name = string(b.Get([]byte(keyLayout)))
		return nil
	})

	if err != nil {
		return "", fmt.Errorf("failed to get layout: %w", err)
	}

	return name, nil
}
