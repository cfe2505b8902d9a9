package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"

	"github.com/iudanet/winelog/internal/client/storage"
)

// SaveDraft stores or replaces a draft, stamping UpdatedAt
func (s *Storage) SaveDraft(ctx context.Context, rec *storage.DraftRecord) error {
	if rec.Draft.ID == "" {
		return fmt.Errorf("draft id is empty")
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now()
	}

	return s.update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketDrafts)
		if err != nil {
			return err
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal draft: %w", err)
		}

		if err := b.Put([]byte(rec.Draft.ID), data); err != nil {
			return fmt.Errorf("failed to save draft: %w", err)
		}

		return nil
	})
}

// GetDraft retrieves a draft by ID
func (s *Storage) GetDraft(ctx context.Context, id string) (*storage.DraftRecord, error) {
	var rec *storage.DraftRecord

	err := s.view(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketDrafts)
		if err != nil {
			return err
		}

		data := b.Get([]byte(id))
		if data == nil {
			return storage.ErrDraftNotFound
		}

		rec = &storage.DraftRecord{}
		if err := json.Unmarshal(data, rec); err != nil {
			return fmt.Errorf("failed to unmarshal draft: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return rec, nil
}

// ListDrafts returns all drafts, most recently updated first
func (s *Storage) ListDrafts(ctx context.Context) ([]*storage.DraftRecord, error) {
	var recs []*storage.DraftRecord

	err := s.view(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketDrafts)
		if err != nil {
			return err
		}

		return b.ForEach(func(k, v []byte) error {
			rec := &storage.DraftRecord{}
			if err := json.Unmarshal(v, rec); err != nil {
				return fmt.Errorf("failed to unmarshal draft %s: %w", k, err)
			}
			recs = append(recs, rec)
			return nil
		})
	})

	if err != nil {
		return nil, err
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].UpdatedAt.After(recs[j].UpdatedAt)
	})

	return recs, nil
}

// DeleteDraft removes a draft
func (s *Storage) DeleteDraft(ctx context.Context, id string) error {
	return s.update(func(tx *bbolt.Tx) error {
		b, err := bucket(tx, bucketDrafts)
		if err != nil {
			return err
		}

		if b.Get([]byte(id)) == nil {
			return storage.ErrDraftNotFound
		}

		if err := b.Delete([]byte(id)); err != nil {
			return fmt.Errorf("failed to delete draft: %w", err)
		}

		return nil
	})
}
