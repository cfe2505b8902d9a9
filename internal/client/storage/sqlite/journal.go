package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/winelog/internal/client/storage"
)

const journalColumns = `id, diary_id, draft_id, wine_name, wine_type, rating, price,
	purchase_location, drink_date, is_public, card_path, saved_at`

// AddEntry records a saved diary. A second save of the same server diary replaces the row.
func (s *Storage) AddEntry(ctx context.Context, e *storage.JournalEntry) error {
	if e.SavedAt.IsZero() {
		e.SavedAt = time.Now()
	}

	query := `
		INSERT INTO journal (diary_id, draft_id, wine_name, wine_type, rating, price,
			purchase_location, drink_date, is_public, card_path, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(diary_id) DO UPDATE SET
			draft_id = excluded.draft_id,
			wine_name = excluded.wine_name,
			wine_type = excluded.wine_type,
			rating = excluded.rating,
			price = excluded.price,
			purchase_location = excluded.purchase_location,
			drink_date = excluded.drink_date,
			is_public = excluded.is_public,
			card_path = excluded.card_path,
			saved_at = excluded.saved_at
		RETURNING id
	`

	err := s.db.QueryRowContext(ctx, query,
		e.DiaryID,
		e.DraftID,
		e.WineName,
		e.WineType,
		e.Rating,
		e.Price,
		e.PurchaseLocation,
		e.DrinkDate,
		e.IsPublic,
		e.CardPath,
		e.SavedAt.UnixMilli(),
	).Scan(&e.ID)

	if err != nil {
		return fmt.Errorf("failed to add journal entry: %w", err)
	}

	return nil
}

// ListEntries returns entries newest first
func (s *Storage) ListEntries(ctx context.Context, filter storage.JournalFilter) ([]*storage.JournalEntry, error) {
	query := `SELECT ` + journalColumns + ` FROM journal`
	var args []any

	if filter.WineType != "" {
		query += ` WHERE wine_type = ?`
		args = append(args, filter.WineType)
	}
	query += ` ORDER BY saved_at DESC, id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var entries []*storage.JournalEntry

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate journal: %w", err)
	}

	return entries, nil
}

// GetEntry returns the entry of a server diary id
func (s *Storage) GetEntry(ctx context.Context, diaryID int64) (*storage.JournalEntry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+journalColumns+` FROM journal WHERE diary_id = ?`, diaryID)

	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrEntryNotFound
		}
		return nil, err
	}

	return e, nil
}

// DeleteEntry removes the entry of a server diary id
func (s *Storage) DeleteEntry(ctx context.Context, diaryID int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM journal WHERE diary_id = ?`, diaryID)
	if err != nil {
		return fmt.Errorf("failed to delete journal entry: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrEntryNotFound
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*storage.JournalEntry, error) {
	e := &storage.JournalEntry{}
	var savedAt int64

	err := row.Scan(
		&e.ID,
		&e.DiaryID,
		&e.DraftID,
		&e.WineName,
		&e.WineType,
		&e.Rating,
		&e.Price,
		&e.PurchaseLocation,
		&e.DrinkDate,
		&e.IsPublic,
		&e.CardPath,
		&savedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan journal entry: %w", err)
	}

	e.SavedAt = time.UnixMilli(savedAt)
	return e, nil
}
