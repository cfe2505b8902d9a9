package storage

import (
	"context"
	"time"
)

// JournalEntry is a diary saved to the backend, kept locally for the collection listing
type JournalEntry struct {
	SavedAt          time.Time
	DraftID          string
	WineName         string
	WineType         string
	Price            string
	PurchaseLocation string
	DrinkDate        string
	CardPath         string // exported card image, empty if not exported
	ID               int64  // local row id
	DiaryID          int64  // server diary id
	Rating           int
	IsPublic         bool
}

// JournalFilter narrows ListEntries
type JournalFilter struct {
	WineType string // empty matches all types
	Limit    int    // 0 means no limit
}

// JournalStorage stores saved diaries
type JournalStorage interface {
	// AddEntry records a saved diary and sets entry.ID
	AddEntry(ctx context.Context, entry *JournalEntry) error

	// ListEntries returns entries newest first
	ListEntries(ctx context.Context, filter JournalFilter) ([]*JournalEntry, error)

	// GetEntry returns the entry of a server diary id
	// Returns ErrEntryNotFound if there is none
	GetEntry(ctx context.Context, diaryID int64) (*JournalEntry, error)

	// DeleteEntry removes the entry of a server diary id
	DeleteEntry(ctx context.Context, diaryID int64) error
}
