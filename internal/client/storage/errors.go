package storage

import "errors"

// Common client storage errors
var (
	// ErrAuthNotFound indicates that no authentication data exists
	ErrAuthNotFound = errors.New("authentication data not found")

	// ErrDraftNotFound indicates that a draft was not found
	ErrDraftNotFound = errors.New("draft not found")

	// ErrEntryNotFound indicates that a journal entry was not found
	ErrEntryNotFound = errors.New("journal entry not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
