package storage

import "context"

// MetadataStorage stores small client settings that outlive a wizard run
type MetadataStorage interface {
	// SaveLastSavedAt saves the unix time of the last successful diary save
	SaveLastSavedAt(ctx context.Context, timestamp int64) error

	// GetLastSavedAt retrieves the time of the last successful diary save
	// Returns 0 if nothing has been saved yet
	GetLastSavedAt(ctx context.Context) (int64, error)

	// SaveLayout remembers the card layout chosen last
	SaveLayout(ctx context.Context, name string) error

	// GetLayout returns the remembered card layout, empty if none
	GetLayout(ctx context.Context) (string, error)
}
