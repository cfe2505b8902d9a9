package storage

import (
	"context"
	"time"

	"github.com/iudanet/winelog/internal/models"
)

// DraftRecord is an autosaved wizard run
type DraftRecord struct {
	UpdatedAt   time.Time         `json:"updated_at"`
	Draft       models.DiaryDraft `json:"draft"`
	Step        int               `json:"step"`              // active wizard step
	ManualEntry bool              `json:"manual_entry"`      // entry mode at the time of saving
	Touched     []string          `json:"touched,omitempty"` // fields written before saving
}

// DraftStorage stores in-progress diary drafts keyed by draft ID
type DraftStorage interface {
	// SaveDraft stores or replaces a draft
	SaveDraft(ctx context.Context, rec *DraftRecord) error

	// GetDraft retrieves a draft by ID
	// Returns ErrDraftNotFound if the draft doesn't exist
	GetDraft(ctx context.Context, id string) (*DraftRecord, error)

	// ListDrafts returns all drafts, most recently updated first
	ListDrafts(ctx context.Context) ([]*DraftRecord, error)

	// DeleteDraft removes a draft
	// Returns ErrDraftNotFound if the draft doesn't exist
	DeleteDraft(ctx context.Context, id string) error
}
