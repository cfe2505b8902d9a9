package models

import (
	"time"

	"github.com/google/uuid"
)

// DiaryDraft is the in-progress diary entry edited by the wizard.
type DiaryDraft struct {
	CreatedAt        time.Time `json:"created_at"`        // CreatedAt stamped by the client when the draft is created
	ID               string    `json:"id"`                // ID client-generated UUID
	Review           string    `json:"review"`            // Review free-text diary entry
	Price            string    `json:"price"`             // Price purchase price as typed
	PurchaseLocation string    `json:"purchase_location"` // PurchaseLocation shop or site
	DrinkDate        string    `json:"drink_date"`        // DrinkDate tasting date, YYYY-MM-DD
	ThumbnailImage   Media     `json:"thumbnail_image"`   // ThumbnailImage captured photo
	DownloadImage    Media     `json:"download_image"`    // DownloadImage composed card
	Wine             WineData  `json:"wine"`              // Wine wine identity and tasting profile
	Rating           int       `json:"rating"`            // Rating 1-5, 0 when unset
	IsPublic         bool      `json:"is_public"`         // IsPublic visibility flag
	AIAssisted       bool      `json:"ai_assisted"`       // AIAssisted identity fields came from label analysis
}

// NewDiaryDraft creates an empty draft stamped with now.
// Tasting axes start at the scale minimum.
func NewDiaryDraft(now time.Time) DiaryDraft {
	return DiaryDraft{
		ID:        uuid.New().String(),
		CreatedAt: now,
		Wine: WineData{
			Sweetness: MinScale,
			Acidity:   MinScale,
			Tannin:    MinScale,
			Body:      MinScale,
		},
	}
}

// Clone returns a deep copy of the draft.
func (d DiaryDraft) Clone() DiaryDraft {
	c := d
	c.Wine = d.Wine.Clone()
	c.ThumbnailImage = d.ThumbnailImage.Clone()
	c.DownloadImage = d.DownloadImage.Clone()
	return c
}

// ClampRating forces a rating into [0, MaxScale]; 0 means unset.
func ClampRating(v int) int {
	if v <= 0 {
		return 0
	}
	if v > MaxScale {
		return MaxScale
	}
	return v
}

// DateStamp formats the draft creation date as shown on the card.
// A zero CreatedAt falls back to today.
func (d DiaryDraft) DateStamp(now time.Time) string {
	t := d.CreatedAt
	if t.IsZero() {
		t = now
	}
	return t.Format(time.DateOnly)
}
