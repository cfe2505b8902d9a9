package models

import (
	"strings"
)

// WineType is the style of wine recorded in the diary.
type WineType string

const (
	WineTypeRed       WineType = "red"
	WineTypeWhite     WineType = "white"
	WineTypeSparkling WineType = "sparkling"
	WineTypeRose      WineType = "rose"
	WineTypeIcewine   WineType = "icewine"
	WineTypeNatural   WineType = "natural"
	WineTypeDessert   WineType = "dessert"
)

// WineTypes lists every known wine type in display order.
var WineTypes = []WineType{
	WineTypeRed,
	WineTypeWhite,
	WineTypeSparkling,
	WineTypeRose,
	WineTypeIcewine,
	WineTypeNatural,
	WineTypeDessert,
}

// Valid reports whether t is one of the known wine types.
func (t WineType) Valid() bool {
	for _, known := range WineTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParseWineType normalizes s into a known wine type.
// Unknown or empty values fall back to red, the default style of the label analysis.
func ParseWineType(s string) WineType {
	t := WineType(strings.ToLower(strings.TrimSpace(s)))
	if t.Valid() {
		return t
	}
	return WineTypeRed
}

const (
	// MinScale is the lowest value of a tasting axis
	MinScale = 1
	// MaxScale is the highest value of a tasting axis
	MaxScale = 5
)

// ClampScale forces v into [MinScale, MaxScale].
func ClampScale(v int) int {
	if v < MinScale {
		return MinScale
	}
	if v > MaxScale {
		return MaxScale
	}
	return v
}

// Media is an image attached to a draft.
// URL is the transient display reference (file path or data URL), Data is the binary handle.
type Media struct {
	URL         string `json:"url,omitempty"`          // URL display reference
	ContentType string `json:"content_type,omitempty"` // ContentType MIME type of Data
	Data        []byte `json:"data,omitempty"`         // Data raw image bytes
}

// Present reports whether the media carries either a display reference or bytes.
func (m Media) Present() bool {
	return m.URL != "" || len(m.Data) > 0
}

// Clone returns a deep copy of the media.
func (m Media) Clone() Media {
	c := m
	if m.Data != nil {
		c.Data = append([]byte(nil), m.Data...)
	}
	return c
}

// WineData holds the identity, label images and tasting profile of a wine.
type WineData struct {
	FrontImage  Media    `json:"front_image"`  // FrontImage front label photo
	BackImage   Media    `json:"back_image"`   // BackImage back label photo
	Name        string   `json:"name"`         // Name wine name
	Origin      string   `json:"origin"`       // Origin country or region
	Grape       string   `json:"grape"`        // Grape grape variety
	Year        string   `json:"year"`         // Year vintage
	Alcohol     string   `json:"alcohol"`      // Alcohol ABV without the percent sign
	Type        WineType `json:"type"`         // Type wine style, empty when unset
	Description string   `json:"description"`  // Description short text from the label analysis
	AromaNote   string   `json:"aroma_note"`   // AromaNote aroma description
	TasteNote   string   `json:"taste_note"`   // TasteNote palate description
	FinishNote  string   `json:"finish_note"`  // FinishNote finish description
	Sweetness   int      `json:"sweetness"`    // Sweetness 1-5
	Acidity     int      `json:"acidity"`      // Acidity 1-5
	Tannin      int      `json:"tannin"`       // Tannin 1-5
	Body        int      `json:"body"`         // Body 1-5
}

// Clone returns a deep copy of the wine data.
func (w WineData) Clone() WineData {
	c := w
	c.FrontImage = w.FrontImage.Clone()
	c.BackImage = w.BackImage.Clone()
	return c
}

// BothLabels reports whether front and back label images are both present.
func (w WineData) BothLabels() bool {
	return w.FrontImage.Present() && w.BackImage.Present()
}

// HasTastingNotes reports whether any of the three tasting notes is filled.
func (w WineData) HasTastingNotes() bool {
	return w.AromaNote != "" || w.TasteNote != "" || w.FinishNote != ""
}
