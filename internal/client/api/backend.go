package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/winelog/internal/models"
	"github.com/iudanet/winelog/internal/wizard"
	"github.com/iudanet/winelog/pkg/api"
)

// ErrAnalysisFailed is returned when the backend could not read the labels
var ErrAnalysisFailed = errors.New("label analysis failed")

// Backend adapts the client to the wizard
type Backend struct {
	client *Client
	now    func() time.Time
}

var _ wizard.Backend = (*Backend)(nil)

// NewBackend wraps client as a wizard backend
func NewBackend(client *Client) *Backend {
	return &Backend{client: client, now: time.Now}
}

// AnalyzeLabels reads the wine identity from the two label photos
func (b *Backend) AnalyzeLabels(ctx context.Context, front, back models.Media) (wizard.AnalysisResult, error) {
	resp, err := b.client.AnalyzeWine(ctx, front, back)
	if err != nil {
		return wizard.AnalysisResult{}, err
	}

	r := resp.AnalysisResult
	if r == nil || !r.Success || r.Analysis.WineAnalysis == nil {
		return wizard.AnalysisResult{}, ErrAnalysisFailed
	}

	a := r.Analysis.WineAnalysis
	return wizard.AnalysisResult{
		Name:        a.Name,
		Origin:      a.Origin,
		Grape:       a.Grape,
		Year:        a.Year,
		Alcohol:     a.Alcohol,
		Type:        models.WineType(a.Type),
		Description: a.Description,
	}, nil
}

// LookupTaste fetches the tasting profile of wine
func (b *Backend) LookupTaste(ctx context.Context, wine models.WineData) (wizard.TasteResult, error) {
	resp, err := b.client.WineTaste(ctx, api.WineTasteRequest{
		Name:   wine.Name,
		Origin: wine.Origin,
		Grape:  wine.Grape,
		Year:   wine.Year,
		Type:   string(wine.Type),
	})
	if err != nil {
		return wizard.TasteResult{}, err
	}
	if resp.TasteResult == nil || resp.TasteResult.TastingNote == nil {
		return wizard.TasteResult{}, fmt.Errorf("taste lookup returned no tasting note")
	}

	n := resp.TasteResult.TastingNote
	return wizard.TasteResult{
		Aroma:     n.Aroma,
		Taste:     n.Taste,
		Finish:    n.Finish,
		Sweetness: n.Sweetness,
		Acidity:   n.Acidity,
		Tannin:    n.Tannin,
		Body:      n.Body,
	}, nil
}

// SaveDiary uploads the draft and returns the server diary id
func (b *Backend) SaveDiary(ctx context.Context, d models.DiaryDraft) (int64, error) {
	w := d.Wine
	wine := api.SaveWineData{
		Name:       w.Name,
		Origin:     w.Origin,
		Grape:      w.Grape,
		Year:       w.Year,
		Alcohol:    w.Alcohol,
		Type:       string(w.Type),
		AromaNote:  w.AromaNote,
		TasteNote:  w.TasteNote,
		FinishNote: w.FinishNote,
		Sweetness:  models.ClampScale(w.Sweetness),
		Acidity:    models.ClampScale(w.Acidity),
		Tannin:     models.ClampScale(w.Tannin),
		Body:       models.ClampScale(w.Body),
	}

	created := d.CreatedAt
	if created.IsZero() {
		created = b.now()
	}
	diary := api.SaveDiaryData{
		DrinkDate:        d.DrinkDate,
		Rating:           models.ClampRating(d.Rating),
		Review:           d.Review,
		Price:            d.Price,
		PurchaseLocation: d.PurchaseLocation,
		IsPublic:         d.IsPublic,
		CreatedAt:        created.UTC().Format(time.RFC3339),
	}

	uploads := []Upload{
		{Field: "frontImage", Media: w.FrontImage},
		{Field: "backImage", Media: w.BackImage},
		{Field: "thumbnailImage", Media: d.ThumbnailImage},
		{Field: "downloadImage", Media: d.DownloadImage},
	}

	resp, err := b.client.SaveDiary(ctx, wine, diary, uploads)
	if err != nil {
		return 0, err
	}
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "save rejected"
		}
		return 0, fmt.Errorf("failed to save diary: %s", msg)
	}
	return resp.DiaryID, nil
}
