package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path"

	"github.com/iudanet/winelog/internal/models"
	"github.com/iudanet/winelog/pkg/api"
)

// Upload is an image part of a multipart request
type Upload struct {
	Field string
	Media models.Media
}

// AnalyzeWine sends the front and back label photos for analysis
func (c *Client) AnalyzeWine(ctx context.Context, front, back models.Media) (*api.WineAnalysisResponse, error) {
	var resp api.WineAnalysisResponse
	uploads := []Upload{
		{Field: "image_files", Media: front},
		{Field: "image_files", Media: back},
	}
	if err := c.doMultipart(ctx, "/api/v1/diary/wine-analysis", nil, uploads, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// WineTaste looks up the tasting profile of a wine
func (c *Client) WineTaste(ctx context.Context, req api.WineTasteRequest) (*api.WineTasteResponse, error) {
	var resp api.WineTasteResponse
	if err := c.doRequest(ctx, true, http.MethodPost, "/api/v1/diary/wine-taste", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SaveDiary persists a diary entry with its images. Uploads without data are skipped.
func (c *Client) SaveDiary(ctx context.Context, wine api.SaveWineData, diary api.SaveDiaryData, uploads []Upload) (*api.SaveDiaryResponse, error) {
	wineJSON, err := json.Marshal(wine)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal wine data: %w", err)
	}
	diaryJSON, err := json.Marshal(diary)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal diary data: %w", err)
	}

	fields := []formField{
		{name: "wine_data", value: string(wineJSON)},
		{name: "diary_data", value: string(diaryJSON)},
	}

	var resp api.SaveDiaryResponse
	if err := c.doMultipart(ctx, "/api/v1/diary/save", fields, uploads, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type formField struct {
	name  string
	value string
}

func (c *Client) doMultipart(ctx context.Context, p string, fields []formField, uploads []Upload, result any) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return fmt.Errorf("failed to write field %s: %w", f.name, err)
		}
	}

	for i, u := range uploads {
		if len(u.Media.Data) == 0 {
			continue
		}
		if err := writeFile(mw, u, i); err != nil {
			return err
		}
	}

	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+p, &body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	_, err = c.send(c.requester, req, true, result)
	return err
}

func writeFile(mw *multipart.Writer, u Upload, i int) error {
	contentType := u.Media.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(u.Media.Data)
	}

	filename := path.Base(u.Media.URL)
	if u.Media.URL == "" || filename == "." || filename == "/" {
		filename = fmt.Sprintf("%s-%d%s", u.Field, i, extension(contentType))
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, u.Field, filename))
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("failed to create part %s: %w", u.Field, err)
	}
	if _, err := part.Write(u.Media.Data); err != nil {
		return fmt.Errorf("failed to write part %s: %w", u.Field, err)
	}
	return nil
}

func extension(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
