package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/iudanet/winelog/internal/models"
	"github.com/iudanet/winelog/pkg/api"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000")

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8000/")

	assert.Equal(t, "http://localhost:8000", client.baseURL)
	assert.NotNil(t, client.httpClient)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
	assert.Equal(t, httpRequester{hc: client.httpClient}, client.requester)

	hc := &http.Client{Timeout: time.Second}
	client = NewClient("http://localhost:8000", WithHTTPClient(hc))
	assert.Same(t, hc, client.httpClient)
}

// recordingRequester counts the requests it forwards
type recordingRequester struct {
	hc    *http.Client
	paths []string
}

func (r *recordingRequester) Request(ctx context.Context, req *http.Request) (*http.Response, error) {
	r.paths = append(r.paths, req.URL.Path)
	return r.hc.Do(req.WithContext(ctx))
}

func TestClient_Requester(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/me":
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			_ = json.NewEncoder(w).Encode(api.User{ID: 7, Nickname: "somm"})
		case "/api/v1/auth/kakao/login":
			assert.Empty(t, r.Header.Get("Authorization"), "login is not authenticated")
			_ = json.NewEncoder(w).Encode(api.LoginURLResponse{LoginURL: "https://kauth.example/authorize"})
		}
	}))
	defer server.Close()

	rec := &recordingRequester{hc: server.Client()}
	client := NewClient(server.URL, WithRequester(rec))
	client.SetTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"}))

	_, err := client.LoginURL(context.Background(), "web")
	require.NoError(t, err)
	_, err = client.Me(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"/api/v1/auth/kakao/login", "/api/v1/auth/me"}, rec.paths)
}

func TestClient_TokenSourceError(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer server.Close()

	tokenErr := errors.New("session expired")
	client := NewClient(server.URL)
	client.SetTokenSource(failingTokenSource{err: tokenErr})

	_, err := client.Me(context.Background())
	require.ErrorIs(t, err, tokenErr)
	assert.Zero(t, hits, "no request without a token")
}

type failingTokenSource struct {
	err error
}

func (f failingTokenSource) Token() (*oauth2.Token, error) {
	return nil, f.err
}

func TestClient_LoginURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/auth/kakao/login", r.URL.Path)
		assert.Equal(t, "ios", r.URL.Query().Get("platform"))
		_ = json.NewEncoder(w).Encode(api.LoginURLResponse{LoginURL: "https://kauth.example/authorize?state=ios"})
	}))
	defer server.Close()

	loginURL, err := NewClient(server.URL).LoginURL(context.Background(), "ios")
	require.NoError(t, err)
	assert.Equal(t, "https://kauth.example/authorize?state=ios", loginURL)
}

func TestClient_ExchangeCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/kakao/callback", r.URL.Path)
		assert.Equal(t, "abc", r.URL.Query().Get("code"))
		assert.Equal(t, "ios", r.URL.Query().Get("state"))
		http.Redirect(w, r, "winelog://auth/callback?success=1&access_token=at&refresh_token=rt", http.StatusFound)
	}))
	defer server.Close()

	loc, err := NewClient(server.URL).ExchangeCode(context.Background(), "abc", "ios")
	require.NoError(t, err)
	assert.Equal(t, "winelog", loc.Scheme)
	assert.Equal(t, "at", loc.Query().Get("access_token"))
}

func TestClient_ExchangeCode_NoRedirect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	_, err := NewClient(server.URL).ExchangeCode(context.Background(), "abc", "")
	require.ErrorIs(t, err, ErrNoRedirect)
}

func TestClient_Refresh(t *testing.T) {
	tests := []struct {
		name        string
		cookie      string
		body        api.TokenResponse
		wantAccess  string
		wantRefresh string
		wantErr     bool
	}{
		{
			name:        "token in cookie",
			cookie:      "new-access",
			body:        api.TokenResponse{Success: true, Message: "refreshed"},
			wantAccess:  "new-access",
			wantRefresh: "rt-1",
		},
		{
			name:        "token in body",
			cookie:      "cookie-access",
			body:        api.TokenResponse{Success: true, AccessToken: "body-access", RefreshToken: "rt-2"},
			wantAccess:  "body-access",
			wantRefresh: "rt-2",
		},
		{
			name:    "no token",
			body:    api.TokenResponse{Success: true},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "rt-1", r.URL.Query().Get("refresh_token"))
				if tt.cookie != "" {
					http.SetCookie(w, &http.Cookie{Name: "access_token", Value: tt.cookie})
				}
				_ = json.NewEncoder(w).Encode(tt.body)
			}))
			defer server.Close()

			tokens, err := NewClient(server.URL).Refresh(context.Background(), "rt-1")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAccess, tokens.AccessToken)
			assert.Equal(t, tt.wantRefresh, tokens.RefreshToken)
		})
	}
}

func TestClient_TokenSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		c, err := r.Cookie("access_token")
		require.NoError(t, err)
		assert.Equal(t, "tok", c.Value)
		_ = json.NewEncoder(w).Encode(api.User{ID: 7, Nickname: "somm"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.SetTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"}))

	user, err := client.Me(context.Background())
	require.NoError(t, err)
	assert.True(t, user.LoggedIn())
	assert.Equal(t, int64(7), user.ID)
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantDetail string
		status     int
	}{
		{name: "string detail", status: http.StatusUnauthorized, body: `{"detail":"Not authenticated"}`, wantDetail: "Not authenticated"},
		{name: "validation list", status: http.StatusUnprocessableEntity, body: `{"detail":[{"msg":"field required"},{"msg":"bad type"}]}`, wantDetail: "field required; bad type"},
		{name: "plain body", status: http.StatusBadGateway, body: "upstream down", wantDetail: "upstream down"},
		{name: "empty body", status: http.StatusInternalServerError, body: "", wantDetail: "500 Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer server.Close()

			_, err := NewClient(server.URL).Me(context.Background())
			require.Error(t, err)

			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantDetail, apiErr.Detail)
			assert.Equal(t, tt.status == http.StatusUnauthorized, IsUnauthorized(err))
		})
	}
}

func TestClient_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "{not json")
	}))
	defer server.Close()

	_, err := NewClient(server.URL).Me(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode response")
}

func TestClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := NewClient(server.URL).Me(ctx)
	require.Error(t, err)
}

func TestBackend_AnalyzeLabels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/diary/wine-analysis", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		files := r.MultipartForm.File["image_files"]
		require.Len(t, files, 2)
		assert.Equal(t, "front.png", files[0].Filename)
		assert.Equal(t, "image/png", files[0].Header.Get("Content-Type"))

		_, _ = io.WriteString(w, `{
			"message": "ok",
			"images_received": 2,
			"analysis_result": {
				"success": true,
				"analysis": {"wine_analysis": {"name": "Barolo", "origin": "Italy", "type": "Red", "alcohol": "14%"}}
			}
		}`)
	}))
	defer server.Close()

	b := NewBackend(NewClient(server.URL))
	front := models.Media{URL: "/photos/front.png", ContentType: "image/png", Data: pngHeader}
	back := models.Media{URL: "/photos/back.png", Data: pngHeader}

	r, err := b.AnalyzeLabels(context.Background(), front, back)
	require.NoError(t, err)
	assert.Equal(t, "Barolo", r.Name)
	assert.Equal(t, "Italy", r.Origin)
	assert.Equal(t, models.WineType("Red"), r.Type)
	assert.Equal(t, "14%", r.Alcohol)
}

func TestBackend_AnalyzeLabels_Unsuccessful(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"message":"ok","images_received":2,"analysis_result":{"success":false}}`)
	}))
	defer server.Close()

	m := models.Media{Data: pngHeader}
	_, err := NewBackend(NewClient(server.URL)).AnalyzeLabels(context.Background(), m, m)
	require.ErrorIs(t, err, ErrAnalysisFailed)
}

func TestBackend_LookupTaste(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/diary/wine-taste", r.URL.Path)
		var req api.WineTasteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Barolo", req.Name)
		assert.Equal(t, "red", req.Type)

		_, _ = io.WriteString(w, `{"message":"ok","taste_result":{"tastingNote":{
			"aroma":"rose","taste":"tar","finish":"long","sweetness":1,"acidity":4,"tannin":5,"body":5}}}`)
	}))
	defer server.Close()

	r, err := NewBackend(NewClient(server.URL)).LookupTaste(context.Background(),
		models.WineData{Name: "Barolo", Type: models.WineTypeRed})
	require.NoError(t, err)
	assert.Equal(t, "rose", r.Aroma)
	assert.Equal(t, 5, r.Tannin)
	assert.Equal(t, 4, r.Acidity)
}

func TestBackend_SaveDiary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/diary/save", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		var wine api.SaveWineData
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("wine_data")), &wine))
		assert.Equal(t, "Barolo", wine.Name)
		assert.Equal(t, 5, wine.Body, "scale clamped")

		var diary api.SaveDiaryData
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("diary_data")), &diary))
		assert.Equal(t, "2026-10-01", diary.DrinkDate)
		assert.Equal(t, "45000", diary.Price)
		assert.Equal(t, "2026-09-30T12:00:00Z", diary.CreatedAt)

		assert.Len(t, r.MultipartForm.File["frontImage"], 1)
		assert.Len(t, r.MultipartForm.File["downloadImage"], 1)
		assert.Empty(t, r.MultipartForm.File["backImage"], "media without bytes is skipped")

		_ = json.NewEncoder(w).Encode(api.SaveDiaryResponse{Success: true, DiaryID: 42})
	}))
	defer server.Close()

	d := models.NewDiaryDraft(time.Date(2026, 9, 30, 12, 0, 0, 0, time.UTC))
	d.Wine.Name = "Barolo"
	d.Wine.Body = 9
	d.Wine.FrontImage = models.Media{URL: "front.png", Data: pngHeader}
	d.Wine.BackImage = models.Media{URL: "back.png"}
	d.DownloadImage = models.Media{ContentType: "image/png", Data: pngHeader}
	d.DrinkDate = "2026-10-01"
	d.Price = "45000"
	d.PurchaseLocation = "wine shop"

	id, err := NewBackend(NewClient(server.URL)).SaveDiary(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestBackend_SaveDiary_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(api.SaveDiaryResponse{Success: false, Message: "duplicate"})
	}))
	defer server.Close()

	_, err := NewBackend(NewClient(server.URL)).SaveDiary(context.Background(), models.NewDiaryDraft(time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}
