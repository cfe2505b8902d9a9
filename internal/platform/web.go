package platform

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"

	"github.com/iudanet/winelog/internal/models"
)

// Web is the variant for browser builds. The session lives in cookies,
// there is no camera and no haptics.
type Web struct {
	client *http.Client
	jar    *sessionJar
	logger *zap.Logger
}

// NewWeb creates the web variant with an empty cookie jar.
func NewWeb(cfg Config, logger *zap.Logger) (*Web, error) {
	jar, err := newJar()
	if err != nil {
		return nil, err
	}
	sj := &sessionJar{jar: jar}
	return &Web{
		client: &http.Client{Timeout: httpTimeout(cfg), Jar: sj},
		jar:    sj,
		logger: logger,
	}, nil
}

// sessionJar is a cookie jar that can be emptied while clients use it.
type sessionJar struct {
	mu  sync.RWMutex
	jar *cookiejar.Jar
}

func (j *sessionJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	j.jar.SetCookies(u, cookies)
}

func (j *sessionJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.jar.Cookies(u)
}

func (j *sessionJar) reset(jar *cookiejar.Jar) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.jar = jar
}

func newJar() (*cookiejar.Jar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return jar, nil
}

func (w *Web) Name() string { return NameWeb }

func (w *Web) HTTPClient() *http.Client { return w.client }

func (w *Web) Request(ctx context.Context, req *http.Request) (*http.Response, error) {
	return do(ctx, w.client, req)
}

func (w *Web) CapturePhoto(context.Context, Facing) (models.Media, error) {
	return models.Media{}, fmt.Errorf("camera capture: %w", ErrUnsupported)
}

func (w *Web) PickPhoto(ctx context.Context, path string) (models.Media, error) {
	if err := ctx.Err(); err != nil {
		return models.Media{}, err
	}
	return readPhoto(path)
}

func (w *Web) Haptic(context.Context, HapticStyle) error {
	return nil
}

func (w *Web) OpenStream(context.Context, Facing) (Stream, error) {
	return nil, fmt.Errorf("camera stream: %w", ErrUnsupported)
}

// ClearCookies drops the session cookies.
func (w *Web) ClearCookies() error {
	jar, err := newJar()
	if err != nil {
		return err
	}
	w.jar.reset(jar)
	w.logger.Debug("session cookies cleared")
	return nil
}
