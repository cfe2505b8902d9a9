package platform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/iudanet/winelog/internal/models"
)

var photoExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

// Native is the variant for device builds. Photos come from the camera spool
// directory, requests carry bearer tokens and no cookies.
type Native struct {
	client    *http.Client
	logger    *zap.Logger
	bell      io.Writer
	cameraDir string
}

// NewNative creates the native variant.
func NewNative(cfg Config, logger *zap.Logger) *Native {
	return &Native{
		client:    &http.Client{Timeout: httpTimeout(cfg)},
		logger:    logger,
		bell:      os.Stderr,
		cameraDir: cfg.CameraDir,
	}
}

func (n *Native) Name() string { return NameNative }

func (n *Native) HTTPClient() *http.Client { return n.client }

func (n *Native) Request(ctx context.Context, req *http.Request) (*http.Response, error) {
	return do(ctx, n.client, req)
}

// CapturePhoto returns the newest photo in the spool directory of the camera.
func (n *Native) CapturePhoto(ctx context.Context, facing Facing) (models.Media, error) {
	st, err := n.OpenStream(ctx, facing)
	if err != nil {
		return models.Media{}, err
	}
	defer st.Stop()

	m, err := st.Capture(ctx)
	if err != nil {
		return models.Media{}, err
	}
	n.logger.Debug("photo captured", zap.String("path", m.URL), zap.String("facing", string(facing)))
	return m, nil
}

// spoolDir prefers a per-camera subdirectory (back, front) when it exists.
func (n *Native) spoolDir(facing Facing) string {
	sub := filepath.Join(n.cameraDir, string(facing))
	if st, err := os.Stat(sub); err == nil && st.IsDir() {
		return sub
	}
	return n.cameraDir
}

func (n *Native) PickPhoto(ctx context.Context, path string) (models.Media, error) {
	if err := ctx.Err(); err != nil {
		return models.Media{}, err
	}
	return readPhoto(path)
}

// Haptic rings the terminal bell.
func (n *Native) Haptic(_ context.Context, style HapticStyle) error {
	pulses := 1
	if style == HapticHeavy {
		pulses = 2
	}
	_, err := io.WriteString(n.bell, strings.Repeat("\a", pulses))
	return err
}

func newestPhoto(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return "", fmt.Errorf("camera: %w", ErrPermissionDenied)
		}
		return "", fmt.Errorf("failed to read camera dir: %w", err)
	}

	var (
		newest string
		latest int64
	)
	for _, e := range entries {
		if e.IsDir() || !photoExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if mt := info.ModTime().UnixNano(); newest == "" || mt > latest {
			newest, latest = filepath.Join(dir, e.Name()), mt
		}
	}
	if newest == "" {
		return "", fmt.Errorf("no photo in %s", dir)
	}
	return newest, nil
}
