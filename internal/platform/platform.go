// Package platform abstracts the device features that differ between the
// native and web builds of the client.
package platform

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/iudanet/winelog/internal/models"
	"github.com/iudanet/winelog/internal/validation"
)

var (
	// ErrUnsupported is returned for features the variant does not provide.
	ErrUnsupported = errors.New("not supported on this platform")
	// ErrPermissionDenied is returned when the OS refuses access to a device resource.
	ErrPermissionDenied = errors.New("permission denied")
)

// Facing selects a camera.
type Facing string

const (
	FacingBack  Facing = "back"
	FacingFront Facing = "front"
)

// HapticStyle is the intensity of a haptic feedback.
type HapticStyle string

const (
	HapticLight  HapticStyle = "light"
	HapticMedium HapticStyle = "medium"
	HapticHeavy  HapticStyle = "heavy"
)

// Variant names
const (
	NameNative = "native"
	NameWeb    = "web"
)

// Capabilities is the set of platform features used by the client.
type Capabilities interface {
	// Request sends an HTTP request with the platform's session transport.
	Request(ctx context.Context, req *http.Request) (*http.Response, error)
	// CapturePhoto takes a picture with the given camera.
	CapturePhoto(ctx context.Context, facing Facing) (models.Media, error)
	// PickPhoto loads a picture chosen by the user.
	PickPhoto(ctx context.Context, path string) (models.Media, error)
	// Haptic plays a haptic feedback.
	Haptic(ctx context.Context, style HapticStyle) error
	// Name returns the variant name.
	Name() string
	// HTTPClient returns the client used by Request, for requests that need
	// their own redirect policy.
	HTTPClient() *http.Client
}

// Config configures a platform variant.
type Config struct {
	CameraDir string        // CameraDir camera spool directory of the native variant
	Timeout   time.Duration // Timeout HTTP request timeout
}

// New selects the variant by name.
func New(name string, cfg Config, logger *zap.Logger) (Capabilities, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch name {
	case NameNative, "ios", "android":
		return NewNative(cfg, logger), nil
	case NameWeb:
		return NewWeb(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown platform %q", name)
	}
}

func httpTimeout(cfg Config) time.Duration {
	if cfg.Timeout <= 0 {
		return 30 * time.Second
	}
	return cfg.Timeout
}

// readPhoto loads and validates an image file.
func readPhoto(path string) (models.Media, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return models.Media{}, fmt.Errorf("read %s: %w", path, ErrPermissionDenied)
		}
		return models.Media{}, fmt.Errorf("failed to read photo: %w", err)
	}

	ct, err := validation.ValidateImage(data)
	if err != nil {
		return models.Media{}, fmt.Errorf("invalid photo %s: %w", path, err)
	}
	return models.Media{URL: path, ContentType: ct, Data: data}, nil
}

func do(ctx context.Context, c *http.Client, req *http.Request) (*http.Response, error) {
	return c.Do(req.WithContext(ctx))
}
