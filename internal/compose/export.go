package compose

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"
)

// ErrThrottled is returned when exports come faster than one per second.
var ErrThrottled = errors.New("export throttled, try again in a moment")

// Exporter writes composed cards to a directory.
type Exporter struct {
	limiter *rate.Limiter
	now     func() time.Time
	dir     string
}

// NewExporter creates an exporter writing into dir.
func NewExporter(dir string) *Exporter {
	return &Exporter{
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		now:     time.Now,
		dir:     dir,
	}
}

// Export writes card as wine-card-<unix-ms>.png and returns its path.
func (e *Exporter) Export(card []byte) (string, error) {
	if len(card) == 0 {
		return "", ErrNoPhoto
	}
	if !e.limiter.Allow() {
		return "", ErrThrottled
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}
	path := filepath.Join(e.dir, fmt.Sprintf("wine-card-%d.png", e.now().UnixMilli()))
	if err := os.WriteFile(path, card, 0o644); err != nil {
		return "", fmt.Errorf("failed to write card: %w", err)
	}
	return path, nil
}
