package compose

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iudanet/winelog/internal/models"
	"github.com/iudanet/winelog/internal/schedule"
)

// Phase is the composition state of the card step.
type Phase int

const (
	NoPhoto Phase = iota
	PhotoCaptured
	Composed
)

func (p Phase) String() string {
	switch p {
	case NoPhoto:
		return "no-photo"
	case PhotoCaptured:
		return "photo-captured"
	case Composed:
		return "composed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

const (
	DefaultDebounce = 500 * time.Millisecond
	MinDebounce     = 300 * time.Millisecond
	MaxDebounce     = 500 * time.Millisecond
)

// ClampDebounce forces d into [MinDebounce, MaxDebounce]; zero selects the default.
func ClampDebounce(d time.Duration) time.Duration {
	if d == 0 {
		return DefaultDebounce
	}
	return min(max(d, MinDebounce), MaxDebounce)
}

// CardRenderer renders a card from a draft.
type CardRenderer interface {
	Render(d models.DiaryDraft, layout Layout) ([]byte, error)
}

// Composer re-renders the card whenever its inputs change, debounced.
// A failed render is logged and leaves the previous output untouched.
type Composer struct {
	mu         sync.Mutex
	renderer   CardRenderer
	debouncer  *schedule.Debouncer
	logger     *zap.Logger
	onComposed func(models.Media)
	photo      models.Media
	output     []byte
	lastKey    string
	delay      time.Duration
	photoGen   uint64
	phase      Phase
}

// NewComposer creates a composer. onComposed, when set, receives every new card.
func NewComposer(r CardRenderer, delay time.Duration, logger *zap.Logger, onComposed func(models.Media)) *Composer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Composer{
		renderer:   r,
		debouncer:  schedule.NewDebouncer(),
		logger:     logger,
		onComposed: onComposed,
		delay:      ClampDebounce(delay),
	}
}

// Phase returns the current composition state.
func (c *Composer) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Output returns the last composed card, if any.
func (c *Composer) Output() ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.output == nil {
		return nil, false
	}
	return append([]byte(nil), c.output...), true
}

// SetPhoto sets the base photo. A retake discards the composed card.
func (c *Composer) SetPhoto(m models.Media) {
	c.debouncer.Cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.photo = m.Clone()
	c.photoGen++
	c.output = nil
	c.lastKey = ""
	if m.Present() {
		c.phase = PhotoCaptured
	} else {
		c.phase = NoPhoto
	}
}

// Request schedules a render of draft on the current photo.
// Requests whose inputs match the last scheduled render are ignored until
// that render fails.
func (c *Composer) Request(draft models.DiaryDraft, layout Layout) error {
	c.mu.Lock()
	if c.phase == NoPhoto {
		c.mu.Unlock()
		return ErrNoPhoto
	}
	key := inputKey(draft, layout, c.photoGen)
	if key == c.lastKey {
		c.mu.Unlock()
		return nil
	}
	c.lastKey = key
	draft.ThumbnailImage = c.photo
	gen := c.photoGen
	c.mu.Unlock()

	c.debouncer.Schedule(func() { c.render(draft, layout, gen, key) }, c.delay)
	return nil
}

// Flush renders a pending request immediately and waits for a render in progress.
func (c *Composer) Flush() {
	c.debouncer.Flush()
}

// Close stops the composer. Pending renders are dropped.
func (c *Composer) Close() {
	c.debouncer.Stop()
}

func (c *Composer) render(draft models.DiaryDraft, layout Layout, gen uint64, key string) {
	card, err := c.renderer.Render(draft, layout)
	if err != nil {
		c.logger.Warn("card composition failed", zap.String("layout", layout.Name), zap.Error(err))
		c.mu.Lock()
		// the same inputs may be requested again
		if c.lastKey == key {
			c.lastKey = ""
		}
		c.mu.Unlock()
		return
	}

	c.mu.Lock()
	if gen != c.photoGen {
		// photo was retaken while rendering
		c.mu.Unlock()
		return
	}
	c.output = card
	c.phase = Composed
	c.mu.Unlock()

	c.logger.Debug("card composed", zap.String("layout", layout.Name), zap.Int("bytes", len(card)))
	if c.onComposed != nil {
		c.onComposed(models.Media{ContentType: "image/png", Data: card})
	}
}

func inputKey(d models.DiaryDraft, l Layout, gen uint64) string {
	w := d.Wine
	return fmt.Sprintf("%d|%s|%s|%s|%d|%d|%d|%d",
		gen, l.Name, w.Name, d.DateStamp(time.Now()), w.Body, w.Tannin, w.Acidity, w.Sweetness)
}
