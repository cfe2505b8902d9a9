package compose

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // thumbnail decoding
	"image/png"
	"strings"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	_ "golang.org/x/image/webp" // thumbnail decoding

	"github.com/iudanet/winelog/internal/models"
)

// ErrNoPhoto is returned when the draft has no thumbnail to compose on.
var ErrNoPhoto = errors.New("no photo to compose")

const (
	DefaultWidth  = 360
	DefaultHeight = 480
	MinScale      = 2

	placeholderName = "Wine Name"
)

var (
	colorPanel  = color.NRGBA{R: 0, G: 0, B: 0, A: 150}
	colorText   = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	colorTrack  = color.NRGBA{R: 255, G: 255, B: 255, A: 140}
	colorMarker = color.NRGBA{R: 0x8b, G: 0x1a, B: 0x2b, A: 255}
)

// Renderer draws the card. The zero value is not usable, see NewRenderer.
type Renderer struct {
	face   font.Face
	now    func() time.Time
	width  int
	height int
	scale  int
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithSize sets the display size of the card in points.
func WithSize(width, height int) RendererOption {
	return func(r *Renderer) {
		if width > 0 && height > 0 {
			r.width, r.height = width, height
		}
	}
}

// WithScale sets the pixel density. Values below MinScale are raised to MinScale.
func WithScale(scale int) RendererOption {
	return func(r *Renderer) {
		r.scale = max(scale, MinScale)
	}
}

// WithClock overrides the clock used for undated drafts.
func WithClock(now func() time.Time) RendererOption {
	return func(r *Renderer) {
		r.now = now
	}
}

// NewRenderer creates a renderer with the default size at MinScale.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{
		face:   basicfont.Face7x13,
		now:    time.Now,
		width:  DefaultWidth,
		height: DefaultHeight,
		scale:  MinScale,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Size returns the pixel size of rendered cards.
func (r *Renderer) Size() (int, int) {
	return r.width * r.scale, r.height * r.scale
}

// Render composes the thumbnail of d with its name, date and tasting profile
// and returns the card as PNG.
func (r *Renderer) Render(d models.DiaryDraft, layout Layout) ([]byte, error) {
	if len(d.ThumbnailImage.Data) == 0 {
		return nil, ErrNoPhoto
	}
	photo, _, err := image.Decode(bytes.NewReader(d.ThumbnailImage.Data))
	if err != nil {
		return nil, fmt.Errorf("decode photo: %w", err)
	}

	w, h := r.Size()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), photo, coverRect(photo.Bounds(), w, h), draw.Src, nil)

	g := r.geometry(layout, len(Axes))

	fillRect(dst, g.date, colorPanel)
	r.drawText(dst, d.DateStamp(r.now()), g.dateText)

	fillRect(dst, g.block, colorPanel)
	r.drawText(dst, r.fitName(d.Wine.Name), g.name)

	for i, axis := range Axes {
		t := g.tracks[i]
		r.drawText(dst, axis.Label, t.label)
		fillRect(dst, image.Rect(t.x0, t.y-r.scale/2, t.x1, t.y+r.scale/2+1), colorTrack)
		for k := range 5 {
			x := t.x0 + k*(t.x1-t.x0)/4
			fillRect(dst, image.Rect(x-r.scale/2, t.y-2*r.scale, x+r.scale/2+1, t.y+2*r.scale), colorTrack)
		}
		fillCircle(dst, t.markerX(axis.Value(d.Wine)), t.y, 4*r.scale, colorMarker)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode card: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) fitName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return placeholderName
	}
	maxRunes := (blockWidth - 2*blockPad) / font.MeasureString(r.face, "M").Ceil()
	runes := []rune(name)
	if len(runes) > maxRunes {
		return string(runes[:maxRunes-3]) + "..."
	}
	return name
}

// drawText renders s at 1x and scales it up nearest-neighbour so bitmap glyphs stay crisp.
func (r *Renderer) drawText(dst *image.RGBA, s string, at image.Point) {
	m := r.face.Metrics()
	tw := font.MeasureString(r.face, s).Ceil()
	th := m.Height.Ceil()
	if tw == 0 {
		return
	}

	src := image.NewRGBA(image.Rect(0, 0, tw, th))
	d := font.Drawer{
		Dst:  src,
		Src:  image.NewUniform(colorText),
		Face: r.face,
		Dot:  fixed.P(0, m.Ascent.Ceil()),
	}
	d.DrawString(s)

	target := image.Rect(at.X, at.Y, at.X+tw*r.scale, at.Y+th*r.scale)
	draw.NearestNeighbor.Scale(dst, target, src, src.Bounds(), draw.Over, nil)
}

// coverRect crops src to the aspect ratio of w x h, centred.
func coverRect(src image.Rectangle, w, h int) image.Rectangle {
	sw, sh := src.Dx(), src.Dy()
	if sw*h > sh*w {
		cw := sh * w / h
		x := src.Min.X + (sw-cw)/2
		return image.Rect(x, src.Min.Y, x+cw, src.Max.Y)
	}
	ch := sw * h / w
	y := src.Min.Y + (sh-ch)/2
	return image.Rect(src.Min.X, y, src.Max.X, y+ch)
}

func fillRect(dst *image.RGBA, r image.Rectangle, c color.Color) {
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Over)
}

func fillCircle(dst *image.RGBA, cx, cy, radius int, c color.Color) {
	for y := cy - radius; y <= cy+radius; y++ {
		for x := cx - radius; x <= cx+radius; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= radius*radius {
				dst.Set(x, y, c)
			}
		}
	}
}
