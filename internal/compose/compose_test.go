package compose

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iudanet/winelog/internal/models"
)

func testPhoto(t *testing.T, w, h int) models.Media {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: 200, G: 200, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return models.Media{ContentType: "image/png", Data: buf.Bytes()}
}

func testDraft(t *testing.T) models.DiaryDraft {
	d := models.NewDiaryDraft(time.Date(2024, 5, 17, 12, 0, 0, 0, time.UTC))
	d.Wine.Name = "Barolo"
	d.Wine.Body = 5
	d.Wine.Tannin = 4
	d.Wine.Acidity = 2
	d.Wine.Sweetness = 1
	d.ThumbnailImage = testPhoto(t, 60, 80)
	return d
}

func TestMarkerOffset(t *testing.T) {
	tests := []struct {
		in   int
		want float64
	}{
		{in: -2, want: 0},
		{in: 1, want: 0},
		{in: 2, want: 0.25},
		{in: 3, want: 0.5},
		{in: 4, want: 0.75},
		{in: 5, want: 1},
		{in: 9, want: 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MarkerOffset(tt.in), "value %d", tt.in)
	}
}

func TestParseLayout(t *testing.T) {
	l, err := ParseLayout("")
	require.NoError(t, err)
	assert.Equal(t, DefaultLayout, l)

	for _, want := range Layouts {
		got, err := ParseLayout(want.Name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.NotEqual(t, got.Date, got.Block, "date and block use distinct corners")
	}

	_, err = ParseLayout("center")
	assert.Error(t, err)
}

func TestRenderer_Render(t *testing.T) {
	r := NewRenderer(WithScale(1))
	w, h := r.Size()
	assert.Equal(t, DefaultWidth*MinScale, w, "scale never drops below 2")
	assert.Equal(t, DefaultHeight*MinScale, h)

	card, err := r.Render(testDraft(t), DefaultLayout)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(card))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, w, h), img.Bounds())
}

func TestRenderer_MarkerPositions(t *testing.T) {
	r := NewRenderer(WithScale(3))
	d := testDraft(t)

	for _, layout := range Layouts {
		t.Run(layout.Name, func(t *testing.T) {
			card, err := r.Render(d, layout)
			require.NoError(t, err)
			img, err := png.Decode(bytes.NewReader(card))
			require.NoError(t, err)

			g := r.geometry(layout, len(Axes))
			for i, axis := range Axes {
				tr := g.tracks[i]
				x := tr.markerX(axis.Value(d.Wine))
				got := color.NRGBAModel.Convert(img.At(x, tr.y)).(color.NRGBA)
				assert.Equal(t, colorMarker, got, "%s marker", axis.Label)
			}
		})
	}
}

func TestTrack_MarkerX(t *testing.T) {
	tr := track{x0: 100, x1: 200}
	assert.Equal(t, 100, tr.markerX(1))
	assert.Equal(t, 125, tr.markerX(2))
	assert.Equal(t, 150, tr.markerX(3))
	assert.Equal(t, 200, tr.markerX(5))
	assert.Equal(t, 200, tr.markerX(7))
}

func TestRenderer_Errors(t *testing.T) {
	r := NewRenderer()

	d := testDraft(t)
	d.ThumbnailImage = models.Media{}
	_, err := r.Render(d, DefaultLayout)
	require.ErrorIs(t, err, ErrNoPhoto)

	d.ThumbnailImage = models.Media{Data: []byte("not an image")}
	_, err = r.Render(d, DefaultLayout)
	require.Error(t, err)
}

func TestRenderer_FitName(t *testing.T) {
	r := NewRenderer()
	assert.Equal(t, placeholderName, r.fitName("  "))
	assert.Equal(t, "Barolo", r.fitName("Barolo"))

	long := r.fitName("Chateau de la Tres Longue Appellation Controlee")
	assert.True(t, len(long) < 40)
	assert.Regexp(t, `\.\.\.$`, long)
}

func TestCoverRect(t *testing.T) {
	// wide source is cropped horizontally
	assert.Equal(t, image.Rect(25, 0, 75, 40), coverRect(image.Rect(0, 0, 100, 40), 30, 24))
	// tall source is cropped vertically
	assert.Equal(t, image.Rect(0, 30, 30, 70), coverRect(image.Rect(0, 0, 30, 100), 30, 40))
}

// fakeRenderer lets tests control render results
type fakeRenderer struct {
	mu    sync.Mutex
	calls int
	err   error
	out   []byte
}

func (f *fakeRenderer) Render(d models.DiaryDraft, layout Layout) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]byte(nil), f.out...), nil
}

func TestComposer_StateMachine(t *testing.T) {
	fr := &fakeRenderer{out: []byte("card-1")}
	var published []models.Media
	c := NewComposer(fr, 0, zap.NewNop(), func(m models.Media) { published = append(published, m) })
	defer c.Close()

	d := testDraft(t)
	assert.Equal(t, NoPhoto, c.Phase())
	require.ErrorIs(t, c.Request(d, DefaultLayout), ErrNoPhoto)

	c.SetPhoto(d.ThumbnailImage)
	assert.Equal(t, PhotoCaptured, c.Phase())

	require.NoError(t, c.Request(d, DefaultLayout))
	c.Flush()
	assert.Equal(t, Composed, c.Phase())
	out, ok := c.Output()
	require.True(t, ok)
	assert.Equal(t, []byte("card-1"), out)
	require.Len(t, published, 1)
	assert.Equal(t, "image/png", published[0].ContentType)

	// same inputs do not render again
	require.NoError(t, c.Request(d, DefaultLayout))
	c.Flush()
	assert.Equal(t, 1, fr.calls)

	// retake discards the card
	c.SetPhoto(testPhoto(t, 10, 10))
	assert.Equal(t, PhotoCaptured, c.Phase())
	_, ok = c.Output()
	assert.False(t, ok)
}

func TestComposer_FailureKeepsPreviousOutput(t *testing.T) {
	fr := &fakeRenderer{out: []byte("good")}
	c := NewComposer(fr, 0, zap.NewNop(), nil)
	defer c.Close()

	d := testDraft(t)
	c.SetPhoto(d.ThumbnailImage)
	require.NoError(t, c.Request(d, DefaultLayout))
	c.Flush()

	fr.mu.Lock()
	fr.err = errors.New("draw failed")
	fr.mu.Unlock()

	d.Wine.Body = 2
	require.NoError(t, c.Request(d, DefaultLayout))
	c.Flush()

	out, ok := c.Output()
	require.True(t, ok)
	assert.Equal(t, []byte("good"), out)
	assert.Equal(t, Composed, c.Phase())
}

func TestComposer_RetryAfterFailure(t *testing.T) {
	fr := &fakeRenderer{err: errors.New("draw failed"), out: []byte("card")}
	var published int
	c := NewComposer(fr, 0, zap.NewNop(), func(models.Media) { published++ })
	defer c.Close()

	d := testDraft(t)
	c.SetPhoto(d.ThumbnailImage)
	require.NoError(t, c.Request(d, DefaultLayout))
	c.Flush()
	assert.Equal(t, PhotoCaptured, c.Phase())

	fr.mu.Lock()
	fr.err = nil
	fr.mu.Unlock()

	// same inputs, re-triggered by the user
	require.NoError(t, c.Request(d, DefaultLayout))
	c.Flush()

	assert.Equal(t, 2, fr.calls)
	assert.Equal(t, Composed, c.Phase())
	assert.Equal(t, 1, published)
	out, ok := c.Output()
	require.True(t, ok)
	assert.Equal(t, []byte("card"), out)
}

func TestComposer_FlushWaitsForTimerRender(t *testing.T) {
	fr := &slowRenderer{started: make(chan struct{}), out: []byte("late")}
	c := NewComposer(fr, MinDebounce, zap.NewNop(), nil)
	defer c.Close()

	d := testDraft(t)
	c.SetPhoto(d.ThumbnailImage)
	require.NoError(t, c.Request(d, DefaultLayout))

	select {
	case <-fr.started:
	case <-time.After(2 * time.Second):
		t.Fatal("render did not start")
	}
	c.Flush()

	out, ok := c.Output()
	require.True(t, ok, "flush returns once the running render is done")
	assert.Equal(t, []byte("late"), out)
}

type slowRenderer struct {
	started chan struct{}
	out     []byte
}

func (s *slowRenderer) Render(models.DiaryDraft, Layout) ([]byte, error) {
	close(s.started)
	time.Sleep(50 * time.Millisecond)
	return s.out, nil
}

func TestComposer_DebouncesBurst(t *testing.T) {
	fr := &fakeRenderer{out: []byte("card")}
	done := make(chan struct{}, 4)
	c := NewComposer(fr, MinDebounce, zap.NewNop(), func(models.Media) { done <- struct{}{} })
	defer c.Close()

	d := testDraft(t)
	c.SetPhoto(d.ThumbnailImage)
	for v := 1; v <= 5; v++ {
		d.Wine.Acidity = v
		require.NoError(t, c.Request(d, DefaultLayout))
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("render did not run")
	}
	assert.Equal(t, 1, fr.calls)
}

func TestClampDebounce(t *testing.T) {
	assert.Equal(t, DefaultDebounce, ClampDebounce(0))
	assert.Equal(t, MinDebounce, ClampDebounce(time.Millisecond))
	assert.Equal(t, 400*time.Millisecond, ClampDebounce(400*time.Millisecond))
	assert.Equal(t, MaxDebounce, ClampDebounce(time.Second))
}

func TestExporter_Export(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cards")
	e := NewExporter(dir)
	e.now = func() time.Time { return time.UnixMilli(1715947200123) }

	path, err := e.Export([]byte("png"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "wine-card-1715947200123.png"), path)
	assert.Regexp(t, regexp.MustCompile(`wine-card-\d+\.png$`), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)

	_, err = e.Export([]byte("png"))
	require.ErrorIs(t, err, ErrThrottled)

	_, err = NewExporter(dir).Export(nil)
	require.ErrorIs(t, err, ErrNoPhoto)
}
