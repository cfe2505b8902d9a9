package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/iudanet/winelog/internal/models"
)

var (
	// ErrIncomplete is returned by Save when price, purchase location or drink date is empty.
	ErrIncomplete = errors.New("price, purchase location and drink date are required")
	// ErrSaveInProgress is returned by Save while another save is running.
	ErrSaveInProgress = errors.New("save already in progress")
)

// Backend is the diary backend used by the wizard.
type Backend interface {
	AnalyzeLabels(ctx context.Context, front, back models.Media) (AnalysisResult, error)
	LookupTaste(ctx context.Context, wine models.WineData) (TasteResult, error)
	SaveDiary(ctx context.Context, draft models.DiaryDraft) (int64, error)
}

// Notifier shows a blocking alert to the user.
type Notifier interface {
	Alert(msg string)
}

// Side selects a label image.
type Side int

const (
	Front Side = iota
	Back
)

// Controller runs the wizard against the backend.
type Controller struct {
	state    *State
	backend  Backend
	notifier Notifier
	logger   *zap.Logger
	group    singleflight.Group
	wg       sync.WaitGroup
	tasteMu  sync.Mutex
	tasting  bool
}

// NewController creates a controller for state.
func NewController(state *State, backend Backend, notifier Notifier, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		state:    state,
		backend:  backend,
		notifier: notifier,
		logger:   logger,
	}
}

// State returns the wizard state driven by the controller.
func (c *Controller) State() *State {
	return c.state
}

// SetLabel stores one label image and starts the analysis once both labels are present.
func (c *Controller) SetLabel(ctx context.Context, side Side, m models.Media) {
	switch side {
	case Front:
		c.state.UpdateWine(WinePatch{FrontImage: &m})
	case Back:
		c.state.UpdateWine(WinePatch{BackImage: &m})
	}
	c.maybeAnalyze(ctx)
}

// SetLabels stores both label images in one update.
func (c *Controller) SetLabels(ctx context.Context, front, back models.Media) {
	c.state.UpdateWine(WinePatch{FrontImage: &front, BackImage: &back})
	c.maybeAnalyze(ctx)
}

// SetManualEntry switches entry mode.
func (c *Controller) SetManualEntry(on bool) {
	c.state.SetManualEntry(on)
}

func (c *Controller) maybeAnalyze(ctx context.Context) {
	pair, ok := c.state.ClaimAnalysis()
	if !ok {
		return
	}
	snap := c.state.Snapshot()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		v, err, _ := c.group.Do("analysis:"+pair.Key, func() (any, error) {
			return c.backend.AnalyzeLabels(ctx, pair.Front, pair.Back)
		})
		if err != nil {
			c.logger.Warn("label analysis failed", zap.Error(err))
			c.state.FailAnalysis()
			c.alert(fmt.Sprintf("Label analysis failed: %v", err))
			return
		}

		r := normalizeAnalysis(v.(AnalysisResult))
		c.state.ApplyAnalysis(snap, r)
		c.logger.Debug("label analysis applied", zap.String("name", r.Name))
	}()
}

func normalizeAnalysis(r AnalysisResult) AnalysisResult {
	r.Type = models.ParseWineType(string(r.Type))
	r.Alcohol = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(r.Alcohol), "%"))
	return r
}

// LookupTaste fetches the tasting profile when the wine name is set and all notes
// are still empty. It reports whether a lookup was started. Failures are only logged.
func (c *Controller) LookupTaste(ctx context.Context) bool {
	wine := c.state.Draft().Wine
	if strings.TrimSpace(wine.Name) == "" || wine.HasTastingNotes() {
		return false
	}

	c.tasteMu.Lock()
	if c.tasting {
		c.tasteMu.Unlock()
		return false
	}
	c.tasting = true
	c.tasteMu.Unlock()

	snap := c.state.Snapshot()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer func() {
			c.tasteMu.Lock()
			c.tasting = false
			c.tasteMu.Unlock()
		}()

		v, err, _ := c.group.Do("taste:"+wine.Name, func() (any, error) {
			return c.backend.LookupTaste(ctx, wine)
		})
		if err != nil {
			c.logger.Warn("taste lookup failed", zap.String("name", wine.Name), zap.Error(err))
			return
		}
		c.state.ApplyTaste(snap, v.(TasteResult))
	}()
	return true
}

// Save submits the draft. It returns the server id of the diary entry.
func (c *Controller) Save(ctx context.Context) (int64, error) {
	if !c.state.CanSave() {
		return 0, ErrIncomplete
	}
	if !c.state.StartSaving() {
		return 0, ErrSaveInProgress
	}
	defer c.state.FinishSaving()

	id, err := c.backend.SaveDiary(ctx, c.state.Draft())
	if err != nil {
		c.logger.Error("failed to save diary", zap.Error(err))
		c.alert(fmt.Sprintf("Failed to save the diary: %v", err))
		return 0, fmt.Errorf("save diary: %w", err)
	}

	c.logger.Info("diary saved", zap.Int64("diary_id", id))
	return id, nil
}

// Wait blocks until all background requests have landed.
func (c *Controller) Wait() {
	c.wg.Wait()
}

func (c *Controller) alert(msg string) {
	if c.notifier != nil {
		c.notifier.Alert(msg)
	}
}
