package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iudanet/winelog/internal/client/api"
	"github.com/iudanet/winelog/internal/client/iocli"
	"github.com/iudanet/winelog/internal/client/storage"
	"github.com/iudanet/winelog/internal/compose"
	"github.com/iudanet/winelog/internal/models"
	"github.com/iudanet/winelog/internal/platform"
	"github.com/iudanet/winelog/internal/wizard"
)

// preset holds photos given on the command line
type preset struct {
	front  string
	back   string
	photo  string
	manual bool
}

var stepTitles = map[int]string{
	wizard.StepLabels:   "Wine labels",
	wizard.StepTasting:  "Tasting notes",
	wizard.StepPhoto:    "Bottle photo",
	wizard.StepCard:     "Wine card",
	wizard.StepReview:   "Rating and review",
	wizard.StepPurchase: "Purchase",
}

func newNewCmd(io iocli.IO, opts *Options) *cobra.Command {
	var p preset

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Record a wine in six steps",
		Long: `Walks through the diary wizard:

  1. label photos, the backend reads the wine identity from them
  2. tasting notes and the sweetness, acidity, tannin and body scale
  3. bottle photo
  4. shareable card composed from the photo
  5. rating, review and visibility
  6. price, purchase location and drink date, then save

The draft is saved locally after every step. Quit with q and pick it up later
with 'winelog drafts resume'.`,
		Example: `  # Start with both label photos
  winelog new --front front.jpg --back back.jpg

  # Enter everything by hand
  winelog new --manual`,
		Args: cobra.NoArgs,
		RunE: runE(io, opts, func(ctx context.Context, c *Cli, _ []string) error {
			state := wizard.NewState(models.NewDiaryDraft(c.now()), wizard.TotalSteps)
			return c.runWizard(ctx, state, p)
		}),
	}

	f := cmd.Flags()
	f.StringVar(&p.front, "front", "", "front label photo")
	f.StringVar(&p.back, "back", "", "back label photo")
	f.StringVar(&p.photo, "photo", "", "bottle photo for the card")
	f.BoolVar(&p.manual, "manual", false, "enter the wine identity by hand")
	return cmd
}

// wizardRun is one interactive pass over a draft
type wizardRun struct {
	c        *Cli
	state    *wizard.State
	ctrl     *wizard.Controller
	composer *compose.Composer
	camera   *platform.StreamSession
	layout   atomic.Pointer[compose.Layout]
	cardPath string
}

func (c *Cli) runWizard(ctx context.Context, state *wizard.State, p preset) error {
	if !c.session.LoggedIn() {
		c.io.Println("⚠️  Not logged in: label analysis and saving need 'winelog login'.")
	}

	r := &wizardRun{c: c, state: state}
	r.ctrl = wizard.NewController(state, api.NewBackend(c.api), &ioNotifier{
		io:     c.io,
		caps:   c.caps,
		logger: c.logger,
	}, c.logger.Named("wizard"))

	renderer := compose.NewRenderer(compose.WithClock(c.now))
	r.composer = compose.NewComposer(renderer, c.cfg.Debounce, c.logger.Named("compose"), func(m models.Media) {
		state.Update(wizard.DiaryPatch{DownloadImage: &m})
	})
	defer r.composer.Close()

	layout := c.savedLayout(ctx)
	r.layout.Store(&layout)

	if cam, ok := c.caps.(platform.Camera); ok {
		r.camera = platform.NewStreamSession(cam)
		defer r.camera.Release()
	}

	if thumb := state.Draft().ThumbnailImage; thumb.Present() {
		r.composer.SetPhoto(thumb)
	}

	cancel := state.Subscribe(func(d models.DiaryDraft) {
		if state.Step() != wizard.StepCard {
			return
		}
		if err := r.composer.Request(d, *r.layout.Load()); err != nil && !errors.Is(err, compose.ErrNoPhoto) {
			c.logger.Warn("failed to schedule card", zap.Error(err))
		}
	})
	defer cancel()
	// background requests land before the deferred closes run
	defer r.ctrl.Wait()

	if err := r.applyPreset(ctx, p); err != nil {
		return err
	}
	return r.loop(ctx)
}

func (c *Cli) savedLayout(ctx context.Context) compose.Layout {
	name, err := c.store.GetLayout(ctx)
	if err != nil {
		c.logger.Warn("failed to read layout", zap.Error(err))
	}
	if name == "" {
		name = c.cfg.Layout
	}
	l, err := compose.ParseLayout(name)
	if err != nil {
		c.logger.Warn("unknown layout, using default", zap.String("layout", name))
		return compose.DefaultLayout
	}
	return l
}

func (r *wizardRun) applyPreset(ctx context.Context, p preset) error {
	if p.manual {
		r.ctrl.SetManualEntry(true)
	}
	for _, label := range []struct {
		path string
		side wizard.Side
	}{{p.front, wizard.Front}, {p.back, wizard.Back}} {
		if label.path == "" {
			continue
		}
		m, err := r.c.caps.PickPhoto(ctx, label.path)
		if err != nil {
			return err
		}
		r.ctrl.SetLabel(ctx, label.side, m)
	}
	if p.photo != "" {
		m, err := r.c.caps.PickPhoto(ctx, p.photo)
		if err != nil {
			return err
		}
		r.setPhoto(m)
	}
	return nil
}

func (r *wizardRun) loop(ctx context.Context) error {
	for {
		step := r.state.Step()
		r.c.io.Println()
		r.c.io.Printf("=== Step %d/%d: %s ===\n", step, r.state.TotalSteps(), stepTitles[step])

		err := r.runStep(ctx, step)
		if errors.Is(err, errQuit) {
			return r.quit(ctx)
		}
		if err != nil {
			return err
		}

		if step == wizard.StepPurchase {
			saved, err := r.offerSave(ctx)
			if errors.Is(err, errQuit) {
				return r.quit(ctx)
			}
			if err != nil {
				return err
			}
			if saved {
				return nil
			}
		}

		r.autosave(ctx)
		if err := r.navigate(); err != nil {
			if errors.Is(err, errQuit) {
				return r.quit(ctx)
			}
			return err
		}
	}
}

func (r *wizardRun) runStep(ctx context.Context, step int) error {
	switch step {
	case wizard.StepLabels:
		return r.stepLabels(ctx)
	case wizard.StepTasting:
		return r.stepTasting(ctx)
	case wizard.StepPhoto:
		return r.stepPhoto(ctx)
	case wizard.StepCard:
		return r.stepCard(ctx)
	case wizard.StepReview:
		return r.stepReview()
	case wizard.StepPurchase:
		return r.stepPurchase()
	default:
		return fmt.Errorf("unknown step %d", step)
	}
}

// navigate reads the next move: Enter forward, b back, a step number, q quit
func (r *wizardRun) navigate() error {
	total := r.state.TotalSteps()
	for {
		in, err := r.c.read(fmt.Sprintf("[Enter] next  [b] back  [1-%d] jump  [q] quit: ", total))
		if err != nil {
			return err
		}
		switch strings.ToLower(in) {
		case "":
			if r.state.Step() == total && !r.state.CanSave() {
				r.c.io.Println("Price, purchase location and drink date are required to save.")
			}
			r.state.Advance()
			return nil
		case "b":
			r.state.Retreat()
			return nil
		case "q":
			return errQuit
		}
		if n, err := strconv.Atoi(in); err == nil && n >= 1 && n <= total {
			r.state.JumpTo(n)
			return nil
		}
		r.c.io.Println("Unknown choice.")
	}
}

func (r *wizardRun) autosave(ctx context.Context) {
	rec := &storage.DraftRecord{
		Draft:       r.state.Draft(),
		Step:        r.state.Step(),
		ManualEntry: r.state.ManualEntry(),
		Touched:     r.state.Touched(),
		UpdatedAt:   r.c.now(),
	}
	if err := r.c.store.SaveDraft(ctx, rec); err != nil {
		r.c.logger.Warn("failed to autosave draft", zap.String("draft_id", rec.Draft.ID), zap.Error(err))
	}
}

func (r *wizardRun) quit(ctx context.Context) error {
	r.ctrl.Wait()
	r.autosave(ctx)
	r.c.io.Println()
	r.c.io.Printf("Draft kept. Resume with: winelog drafts resume %s\n", r.state.Draft().ID)
	return nil
}

// offerSave submits the diary when the purchase fields are complete.
// It reports whether the diary was saved.
func (r *wizardRun) offerSave(ctx context.Context) (bool, error) {
	if !r.state.CanSave() {
		return false, nil
	}
	ok, err := r.c.confirm("Save the diary now?", true)
	if err != nil || !ok {
		return false, err
	}
	return r.save(ctx)
}

func (r *wizardRun) save(ctx context.Context) (bool, error) {
	// the saved card matches the final draft
	r.ctrl.Wait()
	if r.composer.Phase() != compose.NoPhoto {
		if err := r.composer.Request(r.state.Draft(), *r.layout.Load()); err != nil {
			r.c.logger.Warn("failed to schedule card", zap.Error(err))
		}
		r.composer.Flush()
	}

	r.c.io.Println("Saving...")
	id, err := r.ctrl.Save(ctx)
	if err != nil {
		if errors.Is(err, wizard.ErrIncomplete) {
			r.c.io.Println(err.Error())
		}
		// the controller has alerted, the draft stays editable
		return false, nil
	}

	d := r.state.Draft()
	entry := &storage.JournalEntry{
		SavedAt:          r.c.now(),
		DraftID:          d.ID,
		WineName:         d.Wine.Name,
		WineType:         string(d.Wine.Type),
		Price:            d.Price,
		PurchaseLocation: d.PurchaseLocation,
		DrinkDate:        d.DrinkDate,
		CardPath:         r.cardPath,
		DiaryID:          id,
		Rating:           d.Rating,
		IsPublic:         d.IsPublic,
	}
	if err := r.c.journal.AddEntry(ctx, entry); err != nil {
		r.c.logger.Warn("failed to record diary in journal", zap.Int64("diary_id", id), zap.Error(err))
	}
	if err := r.c.store.DeleteDraft(ctx, d.ID); err != nil && !errors.Is(err, storage.ErrDraftNotFound) {
		r.c.logger.Warn("failed to delete draft", zap.String("draft_id", d.ID), zap.Error(err))
	}
	if err := r.c.store.SaveLastSavedAt(ctx, r.c.now().Unix()); err != nil {
		r.c.logger.Warn("failed to store save time", zap.Error(err))
	}
	if err := r.c.caps.Haptic(ctx, platform.HapticLight); err != nil {
		r.c.logger.Debug("haptic unavailable", zap.Error(err))
	}

	r.c.io.Println()
	r.c.io.Printf("✓ Diary saved (id %d)\n", id)
	return true, nil
}
