package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/iudanet/winelog/internal/compose"
	"github.com/iudanet/winelog/internal/models"
	"github.com/iudanet/winelog/internal/platform"
	"github.com/iudanet/winelog/internal/validation"
	"github.com/iudanet/winelog/internal/wizard"
)

const captureCommand = "c"

func (r *wizardRun) stepLabels(ctx context.Context) error {
	defer r.releaseCamera()

	mode := "a"
	if r.state.ManualEntry() {
		mode = "m"
	}
	in, _, err := r.c.edit("Entry mode, [a]i-assisted or [m]anual", mode)
	if err != nil {
		return err
	}
	r.ctrl.SetManualEntry(strings.HasPrefix(strings.ToLower(in), "m"))

	if !r.state.ManualEntry() {
		w := r.state.Draft().Wine
		for _, label := range []struct {
			name    string
			current models.Media
			side    wizard.Side
		}{
			{"Front label", w.FrontImage, wizard.Front},
			{"Back label", w.BackImage, wizard.Back},
		} {
			m, changed, err := r.photoInput(ctx, label.name, label.current)
			if err != nil {
				return err
			}
			if changed {
				r.ctrl.SetLabel(ctx, label.side, m)
			}
		}

		if r.state.Analyzing() {
			r.c.io.Println("Analyzing labels...")
			r.ctrl.Wait()
		}
	}

	return r.editIdentity()
}

func (r *wizardRun) editIdentity() error {
	w := r.state.Draft().Wine
	var p wizard.WinePatch

	for _, f := range []struct {
		label string
		cur   string
		dst   **string
	}{
		{"Name", w.Name, &p.Name},
		{"Origin", w.Origin, &p.Origin},
		{"Grape", w.Grape, &p.Grape},
		{"Year", w.Year, &p.Year},
		{"Alcohol %", w.Alcohol, &p.Alcohol},
	} {
		v, changed, err := r.c.edit(f.label, f.cur)
		if err != nil {
			r.state.UpdateWine(p)
			return err
		}
		if changed {
			*f.dst = wizard.Ptr(v)
		}
	}

	t, changed, err := r.editType(w.Type)
	if changed {
		p.Type = wizard.Ptr(t)
	}
	r.state.UpdateWine(p)
	if err != nil {
		return err
	}

	if d := r.state.Draft().Wine.Description; d != "" {
		r.c.io.Printf("Description: %s\n", d)
	}
	return nil
}

func (r *wizardRun) editType(current models.WineType) (models.WineType, bool, error) {
	names := make([]string, len(models.WineTypes))
	for i, t := range models.WineTypes {
		names[i] = string(t)
	}
	for {
		in, changed, err := r.c.edit("Type ("+strings.Join(names, ", ")+")", string(current))
		if err != nil || !changed {
			return current, false, err
		}
		t := models.WineType(strings.ToLower(in))
		if in == "" || t.Valid() {
			return t, true, nil
		}
		r.c.io.Printf("Unknown wine type %q.\n", in)
	}
}

func (r *wizardRun) stepTasting(ctx context.Context) error {
	if r.ctrl.LookupTaste(ctx) {
		r.c.io.Println("Looking up the tasting profile...")
		r.ctrl.Wait()
	}

	w := r.state.Draft().Wine
	var p wizard.WinePatch
	defer func() { r.state.UpdateWine(p) }()

	for _, f := range []struct {
		label string
		cur   string
		dst   **string
	}{
		{"Aroma", w.AromaNote, &p.AromaNote},
		{"Taste", w.TasteNote, &p.TasteNote},
		{"Finish", w.FinishNote, &p.FinishNote},
	} {
		v, changed, err := r.c.edit(f.label, f.cur)
		if err != nil {
			return err
		}
		if changed {
			*f.dst = wizard.Ptr(v)
		}
	}

	for _, f := range []struct {
		label string
		cur   int
		dst   **int
	}{
		{"Sweetness", w.Sweetness, &p.Sweetness},
		{"Acidity", w.Acidity, &p.Acidity},
		{"Tannin", w.Tannin, &p.Tannin},
		{"Body", w.Body, &p.Body},
	} {
		v, changed, err := r.c.editInt(f.label, f.cur, models.MinScale, models.MaxScale)
		if err != nil {
			return err
		}
		if changed {
			*f.dst = wizard.Ptr(v)
		}
	}
	return nil
}

func (r *wizardRun) stepPhoto(ctx context.Context) error {
	defer r.releaseCamera()

	m, changed, err := r.photoInput(ctx, "Bottle photo", r.state.Draft().ThumbnailImage)
	if err != nil {
		return err
	}
	if changed {
		r.setPhoto(m)
	}
	return nil
}

func (r *wizardRun) setPhoto(m models.Media) {
	r.state.Update(wizard.DiaryPatch{ThumbnailImage: &m})
	// a retake discards the composed card
	r.composer.SetPhoto(m)
}

func (r *wizardRun) stepCard(ctx context.Context) error {
	if r.composer.Phase() == compose.NoPhoto {
		r.c.io.Println("No bottle photo yet. Go back to step 3 to add one.")
		return nil
	}

	current := *r.layout.Load()
	for i, l := range compose.Layouts {
		mark := " "
		if l.Name == current.Name {
			mark = "*"
		}
		r.c.io.Printf(" %s %d. %s\n", mark, i+1, l.Name)
	}
	n, changed, err := r.c.editInt("Layout", layoutIndex(current)+1, 1, len(compose.Layouts))
	if err != nil {
		return err
	}
	if changed {
		l := compose.Layouts[n-1]
		r.layout.Store(&l)
		if err := r.c.store.SaveLayout(ctx, l.Name); err != nil {
			r.c.io.Printf("Could not remember the layout: %v\n", err)
		}
	}

	if err := r.composer.Request(r.state.Draft(), *r.layout.Load()); err != nil {
		return err
	}
	r.composer.Flush()

	card, ok := r.composer.Output()
	if !ok {
		r.c.io.Println("The card could not be composed from this photo.")
		return nil
	}
	r.c.io.Printf("Card composed (%s, %d KB)\n", r.layout.Load().Name, len(card)/1024)

	export, err := r.c.confirm("Export the card?", false)
	if err != nil || !export {
		return err
	}
	path, err := r.c.exporter.Export(card)
	if err != nil {
		if errors.Is(err, compose.ErrThrottled) {
			r.c.io.Println(err.Error())
			return nil
		}
		return err
	}
	r.cardPath = path
	r.c.io.Printf("✓ Card written to %s\n", path)
	return nil
}

func layoutIndex(l compose.Layout) int {
	for i, known := range compose.Layouts {
		if known.Name == l.Name {
			return i
		}
	}
	return 0
}

func (r *wizardRun) stepReview() error {
	d := r.state.Draft()
	var p wizard.DiaryPatch
	defer func() { r.state.Update(p) }()

	for {
		in, err := r.c.read(fmt.Sprintf("Rating (1-5) [%s]: ", ratingLabel(d.Rating)))
		if err != nil {
			return err
		}
		if in == "" {
			break
		}
		v, err := strconv.Atoi(in)
		if err == nil {
			err = validation.ValidateRating(v)
		}
		if err != nil {
			r.c.io.Println("Rating must be between 1 and 5.")
			continue
		}
		if v != d.Rating {
			p.Rating = wizard.Ptr(v)
		}
		break
	}

	review, changed, err := r.c.edit("Review", d.Review)
	if err != nil {
		return err
	}
	if changed {
		p.Review = wizard.Ptr(review)
	}

	public, err := r.c.confirm("Share publicly?", d.IsPublic)
	if err != nil {
		return err
	}
	if public != d.IsPublic {
		p.IsPublic = wizard.Ptr(public)
	}
	return nil
}

func ratingLabel(v int) string {
	if v == 0 {
		return "unset"
	}
	return strings.Repeat("★", v)
}

func (r *wizardRun) stepPurchase() error {
	d := r.state.Draft()
	var p wizard.DiaryPatch
	defer func() { r.state.Update(p) }()

	for _, f := range []struct {
		label string
		cur   string
		dst   **string
	}{
		{"Price", d.Price, &p.Price},
		{"Purchase location", d.PurchaseLocation, &p.PurchaseLocation},
	} {
		v, err := r.required(f.label, f.cur)
		if err != nil {
			return err
		}
		if v != f.cur {
			*f.dst = wizard.Ptr(v)
		}
	}

	date := d.DrinkDate
	if date == "" {
		date = r.c.now().Format(time.DateOnly)
	}
	for {
		v, _, err := r.c.edit("Drink date (YYYY-MM-DD)", date)
		if err != nil {
			return err
		}
		if err := validation.ValidateDrinkDate(v); err != nil {
			r.c.io.Println(err.Error())
			continue
		}
		if v != d.DrinkDate {
			p.DrinkDate = wizard.Ptr(v)
		}
		return nil
	}
}

// required keeps asking until a non-blank value is given
func (r *wizardRun) required(label, current string) (string, error) {
	for {
		v, _, err := r.c.edit(label, current)
		if err != nil {
			return current, err
		}
		if err := validation.ValidateRequired(strings.ToLower(label), v); err != nil {
			r.c.io.Println(err.Error())
			continue
		}
		return strings.TrimSpace(v), nil
	}
}

// photoInput reads a photo path, or captures one with "c". Enter keeps current.
func (r *wizardRun) photoInput(ctx context.Context, label string, current models.Media) (models.Media, bool, error) {
	for {
		in, err := r.c.read(fmt.Sprintf("%s (path, %s to capture) [%s]: ", label, captureCommand, mediaLabel(current)))
		if err != nil {
			return current, false, err
		}

		var m models.Media
		switch in {
		case "":
			return current, false, nil
		case captureCommand:
			m, err = r.capture(ctx)
		default:
			m, err = r.c.caps.PickPhoto(ctx, in)
		}
		if err != nil {
			if errors.Is(err, platform.ErrPermissionDenied) {
				r.c.io.Println("Access was denied. Check the permissions and try again.")
			} else {
				r.c.io.Printf("Could not load the photo: %v\n", err)
			}
			continue
		}
		return m, true, nil
	}
}

func (r *wizardRun) capture(ctx context.Context) (models.Media, error) {
	if r.camera == nil {
		return r.c.caps.CapturePhoto(ctx, platform.FacingBack)
	}
	st, err := r.camera.Acquire(ctx, platform.FacingBack)
	if err != nil {
		return models.Media{}, err
	}
	return st.Capture(ctx)
}

func (r *wizardRun) releaseCamera() {
	if r.camera != nil {
		r.camera.Release()
	}
}

func mediaLabel(m models.Media) string {
	switch {
	case m.URL != "":
		return m.URL
	case len(m.Data) > 0:
		return fmt.Sprintf("%d KB", len(m.Data)/1024)
	default:
		return "none"
	}
}
