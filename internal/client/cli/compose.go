package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/winelog/internal/client/iocli"
	"github.com/iudanet/winelog/internal/compose"
	"github.com/iudanet/winelog/internal/models"
)

type composeOptions struct {
	photo  string
	name   string
	date   string
	layout string
	scale  int
	wine   models.WineData
}

func newComposeCmd(io iocli.IO, opts *Options) *cobra.Command {
	var o composeOptions

	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Render a wine card from a photo",
		Long: `Renders the shareable card without going through the wizard and writes it
to the output directory.`,
		Example: `  winelog compose --photo bottle.jpg --name "Barolo 2019" --body 5 --tannin 4`,
		Args:    cobra.NoArgs,
		RunE: runE(io, opts, func(ctx context.Context, c *Cli, _ []string) error {
			return c.runCompose(ctx, o)
		}),
	}

	f := cmd.Flags()
	f.StringVar(&o.photo, "photo", "", "base photo (required)")
	f.StringVar(&o.name, "name", "", "wine name")
	f.StringVar(&o.date, "date", "", "date stamp, YYYY-MM-DD (default today)")
	f.StringVar(&o.layout, "layout", "", "layout preset (default from config)")
	f.IntVar(&o.scale, "scale", compose.MinScale, "pixel density")
	f.IntVar(&o.wine.Sweetness, "sweetness", models.MinScale, "sweetness 1-5")
	f.IntVar(&o.wine.Acidity, "acidity", models.MinScale, "acidity 1-5")
	f.IntVar(&o.wine.Tannin, "tannin", models.MinScale, "tannin 1-5")
	f.IntVar(&o.wine.Body, "body", models.MinScale, "body 1-5")
	_ = cmd.MarkFlagRequired("photo")
	return cmd
}

func (c *Cli) runCompose(ctx context.Context, o composeOptions) error {
	photo, err := c.caps.PickPhoto(ctx, o.photo)
	if err != nil {
		return err
	}

	layout := c.savedLayout(ctx)
	if o.layout != "" {
		if layout, err = compose.ParseLayout(o.layout); err != nil {
			return err
		}
	}

	draft := models.NewDiaryDraft(c.now())
	if o.date != "" {
		t, err := time.Parse(time.DateOnly, o.date)
		if err != nil {
			return fmt.Errorf("date must be YYYY-MM-DD")
		}
		draft.CreatedAt = t
	}
	draft.ThumbnailImage = photo
	draft.Wine.Name = o.name
	draft.Wine.Sweetness = models.ClampScale(o.wine.Sweetness)
	draft.Wine.Acidity = models.ClampScale(o.wine.Acidity)
	draft.Wine.Tannin = models.ClampScale(o.wine.Tannin)
	draft.Wine.Body = models.ClampScale(o.wine.Body)

	renderer := compose.NewRenderer(compose.WithScale(o.scale), compose.WithClock(c.now))
	card, err := renderer.Render(draft, layout)
	if err != nil {
		return fmt.Errorf("failed to compose card: %w", err)
	}

	path, err := c.exporter.Export(card)
	if err != nil {
		return err
	}
	w, h := renderer.Size()
	c.io.Printf("✓ Card written to %s (%dx%d, %s)\n", path, w, h, layout.Name)
	return nil
}
