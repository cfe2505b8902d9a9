package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/winelog/internal/client/iocli"
	"github.com/iudanet/winelog/internal/client/storage"
	"github.com/iudanet/winelog/internal/wizard"
)

func newDraftsCmd(io iocli.IO, opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drafts",
		Short: "List, resume or delete unfinished entries",
		Args:  cobra.NoArgs,
		RunE: runE(io, opts, func(ctx context.Context, c *Cli, _ []string) error {
			return c.runDraftsList(ctx)
		}),
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "resume <id>",
			Short: "Continue a draft where it was left",
			Args:  cobra.ExactArgs(1),
			RunE: runE(io, opts, func(ctx context.Context, c *Cli, args []string) error {
				return c.runDraftsResume(ctx, args[0])
			}),
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Discard a draft",
			Args:  cobra.ExactArgs(1),
			RunE: runE(io, opts, func(ctx context.Context, c *Cli, args []string) error {
				return c.runDraftsDelete(ctx, args[0])
			}),
		},
	)
	return cmd
}

func (c *Cli) runDraftsList(ctx context.Context) error {
	drafts, err := c.store.ListDrafts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list drafts: %w", err)
	}
	if len(drafts) == 0 {
		c.io.Println("No drafts.")
		return nil
	}

	c.io.Printf("=== Drafts (%d) ===\n", len(drafts))
	c.io.Println()
	for _, rec := range drafts {
		name := rec.Draft.Wine.Name
		if name == "" {
			name = "(unnamed)"
		}
		c.io.Printf("%s  %-30s  step %d/%d  %s\n",
			rec.Draft.ID, name, rec.Step, wizard.TotalSteps, rec.UpdatedAt.Format(time.DateTime))
	}
	return nil
}

func (c *Cli) runDraftsResume(ctx context.Context, id string) error {
	rec, err := c.store.GetDraft(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrDraftNotFound) {
			return fmt.Errorf("draft %s not found", id)
		}
		return err
	}
	state := wizard.ResumeState(rec.Draft, wizard.TotalSteps, rec.Step, rec.ManualEntry, rec.Touched)
	return c.runWizard(ctx, state, preset{})
}

func (c *Cli) runDraftsDelete(ctx context.Context, id string) error {
	if err := c.store.DeleteDraft(ctx, id); err != nil {
		if errors.Is(err, storage.ErrDraftNotFound) {
			return fmt.Errorf("draft %s not found", id)
		}
		return err
	}
	c.io.Printf("✓ Draft %s deleted\n", id)
	return nil
}
