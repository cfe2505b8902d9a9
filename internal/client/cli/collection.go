package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iudanet/winelog/internal/client/iocli"
	"github.com/iudanet/winelog/internal/client/storage"
	"github.com/iudanet/winelog/internal/models"
)

func newCollectionCmd(io iocli.IO, opts *Options) *cobra.Command {
	var (
		wineType string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "collection",
		Short: "List the diaries saved from this device",
		Args:  cobra.NoArgs,
		RunE: runE(io, opts, func(ctx context.Context, c *Cli, _ []string) error {
			return c.runCollection(ctx, wineType, limit)
		}),
	}
	cmd.Flags().StringVar(&wineType, "type", "", "only show one wine type")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of entries")
	return cmd
}

func (c *Cli) runCollection(ctx context.Context, wineType string, limit int) error {
	filter := storage.JournalFilter{Limit: max(limit, 0)}
	if wineType != "" {
		t := models.WineType(strings.ToLower(wineType))
		if !t.Valid() {
			return fmt.Errorf("unknown wine type %q", wineType)
		}
		filter.WineType = string(t)
	}

	entries, err := c.journal.ListEntries(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list journal: %w", err)
	}
	if len(entries) == 0 {
		c.io.Println("No saved diaries.")
		return nil
	}

	c.io.Printf("=== Collection (%d) ===\n", len(entries))
	c.io.Println()
	for _, e := range entries {
		c.io.Printf("#%-6d %-30s %-10s %-5s %s\n",
			e.DiaryID, e.WineName, e.WineType, ratingLabel(e.Rating), e.DrinkDate)
		if e.CardPath != "" {
			c.io.Printf("        card: %s\n", e.CardPath)
		}
	}
	return nil
}
