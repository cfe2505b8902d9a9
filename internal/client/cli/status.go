package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/winelog/internal/client/iocli"
	"github.com/iudanet/winelog/internal/client/storage"
)

func newStatusCmd(io iocli.IO, opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the session and local data",
		RunE: runE(io, opts, func(ctx context.Context, c *Cli, _ []string) error {
			return c.runStatus(ctx)
		}),
	}
}

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Status ===")
	c.io.Println()
	c.io.Printf("Server: %s\n", c.api.BaseURL())
	c.io.Printf("Platform: %s (%s)\n", c.caps.Name(), c.session.Platform())

	if !c.session.LoggedIn() {
		c.io.Println("Session: not logged in")
		c.io.Println()
		c.io.Println("Run 'winelog login' to sign in.")
	} else {
		c.io.Println("Session: logged in")
		if u := c.session.User(); u != nil && u.Nickname != "" {
			c.io.Printf("Nickname: %s\n", u.Nickname)
		}
		if exp := c.session.ExpiresAt(); !exp.IsZero() {
			c.io.Printf("Token expires: %s\n", exp.Format(time.RFC3339))
			if remaining := exp.Sub(c.now()); remaining <= 0 {
				c.io.Println("⚠️  Access token has expired, it is refreshed on the next request.")
			}
		}
	}
	c.io.Println()

	lastSaved, err := c.store.GetLastSavedAt(ctx)
	if err != nil {
		return fmt.Errorf("failed to get last save time: %w", err)
	}
	if lastSaved > 0 {
		c.io.Printf("Last diary saved: %s\n", time.Unix(lastSaved, 0).Format(time.RFC3339))
	}

	drafts, err := c.store.ListDrafts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list drafts: %w", err)
	}
	entries, err := c.journal.ListEntries(ctx, storage.JournalFilter{})
	if err != nil {
		return fmt.Errorf("failed to list journal: %w", err)
	}
	c.io.Printf("Drafts: %d\n", len(drafts))
	c.io.Printf("Saved diaries: %d\n", len(entries))

	if len(drafts) > 0 {
		c.io.Println()
		c.io.Println("Run 'winelog drafts' to resume an unfinished entry.")
	}
	return nil
}
