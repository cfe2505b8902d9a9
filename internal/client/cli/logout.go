package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iudanet/winelog/internal/client/iocli"
)

func newLogoutCmd(io iocli.IO, opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		RunE: runE(io, opts, func(ctx context.Context, c *Cli, _ []string) error {
			return c.runLogout(ctx)
		}),
	}
}

func (c *Cli) runLogout(ctx context.Context) error {
	if !c.session.LoggedIn() {
		c.io.Println("Not logged in.")
		return nil
	}
	if err := c.session.Teardown(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	c.io.Println("✓ Logged out")
	return nil
}
