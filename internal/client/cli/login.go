package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iudanet/winelog/internal/client/callback"
	"github.com/iudanet/winelog/internal/client/iocli"
	"github.com/iudanet/winelog/pkg/api"
)

const loginTimeout = 5 * time.Minute

func newLoginCmd(io iocli.IO, opts *Options) *cobra.Command {
	var link string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with Kakao",
		Long: `Opens the provider login page and waits for the redirect on a loopback listener.

Native sessions may instead pass the winelog://auth/callback deep link with --link.`,
		Example: `  # Sign in through the browser
  winelog login

  # Finish a native login from the redirect deep link
  winelog login --link 'winelog://auth/callback?success=1&access_token=...'`,
		RunE: runE(io, opts, func(ctx context.Context, c *Cli, _ []string) error {
			if link != "" {
				return c.runLoginLink(ctx, link)
			}
			return c.runLogin(ctx)
		}),
	}
	cmd.Flags().StringVar(&link, "link", "", "redirect deep link of a native login")
	return cmd
}

func (c *Cli) runLogin(ctx context.Context) error {
	c.io.Println("=== Login ===")
	c.io.Println()

	ln, err := callback.Listen(c.cfg.CallbackAddr, c.logger.Named("callback"))
	if err != nil {
		return err
	}
	defer func() {
		if err := ln.Close(); err != nil {
			c.logger.Warn("failed to close callback listener", zap.Error(err))
		}
	}()

	loginURL, err := c.session.LoginURL(ctx)
	if err != nil {
		return fmt.Errorf("failed to get login URL: %w", err)
	}

	c.io.Println("Open this URL in your browser to sign in:")
	c.io.Println()
	c.io.Println("  " + loginURL)
	c.io.Println()
	c.io.Printf("Waiting for the redirect on %s ...\n", ln.URL())

	waitCtx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()
	res, err := ln.Wait(waitCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("login timed out after %s", loginTimeout)
		}
		return err
	}

	var user *api.User
	if res.Tokens() {
		user, err = c.session.CompleteTokens(ctx, res.Params)
	} else {
		user, err = c.session.CompleteCode(ctx, res.Code, res.State)
	}
	if err != nil {
		return err
	}
	c.printLoggedIn(user)
	return nil
}

func (c *Cli) runLoginLink(ctx context.Context, link string) error {
	user, err := c.session.CompleteDeepLink(ctx, link)
	if err != nil {
		return err
	}
	c.printLoggedIn(user)
	return nil
}

func (c *Cli) printLoggedIn(user *api.User) {
	c.io.Println()
	c.io.Println("✓ Login successful!")
	if user != nil && user.Nickname != "" {
		c.io.Printf("Nickname: %s\n", user.Nickname)
	}
	if exp := c.session.ExpiresAt(); !exp.IsZero() {
		c.io.Printf("Access token expires: %s\n", exp.Format(time.RFC3339))
	}
}
