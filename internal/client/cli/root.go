package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/iudanet/winelog/internal/client/iocli"
	"github.com/iudanet/winelog/internal/config"
)

// NewRootCmd builds the winelog command tree on io
func NewRootCmd(io iocli.IO) *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:   "winelog",
		Short: "Wine diary with AI-assisted label recognition",
		Long: `Winelog records the wines you taste.

Photograph the front and back labels and the backend fills in the wine identity.
Tune the tasting profile, compose a shareable card from a bottle photo, rate it and
save the entry to your diary.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadDotEnv()
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&opts.ConfigPath, "config", "", "config file (default $XDG_CONFIG_HOME/winelog/config.yaml)")
	f.StringVar(&opts.ServerURL, "server", "", "backend URL")
	f.StringVar(&opts.Platform, "platform", "", "platform variant: native, ios, android or web")
	f.StringVar(&opts.DBPath, "db", "", "local database path")
	f.StringVar(&opts.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	f.StringVar(&opts.DeviceKeyFile, "device-key-file", "", "file holding the key that encrypts stored tokens")

	cmd.AddCommand(
		newLoginCmd(io, opts),
		newLogoutCmd(io, opts),
		newStatusCmd(io, opts),
		newNewCmd(io, opts),
		newComposeCmd(io, opts),
		newDraftsCmd(io, opts),
		newCollectionCmd(io, opts),
		newVersionCmd(io),
	)
	return cmd
}

// runE opens a Cli for the duration of fn
func runE(io iocli.IO, opts *Options, fn func(ctx context.Context, c *Cli, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		c, err := Setup(ctx, *opts, io)
		if err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, c.Close())
		}()
		return fn(ctx, c, args)
	}
}
