// Package cli implements the winelog commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iudanet/winelog/internal/client/api"
	"github.com/iudanet/winelog/internal/client/iocli"
	"github.com/iudanet/winelog/internal/client/session"
	"github.com/iudanet/winelog/internal/client/storage"
	"github.com/iudanet/winelog/internal/client/storage/boltdb"
	"github.com/iudanet/winelog/internal/client/storage/sqlite"
	"github.com/iudanet/winelog/internal/compose"
	"github.com/iudanet/winelog/internal/config"
	"github.com/iudanet/winelog/internal/logging"
	"github.com/iudanet/winelog/internal/platform"
)

// Options are the global flags
type Options struct {
	ConfigPath    string
	ServerURL     string
	Platform      string
	DBPath        string
	LogLevel      string
	DeviceKeyFile string
}

// Cli holds the dependencies of a command run
type Cli struct {
	cfg      *config.Config
	io       iocli.IO
	logger   *zap.Logger
	caps     platform.Capabilities
	api      *api.Client
	session  *session.Session
	store    *boltdb.Storage
	journal  storage.JournalStorage
	exporter *compose.Exporter
	now      func() time.Time
	closers  []func() error
}

// Setup loads the configuration and opens everything a command needs
func Setup(ctx context.Context, opts Options, io iocli.IO) (*Cli, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	applyFlags(cfg, opts)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	c := &Cli{
		cfg:      cfg,
		io:       io,
		logger:   logger,
		exporter: compose.NewExporter(cfg.OutputDir),
		now:      time.Now,
	}
	c.closers = append(c.closers, func() error {
		_ = logger.Sync()
		return nil
	})

	if err := c.open(ctx, opts); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func applyFlags(cfg *config.Config, opts Options) {
	if opts.ServerURL != "" {
		cfg.ServerURL = opts.ServerURL
	}
	if opts.Platform != "" {
		cfg.Platform = opts.Platform
	}
	if opts.DBPath != "" {
		cfg.DBPath = opts.DBPath
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
}

func (c *Cli) open(ctx context.Context, opts Options) error {
	caps, err := platform.New(c.cfg.Platform, platform.Config{
		CameraDir: c.cfg.CameraDir,
		Timeout:   c.cfg.RequestTimeout,
	}, c.logger.Named("platform"))
	if err != nil {
		return err
	}
	c.caps = caps

	c.api = api.NewClient(c.cfg.ServerURL,
		api.WithHTTPClient(caps.HTTPClient()),
		api.WithRequester(caps),
		api.WithLogger(c.logger.Named("api")),
	)

	store, err := boltdb.New(ctx, c.cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	c.store = store
	c.closers = append(c.closers, store.Close)

	journal, err := sqlite.New(ctx, c.cfg.JournalPath)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	c.journal = journal
	c.closers = append(c.closers, journal.Close)

	deviceKey, err := c.deviceKey(opts, false)
	if err != nil {
		return err
	}
	if err := c.startSession(ctx, deviceKey); err != nil {
		if !errors.Is(err, session.ErrLocked) || !c.io.Interactive() {
			return err
		}
		// stored tokens are encrypted, ask for the key once
		if deviceKey, err = c.deviceKey(opts, true); err != nil {
			return err
		}
		return c.startSession(ctx, deviceKey)
	}
	return nil
}

func (c *Cli) startSession(ctx context.Context, deviceKey string) error {
	cfg := session.Config{
		API:      c.api,
		Store:    session.NewTokenStore(c.store, deviceKey),
		Logger:   c.logger.Named("session"),
		Platform: c.cfg.LoginPlatform(),
	}
	if clearer, ok := c.caps.(session.CookieClearer); ok {
		cfg.Cookies = clearer
	}

	s, err := session.New(cfg)
	if err != nil {
		return err
	}
	if err := s.Init(ctx); err != nil {
		return err
	}
	c.session = s
	return nil
}

// deviceKey returns the key that encrypts stored tokens:
// 1. WINELOG_DEVICE_KEY or device_key in the config file
// 2. the file given by --device-key-file
// 3. an interactive prompt, when prompt is set
func (c *Cli) deviceKey(opts Options, prompt bool) (string, error) {
	if c.cfg.DeviceKey != "" {
		return c.cfg.DeviceKey, nil
	}

	if opts.DeviceKeyFile != "" {
		content, err := os.ReadFile(opts.DeviceKeyFile)
		if err != nil {
			return "", fmt.Errorf("failed to read device key file: %w", err)
		}
		key := strings.TrimSpace(string(content))
		if key == "" {
			return "", fmt.Errorf("device key file is empty")
		}
		return key, nil
	}

	if !prompt {
		return "", nil
	}
	key, err := c.io.ReadPassword("Device key: ")
	if err != nil {
		return "", fmt.Errorf("failed to read device key: %w", err)
	}
	if key == "" {
		return "", fmt.Errorf("device key cannot be empty")
	}
	return key, nil
}

// Close releases everything opened by Setup, last opened first
func (c *Cli) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
