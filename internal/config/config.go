// Package config loads the client configuration.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/iudanet/winelog/internal/compose"
	"github.com/iudanet/winelog/internal/platform"
)

const (
	// EnvPrefix prefixes every environment override, e.g. WINELOG_SERVER_URL
	EnvPrefix = "WINELOG_"

	maxConfigFileSize = 1024 * 1024 // 1MB
)

// Config is the client configuration
type Config struct {
	ServerURL      string        `koanf:"server_url"`
	Platform       string        `koanf:"platform"` // native, ios, android or web
	DBPath         string        `koanf:"db_path"`
	JournalPath    string        `koanf:"journal_path"`
	OutputDir      string        `koanf:"output_dir"`
	CameraDir      string        `koanf:"camera_dir"`
	LogLevel       string        `koanf:"log_level"`
	LogFormat      string        `koanf:"log_format"` // console or json
	Layout         string        `koanf:"layout"`
	CallbackAddr   string        `koanf:"callback_addr"`
	DeviceKey      string        `koanf:"device_key"`
	Debounce       time.Duration `koanf:"debounce"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

// DefaultPath returns ~/.config/winelog/config.yaml
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(dir, "winelog", "config.yaml"), nil
}

// DataDir returns the directory of local databases
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "winelog")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".winelog"
	}
	return filepath.Join(home, ".local", "share", "winelog")
}

func defaultsYAML() []byte {
	data := DataDir()
	return []byte(fmt.Sprintf(`
server_url: http://localhost:8000
platform: native
db_path: %q
journal_path: %q
output_dir: "."
log_level: warn
log_format: console
layout: %s
callback_addr: "127.0.0.1:0"
debounce: %s
request_timeout: 30s
`,
		filepath.Join(data, "winelog.db"),
		filepath.Join(data, "journal.db"),
		compose.DefaultLayout.Name,
		compose.DefaultDebounce,
	))
}

// LoadDotEnv loads .env from the working directory when present
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// Load reads the configuration.
//
// Precedence (highest to lowest):
//  1. WINELOG_* environment variables
//  2. YAML file at path, or DefaultPath when path is empty
//  3. built-in defaults
//
// A missing file at the default path is not an error; a missing explicit path is.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider(defaultsYAML()), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	content, err := readConfigFile(path)
	switch {
	case err == nil:
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
	default:
		return nil, err
	}

	// WINELOG_SERVER_URL -> server_url
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}

// Validate checks enumerations and ranges
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server_url is required")
	}
	switch c.Platform {
	case platform.NameNative, platform.NameWeb, "ios", "android":
	default:
		return fmt.Errorf("unknown platform %q", c.Platform)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log_format %q", c.LogFormat)
	}
	if _, err := compose.ParseLayout(c.Layout); err != nil {
		return err
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}
	c.Debounce = compose.ClampDebounce(c.Debounce)
	return nil
}

// LoginPlatform maps the configured platform to the backend login platform
func (c *Config) LoginPlatform() string {
	switch c.Platform {
	case platform.NameWeb:
		return "web"
	case "android":
		return "android"
	default:
		return "ios"
	}
}
