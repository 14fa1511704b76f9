// Package config loads the specform.yaml file shared by the CLI commands.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-theme"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-specform/pkg/fetcher"
	"github.com/goliatone/go-specform/pkg/form"
	"github.com/goliatone/go-specform/pkg/values"
)

const (
	// FileName is the conventional config file name.
	FileName = "specform.yaml"

	DefaultAddr     = ":8080"
	DefaultDatabase = ":memory:"
	DefaultTimeout  = 10 * time.Second
)

// Config is the complete specform.yaml document.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Lookup LookupConfig `yaml:"lookup"`
	Fetch  FetchConfig  `yaml:"fetch"`
	Form   FormConfig   `yaml:"form"`
	Theme  ThemeConfig  `yaml:"theme"`
	Log    LogConfig    `yaml:"log"`

	path string
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	Metrics         bool          `yaml:"metrics"`
}

// LookupConfig configures the bundled lookup service.
type LookupConfig struct {
	// Database is a sqlite DSN.
	Database string `yaml:"database"`
	// Seed is an optional YAML catalogue applied at startup.
	Seed string `yaml:"seed"`
	// Legacy adds the flat attributes list to responses.
	Legacy bool `yaml:"legacy"`
}

// FetchConfig configures the schema fetcher.
type FetchConfig struct {
	Endpoint         string        `yaml:"endpoint"`
	Timeout          time.Duration `yaml:"timeout"`
	ValidateContract bool          `yaml:"validate_contract"`
}

// FormConfig configures the controller and renderer.
type FormConfig struct {
	// Policy is "preserve" or "drop".
	Policy      string        `yaml:"policy"`
	ContainerID string        `yaml:"container_id"`
	Messages    form.Messages `yaml:"messages"`
}

// ThemeConfig feeds the HTML renderer's theme hooks.
type ThemeConfig struct {
	Name      string            `yaml:"name"`
	Variant   string            `yaml:"variant"`
	CSSVars   map[string]string `yaml:"css_vars"`
	AssetBase string            `yaml:"asset_base"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// New returns a config with every default applied.
func New() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads path. An empty path yields the defaults; a missing file is an
// error.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return New(), nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	cfg, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	cfg.path = path
	return cfg, nil
}

// Decode parses a config document and validates it.
func Decode(r io.Reader) (*Config, error) {
	cfg := &Config{}
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path reports where the config was loaded from.
func (c *Config) Path() string {
	return c.path
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 5 * time.Second
	}
	if c.Lookup.Database == "" {
		c.Lookup.Database = DefaultDatabase
	}
	if c.Fetch.Endpoint == "" {
		c.Fetch.Endpoint = fetcher.DefaultEndpoint
	}
	if c.Fetch.Timeout == 0 {
		c.Fetch.Timeout = DefaultTimeout
	}
	if c.Form.Policy == "" {
		c.Form.Policy = values.PreserveOffSchema.String()
	}
	def := form.DefaultMessages()
	if c.Form.Messages.Loading == "" {
		c.Form.Messages.Loading = def.Loading
	}
	if c.Form.Messages.Empty == "" {
		c.Form.Messages.Empty = def.Empty
	}
	if c.Form.Messages.Error == "" {
		c.Form.Messages.Error = def.Error
	}
	if c.Form.Messages.Attributes == "" {
		c.Form.Messages.Attributes = def.Attributes
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if _, err := values.ParsePolicy(c.Form.Policy); err != nil {
		return err
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	if !strings.Contains(c.Form.Messages.Attributes, "%d") {
		return fmt.Errorf("config: form.messages.attributes must contain %%d")
	}
	return nil
}

// Policy returns the parsed merge policy.
func (c *Config) Policy() values.Policy {
	policy, err := values.ParsePolicy(c.Form.Policy)
	if err != nil {
		return values.PreserveOffSchema
	}
	return policy
}

// Logger builds the configured slog logger writing to w.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// RendererTheme converts the theme section for the HTML renderer. It returns
// nil when no theme is configured.
func (c *Config) RendererTheme() *theme.RendererConfig {
	t := c.Theme
	if t.Name == "" && t.Variant == "" && len(t.CSSVars) == 0 && t.AssetBase == "" {
		return nil
	}
	cfg := &theme.RendererConfig{
		Theme:   t.Name,
		Variant: t.Variant,
		CSSVars: t.CSSVars,
	}
	if base := strings.TrimRight(t.AssetBase, "/"); base != "" {
		cfg.AssetURL = func(name string) string {
			if name == "" {
				return ""
			}
			return base + "/" + strings.TrimLeft(name, "/")
		}
	}
	return cfg
}

func parseLevel(raw string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return level, fmt.Errorf("config: unknown log level %q", raw)
	}
	return level, nil
}
