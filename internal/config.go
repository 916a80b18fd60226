package internal

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/hookpress/internal/hook"
	"github.com/starford/hookpress/internal/markdown"
	"github.com/starford/hookpress/internal/shortcode"
	"github.com/starford/hookpress/internal/site"
	"github.com/starford/hookpress/internal/watch"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App        ApplicationConfig `yaml:"app"`
	Site       SiteConfig        `yaml:"site"`
	Markdown   markdown.Config   `yaml:"markdown"`
	Shortcodes ShortcodeConfig   `yaml:"shortcodes"`
	Index      IndexConfig       `yaml:"index"`
	Build      BuildConfig       `yaml:"build"`
	Reload     ReloadConfig      `yaml:"reload"`
	Auth       AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	sections := []struct {
		name string
		v    validation.Validatable
	}{
		{"app", &c.App},
		{"site", &c.Site},
		{"markdown", &c.Markdown},
		{"shortcodes", &c.Shortcodes},
		{"index", &c.Index},
		{"build", &c.Build},
		{"reload", &c.Reload},
		{"auth", &c.Auth},
	}
	for _, s := range sections {
		if err := s.v.Validate(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

// Settings returns the settings object handed to plugins.
func (c *Config) Settings() hook.Settings {
	return hook.Settings{
		RootDir: c.Site.RootDir,
		SrcDir:  c.Site.Path(c.Site.SrcDir),
		DistDir: c.Site.Path(c.Site.DistDir),
		Origin:  strings.TrimSuffix(c.Site.Origin, "/"),
		Prefix:  c.App.HTTP.Prefix,
	}
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
	// Prefix mounts the dev server under a sub-path, e.g. "/docs".
	Prefix string `yaml:"prefix"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	c.Prefix = strings.TrimSuffix(c.Prefix, "/")
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.Prefix, validation.When(c.Prefix != "", validation.By(func(any) error {
			if !strings.HasPrefix(c.Prefix, "/") {
				return fmt.Errorf("must start with /")
			}
			return nil
		}))),
	)
}

// SiteConfig locates the source and output trees.
type SiteConfig struct {
	Origin  string `yaml:"origin"`
	RootDir string `yaml:"root_dir"`
	SrcDir  string `yaml:"src_dir"`
	DistDir string `yaml:"dist_dir"`
}

// Path resolves p against the root directory unless it is absolute.
func (c *SiteConfig) Path(p string) string {
	if filepath.IsAbs(p) || c.RootDir == "" {
		return p
	}
	return filepath.Join(c.RootDir, p)
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Origin, is.URL),
		validation.Field(&c.SrcDir, validation.Required),
		validation.Field(&c.DistDir, validation.Required, validation.By(func(any) error {
			if filepath.Clean(c.Path(c.DistDir)) == filepath.Clean(c.Path(c.SrcDir)) {
				return fmt.Errorf("must differ from src_dir")
			}
			return nil
		})),
	)
}

// ShortcodeConfig sets the shortcode delimiters.
type ShortcodeConfig struct {
	Open  string `yaml:"open"`
	Close string `yaml:"close"`
}

// Validate validates the shortcode configuration.
func (c *ShortcodeConfig) Validate() error {
	if c.Open == "" {
		c.Open = shortcode.DefaultOpen
	}
	if c.Close == "" {
		c.Close = shortcode.DefaultClose
	}
	if c.Open == c.Close {
		return fmt.Errorf("open and close must differ, both are %q", c.Open)
	}
	return nil
}

// IndexConfig holds the SQLite content index configuration.
type IndexConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Validate validates the index configuration.
func (c *IndexConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.When(c.Enabled, validation.Required)),
	)
}

// BuildConfig tunes static builds.
type BuildConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// Validate validates the build configuration.
func (c *BuildConfig) Validate() error {
	if c.Concurrency == 0 {
		c.Concurrency = site.DefaultConcurrency
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Concurrency, validation.Min(1), validation.Max(256)),
	)
}

// ReloadConfig controls live reload in the dev server.
type ReloadConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
	Throttle time.Duration `yaml:"throttle"`
}

// Validate validates the reload configuration.
func (c *ReloadConfig) Validate() error {
	if c.Debounce == 0 {
		c.Debounce = watch.DefaultDebounce
	}
	if c.Throttle == 0 {
		c.Throttle = 500 * time.Millisecond
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Min(10*time.Millisecond)),
		validation.Field(&c.Throttle, validation.Min(time.Duration(0))),
	)
}

// AuthConfig guards the dev server's /api routes.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Site: SiteConfig{
			Origin:  "http://localhost:8080",
			RootDir: ".",
			SrcDir:  "src",
			DistDir: "public",
		},
		Markdown: markdown.Config{
			Routes:    []string{"blog"},
			Pattern:   markdown.DefaultPattern,
			OnInvalid: markdown.PolicySkip,
		},
		Shortcodes: ShortcodeConfig{
			Open:  shortcode.DefaultOpen,
			Close: shortcode.DefaultClose,
		},
		Index: IndexConfig{
			Enabled: true,
			Path:    "./hookpress.db",
		},
		Build: BuildConfig{
			Concurrency: site.DefaultConcurrency,
		},
		Reload: ReloadConfig{
			Enabled:  true,
			Debounce: watch.DefaultDebounce,
			Throttle: 500 * time.Millisecond,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
