package internal

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/pontos/internal/sheet"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the pipeline configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Sheet  SheetConfig       `yaml:"sheet"`
	Docs   DocsConfig        `yaml:"docs"`
	Search SearchConfig      `yaml:"search"`
	Lint   LintConfig        `yaml:"lint"`
	SQLite SQLiteConfig      `yaml:"sqlite"`
	Auth   AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration. The sheet section is checked by
// the generate command only, since the other jobs never touch it.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Docs.Validate(); err != nil {
		return err
	}
	if err := c.Search.Validate(); err != nil {
		return err
	}
	if err := c.Lint.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
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

// HTTPConfig holds the preview server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SheetConfig describes the spreadsheet the generator reads from.
type SheetConfig struct {
	ID      string        `yaml:"id"`
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
	Columns sheet.Columns `yaml:"columns"`
}

// Validate validates the sheet configuration.
func (c *SheetConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.ID, validation.Required.Error("is required (set SHEET_ID)")),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	); err != nil {
		return fmt.Errorf("sheet: %w", err)
	}
	return validation.ValidateStruct(&c.Columns,
		validation.Field(&c.Columns.Category, validation.Required),
		validation.Field(&c.Columns.Title, validation.Required),
		validation.Field(&c.Columns.Lyric, validation.Required),
		validation.Field(&c.Columns.Video, validation.Required),
	)
}

// DocsConfig holds the generated docs tree location.
type DocsConfig struct {
	Path      string `yaml:"path"`
	Extension string `yaml:"extension"`
}

// Validate validates the docs configuration.
func (c *DocsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Extension, validation.Required, validation.In(".md", ".mdx")),
	)
}

// SearchConfig holds the search index output settings.
type SearchConfig struct {
	Output  string `yaml:"output"`
	BaseURL string `yaml:"base_url"`
}

// Validate validates the search configuration.
func (c *SearchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Output, validation.Required),
		validation.Field(&c.BaseURL, validation.Required),
	)
}

// LintConfig holds the normalizer settings.
type LintConfig struct {
	Replacements string `yaml:"replacements"`
}

// Validate validates the lint configuration.
func (c *LintConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Replacements, validation.Required),
	)
}

// SQLiteConfig holds the preview catalog database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds authentication configuration for the preview API.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required.
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

// NewDefaultConfig returns a new Config with the site's default layout.
// The sheet id defaults to the SHEET_ID environment variable.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Sheet: SheetConfig{
			ID:      os.Getenv("SHEET_ID"),
			URL:     sheet.DefaultURLTemplate,
			Timeout: 30 * time.Second,
			Columns: sheet.DefaultColumns(),
		},
		Docs: DocsConfig{
			Path:      "docs",
			Extension: ".mdx",
		},
		Search: SearchConfig{
			Output:  "static/search-data.json",
			BaseURL: "https://umbandaponto.com/",
		},
		Lint: LintConfig{
			Replacements: "replacements.json",
		},
		SQLite: SQLiteConfig{
			Path: "./pontos.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
