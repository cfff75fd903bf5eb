package internal

import (
	"fmt"
	"log/slog"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/raido/internal/bundleservice"
	"github.com/starford/raido/internal/storage"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App  ApplicationConfig `yaml:"app"`
	Data DataConfig        `yaml:"data"`
	Tree TreeConfig        `yaml:"tree"`
	Auth AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Data.Validate(); err != nil {
		return err
	}
	if err := c.Tree.Validate(); err != nil {
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

// HTTPConfig holds HTTP server configuration.
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

// DatasetDef describes one dataset in the configuration. The CSV paths are
// optional; when empty they default to <data.dir>/<id>_bundles.csv,
// <id>_memos.csv and <id>_links.csv.
type DatasetDef struct {
	ID         string `yaml:"id"`
	Label      string `yaml:"label"`
	Image      string `yaml:"image"`
	BundlesCSV string `yaml:"bundles_csv"`
	MemosCSV   string `yaml:"memos_csv"`
	LinksCSV   string `yaml:"links_csv"`
}

// Validate validates a dataset definition.
func (d *DatasetDef) Validate() error {
	return validation.ValidateStruct(d,
		validation.Field(&d.ID, validation.Required, validation.Length(1, 64)),
	)
}

// DataConfig holds the data directory and the datasets served from it.
type DataConfig struct {
	Dir      string       `yaml:"dir"`
	Datasets []DatasetDef `yaml:"datasets"`
}

// Validate validates the data configuration.
func (c *DataConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.Datasets, validation.Required),
	); err != nil {
		return err
	}
	seen := make(map[string]bool, len(c.Datasets))
	for i := range c.Datasets {
		d := &c.Datasets[i]
		if err := d.Validate(); err != nil {
			return fmt.Errorf("dataset %d: %w", i, err)
		}
		if seen[d.ID] {
			return fmt.Errorf("data: duplicate dataset id %q", d.ID)
		}
		seen[d.ID] = true
	}
	return nil
}

// DatasetConfigs resolves the dataset definitions to concrete CSV paths.
func (c *DataConfig) DatasetConfigs() []bundleservice.DatasetConfig {
	out := make([]bundleservice.DatasetConfig, len(c.Datasets))
	for i, d := range c.Datasets {
		label := d.Label
		if label == "" {
			label = d.ID
		}
		resolve := func(explicit, suffix string) string {
			if explicit != "" {
				return explicit
			}
			return filepath.Join(c.Dir, d.ID+suffix)
		}
		out[i] = bundleservice.DatasetConfig{
			ID:    d.ID,
			Label: label,
			Image: d.Image,
			Paths: storage.Paths{
				Bundles: resolve(d.BundlesCSV, "_bundles.csv"),
				Memos:   resolve(d.MemosCSV, "_memos.csv"),
				Links:   resolve(d.LinksCSV, "_links.csv"),
			},
		}
	}
	return out
}

// TreeConfig holds the keyword-tree and tagged-records file paths.
type TreeConfig struct {
	Path      string `yaml:"path"`
	TaggedCSV string `yaml:"tagged_csv"`
}

// Validate validates the tree configuration.
func (c *TreeConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.TaggedCSV, validation.Required),
	)
}

// AuthConfig holds authentication configuration.
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
	// Normalise empty mode to "disabled" for backward compatibility.
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
		Data: DataConfig{
			Dir: "./data",
			Datasets: []DatasetDef{
				{ID: "main", Label: "Main"},
			},
		},
		Tree: TreeConfig{
			Path:      "./data/link_tree.txt",
			TaggedCSV: "./data/tagged.csv",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
