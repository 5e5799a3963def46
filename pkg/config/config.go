// Package config loads and resolves eco configuration. All components
// receive an explicit Config rather than reading module-level globals,
// so tests can point every path at a temp directory.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Env var overrides. ECO_HOME rebases every default path; the specific
// vars override both the default and the config file.
const (
	EnvHome           = "ECO_HOME"
	EnvDBPath         = "ECO_DB_PATH"
	EnvWorkspaceToken = "ECO_WORKSPACE_TOKEN"
)

// Workspace configures the remote workspace database client.
type Workspace struct {
	// Token is the bearer token for the workspace API.
	Token string `toml:"token" yaml:"token"`

	// RequestsDatabaseID is the Automation Requests database.
	RequestsDatabaseID string `toml:"requests_database_id" yaml:"requests_database_id"`

	// TransactionsDatabaseID receives synced financial transactions.
	TransactionsDatabaseID string `toml:"transactions_database_id" yaml:"transactions_database_id"`

	// BriefingParentPageID is where published briefings are created.
	BriefingParentPageID string `toml:"briefing_parent_page_id" yaml:"briefing_parent_page_id"`

	// BaseURL overrides the API endpoint (tests point this at httptest).
	BaseURL string `toml:"base_url" yaml:"base_url"`
}

// Monarch configures the financial aggregator client.
type Monarch struct {
	BaseURL string `toml:"base_url" yaml:"base_url"`
	Token   string `toml:"token" yaml:"token"`

	// SessionPath is the cached session artifact whose age drives the
	// finance staleness probe.
	SessionPath string `toml:"session_path" yaml:"session_path"`
}

// Repos locates the local automation repositories the dispatcher
// shells out to.
type Repos struct {
	DownloadsOrganizer string `toml:"downloads_organizer" yaml:"downloads_organizer"`
	ContextSync        string `toml:"context_sync" yaml:"context_sync"`
	TaxRules           string `toml:"tax_rules" yaml:"tax_rules"`
}

// Config is the resolved eco configuration.
type Config struct {
	// Home is the eco state directory (~/.eco unless ECO_HOME is set).
	Home string `toml:"-" yaml:"-"`

	// DBPath is the operation log database.
	DBPath string `toml:"db_path" yaml:"db_path"`

	// DownloadsDir is scanned for pending files.
	DownloadsDir string `toml:"downloads_dir" yaml:"downloads_dir"`

	// CalendarTool is the calendar CLI binary name.
	CalendarTool string `toml:"calendar_tool" yaml:"calendar_tool"`

	Repos     Repos     `toml:"repos" yaml:"repos"`
	Workspace Workspace `toml:"workspace" yaml:"workspace"`
	Monarch   Monarch   `toml:"monarch" yaml:"monarch"`
}

// ResolveHome returns the eco home directory from ECO_HOME or ~/.eco.
func ResolveHome() (string, error) {
	if v := os.Getenv(EnvHome); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".eco"), nil
}

// Load resolves the eco home, reads config.toml (or config.yaml as a
// fallback), fills defaults, and applies env overrides. A missing
// config file is not an error; a malformed one is.
func Load() (*Config, error) {
	home, err := ResolveHome()
	if err != nil {
		return nil, err
	}
	return LoadFrom(home)
}

// LoadFrom is Load with an explicit home directory.
func LoadFrom(home string) (*Config, error) {
	cfg := &Config{Home: home}

	tomlPath := filepath.Join(home, "config.toml")
	yamlPath := filepath.Join(home, "config.yaml")

	switch data, err := os.ReadFile(tomlPath); {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", tomlPath, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		if data, yerr := os.ReadFile(yamlPath); yerr == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", yamlPath, err)
			}
		} else if !errors.Is(yerr, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", yerr)
		}
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.Home = home
	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	userHome, _ := os.UserHomeDir()
	documents := filepath.Join(userHome, "Documents")

	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.Home, "history.db")
	}
	if c.DownloadsDir == "" && userHome != "" {
		c.DownloadsDir = filepath.Join(userHome, "Downloads")
	}
	if c.CalendarTool == "" {
		c.CalendarTool = "icalBuddy"
	}
	if c.Repos.DownloadsOrganizer == "" && userHome != "" {
		c.Repos.DownloadsOrganizer = filepath.Join(documents, "downloads-organizer")
	}
	if c.Repos.ContextSync == "" && userHome != "" {
		c.Repos.ContextSync = filepath.Join(documents, "treehouse-context-sync")
	}
	if c.Repos.TaxRules == "" && userHome != "" {
		c.Repos.TaxRules = filepath.Join(documents, "notion-rules")
	}
	if c.Monarch.BaseURL == "" {
		c.Monarch.BaseURL = "https://api.monarchmoney.com"
	}
	if c.Monarch.SessionPath == "" && userHome != "" {
		c.Monarch.SessionPath = filepath.Join(userHome, ".monarch", "session.json")
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDBPath); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv(EnvWorkspaceToken); v != "" {
		c.Workspace.Token = v
	}
}

// Save writes the configuration back to config.toml under c.Home,
// creating the directory if needed. Used by `eco config` when the
// requests database ID is assigned or changed.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.Home, 0o750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	path := filepath.Join(c.Home, "config.toml")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
