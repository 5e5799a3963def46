package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromMissingFileUsesDefaults(t *testing.T) {
	home := t.TempDir()

	cfg, err := LoadFrom(home)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Home != home {
		t.Errorf("Home = %q, want %q", cfg.Home, home)
	}
	if want := filepath.Join(home, "history.db"); cfg.DBPath != want {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, want)
	}
	if cfg.CalendarTool != "icalBuddy" {
		t.Errorf("CalendarTool = %q, want icalBuddy", cfg.CalendarTool)
	}
}

func TestLoadFromTOML(t *testing.T) {
	home := t.TempDir()
	content := `
downloads_dir = "/tmp/dl"

[workspace]
token = "secret-token"
requests_database_id = "db-123"

[repos]
context_sync = "/srv/context-sync"
`
	if err := os.WriteFile(filepath.Join(home, "config.toml"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(home)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.DownloadsDir != "/tmp/dl" {
		t.Errorf("DownloadsDir = %q", cfg.DownloadsDir)
	}
	if cfg.Workspace.Token != "secret-token" {
		t.Errorf("Workspace.Token = %q", cfg.Workspace.Token)
	}
	if cfg.Workspace.RequestsDatabaseID != "db-123" {
		t.Errorf("RequestsDatabaseID = %q", cfg.Workspace.RequestsDatabaseID)
	}
	if cfg.Repos.ContextSync != "/srv/context-sync" {
		t.Errorf("Repos.ContextSync = %q", cfg.Repos.ContextSync)
	}
	// Unset fields still get defaults.
	if cfg.DBPath == "" {
		t.Error("DBPath default missing")
	}
}

func TestLoadFromYAMLFallback(t *testing.T) {
	home := t.TempDir()
	content := `
workspace:
  token: yaml-token
  requests_database_id: db-yaml
`
	if err := os.WriteFile(filepath.Join(home, "config.yaml"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(home)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Workspace.Token != "yaml-token" {
		t.Errorf("Workspace.Token = %q", cfg.Workspace.Token)
	}
	if cfg.Workspace.RequestsDatabaseID != "db-yaml" {
		t.Errorf("RequestsDatabaseID = %q", cfg.Workspace.RequestsDatabaseID)
	}
}

func TestTOMLTakesPrecedenceOverYAML(t *testing.T) {
	home := t.TempDir()
	if err := os.WriteFile(filepath.Join(home, "config.toml"), []byte("downloads_dir = \"/from-toml\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(home, "config.yaml"), []byte("downloads_dir: /from-yaml\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(home)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.DownloadsDir != "/from-toml" {
		t.Errorf("DownloadsDir = %q, want /from-toml", cfg.DownloadsDir)
	}
}

func TestEnvOverrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv(EnvDBPath, "/custom/ops.db")
	t.Setenv(EnvWorkspaceToken, "env-token")

	cfg, err := LoadFrom(home)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.DBPath != "/custom/ops.db" {
		t.Errorf("DBPath = %q, want env override", cfg.DBPath)
	}
	if cfg.Workspace.Token != "env-token" {
		t.Errorf("Workspace.Token = %q, want env override", cfg.Workspace.Token)
	}
}

func TestResolveHomeEnv(t *testing.T) {
	t.Setenv(EnvHome, "/opt/eco-home")
	home, err := ResolveHome()
	if err != nil {
		t.Fatalf("ResolveHome: %v", err)
	}
	if home != "/opt/eco-home" {
		t.Errorf("home = %q", home)
	}
}

func TestSaveRoundTrips(t *testing.T) {
	home := t.TempDir()
	cfg, err := LoadFrom(home)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	cfg.Workspace.RequestsDatabaseID = "db-save"

	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded, err := LoadFrom(home)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Workspace.RequestsDatabaseID != "db-save" {
		t.Errorf("RequestsDatabaseID = %q after reload", reloaded.Workspace.RequestsDatabaseID)
	}
}

func TestMalformedTOMLIsAnError(t *testing.T) {
	home := t.TempDir()
	if err := os.WriteFile(filepath.Join(home, "config.toml"), []byte("not [valid toml"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(home); err == nil {
		t.Fatal("expected parse error")
	}
}
