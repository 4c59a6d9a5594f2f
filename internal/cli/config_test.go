package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	pderrors "github.com/matzehuels/pydepgraph/pkg/errors"
	"github.com/matzehuels/pydepgraph/pkg/integrations/pypi"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadConfig(t *testing.T) {
	path := writeConfig(t, `
registry_url = "https://mirror.example.com/pypi"
timeout = "15s"
library = "requests"
number = 0
user_agent = "tests/1.0"

[server]
addr = ":9000"
`)

	cfg, err := readConfig(path, true)
	if err != nil {
		t.Fatalf("readConfig() error: %v", err)
	}
	if cfg.RegistryURL != "https://mirror.example.com/pypi" {
		t.Errorf("RegistryURL = %q", cfg.RegistryURL)
	}
	if cfg.Timeout.Duration != 15*time.Second {
		t.Errorf("Timeout = %v, want 15s", cfg.Timeout)
	}
	if cfg.Library != "requests" {
		t.Errorf("Library = %q", cfg.Library)
	}
	if cfg.Number == nil || *cfg.Number != 0 {
		t.Errorf("Number = %v, want explicit 0", cfg.Number)
	}
	if cfg.UserAgent != "tests/1.0" || cfg.Server.Addr != ":9000" {
		t.Errorf("UserAgent/Addr = %q/%q", cfg.UserAgent, cfg.Server.Addr)
	}
	if err := cfg.validate(); err != nil {
		t.Errorf("validate() error: %v", err)
	}
}

func TestReadConfigDefaults(t *testing.T) {
	cfg, err := readConfig(filepath.Join(t.TempDir(), "missing.toml"), false)
	if err != nil {
		t.Fatalf("missing implicit config should not fail: %v", err)
	}
	if cfg.RegistryURL != pypi.DefaultBaseURL {
		t.Errorf("RegistryURL = %q, want default", cfg.RegistryURL)
	}
	if cfg.Server.Addr != defaultAddr {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, defaultAddr)
	}
	if cfg.Number != nil {
		t.Errorf("Number = %d, want unset", *cfg.Number)
	}
	if !strings.HasPrefix(cfg.UserAgent, appName+"/") {
		t.Errorf("UserAgent = %q", cfg.UserAgent)
	}
}

func TestReadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", `registry_url = `},
		{"bad duration", `timeout = "soon"`},
		{"unknown key", `colour = "blue"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readConfig(writeConfig(t, tt.content), true)
			if !pderrors.Is(err, pderrors.ErrCodeInvalidConfig) {
				t.Errorf("error = %v, want %s", err, pderrors.ErrCodeInvalidConfig)
			}
		})
	}

	t.Run("explicit missing file", func(t *testing.T) {
		_, err := readConfig(filepath.Join(t.TempDir(), "missing.toml"), true)
		if !pderrors.Is(err, pderrors.ErrCodeInvalidConfig) {
			t.Errorf("error = %v, want %s", err, pderrors.ErrCodeInvalidConfig)
		}
	})
}

func TestConfigValidate(t *testing.T) {
	neg := -2
	tests := []struct {
		name   string
		mutate func(*Config)
		code   pderrors.Code
	}{
		{"bad scheme", func(c *Config) { c.RegistryURL = "ftp://pypi.org" }, pderrors.ErrCodeInvalidConfig},
		{"negative timeout", func(c *Config) { c.Timeout.Duration = -time.Second }, pderrors.ErrCodeInvalidConfig},
		{"negative number", func(c *Config) { c.Number = &neg }, pderrors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(&cfg)
			if err := cfg.validate(); !pderrors.Is(err, tt.code) {
				t.Errorf("validate() = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	t.Run("xdg", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/tmp/custom-config")
		dir, err := configDir()
		if err != nil {
			t.Fatal(err)
		}
		if want := filepath.Join("/tmp/custom-config", appName); dir != want {
			t.Errorf("configDir() = %q, want %q", dir, want)
		}
	})

	t.Run("home", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		dir, err := configDir()
		if err != nil {
			t.Fatal(err)
		}
		home, _ := os.UserHomeDir()
		if want := filepath.Join(home, ".config", appName); dir != want {
			t.Errorf("configDir() = %q, want %q", dir, want)
		}
	})
}

func TestConfigFileDrivesCommand(t *testing.T) {
	srv := testRegistry(t)
	path := writeConfig(t, `
registry_url = "`+srv.URL+`"
library = "requests"
number = 1
`)

	out, err := runCLI(t, "graph", "--config", path)
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	if !strings.Contains(out, "[0] requests 2.32.3") || !strings.Contains(out, "DiGraph with 2 nodes and 1 edges") {
		t.Errorf("config values not applied:\n%s", out)
	}

	// Flags beat the file.
	out, err = runCLI(t, "graph", "--config", path, "-l", "pandas", "-n", "2")
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	if !strings.Contains(out, "[0] pandas 2.2.3") || !strings.Contains(out, "DiGraph with 3 nodes and 2 edges") {
		t.Errorf("flags should override config:\n%s", out)
	}

	// --registry beats registry_url.
	_, err = runCLI(t, "graph", "--config", path, "--registry", "https://127.0.0.1:1", "--timeout", "200ms")
	if !pderrors.Is(err, pderrors.ErrCodeRegistryUnavailable) {
		t.Errorf("error = %v, want %s from flag registry", err, pderrors.ErrCodeRegistryUnavailable)
	}
}
