package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGlobalConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	if got, want := GlobalConfigPath(), "/custom/config/certscan/config.yml"; got != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", got, want)
	}

	// Test with empty XDG_CONFIG_HOME (should use ~/.config)
	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	if got, want := GlobalConfigPath(), filepath.Join(home, ".config", "certscan", "config.yml"); got != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", got, want)
	}
}

func TestLoadGlobalConfig_NotFound(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(EnvWorkers, "")
	t.Setenv(EnvTesseract, "")
	t.Setenv(EnvPdftoppm, "")

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if *cfg != (GlobalConfig{}) {
		t.Errorf("LoadGlobalConfig() = %+v, want empty", *cfg)
	}
}

func TestLoadGlobalConfig_Valid(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	tmpDir := t.TempDir()
	writeGlobalConfig(t, tmpDir, `default_dir: ~/certificados
output: salida.csv
workers: 4
tesseract: /opt/bin/tesseract
`)
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	t.Setenv(EnvWorkers, "")
	t.Setenv(EnvTesseract, "")
	t.Setenv(EnvPdftoppm, "")

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}

	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "certificados"); cfg.DefaultDir != want {
		t.Errorf("DefaultDir = %q, want %q", cfg.DefaultDir, want)
	}
	if cfg.Output != "salida.csv" {
		t.Errorf("Output = %q, want salida.csv", cfg.Output)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Workers)
	}
	if cfg.Tesseract != "/opt/bin/tesseract" {
		t.Errorf("Tesseract = %q, want /opt/bin/tesseract", cfg.Tesseract)
	}
}

func TestLoadGlobalConfig_EnvOverrides(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	tmpDir := t.TempDir()
	writeGlobalConfig(t, tmpDir, "workers: 2\ntesseract: /usr/bin/tesseract\n")
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	t.Setenv(EnvWorkers, "8")
	t.Setenv(EnvTesseract, "/custom/tesseract")
	t.Setenv(EnvPdftoppm, "/custom/pdftoppm")

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if cfg.Workers != 8 || cfg.Tesseract != "/custom/tesseract" || cfg.Pdftoppm != "/custom/pdftoppm" {
		t.Errorf("LoadGlobalConfig() = %+v, want env overrides applied", *cfg)
	}
}

func TestLoadGlobalConfig_InvalidWorkersEnv(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(EnvWorkers, "many")

	if _, err := LoadGlobalConfig(); err == nil {
		t.Error("LoadGlobalConfig() expected error for invalid workers")
	}
}

func TestLoadGlobalConfig_InvalidYAML(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	tmpDir := t.TempDir()
	writeGlobalConfig(t, tmpDir, "workers: [not, an, int\n")
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	if _, err := LoadGlobalConfig(); err == nil {
		t.Error("LoadGlobalConfig() expected error for invalid YAML")
	}
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	tests := []struct {
		input string
		want  string
	}{
		{"~/Documents", filepath.Join(home, "Documents")},
		{"~", home},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ExpandTilde(tt.input); got != tt.want {
			t.Errorf("ExpandTilde(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func writeGlobalConfig(t *testing.T, configHome, content string) {
	t.Helper()
	dir := filepath.Join(configHome, GlobalConfigDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, GlobalConfigFile), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}
