package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/certscan/config.yml.
type GlobalConfig struct {
	DefaultDir string `yaml:"default_dir,omitempty" json:"default_dir,omitempty"`
	Output     string `yaml:"output,omitempty" json:"output,omitempty"`
	Profile    string `yaml:"profile,omitempty" json:"profile,omitempty"`
	Workers    int    `yaml:"workers,omitempty" json:"workers,omitempty"`
	Tesseract  string `yaml:"tesseract,omitempty" json:"tesseract,omitempty"`
	Pdftoppm   string `yaml:"pdftoppm,omitempty" json:"pdftoppm,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "certscan"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"

	// DefaultOutput is used when neither flags nor config name an output file.
	DefaultOutput = "issn_certificados.xlsx"
)

// Environment variables that override the global config file.
const (
	EnvTesseract = "CERTSCAN_TESSERACT"
	EnvPdftoppm  = "CERTSCAN_PDFTOPPM"
	EnvWorkers   = "CERTSCAN_WORKERS"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/certscan/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file and applies
// environment overrides. Returns an empty config (not an error) if the file
// doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	var cfg GlobalConfig
	if path := GlobalConfigPath(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parsing global config: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.DefaultDir = ExpandTilde(cfg.DefaultDir)
	cfg.Profile = ExpandTilde(cfg.Profile)

	globalConfigCache = &cfg
	return &cfg, nil
}

func (c *GlobalConfig) applyEnv() error {
	if v := os.Getenv(EnvTesseract); v != "" {
		c.Tesseract = v
	}
	if v := os.Getenv(EnvPdftoppm); v != "" {
		c.Pdftoppm = v
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid %s: %q", EnvWorkers, v)
		}
		c.Workers = n
	}
	return nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// ExpandTilde expands a leading ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandTilde(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
