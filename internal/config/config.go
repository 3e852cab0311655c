package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the in-memory representation of ~/.orient/orient.yaml.
type Config struct {
	// CatalogPath is the program corpus (JSON array or JSON Lines).
	CatalogPath string `yaml:"catalog_path"`
	// IndexDir holds the semantic index built by 'orient index'.
	IndexDir string `yaml:"index_dir"`
	// RegionsFile and DomainsFile override the embedded static tables.
	RegionsFile string `yaml:"regions_file,omitempty"`
	DomainsFile string `yaml:"domains_file,omitempty"`

	TopK            int           `yaml:"top_k"`
	OverFetchFactor int           `yaml:"overfetch_factor"`
	SearchTimeout   time.Duration `yaml:"search_timeout"`
	MetroRegion     string        `yaml:"metro_region,omitempty"`

	LogLevel  string `yaml:"log_level,omitempty"`
	LogFormat string `yaml:"log_format,omitempty"`
}

// OrientDir returns the absolute path to ~/.orient/.
func OrientDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".orient"), nil
}

// ConfigPath returns the absolute path to ~/.orient/orient.yaml.
func ConfigPath() (string, error) {
	dir, err := OrientDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "orient.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// DefaultConfig returns the default Config written on first orient init.
func DefaultConfig() (*Config, error) {
	dir, err := OrientDir()
	if err != nil {
		return nil, err
	}
	return &Config{
		CatalogPath:     filepath.Join(dir, "data", "formations.json"),
		IndexDir:        filepath.Join(dir, "search"),
		TopK:            8,
		OverFetchFactor: 12,
		SearchTimeout:   30 * time.Second,
		MetroRegion:     "Ile-de-France",
		LogLevel:        "warn",
		LogFormat:       "console",
	}, nil
}

// Load reads and parses ~/.orient/orient.yaml. Missing keys keep their
// default values.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}
	cfg, err := DefaultConfig()
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	for _, p := range []*string{&cfg.CatalogPath, &cfg.IndexDir, &cfg.RegionsFile, &cfg.DomainsFile} {
		if *p, err = ExpandPath(*p); err != nil {
			return nil, err
		}
	}
	if cfg.TopK <= 0 {
		return nil, fmt.Errorf("invalid top_k in %s: %d", path, cfg.TopK)
	}
	return cfg, nil
}

// Save marshals cfg and writes it to ~/.orient/orient.yaml.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", filepath.Dir(path), err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}
