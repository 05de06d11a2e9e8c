// Package config reads the GeoSnap settings file
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	DefaultConfigPath = ".geosnap/config.json"

	DefaultPort      = 8080
	DefaultCacheSize = 500
	DefaultLanguage  = "en"
)

// Options are the settings of a GeoSnap instance
type Options struct {
	LibDir    string `json:"libdir"`
	Port      uint   `json:"port"`
	CacheSize int    `json:"cacheSize"`
	Language  string `json:"language"`
	Geocoding bool   `json:"geocoding"`
	Watch     bool   `json:"watch"`
	Prefetch  bool   `json:"prefetch"`
	// Folders are scanned and added on startup
	Folders []string `json:"folders,omitempty"`
}

// Defaults returns the options used when no config file exists, relative to
// the given home directory
func Defaults(home string) Options {
	return Options{
		LibDir:    filepath.Join(home, ".geosnap"),
		Port:      DefaultPort,
		CacheSize: DefaultCacheSize,
		Language:  DefaultLanguage,
		Geocoding: true,
		Watch:     true,
		Prefetch:  true,
	}
}

// Path returns the location of the config file in the home directory
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, DefaultConfigPath), nil
}

// Read returns the options from ~/.geosnap/config.json, or the defaults if
// the file does not exist
func Read() (Options, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Options{}, fmt.Errorf("failed to get user home directory: %w", err)
	}
	return ReadFile(filepath.Join(home, DefaultConfigPath), Defaults(home))
}

// ReadFile reads the options at path on top of defaults. A missing file is
// not an error.
func ReadFile(path string, defaults Options) (Options, error) {
	cfg := defaults
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	} else if err != nil {
		return cfg, fmt.Errorf("failed to read config file at %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return defaults, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultCacheSize
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.LibDir == "" {
		cfg.LibDir = defaults.LibDir
	}
	return cfg, nil
}

// Write stores o at path, creating the directory if needed
func Write(path string, o Options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(&o, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
