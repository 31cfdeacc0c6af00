package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/yosuke-furukawa/json5/encoding/json5"
)

const (
	DirName        = "pawpals"
	ConfigFileName = "config.json"
)

// FileConfig holds the command-line client defaults. Values are read from
// a JSON5 file in the user config directory, then PAWPALS_* variables.
type FileConfig struct {
	DatabaseURL     string  `json:"database_url"`
	GeocoderToken   string  `json:"geocoder_token"`
	DefaultAddress  string  `json:"default_address"`
	DefaultDistance float64 `json:"default_distance"`
	DefaultFormat   string  `json:"default_format"`
}

// DefaultFileConfig returns defaults with environment overrides applied
func DefaultFileConfig() FileConfig {
	return FileConfig{
		DatabaseURL:     getEnv("PAWPALS_DATABASE_URL", getEnv("DATABASE_URL", "")),
		GeocoderToken:   getEnv("PAWPALS_GEOCODER_TOKEN", getEnv("MAPBOX_ACCESS_TOKEN", "")),
		DefaultAddress:  getEnv("PAWPALS_DEFAULT_ADDRESS", ""),
		DefaultDistance: getEnvFloat("PAWPALS_DEFAULT_DISTANCE", 5),
		DefaultFormat:   getEnv("PAWPALS_DEFAULT_FORMAT", "table"),
	}
}

// ConfigDir is the per-user directory holding the client config
func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, DirName), nil
}

// ConfigPath is the location of the client config file
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// LoadFile reads the client config. A missing or empty file yields the
// defaults. Environment variables win over the file.
func LoadFile() (FileConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultFileConfig(), err
	}
	return LoadFileFrom(path)
}

// LoadFileFrom reads the client config at path
func LoadFileFrom(path string) (FileConfig, error) {
	cfg := DefaultFileConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}

	var file FileConfig
	if err := json5.Unmarshal(data, &file); err != nil {
		return cfg, err
	}
	return mergeFile(cfg, file), nil
}

// mergeFile fills unset environment values from the file
func mergeFile(env, file FileConfig) FileConfig {
	out := file
	if v := os.Getenv("PAWPALS_DATABASE_URL"); v != "" || out.DatabaseURL == "" {
		out.DatabaseURL = env.DatabaseURL
	}
	if v := os.Getenv("PAWPALS_GEOCODER_TOKEN"); v != "" || out.GeocoderToken == "" {
		out.GeocoderToken = env.GeocoderToken
	}
	if v := os.Getenv("PAWPALS_DEFAULT_ADDRESS"); v != "" || out.DefaultAddress == "" {
		out.DefaultAddress = env.DefaultAddress
	}
	if v := os.Getenv("PAWPALS_DEFAULT_DISTANCE"); v != "" || out.DefaultDistance <= 0 {
		out.DefaultDistance = env.DefaultDistance
	}
	if v := os.Getenv("PAWPALS_DEFAULT_FORMAT"); v != "" || out.DefaultFormat == "" {
		out.DefaultFormat = env.DefaultFormat
	}
	return out
}

// InitFile writes a default config file if none exists. It returns the
// path written, or "" when the file was already there.
func InitFile() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return InitFileIn(dir)
}

// InitFileIn is InitFile rooted at dir
func InitFileIn(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	data, err := json.MarshalIndent(DefaultFileConfig(), "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return "", err
	}
	return path, nil
}
