package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// NOTE: This file provides the configuration model and full YAML-based
// load/save behavior, including first-run config creation and 0600
// permissions. The API credential is deliberately not part of this file;
// it comes from the OPENWEATHER_API_KEY environment variable.

// DefaultBaseURL is the OpenWeather One Call 3.0 endpoint.
const DefaultBaseURL = "https://api.openweathermap.org/data/3.0/onecall"

// Config is the top-level application configuration.
type Config struct {
	// Location is a human-friendly label for the configured coordinates.
	// It appears in logs only; the panel layout has no slot for it.
	Location string `yaml:"location" json:"location"`

	// Latitude / Longitude select the forecast point.
	Latitude  float64 `yaml:"latitude" json:"latitude"`
	Longitude float64 `yaml:"longitude" json:"longitude"`

	// Units is the OpenWeather unit system: "metric", "imperial" or
	// "standard". It is passed through to the provider unchanged.
	Units string `yaml:"units" json:"units"`

	// BaseURL is the One Call endpoint. Overridable for tests.
	BaseURL string `yaml:"base_url" json:"base_url"`

	// FetchTimeoutSeconds bounds the single outbound HTTP request.
	FetchTimeoutSeconds int `yaml:"fetch_timeout_seconds" json:"fetch_timeout_seconds"`

	// Font is the path to a TrueType/OpenType font file (.ttf or .ttc).
	Font string `yaml:"font" json:"font"`

	// Template is the path to the 800x480 background image. A missing file
	// is tolerated (blank white canvas); a wrong-sized file is not.
	Template string `yaml:"template" json:"template"`

	// IconDir holds per-condition bitmaps named <icon_code>.png.
	IconDir string `yaml:"icon_dir" json:"icon_dir"`

	// LogFile is the rotating log file path. Empty disables the file sink.
	LogFile string `yaml:"log_file" json:"log_file"`

	// LogMaxSizeMB is the size at which the log file rolls over.
	LogMaxSizeMB int `yaml:"log_max_size_mb" json:"log_max_size_mb"`

	// LogBackups is the number of rotated log files kept.
	LogBackups int `yaml:"log_backups" json:"log_backups"`

	// Refresh is a cron-style schedule string (e.g. "*/15 * * * *") used
	// only in daemon mode; single-shot runs ignore it.
	Refresh string `yaml:"refresh" json:"refresh"`
}

// DefaultConfig returns an in-memory default configuration. The coordinates
// default to Hervantajärvi, the location the original deployment watched.
func DefaultConfig() *Config {
	return &Config{
		Location:            "Hervantajärvi",
		Latitude:            61.4285,
		Longitude:           23.8783,
		Units:               "metric",
		BaseURL:             DefaultBaseURL,
		FetchTimeoutSeconds: 10,
		Font:                "font/Font.ttc",
		Template:            "pic/template.png",
		IconDir:             "pic/icon",
		LogFile:             "weather_display.log",
		LogMaxSizeMB:        1,
		LogBackups:          3,
		Refresh:             "*/15 * * * *",
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs (e.g., older versions) still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()

	if c.Location == "" {
		c.Location = def.Location
	}
	// Zero-valued numerics are treated as unset, like the other fields
	// below. The cost is that a literal (0,0) — a point in the Gulf of
	// Guinea — cannot be configured.
	if c.Latitude == 0 && c.Longitude == 0 {
		c.Latitude = def.Latitude
		c.Longitude = def.Longitude
	}
	switch c.Units {
	case "metric", "imperial", "standard":
		// ok
	default:
		c.Units = "metric"
	}
	if c.BaseURL == "" {
		c.BaseURL = def.BaseURL
	}
	if c.FetchTimeoutSeconds <= 0 {
		c.FetchTimeoutSeconds = def.FetchTimeoutSeconds
	}
	if c.Font == "" {
		c.Font = def.Font
	}
	if c.Template == "" {
		c.Template = def.Template
	}
	if c.IconDir == "" {
		c.IconDir = def.IconDir
	}
	if c.LogMaxSizeMB <= 0 {
		c.LogMaxSizeMB = def.LogMaxSizeMB
	}
	if c.LogBackups <= 0 {
		c.LogBackups = def.LogBackups
	}
	if c.Refresh == "" {
		c.Refresh = def.Refresh
	}
}

// APIKey reads the OpenWeather credential from the environment.
func APIKey() (string, error) {
	key := os.Getenv("OPENWEATHER_API_KEY")
	if key == "" {
		return "", errors.New("config: OPENWEATHER_API_KEY is not set")
	}
	return key, nil
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".epdweather-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	// Flush and close before chmod/rename.
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	// Set permissions to 0600 on temp file before rename.
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	// Rename over the target path.
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}
