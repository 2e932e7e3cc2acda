package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppDir is the per-user directory holding the database, log file and
// optional config.yaml.
const AppDir = ".kiddotime"

type Config struct {
	GatewayURL            string `yaml:"gateway_url"`
	GatewayAPIKey         string `yaml:"gateway_api_key"`
	GatewayTimeoutSeconds int    `yaml:"gateway_timeout_seconds"`
	DatabasePath          string `yaml:"database_path"`
	LogPath               string `yaml:"log_path"`
	AvailableTimeMinutes  int    `yaml:"available_time_minutes"`
}

func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	dir := filepath.Join(home, AppDir)
	return Config{
		GatewayURL:            "http://localhost:8787",
		GatewayTimeoutSeconds: 20,
		DatabasePath:          filepath.Join(dir, "kiddotime.db"),
		LogPath:               filepath.Join(dir, "kiddotime.log"),
		AvailableTimeMinutes:  120,
	}
}

// Load layers the optional config file over the defaults, then applies
// KIDDOTIME_* environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, AppDir, "config.yaml")
		}
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// defaults apply
		case err != nil:
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}
	return FromEnv(cfg), nil
}

// FromEnv applies environment overrides on top of the given base.
func FromEnv(base Config) Config {
	cfg := base
	if v := strings.TrimSpace(os.Getenv("KIDDOTIME_GATEWAY_URL")); v != "" {
		cfg.GatewayURL = v
	}
	if v := strings.TrimSpace(os.Getenv("KIDDOTIME_GATEWAY_API_KEY")); v != "" {
		cfg.GatewayAPIKey = v
	}
	if v, ok := getEnvInt("KIDDOTIME_GATEWAY_TIMEOUT_SECONDS"); ok && v > 0 {
		cfg.GatewayTimeoutSeconds = v
	}
	if v := strings.TrimSpace(os.Getenv("KIDDOTIME_DB_PATH")); v != "" {
		cfg.DatabasePath = v
	}
	if v := strings.TrimSpace(os.Getenv("KIDDOTIME_LOG_PATH")); v != "" {
		cfg.LogPath = v
	}
	if v, ok := getEnvInt("KIDDOTIME_AVAILABLE_MINUTES"); ok && v > 0 {
		cfg.AvailableTimeMinutes = v
	}
	return cfg
}

// EnsureDirs creates the directories the database and log file live in.
func (c Config) EnsureDirs() error {
	for _, path := range []string{c.DatabasePath, c.LogPath} {
		dir := filepath.Dir(path)
		if dir == "." || dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: ensure dir %s: %w", dir, err)
		}
	}
	return nil
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
