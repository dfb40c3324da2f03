// Package config collects runtime configuration for the catalog core from
// an optional TOML file overlaid by environment variables. Environment
// values win so deployments can override a checked-in file per instance.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Defaults applied when neither file nor environment sets a value.
const (
	DefaultSlotName       = "products"
	DefaultDebounceWindow = 200 * time.Millisecond
	DefaultPollInterval   = 250 * time.Millisecond
)

// Config holds the knobs for slot storage, the filter pipeline and the CLI.
type Config struct {
	StorageDriver string `toml:"storage_driver"` // memory|fs|sqlite|postgres|s3
	SlotName      string `toml:"slot_name"`

	SQLitePath  string `toml:"sqlite_path"`
	PostgresDSN string `toml:"postgres_dsn"`
	FSRoot      string `toml:"fs_root"`

	S3Bucket    string `toml:"s3_bucket"`
	S3Region    string `toml:"s3_region"`
	S3Endpoint  string `toml:"s3_endpoint"`
	S3PathStyle bool   `toml:"s3_path_style"`

	DebounceWindowMS    int `toml:"debounce_window_ms"`
	WatchPollIntervalMS int `toml:"watch_poll_interval_ms"`
}

// DebounceWindow returns the filter pipeline quiescence window.
func (c Config) DebounceWindow() time.Duration {
	if c.DebounceWindowMS <= 0 {
		return DefaultDebounceWindow
	}
	return time.Duration(c.DebounceWindowMS) * time.Millisecond
}

// WatchPollInterval returns the slot watcher polling interval.
func (c Config) WatchPollInterval() time.Duration {
	if c.WatchPollIntervalMS <= 0 {
		return DefaultPollInterval
	}
	return time.Duration(c.WatchPollIntervalMS) * time.Millisecond
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func boolenv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// Load reads the TOML file at path (or at CATALOGCORE_CONFIG when path is
// empty), then overlays environment variables. A missing file is not an
// error; a malformed one is.
func Load(path string) (Config, error) {
	if path == "" {
		path = os.Getenv("CATALOGCORE_CONFIG")
	}
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// fall through to env and defaults
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.StorageDriver = getenv("CATALOGCORE_STORAGE_DRIVER", cfg.StorageDriver)
	cfg.SlotName = getenv("CATALOGCORE_SLOT_NAME", cfg.SlotName)
	cfg.SQLitePath = getenv("CATALOGCORE_SQLITE_PATH", cfg.SQLitePath)
	cfg.PostgresDSN = getenv("CATALOGCORE_POSTGRES_DSN", cfg.PostgresDSN)
	cfg.FSRoot = getenv("CATALOGCORE_FS_ROOT", cfg.FSRoot)
	cfg.S3Bucket = getenv("CATALOGCORE_SLOT_S3_BUCKET", cfg.S3Bucket)
	cfg.S3Region = getenv("CATALOGCORE_SLOT_S3_REGION", cfg.S3Region)
	cfg.S3Endpoint = getenv("CATALOGCORE_SLOT_S3_ENDPOINT", cfg.S3Endpoint)
	cfg.S3PathStyle = boolenv("CATALOGCORE_SLOT_S3_PATH_STYLE", cfg.S3PathStyle)
	cfg.DebounceWindowMS = atoienv("CATALOGCORE_DEBOUNCE_WINDOW_MS", cfg.DebounceWindowMS)
	cfg.WatchPollIntervalMS = atoienv("CATALOGCORE_WATCH_POLL_INTERVAL_MS", cfg.WatchPollIntervalMS)

	if cfg.SlotName == "" {
		cfg.SlotName = DefaultSlotName
	}
	return cfg, nil
}
