// Copyright (c) 2026 BVK Chaitanya

package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/bvk/hashes/pushover"
	"github.com/bvk/hashes/telegram"
)

const (
	ConfigFile = "hashes.toml"
	EnvFile    = "hashes.env"

	// EnvPrefix is the prefix for the environment variables that override
	// the config file.
	EnvPrefix = "HASHES_"
)

type Config struct {
	DataDir string `toml:"data_dir"`

	APIKey string `toml:"api_key"`

	Debug bool `toml:"debug"`

	HttpTimeoutSecs int `toml:"http_timeout_secs"`

	DownloadDelaySecs int `toml:"download_delay_secs"`

	WatchIntervalSecs int `toml:"watch_interval_secs"`

	ReconnectDelaySecs int `toml:"reconnect_delay_secs"`

	// StopWatchWhenEmpty completes a watch when all its jobs are gone.
	StopWatchWhenEmpty bool `toml:"stop_watch_when_empty"`

	Pushover *pushover.Keys `toml:"pushover"`

	Telegram *telegram.Secrets `toml:"telegram"`
}

func (v *Config) setDefaults() {
	if len(v.DataDir) == 0 {
		v.DataDir = "."
	}
	if v.HttpTimeoutSecs == 0 {
		v.HttpTimeoutSecs = 30
	}
	if v.DownloadDelaySecs == 0 {
		v.DownloadDelaySecs = 2
	}
	if v.WatchIntervalSecs == 0 {
		v.WatchIntervalSecs = 10
	}
	if v.ReconnectDelaySecs == 0 {
		v.ReconnectDelaySecs = 5
	}
}

func (v *Config) Check() error {
	if v.HttpTimeoutSecs < 0 || v.DownloadDelaySecs < 0 || v.WatchIntervalSecs < 0 || v.ReconnectDelaySecs < 0 {
		return fmt.Errorf("durations in the config cannot be negative: %w", os.ErrInvalid)
	}
	if v.Pushover != nil {
		if err := v.Pushover.Check(); err != nil {
			return err
		}
	}
	if v.Telegram != nil {
		if err := v.Telegram.Check(); err != nil {
			return err
		}
	}
	return nil
}

func (v *Config) HttpTimeout() time.Duration {
	return time.Duration(v.HttpTimeoutSecs) * time.Second
}

func (v *Config) DownloadDelay() time.Duration {
	return time.Duration(v.DownloadDelaySecs) * time.Second
}

func (v *Config) WatchInterval() time.Duration {
	return time.Duration(v.WatchIntervalSecs) * time.Second
}

func (v *Config) ReconnectDelay() time.Duration {
	return time.Duration(v.ReconnectDelaySecs) * time.Second
}

// LoadConfig reads the config file. Missing config file is not an error and
// returns the default config.
func LoadConfig(fpath string) (*Config, error) {
	cfg := new(Config)
	md, err := toml.DecodeFile(fpath, cfg)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("could not load config file %q: %w", fpath, err)
		}
		md = toml.MetaData{}
	}
	for _, key := range md.Undecoded() {
		slog.Warn("unknown key in the config file (ignored)", "file", fpath, "key", key.String())
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	if err := cfg.Check(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides the config values with the HASHES_* environment
// variables.
func (v *Config) ApplyEnv() error {
	if s := os.Getenv(EnvPrefix + "DATA_DIR"); len(s) != 0 {
		v.DataDir = s
	}
	if s := os.Getenv(EnvPrefix + "API_KEY"); len(s) != 0 {
		v.APIKey = strings.TrimSpace(s)
	}
	if s := os.Getenv(EnvPrefix + "DEBUG"); len(s) != 0 {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("invalid %sDEBUG value %q: %w", EnvPrefix, s, err)
		}
		v.Debug = b
	}
	for name, dst := range map[string]*int{
		"HTTP_TIMEOUT_SECS":    &v.HttpTimeoutSecs,
		"DOWNLOAD_DELAY_SECS":  &v.DownloadDelaySecs,
		"WATCH_INTERVAL_SECS":  &v.WatchIntervalSecs,
		"RECONNECT_DELAY_SECS": &v.ReconnectDelaySecs,
	} {
		if s := os.Getenv(EnvPrefix + name); len(s) != 0 {
			n, err := strconv.Atoi(s)
			if err != nil {
				return fmt.Errorf("invalid %s%s value %q: %w", EnvPrefix, name, s, err)
			}
			*dst = n
		}
	}
	appKey, userKey := os.Getenv(EnvPrefix+"PUSHOVER_APP_KEY"), os.Getenv(EnvPrefix+"PUSHOVER_USER_KEY")
	if len(appKey) != 0 || len(userKey) != 0 {
		v.Pushover = &pushover.Keys{ApplicationKey: appKey, UserKey: userKey}
	}
	if s := os.Getenv(EnvPrefix + "TELEGRAM_TOKEN"); len(s) != 0 {
		if v.Telegram == nil {
			v.Telegram = new(telegram.Secrets)
		}
		v.Telegram.BotToken = s
	}
	return nil
}
