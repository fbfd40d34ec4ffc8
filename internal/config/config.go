// Package config resolves client settings from ~/.ff1c/config.toml and
// FF1C_* environment variables. Command-line flags are applied by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"

	"github.com/bnema/ff1c/internal/logging"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = ".ff1c"
	statusFile = "status.toml"

	keyServerAddress        = "server.address"
	keyServerPassword       = "server.password"
	keyServerName           = "server.name"
	keyBridgeAddress        = "bridge.address"
	keyBridgeConnectTimeout = "bridge.connect_timeout"
	keyBridgeDrainTimeout   = "bridge.drain_timeout"
	keyBridgeReadTimeout    = "bridge.read_timeout"
	keyBridgeRetryPause     = "bridge.retry_pause"
	keyTablesItems          = "tables.items"
	keyTablesLocations      = "tables.locations"
	keyStatusPath           = "status.path"
	keyStatusStaleAfter     = "status.stale_after"
	keyLogLevel             = "log.level"
	keyLogFile              = "log.file"
)

type Config struct {
	Server ServerConfig
	Bridge BridgeConfig
	Tables TablesConfig
	Status StatusConfig
	Log    LogConfig
	// File is the config file that was read, empty when none was found.
	File string
}

type ServerConfig struct {
	Address  string
	Password string
	Name     string
}

type BridgeConfig struct {
	Address        string
	ConnectTimeout time.Duration
	DrainTimeout   time.Duration
	ReadTimeout    time.Duration
	RetryPause     time.Duration
}

type TablesConfig struct {
	Items     string
	Locations string
}

type StatusConfig struct {
	Path       string
	StaleAfter time.Duration
}

type LogConfig struct {
	Level string
	File  string
}

// envOverlay holds FF1C_* variables. Unset variables leave the zero value,
// which means "keep the file or default value".
type envOverlay struct {
	ServerAddress        string        `env:"FF1C_SERVER_ADDRESS"`
	ServerPassword       string        `env:"FF1C_SERVER_PASSWORD"`
	ServerName           string        `env:"FF1C_SERVER_NAME"`
	BridgeAddress        string        `env:"FF1C_BRIDGE_ADDRESS"`
	BridgeConnectTimeout time.Duration `env:"FF1C_BRIDGE_CONNECT_TIMEOUT"`
	BridgeDrainTimeout   time.Duration `env:"FF1C_BRIDGE_DRAIN_TIMEOUT"`
	BridgeReadTimeout    time.Duration `env:"FF1C_BRIDGE_READ_TIMEOUT"`
	BridgeRetryPause     time.Duration `env:"FF1C_BRIDGE_RETRY_PAUSE"`
	TablesItems          string        `env:"FF1C_TABLES_ITEMS"`
	TablesLocations      string        `env:"FF1C_TABLES_LOCATIONS"`
	StatusPath           string        `env:"FF1C_STATUS_PATH"`
	LogLevel             string        `env:"FF1C_LOG_LEVEL"`
	LogFile              string        `env:"FF1C_LOG_FILE"`
}

// Load reads the config file from ~/.ff1c unless cfg already points at one.
// A missing file is not an error.
func Load(cfg *viper.Viper) (Config, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("resolve home directory: %w", err)
	}
	baseDir := filepath.Join(homeDir, configDir)

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(baseDir)
	setDefaults(cfg, baseDir)

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	out := Config{
		Server: ServerConfig{
			Address:  cfg.GetString(keyServerAddress),
			Password: cfg.GetString(keyServerPassword),
			Name:     cfg.GetString(keyServerName),
		},
		Bridge: BridgeConfig{
			Address:        cfg.GetString(keyBridgeAddress),
			ConnectTimeout: cfg.GetDuration(keyBridgeConnectTimeout),
			DrainTimeout:   cfg.GetDuration(keyBridgeDrainTimeout),
			ReadTimeout:    cfg.GetDuration(keyBridgeReadTimeout),
			RetryPause:     cfg.GetDuration(keyBridgeRetryPause),
		},
		Tables: TablesConfig{
			Items:     cfg.GetString(keyTablesItems),
			Locations: cfg.GetString(keyTablesLocations),
		},
		Status: StatusConfig{
			Path:       cfg.GetString(keyStatusPath),
			StaleAfter: cfg.GetDuration(keyStatusStaleAfter),
		},
		Log: LogConfig{
			Level: cfg.GetString(keyLogLevel),
			File:  cfg.GetString(keyLogFile),
		},
		File: cfg.ConfigFileUsed(),
	}

	var overlay envOverlay
	if err := env.Parse(&overlay); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	out.applyEnv(overlay)

	if err := out.Validate(); err != nil {
		return Config{}, err
	}

	return out, nil
}

func setDefaults(cfg *viper.Viper, baseDir string) {
	cfg.SetDefault(keyBridgeAddress, "localhost:52980")
	cfg.SetDefault(keyBridgeConnectTimeout, 10*time.Second)
	cfg.SetDefault(keyBridgeDrainTimeout, 1500*time.Millisecond)
	cfg.SetDefault(keyBridgeReadTimeout, 5*time.Second)
	cfg.SetDefault(keyBridgeRetryPause, time.Duration(0))
	cfg.SetDefault(keyTablesItems, filepath.Join(baseDir, "items.json"))
	cfg.SetDefault(keyTablesLocations, filepath.Join(baseDir, "locations.json"))
	cfg.SetDefault(keyStatusPath, filepath.Join(baseDir, statusFile))
	cfg.SetDefault(keyStatusStaleAfter, time.Minute)
	cfg.SetDefault(keyLogLevel, logging.LevelInfo)
}

func (c *Config) applyEnv(o envOverlay) {
	setString(&c.Server.Address, o.ServerAddress)
	setString(&c.Server.Password, o.ServerPassword)
	setString(&c.Server.Name, o.ServerName)
	setString(&c.Bridge.Address, o.BridgeAddress)
	setDuration(&c.Bridge.ConnectTimeout, o.BridgeConnectTimeout)
	setDuration(&c.Bridge.DrainTimeout, o.BridgeDrainTimeout)
	setDuration(&c.Bridge.ReadTimeout, o.BridgeReadTimeout)
	setDuration(&c.Bridge.RetryPause, o.BridgeRetryPause)
	setString(&c.Tables.Items, o.TablesItems)
	setString(&c.Tables.Locations, o.TablesLocations)
	setString(&c.Status.Path, o.StatusPath)
	setString(&c.Log.Level, o.LogLevel)
	setString(&c.Log.File, o.LogFile)
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func setDuration(dst *time.Duration, value time.Duration) {
	if value != 0 {
		*dst = value
	}
}

func (c Config) Validate() error {
	var errs []error

	if !logging.ValidLevel(c.Log.Level) {
		errs = append(errs, fmt.Errorf("invalid log level %q", c.Log.Level))
	}
	if c.Bridge.Address == "" {
		errs = append(errs, errors.New("bridge address is empty"))
	}
	if c.Status.Path == "" {
		errs = append(errs, errors.New("status path is empty"))
	}
	for name, d := range map[string]time.Duration{
		keyBridgeConnectTimeout: c.Bridge.ConnectTimeout,
		keyBridgeDrainTimeout:   c.Bridge.DrainTimeout,
		keyBridgeReadTimeout:    c.Bridge.ReadTimeout,
		keyBridgeRetryPause:     c.Bridge.RetryPause,
		keyStatusStaleAfter:     c.Status.StaleAfter,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", name))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
