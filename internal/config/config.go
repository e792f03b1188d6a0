package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/genricoloni/standby/internal/domain"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const appName = "standby"

// Settings holds all application configuration
type Settings struct {
	UI struct {
		Color       string `mapstructure:"color"`
		ColorMode   string `mapstructure:"color_mode"`
		Layout      string `mapstructure:"layout"`
		Placeholder string `mapstructure:"placeholder"`
	} `mapstructure:"ui"`
	Artwork struct {
		Enabled      bool `mapstructure:"enabled"`
		SizePixels   int  `mapstructure:"size_pixels"`
		WidthColumns int  `mapstructure:"width_columns"`
	} `mapstructure:"artwork"`
	Timing struct {
		TickMs int `mapstructure:"tick_ms"`
	} `mapstructure:"timing"`
	Display struct {
		KeepAwake bool `mapstructure:"keep_awake"`
	} `mapstructure:"display"`
	Log struct {
		Level string `mapstructure:"level"`
		File  string `mapstructure:"file"`
	} `mapstructure:"log"`
}

// SafeConfig wraps Settings with thread-safe access
type SafeConfig struct {
	mu  sync.RWMutex
	cfg Settings
}

// Get returns a copy of the current settings (thread-safe read)
func (sc *SafeConfig) Get() Settings {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.cfg
}

// Set updates the settings (thread-safe write)
func (sc *SafeConfig) Set(cfg Settings) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.cfg = cfg
}

// AppConfig is the viper-backed application configuration
type AppConfig struct {
	v        *viper.Viper
	settings SafeConfig
	warnings []error // Validation problems found before a logger existed
	changes  chan struct{}
	watch    sync.Once
}

// NewAppConfig loads configuration from
// $XDG_CONFIG_HOME/standby/config.yaml and STANDBY_* environment variables
func NewAppConfig() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir := configDir(); dir != "" {
		v.AddConfigPath(dir)
	}
	return load(v)
}

func load(v *viper.Viper) (*AppConfig, error) {
	setDefaults(v)

	// Environment variable support with STANDBY_ prefix
	v.SetEnvPrefix(strings.ToUpper(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// A missing config file is fine, a broken one is not
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	c := &AppConfig{
		v:       v,
		changes: make(chan struct{}, 1),
	}

	cfg, warnings, err := c.decode()
	if err != nil {
		return nil, err
	}
	c.settings.Set(cfg)
	c.warnings = warnings
	return c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ui.color", defaultColor)
	v.SetDefault("ui.color_mode", defaultColorMode)
	v.SetDefault("ui.layout", string(domain.OrientationAuto))
	v.SetDefault("ui.placeholder", defaultPlaceholder)
	v.SetDefault("artwork.enabled", true)
	v.SetDefault("artwork.size_pixels", defaultArtworkSize)
	v.SetDefault("artwork.width_columns", defaultArtworkColumns)
	v.SetDefault("timing.tick_ms", defaultTickMs)
	v.SetDefault("display.keep_awake", false)
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.file", "")
}

// decode unmarshals the current viper state and repairs invalid fields
func (c *AppConfig) decode() (Settings, []error, error) {
	var cfg Settings
	if err := c.v.Unmarshal(&cfg); err != nil {
		return Settings{}, nil, fmt.Errorf("failed to parse config: %w", err)
	}

	errs := validateConfig(&cfg)
	applyDefaultsForInvalidFields(&cfg, errs)
	return cfg, errs, nil
}

// Watch logs the warnings collected at load time and starts live reload of
// the config file. Reloads are reported on Changes.
func (c *AppConfig) Watch(logger *zap.Logger) {
	c.watch.Do(func() {
		logConfigWarnings(logger, c.warnings)
		c.warnings = nil

		if c.v.ConfigFileUsed() == "" {
			logger.Debug("No config file found, live reload disabled")
			return
		}

		c.v.OnConfigChange(func(e fsnotify.Event) {
			c.reload(logger, e)
		})
		c.v.WatchConfig()
		logger.Info("Watching config file", zap.String("path", c.v.ConfigFileUsed()))
	})
}

func (c *AppConfig) reload(logger *zap.Logger, e fsnotify.Event) {
	cfg, warnings, err := c.decode()
	if err != nil {
		logger.Warn("Ignoring config change", zap.String("path", e.Name), zap.Error(err))
		return
	}
	logConfigWarnings(logger, warnings)
	c.settings.Set(cfg)

	logger.Info("Config reloaded", zap.String("path", e.Name), zap.String("op", e.Op.String()))

	select {
	case c.changes <- struct{}{}:
	default:
		// A reload notification is already pending
	}
}

// Changes delivers a notification after each successful reload
func (c *AppConfig) Changes() <-chan struct{} {
	return c.changes
}

// Settings returns a copy of the current settings
func (c *AppConfig) Settings() Settings {
	return c.settings.Get()
}

func (c *AppConfig) TickInterval() time.Duration {
	return time.Duration(c.settings.Get().Timing.TickMs) * time.Millisecond
}

func (c *AppConfig) ArtworkSize() int {
	return c.settings.Get().Artwork.SizePixels
}

func (c *AppConfig) Placeholder() string {
	return c.settings.Get().UI.Placeholder
}

func (c *AppConfig) KeepAwake() bool {
	return c.settings.Get().Display.KeepAwake
}

// Display returns the rendering settings, which follow live reloads
func (c *AppConfig) Display() domain.DisplaySettings {
	cfg := c.settings.Get()
	return domain.DisplaySettings{
		Color:          cfg.UI.Color,
		ColorMode:      cfg.UI.ColorMode,
		Layout:         domain.Orientation(cfg.UI.Layout),
		ArtworkEnabled: cfg.Artwork.Enabled,
		ArtworkColumns: cfg.Artwork.WidthColumns,
	}
}

// LogLevel returns the configured minimum log level
func (c *AppConfig) LogLevel() zapcore.Level {
	level, err := zapcore.ParseLevel(c.settings.Get().Log.Level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

// LogFile returns the log destination. The terminal belongs to the UI, so
// logs default to $XDG_STATE_HOME/standby/standby.log.
func (c *AppConfig) LogFile() string {
	if file := c.settings.Get().Log.File; file != "" {
		return expandPath(file)
	}

	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), appName+".log")
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, appName, appName+".log")
}

// configDir follows the XDG standard, falling back to ~/.config
func configDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, appName)
}

// expandPath expands environment variables and a leading ~
func expandPath(path string) string {
	path = os.ExpandEnv(path)
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	return path
}
