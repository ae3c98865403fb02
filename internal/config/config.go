// Package config handles configuration management using Viper
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Cursor    CursorConfig    `mapstructure:"cursor"`
	Toolkit   ToolkitConfig   `mapstructure:"wstk"`
	Dock      DockConfig      `mapstructure:"dock"`
	Wallpaper WallpaperConfig `mapstructure:"wallpaper"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	LogLevel string `mapstructure:"log_level"` // Override LOG_LEVEL env var
}

// CursorConfig selects the pointer theme.
type CursorConfig struct {
	Theme string `mapstructure:"theme"` // Empty means $XCURSOR_THEME or "default"
	Size  int    `mapstructure:"size"`
}

// ToolkitConfig tunes the surface event loop.
type ToolkitConfig struct {
	LeaveDelayMS   int `mapstructure:"leave_delay_ms"`
	ImageCacheSize int `mapstructure:"image_cache_size"`
}

// LeaveDelay returns the pointer-leave debounce as a duration.
func (c ToolkitConfig) LeaveDelay() time.Duration {
	return time.Duration(c.LeaveDelayMS) * time.Millisecond
}

// DockConfig contains dock settings
type DockConfig struct {
	Pinned      []string          `mapstructure:"pinned"`
	Icons       map[string]string `mapstructure:"icons"` // App ID to image path overrides
	IconSize    int               `mapstructure:"icon_size"`
	BatteryPath string            `mapstructure:"battery_path"`
}

// WallpaperConfig contains wallpaper settings
type WallpaperConfig struct {
	Path  string `mapstructure:"path"`
	Color string `mapstructure:"color"` // Named color from golang.org/x/image/colornames
}

var (
	// DefaultConfig provides sensible defaults
	DefaultConfig = Config{
		Logging: LoggingConfig{
			LogLevel: "", // Empty means use LOG_LEVEL env var
		},
		Cursor: CursorConfig{
			Theme: "",
			Size:  24,
		},
		Toolkit: ToolkitConfig{
			LeaveDelayMS:   300,
			ImageCacheSize: 64,
		},
		Dock: DockConfig{
			Pinned:      []string{},
			Icons:       map[string]string{},
			IconSize:    48,
			BatteryPath: "/sys/class/power_supply/BAT0",
		},
		Wallpaper: WallpaperConfig{
			Path:  "",
			Color: "darkslategray",
		},
	}

	// Global config instance
	cfg *Config

	// Override config path if set
	configPathOverride string
)

// SetConfigPath allows overriding the config path
func SetConfigPath(path string) {
	configPathOverride = path
}

// Init initializes the configuration system
func Init() error {
	viper.SetConfigName("waysmoke")
	viper.SetConfigType("toml")

	if configPathOverride != "" {
		viper.SetConfigFile(configPathOverride)
	} else {
		viper.AddConfigPath(filepath.Join(xdg.ConfigHome, "waysmoke"))
		viper.AddConfigPath("/etc/waysmoke")
		viper.AddConfigPath(".")
	}

	viper.SetDefault("logging.log_level", DefaultConfig.Logging.LogLevel)

	viper.SetDefault("cursor.theme", DefaultConfig.Cursor.Theme)
	viper.SetDefault("cursor.size", DefaultConfig.Cursor.Size)

	viper.SetDefault("wstk.leave_delay_ms", DefaultConfig.Toolkit.LeaveDelayMS)
	viper.SetDefault("wstk.image_cache_size", DefaultConfig.Toolkit.ImageCacheSize)

	viper.SetDefault("dock.pinned", DefaultConfig.Dock.Pinned)
	viper.SetDefault("dock.icons", DefaultConfig.Dock.Icons)
	viper.SetDefault("dock.icon_size", DefaultConfig.Dock.IconSize)
	viper.SetDefault("dock.battery_path", DefaultConfig.Dock.BatteryPath)

	viper.SetDefault("wallpaper.path", DefaultConfig.Wallpaper.Path)
	viper.SetDefault("wallpaper.color", DefaultConfig.Wallpaper.Color)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(configPathOverride != "" && os.IsNotExist(err)) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	c := &Config{}
	if err := viper.Unmarshal(c); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	cfg = c

	return nil
}

// Get returns the current configuration
func Get() *Config {
	if cfg == nil {
		return &DefaultConfig
	}
	return cfg
}

// Set sets the current configuration (for testing)
func Set(c *Config) {
	cfg = c
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	if configPathOverride != "" {
		return configPathOverride
	}

	if viper.ConfigFileUsed() != "" {
		return viper.ConfigFileUsed()
	}

	return filepath.Join(xdg.ConfigHome, "waysmoke", "waysmoke.toml")
}
