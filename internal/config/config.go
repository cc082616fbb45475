package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/panedesk/internal/geometry"
	"github.com/1broseidon/panedesk/internal/runtimepath"
)

// ViewportSource selects where the daemon learns the desktop size.
type ViewportSource string

const (
	ViewportStatic   ViewportSource = "static"   // Fixed width and height from config.
	ViewportX11      ViewportSource = "x11"      // Work area of the monitor under the pointer.
	ViewportTerminal ViewportSource = "terminal" // Controlling terminal size times cell metrics.
	ViewportWeb      ViewportSource = "web"      // Last size reported by a web front-end.
)

// ViewportConfig configures the viewport provider.
type ViewportConfig struct {
	Source ViewportSource `yaml:"source"`
	Width  float64        `yaml:"width"`  // Static size, also the fallback for other sources
	Height float64        `yaml:"height"`
}

// WindowDefaults is the geometry newly opened windows get.
type WindowDefaults struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// TerminalConfig holds the cell metrics used to turn a terminal grid into
// viewport units.
type TerminalConfig struct {
	CellWidth  float64 `yaml:"cell_width"`
	CellHeight float64 `yaml:"cell_height"`
}

// WebConfig configures the HTTP/websocket front-end.
type WebConfig struct {
	Enabled bool   `yaml:"enabled"`
	Bind    string `yaml:"bind"`
	Port    int    `yaml:"port"`
}

// LoggingConfig configures the daemon log file.
type LoggingConfig struct {
	File       string `yaml:"file,omitempty"` // Defaults to ~/.local/share/panedesk/panedesk.log
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Config holds the application configuration.
type Config struct {
	Viewport       ViewportConfig `yaml:"viewport"`
	WindowDefaults WindowDefaults `yaml:"window_defaults"`
	Terminal       TerminalConfig `yaml:"terminal"`
	Web            WebConfig      `yaml:"web"`
	LogLevel       string         `yaml:"log_level"`
	Logging        LoggingConfig  `yaml:"logging"`
}

func DefaultConfig() *Config {
	return &Config{
		Viewport: ViewportConfig{
			Source: ViewportStatic,
			Width:  1280,
			Height: 800,
		},
		WindowDefaults: WindowDefaults{X: 300, Y: 300, Width: 320, Height: 320},
		Terminal:       TerminalConfig{CellWidth: 8, CellHeight: 16},
		Web: WebConfig{
			Enabled: false,
			Bind:    "127.0.0.1",
			Port:    7420,
		},
		LogLevel: "info",
		Logging: LoggingConfig{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
	}
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/panedesk/config.yaml, defaulting
// to ~/.config/panedesk/config.yaml.
func DefaultConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "panedesk", "config.yaml"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "panedesk", "config.yaml"), nil
}

// WindowGeometry returns the default window rectangle.
func (c *Config) WindowGeometry() geometry.Rect {
	return geometry.Rect{
		X:      c.WindowDefaults.X,
		Y:      c.WindowDefaults.Y,
		Width:  c.WindowDefaults.Width,
		Height: c.WindowDefaults.Height,
	}
}

// StaticViewport returns the configured viewport size.
func (c *Config) StaticViewport() geometry.Size {
	return geometry.Size{Width: c.Viewport.Width, Height: c.Viewport.Height}
}

// WebAddr returns the host:port the web front-end listens on.
func (c *Config) WebAddr() string {
	return net.JoinHostPort(c.Web.Bind, strconv.Itoa(c.Web.Port))
}

// GetLoggingConfig returns the logging configuration with defaults applied.
func (c *Config) GetLoggingConfig() LoggingConfig {
	if c == nil {
		return LoggingConfig{}
	}
	cfg := c.Logging
	if cfg.File == "" {
		if path, err := runtimepath.LogPath(); err == nil {
			cfg.File = path
		} else {
			// Last resort fallback - use current directory
			cfg.File = "panedesk.log"
		}
	}
	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = 10
	}
	if cfg.MaxBackups == 0 {
		cfg.MaxBackups = 3
	}
	if cfg.MaxAgeDays == 0 {
		cfg.MaxAgeDays = 7
	}
	return cfg
}

// Marshal renders the effective configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// Validate performs strict validation of the effective configuration.
func (c *Config) Validate() error {
	switch c.Viewport.Source {
	case ViewportStatic, ViewportX11, ViewportTerminal, ViewportWeb:
	default:
		return &ValidationError{Path: "viewport.source", Err: fmt.Errorf("viewport.source must be one of: static, x11, terminal, web")}
	}
	if c.Viewport.Width <= 0 {
		return &ValidationError{Path: "viewport.width", Err: fmt.Errorf("viewport.width must be > 0")}
	}
	if c.Viewport.Height <= 0 {
		return &ValidationError{Path: "viewport.height", Err: fmt.Errorf("viewport.height must be > 0")}
	}

	if c.WindowDefaults.Width < geometry.MinSize {
		return &ValidationError{Path: "window_defaults.width", Err: fmt.Errorf("window_defaults.width must be >= %d", geometry.MinSize)}
	}
	if c.WindowDefaults.Height < geometry.MinSize {
		return &ValidationError{Path: "window_defaults.height", Err: fmt.Errorf("window_defaults.height must be >= %d", geometry.MinSize)}
	}

	if c.Terminal.CellWidth <= 0 {
		return &ValidationError{Path: "terminal.cell_width", Err: fmt.Errorf("terminal.cell_width must be > 0")}
	}
	if c.Terminal.CellHeight <= 0 {
		return &ValidationError{Path: "terminal.cell_height", Err: fmt.Errorf("terminal.cell_height must be > 0")}
	}

	if strings.TrimSpace(c.Web.Bind) == "" {
		return &ValidationError{Path: "web.bind", Err: fmt.Errorf("web.bind must not be empty")}
	}
	if c.Web.Port < 1 || c.Web.Port > 65535 {
		return &ValidationError{Path: "web.port", Err: fmt.Errorf("web.port must be between 1 and 65535")}
	}
	if c.Viewport.Source == ViewportWeb && !c.Web.Enabled {
		return &ValidationError{Path: "viewport.source", Err: fmt.Errorf("viewport.source web requires web.enabled")}
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warn, error")}
	}
	if c.Logging.MaxSizeMB < 0 {
		return &ValidationError{Path: "logging.max_size_mb", Err: fmt.Errorf("max_size_mb must be >= 0")}
	}
	if c.Logging.MaxBackups < 0 {
		return &ValidationError{Path: "logging.max_backups", Err: fmt.Errorf("max_backups must be >= 0")}
	}
	if c.Logging.MaxAgeDays < 0 {
		return &ValidationError{Path: "logging.max_age_days", Err: fmt.Errorf("max_age_days must be >= 0")}
	}

	return nil
}
