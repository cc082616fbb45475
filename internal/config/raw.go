package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawViewport struct {
	Source *ViewportSource `yaml:"source"`
	Width  *float64        `yaml:"width"`
	Height *float64        `yaml:"height"`
}

type RawWindowDefaults struct {
	X      *float64 `yaml:"x"`
	Y      *float64 `yaml:"y"`
	Width  *float64 `yaml:"width"`
	Height *float64 `yaml:"height"`
}

type RawTerminal struct {
	CellWidth  *float64 `yaml:"cell_width"`
	CellHeight *float64 `yaml:"cell_height"`
}

type RawWeb struct {
	Enabled *bool   `yaml:"enabled"`
	Bind    *string `yaml:"bind"`
	Port    *int    `yaml:"port"`
}

type RawLoggingConfig struct {
	File       *string `yaml:"file"`
	MaxSizeMB  *int    `yaml:"max_size_mb"`
	MaxBackups *int    `yaml:"max_backups"`
	MaxAgeDays *int    `yaml:"max_age_days"`
}

type RawConfig struct {
	Include        IncludeList        `yaml:"include"`
	Viewport       *RawViewport       `yaml:"viewport"`
	WindowDefaults *RawWindowDefaults `yaml:"window_defaults"`
	Terminal       *RawTerminal       `yaml:"terminal"`
	Web            *RawWeb            `yaml:"web"`
	LogLevel       *string            `yaml:"log_level"`
	Logging        *RawLoggingConfig  `yaml:"logging"`
}

// merge overlays b onto a. Later files win key by key.
func (a RawConfig) merge(b RawConfig) RawConfig {
	out := a
	out.Include = nil

	if b.Viewport != nil {
		if out.Viewport == nil {
			out.Viewport = &RawViewport{}
		} else {
			cp := *out.Viewport
			out.Viewport = &cp
		}
		mergePtr(&out.Viewport.Source, b.Viewport.Source)
		mergePtr(&out.Viewport.Width, b.Viewport.Width)
		mergePtr(&out.Viewport.Height, b.Viewport.Height)
	}
	if b.WindowDefaults != nil {
		if out.WindowDefaults == nil {
			out.WindowDefaults = &RawWindowDefaults{}
		} else {
			cp := *out.WindowDefaults
			out.WindowDefaults = &cp
		}
		mergePtr(&out.WindowDefaults.X, b.WindowDefaults.X)
		mergePtr(&out.WindowDefaults.Y, b.WindowDefaults.Y)
		mergePtr(&out.WindowDefaults.Width, b.WindowDefaults.Width)
		mergePtr(&out.WindowDefaults.Height, b.WindowDefaults.Height)
	}
	if b.Terminal != nil {
		if out.Terminal == nil {
			out.Terminal = &RawTerminal{}
		} else {
			cp := *out.Terminal
			out.Terminal = &cp
		}
		mergePtr(&out.Terminal.CellWidth, b.Terminal.CellWidth)
		mergePtr(&out.Terminal.CellHeight, b.Terminal.CellHeight)
	}
	if b.Web != nil {
		if out.Web == nil {
			out.Web = &RawWeb{}
		} else {
			cp := *out.Web
			out.Web = &cp
		}
		mergePtr(&out.Web.Enabled, b.Web.Enabled)
		mergePtr(&out.Web.Bind, b.Web.Bind)
		mergePtr(&out.Web.Port, b.Web.Port)
	}
	mergePtr(&out.LogLevel, b.LogLevel)
	if b.Logging != nil {
		if out.Logging == nil {
			out.Logging = &RawLoggingConfig{}
		} else {
			cp := *out.Logging
			out.Logging = &cp
		}
		mergePtr(&out.Logging.File, b.Logging.File)
		mergePtr(&out.Logging.MaxSizeMB, b.Logging.MaxSizeMB)
		mergePtr(&out.Logging.MaxBackups, b.Logging.MaxBackups)
		mergePtr(&out.Logging.MaxAgeDays, b.Logging.MaxAgeDays)
	}

	return out
}

func mergePtr[T any](dst **T, src *T) {
	if src != nil {
		*dst = src
	}
}
