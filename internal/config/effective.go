package config

import (
	"fmt"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// BuildEffectiveConfig overlays raw onto DefaultConfig. It does not validate.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.Viewport != nil {
		if raw.Viewport.Source != nil {
			cfg.Viewport.Source = *raw.Viewport.Source
		}
		if raw.Viewport.Width != nil {
			cfg.Viewport.Width = *raw.Viewport.Width
		}
		if raw.Viewport.Height != nil {
			cfg.Viewport.Height = *raw.Viewport.Height
		}
	}

	if raw.WindowDefaults != nil {
		if raw.WindowDefaults.X != nil {
			cfg.WindowDefaults.X = *raw.WindowDefaults.X
		}
		if raw.WindowDefaults.Y != nil {
			cfg.WindowDefaults.Y = *raw.WindowDefaults.Y
		}
		if raw.WindowDefaults.Width != nil {
			cfg.WindowDefaults.Width = *raw.WindowDefaults.Width
		}
		if raw.WindowDefaults.Height != nil {
			cfg.WindowDefaults.Height = *raw.WindowDefaults.Height
		}
	}

	if raw.Terminal != nil {
		if raw.Terminal.CellWidth != nil {
			cfg.Terminal.CellWidth = *raw.Terminal.CellWidth
		}
		if raw.Terminal.CellHeight != nil {
			cfg.Terminal.CellHeight = *raw.Terminal.CellHeight
		}
	}

	if raw.Web != nil {
		if raw.Web.Enabled != nil {
			cfg.Web.Enabled = *raw.Web.Enabled
		}
		if raw.Web.Bind != nil {
			cfg.Web.Bind = *raw.Web.Bind
		}
		if raw.Web.Port != nil {
			cfg.Web.Port = *raw.Web.Port
		}
	}

	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}

	if raw.Logging != nil {
		if raw.Logging.File != nil {
			path, err := expandHome(*raw.Logging.File)
			if err != nil {
				return nil, &ValidationError{Path: "logging.file", Err: err}
			}
			cfg.Logging.File = path
		}
		if raw.Logging.MaxSizeMB != nil {
			cfg.Logging.MaxSizeMB = *raw.Logging.MaxSizeMB
		}
		if raw.Logging.MaxBackups != nil {
			cfg.Logging.MaxBackups = *raw.Logging.MaxBackups
		}
		if raw.Logging.MaxAgeDays != nil {
			cfg.Logging.MaxAgeDays = *raw.Logging.MaxAgeDays
		}
	}

	return cfg, nil
}
