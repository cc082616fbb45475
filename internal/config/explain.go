package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths include:
//
//	viewport
//	viewport.source
//	window_defaults.width
//	terminal.cell_height
//	web.port
//	log_level
//	logging.file
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	if len(parts) > 2 {
		return nil, fmt.Errorf("unknown path: %s", path)
	}
	field := ""
	if len(parts) == 2 {
		field = parts[1]
	}

	switch parts[0] {
	case "viewport":
		return pick(path, field, cfg.Viewport, map[string]any{
			"source": string(cfg.Viewport.Source),
			"width":  cfg.Viewport.Width,
			"height": cfg.Viewport.Height,
		})
	case "window_defaults":
		return pick(path, field, cfg.WindowDefaults, map[string]any{
			"x":      cfg.WindowDefaults.X,
			"y":      cfg.WindowDefaults.Y,
			"width":  cfg.WindowDefaults.Width,
			"height": cfg.WindowDefaults.Height,
		})
	case "terminal":
		return pick(path, field, cfg.Terminal, map[string]any{
			"cell_width":  cfg.Terminal.CellWidth,
			"cell_height": cfg.Terminal.CellHeight,
		})
	case "web":
		return pick(path, field, cfg.Web, map[string]any{
			"enabled": cfg.Web.Enabled,
			"bind":    cfg.Web.Bind,
			"port":    cfg.Web.Port,
		})
	case "log_level":
		if field != "" {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		return cfg.LogLevel, nil
	case "logging":
		logging := cfg.GetLoggingConfig()
		return pick(path, field, logging, map[string]any{
			"file":         logging.File,
			"max_size_mb":  logging.MaxSizeMB,
			"max_backups":  logging.MaxBackups,
			"max_age_days": logging.MaxAgeDays,
		})
	default:
		return nil, fmt.Errorf("unknown path: %s", path)
	}
}

func pick(path, field string, whole any, fields map[string]any) (any, error) {
	if field == "" {
		return whole, nil
	}
	value, ok := fields[field]
	if !ok {
		return nil, fmt.Errorf("unknown path: %s", path)
	}
	return value, nil
}
