package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/1broseidon/panedesk/internal/config"
	"github.com/1broseidon/panedesk/internal/logging"
)

func TestFormatSource(t *testing.T) {
	tests := []struct {
		src  config.Source
		want string
	}{
		{config.Source{Kind: config.SourceFile, File: "/c.yaml", Line: 3, Column: 5}, "file:/c.yaml:3:5"},
		{config.Source{Kind: config.SourceFile, File: "/c.yaml"}, "file:/c.yaml"},
		{config.Source{Kind: config.SourceDefault, Name: "viewport.width"}, "default:viewport.width"},
		{config.Source{Kind: config.SourceDefault}, "default"},
	}
	for _, tt := range tests {
		if got := formatSource(tt.src); got != tt.want {
			t.Errorf("formatSource(%+v) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		nargs    int
		wantCode int
		wantOK   bool
	}{
		{"exact", []string{"7"}, 1, 0, true},
		{"missing", nil, 1, 2, false},
		{"extra", []string{"1", "2"}, 1, 2, false},
		{"help", []string{"--help"}, 1, 0, false},
		{"unknown flag", []string{"--bogus", "1"}, 1, 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newFlagSet("focus", "focus <id>", "Raise a window.")
			code, ok := parseFlags(fs, tt.args, tt.nargs)
			if code != tt.wantCode || ok != tt.wantOK {
				t.Fatalf("parseFlags(%v) = %d, %v; want %d, %v", tt.args, code, ok, tt.wantCode, tt.wantOK)
			}
		})
	}
}

func TestDaemonApplyConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("window_defaults:\n  x: 40\n  y: 50\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	res, err := config.LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}

	logs, err := logging.NewManager(logging.Config{FilePath: filepath.Join(t.TempDir(), "d.log")})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer logs.Close()

	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	d, err := newDaemon(res.Config, path, logs)
	if err != nil {
		t.Fatalf("newDaemon: %v", err)
	}
	defer d.close()

	id := d.mgr.Open("A", "", "")
	if w, _ := d.mgr.Window(id); w.Geometry.X != 40 || w.Geometry.Y != 50 {
		t.Fatalf("opened at %+v, want (40,50)", w.Geometry)
	}
	if got := d.mgr.Snapshot().Viewport; got != res.Config.StaticViewport() {
		t.Fatalf("viewport = %+v, want %+v", got, res.Config.StaticViewport())
	}

	if err := os.WriteFile(path, []byte("viewport:\n  width: 900\n  height: 600\nwindow_defaults:\n  x: 5\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	res, err = config.LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	d.applyConfig(res)

	id = d.mgr.Open("B", "", "")
	if w, _ := d.mgr.Window(id); w.Geometry.X != 5 {
		t.Fatalf("opened at x=%v after reload, want 5", w.Geometry.X)
	}
	if got := d.mgr.Snapshot().Viewport; got.Width != 900 || got.Height != 600 {
		t.Fatalf("viewport after reload = %+v", got)
	}
	if d.ipc.GetConfig() != res.Config {
		t.Fatalf("ipc server config not updated")
	}
}
