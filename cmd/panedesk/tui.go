package main

import (
	"fmt"
	"os"
	"time"

	"github.com/1broseidon/panedesk/internal/config"
	"github.com/1broseidon/panedesk/internal/instance"
	"github.com/1broseidon/panedesk/internal/ipc"
	"github.com/1broseidon/panedesk/internal/manager"
	"github.com/1broseidon/panedesk/internal/runtimepath"
	"github.com/1broseidon/panedesk/internal/tui"
)

const remotePollInterval = 250 * time.Millisecond

func runTUI(args []string) int {
	fs := newFlagSet("tui", "tui [--local] [--theme NAME]",
		"Open the desktop in the terminal. Attaches to the running daemon, or\n"+
			"runs a private in-process desktop when none is running (or with --local).\n"+
			"\n"+
			"Mouse: drag headers to move (release at a screen edge to snap), drag\n"+
			"borders to resize, click [_] [+] [x] to minimize, maximize, close.\n"+
			"Click a tray chip to restore. Keys: n open, esc cancel gesture, ? help,\n"+
			"q quit.")
	local := fs.Bool("local", false, "Use an in-process desktop even when the daemon is running")
	theme := fs.String("theme", "mocha", "Catppuccin flavor: latte, frappe, macchiato, mocha")
	if code, ok := parseFlags(fs, args, 0); !ok {
		return code
	}

	cfg, err := config.Load()
	if err != nil {
		return fail(err)
	}
	opts := tui.Options{
		Theme:      *theme,
		CellWidth:  cfg.Terminal.CellWidth,
		CellHeight: cfg.Terminal.CellHeight,
	}

	var desktop tui.Desktop
	if !*local && daemonRunning() {
		desktop = tui.Remote(ipc.NewClient())
		opts.PollInterval = remotePollInterval
	} else {
		mgr := manager.New(nil, nil)
		mgr.SetDefaultGeometry(cfg.WindowGeometry())
		desktop = tui.Local(mgr)
	}

	if err := tui.Run(desktop, opts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func daemonRunning() bool {
	dir, err := runtimepath.LockDir()
	if err != nil {
		return false
	}
	running, err := instance.Running(dir)
	return err == nil && running
}
