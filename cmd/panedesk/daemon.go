package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/1broseidon/panedesk/internal/config"
	"github.com/1broseidon/panedesk/internal/daemon"
	"github.com/1broseidon/panedesk/internal/input"
	"github.com/1broseidon/panedesk/internal/instance"
	"github.com/1broseidon/panedesk/internal/ipc"
	"github.com/1broseidon/panedesk/internal/logging"
	"github.com/1broseidon/panedesk/internal/manager"
	"github.com/1broseidon/panedesk/internal/runtimepath"
	"github.com/1broseidon/panedesk/internal/web"
	"github.com/1broseidon/panedesk/internal/x11"
)

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("config", "", "Config file path (default: ~/.config/panedesk/config.yaml)")
	quiet := fs.BoolP("quiet", "q", false, "Log to the log file only")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: panedesk daemon [--config PATH] [--quiet]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run the window manager in the foreground, serving IPC and (when")
		fmt.Fprintln(os.Stderr, "web.enabled) the HTTP/websocket front-end.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	configPath := *path
	if configPath == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		configPath = p
	}
	res, err := config.LoadFromPath(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	cfg := res.Config

	logCfg := cfg.GetLoggingConfig()
	lcfg := logging.Config{
		FilePath:   logCfg.File,
		MaxSizeMB:  logCfg.MaxSizeMB,
		MaxBackups: logCfg.MaxBackups,
		MaxAgeDays: logCfg.MaxAgeDays,
		Level:      cfg.LogLevel,
	}
	if !*quiet {
		lcfg.Console = os.Stderr
	}
	logs, err := logging.NewManager(lcfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialise logging: %v\n", err)
		return 1
	}
	defer logs.Close()
	logger := logs.For("daemon")

	lockDir, err := runtimepath.LockDir()
	if err != nil {
		logger.Error("failed to resolve runtime directory", "error", err)
		return 1
	}
	fl, err := instance.Lock(lockDir)
	if err != nil {
		logger.Error("failed to start daemon", "error", err)
		return 1
	}
	defer instance.Cleanup(lockDir, fl)

	d, err := newDaemon(cfg, configPath, logs)
	if err != nil {
		logger.Error("failed to start daemon", "error", err)
		return 1
	}
	defer d.close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if d.web != nil {
		ln, err := d.web.Listen()
		if err != nil {
			logger.Error("failed to start web server", "error", err)
			return 1
		}
		if err := instance.WriteWebAddr(lockDir, d.web.Addr()); err != nil {
			logger.Warn("failed to record web address", "error", err)
		}
		d.ipc.SetWebAddr(d.web.Addr())
		go func() {
			if err := d.web.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("web server stopped", "error", err)
				cancel()
			}
		}()
	}

	if err := d.ipc.Start(); err != nil {
		logger.Error("failed to start IPC server", "error", err)
		return 1
	}

	if d.polled != nil {
		rec := daemon.NewReconciler(daemon.ReconcilerConfig{
			Interval: viewportPollInterval,
			Logger:   logs.For("reconciler"),
		}, d.polled, d.mgr)
		rec.ReconcileNow()
		go rec.Run(ctx)
	}

	watcher, err := config.NewWatcher(configPath, logs.For("config"))
	if err != nil {
		logger.Warn("config hot reload disabled", "error", err)
	} else {
		go func() {
			if err := watcher.Run(ctx, d.applyConfig); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("config watcher stopped", "error", err)
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	logger.Info("panedesk daemon started",
		"viewport_source", string(cfg.Viewport.Source),
		"socket", d.ipc.SocketPath(),
		"config", configPath,
	)

	for {
		select {
		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				logger.Info("received SIGHUP, reloading config")
				res, err := config.LoadFromPath(configPath)
				if err != nil {
					logger.Warn("config reload failed", "error", err)
					continue
				}
				d.applyConfig(res)
				continue
			}
			logger.Info("shutting down panedesk daemon")
			return 0

		case <-d.reloadChan:
			// RELOAD over IPC already swapped the server's config.
			d.applyConfig(&config.LoadResult{Config: d.ipc.GetConfig(), Path: configPath})

		case <-ctx.Done():
			return 1
		}
	}
}

// viewportPollInterval is how often x11 and terminal viewports are re-read.
const viewportPollInterval = time.Second

// desktopDaemon holds the long-lived components wired from one configuration.
type desktopDaemon struct {
	mu         sync.Mutex
	cfg        *config.Config
	logs       *logging.Manager
	logger     *logging.ScopedLogger
	mgr        *manager.Manager
	tracked    *input.Tracked
	// polled is the source re-read by the reconciler; nil when the viewport
	// only changes through explicit reports.
	polled     manager.ViewportSource
	static     *input.Tracked
	display    *x11.Connection
	ipc        *ipc.Server
	web        *web.Server
	reloadChan chan struct{}
}

func newDaemon(cfg *config.Config, configPath string, logs *logging.Manager) (*desktopDaemon, error) {
	d := &desktopDaemon{
		cfg:        cfg,
		logs:       logs,
		logger:     logs.For("daemon"),
		reloadChan: make(chan struct{}, 1),
	}

	source, err := d.viewportSource()
	if err != nil {
		return nil, err
	}

	d.mgr = manager.New(source, logs.For("manager"))
	d.mgr.SetDefaultGeometry(cfg.WindowGeometry())
	// Seeds the fallback used while a dynamic source has nothing to report.
	d.mgr.SetViewport(cfg.StaticViewport())

	srv, err := ipc.NewServer(ipc.ServerOptions{
		ConfigPath: configPath,
		Config:     cfg,
		Manager:    d.mgr,
		Tracked:    d.tracked,
		ReloadChan: d.reloadChan,
		Logger:     logs.For("ipc"),
	})
	if err != nil {
		d.close()
		return nil, err
	}
	d.ipc = srv

	if cfg.Web.Enabled {
		d.web = web.New(web.Config{Bind: cfg.Web.Bind, Port: cfg.Web.Port}, d.mgr, d.tracked, logs)
	}
	return d, nil
}

// viewportSource builds the provider named by viewport.source.
func (d *desktopDaemon) viewportSource() (manager.ViewportSource, error) {
	fallback := d.cfg.StaticViewport()

	switch d.cfg.Viewport.Source {
	case config.ViewportX11:
		conn, err := x11.NewConnection()
		if err != nil {
			return nil, fmt.Errorf("viewport.source x11: %w", err)
		}
		d.display = conn
		d.polled = x11.NewRootViewport(conn, d.logs.For("x11"))
		return d.polled, nil

	case config.ViewportTerminal:
		d.polled = input.Terminal{
			Fd:         int(os.Stdin.Fd()),
			CellWidth:  d.cfg.Terminal.CellWidth,
			CellHeight: d.cfg.Terminal.CellHeight,
		}
		return d.polled, nil

	case config.ViewportWeb:
		d.tracked = input.NewTracked(fallback)
		return d.tracked, nil

	default:
		// Tracked rather than input.Static so a config reload can resize it.
		d.static = input.NewTracked(fallback)
		return d.static, nil
	}
}

// applyConfig pushes a reloaded configuration into the running components.
// The viewport source and listeners are fixed for the daemon's lifetime.
func (d *desktopDaemon) applyConfig(res *config.LoadResult) {
	d.mu.Lock()
	defer d.mu.Unlock()

	next := res.Config
	if next.Viewport.Source != d.cfg.Viewport.Source {
		d.logger.Warn("viewport.source changed; restart the daemon to apply",
			"current", string(d.cfg.Viewport.Source), "configured", string(next.Viewport.Source))
	}
	if next.Web != d.cfg.Web {
		d.logger.Warn("web settings changed; restart the daemon to apply")
	}

	d.ipc.UpdateConfig(next)
	d.mgr.SetDefaultGeometry(next.WindowGeometry())
	if d.static != nil {
		d.static.Set(next.StaticViewport())
		d.mgr.SetViewport(next.StaticViewport())
	}
	d.cfg = next
	d.logger.Info("configuration applied", "files", len(res.Files))
}

func (d *desktopDaemon) close() {
	if d.web != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := d.web.Shutdown(ctx); err != nil {
			d.logger.Warn("web server shutdown", "error", err)
		}
		cancel()
	}
	if d.ipc != nil {
		d.ipc.Stop()
	}
	if d.display != nil {
		d.display.Close()
	}
}
