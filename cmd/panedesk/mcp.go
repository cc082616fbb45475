package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/panedesk/internal/config"
	"github.com/1broseidon/panedesk/internal/ipc"
	"github.com/1broseidon/panedesk/internal/logging"
	"github.com/1broseidon/panedesk/internal/mcp"
)

func printMCPUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  panedesk mcp serve")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'panedesk mcp <command> --help' for command-specific options.")
}

func runMCP(args []string) int {
	if len(args) == 0 {
		printMCPUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "serve":
		return runMCPServe(args[1:])
	case "help", "-h", "--help":
		printMCPUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown mcp command: %s\n\n", args[0])
		printMCPUsage(os.Stderr)
		return 2
	}
}

func runMCPServe(args []string) int {
	if isHelpArg(args) {
		fmt.Fprintln(os.Stdout, "Usage: panedesk mcp serve")
		fmt.Fprintln(os.Stdout, "")
		fmt.Fprintln(os.Stdout, "Start the MCP server on stdio. Tools act on the running daemon's")
		fmt.Fprintln(os.Stdout, "desktop, so start 'panedesk daemon' first.")
		return 0
	}

	cfg, err := config.Load()
	if err != nil {
		return fail(err)
	}

	// Stdout carries the protocol; log to the file only.
	logCfg := cfg.GetLoggingConfig()
	logs, err := logging.NewManager(logging.Config{
		FilePath:   logCfg.File,
		MaxSizeMB:  logCfg.MaxSizeMB,
		MaxBackups: logCfg.MaxBackups,
		MaxAgeDays: logCfg.MaxAgeDays,
		Level:      cfg.LogLevel,
	})
	if err != nil {
		return fail(err)
	}
	defer logs.Close()

	server := mcp.NewServer(ipc.NewClient(), logs.For("mcp"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "MCP server error: %v\n", err)
		return 1
	}
	return 0
}
