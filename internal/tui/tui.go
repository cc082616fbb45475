package tui

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// Options configure the viewer.
type Options struct {
	// Theme is a Catppuccin flavor name.
	Theme string
	// CellWidth and CellHeight are the pixel size of one terminal cell.
	CellWidth  float64
	CellHeight float64
	// PollInterval re-reads the desktop on a timer so changes made by other
	// clients show up. Zero disables polling.
	PollInterval time.Duration
}

func (o Options) withDefaults() Options {
	if o.CellWidth <= 0 {
		o.CellWidth = 8
	}
	if o.CellHeight <= 0 {
		o.CellHeight = 16
	}
	return o
}

// Run starts the viewer on the controlling terminal and blocks until the
// user quits.
func Run(d Desktop, opts Options) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal (stdin/stdout must be TTYs)")
	}

	p := tea.NewProgram(newModel(d, opts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithReportFocus(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
