package tui

import (
	catppuccin "github.com/catppuccin/go"
	"github.com/charmbracelet/lipgloss"
)

// Styles maps canvas cells and chrome to a Catppuccin flavor.
type Styles struct {
	flavor catppuccin.Flavor
	cells  map[cellKind]lipgloss.Style
}

// NewStyles builds styles for a flavor name: latte, frappe, macchiato or
// mocha. Unknown names use mocha.
func NewStyles(themeName string) *Styles {
	f := flavorFromName(themeName)
	color := func(c catppuccin.Color) lipgloss.Color { return lipgloss.Color(c.Hex) }

	s := &Styles{flavor: f}
	s.cells = map[cellKind]lipgloss.Style{
		kindDesktop:     lipgloss.NewStyle().Background(color(f.Crust())),
		kindPreview:     lipgloss.NewStyle().Foreground(color(f.Blue())).Background(color(f.Crust())),
		kindFrame:       lipgloss.NewStyle().Foreground(color(f.Overlay0())).Background(color(f.Base())),
		kindFrameActive: lipgloss.NewStyle().Foreground(color(f.Mauve())).Background(color(f.Base())),
		kindTitle:       lipgloss.NewStyle().Foreground(color(f.Subtext0())).Background(color(f.Surface0())),
		kindTitleActive: lipgloss.NewStyle().Bold(true).Foreground(color(f.Text())).Background(color(f.Surface1())),
		kindButton:      lipgloss.NewStyle().Foreground(color(f.Peach())).Background(color(f.Surface1())),
		kindBody:        lipgloss.NewStyle().Foreground(color(f.Text())).Background(color(f.Base())),
		kindTray:        lipgloss.NewStyle().Foreground(color(f.Base())).Background(color(f.Teal())),
	}
	return s
}

func flavorFromName(name string) catppuccin.Flavor {
	switch name {
	case "latte":
		return catppuccin.Latte
	case "frappe":
		return catppuccin.Frappe
	case "macchiato":
		return catppuccin.Macchiato
	default:
		return catppuccin.Mocha
	}
}

// Cell returns the style for a canvas cell kind.
func (s *Styles) Cell(k cellKind) lipgloss.Style {
	return s.cells[k]
}

func (s *Styles) StatusBarStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.flavor.Subtext1().Hex)).
		Background(lipgloss.Color(s.flavor.Mantle().Hex)).
		Padding(0, 1)
}

func (s *Styles) AccentStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.flavor.Teal().Hex))
}

func (s *Styles) ErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.flavor.Red().Hex)).
		Bold(true)
}

func (s *Styles) HelpStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(s.flavor.Overlay0().Hex)).
		Padding(0, 1)
}
