package tui

import (
	"math"
	"strings"

	"github.com/1broseidon/panedesk/internal/geometry"
	"github.com/1broseidon/panedesk/internal/manager"
	"github.com/1broseidon/panedesk/internal/window"
)

// part is what a canvas cell belongs to, for hit testing.
type part int

const (
	partDesktop part = iota
	partBody
	partHeader
	partEdge
	partMinimize
	partMaximize
	partClose
	partTray
)

// cellKind picks the style a cell is drawn with.
type cellKind int

const (
	kindDesktop cellKind = iota
	kindPreview
	kindFrame
	kindFrameActive
	kindTitle
	kindTitleActive
	kindButton
	kindBody
	kindTray
)

type cell struct {
	r     rune
	kind  cellKind
	part  part
	owner window.ID
	dir   window.Direction
}

// metrics converts between viewport pixels and terminal cells.
type metrics struct {
	cellWidth  float64
	cellHeight float64
}

// viewport returns the pixel size of a cols x rows canvas.
func (m metrics) viewport(cols, rows int) geometry.Size {
	return geometry.Size{Width: float64(cols) * m.cellWidth, Height: float64(rows) * m.cellHeight}
}

// point returns the pixel position at the centre of a cell.
func (m metrics) point(col, row int) geometry.Point {
	return geometry.Point{
		X: (float64(col) + 0.5) * m.cellWidth,
		Y: (float64(row) + 0.5) * m.cellHeight,
	}
}

// cells returns the inclusive cell bounds covering r.
func (m metrics) cells(r geometry.Rect) (c1, r1, c2, r2 int) {
	c1 = int(math.Floor(r.X / m.cellWidth))
	r1 = int(math.Floor(r.Y / m.cellHeight))
	c2 = int(math.Ceil(r.Right()/m.cellWidth)) - 1
	r2 = int(math.Ceil(r.Bottom()/m.cellHeight)) - 1
	return c1, r1, c2, r2
}

// buttons are drawn right-aligned in the header, in this order.
var buttons = []struct {
	label string
	part  part
}{
	{"[_]", partMinimize},
	{"[+]", partMaximize},
	{"[x]", partClose},
}

// canvas is a painted frame of the desktop.
type canvas struct {
	cols, rows int
	cells      [][]cell
}

func newCanvas(cols, rows int) *canvas {
	cols, rows = max(cols, 0), max(rows, 0)
	c := &canvas{cols: cols, rows: rows, cells: make([][]cell, rows)}
	for y := range c.cells {
		c.cells[y] = make([]cell, cols)
		for x := range c.cells[y] {
			c.cells[y][x] = cell{r: ' '}
		}
	}
	return c
}

// paint draws state back to front. The front-most normal or maximized window,
// or the window being dragged or resized, is drawn active.
func paint(state manager.State, cols, rows int, m metrics) *canvas {
	c := newCanvas(cols, rows)

	if state.PreviewRect != nil {
		c1, r1, c2, r2 := m.cells(*state.PreviewRect)
		for y := r1; y <= r2; y++ {
			for x := c1; x <= c2; x++ {
				c.set(x, y, cell{r: '░', kind: kindPreview})
			}
		}
	}

	active := activeWindow(state)
	for _, w := range state.Windows {
		if w.Mode == window.ModeMinimized {
			c.paintTray(w, m)
			continue
		}
		c.paintWindow(w, w.ID == active, m)
	}
	return c
}

func activeWindow(state manager.State) window.ID {
	if state.Session != nil {
		return state.Session.WindowID
	}
	for i := len(state.Windows) - 1; i >= 0; i-- {
		if state.Windows[i].Mode != window.ModeMinimized {
			return state.Windows[i].ID
		}
	}
	return 0
}

func (c *canvas) paintWindow(w manager.Snapshot, active bool, m metrics) {
	c1, r1, c2, r2 := m.cells(w.Geometry)
	if c2-c1 < 1 || r2-r1 < 1 {
		return
	}

	frame, title := kindFrame, kindTitle
	if active {
		frame, title = kindFrameActive, kindTitleActive
	}
	edge := func(r rune, dir window.Direction) cell {
		return cell{r: r, kind: frame, part: partEdge, owner: w.ID, dir: dir}
	}

	// Header row: corners resize, the rest drags.
	c.set(c1, r1, edge('┌', window.North|window.West))
	c.set(c2, r1, edge('┐', window.North|window.East))
	for x := c1 + 1; x < c2; x++ {
		c.set(x, r1, cell{r: '─', kind: title, part: partHeader, owner: w.ID})
	}

	inner := c2 - c1 - 1
	buttonWidth := 0
	if inner >= 3*len(buttons)+4 {
		x := c2 - 3*len(buttons)
		for _, b := range buttons {
			for _, r := range b.label {
				c.set(x, r1, cell{r: r, kind: kindButton, part: b.part, owner: w.ID})
				x++
			}
		}
		buttonWidth = 3*len(buttons) + 1
	}
	c.text(c1+2, r1, inner-2-buttonWidth, " "+w.Title+" ", cell{kind: title, part: partHeader, owner: w.ID})

	for y := r1 + 1; y < r2; y++ {
		c.set(c1, y, edge('│', window.West))
		c.set(c2, y, edge('│', window.East))
		for x := c1 + 1; x < c2; x++ {
			c.set(x, y, cell{r: ' ', kind: kindBody, part: partBody, owner: w.ID})
		}
	}
	for i, line := range strings.Split(w.Content, "\n") {
		y := r1 + 1 + i
		if y >= r2 {
			break
		}
		c.text(c1+2, y, inner-2, line, cell{kind: kindBody, part: partBody, owner: w.ID})
	}

	c.set(c1, r2, edge('└', window.South|window.West))
	c.set(c2, r2, edge('┘', window.South|window.East))
	for x := c1 + 1; x < c2; x++ {
		c.set(x, r2, edge('─', window.South))
	}
}

// paintTray draws a minimized window as a one-row chip at its tray slot.
func (c *canvas) paintTray(w manager.Snapshot, m metrics) {
	c1, r1, c2, _ := m.cells(w.Geometry)
	if c2 < c1 {
		return
	}
	base := cell{r: ' ', kind: kindTray, part: partTray, owner: w.ID}
	for x := c1; x <= c2; x++ {
		c.set(x, r1, base)
	}
	c.set(c1, r1, cell{r: '[', kind: kindTray, part: partTray, owner: w.ID})
	c.set(c2, r1, cell{r: ']', kind: kindTray, part: partTray, owner: w.ID})
	c.text(c1+2, r1, c2-c1-3, w.Title, base)
}

// text writes s from (x, y), truncated to width cells.
func (c *canvas) text(x, y, width int, s string, base cell) {
	if width <= 0 {
		return
	}
	for _, r := range s {
		if width == 0 {
			return
		}
		base.r = r
		c.set(x, y, base)
		x++
		width--
	}
}

func (c *canvas) set(x, y int, v cell) {
	if x < 0 || y < 0 || x >= c.cols || y >= c.rows {
		return
	}
	c.cells[y][x] = v
}

// at returns the cell under (x, y). Cells outside the canvas are desktop.
func (c *canvas) at(x, y int) cell {
	if x < 0 || y < 0 || x >= c.cols || y >= c.rows {
		return cell{r: ' '}
	}
	return c.cells[y][x]
}

// plain returns the canvas as unstyled lines.
func (c *canvas) plain() []string {
	lines := make([]string, c.rows)
	for y, row := range c.cells {
		var b strings.Builder
		for _, v := range row {
			b.WriteRune(v.r)
		}
		lines[y] = b.String()
	}
	return lines
}

// render styles runs of equal kind and joins the rows.
func (c *canvas) render(s *Styles) string {
	lines := make([]string, c.rows)
	for y, row := range c.cells {
		var b strings.Builder
		start := 0
		for x := 1; x <= len(row); x++ {
			if x < len(row) && row[x].kind == row[start].kind {
				continue
			}
			run := make([]rune, 0, x-start)
			for _, v := range row[start:x] {
				run = append(run, v.r)
			}
			b.WriteString(s.Cell(row[start].kind).Render(string(run)))
			start = x
		}
		lines[y] = b.String()
	}
	return strings.Join(lines, "\n")
}
