package input

import (
	"sync"

	"golang.org/x/term"

	"github.com/1broseidon/panedesk/internal/geometry"
)

// ViewportProvider reports the viewport size on demand. A zero size means
// unknown; the manager then keeps using the last size it saw.
type ViewportProvider interface {
	ViewportSize() geometry.Size
}

// Static is a fixed viewport.
type Static geometry.Size

// ViewportSize returns the fixed size.
func (s Static) ViewportSize() geometry.Size {
	return geometry.Size(s)
}

// Terminal sizes the viewport from a terminal's cell grid.
type Terminal struct {
	Fd         int
	CellWidth  float64
	CellHeight float64
}

// ViewportSize returns the terminal's columns and rows scaled by the cell
// metrics, or a zero size when fd is not a terminal.
func (t Terminal) ViewportSize() geometry.Size {
	cols, rows, err := term.GetSize(t.Fd)
	if err != nil {
		return geometry.Size{}
	}
	return CellsToSize(cols, rows, t.CellWidth, t.CellHeight)
}

// CellsToSize converts a cell grid to viewport units. Non-positive metrics
// count as one unit per cell.
func CellsToSize(cols, rows int, cellWidth, cellHeight float64) geometry.Size {
	if cellWidth <= 0 {
		cellWidth = 1
	}
	if cellHeight <= 0 {
		cellHeight = 1
	}
	return geometry.Size{Width: float64(cols) * cellWidth, Height: float64(rows) * cellHeight}
}

// Tracked remembers the last size reported by a remote front-end.
type Tracked struct {
	mu   sync.RWMutex
	size geometry.Size
}

// NewTracked returns a tracker that reports initial until the first Set.
func NewTracked(initial geometry.Size) *Tracked {
	return &Tracked{size: initial}
}

// Set records a reported size. Zero sizes are ignored.
func (t *Tracked) Set(size geometry.Size) bool {
	if size.IsZero() {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.size == size {
		return false
	}
	t.size = size
	return true
}

// ViewportSize returns the last reported size.
func (t *Tracked) ViewportSize() geometry.Size {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.size
}
