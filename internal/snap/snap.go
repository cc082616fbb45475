// Package snap decides whether a dragged window should snap to one half of
// the viewport and computes the half it snaps to.
package snap

import (
	"fmt"
	"strings"

	"github.com/1broseidon/panedesk/internal/geometry"
)

// Preview is the snap hint shown while a drag is in progress.
type Preview int

const (
	// None means releasing the drag leaves the window where it is.
	None Preview = iota
	// Left means releasing the drag fills the left half of the viewport.
	Left
	// Right means releasing the drag fills the right half of the viewport.
	Right
)

// String returns the string representation of the preview
func (p Preview) String() string {
	switch p {
	case None:
		return "none"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "unknown"
	}
}

// MarshalText encodes the preview by name.
func (p Preview) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a preview name.
func (p *Preview) UnmarshalText(text []byte) error {
	parsed, err := ParsePreview(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePreview converts a name back to a Preview.
func ParsePreview(s string) (Preview, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return None, nil
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	default:
		return None, fmt.Errorf("unknown snap preview: %q", s)
	}
}

// Compute derives the preview from the current pointer x. It keeps no state:
// every drag move recomputes it from scratch.
func Compute(pointerX, viewportWidth float64) Preview {
	if geometry.WithinLeftEdgeBand(pointerX) {
		return Left
	}
	if geometry.WithinRightEdgeBand(pointerX, viewportWidth) {
		return Right
	}
	return None
}

// Target returns the rect a window commits to when a drag ends with preview p.
// ok is false for None.
func Target(p Preview, viewport geometry.Size) (geometry.Rect, bool) {
	half := viewport.Width / 2

	switch p {
	case Left:
		return geometry.Rect{X: 0, Y: 0, Width: half, Height: viewport.Height}, true
	case Right:
		return geometry.Rect{X: half, Y: 0, Width: half, Height: viewport.Height}, true
	default:
		return geometry.Rect{}, false
	}
}
