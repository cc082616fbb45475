// Package tray lays minimized windows out as a horizontal strip along the
// bottom edge of the viewport.
package tray

import (
	"sort"

	"github.com/1broseidon/panedesk/internal/geometry"
)

const (
	Width        = 200 // Width of a minimized window.
	Height       = 40  // Height of a minimized window.
	Spacing      = 10  // Horizontal gap between slots.
	BottomMargin = 10  // Gap between the strip and the viewport bottom.
)

// Entry is a minimized window as seen by the layout.
type Entry struct {
	Key   uint64 // window identity, used to break order ties
	Order int    // minimize order; lower is earlier
}

// Placement is the computed slot for one entry.
type Placement struct {
	Key  uint64
	Rank int
	Rect geometry.Rect
}

// Slot returns the rect of the zero-based rank-th tray slot.
func Slot(rank int, viewportHeight float64) geometry.Rect {
	return geometry.Rect{
		X:      float64(rank) * (Width + Spacing),
		Y:      viewportHeight - Height - BottomMargin,
		Width:  Width,
		Height: Height,
	}
}

// Arrange ranks every entry by minimize order and returns one placement per
// entry, leftmost first. The input slice is not modified.
func Arrange(entries []Entry, viewportHeight float64) []Placement {
	if len(entries) == 0 {
		return nil
	}

	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Order != sorted[j].Order {
			return sorted[i].Order < sorted[j].Order
		}
		return sorted[i].Key < sorted[j].Key
	})

	placements := make([]Placement, len(sorted))
	for rank, e := range sorted {
		placements[rank] = Placement{
			Key:  e.Key,
			Rank: rank,
			Rect: Slot(rank, viewportHeight),
		}
	}
	return placements
}
