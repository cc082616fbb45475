package tray

import (
	"testing"

	"github.com/1broseidon/panedesk/internal/geometry"
)

func TestSlot(t *testing.T) {
	// viewport height 800: y = 800 - 40 - 10 = 750
	tests := []struct {
		rank  int
		wantX float64
	}{
		{0, 0},
		{1, 210},
		{2, 420},
		{5, 1050},
	}

	for _, tt := range tests {
		got := Slot(tt.rank, 800)
		want := geometry.Rect{X: tt.wantX, Y: 750, Width: Width, Height: Height}
		if got != want {
			t.Errorf("Slot(%d) = %+v, want %+v", tt.rank, got, want)
		}
	}
}

func TestArrange_OrdersByMinimizeOrder(t *testing.T) {
	entries := []Entry{
		{Key: 7, Order: 2},
		{Key: 3, Order: 0},
		{Key: 5, Order: 1},
	}

	placements := Arrange(entries, 600)
	if len(placements) != 3 {
		t.Fatalf("expected 3 placements, got %d", len(placements))
	}

	wantKeys := []uint64{3, 5, 7}
	for i, p := range placements {
		if p.Key != wantKeys[i] {
			t.Errorf("placement %d key = %d, want %d", i, p.Key, wantKeys[i])
		}
		if p.Rank != i {
			t.Errorf("placement %d rank = %d", i, p.Rank)
		}
		if p.Rect != Slot(i, 600) {
			t.Errorf("placement %d rect = %+v", i, p.Rect)
		}
	}

	// Input must be left untouched.
	if entries[0].Key != 7 {
		t.Fatalf("Arrange reordered its input")
	}
}

func TestArrange_TiesBrokenByKey(t *testing.T) {
	placements := Arrange([]Entry{{Key: 9, Order: 1}, {Key: 2, Order: 1}}, 600)
	if placements[0].Key != 2 || placements[1].Key != 9 {
		t.Fatalf("expected key order 2, 9; got %d, %d", placements[0].Key, placements[1].Key)
	}
}

func TestArrange_GapsInOrderCollapse(t *testing.T) {
	// Orders 4 and 10 still occupy ranks 0 and 1.
	placements := Arrange([]Entry{{Key: 1, Order: 10}, {Key: 2, Order: 4}}, 500)
	if placements[0].Key != 2 || placements[0].Rect.X != 0 {
		t.Fatalf("unexpected first placement: %+v", placements[0])
	}
	if placements[1].Key != 1 || placements[1].Rect.X != Width+Spacing {
		t.Fatalf("unexpected second placement: %+v", placements[1])
	}
}

func TestArrange_Empty(t *testing.T) {
	if got := Arrange(nil, 800); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}
