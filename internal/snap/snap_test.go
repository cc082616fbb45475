package snap

import (
	"testing"

	"github.com/1broseidon/panedesk/internal/geometry"
)

func TestCompute(t *testing.T) {
	const width = 1280

	tests := []struct {
		name string
		x    float64
		want Preview
	}{
		{"far left", 0, Left},
		{"inside left band", 9, Left},
		{"left band boundary", 10, None},
		{"middle", 640, None},
		{"right band boundary", 1270, None},
		{"inside right band", 1271, Right},
		{"past right edge", 1400, Right},
		{"past left edge", -30, Left},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compute(tt.x, width); got != tt.want {
				t.Errorf("Compute(%v, %v) = %v, want %v", tt.x, width, got, tt.want)
			}
		})
	}
}

func TestCompute_NarrowViewportPrefersLeft(t *testing.T) {
	// Both bands overlap on a viewport narrower than two bands.
	if got := Compute(5, 12); got != Left {
		t.Fatalf("expected left to win, got %v", got)
	}
}

func TestTarget(t *testing.T) {
	viewport := geometry.Size{Width: 1280, Height: 800}

	left, ok := Target(Left, viewport)
	if !ok {
		t.Fatalf("expected left target")
	}
	if left != (geometry.Rect{X: 0, Y: 0, Width: 640, Height: 800}) {
		t.Fatalf("left target = %+v", left)
	}

	right, ok := Target(Right, viewport)
	if !ok {
		t.Fatalf("expected right target")
	}
	if right != (geometry.Rect{X: 640, Y: 0, Width: 640, Height: 800}) {
		t.Fatalf("right target = %+v", right)
	}

	if _, ok := Target(None, viewport); ok {
		t.Fatalf("expected no target for None")
	}
}

func TestTarget_OddWidthIsNotTruncated(t *testing.T) {
	r, _ := Target(Right, geometry.Size{Width: 1001, Height: 700})
	if r.X != 500.5 || r.Width != 500.5 {
		t.Fatalf("expected half of 1001, got %+v", r)
	}
}

func TestPreviewTextRoundTrip(t *testing.T) {
	for _, p := range []Preview{None, Left, Right} {
		text, err := p.MarshalText()
		if err != nil {
			t.Fatalf("marshal %v: %v", p, err)
		}
		var got Preview
		if err := got.UnmarshalText(text); err != nil {
			t.Fatalf("unmarshal %q: %v", text, err)
		}
		if got != p {
			t.Fatalf("round trip %v -> %q -> %v", p, text, got)
		}
	}

	if _, err := ParsePreview("top"); err == nil {
		t.Fatalf("expected error for unknown preview")
	}
}
