package geometry

import "testing"

func TestClampSize(t *testing.T) {
	tests := []struct {
		name         string
		w, h         float64
		wantW, wantH float64
	}{
		{"both above", 320, 240, 320, 240},
		{"width below", 40, 240, 100, 240},
		{"height below", 320, -12, 320, 100},
		{"both below", 0, 0, 100, 100},
		{"exactly min", 100, 100, 100, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := ClampSize(tt.w, tt.h)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("ClampSize(%v, %v) = (%v, %v), want (%v, %v)", tt.w, tt.h, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestEdgeBands(t *testing.T) {
	const viewportWidth = 1000

	tests := []struct {
		x         float64
		wantLeft  bool
		wantRight bool
	}{
		{-5, true, false},
		{0, true, false},
		{9.99, true, false},
		{10, false, false},
		{500, false, false},
		{990, false, false},
		{990.5, false, true},
		{1000, false, true},
		{1200, false, true},
	}

	for _, tt := range tests {
		if got := WithinLeftEdgeBand(tt.x); got != tt.wantLeft {
			t.Errorf("WithinLeftEdgeBand(%v) = %v, want %v", tt.x, got, tt.wantLeft)
		}
		if got := WithinRightEdgeBand(tt.x, viewportWidth); got != tt.wantRight {
			t.Errorf("WithinRightEdgeBand(%v, %v) = %v, want %v", tt.x, viewportWidth, got, tt.wantRight)
		}
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 100, Y: 100, Width: 200, Height: 150}

	tests := []struct {
		p    Point
		want bool
	}{
		{Point{150, 175}, true},
		{Point{100, 100}, true},
		{Point{300, 250}, true},
		{Point{99, 100}, false},
		{Point{301, 100}, false},
		{Point{100, 99}, false},
		{Point{100, 251}, false},
	}

	for _, tt := range tests {
		if got := r.Contains(tt.p); got != tt.want {
			t.Errorf("Contains(%+v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestPointArithmetic(t *testing.T) {
	p := Point{X: 150, Y: 160}
	q := Point{X: 100, Y: 100}

	if got := p.Sub(q); got != (Point{X: 50, Y: 60}) {
		t.Fatalf("Sub = %+v", got)
	}
	if got := q.Add(Point{X: 50, Y: 60}); got != p {
		t.Fatalf("Add = %+v", got)
	}
}

func TestSizeRect(t *testing.T) {
	s := Size{Width: 1280, Height: 800}
	if got := s.Rect(); got != (Rect{X: 0, Y: 0, Width: 1280, Height: 800}) {
		t.Fatalf("Rect = %+v", got)
	}
	if s.IsZero() {
		t.Fatalf("expected non-zero size")
	}
	if !(Size{Width: 0, Height: 10}).IsZero() {
		t.Fatalf("expected zero-width size to be zero")
	}
}
