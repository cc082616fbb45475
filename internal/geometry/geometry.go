package geometry

// MinSize is the smallest width or height a Normal or Maximized window may have.
const MinSize = 100

// EdgeBand is the distance from a viewport side, in pixels, inside which a
// dragged pointer requests a snap.
const EdgeBand = 10

// Point is a position in viewport space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Size is the extent of a viewport.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect returns the rectangle covering the whole viewport.
func (s Size) Rect() Rect {
	return Rect{X: 0, Y: 0, Width: s.Width, Height: s.Height}
}

// IsZero reports whether the size has no area.
func (s Size) IsZero() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Rect represents a window position and size
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// TopLeft returns the rectangle origin.
func (r Rect) TopLeft() Point {
	return Point{X: r.X, Y: r.Y}
}

// MoveTo returns r with its origin at p.
func (r Rect) MoveTo(p Point) Rect {
	r.X = p.X
	r.Y = p.Y
	return r
}

// Contains checks if a point is within the rect, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 {
	return r.X + r.Width
}

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 {
	return r.Y + r.Height
}

// ClampSize raises w and h to MinSize.
func ClampSize(w, h float64) (float64, float64) {
	return max(w, MinSize), max(h, MinSize)
}

// WithinLeftEdgeBand reports whether pointerX is close enough to the left
// viewport side to request a left snap.
func WithinLeftEdgeBand(pointerX float64) bool {
	return pointerX < EdgeBand
}

// WithinRightEdgeBand reports whether pointerX is close enough to the right
// viewport side to request a right snap.
func WithinRightEdgeBand(pointerX, viewportWidth float64) bool {
	return viewportWidth-pointerX < EdgeBand
}
