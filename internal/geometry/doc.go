// Package geometry holds the value types and pure arithmetic shared by the
// window engine: points, viewport sizes, rectangles, the minimum window size
// and the snap edge bands.
package geometry
