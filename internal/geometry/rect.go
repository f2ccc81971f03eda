// Package geometry holds the pure coordinate transforms behind every edit
// operation: crop mapping between screen and image space, rotation
// bounding-box zoom, and the dual-rectangle split layout. Functions take and
// return rectangles, scales, and angles, never pixel buffers, so any
// rendering backend can drive them.
package geometry

// Point is a 2D coordinate.
type Point struct {
	X float64
	Y float64
}

// Rect is an axis-aligned rectangle. The same type carries pixel rectangles
// and fraction-of-image rectangles in [0,1]; context decides the unit.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Right returns the X coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the Y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Scale converts a fractional rect into pixel space for a w×h image.
func (r Rect) Scale(w, h float64) Rect {
	return Rect{X: r.X * w, Y: r.Y * h, W: r.W * w, H: r.H * h}
}

// Normalize converts a pixel rect into fractions of a w×h image.
func (r Rect) Normalize(w, h float64) Rect {
	if w <= 0 || h <= 0 {
		return Rect{}
	}
	return Rect{X: r.X / w, Y: r.Y / h, W: r.W / w, H: r.H / h}
}

// ClampTo confines r to the box (0,0)-(w,h), shrinking it when needed.
func (r Rect) ClampTo(w, h float64) Rect {
	x0 := clamp(r.X, 0, w)
	y0 := clamp(r.Y, 0, h)
	x1 := clamp(r.Right(), 0, w)
	y1 := clamp(r.Bottom(), 0, h)
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// InUnit reports whether r lies within the unit square with positive size.
func (r Rect) InUnit() bool {
	return r.W > 0 && r.H > 0 &&
		r.X >= 0 && r.Y >= 0 &&
		r.Right() <= 1 && r.Bottom() <= 1
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
