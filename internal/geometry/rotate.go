package geometry

import "math"

// MaxRotationDeg bounds the deskew angle the viewer accepts.
const MaxRotationDeg = 45

// RotationZoom returns the minimal uniform scale that keeps a w×h image
// rotated by thetaDeg covering its original bounding box:
//
//	zoom = max(cosθ + (h/w)·sinθ, (w/h)·sinθ + cosθ)
//
// At θ=0 the zoom is exactly 1. The angle is clamped to ±MaxRotationDeg.
func RotationZoom(thetaDeg, w, h float64) float64 {
	if w <= 0 || h <= 0 {
		return 1
	}
	theta := clamp(thetaDeg, -MaxRotationDeg, MaxRotationDeg)
	rad := math.Abs(theta) * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	horizontal := cos + (h/w)*sin
	vertical := (w/h)*sin + cos
	return math.Max(horizontal, vertical)
}
