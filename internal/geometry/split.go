package geometry

// SplitRect is one page rectangle of a spread layout. Enabled persists
// whether a page is present on that side.
type SplitRect struct {
	Rect    Rect `json:"rect"`
	Enabled bool `json:"enabled"`
}

// SplitLayout holds the two independent page rectangles of single-shot split
// mode, in fractions of image dimensions.
type SplitLayout struct {
	Left  SplitRect
	Right SplitRect
}

// Default split layout placement: each page box takes 48% of the width and
// 95% of the height, 2% in from its near edge, vertically centered.
const (
	defaultSplitWidth  = 0.48
	defaultSplitHeight = 0.95
	defaultSplitMargin = 0.02
)

// DefaultSplitLayout returns the starting layout for an image with no saved
// layout and no predecessor to inherit from.
func DefaultSplitLayout() SplitLayout {
	y := (1 - defaultSplitHeight) / 2
	left := Rect{X: defaultSplitMargin, Y: y, W: defaultSplitWidth, H: defaultSplitHeight}
	right := Rect{X: 1 - defaultSplitMargin - defaultSplitWidth, Y: y, W: defaultSplitWidth, H: defaultSplitHeight}
	return SplitLayout{
		Left:  SplitRect{Rect: left, Enabled: true},
		Right: SplitRect{Rect: right, Enabled: true},
	}
}

// ApplyHandleDrag moves or resizes a pixel-space rectangle by (dx, dy)
// according to the grabbed handle, keeping it inside the image box and at
// least MinCropPx on each axis.
func ApplyHandleDrag(r Rect, h Handle, dx, dy, imgW, imgH float64) Rect {
	switch h {
	case HandleMove:
		r.X = clamp(r.X+dx, 0, imgW-r.W)
		r.Y = clamp(r.Y+dy, 0, imgH-r.H)
		return r
	case HandleNone:
		return r
	}

	left, top := r.X, r.Y
	right, bottom := r.Right(), r.Bottom()

	if draggedLeft(h) {
		left = clamp(left+dx, 0, right-MinCropPx)
	}
	if h == HandleE || h == HandleNE || h == HandleSE {
		right = clamp(right+dx, left+MinCropPx, imgW)
	}
	if draggedTop(h) {
		top = clamp(top+dy, 0, bottom-MinCropPx)
	}
	if h == HandleS || h == HandleSE || h == HandleSW {
		bottom = clamp(bottom+dy, top+MinCropPx, imgH)
	}

	return Rect{X: left, Y: top, W: right - left, H: bottom - top}
}
