package geometry

// MinCropPx is the smallest crop dimension accepted on either axis.
const MinCropPx = 20

// Handle identifies which part of a rectangle a drag grabbed.
type Handle int

const (
	HandleNone Handle = iota
	HandleMove
	HandleN
	HandleS
	HandleE
	HandleW
	HandleNE
	HandleNW
	HandleSE
	HandleSW
)

// MapCropToImage converts a crop rectangle drawn over the on-screen scaled
// and centered image box into pixel coordinates of the original image:
//
//	img = (screen − boxOrigin) / scale
//
// The result is clamped to the image bounds. When the clamped rect falls
// under MinCropPx on an axis, the far edge is pushed inward relative to the
// edge being dragged so the crop never collapses.
func MapCropToImage(screen Rect, boxOrigin Point, scale float64, imgW, imgH float64, dragged Handle) Rect {
	if scale <= 0 {
		return Rect{}
	}
	img := Rect{
		X: (screen.X - boxOrigin.X) / scale,
		Y: (screen.Y - boxOrigin.Y) / scale,
		W: screen.W / scale,
		H: screen.H / scale,
	}
	img = img.ClampTo(imgW, imgH)
	return enforceMinSize(img, imgW, imgH, dragged)
}

// MapImageToScreen is the inverse of MapCropToImage for an unrotated view.
func MapImageToScreen(img Rect, boxOrigin Point, scale float64) Rect {
	return Rect{
		X: img.X*scale + boxOrigin.X,
		Y: img.Y*scale + boxOrigin.Y,
		W: img.W * scale,
		H: img.H * scale,
	}
}

func enforceMinSize(r Rect, imgW, imgH float64, dragged Handle) Rect {
	if r.W < MinCropPx {
		if draggedLeft(dragged) {
			// Left edge moved: keep the right edge, grow leftward.
			r.X = clamp(r.Right()-MinCropPx, 0, imgW-MinCropPx)
		} else {
			r.X = clamp(r.X, 0, imgW-MinCropPx)
		}
		r.W = MinCropPx
	}
	if r.H < MinCropPx {
		if draggedTop(dragged) {
			r.Y = clamp(r.Bottom()-MinCropPx, 0, imgH-MinCropPx)
		} else {
			r.Y = clamp(r.Y, 0, imgH-MinCropPx)
		}
		r.H = MinCropPx
	}
	return r
}

func draggedLeft(h Handle) bool {
	return h == HandleW || h == HandleNW || h == HandleSW
}

func draggedTop(h Handle) bool {
	return h == HandleN || h == HandleNE || h == HandleNW
}
