// Package codec defines the image-processing collaborator the workflow
// delegates pixel work to. The orchestrator only ever needs dimensions,
// in-place edits, and split output; the actual raster backend plugs in behind
// this interface.
package codec

import (
	"context"

	"folio/internal/geometry"
)

// Dimensions is an image's pixel size.
type Dimensions struct {
	W int
	H int
}

// Edits is one batch of destructive page adjustments. A nil Crop leaves the
// frame untouched; zero values leave the other adjustments untouched.
type Edits struct {
	// Crop is the retained region in pixel coordinates.
	Crop *geometry.Rect
	// RotationDeg is the fine-rotation angle; the image is zoomed per
	// geometry.RotationZoom so no blank corners appear.
	RotationDeg float64
	// Brightness and Contrast are offsets from neutral zero.
	Brightness float64
	Contrast   float64
}

// IsZero reports whether the edits would change nothing.
func (e Edits) IsZero() bool {
	return e.Crop == nil && e.RotationDeg == 0 && e.Brightness == 0 && e.Contrast == 0
}

// Codec performs the pixel operations of the workflow.
type Codec interface {
	// Decode returns the dimensions of the image at path.
	Decode(ctx context.Context, path string) (Dimensions, error)

	// Apply rewrites the image at path with the given edits.
	Apply(ctx context.Context, path string, edits Edits) error

	// SaveCopy writes a decoded copy of src to dst, re-encoding by dst's
	// extension.
	SaveCopy(ctx context.Context, src, dst string) error

	// Split cuts the enabled page rectangles of layout (fractions of the
	// image) out of src and writes them into destDir, left page first.
	// It returns the written paths.
	Split(ctx context.Context, src string, layout geometry.SplitLayout, destDir string) ([]string, error)
}
