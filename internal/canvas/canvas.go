// Package canvas maps an arbitrary-aspect hand crop onto the fixed square
// canvas the classifier is trained on.
package canvas

import (
	"errors"
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"
)

// Defaults used by the classifier model.
const (
	DefaultOffset = 20
	DefaultSize   = 300
)

// ErrEmptyCrop means no canvas could be built for this frame.
var ErrEmptyCrop = errors.New("canvas: empty crop")

// Layout describes how a crop is placed on the canvas.
type Layout struct {
	// Crop is the padded box clamped to the source image.
	Crop image.Rectangle
	// Resize is the size the crop is scaled to.
	Resize image.Point
	// Paste is where the resized crop lands on the canvas.
	Paste image.Rectangle
}

// Plan computes the layout for box inside an image with the given bounds.
// The aspect ratio comes from the unpadded box; the padded, clamped crop is
// what gets resized.
func Plan(bounds, box image.Rectangle, offset, size int) (Layout, error) {
	if box.Dx() <= 0 || box.Dy() <= 0 || size <= 0 {
		return Layout{}, ErrEmptyCrop
	}

	crop := image.Rect(box.Min.X-offset, box.Min.Y-offset, box.Max.X+offset, box.Max.Y+offset).Intersect(bounds)
	if crop.Empty() {
		return Layout{}, ErrEmptyCrop
	}

	w, h := box.Dx(), box.Dy()
	l := Layout{Crop: crop}

	if h > w {
		// k = size/h; width = ceil(k*w)
		rw := min(int(math.Ceil(float64(size)*float64(w)/float64(h))), size)
		gap := (size - rw) / 2
		l.Resize = image.Pt(rw, size)
		l.Paste = image.Rect(gap, 0, gap+rw, size)
	} else {
		rh := min(int(math.Ceil(float64(size)*float64(h)/float64(w))), size)
		gap := (size - rh) / 2
		l.Resize = image.Pt(size, rh)
		l.Paste = image.Rect(0, gap, size, gap+rh)
	}

	return l, nil
}

// Normalizer builds classification canvases from frames.
type Normalizer struct {
	Offset int
	Size   int
}

// NewNormalizer returns a Normalizer with the default padding and size.
func NewNormalizer() *Normalizer {
	return &Normalizer{Offset: DefaultOffset, Size: DefaultSize}
}

// Normalize crops box (padded) out of src and pastes it, aspect preserved,
// centered on a white Size x Size canvas. The caller owns the returned Mat.
// Any failure, including a panic inside OpenCV, is reported as ErrEmptyCrop.
func (n *Normalizer) Normalize(src gocv.Mat, box image.Rectangle) (out gocv.Mat, err error) {
	if src.Empty() {
		return gocv.Mat{}, ErrEmptyCrop
	}

	layout, err := Plan(image.Rect(0, 0, src.Cols(), src.Rows()), box, n.Offset, n.Size)
	if err != nil {
		return gocv.Mat{}, err
	}

	canvas := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), n.Size, n.Size, src.Type())
	defer func() {
		if r := recover(); r != nil {
			canvas.Close()
			out, err = gocv.Mat{}, fmt.Errorf("%w: %v", ErrEmptyCrop, r)
		}
	}()

	crop := src.Region(layout.Crop)
	defer crop.Close()

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(crop, &resized, layout.Resize, 0, 0, gocv.InterpolationLinear)
	if resized.Empty() || resized.Cols() != layout.Resize.X || resized.Rows() != layout.Resize.Y {
		canvas.Close()
		return gocv.Mat{}, ErrEmptyCrop
	}

	dst := canvas.Region(layout.Paste)
	defer dst.Close()
	resized.CopyTo(&dst)

	return canvas, nil
}
