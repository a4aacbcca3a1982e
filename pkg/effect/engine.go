package effect

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

func New(opts ...Option) *Engine {
	e := &Engine{
		radiusX:    DefaultBlurRadius,
		radiusY:    DefaultBlurRadius,
		iterations: DefaultBlurIterations,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Engine holds the blur parameters. It has no other state and is safe for
// concurrent use.
type Engine struct {
	radiusX    int
	radiusY    int
	iterations int
}

// Apply runs sel over src with the default parameters.
func Apply(src *image.NRGBA, sel Selector, opts ...Option) *image.NRGBA {
	return New(opts...).Apply(src, sel)
}

// Apply returns a new buffer holding src transformed by sel. src is never
// modified and the result always has the dimensions of src. Selectors
// outside Selectors() produce an unchanged copy.
func (e *Engine) Apply(src *image.NRGBA, sel Selector) *image.NRGBA {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	if w == 0 || h == 0 {
		return image.NewNRGBA(image.Rect(0, 0, w, h))
	}

	switch sel {
	case Grayscale:
		return imaging.AdjustFunc(src, gray)
	case Inverse:
		return imaging.Invert(src)
	case Blur:
		return boxBlur(src, e.radiusX, e.radiusY, e.iterations)
	}

	return imaging.Clone(src)
}

// FromImage converts img into an NRGBA buffer anchored at the origin.
func FromImage(img image.Image) *image.NRGBA {
	return imaging.Clone(img)
}

// gray is floor(0.299R + 0.587G + 0.114B) in integer arithmetic.
func gray(c color.NRGBA) color.NRGBA {
	y := uint8((299*uint32(c.R) + 587*uint32(c.G) + 114*uint32(c.B)) / 1000)
	return color.NRGBA{R: y, G: y, B: y, A: c.A}
}
