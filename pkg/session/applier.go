package session

import (
	"image"

	"imgfx/pkg/effect"
)

// Applier runs an effect. The local engine never fails; remote appliers may.
type Applier interface {
	Apply(src *image.NRGBA, sel effect.Selector) (*image.NRGBA, error)
}

func Local(e *effect.Engine) Applier {
	return local{e}
}

type local struct {
	e *effect.Engine
}

func (l local) Apply(src *image.NRGBA, sel effect.Selector) (*image.NRGBA, error) {
	return l.e.Apply(src, sel), nil
}
