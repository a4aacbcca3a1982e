package effect

const (
	DefaultBlurRadius     = 10
	DefaultBlurIterations = 3
)

type Option func(e *Engine)

func WithBlurRadius(rx, ry int) Option {
	return func(e *Engine) {
		if rx > 0 {
			e.radiusX = rx
		}
		if ry > 0 {
			e.radiusY = ry
		}
	}
}

func WithBlurIterations(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.iterations = n
		}
	}
}
