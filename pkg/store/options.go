package store

import (
	"github.com/inhies/go-bytesize"
)

type Option func(s *Store)

// WithMaxSize rejects inputs larger than max.
func WithMaxSize(max bytesize.ByteSize) Option {
	return func(s *Store) {
		s.maxSize = max
	}
}

// WithMaxPixels rejects inputs whose declared width*height exceeds n.
func WithMaxPixels(n int) Option {
	return func(s *Store) {
		s.maxPixels = n
	}
}
