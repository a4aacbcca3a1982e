package store

import (
	"bytes"
	"image"

	"github.com/inhies/go-bytesize"

	"imgfx/pkg/codec"
)

// Source is an encoded input image, read from a store or fetched from a URL.
type Source struct {
	Name      string
	bytes     []byte
	maxPixels int
}

func NewSource(name string, bs []byte) *Source {
	return &Source{Name: name, bytes: bs}
}

func (s *Source) Bytes() []byte {
	return s.bytes
}

func (s *Source) Size() bytesize.ByteSize {
	return bytesize.ByteSize(len(s.bytes))
}

// WithMaxPixels limits the dimensions Decode accepts; see
// codec.WithMaxPixels.
func (s *Source) WithMaxPixels(n int) *Source {
	s.maxPixels = n
	return s
}

// Decode returns the pixel buffer and format name of the source.
func (s *Source) Decode() (*image.NRGBA, string, error) {
	return codec.Decode(bytes.NewReader(s.bytes), codec.WithMaxPixels(s.maxPixels))
}
