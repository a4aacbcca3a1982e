package codec

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	_ "golang.org/x/image/webp"

	"imgfx/pkg/effect"
)

// DefaultMaxPixels caps decoded images at 64 megapixels (256MB as NRGBA).
const DefaultMaxPixels = 64 << 20

var (
	ErrDecode   = errors.New("decode image failed")
	ErrEncode   = errors.New("encode image failed")
	ErrTooLarge = errors.New("image too large")
)

type Option func(o *options)

type options struct {
	maxPixels int
}

// WithMaxPixels rejects images whose width*height exceeds n before any
// pixel data is decoded. Non-positive values keep DefaultMaxPixels.
func WithMaxPixels(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxPixels = n
		}
	}
}

// Decode reads any registered raster format (PNG, JPEG, GIF, BMP, TIFF,
// WebP), applies EXIF orientation and returns an NRGBA buffer anchored at
// the origin together with the format name.
func Decode(r io.Reader, opts ...Option) (*image.NRGBA, string, error) {
	o := options{maxPixels: DefaultMaxPixels}
	for _, opt := range opts {
		opt(&o)
	}

	bs, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s", ErrDecode, err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(bs))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %s", ErrDecode, err)
	}

	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > int64(o.maxPixels) {
		return nil, format, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrTooLarge, cfg.Width, cfg.Height, o.maxPixels)
	}

	img, err := imaging.Decode(bytes.NewReader(bs), imaging.AutoOrientation(true))
	if err != nil {
		return nil, format, fmt.Errorf("%w: %s", ErrDecode, err)
	}

	return effect.FromImage(img), format, nil
}

// Encode writes img as PNG.
func Encode(w io.Writer, img image.Image) error {
	enc := png.Encoder{
		CompressionLevel: png.DefaultCompression,
		BufferPool:       encoderBuffers,
	}
	if err := enc.Encode(w, img); err != nil {
		return fmt.Errorf("%w: %s", ErrEncode, err)
	}
	return nil
}

// Format maps a file name or extension to a format name, "" when unknown.
func Format(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "" {
		ext = strings.ToLower(name)
	}
	switch ext {
	case "jpg", "jpeg":
		return "jpeg"
	case "tif", "tiff":
		return "tiff"
	case "png", "gif", "bmp", "webp":
		return ext
	}
	return ""
}

// bufferPool reuses png encoder state between Encode calls. An empty pool
// hands out nil, which png.Encoder replaces with a fresh buffer.
type bufferPool sync.Pool

func (p *bufferPool) Get() *png.EncoderBuffer {
	buf, _ := (*sync.Pool)(p).Get().(*png.EncoderBuffer)
	return buf
}

func (p *bufferPool) Put(buf *png.EncoderBuffer) {
	(*sync.Pool)(p).Put(buf)
}

var encoderBuffers = &bufferPool{}
