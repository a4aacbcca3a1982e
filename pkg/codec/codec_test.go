package codec

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

func sample() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{G: 255, A: 255})
	img.SetNRGBA(2, 1, color.NRGBA{B: 255, A: 128})
	return img
}

func TestEncodeDecodePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sample()))

	img, format, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, sample().Pix, img.Pix)
}

func TestDecodeBMP(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 5))))

	img, format, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, "bmp", format)
	assert.Equal(t, image.Rect(0, 0, 4, 5), img.Rect)
}

func TestDecodeGIFAndJPEG(t *testing.T) {
	src := image.NewPaletted(image.Rect(0, 0, 6, 2), color.Palette{color.Black, color.White})

	var g bytes.Buffer
	require.NoError(t, gif.Encode(&g, src, nil))
	img, format, err := Decode(&g)
	require.NoError(t, err)
	assert.Equal(t, "gif", format)
	assert.Equal(t, 6, img.Rect.Dx())

	var j bytes.Buffer
	require.NoError(t, jpeg.Encode(&j, src, nil))
	img, format, err = Decode(&j)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 2, img.Rect.Dy())
}

func TestDecodeGarbage(t *testing.T) {
	_, _, err := Decode(bytes.NewBufferString("not an image"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecode))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "jpeg", Format("a/b/photo.JPG"))
	assert.Equal(t, "png", Format("png"))
	assert.Equal(t, "tiff", Format(".tif"))
	assert.Equal(t, "", Format("notes.txt"))
}

// headerOnlyPNG returns a grayscale PNG signature and IHDR chunk declaring
// w x h pixels, with no image data.
func headerOnlyPNG(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")

	ihdr := make([]byte, 17)
	copy(ihdr, "IHDR")
	binary.BigEndian.PutUint32(ihdr[4:], w)
	binary.BigEndian.PutUint32(ihdr[8:], h)
	ihdr[12] = 8 // bit depth, color type 0 (gray)

	_ = binary.Write(&buf, binary.BigEndian, uint32(13))
	buf.Write(ihdr)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(ihdr))
	return buf.Bytes()
}

func TestDecodeRejectsHugeDimensions(t *testing.T) {
	_, _, err := Decode(bytes.NewReader(headerOnlyPNG(50000, 50000)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooLarge))
}

func TestDecodeMaxPixelsOption(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sample()))

	_, _, err := Decode(bytes.NewReader(buf.Bytes()), WithMaxPixels(5))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooLarge))

	img, _, err := Decode(bytes.NewReader(buf.Bytes()), WithMaxPixels(6))
	require.NoError(t, err)
	assert.Equal(t, sample().Rect, img.Rect)
}

func TestEncodeReusesBuffers(t *testing.T) {
	for i := 0; i < 3; i++ {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, sample()))
		img, _, err := Decode(&buf)
		require.NoError(t, err)
		assert.Equal(t, sample().Pix, img.Pix)
	}
}
