package store

import (
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"imgfx/pkg/codec"
)

func sample() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	img.SetNRGBA(1, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	return img
}

func TestSaveLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewWithFs(fs, zap.NewNop())

	require.NoError(t, s.Save("out/nested/a.png", sample()))

	src, err := s.Load("out/nested/a.png")
	require.NoError(t, err)
	img, format, err := src.Decode()
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, sample().Pix, img.Pix)

	infos, err := afero.ReadDir(fs, "out/nested")
	require.NoError(t, err)
	assert.Len(t, infos, 1, "temporary file left behind")
}

func TestSaveOverwrites(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewWithFs(fs, zap.NewNop())
	require.NoError(t, afero.WriteFile(fs, "a.png", []byte("old"), 0644))

	require.NoError(t, s.Save("a.png", sample()))

	src, err := s.Load("a.png")
	require.NoError(t, err)
	_, _, err = src.Decode()
	assert.NoError(t, err)
}

func TestSaveReadOnlyKeepsExisting(t *testing.T) {
	base := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(base, "a.png", []byte("old"), 0644))
	s := NewWithFs(afero.NewReadOnlyFs(base), zap.NewNop())

	require.Error(t, s.Save("a.png", sample()))

	bs, err := afero.ReadFile(base, "a.png")
	require.NoError(t, err)
	assert.Equal(t, "old", string(bs))
}

func TestLoadMissing(t *testing.T) {
	s := NewWithFs(afero.NewMemMapFs(), zap.NewNop())
	_, err := s.Load("missing.png")
	assert.Error(t, err)
}

func TestLoadMaxSize(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "big.png", make([]byte, 2048), 0644))
	s := NewWithFs(fs, zap.NewNop(), WithMaxSize(1024))

	_, err := s.Load("big.png")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooLarge))
}

func TestNewMissingDir(t *testing.T) {
	_, err := New("/definitely/not/here", zap.NewNop())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoDir))
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "pics/cat-blur.png", OutputName("pics/cat.jpg", "", "-blur"))
	assert.Equal(t, "out/cat.png", OutputName("pics/cat.jpg", "out", ""))
	assert.Equal(t, "dog-inverse.png", OutputName("https://example.com/img/dog.webp?x=1", "", "-inverse"))
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://example.com/a.png"))
	assert.True(t, IsURL("http://example.com/a.png"))
	assert.False(t, IsURL("/tmp/a.png"))
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/a.png":
			_ = codec.Encode(w, sample())
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	d := NewDownloader(zap.NewNop(), WithProgress(nil))

	src, err := d.Fetch(srv.URL + "/a.png")
	require.NoError(t, err)
	img, _, err := src.Decode()
	require.NoError(t, err)
	assert.Equal(t, sample().Rect, img.Rect)

	_, err = d.Fetch(srv.URL + "/missing.png")
	assert.Error(t, err)
}

func TestFetchLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 4096))
	}))
	defer srv.Close()

	d := NewDownloader(zap.NewNop(), WithProgress(nil), WithDownloadLimit(1024))
	_, err := d.Fetch(srv.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooLarge))
}

func TestLoadMaxPixels(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewWithFs(fs, zap.NewNop(), WithMaxPixels(11))
	require.NoError(t, s.Save("a.png", sample()))

	src, err := s.Load("a.png")
	require.NoError(t, err)
	_, _, err = src.Decode()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooLarge))

	s = NewWithFs(fs, zap.NewNop(), WithMaxPixels(12))
	src, err = s.Load("a.png")
	require.NoError(t, err)
	_, _, err = src.Decode()
	assert.NoError(t, err)
}

func TestFetchMaxPixels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = codec.Encode(w, sample())
	}))
	defer srv.Close()

	d := NewDownloader(zap.NewNop(), WithProgress(nil), WithDownloadPixels(2))
	src, err := d.Fetch(srv.URL + "/a.png")
	require.NoError(t, err)
	_, _, err = src.Decode()
	require.Error(t, err)
	assert.True(t, errors.Is(err, codec.ErrTooLarge))
}
