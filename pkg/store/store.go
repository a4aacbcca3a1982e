package store

import (
	"bytes"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/inhies/go-bytesize"
	"github.com/rs/xid"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"imgfx/pkg/codec"
)

var ErrTooLarge = codec.ErrTooLarge

func New(dir string, logger *zap.Logger, opts ...Option) (*Store, error) {
	fs, err := newFs(dir)
	if err != nil {
		return nil, fmt.Errorf("create store failed: %w", err)
	}

	return NewWithFs(fs, logger, opts...), nil
}

func NewWithFs(fs afero.Fs, logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		fs:  fs,
		log: logger,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

type Store struct {
	fs  afero.Fs
	log *zap.Logger
	// options
	maxSize   bytesize.ByteSize // 0 means unlimited
	maxPixels int               // 0 means codec.DefaultMaxPixels
}

// Load reads the encoded image stored under name.
func (s *Store) Load(name string) (*Source, error) {
	if s.maxSize > 0 {
		info, err := s.fs.Stat(name)
		if err != nil {
			return nil, fmt.Errorf("stat %q failed: %w", name, err)
		}
		if err := checkSize(bytesize.ByteSize(info.Size()), s.maxSize); err != nil {
			return nil, fmt.Errorf("load %q failed: %w", name, err)
		}
	}

	bs, err := afero.ReadFile(s.fs, name)
	if err != nil {
		return nil, fmt.Errorf("read %q failed: %w", name, err)
	}

	s.log.With(zap.String("name", name), zap.Stringer("size", bytesize.ByteSize(len(bs)))).Debug("loaded")
	return NewSource(name, bs).WithMaxPixels(s.maxPixels), nil
}

// Save encodes img as PNG under name. The image is written to a temporary
// file next to name and renamed over it, so a failed save leaves any
// existing file untouched.
func (s *Store) Save(name string, img image.Image) error {
	if f := codec.Format(name); f != "png" {
		s.log.With(zap.String("name", name), zap.String("format", f)).Warn("output is always written as png")
	}

	var buf bytes.Buffer
	if err := codec.Encode(&buf, img); err != nil {
		return err
	}

	dir := filepath.Dir(name)
	if exists, err := afero.DirExists(s.fs, dir); err != nil {
		return fmt.Errorf("check dir %q failed: %w", dir, err)
	} else if !exists {
		if err2 := s.fs.MkdirAll(dir, 0755); err2 != nil {
			return fmt.Errorf("create dir %q failed: %w", dir, err2)
		}
	}

	tmp := filepath.Join(dir, "."+xid.New().String()+".tmp")
	if err := afero.WriteFile(s.fs, tmp, buf.Bytes(), 0644); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("write %q failed: %w", name, err)
	}

	if err := s.fs.Rename(tmp, name); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("rename %q failed: %w", name, err)
	}

	s.log.With(zap.String("name", name), zap.Stringer("size", bytesize.ByteSize(buf.Len()))).Debug("saved")
	return nil
}

// OutputName derives the PNG name for an input: dir/base<suffix>.png.
func OutputName(input, dir, suffix string) string {
	base := filepath.Base(input)
	if IsURL(input) {
		base = filepath.Base(strings.SplitN(input, "?", 2)[0])
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if dir == "" {
		dir = lo.Ternary(IsURL(input), ".", filepath.Dir(input))
	}
	return filepath.Join(dir, base+suffix+".png")
}

func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func checkSize(size, max bytesize.ByteSize) error {
	if max > 0 && size > max {
		return fmt.Errorf("%w: %s > %s", ErrTooLarge, size, max)
	}
	return nil
}
