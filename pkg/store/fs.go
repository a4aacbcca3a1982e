package store

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

var ErrNoDir = errors.New("dir not exists")

func newFs(path string) (afero.Fs, error) {
	fs := afero.NewOsFs()
	if path == "" {
		return fs, nil
	}

	if exists, err := afero.DirExists(fs, path); err != nil {
		return nil, fmt.Errorf("check dir failed: %w", err)
	} else if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNoDir, path)
	}
	return afero.NewBasePathFs(fs, path), nil
}
