package session

import (
	"fmt"
	"image"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"imgfx/pkg/effect"
	"imgfx/pkg/store"
)

var ErrNoResult = errors.New("no result to save")

func New(applier Applier, logger *zap.Logger) *Session {
	return &Session{
		applier: applier,
		history: NewHistory(3),
		log:     logger,
	}
}

// Session is the load, apply, save cycle of one user. The effect always runs
// on the loaded source, never on a previous result.
type Session struct {
	l sync.RWMutex

	applier Applier
	history *History
	log     *zap.Logger

	name   string
	source *image.NRGBA
	result *Result
}

// Load decodes src and makes it the current source. The previous result is
// dropped. On a decode failure nothing changes.
func (s *Session) Load(src *store.Source) error {
	img, format, err := src.Decode()
	if err != nil {
		return fmt.Errorf("load %q failed: %w", src.Name, err)
	}

	s.l.Lock()
	defer s.l.Unlock()

	s.name = src.Name
	s.source = img
	s.result = nil
	s.history.Reset()

	s.log.With(
		zap.String("name", src.Name),
		zap.String("format", format),
		zap.Stringer("size", src.Size()),
		zap.Int("w", img.Rect.Dx()),
		zap.Int("h", img.Rect.Dy()),
	).Debug("loaded")
	return nil
}

// Apply runs sel on the source. Without a source or with an invalid
// selector it does nothing and reports false.
func (s *Session) Apply(sel effect.Selector) (bool, error) {
	s.l.Lock()
	defer s.l.Unlock()

	log := s.log.With(zap.Stringer("effect", sel))

	if s.source == nil || !sel.Valid() {
		log.Debug("apply skipped")
		return false, nil
	}

	img, err := s.applier.Apply(s.source, sel)
	if err != nil {
		return false, fmt.Errorf("apply %s failed: %w", sel, err)
	}

	if s.result != nil {
		s.history.Push(s.result)
	}
	s.result = &Result{Effect: sel, Image: img}

	log.Debug("applied")
	return true, nil
}

// Undo restores the result before the last Apply.
func (s *Session) Undo() bool {
	s.l.Lock()
	defer s.l.Unlock()

	prev := s.history.Pop()
	if prev == nil {
		return false
	}
	s.result = prev
	return true
}

// Save writes the current result as PNG. Failures leave the session as is.
func (s *Session) Save(st *store.Store, name string) error {
	s.l.RLock()
	res := s.result
	s.l.RUnlock()

	if res == nil {
		return ErrNoResult
	}

	if err := st.Save(name, res.Image); err != nil {
		return fmt.Errorf("save %q failed: %w", name, err)
	}

	s.log.With(zap.String("name", name), zap.Stringer("effect", res.Effect)).Info("saved")
	return nil
}

func (s *Session) Name() string {
	s.l.RLock()
	defer s.l.RUnlock()
	return s.name
}

func (s *Session) Source() *image.NRGBA {
	s.l.RLock()
	defer s.l.RUnlock()
	return s.source
}

func (s *Session) Result() *Result {
	s.l.RLock()
	defer s.l.RUnlock()
	return s.result
}

func (s *Session) History() []*Result {
	s.l.RLock()
	defer s.l.RUnlock()
	return s.history.Logs()
}
