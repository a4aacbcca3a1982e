package session

import (
	"image"

	"github.com/samber/lo"

	"imgfx/pkg/effect"
)

func NewHistory(max int) *History {
	return &History{max: max}
}

type History struct {
	max   int
	items []*Result
}

type Result struct {
	Effect effect.Selector
	Image  *image.NRGBA
}

func (h *History) Push(item *Result) {
	h.items = append(h.items, item)
	if len(h.items) > h.max {
		h.items = h.items[1:]
	}
}

func (h *History) Pop() *Result {
	item, err := lo.Last(h.items)
	if err != nil {
		return nil
	}
	h.items = h.items[:len(h.items)-1]
	return item
}

func (h *History) Logs() []*Result {
	return append([]*Result(nil), h.items...)
}

func (h *History) Reset() {
	h.items = nil
}
