package effect

import (
	"strings"

	"github.com/samber/lo"
)

// Selector picks the transformation Apply performs. The zero value selects
// nothing.
type Selector int

const (
	None Selector = iota
	Grayscale
	Inverse
	Blur
)

var names = map[Selector]string{
	Grayscale: "Grayscale",
	Inverse:   "Inverse",
	Blur:      "Blur",
}

// Selectors returns the valid selectors in display order.
func Selectors() []Selector {
	return []Selector{Grayscale, Inverse, Blur}
}

// Names returns the display names of the valid selectors.
func Names() []string {
	return lo.Map(Selectors(), func(s Selector, _ int) string {
		return s.String()
	})
}

func (s Selector) String() string {
	if name, ok := names[s]; ok {
		return name
	}
	return "None"
}

func (s Selector) Valid() bool {
	_, ok := names[s]
	return ok
}

// Parse matches name against the display names, ignoring case and
// surrounding spaces.
func Parse(name string) (Selector, bool) {
	name = strings.TrimSpace(name)
	for _, s := range Selectors() {
		if strings.EqualFold(s.String(), name) {
			return s, true
		}
	}
	return None, false
}
