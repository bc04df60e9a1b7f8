// Package style maps user-selectable color keys to rendering styles.
package style

import (
	"fmt"
	"image/color"
	"sort"

	"github.com/phambaophuc/watermark-bot/internal/models"
)

// Declared is the order keys are offered in.
var Declared = []models.StyleKey{
	models.StyleWhite,
	models.StyleBlack,
	models.StyleRed,
	models.StyleBlue,
	models.StyleYellow,
}

// Resolver is read-only after construction and safe for concurrent use.
type Resolver struct {
	palette map[models.StyleKey]models.Style
	keys    []models.StyleKey
	def     models.Style
}

// NewResolver copies palette so later changes to the caller's map are not
// observed. The default key must be present in the palette.
func NewResolver(palette map[models.StyleKey]models.Style, defaultKey models.StyleKey) (*Resolver, error) {
	if len(palette) == 0 {
		return nil, fmt.Errorf("empty palette")
	}

	p := make(map[models.StyleKey]models.Style, len(palette))
	for k, s := range palette {
		s.Key = k
		p[k] = s
	}

	def, ok := p[defaultKey]
	if !ok {
		return nil, fmt.Errorf("default style %q not in palette", defaultKey)
	}

	return &Resolver{
		palette: p,
		keys:    orderKeys(p),
		def:     def,
	}, nil
}

// Resolve returns the style for key, or the default for the empty or an
// unknown key.
func (r *Resolver) Resolve(key models.StyleKey) models.Style {
	if s, ok := r.palette[key]; ok {
		return s
	}
	return r.def
}

func (r *Resolver) Lookup(key models.StyleKey) (models.Style, bool) {
	s, ok := r.palette[key]
	return s, ok
}

func (r *Resolver) Default() models.Style {
	return r.def
}

// Keys lists the palette in declared order, then any extra keys sorted.
func (r *Resolver) Keys() []models.StyleKey {
	out := make([]models.StyleKey, len(r.keys))
	copy(out, r.keys)
	return out
}

func (r *Resolver) Styles() []models.StyleResponse {
	out := make([]models.StyleResponse, 0, len(r.keys))
	for _, k := range r.keys {
		s := r.palette[k]
		out = append(out, models.StyleResponse{
			Key:         k,
			DisplayName: s.DisplayName,
			RGBA:        rgba(s.Tint),
			Default:     k == r.def.Key,
		})
	}
	return out
}

func rgba(c color.NRGBA) [4]uint8 {
	return [4]uint8{c.R, c.G, c.B, c.A}
}

func orderKeys(p map[models.StyleKey]models.Style) []models.StyleKey {
	keys := make([]models.StyleKey, 0, len(p))
	seen := make(map[models.StyleKey]bool, len(p))
	for _, k := range Declared {
		if _, ok := p[k]; ok {
			keys = append(keys, k)
			seen[k] = true
		}
	}

	var extra []models.StyleKey
	for k := range p {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })

	return append(keys, extra...)
}
