// Package render draws Craft observations as text, on a terminal
// screen, or as PNG images. Renderers only read observations.
package render

import (
	"unicode/utf8"

	"github.com/samuelfneumann/craft2d/environment/craft"
)

// Empty is the glyph of an empty cell
const Empty = '.'

// Glyphs maps the kind names of the built-in worlds to the runes drawn
// for them. Other kinds are drawn with the first rune of their name.
var Glyphs = map[string]rune{
	"tree":           'T',
	"stone":          'S',
	"grass":          '"',
	"crafting-table": 'C',
	"water":          '~',
	"gem":            '*',
	"bridge":         '=',
}

// Glyph returns the rune drawn for kind k
func Glyph(reg *craft.Registry, k craft.Kind) rune {
	if k == craft.NoKind {
		return Empty
	}
	name := reg.KindName(k)
	if g, ok := Glyphs[name]; ok {
		return g
	}
	r, _ := utf8.DecodeRuneInString(name)
	return r
}

// AgentGlyph returns the rune drawn for the agent facing f
func AgentGlyph(f craft.Facing) rune {
	switch f {
	case craft.FacingRight:
		return '>'
	case craft.FacingLeft:
		return '<'
	case craft.FacingUp:
		return '^'
	case craft.FacingDown:
		return 'v'
	}
	return '@'
}
