package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/samuelfneumann/craft2d/environment/craft"
)

// Colours of the built-in kinds on a terminal
var terminalColours = map[string]tcell.Color{
	"tree":           tcell.ColorGreen,
	"stone":          tcell.ColorGray,
	"grass":          tcell.ColorLime,
	"crafting-table": tcell.ColorMaroon,
	"water":          tcell.ColorBlue,
	"gem":            tcell.ColorFuchsia,
	"bridge":         tcell.ColorOlive,
}

// Terminal draws observations on a tcell screen. The grid is drawn at
// the top left of the screen, followed by the inventory and any status
// lines.
type Terminal struct {
	screen tcell.Screen
	reg    *craft.Registry
}

// NewTerminal returns a Terminal drawing on an initialized screen
func NewTerminal(screen tcell.Screen, reg *craft.Registry) *Terminal {
	return &Terminal{screen: screen, reg: reg}
}

// Draw draws the observation and status lines, then shows the screen
func (t *Terminal) Draw(o craft.Observation, status ...string) {
	t.screen.Clear()

	for r := 0; r < o.Rows; r++ {
		for c := 0; c < o.Cols; c++ {
			p := craft.Position{Row: r, Col: c}
			if p == o.Position {
				style := tcell.StyleDefault.Foreground(tcell.ColorYellow).
					Bold(true)
				t.screen.SetContent(c, r, AgentGlyph(o.Facing), nil, style)
				continue
			}

			k := o.At(p)
			style := tcell.StyleDefault
			if colour, ok := terminalColours[t.reg.KindName(k)]; ok {
				style = style.Foreground(colour)
			}
			t.screen.SetContent(c, r, Glyph(t.reg, k), nil, style)
		}
	}

	y := o.Rows + 1
	t.line(y, inventoryLine(o, t.reg))
	for i, s := range status {
		t.line(y+2+i, s)
	}
	t.screen.Show()
}

// line writes s on row y
func (t *Terminal) line(y int, s string) {
	x := 0
	for _, r := range s {
		t.screen.SetContent(x, y, r, nil, tcell.StyleDefault)
		x++
	}
}

// ActionForKey returns the action bound to a key. Arrow keys and w, a,
// s, d move, space and e use, and the digits 0 to 4 select actions by
// their integer code.
func ActionForKey(ev *tcell.EventKey) (craft.Action, bool) {
	switch ev.Key() {
	case tcell.KeyRight:
		return craft.Right, true
	case tcell.KeyLeft:
		return craft.Left, true
	case tcell.KeyUp:
		return craft.Up, true
	case tcell.KeyDown:
		return craft.Down, true
	case tcell.KeyRune:
	default:
		return 0, false
	}

	switch r := ev.Rune(); r {
	case 'd':
		return craft.Right, true
	case 'a':
		return craft.Left, true
	case 'w':
		return craft.Up, true
	case 's':
		return craft.Down, true
	case ' ', 'e':
		return craft.Use, true
	default:
		if a, err := craft.ParseAction(int(r - '0')); err == nil {
			return a, true
		}
	}
	return 0, false
}
