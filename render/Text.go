package render

import (
	"fmt"
	"strings"

	"github.com/samuelfneumann/craft2d/environment/craft"
)

// Text renders an observation as one line per grid row followed by a
// line listing the inventory
func Text(o craft.Observation, reg *craft.Registry) string {
	var b strings.Builder
	for _, line := range gridLines(o, reg) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString(inventoryLine(o, reg))
	b.WriteByte('\n')
	return b.String()
}

// gridLines returns the rows of the grid with the agent drawn in
func gridLines(o craft.Observation, reg *craft.Registry) []string {
	lines := make([]string, o.Rows)
	row := make([]rune, o.Cols)
	for r := 0; r < o.Rows; r++ {
		for c := 0; c < o.Cols; c++ {
			p := craft.Position{Row: r, Col: c}
			if p == o.Position {
				row[c] = AgentGlyph(o.Facing)
			} else {
				row[c] = Glyph(reg, o.At(p))
			}
		}
		lines[r] = string(row)
	}
	return lines
}

func inventoryLine(o craft.Observation, reg *craft.Registry) string {
	held := make([]string, 0, len(o.Inventory))
	for i, count := range o.Inventory {
		held = append(held, fmt.Sprintf("%v: %d", reg.ItemName(craft.Item(i)),
			count))
	}
	return "inventory | " + strings.Join(held, "  ")
}
