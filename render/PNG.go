package render

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/fogleman/gg"
	"github.com/samuelfneumann/craft2d/environment/craft"
)

var (
	// Background is the colour of empty cells
	Background = color.RGBA{R: 235, G: 225, B: 200, A: 255}

	// AgentColour is the colour of the agent
	AgentColour = color.RGBA{R: 200, G: 40, B: 40, A: 255}

	// UnknownColour is the colour of kinds missing from Colours
	UnknownColour = color.RGBA{R: 30, G: 30, B: 30, A: 255}
)

// Colours maps the kind names of the built-in worlds to their colour
// in images
var Colours = map[string]color.RGBA{
	"tree":           {R: 34, G: 110, B: 50, A: 255},
	"stone":          {R: 128, G: 128, B: 128, A: 255},
	"grass":          {R: 120, G: 200, B: 80, A: 255},
	"crafting-table": {R: 140, G: 90, B: 40, A: 255},
	"water":          {R: 50, G: 100, B: 220, A: 255},
	"gem":            {R: 230, G: 60, B: 220, A: 255},
	"bridge":         {R: 170, G: 130, B: 80, A: 255},
}

// Image draws an observation with each cell a square of cell pixels.
// The agent is drawn as a triangle pointing in the direction it faces,
// or a circle if it faces no direction.
func Image(o craft.Observation, reg *craft.Registry, cell int) image.Image {
	if cell < 1 {
		panic(fmt.Sprintf("image: cell size must be positive, have %d", cell))
	}
	size := float64(cell)

	dc := gg.NewContext(o.Cols*cell, o.Rows*cell)
	dc.SetColor(Background)
	dc.Clear()

	for r := 0; r < o.Rows; r++ {
		for c := 0; c < o.Cols; c++ {
			k := o.At(craft.Position{Row: r, Col: c})
			if k == craft.NoKind {
				continue
			}
			colour, ok := Colours[reg.KindName(k)]
			if !ok {
				colour = UnknownColour
			}
			dc.DrawRectangle(float64(c)*size, float64(r)*size, size, size)
			dc.SetColor(colour)
			dc.Fill()
		}
	}

	x := (float64(o.Position.Col) + 0.5) * size
	y := (float64(o.Position.Row) + 0.5) * size
	radius := 0.4 * size
	if rotation, ok := rotations[o.Facing]; ok {
		dc.DrawRegularPolygon(3, x, y, radius, rotation)
	} else {
		dc.DrawCircle(x, y, radius)
	}
	dc.SetColor(AgentColour)
	dc.Fill()

	return dc.Image()
}

// rotations of the agent triangle, so that one vertex points in the
// facing direction
var rotations = map[craft.Facing]float64{
	craft.FacingUp:    0,
	craft.FacingRight: math.Pi / 2,
	craft.FacingDown:  math.Pi,
	craft.FacingLeft:  -math.Pi / 2,
}

// SavePNG draws an observation and saves it as a PNG file
func SavePNG(path string, o craft.Observation, reg *craft.Registry,
	cell int) error {
	if err := gg.SavePNG(path, Image(o, reg, cell)); err != nil {
		return fmt.Errorf("savePNG: %w", err)
	}
	return nil
}

// EncodePNG draws an observation and writes it to w in PNG format
func EncodePNG(w io.Writer, o craft.Observation, reg *craft.Registry,
	cell int) error {
	dc := gg.NewContextForImage(Image(o, reg, cell))
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encodePNG: %w", err)
	}
	return nil
}
