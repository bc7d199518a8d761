// Package render rasterizes a view.State into a spectator frame. It is a
// reference render surface: it reads the four effect pools and the grid,
// and draws them the way a browser client would - flash tints, shake
// jitter, slide pre-offsets, floating damage numbers.
package render

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/fogleman/gg"

	"grid-clash/internal/grid"
	"grid-clash/internal/view"
)

const (
	cellPx = 64
	margin = 24
)

var (
	backgroundColor = color.RGBA{12, 12, 28, 255}
	gridLineColor   = color.RGBA{30, 30, 45, 255}
	flashColor      = color.RGBA{255, 196, 32, 90}

	teamColors = map[string]color.RGBA{
		"red":  {222, 72, 72, 255},
		"blue": {72, 122, 222, 255},
	}

	groupColors = map[string]color.RGBA{
		"crimson":  {255, 62, 62, 255},
		"viridian": {62, 200, 120, 255},
		"azure":    {80, 160, 255, 255},
	}
)

// Renderer draws spectator frames. Stateless apart from the type registry,
// so one instance serves concurrent requests.
type Renderer struct {
	registry *grid.TypeRegistry
}

// New creates a renderer over the given unit type registry.
func New(registry *grid.TypeRegistry) *Renderer {
	return &Renderer{registry: registry}
}

// RenderPNG rasterizes one view state to a PNG frame.
func (r *Renderer) RenderPNG(st view.State) ([]byte, error) {
	size := st.Grid.Size
	px := size*cellPx + 2*margin
	dc := gg.NewContext(px, px)

	r.drawBackground(dc, px)
	r.drawFlash(dc, st.Flash)
	r.drawGridLines(dc, size)

	shaken := make(map[grid.Coord]struct{}, len(st.Shake))
	for _, c := range st.Shake {
		shaken[c] = struct{}{}
	}
	st.Grid.ForEachUnit(func(at grid.Coord, u grid.Unit) {
		r.drawUnit(dc, at, u, st.Slides[u.ID], shaken)
	})

	r.drawPopups(dc, st.Popups)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawBackground(dc *gg.Context, px int) {
	dc.SetColor(backgroundColor)
	dc.DrawRectangle(0, 0, float64(px), float64(px))
	dc.Fill()
}

func (r *Renderer) drawFlash(dc *gg.Context, flash []grid.Coord) {
	dc.SetColor(flashColor)
	for _, c := range flash {
		x, y := cellOrigin(c)
		dc.DrawRectangle(x, y, cellPx, cellPx)
		dc.Fill()
	}
}

func (r *Renderer) drawGridLines(dc *gg.Context, size int) {
	dc.SetColor(gridLineColor)
	dc.SetLineWidth(1)
	for i := 0; i <= size; i++ {
		off := float64(margin + i*cellPx)
		end := float64(margin + size*cellPx)
		dc.DrawLine(off, margin, off, end)
		dc.Stroke()
		dc.DrawLine(margin, off, end, off)
		dc.Stroke()
	}
}

func (r *Renderer) drawUnit(dc *gg.Context, at grid.Coord, u grid.Unit, slide view.Offset, shaken map[grid.Coord]struct{}) {
	x, y := cellCenter(at)

	// A sliding unit is drawn halfway back along its displacement vector,
	// mid-transition between prior and new cell.
	x += float64(slide.DCol) * cellPx * 0.5
	y += float64(slide.DRow) * cellPx * 0.5

	// Shake is a small deterministic jitter per cell, so repeated renders
	// of the same state are identical.
	if _, ok := shaken[at]; ok {
		x += float64((at.Row*31+at.Col*17)%7 - 3)
		y += float64((at.Row*13+at.Col*29)%7 - 3)
	}

	radius := float64(cellPx) * 0.34

	body, ok := teamColors[u.Team]
	if !ok {
		body = color.RGBA{160, 160, 160, 255}
	}
	if !u.Alive() {
		body.A = 96 // fading corpse
	}

	// Shadow
	dc.SetColor(color.RGBA{0, 0, 0, 110})
	dc.DrawCircle(x, y+4, radius)
	dc.Fill()

	dc.SetColor(body)
	dc.DrawCircle(x, y, radius)
	dc.Fill()

	// Color-group ring shows the matchup class at a glance.
	if def, ok := r.registry.Get(u.Type); ok {
		if ring, ok := groupColors[def.ColorGroup]; ok {
			dc.SetColor(ring)
			dc.SetLineWidth(3)
			dc.DrawCircle(x, y, radius)
			dc.Stroke()
		}
	}

	r.drawHPBar(dc, x, y-radius-10, u)
}

func (r *Renderer) drawHPBar(dc *gg.Context, x, y float64, u grid.Unit) {
	if u.MaxHP <= 0 {
		return
	}
	width := float64(cellPx) * 0.7
	frac := float64(u.HP) / float64(u.MaxHP)

	dc.SetColor(color.RGBA{0, 0, 0, 180})
	dc.DrawRectangle(x-width/2, y, width, 5)
	dc.Fill()

	bar := color.RGBA{90, 220, 90, 255}
	if frac < 0.35 {
		bar = color.RGBA{230, 80, 60, 255}
	}
	dc.SetColor(bar)
	dc.DrawRectangle(x-width/2, y, width*frac, 5)
	dc.Fill()
}

func (r *Renderer) drawPopups(dc *gg.Context, popups []view.Popup) {
	for i, p := range popups {
		x, y := cellCenter(p.At)
		// Stack popups on the same cell instead of overprinting them.
		y -= float64(cellPx)*0.55 + float64(i%3)*12

		text := fmt.Sprintf("-%d", p.Damage)
		c := color.RGBA{255, 62, 62, 255}
		switch {
		case p.Kill:
			text += " KO"
			c = color.RGBA{255, 255, 255, 255}
		case p.Strong:
			text += "!"
			c = color.RGBA{255, 196, 32, 255}
		case p.Weak:
			c = color.RGBA{150, 150, 150, 255}
		}
		dc.SetColor(c)
		dc.DrawStringAnchored(text, x, y, 0.5, 0.5)
	}
}

func cellOrigin(c grid.Coord) (float64, float64) {
	return float64(margin + c.Col*cellPx), float64(margin + c.Row*cellPx)
}

func cellCenter(c grid.Coord) (float64, float64) {
	x, y := cellOrigin(c)
	return x + cellPx/2, y + cellPx/2
}
