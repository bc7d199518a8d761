package view

import (
	"sort"

	"grid-clash/internal/grid"
)

// State is the render surface's view of one moment: the current grid plus
// copies of the four transient pools. Value types only - mutating a State
// never touches the engine, and the engine never mutates a State it handed
// out. Flash and Shake are sorted row-major so output is deterministic.
type State struct {
	Grid   grid.Snapshot     `json:"grid"`
	Flash  []grid.Coord      `json:"flash"`
	Shake  []grid.Coord      `json:"shake"`
	Slides map[string]Offset `json:"slides"`
	Popups []Popup           `json:"popups"`
}

// State copies the pools under the engine lock, so a caller always sees a
// fully applied tick, never a partial one.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := State{
		Grid:   e.grid.Clone(),
		Flash:  sortedCoords(e.flash),
		Shake:  sortedCoords(e.shake),
		Slides: make(map[string]Offset, len(e.slides)),
		Popups: make([]Popup, len(e.popups)),
	}
	for id, off := range e.slides {
		st.Slides[id] = off
	}
	copy(st.Popups, e.popups)
	return st
}

func sortedCoords(set map[grid.Coord]struct{}) []grid.Coord {
	out := make([]grid.Coord, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}
