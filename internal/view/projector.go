package view

import "grid-clash/internal/grid"

// ProjectPattern maps a unit type's relative attack footprint onto the
// board. Offsets resolving outside [0,size) on either axis are dropped
// silently; a unit placed near the edge simply flashes fewer cells. The
// result preserves the pattern's order.
func ProjectPattern(origin grid.Coord, pattern []grid.Coord, size int) []grid.Coord {
	out := make([]grid.Coord, 0, len(pattern))
	for _, off := range pattern {
		abs := origin.Add(off)
		if abs.Row < 0 || abs.Row >= size || abs.Col < 0 || abs.Col >= size {
			continue
		}
		out = append(out, abs)
	}
	return out
}
