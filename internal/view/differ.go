package view

import "grid-clash/internal/grid"

// Offset is a render-space displacement measured in whole cells. The vector
// points from a unit's new cell back to its prior cell, so a renderer can
// pre-offset the unit at its new location and animate the offset to zero,
// sliding it in from where it was.
type Offset struct {
	DRow int `json:"dRow"`
	DCol int `json:"dCol"`
}

// differ infers unit movement by comparing successive snapshots keyed by
// unit identity. It retains only the positions seen in the most recent
// snapshot; history never goes deeper than one turn (last write wins).
type differ struct {
	positions map[string]grid.Coord
}

func newDiffer() *differ {
	return &differ{positions: make(map[string]grid.Coord)}
}

// diff returns a displacement for every living unit present in both the
// cached and the new snapshot whose coordinates changed. Units the differ
// has never seen (just placed, or an ID reappearing after death) and units
// arriving dead produce no entry. Path legality is not checked: a unit
// teleported by simulation rule still slides along the straight vector
// between its endpoints. The cached positions are replaced as a side effect.
func (d *differ) diff(snap grid.Snapshot) map[string]Offset {
	next := make(map[string]grid.Coord, len(d.positions))
	moves := make(map[string]Offset)
	snap.ForEachUnit(func(at grid.Coord, u grid.Unit) {
		next[u.ID] = at
		if !u.Alive() {
			return
		}
		prior, seen := d.positions[u.ID]
		if !seen || prior == at {
			return
		}
		moves[u.ID] = Offset{DRow: prior.Row - at.Row, DCol: prior.Col - at.Col}
	})
	d.positions = next
	return moves
}
