// Package grid defines the battle board data model shared by the simulation,
// the view engine, and the renderers. Everything here is plain data: the
// simulation produces it once per turn and downstream consumers treat it as
// read-only.
package grid

// Coord addresses one cell on the board. Row 0 is the top edge, col 0 the
// left edge.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Add returns the coordinate offset by o. Used to resolve relative attack
// patterns against an origin cell.
func (c Coord) Add(o Coord) Coord {
	return Coord{Row: c.Row + o.Row, Col: c.Col + o.Col}
}

// Unit is one combatant occupying a cell. ID is stable for the unit's
// lifetime and never reused within a session.
type Unit struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Team  string `json:"team"`
	HP    int    `json:"hp"`
	MaxHP int    `json:"maxHp"`
}

// Alive reports whether the unit still fights. A unit at 0 HP may linger in
// one more snapshot so renderers can fade it out.
func (u Unit) Alive() bool {
	return u.HP > 0
}

// Cell is one board square. A nil Unit means the cell is empty.
type Cell struct {
	Unit *Unit `json:"unit,omitempty"`
}

// Snapshot is a complete description of board state at one turn. The
// simulation hands out deep copies, so holders may retain a snapshot across
// turns without it mutating underneath them.
type Snapshot struct {
	Size  int      `json:"size"`
	Cells [][]Cell `json:"cells"` // indexed [row][col]
}

// NewSnapshot returns an empty square board of the given size.
func NewSnapshot(size int) Snapshot {
	cells := make([][]Cell, size)
	for r := range cells {
		cells[r] = make([]Cell, size)
	}
	return Snapshot{Size: size, Cells: cells}
}

// In reports whether c lies on the board.
func (s Snapshot) In(c Coord) bool {
	return c.Row >= 0 && c.Row < s.Size && c.Col >= 0 && c.Col < s.Size
}

// At returns the unit occupying c, or nil for an empty or off-board cell.
func (s Snapshot) At(c Coord) *Unit {
	if !s.In(c) {
		return nil
	}
	return s.Cells[c.Row][c.Col].Unit
}

// Clone returns a deep copy, including the units themselves.
func (s Snapshot) Clone() Snapshot {
	out := NewSnapshot(s.Size)
	for r := range s.Cells {
		for c := range s.Cells[r] {
			if u := s.Cells[r][c].Unit; u != nil {
				cp := *u
				out.Cells[r][c].Unit = &cp
			}
		}
	}
	return out
}

// ForEachUnit visits every occupied cell in row-major order.
func (s Snapshot) ForEachUnit(fn func(at Coord, u Unit)) {
	for r := range s.Cells {
		for c := range s.Cells[r] {
			if u := s.Cells[r][c].Unit; u != nil {
				fn(Coord{Row: r, Col: c}, *u)
			}
		}
	}
}
