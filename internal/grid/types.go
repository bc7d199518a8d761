package grid

// UnitTypeDef defines the read-only combat footprint of a unit type. Pattern
// offsets are relative to the unit's own cell; the same type always yields
// the same pattern.
type UnitTypeDef struct {
	ID         string
	Pattern    []Coord // relative attack offsets, in flash order
	ColorGroup string  // matchup group, see Beats
	BaseHP     int
	BaseDamage int
}

// TypeRegistry is a pure lookup table of unit type definitions. It is built
// once at startup and never mutated, so concurrent reads need no locking.
type TypeRegistry struct {
	defs map[string]UnitTypeDef
}

// NewTypeRegistry builds a registry from the given definitions. Later
// definitions with a duplicate ID replace earlier ones.
func NewTypeRegistry(defs ...UnitTypeDef) *TypeRegistry {
	r := &TypeRegistry{defs: make(map[string]UnitTypeDef, len(defs))}
	for _, d := range defs {
		r.defs[d.ID] = d
	}
	return r
}

// Get returns the definition for a type ID.
func (r *TypeRegistry) Get(id string) (UnitTypeDef, bool) {
	d, ok := r.defs[id]
	return d, ok
}

// IDs returns all registered type IDs (unordered).
func (r *TypeRegistry) IDs() []string {
	out := make([]string, 0, len(r.defs))
	for id := range r.defs {
		out = append(out, id)
	}
	return out
}

// beatenBy maps each color group to the group it loses against. The cycle is
// crimson > viridian > azure > crimson.
var beatenBy = map[string]string{
	"viridian": "crimson",
	"azure":    "viridian",
	"crimson":  "azure",
}

// Beats reports whether color group a has the advantage over color group b.
// Unknown groups never have advantage.
func Beats(a, b string) bool {
	return a != "" && beatenBy[b] == a
}

// DefaultTypes returns the stock unit roster. Patterns are tuned so that
// edge placements always clip at least one offset, which keeps the flash
// projection honest near the border.
func DefaultTypes() []UnitTypeDef {
	return []UnitTypeDef{
		// Soldier - short blade, hits the four adjacent cells
		{
			ID:         "soldier",
			ColorGroup: "crimson",
			BaseHP:     12,
			BaseDamage: 4,
			Pattern: []Coord{
				{Row: -1, Col: 0},
				{Row: 1, Col: 0},
				{Row: 0, Col: -1},
				{Row: 0, Col: 1},
			},
		},
		// Archer - fires two cells out along the axes, skips adjacent cells
		{
			ID:         "archer",
			ColorGroup: "viridian",
			BaseHP:     8,
			BaseDamage: 3,
			Pattern: []Coord{
				{Row: -2, Col: 0},
				{Row: 2, Col: 0},
				{Row: 0, Col: -2},
				{Row: 0, Col: 2},
			},
		},
		// Mage - diagonal burst around the caster
		{
			ID:         "mage",
			ColorGroup: "azure",
			BaseHP:     7,
			BaseDamage: 5,
			Pattern: []Coord{
				{Row: -1, Col: -1},
				{Row: -1, Col: 1},
				{Row: 1, Col: -1},
				{Row: 1, Col: 1},
			},
		},
		// Guardian - heavy sweep, full ring of eight cells
		{
			ID:         "guardian",
			ColorGroup: "crimson",
			BaseHP:     18,
			BaseDamage: 2,
			Pattern: []Coord{
				{Row: -1, Col: -1},
				{Row: -1, Col: 0},
				{Row: -1, Col: 1},
				{Row: 0, Col: -1},
				{Row: 0, Col: 1},
				{Row: 1, Col: -1},
				{Row: 1, Col: 0},
				{Row: 1, Col: 1},
			},
		},
	}
}
