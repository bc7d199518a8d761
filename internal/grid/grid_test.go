package grid_test

import (
	"testing"

	"grid-clash/internal/grid"
)

func TestSnapshotCloneIsDeep(t *testing.T) {
	s := grid.NewSnapshot(4)
	s.Cells[1][2].Unit = &grid.Unit{ID: "u-1", Type: "soldier", Team: "red", HP: 5, MaxHP: 12}

	clone := s.Clone()
	clone.Cells[1][2].Unit.HP = 1

	if s.Cells[1][2].Unit.HP != 5 {
		t.Error("mutating the clone changed the original")
	}
}

func TestSnapshotAt(t *testing.T) {
	s := grid.NewSnapshot(4)
	s.Cells[0][0].Unit = &grid.Unit{ID: "u-1"}

	if s.At(grid.Coord{Row: 0, Col: 0}) == nil {
		t.Error("occupied cell reported empty")
	}
	if s.At(grid.Coord{Row: 0, Col: 1}) != nil {
		t.Error("empty cell reported occupied")
	}
	if s.At(grid.Coord{Row: -1, Col: 0}) != nil || s.At(grid.Coord{Row: 4, Col: 0}) != nil {
		t.Error("off-board lookup should be nil, not panic")
	}
}

func TestBeatsCycle(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"crimson", "viridian", true},
		{"viridian", "azure", true},
		{"azure", "crimson", true},
		{"viridian", "crimson", false},
		{"crimson", "crimson", false},
		{"", "crimson", false},
		{"crimson", "unknown", false},
	}
	for _, tc := range cases {
		t.Run(tc.a+"_vs_"+tc.b, func(t *testing.T) {
			if got := grid.Beats(tc.a, tc.b); got != tc.want {
				t.Errorf("Beats(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

// TestRegistryIsPureLookup verifies the same type always yields the same
// pattern and that mutating a returned definition cannot corrupt later
// lookups of other callers' slices in a way that changes length or IDs.
func TestRegistryIsPureLookup(t *testing.T) {
	r := grid.NewTypeRegistry(grid.DefaultTypes()...)

	first, ok := r.Get("archer")
	if !ok {
		t.Fatal("archer missing from default roster")
	}
	second, _ := r.Get("archer")

	if len(first.Pattern) != len(second.Pattern) {
		t.Fatal("pattern length changed between lookups")
	}
	for i := range first.Pattern {
		if first.Pattern[i] != second.Pattern[i] {
			t.Errorf("pattern offset %d differs between lookups", i)
		}
	}
}

func TestDefaultTypesHaveValidGroups(t *testing.T) {
	for _, def := range grid.DefaultTypes() {
		t.Run(def.ID, func(t *testing.T) {
			if def.BaseHP <= 0 || def.BaseDamage <= 0 {
				t.Errorf("non-positive stats: hp=%d dmg=%d", def.BaseHP, def.BaseDamage)
			}
			if len(def.Pattern) == 0 {
				t.Error("empty attack pattern")
			}
			for _, off := range def.Pattern {
				if off == (grid.Coord{}) {
					t.Error("pattern targets the unit's own cell")
				}
			}
		})
	}
}
