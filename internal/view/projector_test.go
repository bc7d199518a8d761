package view_test

import (
	"testing"

	"grid-clash/internal/grid"
	"grid-clash/internal/view"
)

// TestProjectPatternClipsAtCorner verifies that offsets resolving off-board
// are dropped rather than producing negative or overflowing coordinates.
func TestProjectPatternClipsAtCorner(t *testing.T) {
	pattern := []grid.Coord{
		{Row: -1, Col: 0},
		{Row: 1, Col: 0},
		{Row: 0, Col: -1},
		{Row: 0, Col: 1},
	}

	got := view.ProjectPattern(grid.Coord{Row: 0, Col: 0}, pattern, 8)

	for _, c := range got {
		if c.Row < 0 || c.Col < 0 || c.Row >= 8 || c.Col >= 8 {
			t.Errorf("projected cell %+v is off-board", c)
		}
	}
	if len(got) != 2 {
		t.Errorf("expected 2 surviving cells at corner, got %d: %v", len(got), got)
	}
}

func TestProjectPatternFarCorner(t *testing.T) {
	pattern := []grid.Coord{
		{Row: 1, Col: 0},
		{Row: 0, Col: 1},
		{Row: -1, Col: 0},
		{Row: 0, Col: -1},
	}

	got := view.ProjectPattern(grid.Coord{Row: 7, Col: 7}, pattern, 8)

	want := []grid.Coord{{Row: 6, Col: 7}, {Row: 7, Col: 6}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("cell %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

// TestProjectPatternInterior verifies a placement away from every edge keeps
// the whole pattern and its order.
func TestProjectPatternInterior(t *testing.T) {
	pattern := []grid.Coord{
		{Row: -2, Col: 0},
		{Row: 2, Col: 0},
		{Row: 0, Col: -2},
		{Row: 0, Col: 2},
	}

	got := view.ProjectPattern(grid.Coord{Row: 4, Col: 4}, pattern, 9)

	if len(got) != len(pattern) {
		t.Fatalf("expected full pattern, got %d of %d cells", len(got), len(pattern))
	}
	for i, off := range pattern {
		want := grid.Coord{Row: 4 + off.Row, Col: 4 + off.Col}
		if got[i] != want {
			t.Errorf("cell %d: got %+v, want %+v", i, got[i], want)
		}
	}
}
