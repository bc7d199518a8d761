package view_test

import (
	"testing"
	"time"

	"grid-clash/internal/grid"
	"grid-clash/internal/view"
)

// fakeClock drives expiry timers deterministically. Advance fires due
// callbacks in time order, including callbacks scheduled by other callbacks
// while advancing.
type fakeClock struct {
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) view.CancelFunc {
	t := &fakeTimer{at: c.now + d, fn: fn}
	c.timers = append(c.timers, t)
	return func() { t.stopped = true }
}

func (c *fakeClock) Advance(d time.Duration) {
	target := c.now + d
	for {
		var next *fakeTimer
		for _, t := range c.timers {
			if t.stopped || t.fired || t.at > target {
				continue
			}
			if next == nil || t.at < next.at {
				next = t
			}
		}
		if next == nil {
			break
		}
		c.now = next.at
		next.fired = true
		next.fn()
	}
	c.now = target
}

func newTestEngine(t *testing.T) (*view.Engine, *fakeClock) {
	t.Helper()
	clock := &fakeClock{}
	e := view.NewEngine(view.Config{
		GridSize:      8,
		FlashDuration: 800 * time.Millisecond,
		ShakeDuration: 400 * time.Millisecond,
		PopupDuration: 700 * time.Millisecond,
		SlideQuantum:  50 * time.Millisecond,
		Clock:         clock,
	}, grid.NewTypeRegistry(grid.DefaultTypes()...))
	t.Cleanup(e.Close)
	return e, clock
}

func boardWith(units map[grid.Coord]grid.Unit) grid.Snapshot {
	s := grid.NewSnapshot(8)
	for at, u := range units {
		cp := u
		s.Cells[at.Row][at.Col].Unit = &cp
	}
	return s
}

func TestFlashLifecycle(t *testing.T) {
	e, clock := newTestEngine(t)

	e.Apply(view.TickInput{
		Grid:      grid.NewSnapshot(8),
		Placement: &view.Placement{At: grid.Coord{Row: 4, Col: 4}, Type: "soldier"},
	})

	if got := len(e.State().Flash); got != 4 {
		t.Fatalf("expected 4 flash cells, got %d", got)
	}

	clock.Advance(799 * time.Millisecond)
	if got := len(e.State().Flash); got != 4 {
		t.Errorf("flash cleared early, %d cells left", got)
	}

	clock.Advance(1 * time.Millisecond)
	if got := len(e.State().Flash); got != 0 {
		t.Errorf("flash not cleared after expiry, %d cells left", got)
	}
}

// TestFlashSupersession: two placements in rapid succession must leave only
// the second pattern visible, and the first timer must never clear the
// second pattern.
func TestFlashSupersession(t *testing.T) {
	e, clock := newTestEngine(t)

	e.Apply(view.TickInput{
		Grid:      grid.NewSnapshot(8),
		Placement: &view.Placement{At: grid.Coord{Row: 1, Col: 1}, Type: "soldier"},
	})
	clock.Advance(500 * time.Millisecond)

	e.Apply(view.TickInput{
		Grid:      grid.NewSnapshot(8),
		Placement: &view.Placement{At: grid.Coord{Row: 6, Col: 6}, Type: "mage"},
	})

	st := e.State()
	if len(st.Flash) != 4 {
		t.Fatalf("expected only the mage pattern (4 cells), got %d", len(st.Flash))
	}
	for _, c := range st.Flash {
		if c.Row <= 2 && c.Col <= 2 {
			t.Errorf("stale soldier flash cell %+v still visible", c)
		}
	}

	// Past the first placement's original expiry. The superseded timer must
	// not clear the newer pattern.
	clock.Advance(350 * time.Millisecond)
	if got := len(e.State().Flash); got != 4 {
		t.Errorf("superseded timer cleared the newer flash, %d cells left", got)
	}

	clock.Advance(450 * time.Millisecond)
	if got := len(e.State().Flash); got != 0 {
		t.Errorf("second flash never expired, %d cells left", got)
	}
}

// TestPopupBatchScopedExpiry is the timeline from the expiry contract:
// batch A (2 events) at t=0, batch B (1 event) at t=300; at t=750 only B's
// popup remains, at t=1050 none do.
func TestPopupBatchScopedExpiry(t *testing.T) {
	e, clock := newTestEngine(t)

	e.Apply(view.TickInput{
		Grid: grid.NewSnapshot(8),
		Events: []grid.CombatEvent{
			{Target: grid.Coord{Row: 1, Col: 1}, Damage: 3},
			{Target: grid.Coord{Row: 2, Col: 2}, Damage: 5, Strong: true},
		},
	})

	clock.Advance(300 * time.Millisecond)
	e.Apply(view.TickInput{
		Grid: grid.NewSnapshot(8),
		Events: []grid.CombatEvent{
			{Target: grid.Coord{Row: 3, Col: 3}, Damage: 7, Kind: grid.KindKill},
		},
	})

	if got := len(e.State().Popups); got != 3 {
		t.Fatalf("expected 3 concurrent popups, got %d", got)
	}

	clock.Advance(450 * time.Millisecond) // t=750
	st := e.State()
	if len(st.Popups) != 1 {
		t.Fatalf("at t=750 expected only batch B's popup, got %d", len(st.Popups))
	}
	if !st.Popups[0].Kill || st.Popups[0].Damage != 7 {
		t.Errorf("surviving popup is not batch B's: %+v", st.Popups[0])
	}

	clock.Advance(300 * time.Millisecond) // t=1050
	if got := len(e.State().Popups); got != 0 {
		t.Errorf("at t=1050 expected no popups, got %d", got)
	}
}

func TestPopupIDsMonotonic(t *testing.T) {
	e, clock := newTestEngine(t)

	e.Apply(view.TickInput{
		Grid:   grid.NewSnapshot(8),
		Events: []grid.CombatEvent{{Target: grid.Coord{Row: 0, Col: 0}, Damage: 1}},
	})
	clock.Advance(time.Second)
	e.Apply(view.TickInput{
		Grid:   grid.NewSnapshot(8),
		Events: []grid.CombatEvent{{Target: grid.Coord{Row: 0, Col: 0}, Damage: 2}},
	})

	st := e.State()
	if len(st.Popups) != 1 {
		t.Fatalf("expected 1 live popup, got %d", len(st.Popups))
	}
	if st.Popups[0].ID != 2 {
		t.Errorf("IDs must keep climbing across batches, got %d", st.Popups[0].ID)
	}
}

// TestIndependentPoolLifetimes: shake and flash triggered on the same cell
// in the same tick expire at 400 and 800 units, and clearing one never
// clears the other.
func TestIndependentPoolLifetimes(t *testing.T) {
	e, clock := newTestEngine(t)

	target := grid.Coord{Row: 4, Col: 4}
	e.Apply(view.TickInput{
		Grid:      grid.NewSnapshot(8),
		Placement: &view.Placement{At: target, Type: "soldier"},
		Events:    []grid.CombatEvent{{Target: target, Damage: 2}},
	})

	st := e.State()
	if len(st.Flash) == 0 || len(st.Shake) == 0 {
		t.Fatalf("both pools should be populated: flash=%d shake=%d", len(st.Flash), len(st.Shake))
	}

	clock.Advance(450 * time.Millisecond)
	st = e.State()
	if len(st.Shake) != 0 {
		t.Errorf("shake should have expired at 400ms, %d cells left", len(st.Shake))
	}
	if len(st.Flash) == 0 {
		t.Error("shake expiry cleared the flash pool")
	}

	clock.Advance(400 * time.Millisecond)
	if got := len(e.State().Flash); got != 0 {
		t.Errorf("flash never expired, %d cells left", got)
	}
}

// TestSlideTwoQuantumClear: the offset map is non-empty immediately after
// the move is detected and empty after two scheduler quanta.
func TestSlideTwoQuantumClear(t *testing.T) {
	e, clock := newTestEngine(t)

	u := grid.Unit{ID: "u1", Type: "soldier", Team: "red", HP: 5, MaxHP: 5}
	e.Apply(view.TickInput{Grid: boardWith(map[grid.Coord]grid.Unit{{Row: 2, Col: 3}: u})})
	e.Apply(view.TickInput{Grid: boardWith(map[grid.Coord]grid.Unit{{Row: 2, Col: 5}: u})})

	st := e.State()
	want := view.Offset{DRow: 0, DCol: -2}
	if got, ok := st.Slides["u1"]; !ok || got != want {
		t.Fatalf("slide offset = %+v (present=%v), want %+v", got, ok, want)
	}

	// One quantum in: the settle phase, offset still applied.
	clock.Advance(50 * time.Millisecond)
	if got := len(e.State().Slides); got != 1 {
		t.Errorf("slide cleared after one quantum, want clear after two")
	}

	clock.Advance(50 * time.Millisecond)
	if got := len(e.State().Slides); got != 0 {
		t.Errorf("slide never cleared, %d offsets left", got)
	}
}

func TestApplyIsSynchronous(t *testing.T) {
	e, _ := newTestEngine(t)

	target := grid.Coord{Row: 0, Col: 1}
	e.Apply(view.TickInput{
		Grid:      grid.NewSnapshot(8),
		Placement: &view.Placement{At: grid.Coord{Row: 0, Col: 0}, Type: "soldier"},
		Events:    []grid.CombatEvent{{Target: target, Damage: 4}},
	})

	// Everything the tick produced is observable before any clock movement.
	st := e.State()
	if len(st.Flash) == 0 {
		t.Error("flash not applied synchronously")
	}
	if len(st.Shake) != 1 || st.Shake[0] != target {
		t.Errorf("shake not applied synchronously: %v", st.Shake)
	}
	if len(st.Popups) != 1 {
		t.Errorf("popup not applied synchronously: %v", st.Popups)
	}
}

func TestUnknownPlacementTypeIsIgnored(t *testing.T) {
	e, _ := newTestEngine(t)

	e.Apply(view.TickInput{
		Grid:      grid.NewSnapshot(8),
		Placement: &view.Placement{At: grid.Coord{Row: 4, Col: 4}, Type: "warlock"},
	})

	if got := len(e.State().Flash); got != 0 {
		t.Errorf("unknown type produced %d flash cells", got)
	}
}

// TestCloseCancelsTimers: a timer firing after teardown must be a no-op,
// and pools are emptied on Close.
func TestCloseCancelsTimers(t *testing.T) {
	clock := &fakeClock{}
	e := view.NewEngine(view.Config{GridSize: 8, Clock: clock},
		grid.NewTypeRegistry(grid.DefaultTypes()...))

	e.Apply(view.TickInput{
		Grid:      grid.NewSnapshot(8),
		Placement: &view.Placement{At: grid.Coord{Row: 4, Col: 4}, Type: "guardian"},
		Events:    []grid.CombatEvent{{Target: grid.Coord{Row: 4, Col: 4}, Damage: 1}},
	})
	e.Close()

	st := e.State()
	if len(st.Flash)+len(st.Shake)+len(st.Popups)+len(st.Slides) != 0 {
		t.Errorf("pools not emptied on close: %+v", st)
	}

	// Advancing past every expiry must not panic or resurrect anything.
	clock.Advance(5 * time.Second)
	e.Apply(view.TickInput{Grid: grid.NewSnapshot(8)})
	if got := len(e.State().Popups); got != 0 {
		t.Errorf("closed engine accepted input, %d popups", got)
	}
}

func TestSelectCellForwarded(t *testing.T) {
	var gotRow, gotCol int
	calls := 0
	clock := &fakeClock{}
	e := view.NewEngine(view.Config{
		GridSize: 8,
		Clock:    clock,
		OnSelect: func(row, col int) {
			gotRow, gotCol = row, col
			calls++
		},
	}, grid.NewTypeRegistry(grid.DefaultTypes()...))
	defer e.Close()

	e.SelectCell(3, 5)
	if calls != 1 || gotRow != 3 || gotCol != 5 {
		t.Errorf("select intent not forwarded: calls=%d at (%d,%d)", calls, gotRow, gotCol)
	}
}
