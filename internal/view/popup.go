package view

import "grid-clash/internal/grid"

// Popup is one floating damage number. IDs come from a session-wide
// monotonic counter, so popups from overlapping batches never collide and a
// batch's expiry removes exactly the popups it created.
type Popup struct {
	ID     uint64     `json:"id"`
	At     grid.Coord `json:"at"`
	Damage int        `json:"damage"`
	Strong bool       `json:"strong"`
	Weak   bool       `json:"weak"`
	Kill   bool       `json:"kill"`
}

// popupAllocator hands out collision-safe popup IDs. Not goroutine-safe on
// its own; the engine mutex covers it.
type popupAllocator struct {
	next uint64
}

// alloc builds a popup for one combat event under a fresh ID.
func (a *popupAllocator) alloc(ev grid.CombatEvent) Popup {
	a.next++
	return Popup{
		ID:     a.next,
		At:     ev.Target,
		Damage: ev.Damage,
		Strong: ev.Strong,
		Weak:   ev.Weak,
		Kill:   ev.Kind == grid.KindKill,
	}
}
