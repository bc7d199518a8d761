// Package view reconciles simulation output - full board snapshots plus
// batches of discrete combat events - into four time-bounded visual effect
// pools: flashed attack patterns, shaken cells, slide offsets, and floating
// damage popups. The engine never computes combat; it only keeps the visual
// layer in lockstep with whatever the simulation decided.
package view

import (
	"sync"
	"time"

	"grid-clash/internal/grid"
)

// Default effect timings, overridable through Config.
const (
	DefaultFlashDuration = 800 * time.Millisecond
	DefaultShakeDuration = 400 * time.Millisecond
	DefaultPopupDuration = 700 * time.Millisecond
	DefaultSlideQuantum  = 50 * time.Millisecond
)

// Timer keys for the pools whose pending clear is superseded by a newer
// trigger of the same kind. Popup batches are not keyed this way: each batch
// owns an independent timer scoped to the IDs it created.
const (
	timerFlash = "flash"
	timerShake = "shake"
	timerSlide = "slide"
)

// Placement reports the cell and unit type a player just placed.
type Placement struct {
	At   grid.Coord `json:"at"`
	Type string     `json:"type"`
}

// TickInput is everything the simulation hands the view for one turn. Grid
// is required every turn; Placement and Events are present only when the
// turn produced them.
type TickInput struct {
	Grid      grid.Snapshot
	Placement *Placement
	Events    []grid.CombatEvent
}

// Config carries the engine's timings and collaborators. Zero durations
// fall back to the defaults above; a nil Clock falls back to wall time.
type Config struct {
	GridSize      int
	FlashDuration time.Duration
	ShakeDuration time.Duration
	PopupDuration time.Duration
	SlideQuantum  time.Duration

	// OnSelect receives cell-click intents forwarded from the render
	// surface. Optional.
	OnSelect func(row, col int)

	Clock Clock
}

// Engine owns the four transient effect pools exclusively. All pool updates
// for one input are applied synchronously inside Apply, so a renderer
// reading State afterwards never observes a partially applied effect.
// Construct with NewEngine, tear down with Close.
type Engine struct {
	mu sync.Mutex

	cfg      Config
	registry *grid.TypeRegistry
	clock    Clock

	grid      grid.Snapshot
	differ    *differ
	allocator popupAllocator

	flash  map[grid.Coord]struct{}
	shake  map[grid.Coord]struct{}
	slides map[string]Offset
	popups []Popup

	// Keyed timer table. Supersession is cancel-then-reschedule, and the
	// generation counter makes a superseded callback that already left the
	// clock's queue a no-op instead of a late clear of newer state.
	cancels map[string]CancelFunc
	gens    map[string]uint64

	// Per-batch popup timers, kept so Close can cancel them.
	batchSeq     uint64
	batchCancels map[uint64]CancelFunc

	closed bool
}

// NewEngine builds an engine around the given unit type registry. The
// registry resolves placement types to attack patterns and is read-only.
func NewEngine(cfg Config, registry *grid.TypeRegistry) *Engine {
	if cfg.FlashDuration <= 0 {
		cfg.FlashDuration = DefaultFlashDuration
	}
	if cfg.ShakeDuration <= 0 {
		cfg.ShakeDuration = DefaultShakeDuration
	}
	if cfg.PopupDuration <= 0 {
		cfg.PopupDuration = DefaultPopupDuration
	}
	if cfg.SlideQuantum <= 0 {
		cfg.SlideQuantum = DefaultSlideQuantum
	}
	clock := cfg.Clock
	if clock == nil {
		clock = NewClock()
	}

	return &Engine{
		cfg:          cfg,
		registry:     registry,
		clock:        clock,
		grid:         grid.NewSnapshot(cfg.GridSize),
		differ:       newDiffer(),
		flash:        make(map[grid.Coord]struct{}),
		shake:        make(map[grid.Coord]struct{}),
		slides:       make(map[string]Offset),
		cancels:      make(map[string]CancelFunc),
		gens:         make(map[string]uint64),
		batchCancels: make(map[uint64]CancelFunc),
	}
}

// Apply processes one turn's input. Pool updates happen synchronously; only
// the expiries run later, on the engine's clock.
func (e *Engine) Apply(in TickInput) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}

	e.grid = in.Grid.Clone()

	if in.Placement != nil {
		e.applyPlacementLocked(*in.Placement)
	}
	if len(in.Events) > 0 {
		e.applyEventsLocked(in.Events)
	}
	e.applySlidesLocked()
}

// applyPlacementLocked projects the placed type's attack pattern into the
// flash pool. A placement arriving while a prior flash is still pending
// replaces it outright - last placement wins, never a union of both.
func (e *Engine) applyPlacementLocked(p Placement) {
	def, ok := e.registry.Get(p.Type)
	if !ok {
		return
	}

	cells := ProjectPattern(p.At, def.Pattern, e.grid.Size)
	flash := make(map[grid.Coord]struct{}, len(cells))
	for _, c := range cells {
		flash[c] = struct{}{}
	}
	e.flash = flash

	e.scheduleLocked(timerFlash, e.cfg.FlashDuration, func() {
		e.flash = make(map[grid.Coord]struct{})
	})
}

// applyEventsLocked shakes the union of the batch's target cells and
// allocates one popup per event. The shake timer is keyed (newer batch
// supersedes), while the popup timer is scoped to exactly the IDs this
// batch created, so older and newer batches expire independently.
func (e *Engine) applyEventsLocked(events []grid.CombatEvent) {
	shake := make(map[grid.Coord]struct{}, len(events))
	ids := make(map[uint64]struct{}, len(events))
	for _, ev := range events {
		shake[ev.Target] = struct{}{}
		p := e.allocator.alloc(ev)
		ids[p.ID] = struct{}{}
		e.popups = append(e.popups, p)
	}
	e.shake = shake

	e.scheduleLocked(timerShake, e.cfg.ShakeDuration, func() {
		e.shake = make(map[grid.Coord]struct{})
	})

	e.batchSeq++
	seq := e.batchSeq
	e.batchCancels[seq] = e.clock.AfterFunc(e.cfg.PopupDuration, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.batchCancels, seq)
		if e.closed {
			return
		}
		e.removePopupsLocked(ids)
	})
}

// applySlidesLocked diffs the new snapshot against position memory. A
// non-empty displacement map is published immediately and cleared on the
// second scheduler quantum: the first quantum lets a renderer apply the raw
// offset, the clear on the second is what its transition animates against.
func (e *Engine) applySlidesLocked() {
	moves := e.differ.diff(e.grid)
	if len(moves) == 0 {
		return
	}
	e.slides = moves

	e.scheduleLocked(timerSlide, e.cfg.SlideQuantum, func() {
		e.scheduleLocked(timerSlide, e.cfg.SlideQuantum, func() {
			e.slides = make(map[string]Offset)
		})
	})
}

// scheduleLocked arms the keyed timer, cancelling any pending one for the
// same key. fn runs with the engine lock held. Caller must hold e.mu.
func (e *Engine) scheduleLocked(key string, d time.Duration, fn func()) {
	if cancel := e.cancels[key]; cancel != nil {
		cancel()
	}
	e.gens[key]++
	gen := e.gens[key]
	e.cancels[key] = e.clock.AfterFunc(d, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.closed || e.gens[key] != gen {
			return
		}
		fn()
	})
}

// removePopupsLocked drops exactly the popups whose IDs are in ids,
// preserving order. In-place compaction, no allocation.
func (e *Engine) removePopupsLocked(ids map[uint64]struct{}) {
	n := 0
	for _, p := range e.popups {
		if _, gone := ids[p.ID]; gone {
			continue
		}
		e.popups[n] = p
		n++
	}
	e.popups = e.popups[:n]
}

// SelectCell forwards a cell-click intent from the render surface to the
// external controller. The callback runs without the engine lock.
func (e *Engine) SelectCell(row, col int) {
	e.mu.Lock()
	fn := e.cfg.OnSelect
	closed := e.closed
	e.mu.Unlock()

	if fn != nil && !closed {
		fn(row, col)
	}
}

// Close cancels every outstanding timer and empties the pools. Timers that
// already left the clock's queue become no-ops. Safe to call twice.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true

	for _, cancel := range e.cancels {
		cancel()
	}
	for _, cancel := range e.batchCancels {
		cancel()
	}
	e.cancels = make(map[string]CancelFunc)
	e.batchCancels = make(map[uint64]CancelFunc)

	e.flash = make(map[grid.Coord]struct{})
	e.shake = make(map[grid.Coord]struct{})
	e.slides = make(map[string]Offset)
	e.popups = nil
}
