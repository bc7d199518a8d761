// Package sim is the authoritative combat simulation: it owns the board,
// resolves attacks and movement once per turn, and hands the outcome to the
// view engine as a snapshot plus a batch of combat events. The view layer
// never computes any of this; it only visualizes it.
package sim

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"

	"grid-clash/internal/grid"
	"grid-clash/internal/view"
)

var (
	ErrOutOfBounds = errors.New("sim: cell outside the board")
	ErrOccupied    = errors.New("sim: cell already occupied")
	ErrUnknownType = errors.New("sim: unknown unit type")
)

// Battle runs one battle session on a fixed square board. All mutation goes
// through Place and Resolve under the battle mutex; snapshots handed out are
// deep copies.
type Battle struct {
	mu       sync.Mutex
	registry *grid.TypeRegistry
	board    grid.Snapshot
	rng      *rand.Rand
	turn     uint64
	nextID   int
	log      *BattleLog

	// Most recent placement since the last Resolve. Last placement wins;
	// the view flashes only one pattern per turn.
	pending *view.Placement
}

// NewBattle creates a battle on a size x size board. The RNG seed makes tie
// breaking reproducible; blog may be nil to disable audit logging.
func NewBattle(size int, registry *grid.TypeRegistry, seed int64, blog *BattleLog) *Battle {
	return &Battle{
		registry: registry,
		board:    grid.NewSnapshot(size),
		rng:      rand.New(rand.NewSource(seed)),
		log:      blog,
	}
}

// Place puts a new unit on the board and returns its ID. The unit appears in
// the next resolved snapshot; its attack pattern flashes on that same turn.
func (b *Battle) Place(typeID, team string, at grid.Coord) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.board.In(at) {
		return "", ErrOutOfBounds
	}
	if b.board.Cells[at.Row][at.Col].Unit != nil {
		return "", ErrOccupied
	}
	def, ok := b.registry.Get(typeID)
	if !ok {
		return "", ErrUnknownType
	}

	b.nextID++
	unit := &grid.Unit{
		ID:    fmt.Sprintf("u-%d", b.nextID),
		Type:  typeID,
		Team:  team,
		HP:    def.BaseHP,
		MaxHP: def.BaseHP,
	}
	b.board.Cells[at.Row][at.Col].Unit = unit
	b.pending = &view.Placement{At: at, Type: typeID}

	b.emit(NewRecord(RecordPlacement, b.turn, PlacementPayload{
		UnitID: unit.ID,
		Type:   typeID,
		Team:   team,
		Row:    at.Row,
		Col:    at.Col,
	}))
	log.Printf("🪖 placed %s (%s, team %s) at (%d,%d)", unit.ID, typeID, team, at.Row, at.Col)
	return unit.ID, nil
}

// Resolve advances the battle one turn: corpses from the previous turn are
// removed, every living unit attacks the first enemy inside its pattern or
// advances one cell toward the nearest enemy, and the outcome is returned
// for the view layer.
func (b *Battle) Resolve() view.TickInput {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.turn++
	b.removeCorpsesLocked()

	events, attacked := b.combatLocked()
	b.movementLocked(attacked)

	placement := b.pending
	b.pending = nil

	b.emit(NewRecord(RecordTurn, b.turn, TurnPayload{
		Units:  b.unitCountLocked(),
		Events: len(events),
	}))

	return view.TickInput{
		Grid:      b.board.Clone(),
		Placement: placement,
		Events:    events,
	}
}

// removeCorpsesLocked drops units that hit zero HP on the previous turn.
// They stayed in exactly one snapshot so renderers could fade them out.
func (b *Battle) removeCorpsesLocked() {
	for r := range b.board.Cells {
		for c := range b.board.Cells[r] {
			if u := b.board.Cells[r][c].Unit; u != nil && !u.Alive() {
				b.board.Cells[r][c].Unit = nil
			}
		}
	}
}

type posUnit struct {
	at grid.Coord
	u  *grid.Unit
}

// unitsLocked lists occupied cells in row-major order, giving the turn a
// deterministic resolution order.
func (b *Battle) unitsLocked() []posUnit {
	var out []posUnit
	for r := range b.board.Cells {
		for c := range b.board.Cells[r] {
			if u := b.board.Cells[r][c].Unit; u != nil {
				out = append(out, posUnit{at: grid.Coord{Row: r, Col: c}, u: u})
			}
		}
	}
	return out
}

// combatLocked resolves attacks. Each living unit strikes the first living
// enemy inside its projected pattern; strong/weak classification comes from
// the color-group matchup of the two types.
func (b *Battle) combatLocked() ([]grid.CombatEvent, map[string]bool) {
	var events []grid.CombatEvent
	attacked := make(map[string]bool)

	for _, pu := range b.unitsLocked() {
		if !pu.u.Alive() {
			continue
		}
		def, ok := b.registry.Get(pu.u.Type)
		if !ok {
			continue
		}

		for _, cell := range view.ProjectPattern(pu.at, def.Pattern, b.board.Size) {
			victim := b.board.Cells[cell.Row][cell.Col].Unit
			if victim == nil || victim.Team == pu.u.Team || !victim.Alive() {
				continue
			}

			vdef, _ := b.registry.Get(victim.Type)
			damage := def.BaseDamage
			strong := grid.Beats(def.ColorGroup, vdef.ColorGroup)
			weak := grid.Beats(vdef.ColorGroup, def.ColorGroup)
			switch {
			case strong:
				damage *= 2
			case weak:
				damage /= 2
			}

			victim.HP -= damage
			if victim.HP < 0 {
				victim.HP = 0
			}

			ev := grid.CombatEvent{
				Target: cell,
				Damage: damage,
				Strong: strong,
				Weak:   weak,
				Kind:   grid.KindHit,
			}
			if victim.HP == 0 {
				ev.Kind = grid.KindKill
			}
			events = append(events, ev)
			attacked[pu.u.ID] = true

			b.emit(NewRecord(RecordDamage, b.turn, DamagePayload{
				AttackerID: pu.u.ID,
				VictimID:   victim.ID,
				Damage:     damage,
				VictimHP:   victim.HP,
				Strong:     strong,
				Weak:       weak,
			}))
			if ev.Kind == grid.KindKill {
				b.emit(NewRecord(RecordKill, b.turn, KillPayload{
					KillerID: pu.u.ID,
					VictimID: victim.ID,
				}))
				log.Printf("💀 %s killed %s at (%d,%d)", pu.u.ID, victim.ID, cell.Row, cell.Col)
			}
			break // one attack per unit per turn
		}
	}
	return events, attacked
}

// movementLocked advances every living unit that did not attack one cell
// toward its nearest living enemy. Moves land only on empty cells; a blocked
// unit waits.
func (b *Battle) movementLocked(attacked map[string]bool) {
	for _, pu := range b.unitsLocked() {
		if !pu.u.Alive() || attacked[pu.u.ID] {
			continue
		}

		target, found := b.nearestEnemyLocked(pu)
		if !found {
			continue
		}

		dRow, dCol := target.Row-pu.at.Row, target.Col-pu.at.Col
		steps := make([]grid.Coord, 0, 2)
		rowStep := grid.Coord{Row: pu.at.Row + sign(dRow), Col: pu.at.Col}
		colStep := grid.Coord{Row: pu.at.Row, Col: pu.at.Col + sign(dCol)}
		// Close the longer axis first; coin flip on ties.
		if abs(dRow) > abs(dCol) || (abs(dRow) == abs(dCol) && b.rng.Intn(2) == 0) {
			steps = append(steps, rowStep, colStep)
		} else {
			steps = append(steps, colStep, rowStep)
		}

		for _, step := range steps {
			if step == pu.at || !b.board.In(step) {
				continue
			}
			if b.board.Cells[step.Row][step.Col].Unit != nil {
				continue
			}
			b.board.Cells[step.Row][step.Col].Unit = pu.u
			b.board.Cells[pu.at.Row][pu.at.Col].Unit = nil
			break
		}
	}
}

// nearestEnemyLocked finds the closest living enemy by Manhattan distance,
// row-major order breaking exact ties.
func (b *Battle) nearestEnemyLocked(pu posUnit) (grid.Coord, bool) {
	best := grid.Coord{}
	bestDist := -1
	for _, other := range b.unitsLocked() {
		if other.u.ID == pu.u.ID || other.u.Team == pu.u.Team || !other.u.Alive() {
			continue
		}
		dist := abs(other.at.Row-pu.at.Row) + abs(other.at.Col-pu.at.Col)
		if bestDist < 0 || dist < bestDist {
			best, bestDist = other.at, dist
		}
	}
	return best, bestDist >= 0
}

// Snapshot returns a deep copy of the current board without resolving a turn.
func (b *Battle) Snapshot() grid.Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.board.Clone()
}

// Turn returns the number of resolved turns.
func (b *Battle) Turn() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.turn
}

// UnitCount returns the number of units on the board, corpses included.
func (b *Battle) UnitCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.unitCountLocked()
}

func (b *Battle) unitCountLocked() int {
	n := 0
	for r := range b.board.Cells {
		for c := range b.board.Cells[r] {
			if b.board.Cells[r][c].Unit != nil {
				n++
			}
		}
	}
	return n
}

func (b *Battle) emit(rec Record) {
	if b.log != nil {
		b.log.Emit(rec)
	}
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
