package grid

// EventKind classifies a resolved combat action.
type EventKind uint8

const (
	KindHit EventKind = iota
	KindKill
)

// String returns a human-readable kind for logs and JSON payloads.
func (k EventKind) String() string {
	switch k {
	case KindHit:
		return "hit"
	case KindKill:
		return "kill"
	default:
		return "unknown"
	}
}

// CombatEvent describes one resolved combat action against one target cell.
// Strong and Weak are mutually exclusive; KindKill implies the target's HP
// reached zero with this event.
type CombatEvent struct {
	Target Coord     `json:"target"`
	Damage int       `json:"damage"`
	Strong bool      `json:"strong"`
	Weak   bool      `json:"weak"`
	Kind   EventKind `json:"kind"`
}
