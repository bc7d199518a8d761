package sim

import (
	"encoding/json"
	"time"
)

// RecordType classifies a battle log record.
type RecordType uint8

const (
	RecordUnknown RecordType = iota
	RecordTurn
	RecordPlacement
	RecordDamage
	RecordKill
)

// String returns a human-readable record type.
func (t RecordType) String() string {
	switch t {
	case RecordTurn:
		return "turn"
	case RecordPlacement:
		return "placement"
	case RecordDamage:
		return "damage"
	case RecordKill:
		return "kill"
	default:
		return "unknown"
	}
}

// Record is one battle log entry. Payload is pre-encoded JSON so the async
// writer never touches domain types.
type Record struct {
	Type      RecordType      `json:"type"`
	Timestamp int64           `json:"timestamp"` // unix nano
	Sequence  uint64          `json:"sequence"`  // monotonic, assigned by the log
	Turn      uint64          `json:"turn"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// TurnPayload summarizes one resolved turn.
type TurnPayload struct {
	Units  int `json:"units"`
	Events int `json:"events"`
}

// PlacementPayload records a player placing a unit.
type PlacementPayload struct {
	UnitID string `json:"unitId"`
	Type   string `json:"unitType"`
	Team   string `json:"team"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
}

// DamagePayload records one resolved attack.
type DamagePayload struct {
	AttackerID string `json:"attackerId"`
	VictimID   string `json:"victimId"`
	Damage     int    `json:"damage"`
	VictimHP   int    `json:"victimHp"`
	Strong     bool   `json:"strong"`
	Weak       bool   `json:"weak"`
}

// KillPayload records a unit dropping to zero HP.
type KillPayload struct {
	KillerID string `json:"killerId"`
	VictimID string `json:"victimId"`
}

// NewRecord builds a record with the current timestamp. A payload that fails
// to encode becomes a nil payload rather than an error; the log is advisory.
func NewRecord(t RecordType, turn uint64, payload interface{}) Record {
	data, err := json.Marshal(payload)
	if err != nil {
		data = nil
	}
	return Record{
		Type:      t,
		Timestamp: time.Now().UnixNano(),
		Turn:      turn,
		Payload:   data,
	}
}
