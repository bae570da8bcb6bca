package game

import "time"

// EncounterState is the life-cycle position of a building-floor encounter.
type EncounterState int

const (
	EncounterIdle EncounterState = iota
	EncounterPresented
	EncounterSneakResolved
	EncounterAttackResolved
	EncounterExpired
	EncounterCleared
	EncounterFled
	EncounterPlayerDown
)

func (s EncounterState) String() string {
	switch s {
	case EncounterIdle:
		return "idle"
	case EncounterPresented:
		return "presented"
	case EncounterSneakResolved:
		return "sneak_resolved"
	case EncounterAttackResolved:
		return "attack_resolved"
	case EncounterExpired:
		return "expired"
	case EncounterCleared:
		return "cleared"
	case EncounterFled:
		return "fled"
	case EncounterPlayerDown:
		return "player_down"
	}
	return "unknown"
}

// Terminal reports whether the encounter is finished.
func (s EncounterState) Terminal() bool {
	switch s {
	case EncounterCleared, EncounterFled, EncounterPlayerDown:
		return true
	}
	return false
}

// ZombieStats is the stat set rolled for one floor entry.
type ZombieStats struct {
	Health    int `json:"health"`
	Damage    int `json:"damage"`
	Alertness int `json:"alertness"`
	Speed     int `json:"speed"`
}

// Encounter is the ephemeral state of one player standing on one uncleared
// floor. A player has at most one non-terminal encounter at a time.
type Encounter struct {
	ID         string         `json:"id"`
	PlayerID   string         `json:"player_id"`
	BuildingID string         `json:"building_id"`
	Floor      int            `json:"floor"`
	Difficulty int            `json:"difficulty"`
	Zombie     ZombieStats    `json:"zombie"`
	Deadline   time.Time      `json:"deadline"`
	State      EncounterState `json:"state"`
	EnteredAt  time.Time      `json:"entered_at"`

	// ExpiryActionID references the DecisionExpiry action that fires if the
	// player never chooses.
	ExpiryActionID string `json:"expiry_action_id"`
}
