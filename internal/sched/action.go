package sched

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind names the resolver responsible for a pending action.
type Kind string

const (
	KindDecisionExpiry       Kind = "decision_expiry"
	KindOfflineResolution    Kind = "offline_resolution"
	KindConstructionComplete Kind = "construction_complete"
	KindVehicleArrival       Kind = "vehicle_arrival"
)

// Action is one durable future effect. Actions survive restarts: the queue
// persists every action on schedule and deletes it only after the world clock
// has consumed it.
type Action struct {
	ID      string    `json:"id"`
	Kind    Kind      `json:"kind"`
	OwnerID string    `json:"owner_id"`
	DueAt   time.Time `json:"due_at"`

	// Seq breaks ties between actions due at the same instant. It is assigned
	// at schedule time and preserved across restarts so replay order is
	// deterministic.
	Seq uint64 `json:"seq"`

	// Payload holds kind-specific resolution context, such as the zombie
	// stats rolled when a decision window opened.
	Payload json.RawMessage `json:"payload,omitempty"`
}

func (a *Action) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("action id is required")
	}
	switch a.Kind {
	case KindDecisionExpiry, KindOfflineResolution, KindConstructionComplete, KindVehicleArrival:
	default:
		return fmt.Errorf("unknown action kind %q", a.Kind)
	}
	if a.OwnerID == "" {
		return fmt.Errorf("action owner is required")
	}
	if a.DueAt.IsZero() {
		return fmt.Errorf("action due time is required")
	}
	return nil
}

// DecodePayload unmarshals the action payload into out.
func (a *Action) DecodePayload(out any) error {
	if len(a.Payload) == 0 {
		return fmt.Errorf("action %s has no payload", a.ID)
	}
	if err := json.Unmarshal(a.Payload, out); err != nil {
		return fmt.Errorf("decoding %s payload: %w", a.Kind, err)
	}
	return nil
}
