package game

import (
	"fmt"
	"time"
)

// ConstructionProject is an in-progress build. Completion is driven by a
// ConstructionComplete pending action, never by polling elapsed time.
type ConstructionProject struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	Region    string    `json:"region"`
	Structure string    `json:"structure"`
	StartedAt time.Time `json:"started_at"`
	DoneAt    time.Time `json:"done_at"`

	// ActionID references the scheduled completion action.
	ActionID string `json:"action_id"`
}

func (c *ConstructionProject) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("project id is required")
	}
	if c.Owner == "" {
		return fmt.Errorf("project owner is required")
	}
	if c.Structure == "" {
		return fmt.Errorf("project structure is required")
	}
	if c.DoneAt.Before(c.StartedAt) {
		return fmt.Errorf("project completes before it starts")
	}
	return nil
}
