package game

import (
	"fmt"
	"sync"
)

// Region is a long-lived world aggregate: one area of the map with its own
// danger level, noise accumulator, and zombie population.
type Region struct {
	mu sync.Mutex

	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Type      string   `json:"type"` // forest, urban, military, coast
	Danger    int      `json:"danger"`
	Noise     float64  `json:"noise"`
	Zombies   int      `json:"zombies"`
	ZombieCap int      `json:"zombie_cap"`
	Connected []string `json:"connected"`

	// Structures built by players, by structure type.
	Structures []string `json:"structures,omitempty"`

	// Resources are the loot kinds this region yields when scavenged.
	Resources []string `json:"resources"`

	// LastPressureTick is the most recent world tick the pressure model ran
	// for, making the model idempotent within a tick.
	LastPressureTick int64 `json:"last_pressure_tick"`

	// dangerDirty marks a danger change since the last pressure run.
	dangerDirty bool
}

func (r *Region) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("region id is required")
	}
	if r.Danger < 0 {
		return fmt.Errorf("danger must not be negative")
	}
	if r.Noise < 0 {
		return fmt.Errorf("noise must not be negative")
	}
	if r.ZombieCap < 0 {
		return fmt.Errorf("zombie cap must not be negative")
	}
	return nil
}

// AddNoise raises the noise accumulator. Player activity (combat, looting,
// mining) funnels through here.
func (r *Region) AddNoise(n float64) {
	if n <= 0 {
		return
	}
	r.Noise += n
}

// ReduceNoise lowers the accumulator, clamping at zero.
func (r *Region) ReduceNoise(n float64) {
	r.Noise -= n
	if r.Noise < 0 {
		r.Noise = 0
	}
}

// SetDanger updates the danger level. Danger is mutated by world events, not
// by the pressure model; the change is flagged so the next tick treats the
// region as active.
func (r *Region) SetDanger(d int) {
	if d == r.Danger {
		return
	}
	r.Danger = d
	r.dangerDirty = true
}

// Active reports whether the pressure model should visit this region on the
// next tick.
func (r *Region) Active() bool {
	return r.Noise > 0 || r.dangerDirty
}

// ClearDangerDirty acknowledges a danger change after a pressure run.
func (r *Region) ClearDangerDirty() {
	r.dangerDirty = false
}

// ConnectedTo reports whether dest is directly reachable from this region.
func (r *Region) ConnectedTo(dest string) bool {
	for _, c := range r.Connected {
		if c == dest {
			return true
		}
	}
	return false
}
