package pressure

import (
	"github.com/pixil98/go-outbreak/internal/game"
)

// noiseFloor is where decaying noise snaps to zero, so a region eventually
// drops out of the active set instead of decaying forever.
const noiseFloor = 0.01

// Model turns accumulated noise and danger into zombie spawns. It never
// mutates danger; that belongs to world events.
type Model struct {
	settings *game.Settings
	pub      game.Publisher
}

func NewModel(settings *game.Settings, pub game.Publisher) *Model {
	return &Model{settings: settings, pub: pub}
}

// Tick runs one pressure step for a region. The caller holds the region's
// lock. Running the same tick index twice is a no-op, so a clock hiccup that
// visits a region twice cannot double-spawn.
func (m *Model) Tick(r *game.Region, tick int64, phase game.DayPhase) bool {
	if r.LastPressureTick >= tick {
		return false
	}
	r.LastPressureTick = tick

	load := float64(r.Danger) * r.Noise * m.settings.SpawnRate
	if phase == game.PhaseNight && m.settings.NightSpawnFactor > 0 {
		load *= m.settings.NightSpawnFactor
	}

	spawned := int(load)
	if room := r.ZombieCap - r.Zombies; spawned > room {
		spawned = room
	}
	if spawned > 0 {
		r.Zombies += spawned
		if m.pub != nil {
			m.pub.Publish(game.ZombiesSpawned{
				Region: r.ID,
				Count:  spawned,
				Total:  r.Zombies,
			})
		}
	}

	r.Noise *= m.settings.NoiseDecay
	if r.Noise < noiseFloor {
		r.Noise = 0
	}
	r.ClearDangerDirty()

	return true
}
