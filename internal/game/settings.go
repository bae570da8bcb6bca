package game

import "time"

// DownPolicy controls what happens to a player who loses a fight.
type DownPolicy string

const (
	// DownRespawn returns the player to the spawn region at half health.
	DownRespawn DownPolicy = "respawn"
	// DownPermadeath marks the player permanently out of play.
	DownPermadeath DownPolicy = "permadeath"
)

// Settings holds the world tunables. All durations are real wall-clock values
// before scaling; use Scaled to convert them for timers so a single
// time multiplier speeds up or slows down the entire world uniformly.
type Settings struct {
	TimeMultiplier  float64
	DayLength       time.Duration
	WorldTick       time.Duration
	DecisionWindow  time.Duration
	OfflineInterval time.Duration

	CritChance     float64
	CritMultiplier float64
	AlertedBonus   int
	AmbushBonus    float64

	NoiseDecay       float64
	SpawnRate        float64
	NightSpawnFactor float64

	DownPolicy  DownPolicy
	SpawnRegion string
}

func DefaultSettings() *Settings {
	return &Settings{
		TimeMultiplier:   1,
		DayLength:        30 * time.Minute,
		WorldTick:        30 * time.Second,
		DecisionWindow:   7 * time.Second,
		OfflineInterval:  time.Hour,
		CritChance:       0.05,
		CritMultiplier:   1.5,
		AlertedBonus:     5,
		AmbushBonus:      1.0,
		NoiseDecay:       0.8,
		SpawnRate:        0.1,
		NightSpawnFactor: 1.5,
		DownPolicy:       DownRespawn,
		SpawnRegion:      "forest",
	}
}

// Scaled converts a real duration into a world duration. A multiplier of 2
// makes everything happen twice as fast.
func (s *Settings) Scaled(d time.Duration) time.Duration {
	if s.TimeMultiplier <= 0 {
		return d
	}
	return time.Duration(float64(d) / s.TimeMultiplier)
}

// DayPhase is the current half of the game day.
type DayPhase string

const (
	PhaseDay   DayPhase = "day"
	PhaseNight DayPhase = "night"
)

// PhaseAt returns the day phase after the given scaled elapsed time. The
// first half of every day cycle is daylight.
func (s *Settings) PhaseAt(elapsed time.Duration) DayPhase {
	if s.DayLength <= 0 {
		return PhaseDay
	}
	frac := float64(elapsed%s.DayLength) / float64(s.DayLength)
	if frac < 0.5 {
		return PhaseDay
	}
	return PhaseNight
}
