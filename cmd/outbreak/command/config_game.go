package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-outbreak/internal/game"
)

// GameConfig tunes the world. Zero values fall back to the defaults, so a
// config file only names what it changes.
type GameConfig struct {
	TimeMultiplier  float64 `json:"time_multiplier"`
	DayLength       string  `json:"day_length"`
	WorldTick       string  `json:"world_tick"`
	DecisionWindow  string  `json:"decision_window"`
	OfflineInterval string  `json:"offline_interval"`

	CritChance     float64 `json:"crit_chance"`
	CritMultiplier float64 `json:"crit_multiplier"`
	AlertedBonus   int     `json:"alerted_bonus"`
	AmbushBonus    float64 `json:"ambush_bonus"`

	NoiseDecay       float64 `json:"noise_decay"`
	SpawnRate        float64 `json:"spawn_rate"`
	NightSpawnFactor float64 `json:"night_spawn_factor"`

	DownPolicy  string `json:"down_policy"`
	SpawnRegion string `json:"spawn_region"`
}

func (c *GameConfig) validate() error {
	el := errors.NewErrorList()

	for name, raw := range map[string]string{
		"day_length":       c.DayLength,
		"world_tick":       c.WorldTick,
		"decision_window":  c.DecisionWindow,
		"offline_interval": c.OfflineInterval,
	} {
		if raw == "" {
			continue
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			el.Add(fmt.Errorf("parsing %s: %w", name, err))
		} else if d <= 0 {
			el.Add(fmt.Errorf("%s must be positive", name))
		}
	}

	if c.TimeMultiplier < 0 {
		el.Add(fmt.Errorf("time_multiplier must not be negative"))
	}
	if c.CritChance < 0 || c.CritChance > 1 {
		el.Add(fmt.Errorf("crit_chance must be within 0..1"))
	}
	if c.NoiseDecay < 0 || c.NoiseDecay >= 1 {
		el.Add(fmt.Errorf("noise_decay must be within 0..1"))
	}

	switch game.DownPolicy(c.DownPolicy) {
	case "", game.DownRespawn, game.DownPermadeath:
	default:
		el.Add(fmt.Errorf("down_policy must be %q or %q", game.DownRespawn, game.DownPermadeath))
	}

	return el.Err()
}

// BuildSettings layers the config over the defaults.
func (c *GameConfig) BuildSettings() *game.Settings {
	s := game.DefaultSettings()

	if c.TimeMultiplier > 0 {
		s.TimeMultiplier = c.TimeMultiplier
	}
	setDuration(&s.DayLength, c.DayLength)
	setDuration(&s.WorldTick, c.WorldTick)
	setDuration(&s.DecisionWindow, c.DecisionWindow)
	setDuration(&s.OfflineInterval, c.OfflineInterval)

	if c.CritChance > 0 {
		s.CritChance = c.CritChance
	}
	if c.CritMultiplier > 0 {
		s.CritMultiplier = c.CritMultiplier
	}
	if c.AlertedBonus > 0 {
		s.AlertedBonus = c.AlertedBonus
	}
	if c.AmbushBonus > 0 {
		s.AmbushBonus = c.AmbushBonus
	}
	if c.NoiseDecay > 0 {
		s.NoiseDecay = c.NoiseDecay
	}
	if c.SpawnRate > 0 {
		s.SpawnRate = c.SpawnRate
	}
	if c.NightSpawnFactor > 0 {
		s.NightSpawnFactor = c.NightSpawnFactor
	}
	if c.DownPolicy != "" {
		s.DownPolicy = game.DownPolicy(c.DownPolicy)
	}
	if c.SpawnRegion != "" {
		s.SpawnRegion = c.SpawnRegion
	}
	return s
}

func setDuration(dst *time.Duration, raw string) {
	if raw == "" {
		return
	}
	if d, err := time.ParseDuration(raw); err == nil {
		*dst = d
	}
}
