package combat

import "math/rand/v2"

// Fighter is one side of a fight, snapshotted at resolution time. Resolve
// works on copies; the caller applies the Outcome back to world state.
type Fighter struct {
	Name   string
	Health int
	Armor  int

	// BaseDamage is the per-hit damage before modifiers. Ammo of -1 means
	// hits are not ammo gated; at 0 ammo, hits fall back to FallbackDamage.
	BaseDamage     int
	Ammo           int
	FallbackDamage int

	// DamageBonus is a fractional multiplier on top of base damage.
	DamageBonus float64

	Speed           int
	InitiativeBonus int

	// Alerted grants this fighter a flat damage bonus on every hit.
	Alerted bool
}

// Options tunes a resolution. Zero jitter bounds disable the jitter roll, so
// zero-value Options resolve fully deterministically.
type Options struct {
	Rand *rand.Rand

	JitterMin int
	JitterMax int

	CritChance     float64
	CritMultiplier float64
	AlertedBonus   int

	// Ambush gives the attacker the first strike unconditionally and
	// multiplies the opening hit by 1+AmbushBonus.
	Ambush      bool
	AmbushBonus float64

	// MaxRounds caps the exchange. Zero means DefaultMaxRounds.
	MaxRounds int
}

// DefaultMaxRounds bounds a fight that neither side can finish.
const DefaultMaxRounds = 50

// Outcome is the full result of one resolved fight.
type Outcome struct {
	AttackerWon bool
	Rounds      int

	AttackerHealth int
	DefenderHealth int

	// AmmoSpent is how many gated shots the attacker fired.
	AmmoSpent int

	// Stalemate is set when the round cap ended the fight with both sides
	// standing. AttackerWon is false in that case.
	Stalemate bool
}

// Resolve runs a fight to completion. It is a pure function of its inputs
// and the injected random source: replaying with the same seed produces an
// identical Outcome, which is what lets expired decision windows resolve the
// same way after a restart.
func Resolve(attacker, defender Fighter, opts Options) Outcome {
	rng := opts.Rand
	roll := func(n int) int {
		if n <= 0 {
			return 0
		}
		if rng == nil {
			return rand.IntN(n)
		}
		return rng.IntN(n)
	}
	chance := func(p float64) bool {
		if p <= 0 {
			return false
		}
		if rng == nil {
			return rand.Float64() < p
		}
		return rng.Float64() < p
	}

	maxRounds := opts.MaxRounds
	if maxRounds == 0 {
		maxRounds = DefaultMaxRounds
	}

	attackerFirst := opts.Ambush
	if !opts.Ambush {
		attInit := attacker.Speed + attacker.InitiativeBonus + roll(6)
		defInit := defender.Speed + defender.InitiativeBonus + roll(6)
		attackerFirst = attInit >= defInit
	}

	out := Outcome{}
	firstHit := true

	strike := func(striker *Fighter, victim *Fighter, isAttacker bool) {
		base := striker.BaseDamage
		if striker.Ammo == 0 {
			base = striker.FallbackDamage
		} else if striker.Ammo > 0 {
			striker.Ammo--
			if isAttacker {
				out.AmmoSpent++
			}
		}

		jitter := 0
		if span := opts.JitterMax - opts.JitterMin; span > 0 {
			jitter = opts.JitterMin + roll(span+1)
		}

		dmg := float64(base+jitter) * (1 + striker.DamageBonus)
		if chance(opts.CritChance) && opts.CritMultiplier > 0 {
			dmg *= opts.CritMultiplier
		}
		if striker.Alerted {
			dmg += float64(opts.AlertedBonus)
		}
		if opts.Ambush && firstHit && isAttacker {
			dmg *= 1 + opts.AmbushBonus
		}

		final := int(dmg) - victim.Armor
		if final < 1 {
			final = 1
		}
		victim.Health -= final
		firstHit = false
	}

	for out.Rounds < maxRounds {
		out.Rounds++

		first, second := &attacker, &defender
		firstIsAttacker := attackerFirst
		if !attackerFirst {
			first, second = &defender, &attacker
		}

		strike(first, second, firstIsAttacker)
		if second.Health <= 0 {
			break
		}
		strike(second, first, !firstIsAttacker)
		if first.Health <= 0 {
			break
		}
	}

	out.AttackerHealth = attacker.Health
	out.DefenderHealth = defender.Health
	if out.AttackerHealth < 0 {
		out.AttackerHealth = 0
	}
	if out.DefenderHealth < 0 {
		out.DefenderHealth = 0
	}

	switch {
	case defender.Health <= 0 && attacker.Health > 0:
		out.AttackerWon = true
	case attacker.Health > 0 && defender.Health > 0:
		out.Stalemate = true
	}

	return out
}
