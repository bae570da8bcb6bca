package offline

import (
	"math/rand/v2"
	"time"

	"github.com/pixil98/go-outbreak/internal/combat"
	"github.com/pixil98/go-outbreak/internal/game"
	"github.com/pixil98/go-outbreak/internal/sched"
)

// resolutionPayload pins a scheduled resolution to the mode it was created
// for. A mode change between schedule and fire turns the action into a no-op.
type resolutionPayload struct {
	Mode game.OfflineMode `json:"mode"`
}

// Resolver handles standing orders for idle players: periodic scavenge runs
// and one-shot ambushes triggered by another player's arrival.
type Resolver struct {
	world *game.WorldState
	queue *sched.Queue
	pub   game.Publisher

	rng *rand.Rand
}

func NewResolver(world *game.WorldState, queue *sched.Queue, pub game.Publisher, rng *rand.Rand) *Resolver {
	return &Resolver{world: world, queue: queue, pub: pub, rng: rng}
}

func (r *Resolver) intN(n int) int {
	if n <= 0 {
		return 0
	}
	if r.rng == nil {
		return rand.IntN(n)
	}
	return r.rng.IntN(n)
}

func (r *Resolver) float64() float64 {
	if r.rng == nil {
		return rand.Float64()
	}
	return r.rng.Float64()
}

// SetMode installs a standing order. Any previously scheduled resolution is
// cancelled so a player never has more than one in flight.
func (r *Resolver) SetMode(playerID string, mode game.OfflineMode, now time.Time) error {
	return r.world.WithPlayer(playerID, func(p *game.Player) error {
		if p.Down {
			return game.NewConflictError("you are down and cannot set a mode")
		}

		if p.OfflineActionID != "" {
			if err := r.queue.Cancel(p.OfflineActionID); err != nil {
				return err
			}
			p.OfflineActionID = ""
		}

		p.Mode = mode
		if mode != game.ModeNone {
			due := now.Add(r.world.Settings().Scaled(r.world.Settings().OfflineInterval))
			action, err := r.queue.Schedule(sched.KindOfflineResolution, playerID, due, resolutionPayload{Mode: mode})
			if err != nil {
				return err
			}
			p.OfflineActionID = action.ID
		}

		return r.world.SavePlayer(p)
	})
}

// OnResolution is the OfflineResolution resolver dispatched by the world
// clock. A superseded action, one the player no longer references, does
// nothing; the live order rescheduled itself under a new action id. An action
// still referenced but carrying a stale mode clears the reference and stops.
func (r *Resolver) OnResolution(action *sched.Action) error {
	var payload resolutionPayload
	if err := action.DecodePayload(&payload); err != nil {
		return err
	}

	return r.world.WithPlayerRegion(action.OwnerID, func(p *game.Player, reg *game.Region) error {
		if p.Down || p.OfflineActionID != action.ID {
			return nil
		}
		p.OfflineActionID = ""

		// The order went stale between schedule and fire, for example after a
		// sprung ambush reset the mode. Drop the reference and stop.
		if p.Mode != payload.Mode {
			return r.world.SavePlayer(p)
		}

		if payload.Mode == game.ModeScavenge {
			if err := r.scavenge(p, reg); err != nil {
				return err
			}
		}
		// Ambush mode has nothing to do on the periodic path; it resolves
		// through OnArrival. The reschedule keeps the order alive either way.

		due := action.DueAt.Add(r.world.Settings().Scaled(r.world.Settings().OfflineInterval))
		next, err := r.queue.Schedule(sched.KindOfflineResolution, p.ID, due, resolutionPayload{Mode: payload.Mode})
		if err != nil {
			return err
		}
		p.OfflineActionID = next.ID

		return r.world.SavePlayer(p)
	})
}

func (r *Resolver) scavenge(p *game.Player, reg *game.Region) error {
	chance := 0.3 - float64(reg.Danger)*0.002 + float64(p.Stats.Intelligence)*0.001
	if chance < 0.05 {
		chance = 0.05
	}
	if chance > 0.8 {
		chance = 0.8
	}

	if r.float64() < chance {
		loot := map[string]int{}
		if len(reg.Resources) > 0 {
			item := reg.Resources[r.intN(len(reg.Resources))]
			loot[item] = int(float64(1+r.intN(2)) * (1 + p.Class.Bonus().LootBonus))
		}
		p.AddItems(loot)
		// A careful scavenger tidies up after themselves.
		reg.ReduceNoise(2)

		if err := r.world.SaveRegion(reg); err != nil {
			return err
		}
		if r.pub != nil {
			r.pub.Publish(game.OfflineModeResolved{Player: p.ID, Mode: game.ModeScavenge, Success: true, Loot: loot})
		}
		return nil
	}

	// Caught off guard: fight a wandering zombie at half armor.
	out := combat.Resolve(r.playerFighter(p, p.Stats.Armor/2), r.wanderingZombie(reg), r.options(false))
	r.applyFight(p, out, "zombie")

	if err := r.world.SaveRegion(reg); err != nil {
		return err
	}
	if r.pub != nil {
		r.pub.Publish(game.OfflineModeResolved{Player: p.ID, Mode: game.ModeScavenge, Success: false})
	}
	return nil
}

// OnArrival fires every ambush waiting in a region the moment another player
// walks in. Each ambush is single-use: the ambusher's mode reverts to none
// whether or not the ambush succeeded, and the still-queued periodic
// resolution becomes a stale no-op.
func (r *Resolver) OnArrival(arriverID, regionID string) error {
	for _, candidate := range r.world.PlayersIn(regionID) {
		if candidate.ID == arriverID {
			continue
		}

		err := r.world.WithTwoPlayers(candidate.ID, arriverID, func(ambusher, target *game.Player) error {
			if ambusher.Mode != game.ModeAmbush || ambusher.Down || ambusher.Region != regionID || target.Down {
				return nil
			}

			out := combat.Resolve(
				r.playerFighter(ambusher, ambusher.Stats.Armor),
				r.playerFighter(target, target.Stats.Armor),
				r.options(true),
			)

			ambusher.Mode = game.ModeNone
			ambusher.Health = out.AttackerHealth
			if ambusher.Weapon.Gated() {
				ambusher.Weapon.Ammo -= out.AmmoSpent
				if ambusher.Weapon.Ammo < 0 {
					ambusher.Weapon.Ammo = 0
				}
			}
			target.Health = out.DefenderHealth

			if ambusher.Health <= 0 {
				r.down(ambusher, "ambush")
			}
			if target.Health <= 0 {
				r.down(target, "ambush")
			}

			if err := r.world.SavePlayer(ambusher); err != nil {
				return err
			}
			if err := r.world.SavePlayer(target); err != nil {
				return err
			}

			if r.pub != nil {
				r.pub.Publish(game.AmbushTriggered{
					Ambusher: ambusher.ID,
					Target:   target.ID,
					Region:   regionID,
					Won:      out.AttackerWon,
				})
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) playerFighter(p *game.Player, armor int) combat.Fighter {
	return combat.Fighter{
		Name:            p.Name,
		Health:          p.Health,
		Armor:           armor,
		BaseDamage:      p.Weapon.Damage,
		Ammo:            p.Weapon.Ammo,
		FallbackDamage:  game.UnarmedDamage,
		DamageBonus:     p.Class.Bonus().DamageBonus,
		Speed:           p.Stats.Speed,
		InitiativeBonus: p.Class.Bonus().InitiativeBonus,
	}
}

func (r *Resolver) wanderingZombie(reg *game.Region) combat.Fighter {
	return combat.Fighter{
		Name:       "zombie",
		Health:     20 + 2*reg.Danger + r.intN(10),
		BaseDamage: 5 + reg.Danger + r.intN(5),
		Ammo:       -1,
		Speed:      3 + r.intN(4),
	}
}

func (r *Resolver) options(ambush bool) combat.Options {
	settings := r.world.Settings()
	return combat.Options{
		Rand:           r.rng,
		JitterMin:      -5,
		JitterMax:      10,
		CritChance:     settings.CritChance,
		CritMultiplier: settings.CritMultiplier,
		AlertedBonus:   settings.AlertedBonus,
		Ambush:         ambush,
		AmbushBonus:    settings.AmbushBonus,
	}
}

func (r *Resolver) applyFight(p *game.Player, out combat.Outcome, cause string) {
	p.Health = out.AttackerHealth
	if p.Weapon.Gated() {
		p.Weapon.Ammo -= out.AmmoSpent
		if p.Weapon.Ammo < 0 {
			p.Weapon.Ammo = 0
		}
	}
	if p.Health <= 0 {
		r.down(p, cause)
	}
}

func (r *Resolver) down(p *game.Player, cause string) {
	region := p.Region
	p.LeaveBuilding()

	switch r.world.Settings().DownPolicy {
	case game.DownPermadeath:
		p.Down = true
		p.Health = 0
	default:
		p.Region = r.world.Settings().SpawnRegion
		p.Health = p.MaxHealth / 2
	}

	if r.pub != nil {
		r.pub.Publish(game.PlayerDown{Player: p.ID, Region: region, Cause: cause})
	}
}
