package encounter

import (
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/go-outbreak/internal/combat"
	"github.com/pixil98/go-outbreak/internal/game"
	"github.com/pixil98/go-outbreak/internal/sched"
)

// Choice is a player's answer to a presented encounter.
type Choice string

const (
	ChoiceSneak  Choice = "sneak"
	ChoiceAttack Choice = "attack"
)

// combatNoise is the noise one fight adds to the region.
const combatNoise = 5

// expiryPayload carries everything needed to resolve a decision window after
// a restart, when the in-memory encounter may be gone.
type expiryPayload struct {
	EncounterID string           `json:"encounter_id"`
	BuildingID  string           `json:"building_id"`
	Floor       int              `json:"floor"`
	Difficulty  int              `json:"difficulty"`
	Zombie      game.ZombieStats `json:"zombie"`
}

// Manager drives the per-player floor encounter state machine.
type Manager struct {
	world *game.WorldState
	queue *sched.Queue
	pub   game.Publisher

	// rng is injectable for tests; nil falls back to the global source.
	rng *rand.Rand
}

func NewManager(world *game.WorldState, queue *sched.Queue, pub game.Publisher, rng *rand.Rand) *Manager {
	return &Manager{world: world, queue: queue, pub: pub, rng: rng}
}

func (m *Manager) intN(n int) int {
	if n <= 0 {
		return 0
	}
	if m.rng == nil {
		return rand.IntN(n)
	}
	return m.rng.IntN(n)
}

// EnterFloor moves a player onto a building floor. An uncleared floor rolls a
// zombie, opens a decision window, and schedules its expiry. The returned
// encounter is nil when the floor was already cleared.
func (m *Manager) EnterFloor(playerID, buildingID string, floor int, now time.Time) (*game.Encounter, error) {
	var enc *game.Encounter

	err := m.world.WithPlayerRegion(playerID, func(p *game.Player, r *game.Region) error {
		if p.Down {
			return game.NewConflictError("you are down and cannot explore")
		}
		if cur := m.world.Encounter(playerID); cur != nil && !cur.State.Terminal() {
			return game.NewConflictError("encounter in progress, choose sneak or attack first")
		}

		var cleared bool
		err := m.world.WithBuilding(buildingID, func(b *game.Building) error {
			if b.Region != p.Region {
				return game.NewValidationError("%s is not in this region", buildingID)
			}
			f := b.Floor(floor)
			if f == nil {
				return game.NewValidationError("%s has no floor %d", buildingID, floor)
			}
			cleared = f.Cleared
			return nil
		})
		if err != nil {
			return err
		}

		p.Building = buildingID
		p.Floor = floor
		if cleared {
			return m.world.SavePlayer(p)
		}

		difficulty := game.FloorDifficulty(floor, r.Danger)
		enc = &game.Encounter{
			ID:         uuid.NewString(),
			PlayerID:   playerID,
			BuildingID: buildingID,
			Floor:      floor,
			Difficulty: difficulty,
			Zombie:     m.rollZombie(difficulty),
			Deadline:   now.Add(m.world.Settings().Scaled(m.world.Settings().DecisionWindow)),
			State:      game.EncounterPresented,
			EnteredAt:  now,
		}

		action, err := m.queue.Schedule(sched.KindDecisionExpiry, playerID, enc.Deadline, expiryPayload{
			EncounterID: enc.ID,
			BuildingID:  buildingID,
			Floor:       floor,
			Difficulty:  difficulty,
			Zombie:      enc.Zombie,
		})
		if err != nil {
			return err
		}
		enc.ExpiryActionID = action.ID

		if err := m.world.SetEncounter(enc); err != nil {
			return err
		}
		if err := m.world.SavePlayer(p); err != nil {
			return err
		}

		if m.pub != nil {
			m.pub.Publish(game.EncounterOpened{
				Player:   playerID,
				Building: buildingID,
				Floor:    floor,
				Deadline: enc.Deadline,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return enc, nil
}

// Choose records the player's decision before the deadline. The pending
// expiry is cancelled first, so a choice and its expiry can never both
// resolve the same encounter.
func (m *Manager) Choose(playerID string, choice Choice) error {
	return m.world.WithPlayerRegion(playerID, func(p *game.Player, r *game.Region) error {
		enc := m.world.Encounter(playerID)
		if enc == nil || enc.State != game.EncounterPresented {
			return game.NewConflictError("no open encounter to resolve")
		}

		if err := m.queue.Cancel(enc.ExpiryActionID); err != nil {
			return err
		}

		switch choice {
		case ChoiceSneak:
			enc.State = game.EncounterSneakResolved
			if m.sneakSucceeds(p, enc) {
				return m.flee(p, enc)
			}
			// Spotted: the zombie fights alerted.
			return m.resolveAttack(p, r, enc, true)
		case ChoiceAttack:
			enc.State = game.EncounterAttackResolved
			return m.resolveAttack(p, r, enc, false)
		}
		return game.NewValidationError("unknown choice %q, pick sneak or attack", choice)
	})
}

// OnExpiry is the DecisionExpiry resolver dispatched by the world clock. A
// window that lapses with no choice resolves as a plain attack, with no
// alerted bonus on either side. An encounter the player already resolved is
// a no-op.
func (m *Manager) OnExpiry(action *sched.Action) error {
	var payload expiryPayload
	if err := action.DecodePayload(&payload); err != nil {
		return err
	}

	return m.world.WithPlayerRegion(action.OwnerID, func(p *game.Player, r *game.Region) error {
		enc := m.world.Encounter(action.OwnerID)
		if enc == nil {
			// Restart dropped the in-memory encounter; rebuild it from the
			// durable payload and resolve as if it were still open.
			enc = &game.Encounter{
				ID:         payload.EncounterID,
				PlayerID:   action.OwnerID,
				BuildingID: payload.BuildingID,
				Floor:      payload.Floor,
				Difficulty: payload.Difficulty,
				Zombie:     payload.Zombie,
				State:      game.EncounterPresented,
			}
			if err := m.world.SetEncounter(enc); err != nil {
				return err
			}
		}
		if enc.ID != payload.EncounterID || enc.State != game.EncounterPresented {
			return nil
		}

		enc.State = game.EncounterExpired
		return m.resolveAttack(p, r, enc, false)
	})
}

// sneakSucceeds rolls stealth against the zombie's alertness.
func (m *Manager) sneakSucceeds(p *game.Player, enc *game.Encounter) bool {
	chance := 30 + p.Stats.Stealth + p.Class.Bonus().StealthBonus - int(float64(enc.Zombie.Alertness)*0.6)
	if chance < 5 {
		chance = 5
	}
	if chance > 95 {
		chance = 95
	}
	return m.intN(100) < chance
}

func (m *Manager) flee(p *game.Player, enc *game.Encounter) error {
	enc.State = game.EncounterFled
	building, floor := p.Building, p.Floor
	p.LeaveBuilding()
	if err := m.world.SavePlayer(p); err != nil {
		return err
	}
	if m.pub != nil {
		m.pub.Publish(game.PlayerFled{Player: p.ID, Building: building, Floor: floor})
	}
	return nil
}

// resolveAttack runs the fight and applies the terminal transition. The
// caller holds the player and region locks.
func (m *Manager) resolveAttack(p *game.Player, r *game.Region, enc *game.Encounter, zombieAlerted bool) error {
	settings := m.world.Settings()

	attacker := combat.Fighter{
		Name:            p.Name,
		Health:          p.Health,
		Armor:           p.Stats.Armor,
		BaseDamage:      p.Weapon.Damage,
		Ammo:            p.Weapon.Ammo,
		FallbackDamage:  game.UnarmedDamage,
		DamageBonus:     p.Class.Bonus().DamageBonus,
		Speed:           p.Stats.Speed,
		InitiativeBonus: p.Class.Bonus().InitiativeBonus,
	}
	defender := combat.Fighter{
		Name:       "zombie",
		Health:     enc.Zombie.Health,
		BaseDamage: enc.Zombie.Damage,
		Ammo:       -1,
		Speed:      enc.Zombie.Speed,
		Alerted:    zombieAlerted,
	}

	out := combat.Resolve(attacker, defender, combat.Options{
		Rand:           m.rng,
		JitterMin:      -5,
		JitterMax:      10,
		CritChance:     settings.CritChance,
		CritMultiplier: settings.CritMultiplier,
		AlertedBonus:   settings.AlertedBonus,
	})

	p.Health = out.AttackerHealth
	if p.Weapon.Gated() {
		p.Weapon.Ammo -= out.AmmoSpent
		if p.Weapon.Ammo < 0 {
			p.Weapon.Ammo = 0
		}
	}
	r.AddNoise(combatNoise)

	switch {
	case out.AttackerWon:
		return m.clearFloor(p, r, enc)
	case out.Stalemate:
		return m.flee(p, enc)
	default:
		return m.downPlayer(p, r, enc)
	}
}

func (m *Manager) clearFloor(p *game.Player, r *game.Region, enc *game.Encounter) error {
	enc.State = game.EncounterCleared

	err := m.world.WithBuilding(enc.BuildingID, func(b *game.Building) error {
		f := b.Floor(enc.Floor)
		if f == nil {
			return game.NewInvariantError("encounter %s references missing floor %d", enc.ID, enc.Floor)
		}
		f.MarkCleared()
		return m.world.SaveBuilding(b)
	})
	if err != nil {
		return err
	}

	loot := m.rollLoot(r, enc.Difficulty, p.Class.Bonus().LootBonus)
	p.AddItems(loot)

	if err := m.world.SaveRegion(r); err != nil {
		return err
	}
	if err := m.world.SavePlayer(p); err != nil {
		return err
	}

	if m.pub != nil {
		m.pub.Publish(game.FloorCleared{
			Player:   p.ID,
			Building: enc.BuildingID,
			Floor:    enc.Floor,
			Loot:     loot,
		})
	}
	return nil
}

func (m *Manager) downPlayer(p *game.Player, r *game.Region, enc *game.Encounter) error {
	enc.State = game.EncounterPlayerDown
	region := p.Region
	p.LeaveBuilding()

	switch m.world.Settings().DownPolicy {
	case game.DownPermadeath:
		p.Down = true
		p.Health = 0
	default:
		p.Region = m.world.Settings().SpawnRegion
		p.Health = p.MaxHealth / 2
	}

	if err := m.world.SaveRegion(r); err != nil {
		return err
	}
	if err := m.world.SavePlayer(p); err != nil {
		return err
	}

	if m.pub != nil {
		m.pub.Publish(game.PlayerDown{Player: p.ID, Region: region, Cause: "zombie"})
	}
	return nil
}

// rollZombie scales the stat set with floor difficulty.
func (m *Manager) rollZombie(difficulty int) game.ZombieStats {
	return game.ZombieStats{
		Health:    20 + 2*difficulty + m.intN(10),
		Damage:    5 + difficulty + m.intN(5),
		Alertness: 10 + 3*difficulty,
		Speed:     3 + m.intN(4),
	}
}

// rollLoot draws from the region's resource kinds, weighted up by difficulty
// and the scavenger's loot bonus.
func (m *Manager) rollLoot(r *game.Region, difficulty int, bonus float64) map[string]int {
	loot := map[string]int{}
	if len(r.Resources) == 0 {
		return loot
	}
	draws := 1 + difficulty/3
	for range draws {
		item := r.Resources[m.intN(len(r.Resources))]
		loot[item] += int(float64(1+m.intN(3)) * (1 + bonus))
	}
	return loot
}
