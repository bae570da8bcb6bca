package clock

import (
	"log/slog"
	"sync"
	"time"

	"github.com/pixil98/go-outbreak/internal/game"
	"github.com/pixil98/go-outbreak/internal/pressure"
	"github.com/pixil98/go-outbreak/internal/sched"
)

// Resolver consumes one due action. Resolver errors are logged and the action
// dropped; one bad event must never stall the clock.
type Resolver func(*sched.Action) error

// Clock converts wall time into game time. Each Advance recomputes the day
// phase, drains due pending actions into their resolvers, and runs the
// pressure model over regions with recent activity. It holds no per-player
// state, which is what makes a restart a plain re-construction.
type Clock struct {
	world *game.WorldState
	queue *sched.Queue
	model *pressure.Model
	pub   game.Publisher

	mu        sync.Mutex
	resolvers map[sched.Kind]Resolver
	epoch     time.Time
	tick      int64
	phase     game.DayPhase
}

// New builds a clock starting its day cycle at epoch.
func New(world *game.WorldState, queue *sched.Queue, model *pressure.Model, pub game.Publisher, epoch time.Time) *Clock {
	return &Clock{
		world:     world,
		queue:     queue,
		model:     model,
		pub:       pub,
		resolvers: map[sched.Kind]Resolver{},
		epoch:     epoch,
		phase:     game.PhaseDay,
	}
}

// Register installs the resolver for an action kind. Must happen before the
// first Advance.
func (c *Clock) Register(kind sched.Kind, r Resolver) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resolvers[kind] = r
}

// Phase returns the current day phase.
func (c *Clock) Phase() game.DayPhase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Advance runs one world tick at the given wall time.
func (c *Clock) Advance(now time.Time) {
	c.mu.Lock()
	c.tick++
	tick := c.tick

	phase := c.world.Settings().PhaseAt(c.gameElapsed(now))
	changed := phase != c.phase
	c.phase = phase
	c.mu.Unlock()

	if changed && c.pub != nil {
		c.pub.Publish(game.DayPhaseChanged{Phase: phase})
	}

	c.drain(now)
	c.applyPressure(tick, phase)
}

// gameElapsed scales real elapsed time by the world time multiplier.
func (c *Clock) gameElapsed(now time.Time) time.Duration {
	elapsed := now.Sub(c.epoch)
	if mult := c.world.Settings().TimeMultiplier; mult > 0 {
		elapsed = time.Duration(float64(elapsed) * mult)
	}
	return elapsed
}

func (c *Clock) drain(now time.Time) {
	for _, action := range c.queue.Due(now) {
		c.mu.Lock()
		resolver := c.resolvers[action.Kind]
		c.mu.Unlock()

		if resolver == nil {
			slog.Error("no resolver for action kind", "kind", action.Kind, "action", action.ID)
			continue
		}
		if err := resolver(action); err != nil {
			slog.Error("resolving action", "kind", action.Kind, "action", action.ID, "owner", action.OwnerID, "error", err)
		}
	}
}

func (c *Clock) applyPressure(tick int64, phase game.DayPhase) {
	for _, region := range c.world.Regions() {
		id := region.ID
		err := c.world.WithRegion(id, func(r *game.Region) error {
			if !r.Active() {
				return nil
			}
			if c.model.Tick(r, tick, phase) {
				return c.world.SaveRegion(r)
			}
			return nil
		})
		if err != nil {
			slog.Error("pressure tick", "region", id, "error", err)
		}
	}
}
