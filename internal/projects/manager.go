package projects

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/go-outbreak/internal/game"
	"github.com/pixil98/go-outbreak/internal/sched"
)

// Structure is one buildable catalog entry. DangerDelta is applied to the
// region when construction completes; defenses push danger down.
type Structure struct {
	Name        string
	Cost        map[string]int
	Duration    time.Duration
	DangerDelta int
}

var catalog = map[string]Structure{
	"barricade":   {Name: "Barricade", Cost: map[string]int{"wood": 10, "scrap": 5}, Duration: 30 * time.Minute, DangerDelta: -1},
	"watchtower":  {Name: "Watchtower", Cost: map[string]int{"wood": 25, "scrap": 10}, Duration: 2 * time.Hour, DangerDelta: -2},
	"workshop":    {Name: "Workshop", Cost: map[string]int{"wood": 15, "scrap": 20}, Duration: time.Hour},
	"radio-tower": {Name: "Radio Tower", Cost: map[string]int{"scrap": 30, "electronics": 5}, Duration: 3 * time.Hour},
	"garden":      {Name: "Garden", Cost: map[string]int{"wood": 5, "seeds": 3}, Duration: time.Hour},
}

// Catalog returns the buildable structure keys in stable order.
func Catalog() []string {
	keys := make([]string, 0, len(catalog))
	for k := range catalog {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// completePayload resumes a construction after a restart.
type completePayload struct {
	ProjectID string `json:"project_id"`
}

// Manager runs construction projects from start to scheduled completion.
type Manager struct {
	world *game.WorldState
	queue *sched.Queue
	pub   game.Publisher
}

func NewManager(world *game.WorldState, queue *sched.Queue, pub game.Publisher) *Manager {
	return &Manager{world: world, queue: queue, pub: pub}
}

// Start deducts the structure cost and schedules completion. Mechanics build
// faster through their class bonus.
func (m *Manager) Start(playerID, structure string, now time.Time) (*game.ConstructionProject, error) {
	spec, ok := catalog[structure]
	if !ok {
		return nil, game.NewValidationError("unknown structure %q", structure)
	}

	var project *game.ConstructionProject
	err := m.world.WithPlayer(playerID, func(p *game.Player) error {
		if p.Down {
			return game.NewConflictError("you are down and cannot build")
		}
		if p.Building != "" {
			return game.NewConflictError("step outside before building")
		}
		if err := p.SpendItems(spec.Cost); err != nil {
			return err
		}

		duration := time.Duration(float64(spec.Duration) * (1 - p.Class.Bonus().BuildSpeedBonus))
		doneAt := now.Add(m.world.Settings().Scaled(duration))

		project = &game.ConstructionProject{
			ID:        uuid.NewString(),
			Owner:     playerID,
			Region:    p.Region,
			Structure: structure,
			StartedAt: now,
			DoneAt:    doneAt,
		}

		action, err := m.queue.Schedule(sched.KindConstructionComplete, playerID, doneAt, completePayload{ProjectID: project.ID})
		if err != nil {
			return err
		}
		project.ActionID = action.ID

		if err := m.world.AddProject(project); err != nil {
			return err
		}
		return m.world.SavePlayer(p)
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// OnComplete is the ConstructionComplete resolver. It raises the structure in
// the project's region and applies its danger effect.
func (m *Manager) OnComplete(action *sched.Action) error {
	var payload completePayload
	if err := action.DecodePayload(&payload); err != nil {
		return err
	}

	project := m.world.Project(payload.ProjectID)
	if project == nil {
		// Cancelled while the action was in flight.
		return nil
	}
	spec, ok := catalog[project.Structure]
	if !ok {
		return game.NewInvariantError("project %s references unknown structure %q", project.ID, project.Structure)
	}

	err := m.world.WithRegion(project.Region, func(r *game.Region) error {
		r.Structures = append(r.Structures, project.Structure)
		if spec.DangerDelta != 0 {
			danger := r.Danger + spec.DangerDelta
			if danger < 0 {
				danger = 0
			}
			r.SetDanger(danger)
		}
		return m.world.SaveRegion(r)
	})
	if err != nil {
		return err
	}

	if err := m.world.RemoveProject(project.ID); err != nil {
		return err
	}

	if m.pub != nil {
		m.pub.Publish(game.ConstructionCompleted{
			Owner:     project.Owner,
			Region:    project.Region,
			Structure: project.Structure,
		})
	}
	return nil
}
