package projects

import (
	"time"

	"github.com/pixil98/go-outbreak/internal/game"
	"github.com/pixil98/go-outbreak/internal/sched"
)

// tripFuel is the fuel burned per journey between connected regions.
const tripFuel = 10

// tripDuration is the real travel time before scaling.
const tripDuration = 5 * time.Minute

// repairKitItem is the inventory item consumed by vehicle repairs.
const repairKitItem = "repair-kit"

// arrivalPayload resumes a journey after a restart.
type arrivalPayload struct {
	VehicleID   string `json:"vehicle_id"`
	Destination string `json:"destination"`
}

// Fleet runs vehicle journeys and repairs. Arrivals also relocate the owner,
// so a configured arrival hook lets the ambush path see the move.
type Fleet struct {
	world *game.WorldState
	queue *sched.Queue
	pub   game.Publisher

	// onArrival, when set, fires after the owner lands in the destination.
	onArrival func(playerID, regionID string) error
}

func NewFleet(world *game.WorldState, queue *sched.Queue, pub game.Publisher) *Fleet {
	return &Fleet{world: world, queue: queue, pub: pub}
}

// SetArrivalHook registers the post-arrival callback. Must be called before
// the world clock starts dispatching.
func (f *Fleet) SetArrivalHook(hook func(playerID, regionID string) error) {
	f.onArrival = hook
}

// Travel sends the player's vehicle to a connected region. The journey holds
// the vehicle in transit until its VehicleArrival action fires.
func (f *Fleet) Travel(playerID, dest string, now time.Time) error {
	v := f.world.VehicleOf(playerID)
	if v == nil {
		return game.NewValidationError("you have no vehicle")
	}

	return f.world.WithVehicle(v.ID, func(v *game.Vehicle) error {
		return f.world.WithPlayerRegion(playerID, func(p *game.Player, r *game.Region) error {
			if p.Down {
				return game.NewConflictError("you are down and cannot drive")
			}
			if p.Building != "" {
				return game.NewConflictError("step outside before driving")
			}
			if v.InTransit {
				return game.NewConflictError("%s is already on the road", v.ID)
			}
			if v.Region != p.Region {
				return game.NewValidationError("%s is parked in %s, not here", v.ID, v.Region)
			}
			if !r.ConnectedTo(dest) {
				return game.NewValidationError("no road from %s to %s", p.Region, dest)
			}
			if v.Condition < game.DriveConditionThreshold {
				return game.NewConflictError("%s needs repairs before it can drive (condition %d, needs %d)", v.ID, v.Condition, game.DriveConditionThreshold)
			}
			if v.Fuel < tripFuel {
				return game.NewConflictError("not enough fuel: need %d, have %d", tripFuel, v.Fuel)
			}

			v.Fuel -= tripFuel
			v.InTransit = true
			v.Destination = dest

			due := now.Add(f.world.Settings().Scaled(tripDuration))
			if _, err := f.queue.Schedule(sched.KindVehicleArrival, playerID, due, arrivalPayload{
				VehicleID:   v.ID,
				Destination: dest,
			}); err != nil {
				return err
			}

			return f.world.SaveVehicle(v)
		})
	})
}

// OnArrival is the VehicleArrival resolver. It lands the vehicle and moves
// the owner with it.
func (f *Fleet) OnArrival(action *sched.Action) error {
	var payload arrivalPayload
	if err := action.DecodePayload(&payload); err != nil {
		return err
	}

	var owner string
	err := f.world.WithVehicle(payload.VehicleID, func(v *game.Vehicle) error {
		if !v.InTransit || v.Destination != payload.Destination {
			return nil
		}
		v.Region = payload.Destination
		v.InTransit = false
		v.Destination = ""
		owner = v.Owner
		return f.world.SaveVehicle(v)
	})
	if err != nil || owner == "" {
		return err
	}

	err = f.world.WithPlayer(owner, func(p *game.Player) error {
		p.Region = payload.Destination
		p.LeaveBuilding()
		return f.world.SavePlayer(p)
	})
	if err != nil {
		return err
	}

	if f.pub != nil {
		f.pub.Publish(game.VehicleArrived{
			Owner:   owner,
			Vehicle: payload.VehicleID,
			Region:  payload.Destination,
		})
	}

	if f.onArrival != nil {
		return f.onArrival(owner, payload.Destination)
	}
	return nil
}

// Repair spends repair kits from the owner's inventory into vehicle
// condition.
func (f *Fleet) Repair(playerID string, kits int) error {
	if kits < 1 {
		return game.NewValidationError("repair needs at least one kit")
	}
	v := f.world.VehicleOf(playerID)
	if v == nil {
		return game.NewValidationError("you have no vehicle")
	}

	return f.world.WithVehicle(v.ID, func(v *game.Vehicle) error {
		return f.world.WithPlayer(playerID, func(p *game.Player) error {
			if v.InTransit {
				return game.NewConflictError("%s is on the road", v.ID)
			}
			if v.Region != p.Region {
				return game.NewValidationError("%s is parked in %s, not here", v.ID, v.Region)
			}
			if err := p.SpendItems(map[string]int{repairKitItem: kits}); err != nil {
				return err
			}
			v.Repair(kits)

			if err := f.world.SaveVehicle(v); err != nil {
				return err
			}
			return f.world.SavePlayer(p)
		})
	})
}
