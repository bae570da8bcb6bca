package commands

import (
	"context"
	"fmt"

	"github.com/pixil98/go-outbreak/internal/game"
)

func (d *Dispatcher) handleMove(ctx context.Context, req *Request) (string, error) {
	dest, err := req.arg(0, "move <region>")
	if err != nil {
		return "", err
	}

	err = d.world.WithPlayerRegion(req.Player, func(p *game.Player, r *game.Region) error {
		if p.Down {
			return NewUserError("You are down. There is no walking that off.")
		}
		if enc := d.world.Encounter(req.Player); enc != nil && !enc.State.Terminal() {
			return NewUserError("A zombie blocks your way. Sneak or attack first.")
		}
		if d.world.Region(dest) == nil {
			return NewUserError("There is no such place as " + dest + ".")
		}
		if !r.ConnectedTo(dest) {
			return NewUserError("No route from " + r.ID + " to " + dest + ".")
		}

		p.LeaveBuilding()
		p.Region = dest
		return d.world.SavePlayer(p)
	})
	if err != nil {
		return "", err
	}

	// Anyone lying in wait in the destination springs now.
	if err := d.offline.OnArrival(req.Player, dest); err != nil {
		return "", err
	}
	return fmt.Sprintf("You head to %s.", dest), nil
}
