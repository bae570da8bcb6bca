package commands

import (
	"context"
	"fmt"
	"slices"

	"github.com/pixil98/go-outbreak/internal/game"
)

// gatherSpec ties a gathering verb to the resource it yields and the racket
// it makes doing so.
type gatherSpec struct {
	resource string
	noise    float64
}

var gatherSpecs = map[string]gatherSpec{
	"loot": {resource: "scrap", noise: 1},
	"chop": {resource: "wood", noise: 2},
	"mine": {resource: "metal", noise: 3},
}

func (d *Dispatcher) gatherHandler(verb string) HandlerFunc {
	spec := gatherSpecs[verb]

	return func(ctx context.Context, req *Request) (string, error) {
		err := d.world.WithPlayerRegion(req.Player, func(p *game.Player, r *game.Region) error {
			if p.Down {
				return NewUserError("You are down. There is no working that off.")
			}
			if p.Building != "" {
				return NewUserError("Not in here. Get back to street level first.")
			}
			if !slices.Contains(r.Resources, spec.resource) {
				return NewUserError(fmt.Sprintf("There is no %s to %s in %s.", spec.resource, verb, r.ID))
			}

			p.AddItems(map[string]int{spec.resource: 1})
			r.AddNoise(spec.noise)
			if err := d.world.SaveRegion(r); err != nil {
				return err
			}
			return d.world.SavePlayer(p)
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("You %s up 1x %s. The noise carries.", verb, spec.resource), nil
	}
}
