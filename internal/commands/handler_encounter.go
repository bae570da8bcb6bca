package commands

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/pixil98/go-outbreak/internal/encounter"
	"github.com/pixil98/go-outbreak/internal/game"
)

func (d *Dispatcher) handleEnter(ctx context.Context, req *Request) (string, error) {
	buildingID, err := req.arg(0, "enter <building>")
	if err != nil {
		return "", err
	}
	return d.enterFloor(req, buildingID, 1)
}

func (d *Dispatcher) handleFloor(ctx context.Context, req *Request) (string, error) {
	raw, err := req.arg(0, "floor <number>")
	if err != nil {
		return "", err
	}
	floor, err := strconv.Atoi(raw)
	if err != nil {
		return "", NewUserError(fmt.Sprintf("%q is not a floor number.", raw))
	}

	var buildingID string
	err = d.world.WithPlayer(req.Player, func(p *game.Player) error {
		buildingID = p.Building
		return nil
	})
	if err != nil {
		return "", err
	}
	if buildingID == "" {
		return "", NewUserError("You are not inside a building. Enter one first.")
	}
	return d.enterFloor(req, buildingID, floor)
}

func (d *Dispatcher) enterFloor(req *Request, buildingID string, floor int) (string, error) {
	enc, err := d.encounters.EnterFloor(req.Player, buildingID, floor, req.Now)
	if err != nil {
		return "", err
	}
	if enc == nil {
		return fmt.Sprintf("Floor %d of %s is already clear.", floor, buildingID), nil
	}
	window := enc.Deadline.Sub(req.Now).Round(time.Second)
	return fmt.Sprintf("Something shuffles on floor %d of %s. You have %s to sneak or attack.", floor, buildingID, window), nil
}

func (d *Dispatcher) handleSneak(ctx context.Context, req *Request) (string, error) {
	return d.choose(req, encounter.ChoiceSneak)
}

func (d *Dispatcher) handleAttack(ctx context.Context, req *Request) (string, error) {
	return d.choose(req, encounter.ChoiceAttack)
}

func (d *Dispatcher) choose(req *Request, choice encounter.Choice) (string, error) {
	if err := d.encounters.Choose(req.Player, choice); err != nil {
		return "", err
	}

	reply := "It is over."
	err := d.world.WithPlayer(req.Player, func(p *game.Player) error {
		enc := d.world.Encounter(p.ID)
		if enc == nil {
			return nil
		}
		switch enc.State {
		case game.EncounterCleared:
			reply = fmt.Sprintf("Floor %d of %s is clear.", enc.Floor, enc.BuildingID)
		case game.EncounterFled:
			reply = "You slip away with your life."
		case game.EncounterPlayerDown:
			reply = "The zombie got you."
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return reply, nil
}
