package commands

import (
	"context"
	"fmt"
	"strconv"
)

func (d *Dispatcher) handleVehicle(ctx context.Context, req *Request) (string, error) {
	sub, err := req.arg(0, "vehicle <travel|repair> ...")
	if err != nil {
		return "", err
	}

	switch sub {
	case "travel":
		dest, err := req.arg(1, "vehicle travel <region>")
		if err != nil {
			return "", err
		}
		if err := d.fleet.Travel(req.Player, dest, req.Now); err != nil {
			return "", err
		}
		return fmt.Sprintf("You set out for %s.", dest), nil

	case "repair":
		kits := 1
		if len(req.Args) > 1 {
			kits, err = strconv.Atoi(req.Args[1])
			if err != nil || kits < 1 {
				return "", NewUserError(fmt.Sprintf("%q is not a kit count.", req.Args[1]))
			}
		}
		if err := d.fleet.Repair(req.Player, kits); err != nil {
			return "", err
		}
		return fmt.Sprintf("You work through %d repair kit(s).", kits), nil
	}
	return "", NewUserError("Usage: vehicle <travel|repair> ...")
}
