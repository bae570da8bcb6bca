package commands

import (
	"context"
	"fmt"

	"github.com/pixil98/go-outbreak/internal/game"
)

const ammoItem = "ammo"

func (d *Dispatcher) handleReload(ctx context.Context, req *Request) (string, error) {
	var loaded int
	var weapon string

	err := d.world.WithPlayer(req.Player, func(p *game.Player) error {
		if p.Weapon.Ammo < 0 {
			return NewUserError(fmt.Sprintf("Your %s does not take ammo.", p.Weapon.Name))
		}
		rounds := p.Inventory[ammoItem]
		if rounds == 0 {
			return NewUserError("No ammo in your pack.")
		}
		if err := p.SpendItems(map[string]int{ammoItem: rounds}); err != nil {
			return err
		}
		p.Weapon.Ammo += rounds
		loaded = rounds
		weapon = p.Weapon.Name
		return d.world.SavePlayer(p)
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("You load %d rounds into your %s.", loaded, weapon), nil
}
