package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pixil98/go-outbreak/internal/game"
)

func (d *Dispatcher) handleStatus(ctx context.Context, req *Request) (string, error) {
	var b strings.Builder

	err := d.world.WithPlayer(req.Player, func(p *game.Player) error {
		fmt.Fprintf(&b, "%s the %s | %d/%d hp | %s", p.Name, p.Class.Display(), p.Health, p.MaxHealth, p.Region)
		if p.Building != "" {
			fmt.Fprintf(&b, ", %s floor %d", p.Building, p.Floor)
		}
		if p.Down {
			b.WriteString(" | DOWN")
		}
		b.WriteString("\n")

		if p.Weapon.Ammo >= 0 {
			fmt.Fprintf(&b, "Weapon: %s (%d dmg, %d rounds)", p.Weapon.Name, p.Weapon.Damage, p.Weapon.Ammo)
		} else {
			fmt.Fprintf(&b, "Weapon: %s (%d dmg)", p.Weapon.Name, p.Weapon.Damage)
		}
		fmt.Fprintf(&b, " | Offline: %s | Radio: %d\n", p.Mode, p.RadioFreq)

		if len(p.Inventory) > 0 {
			b.WriteString("Pack:")
			for _, item := range sortedItems(p.Inventory) {
				fmt.Fprintf(&b, " %dx %s", p.Inventory[item], item)
			}
			b.WriteString("\n")
		}

		fmt.Fprintf(&b, "It is %s.", d.clock.Phase())
		// Encounter fields are written under the player lock, so they are
		// only read while it is held.
		if enc := d.world.Encounter(p.ID); enc != nil && !enc.State.Terminal() {
			fmt.Fprintf(&b, " A zombie blocks floor %d of %s. Sneak or attack.", enc.Floor, enc.BuildingID)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

func sortedItems(inv map[string]int) []string {
	items := make([]string, 0, len(inv))
	for item := range inv {
		items = append(items, item)
	}
	sort.Strings(items)
	return items
}
