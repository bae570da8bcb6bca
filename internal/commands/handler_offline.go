package commands

import (
	"context"
	"fmt"

	"github.com/pixil98/go-outbreak/internal/game"
)

func (d *Dispatcher) handleSetMode(ctx context.Context, req *Request) (string, error) {
	raw, err := req.arg(0, "setmode <none|ambush|scavenge>")
	if err != nil {
		return "", err
	}
	mode, err := game.ParseOfflineMode(raw)
	if err != nil {
		return "", NewUserError(fmt.Sprintf("%q is not a mode. Pick none, ambush, or scavenge.", raw))
	}

	if err := d.offline.SetMode(req.Player, mode, req.Now); err != nil {
		return "", err
	}

	switch mode {
	case game.ModeAmbush:
		return "You settle in to wait. The next survivor through here is in for a surprise.", nil
	case game.ModeScavenge:
		return "You will pick the area over while you are away.", nil
	}
	return "You will lie low while you are away.", nil
}
