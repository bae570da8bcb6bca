package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pixil98/go-outbreak/internal/game"
)

const maxRadioFreq = 999

func (d *Dispatcher) handleSetFreq(ctx context.Context, req *Request) (string, error) {
	raw, err := req.arg(0, "setfreq <0-999>")
	if err != nil {
		return "", err
	}
	freq, err := strconv.Atoi(raw)
	if err != nil || freq < 0 || freq > maxRadioFreq {
		return "", NewUserError(fmt.Sprintf("%q is not a frequency. Pick 0 to %d.", raw, maxRadioFreq))
	}

	err = d.world.WithPlayer(req.Player, func(p *game.Player) error {
		p.RadioFreq = freq
		return d.world.SavePlayer(p)
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Radio tuned to channel %d.", freq), nil
}

func (d *Dispatcher) handleRadio(ctx context.Context, req *Request) (string, error) {
	if _, err := req.arg(0, "radio <message>"); err != nil {
		return "", err
	}
	message := strings.Join(req.Args, " ")

	var freq int
	err := d.world.WithPlayer(req.Player, func(p *game.Player) error {
		if p.Down {
			return NewUserError("You are down. The radio is out of reach.")
		}
		if p.RadioFreq == 0 {
			return NewUserError("Your radio is off. Tune it with setfreq first.")
		}
		freq = p.RadioFreq
		return nil
	})
	if err != nil {
		return "", err
	}

	listeners := d.world.TunedTo(freq, req.Player)
	if len(listeners) == 0 {
		return "", NewUserError("No one is listening on this frequency.")
	}

	if d.pub != nil {
		d.pub.Publish(game.RadioBroadcast{Freq: freq, Message: message, Listeners: listeners})
	}
	return fmt.Sprintf("Your message goes out on channel %d.", freq), nil
}
