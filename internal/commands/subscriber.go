package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/muesli/reflow/wordwrap"
)

// replyWidth is the column players' terminals are assumed to have.
const replyWidth = 80

// ExecSubject is where clients publish command requests.
const ExecSubject = "commands.exec"

// Bus is the messaging surface the subscriber needs. The embedded NATS
// server satisfies it.
type Bus interface {
	Subscribe(subject string, handler func(data []byte)) (func(), error)
	Publish(subject string, data []byte) error
}

// ExecRequest is the wire form of one player command.
type ExecRequest struct {
	Player string `json:"player"`
	Line   string `json:"line"`
}

// Subscriber feeds command requests off the bus into the dispatcher and
// publishes replies back to the issuing player's channel.
type Subscriber struct {
	disp *Dispatcher
	bus  Bus
}

func NewSubscriber(disp *Dispatcher, bus Bus) *Subscriber {
	return &Subscriber{
		disp: disp,
		bus:  bus,
	}
}

func (s *Subscriber) Start(ctx context.Context) error {
	// The embedded server starts concurrently with this worker, so keep
	// trying until it accepts the subscription.
	var unsub func()
	for {
		var err error
		unsub, err = s.bus.Subscribe(ExecSubject, func(data []byte) {
			s.handle(ctx, data)
		})
		if err == nil {
			break
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Second):
		}
	}
	defer unsub()

	<-ctx.Done()
	return nil
}

func (s *Subscriber) handle(ctx context.Context, data []byte) {
	var req ExecRequest
	if err := json.Unmarshal(data, &req); err != nil {
		slog.Error("decoding command request", "error", err)
		return
	}

	reply := s.disp.Exec(ctx, req.Player, req.Line, time.Now())
	if reply == "" {
		return
	}
	reply = wordwrap.String(reply, replyWidth)
	if err := s.bus.Publish("player-"+req.Player, []byte(reply)); err != nil {
		slog.Error("replying to player", "player", req.Player, "error", err)
	}
}
