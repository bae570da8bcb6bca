package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/pixil98/go-outbreak/internal/clock"
	"github.com/pixil98/go-outbreak/internal/encounter"
	"github.com/pixil98/go-outbreak/internal/game"
	"github.com/pixil98/go-outbreak/internal/offline"
	"github.com/pixil98/go-outbreak/internal/projects"
)

// Request carries one parsed player command into a handler.
type Request struct {
	Player string
	Args   []string
	Now    time.Time
}

// arg returns the i-th argument or a usage error.
func (r *Request) arg(i int, usage string) (string, error) {
	if i >= len(r.Args) {
		return "", NewUserError("Usage: " + usage)
	}
	return r.Args[i], nil
}

// HandlerFunc executes one verb and returns the reply shown to the player.
type HandlerFunc func(ctx context.Context, req *Request) (string, error)

// Dispatcher routes player input to verb handlers. All world mutation goes
// through the managers it holds; handlers only parse, delegate, and phrase
// the reply.
type Dispatcher struct {
	world      *game.WorldState
	encounters *encounter.Manager
	offline    *offline.Resolver
	projects   *projects.Manager
	fleet      *projects.Fleet
	clock      *clock.Clock
	pub        game.Publisher

	handlers map[string]HandlerFunc
}

func NewDispatcher(world *game.WorldState, enc *encounter.Manager, off *offline.Resolver, proj *projects.Manager, fleet *projects.Fleet, clk *clock.Clock, pub game.Publisher) *Dispatcher {
	d := &Dispatcher{
		world:      world,
		encounters: enc,
		offline:    off,
		projects:   proj,
		fleet:      fleet,
		clock:      clk,
		pub:        pub,
	}
	d.handlers = map[string]HandlerFunc{
		"status":  d.handleStatus,
		"move":    d.handleMove,
		"enter":   d.handleEnter,
		"floor":   d.handleFloor,
		"sneak":   d.handleSneak,
		"attack":  d.handleAttack,
		"loot":    d.gatherHandler("loot"),
		"mine":    d.gatherHandler("mine"),
		"chop":    d.gatherHandler("chop"),
		"setmode": d.handleSetMode,
		"build":   d.handleBuild,
		"vehicle": d.handleVehicle,
		"setfreq": d.handleSetFreq,
		"radio":   d.handleRadio,
		"reload":  d.handleReload,
	}
	return d
}

// Exec parses one line of player input and runs its verb. The returned
// string is always safe to show the player; internal faults are logged and
// collapsed to a generic message.
func (d *Dispatcher) Exec(ctx context.Context, playerID, line string, now time.Time) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}

	verb := strings.ToLower(fields[0])
	handler, ok := d.handlers[verb]
	if !ok {
		return "Unknown command: " + verb
	}

	req := &Request{Player: playerID, Args: fields[1:], Now: now}
	reply, err := handler(ctx, req)
	if err != nil {
		return d.phrase(playerID, verb, err)
	}
	return reply
}

// phrase turns a handler error into the player-visible reply.
func (d *Dispatcher) phrase(playerID, verb string, err error) string {
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.Message
	}

	var validationErr *game.ValidationError
	if errors.As(err, &validationErr) {
		return "You can't do that: " + validationErr.Error()
	}

	var conflictErr *game.ConflictError
	if errors.As(err, &conflictErr) {
		return "Not now: " + conflictErr.Error()
	}

	slog.Error("command failed", "player", playerID, "verb", verb, "error", err)
	return "Something went wrong. Try again."
}
