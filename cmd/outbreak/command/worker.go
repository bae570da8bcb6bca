package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-outbreak/internal/clock"
	"github.com/pixil98/go-outbreak/internal/commands"
	"github.com/pixil98/go-outbreak/internal/encounter"
	"github.com/pixil98/go-outbreak/internal/game"
	"github.com/pixil98/go-outbreak/internal/messaging"
	"github.com/pixil98/go-outbreak/internal/offline"
	"github.com/pixil98/go-outbreak/internal/pressure"
	"github.com/pixil98/go-outbreak/internal/projects"
	"github.com/pixil98/go-outbreak/internal/sched"
	"github.com/pixil98/go-service"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	settings := cfg.Game.BuildSettings()

	dict, err := cfg.Storage.BuildDictionary()
	if err != nil {
		return nil, fmt.Errorf("building dictionary: %w", err)
	}
	world := game.NewWorldState(settings, dict)

	actionStore, err := cfg.Storage.BuildActionStore()
	if err != nil {
		return nil, fmt.Errorf("building action store: %w", err)
	}
	queue := sched.NewQueue(actionStore)

	nats, err := cfg.Nats.BuildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("building nats server: %w", err)
	}
	pub, err := messaging.NewEventPublisher(nats)
	if err != nil {
		return nil, fmt.Errorf("building event publisher: %w", err)
	}

	encounters := encounter.NewManager(world, queue, pub, nil)
	offlineRes := offline.NewResolver(world, queue, pub, nil)
	builds := projects.NewManager(world, queue, pub)
	fleet := projects.NewFleet(world, queue, pub)
	fleet.SetArrivalHook(offlineRes.OnArrival)

	worldClock := clock.New(world, queue, pressure.NewModel(settings, pub), pub, time.Now())
	worldClock.Register(sched.KindDecisionExpiry, encounters.OnExpiry)
	worldClock.Register(sched.KindOfflineResolution, offlineRes.OnResolution)
	worldClock.Register(sched.KindConstructionComplete, builds.OnComplete)
	worldClock.Register(sched.KindVehicleArrival, fleet.OnArrival)

	dispatcher := commands.NewDispatcher(world, encounters, offlineRes, builds, fleet, worldClock, pub)

	return service.WorkerList{
		"nats":     nats,
		"clock":    clock.NewDriver(worldClock, clock.WithTickLength(settings.Scaled(settings.WorldTick))),
		"commands": commands.NewSubscriber(dispatcher, nats),
	}, nil
}
