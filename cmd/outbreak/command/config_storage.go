package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-outbreak/internal/game"
	"github.com/pixil98/go-outbreak/internal/sched"
	"github.com/pixil98/go-outbreak/internal/storage"
)

type StorageConfig struct {
	Players   AssetConfig[*game.Player]              `json:"players"`
	Regions   AssetConfig[*game.Region]              `json:"regions"`
	Buildings AssetConfig[*game.Building]            `json:"buildings"`
	Vehicles  AssetConfig[*game.Vehicle]             `json:"vehicles"`
	Projects  AssetConfig[*game.ConstructionProject] `json:"projects"`
	Actions   AssetConfig[*sched.Action]             `json:"actions"`
}

func (c *StorageConfig) BuildDictionary() (*game.Dictionary, error) {
	players, err := c.Players.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating player store: %w", err)
	}
	regions, err := c.Regions.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating region store: %w", err)
	}
	buildings, err := c.Buildings.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating building store: %w", err)
	}
	vehicles, err := c.Vehicles.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating vehicle store: %w", err)
	}
	projects, err := c.Projects.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating project store: %w", err)
	}

	return &game.Dictionary{
		Players:   players,
		Regions:   regions,
		Buildings: buildings,
		Vehicles:  vehicles,
		Projects:  projects,
	}, nil
}

// BuildActionStore opens the durable backing for the pending action queue.
func (c *StorageConfig) BuildActionStore() (*storage.FileStore[*sched.Action], error) {
	return c.Actions.BuildFileStore()
}

func (c *StorageConfig) validate() error {
	el := errors.NewErrorList()
	el.Add(c.Players.Validate("players"))
	el.Add(c.Regions.Validate("regions"))
	el.Add(c.Buildings.Validate("buildings"))
	el.Add(c.Vehicles.Validate("vehicles"))
	el.Add(c.Projects.Validate("projects"))
	el.Add(c.Actions.Validate("actions"))
	return el.Err()
}

type AssetConfig[T storage.ValidatingSpec] struct {
	Path string `json:"path"`
}

func (c *AssetConfig[T]) Validate(name string) error {
	if c.Path == "" {
		return fmt.Errorf("%s: path is required", name)
	}
	_, err := os.Stat(c.Path)
	if err != nil {
		return fmt.Errorf("%s: invalid path %q: %w", name, c.Path, err)
	}

	return nil
}

func (c *AssetConfig[T]) BuildFileStore() (*storage.FileStore[T], error) {
	return storage.NewFileStore[T](c.Path)
}
