package command

import (
	"github.com/pixil98/go-errors"
)

type Config struct {
	Game    GameConfig    `json:"game"`
	Storage StorageConfig `json:"storage"`
	Nats    NatsConfig    `json:"nats"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	el.Add(c.Game.validate())
	el.Add(c.Storage.validate())
	el.Add(c.Nats.validate())

	return el.Err()
}
