package clock

import (
	"context"
	"time"
)

const DefaultTickLength = 30 * time.Second

// Driver ticks the clock at the world-tick cadence. It satisfies the service
// worker contract and stops cleanly with its context.
type Driver struct {
	clock      *Clock
	tickLength time.Duration
}

type DriverOpt func(*Driver)

// WithTickLength overrides the cadence; the caller passes the scaled
// world-tick interval here.
func WithTickLength(d time.Duration) DriverOpt {
	return func(dr *Driver) {
		dr.tickLength = d
	}
}

func NewDriver(c *Clock, opts ...DriverOpt) *Driver {
	d := &Driver{
		clock:      c,
		tickLength: DefaultTickLength,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Driver) Start(ctx context.Context) error {
	ticker := time.NewTicker(d.tickLength)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			d.clock.Advance(now)
		}
	}
}
