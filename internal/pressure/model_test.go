package pressure

import (
	"testing"

	"github.com/pixil98/go-outbreak/internal/game"
	"github.com/pixil98/go-testutil"
)

type mockPublisher struct {
	events []game.Event
}

func (m *mockPublisher) Publish(e game.Event) {
	m.events = append(m.events, e)
}

func TestModel_Tick(t *testing.T) {
	tests := map[string]struct {
		region     *game.Region
		phase      game.DayPhase
		expZombies int
		expNoise   float64
		expEvents  int
	}{
		"noise drives spawns": {
			// 3 danger x 10 noise x 0.1 rate = 3 spawns.
			region:     &game.Region{ID: "urban", Danger: 3, Noise: 10, ZombieCap: 20},
			phase:      game.PhaseDay,
			expZombies: 3,
			expNoise:   8,
			expEvents:  1,
		},
		"night spawns harder": {
			// 3 x 10 x 0.1 x 1.5 = 4.5, truncated to 4.
			region:     &game.Region{ID: "urban", Danger: 3, Noise: 10, ZombieCap: 20},
			phase:      game.PhaseNight,
			expZombies: 4,
			expNoise:   8,
			expEvents:  1,
		},
		"cap limits spawns": {
			region:     &game.Region{ID: "downtown", Danger: 9, Noise: 50, Zombies: 18, ZombieCap: 20},
			phase:      game.PhaseDay,
			expZombies: 20,
			expNoise:   40,
			expEvents:  1,
		},
		"full region spawns nothing": {
			region:     &game.Region{ID: "downtown", Danger: 9, Noise: 50, Zombies: 20, ZombieCap: 20},
			phase:      game.PhaseDay,
			expZombies: 20,
			expNoise:   40,
			expEvents:  0,
		},
		"quiet region spawns nothing": {
			region:     &game.Region{ID: "forest", Danger: 5, Noise: 0, ZombieCap: 20},
			phase:      game.PhaseDay,
			expZombies: 0,
			expNoise:   0,
			expEvents:  0,
		},
		"tiny noise snaps to zero": {
			region:     &game.Region{ID: "forest", Danger: 1, Noise: 0.012, ZombieCap: 20},
			phase:      game.PhaseDay,
			expZombies: 0,
			expNoise:   0,
			expEvents:  0,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			pub := &mockPublisher{}
			m := NewModel(game.DefaultSettings(), pub)

			changed := m.Tick(tt.region, 1, tt.phase)

			testutil.AssertEqual(t, "value", true, changed)
			testutil.AssertEqual(t, "value", tt.expZombies, tt.region.Zombies)
			testutil.AssertEqual(t, "value", tt.expNoise, tt.region.Noise)
			testutil.AssertEqual(t, "value", tt.expEvents, len(pub.events))
			testutil.AssertEqual(t, "value", int64(1), tt.region.LastPressureTick)
		})
	}
}

func TestModel_TickIdempotent(t *testing.T) {
	r := &game.Region{ID: "urban", Danger: 3, Noise: 10, ZombieCap: 20}
	m := NewModel(game.DefaultSettings(), nil)

	testutil.AssertEqual(t, "value", true, m.Tick(r, 5, game.PhaseDay))
	zombies, noise := r.Zombies, r.Noise

	// Same tick index again changes nothing.
	testutil.AssertEqual(t, "value", false, m.Tick(r, 5, game.PhaseDay))
	testutil.AssertEqual(t, "value", zombies, r.Zombies)
	testutil.AssertEqual(t, "value", noise, r.Noise)
}

func TestModel_Convergence(t *testing.T) {
	// With no fresh noise, spawning stops as noise decays and the count
	// settles at or below the cap.
	r := &game.Region{ID: "urban", Danger: 3, Noise: 10, ZombieCap: 5}
	m := NewModel(game.DefaultSettings(), nil)

	for tick := int64(1); tick <= 40; tick++ {
		m.Tick(r, tick, game.PhaseDay)
	}

	if r.Zombies > r.ZombieCap {
		t.Errorf("zombies %d exceed cap %d", r.Zombies, r.ZombieCap)
	}
	testutil.AssertEqual(t, "value", 0.0, r.Noise)
	testutil.AssertEqual(t, "value", false, r.Active())
}

func TestModel_ClearsDangerDirty(t *testing.T) {
	r := &game.Region{ID: "urban", Danger: 2, ZombieCap: 20}
	r.SetDanger(6)
	testutil.AssertEqual(t, "value", true, r.Active())

	m := NewModel(game.DefaultSettings(), nil)
	m.Tick(r, 1, game.PhaseDay)

	testutil.AssertEqual(t, "value", false, r.Active())
}
