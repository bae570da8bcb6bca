package encounter

import (
	"errors"
	"testing"
	"time"

	"github.com/pixil98/go-outbreak/internal/game"
	"github.com/pixil98/go-outbreak/internal/sched"
	"github.com/pixil98/go-outbreak/internal/storage"
	"github.com/pixil98/go-testutil"
)

type mockStore[T storage.ValidatingSpec] struct {
	records map[string]T
}

func newMockStore[T storage.ValidatingSpec]() *mockStore[T] {
	return &mockStore[T]{records: map[string]T{}}
}

func (m *mockStore[T]) Save(id string, v T) error {
	m.records[id] = v
	return nil
}

func (m *mockStore[T]) Get(id string) T { return m.records[id] }

func (m *mockStore[T]) GetAll() map[string]T {
	out := map[string]T{}
	for id, v := range m.records {
		out[id] = v
	}
	return out
}

func (m *mockStore[T]) Delete(id string) error {
	delete(m.records, id)
	return nil
}

type mockPublisher struct {
	events []game.Event
}

func (m *mockPublisher) Publish(e game.Event) {
	m.events = append(m.events, e)
}

func (m *mockPublisher) kinds() []string {
	var out []string
	for _, e := range m.events {
		out = append(out, e.EventKind())
	}
	return out
}

type fixture struct {
	world *game.WorldState
	queue *sched.Queue
	pub   *mockPublisher
	mgr   *Manager
}

func newFixture(t *testing.T, danger int, players ...*game.Player) *fixture {
	t.Helper()

	playerStore := newMockStore[*game.Player]()
	for _, p := range players {
		playerStore.records[p.ID] = p
	}
	regionStore := newMockStore[*game.Region]()
	regionStore.records["urban"] = &game.Region{
		ID: "urban", Name: "Ruined City", Danger: danger, ZombieCap: 20,
		Resources: []string{"scrap"},
	}
	regionStore.records["forest"] = &game.Region{
		ID: "forest", Name: "Whispering Forest", ZombieCap: 10,
		Resources: []string{"wood"},
	}
	buildingStore := newMockStore[*game.Building]()
	buildingStore.records["mall"] = &game.Building{
		ID: "mall", Name: "Shopping Mall", Region: "urban",
		Floors: []*game.Floor{{Index: 1}, {Index: 2}},
	}

	dict := &game.Dictionary{
		Players:   playerStore,
		Regions:   regionStore,
		Buildings: buildingStore,
		Vehicles:  newMockStore[*game.Vehicle](),
		Projects:  newMockStore[*game.ConstructionProject](),
	}

	world := game.NewWorldState(game.DefaultSettings(), dict)
	queue := sched.NewQueue(newMockStore[*sched.Action]())
	pub := &mockPublisher{}

	return &fixture{
		world: world,
		queue: queue,
		pub:   pub,
		mgr:   NewManager(world, queue, pub, nil),
	}
}

func strongPlayer(id string) *game.Player {
	p := game.NewPlayer(id, "Rick", game.ClassSoldier, "urban")
	// Overwhelming damage so fights end in one hit no matter the rolls.
	p.Weapon = game.Weapon{Name: "rifle", Damage: 1000, Ammo: -1}
	p.Stats.Speed = 100
	return p
}

func TestManager_EnterFloor(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, 2, strongPlayer("p1"))

	enc, err := f.mgr.EnterFloor("p1", "mall", 1, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if enc == nil {
		t.Fatal("expected an encounter on an uncleared floor")
	}
	testutil.AssertEqual(t, "value", game.EncounterPresented, enc.State)
	testutil.AssertEqual(t, "value", 2, enc.Difficulty)
	testutil.AssertEqual(t, "value", now.Add(7*time.Second), enc.Deadline)
	testutil.AssertEqual(t, "value", 1, f.queue.Len())
	testutil.AssertEqual(t, "value", []string{"encounter_opened"}, f.pub.kinds())

	p := f.world.Player("p1")
	testutil.AssertEqual(t, "value", "mall", p.Building)
	testutil.AssertEqual(t, "value", 1, p.Floor)
}

func TestManager_EnterFloor_Validation(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := map[string]struct {
		building string
		floor    int
	}{
		"unknown building": {building: "bunker", floor: 1},
		"missing floor":    {building: "mall", floor: 9},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, 2, strongPlayer("p1"))
			_, err := f.mgr.EnterFloor("p1", tt.building, tt.floor, now)
			var verr *game.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			testutil.AssertEqual(t, "value", 0, f.queue.Len())
		})
	}
}

func TestManager_EnterFloor_SingleEncounter(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, 2, strongPlayer("p1"))

	if _, err := f.mgr.EnterFloor("p1", "mall", 1, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A second entry while the window is open must conflict, not replace.
	first := f.world.Encounter("p1")
	_, err := f.mgr.EnterFloor("p1", "mall", 2, now)
	var cerr *game.ConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	testutil.AssertEqual(t, "value", first.ID, f.world.Encounter("p1").ID)
	testutil.AssertEqual(t, "value", 1, f.queue.Len())
}

func TestManager_EnterFloor_ClearedFloorIsFree(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, 2, strongPlayer("p1"))
	f.world.Building("mall").Floors[0].MarkCleared()

	enc, err := f.mgr.EnterFloor("p1", "mall", 1, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if enc != nil {
		t.Fatal("cleared floor must not open an encounter")
	}
	testutil.AssertEqual(t, "value", 0, f.queue.Len())
}

func TestManager_Choose_Attack(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, 2, strongPlayer("p1"))

	if _, err := f.mgr.EnterFloor("p1", "mall", 1, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.mgr.Choose("p1", ChoiceAttack); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	enc := f.world.Encounter("p1")
	testutil.AssertEqual(t, "value", game.EncounterCleared, enc.State)
	testutil.AssertEqual(t, "value", true, f.world.Building("mall").Floors[0].Cleared)

	// The expiry was cancelled with the choice; nothing is left to fire.
	testutil.AssertEqual(t, "value", 0, f.queue.Len())

	// Combat made noise and loot landed in the inventory.
	p := f.world.Player("p1")
	if p.Inventory["scrap"] == 0 {
		t.Error("expected scrap loot from the cleared floor")
	}
	if f.world.Region("urban").Noise == 0 {
		t.Error("expected combat noise in the region")
	}
}

func TestManager_Choose_Sneak(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, 2, strongPlayer("p1"))

	if _, err := f.mgr.EnterFloor("p1", "mall", 1, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.mgr.Choose("p1", ChoiceSneak); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Whichever way the stealth roll went, the window is closed: the expiry
	// is cancelled and the encounter reached a terminal state exactly once.
	testutil.AssertEqual(t, "value", 0, f.queue.Len())
	enc := f.world.Encounter("p1")
	testutil.AssertEqual(t, "value", true, enc.State.Terminal())

	if enc.State == game.EncounterFled {
		// A successful sneak gives no floor credit and no loot.
		testutil.AssertEqual(t, "value", false, f.world.Building("mall").Floors[0].Cleared)
		testutil.AssertEqual(t, "value", "", f.world.Player("p1").Building)
	} else {
		// Spotted: the strong player still wins the escalated fight.
		testutil.AssertEqual(t, "value", game.EncounterCleared, enc.State)
	}
}

func TestManager_Choose_NoOpenEncounter(t *testing.T) {
	f := newFixture(t, 2, strongPlayer("p1"))

	err := f.mgr.Choose("p1", ChoiceAttack)
	var cerr *game.ConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
}

func TestManager_ClearedFlagIsMonotonic(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, 2, strongPlayer("p1"))

	if _, err := f.mgr.EnterFloor("p1", "mall", 1, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.mgr.Choose("p1", ChoiceAttack); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "value", true, f.world.Building("mall").Floors[0].Cleared)

	// Re-entering the cleared floor opens nothing and clears nothing.
	enc, err := f.mgr.EnterFloor("p1", "mall", 1, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if enc != nil {
		t.Fatal("cleared floor reopened an encounter")
	}
	testutil.AssertEqual(t, "value", true, f.world.Building("mall").Floors[0].Cleared)
}

func TestManager_OnExpiry_DefaultsToAttack(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, 2, strongPlayer("p1"))

	if _, err := f.mgr.EnterFloor("p1", "mall", 1, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	due := f.queue.Due(now.Add(10 * time.Second))
	testutil.AssertEqual(t, "value", 1, len(due))
	if err := f.mgr.OnExpiry(due[0]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The strong player wins the default attack, so the floor clears.
	testutil.AssertEqual(t, "value", game.EncounterCleared, f.world.Encounter("p1").State)
	testutil.AssertEqual(t, "value", true, f.world.Building("mall").Floors[0].Cleared)

	// A decision arriving after the expiry has nothing left to resolve.
	err := f.mgr.Choose("p1", ChoiceSneak)
	var cerr *game.ConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
}

func TestManager_OnExpiry_AfterChoiceIsNoOp(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, 2, strongPlayer("p1"))

	if _, err := f.mgr.EnterFloor("p1", "mall", 1, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	enc := f.world.Encounter("p1")

	// Choose first, then replay the expiry action as if the clock had
	// already pulled it when the choice landed.
	action := &sched.Action{
		ID:      enc.ExpiryActionID,
		Kind:    sched.KindDecisionExpiry,
		OwnerID: "p1",
		DueAt:   enc.Deadline,
	}
	stale := f.queue.Due(now.Add(10 * time.Second))
	testutil.AssertEqual(t, "value", 1, len(stale))
	action.Payload = stale[0].Payload

	if err := f.mgr.Choose("p1", ChoiceAttack); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	healthAfterChoice := f.world.Player("p1").Health

	if err := f.mgr.OnExpiry(action); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "value", healthAfterChoice, f.world.Player("p1").Health)
	testutil.AssertEqual(t, "value", game.EncounterCleared, f.world.Encounter("p1").State)
}

func TestManager_OnExpiry_ResumesAfterRestart(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, 2, strongPlayer("p1"))

	if _, err := f.mgr.EnterFloor("p1", "mall", 1, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	due := f.queue.Due(now.Add(10 * time.Second))
	testutil.AssertEqual(t, "value", 1, len(due))

	// Simulate a restart: the in-memory encounter is gone but the durable
	// action still resolves from its payload.
	f.world.ClearEncounter("p1")
	if err := f.mgr.OnExpiry(due[0]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "value", game.EncounterCleared, f.world.Encounter("p1").State)
	testutil.AssertEqual(t, "value", true, f.world.Building("mall").Floors[0].Cleared)
}

func TestManager_PlayerDown_Respawns(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	weak := game.NewPlayer("p1", "Rick", game.ClassScavenger, "urban")
	weak.Health = 1
	weak.Weapon = game.Weapon{Name: "twig", Damage: 1, Ammo: -1}
	weak.Stats.Speed = 0

	// High danger floors roll zombies a 1 health player cannot beat.
	f := newFixture(t, 50, weak)

	if _, err := f.mgr.EnterFloor("p1", "mall", 2, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.mgr.Choose("p1", ChoiceAttack); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "value", game.EncounterPlayerDown, f.world.Encounter("p1").State)

	p := f.world.Player("p1")
	testutil.AssertEqual(t, "value", "forest", p.Region)
	testutil.AssertEqual(t, "value", p.MaxHealth/2, p.Health)
	testutil.AssertEqual(t, "value", "", p.Building)
	testutil.AssertEqual(t, "value", false, f.world.Building("mall").Floors[1].Cleared)
}

func TestManager_PlayerDown_Permadeath(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	weak := game.NewPlayer("p1", "Rick", game.ClassScavenger, "urban")
	weak.Health = 1
	weak.Weapon = game.Weapon{Name: "twig", Damage: 1, Ammo: -1}
	weak.Stats.Speed = 0

	f := newFixture(t, 50, weak)
	f.world.Settings().DownPolicy = game.DownPermadeath

	if _, err := f.mgr.EnterFloor("p1", "mall", 2, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.mgr.Choose("p1", ChoiceAttack); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := f.world.Player("p1")
	testutil.AssertEqual(t, "value", true, p.Down)
	testutil.AssertEqual(t, "value", 0, p.Health)

	// A downed character cannot go back in.
	_, err := f.mgr.EnterFloor("p1", "mall", 1, now.Add(time.Minute))
	var cerr *game.ConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
}
