package game

import (
	"sort"
	"sync"

	"github.com/pixil98/go-outbreak/internal/storage"
)

// Dictionary bundles the persistent stores for every world record type.
type Dictionary struct {
	Players   storage.Storer[*Player]
	Regions   storage.Storer[*Region]
	Buildings storage.Storer[*Building]
	Vehicles  storage.Storer[*Vehicle]
	Projects  storage.Storer[*ConstructionProject]
}

// storeRetries bounds command-path write retries against a flaky store.
const storeRetries = 3

func saveRetry[T storage.ValidatingSpec](st storage.Storer[T], id string, v T, op string) error {
	var err error
	for range storeRetries {
		if err = st.Save(id, v); err == nil {
			return nil
		}
	}
	return &StoreError{Op: op, Err: err}
}

// WorldState is the single source of truth for all mutable game state. Both
// the command path and the world clock mutate it, so every entity mutation
// happens under that entity's lock, taken through the With* helpers. The lock
// order is fixed: vehicle before player before region before building, and
// two players in sorted id order. No resolver may take locks in any other
// order.
type WorldState struct {
	mu       sync.RWMutex
	dict     *Dictionary
	settings *Settings

	players   map[string]*Player
	regions   map[string]*Region
	buildings map[string]*Building
	vehicles  map[string]*Vehicle
	projects  map[string]*ConstructionProject

	// encounters holds the live encounter per player id. Encounters are
	// ephemeral: they are never persisted and die with their player.
	encounters map[string]*Encounter
}

// NewWorldState loads every record from the dictionary into memory.
func NewWorldState(settings *Settings, dict *Dictionary) *WorldState {
	w := &WorldState{
		dict:       dict,
		settings:   settings,
		players:    dict.Players.GetAll(),
		regions:    dict.Regions.GetAll(),
		buildings:  dict.Buildings.GetAll(),
		vehicles:   dict.Vehicles.GetAll(),
		projects:   dict.Projects.GetAll(),
		encounters: map[string]*Encounter{},
	}
	return w
}

func (w *WorldState) Settings() *Settings {
	return w.settings
}

// --- lookups ---

func (w *WorldState) Player(id string) *Player {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.players[id]
}

func (w *WorldState) Region(id string) *Region {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.regions[id]
}

func (w *WorldState) Building(id string) *Building {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.buildings[id]
}

func (w *WorldState) Vehicle(id string) *Vehicle {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.vehicles[id]
}

func (w *WorldState) Project(id string) *ConstructionProject {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.projects[id]
}

// Regions returns a snapshot of all regions.
func (w *WorldState) Regions() []*Region {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]*Region, 0, len(w.regions))
	for _, r := range w.regions {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// PlayersIn returns the players currently positioned in a region. Position
// is owned by each player's lock, not the world lock, so membership is read
// player by player after the snapshot.
func (w *WorldState) PlayersIn(regionID string) []*Player {
	w.mu.RLock()
	all := make([]*Player, 0, len(w.players))
	for _, p := range w.players {
		all = append(all, p)
	}
	w.mu.RUnlock()

	var out []*Player
	for _, p := range all {
		p.mu.Lock()
		in := p.Region == regionID
		p.mu.Unlock()
		if in {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// TunedTo returns the ids of players listening on a radio frequency,
// excluding exceptID. Like position, the tuned frequency is owned by each
// player's lock.
func (w *WorldState) TunedTo(freq int, exceptID string) []string {
	w.mu.RLock()
	all := make([]*Player, 0, len(w.players))
	for _, p := range w.players {
		all = append(all, p)
	}
	w.mu.RUnlock()

	var out []string
	for _, p := range all {
		if p.ID == exceptID {
			continue
		}
		p.mu.Lock()
		on := !p.Down && p.RadioFreq == freq
		p.mu.Unlock()
		if on {
			out = append(out, p.ID)
		}
	}
	sort.Strings(out)
	return out
}

// BuildingsIn returns the buildings located in a region.
func (w *WorldState) BuildingsIn(regionID string) []*Building {
	w.mu.RLock()
	defer w.mu.RUnlock()
	var out []*Building
	for _, b := range w.buildings {
		if b.Region == regionID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// VehicleOf returns the first vehicle owned by the player, or nil.
func (w *WorldState) VehicleOf(playerID string) *Vehicle {
	w.mu.RLock()
	defer w.mu.RUnlock()
	var out *Vehicle
	for _, v := range w.vehicles {
		if v.Owner == playerID && (out == nil || v.ID < out.ID) {
			out = v
		}
	}
	return out
}

// --- membership ---

func (w *WorldState) AddPlayer(p *Player) error {
	w.mu.Lock()
	if _, exists := w.players[p.ID]; exists {
		w.mu.Unlock()
		return NewConflictError("player %s already exists", p.ID)
	}
	w.players[p.ID] = p
	w.mu.Unlock()

	return saveRetry(w.dict.Players, p.ID, p, "add player")
}

// RemovePlayer deletes a player and their ephemeral state. The caller is
// responsible for cascade-cancelling the player's pending actions.
func (w *WorldState) RemovePlayer(id string) (*Player, error) {
	w.mu.Lock()
	p, exists := w.players[id]
	if !exists {
		w.mu.Unlock()
		return nil, NewValidationError("unknown player %s", id)
	}
	delete(w.players, id)
	delete(w.encounters, id)
	w.mu.Unlock()

	if err := w.dict.Players.Delete(id); err != nil {
		return p, &StoreError{Op: "remove player", Err: err}
	}
	return p, nil
}

func (w *WorldState) AddRegion(r *Region) error {
	w.mu.Lock()
	w.regions[r.ID] = r
	w.mu.Unlock()
	return saveRetry(w.dict.Regions, r.ID, r, "add region")
}

func (w *WorldState) AddBuilding(b *Building) error {
	w.mu.Lock()
	w.buildings[b.ID] = b
	w.mu.Unlock()
	return saveRetry(w.dict.Buildings, b.ID, b, "add building")
}

func (w *WorldState) AddVehicle(v *Vehicle) error {
	w.mu.Lock()
	w.vehicles[v.ID] = v
	w.mu.Unlock()
	return saveRetry(w.dict.Vehicles, v.ID, v, "add vehicle")
}

func (w *WorldState) AddProject(c *ConstructionProject) error {
	w.mu.Lock()
	w.projects[c.ID] = c
	w.mu.Unlock()
	return saveRetry(w.dict.Projects, c.ID, c, "add project")
}

func (w *WorldState) RemoveProject(id string) error {
	w.mu.Lock()
	delete(w.projects, id)
	w.mu.Unlock()
	if err := w.dict.Projects.Delete(id); err != nil {
		return &StoreError{Op: "remove project", Err: err}
	}
	return nil
}

// --- persistence of mutated entities ---

func (w *WorldState) SavePlayer(p *Player) error {
	return saveRetry(w.dict.Players, p.ID, p, "save player")
}

func (w *WorldState) SaveRegion(r *Region) error {
	return saveRetry(w.dict.Regions, r.ID, r, "save region")
}

func (w *WorldState) SaveBuilding(b *Building) error {
	return saveRetry(w.dict.Buildings, b.ID, b, "save building")
}

func (w *WorldState) SaveVehicle(v *Vehicle) error {
	return saveRetry(w.dict.Vehicles, v.ID, v, "save vehicle")
}

// --- entity-scoped locking ---

// WithPlayer runs fn while holding the player's lock.
func (w *WorldState) WithPlayer(id string, fn func(*Player) error) error {
	p := w.Player(id)
	if p == nil {
		return NewValidationError("unknown player %s", id)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return fn(p)
}

// WithPlayerRegion runs fn holding the player's lock and then the lock of the
// region the player is in.
func (w *WorldState) WithPlayerRegion(id string, fn func(*Player, *Region) error) error {
	return w.WithPlayer(id, func(p *Player) error {
		r := w.Region(p.Region)
		if r == nil {
			return NewInvariantError("player %s is in unknown region %s", p.ID, p.Region)
		}
		r.mu.Lock()
		defer r.mu.Unlock()
		return fn(p, r)
	})
}

// WithPlayerSite runs fn holding the player's lock, their region's lock, and
// the lock of the building they are inside. The building may be nil when the
// player is at street level.
func (w *WorldState) WithPlayerSite(id string, fn func(*Player, *Region, *Building) error) error {
	return w.WithPlayerRegion(id, func(p *Player, r *Region) error {
		var b *Building
		if p.Building != "" {
			b = w.Building(p.Building)
			if b == nil {
				return NewInvariantError("player %s is in unknown building %s", p.ID, p.Building)
			}
			b.mu.Lock()
			defer b.mu.Unlock()
		}
		return fn(p, r, b)
	})
}

// WithTwoPlayers runs fn holding both players' locks, acquired in sorted id
// order so simultaneous cross-player actions cannot deadlock. fn receives the
// players in the order the ids were passed.
func (w *WorldState) WithTwoPlayers(aID, bID string, fn func(a, b *Player) error) error {
	if aID == bID {
		return NewValidationError("player %s cannot target themselves", aID)
	}
	a, b := w.Player(aID), w.Player(bID)
	if a == nil {
		return NewValidationError("unknown player %s", aID)
	}
	if b == nil {
		return NewValidationError("unknown player %s", bID)
	}

	first, second := a, b
	if bID < aID {
		first, second = b, a
	}
	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()
	return fn(a, b)
}

// WithBuilding runs fn while holding the building's lock. When combined with
// other helpers it must be the innermost acquisition.
func (w *WorldState) WithBuilding(id string, fn func(*Building) error) error {
	b := w.Building(id)
	if b == nil {
		return NewValidationError("unknown building %s", id)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return fn(b)
}

// WithRegion runs fn while holding the region's lock.
func (w *WorldState) WithRegion(id string, fn func(*Region) error) error {
	r := w.Region(id)
	if r == nil {
		return NewValidationError("unknown region %s", id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(r)
}

// WithVehicle runs fn while holding the vehicle's lock.
func (w *WorldState) WithVehicle(id string, fn func(*Vehicle) error) error {
	v := w.Vehicle(id)
	if v == nil {
		return NewValidationError("unknown vehicle %s", id)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return fn(v)
}

// --- encounters ---

// Encounter returns the player's live encounter, or nil.
func (w *WorldState) Encounter(playerID string) *Encounter {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.encounters[playerID]
}

// SetEncounter installs a new encounter for a player. Replacing a
// non-terminal encounter is an invariant violation, not a silent overwrite;
// callers must check for an open encounter first and report a conflict.
func (w *WorldState) SetEncounter(e *Encounter) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if cur, ok := w.encounters[e.PlayerID]; ok && !cur.State.Terminal() {
		return NewInvariantError("player %s already has a live encounter %s", e.PlayerID, cur.ID)
	}
	w.encounters[e.PlayerID] = e
	return nil
}

// ClearEncounter drops a player's encounter record.
func (w *WorldState) ClearEncounter(playerID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.encounters, playerID)
}
