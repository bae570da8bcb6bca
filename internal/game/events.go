package game

import "time"

// Event is a semantic world event. The core emits these; an external
// notification layer renders them into user-facing messages.
type Event interface {
	EventKind() string
}

// Publisher delivers events to whoever is listening. Implementations must not
// block the caller; a failed delivery is the sink's problem, never the
// simulation's.
type Publisher interface {
	Publish(Event)
}

type DayPhaseChanged struct {
	Phase DayPhase
}

func (DayPhaseChanged) EventKind() string { return "day_phase_changed" }

type ZombiesSpawned struct {
	Region string
	Count  int
	Total  int
}

func (ZombiesSpawned) EventKind() string { return "zombies_spawned" }

type EncounterOpened struct {
	Player   string
	Building string
	Floor    int
	Deadline time.Time
}

func (EncounterOpened) EventKind() string { return "encounter_opened" }

type FloorCleared struct {
	Player   string
	Building string
	Floor    int
	Loot     map[string]int
}

func (FloorCleared) EventKind() string { return "floor_cleared" }

type PlayerFled struct {
	Player   string
	Building string
	Floor    int
}

func (PlayerFled) EventKind() string { return "player_fled" }

type PlayerDown struct {
	Player string
	Region string
	Cause  string
}

func (PlayerDown) EventKind() string { return "player_down" }

type OfflineModeResolved struct {
	Player  string
	Mode    OfflineMode
	Success bool
	Loot    map[string]int
}

func (OfflineModeResolved) EventKind() string { return "offline_mode_resolved" }

type AmbushTriggered struct {
	Ambusher string
	Target   string
	Region   string
	Won      bool
}

func (AmbushTriggered) EventKind() string { return "ambush_triggered" }

// RadioBroadcast is an anonymous message on a shared frequency. Listeners are
// resolved at send time so the notification layer needs no world access.
type RadioBroadcast struct {
	Freq      int
	Message   string
	Listeners []string
}

func (RadioBroadcast) EventKind() string { return "radio_broadcast" }

type ConstructionCompleted struct {
	Owner     string
	Region    string
	Structure string
}

func (ConstructionCompleted) EventKind() string { return "construction_completed" }

type VehicleArrived struct {
	Owner   string
	Vehicle string
	Region  string
}

func (VehicleArrived) EventKind() string { return "vehicle_arrived" }
