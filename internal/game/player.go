package game

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Class is a closed set of character classes. Class behavior is a fixed bonus
// table, not open extension.
type Class string

const (
	ClassScavenger Class = "scavenger"
	ClassMechanic  Class = "mechanic"
	ClassSoldier   Class = "soldier"
)

// ClassBonus is the static bonus table entry for a class.
type ClassBonus struct {
	DamageBonus     float64 // fraction added to weapon damage
	InitiativeBonus int
	StealthBonus    int
	LootBonus       float64 // fraction added to loot yield
	BuildSpeedBonus float64 // fraction shaved off construction time
	HealthBonus     int
}

var classBonuses = map[Class]ClassBonus{
	ClassScavenger: {LootBonus: 0.10, StealthBonus: 10},
	ClassMechanic:  {BuildSpeedBonus: 0.15, InitiativeBonus: 1},
	ClassSoldier:   {DamageBonus: 0.10, HealthBonus: 10, InitiativeBonus: 2},
}

func (c Class) Bonus() ClassBonus {
	return classBonuses[c]
}

var titleCaser = cases.Title(language.English)

// Display returns the class name as shown to players.
func (c Class) Display() string {
	return titleCaser.String(string(c))
}

func ParseClass(s string) (Class, error) {
	c := Class(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := classBonuses[c]; !ok {
		return "", NewValidationError("unknown class %q, pick one of scavenger, mechanic, soldier", s)
	}
	return c, nil
}

// OfflineMode is a standing order evaluated while the player is idle.
type OfflineMode string

const (
	ModeNone     OfflineMode = "none"
	ModeAmbush   OfflineMode = "ambush"
	ModeScavenge OfflineMode = "scavenge"
)

func ParseOfflineMode(s string) (OfflineMode, error) {
	m := OfflineMode(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case ModeNone, ModeAmbush, ModeScavenge:
		return m, nil
	}
	return "", NewValidationError("unknown mode %q, pick one of none, ambush, scavenge", s)
}

// Stats are the fixed combat-relevant attributes of a player.
type Stats struct {
	Speed        int `json:"speed"`
	Stealth      int `json:"stealth"`
	Intelligence int `json:"intelligence"`
	Armor        int `json:"armor"`
}

// Weapon is the player's equipped weapon. Ammo of -1 means the weapon is not
// ammo gated (melee).
type Weapon struct {
	Name   string `json:"name"`
	Damage int    `json:"damage"`
	Ammo   int    `json:"ammo"`
}

// Gated reports whether the weapon consumes ammo per hit.
func (w *Weapon) Gated() bool {
	return w.Ammo >= 0
}

const UnarmedDamage = 5

// Player is a long-lived world aggregate. All mutation happens under the
// player's lock, acquired through WorldState helpers.
type Player struct {
	mu sync.Mutex

	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Class     Class          `json:"class"`
	Health    int            `json:"health"`
	MaxHealth int            `json:"max_health"`
	Stats     Stats          `json:"stats"`
	Weapon    Weapon         `json:"weapon"`
	Inventory map[string]int `json:"inventory"`

	// Position. Building empty means street level; Floor is 1-based.
	Region   string `json:"region"`
	Building string `json:"building,omitempty"`
	Floor    int    `json:"floor,omitempty"`

	Mode      OfflineMode `json:"mode"`
	RadioFreq int         `json:"radio_freq"`
	Down      bool        `json:"down"`

	// OfflineActionID references the scheduled OfflineResolution while a
	// mode is set.
	OfflineActionID string `json:"offline_action_id,omitempty"`
}

func NewPlayer(id, name string, class Class, region string) *Player {
	maxHP := 100 + class.Bonus().HealthBonus
	return &Player{
		ID:        id,
		Name:      name,
		Class:     class,
		Health:    maxHP,
		MaxHealth: maxHP,
		Stats:     Stats{Speed: 5, Stealth: 5},
		Weapon:    Weapon{Name: "crowbar", Damage: 10, Ammo: -1},
		Inventory: map[string]int{},
		Region:    region,
		Mode:      ModeNone,
	}
}

func (p *Player) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("player id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("player name is required")
	}
	if _, ok := classBonuses[p.Class]; !ok {
		return fmt.Errorf("unknown class %q", p.Class)
	}
	if p.Health < 0 || p.MaxHealth <= 0 || p.Health > p.MaxHealth {
		return fmt.Errorf("health %d out of range 0..%d", p.Health, p.MaxHealth)
	}
	if p.Region == "" {
		return fmt.Errorf("player region is required")
	}
	return nil
}

// AddItems credits loot into the inventory.
func (p *Player) AddItems(items map[string]int) {
	if p.Inventory == nil {
		p.Inventory = map[string]int{}
	}
	for item, n := range items {
		p.Inventory[item] += n
	}
}

// SpendItems removes the given items, failing without partial deduction if
// any count is short.
func (p *Player) SpendItems(items map[string]int) error {
	for item, n := range items {
		if p.Inventory[item] < n {
			return NewValidationError("not enough %s: need %d, have %d", item, n, p.Inventory[item])
		}
	}
	for item, n := range items {
		p.Inventory[item] -= n
		if p.Inventory[item] == 0 {
			delete(p.Inventory, item)
		}
	}
	return nil
}

// LeaveBuilding puts the player back at street level in their region.
func (p *Player) LeaveBuilding() {
	p.Building = ""
	p.Floor = 0
}
