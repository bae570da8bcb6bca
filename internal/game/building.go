package game

import (
	"fmt"
	"sync"
)

// Floor is one level of a building. Cleared is monotonic: once true it stays
// true until a world reset.
type Floor struct {
	Index     int    `json:"index"` // 1-based
	Cleared   bool   `json:"cleared"`
	LootTable string `json:"loot_table"`
}

// MarkCleared flips the cleared flag. There is deliberately no way to unset it.
func (f *Floor) MarkCleared() {
	f.Cleared = true
}

// Building is an enterable structure with an ordered list of floors.
type Building struct {
	mu sync.Mutex

	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Region string   `json:"region"`
	Floors []*Floor `json:"floors"`
}

func (b *Building) Validate() error {
	if b.ID == "" {
		return fmt.Errorf("building id is required")
	}
	if b.Region == "" {
		return fmt.Errorf("building region is required")
	}
	if len(b.Floors) == 0 {
		return fmt.Errorf("building needs at least one floor")
	}
	for i, f := range b.Floors {
		if f.Index != i+1 {
			return fmt.Errorf("floor %d has index %d, floors must be ordered from 1", i, f.Index)
		}
	}
	return nil
}

// Floor returns the floor with the given 1-based index, or nil.
func (b *Building) Floor(n int) *Floor {
	if n < 1 || n > len(b.Floors) {
		return nil
	}
	return b.Floors[n-1]
}

// FloorDifficulty derives the difficulty tier for a floor from its index and
// the owning region's danger level.
func FloorDifficulty(floorIndex, regionDanger int) int {
	if floorIndex < 1 {
		floorIndex = 1
	}
	return floorIndex * regionDanger
}
