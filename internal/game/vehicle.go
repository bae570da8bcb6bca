package game

import (
	"fmt"
	"sync"
)

// DriveConditionThreshold is the minimum condition a vehicle needs to travel.
const DriveConditionThreshold = 40

// RepairPerKit is the condition restored by one repair kit.
const RepairPerKit = 20

// Vehicle is a drivable machine owned by a player.
type Vehicle struct {
	mu sync.Mutex

	ID        string `json:"id"`
	Type      string `json:"type"`
	Owner     string `json:"owner"`
	Region    string `json:"region"`
	Condition int    `json:"condition"` // 0-100
	Fuel      int    `json:"fuel"`
	FuelCap   int    `json:"fuel_cap"`
	Cargo     int    `json:"cargo"`

	// InTransit is set while a VehicleArrival action is outstanding.
	InTransit   bool   `json:"in_transit"`
	Destination string `json:"destination,omitempty"`
}

func (v *Vehicle) Validate() error {
	if v.ID == "" {
		return fmt.Errorf("vehicle id is required")
	}
	if v.Condition < 0 || v.Condition > 100 {
		return fmt.Errorf("condition %d out of range 0..100", v.Condition)
	}
	if v.Fuel < 0 || (v.FuelCap > 0 && v.Fuel > v.FuelCap) {
		return fmt.Errorf("fuel %d out of range 0..%d", v.Fuel, v.FuelCap)
	}
	return nil
}

// Repair applies n repair kits, capping condition at 100.
func (v *Vehicle) Repair(kits int) {
	v.Condition += kits * RepairPerKit
	if v.Condition > 100 {
		v.Condition = 100
	}
}
