package game

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestBuilding_Validate(t *testing.T) {
	tests := map[string]struct {
		building *Building
		expErr   bool
	}{
		"valid two floor building": {
			building: &Building{
				ID:     "mall",
				Name:   "Shopping Mall",
				Region: "urban",
				Floors: []*Floor{{Index: 1}, {Index: 2}},
			},
		},
		"missing id": {
			building: &Building{
				Name:   "Shopping Mall",
				Region: "urban",
				Floors: []*Floor{{Index: 1}},
			},
			expErr: true,
		},
		"no floors": {
			building: &Building{
				ID:     "mall",
				Name:   "Shopping Mall",
				Region: "urban",
			},
			expErr: true,
		},
		"floors out of order": {
			building: &Building{
				ID:     "mall",
				Name:   "Shopping Mall",
				Region: "urban",
				Floors: []*Floor{{Index: 1}, {Index: 3}},
			},
			expErr: true,
		},
		"floors not one based": {
			building: &Building{
				ID:     "mall",
				Name:   "Shopping Mall",
				Region: "urban",
				Floors: []*Floor{{Index: 0}, {Index: 1}},
			},
			expErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.building.Validate()
			if tt.expErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tt.expErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestFloor_MarkCleared(t *testing.T) {
	f := &Floor{Index: 1}
	testutil.AssertEqual(t, "value", false, f.Cleared)

	f.MarkCleared()
	testutil.AssertEqual(t, "value", true, f.Cleared)

	// Clearing again must not flip the flag back.
	f.MarkCleared()
	testutil.AssertEqual(t, "value", true, f.Cleared)
}

func TestFloorDifficulty(t *testing.T) {
	tests := map[string]struct {
		floor  int
		danger int
		exp    int
	}{
		"ground floor low danger": {floor: 1, danger: 2, exp: 2},
		"top floor high danger":   {floor: 5, danger: 8, exp: 40},
		"zero danger":             {floor: 3, danger: 0, exp: 0},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "value", tt.exp, FloorDifficulty(tt.floor, tt.danger))
		})
	}
}
