package impedance

import "fmt"

// TripLengthRow is one row of a trip-length-frequency table.
type TripLengthRow struct {
	Minutes int
	Utility float64
}

// TripLengthUtility maps whole minutes of travel to a selection weight.
// Minutes outside [0, MaxMinute] have zero utility.
type TripLengthUtility struct {
	weights []float64
}

// NewTripLengthUtility builds the table from rows at 1-minute resolution.
// Rows above maxMinute are ignored; minutes without a row have zero utility.
func NewTripLengthUtility(rows []TripLengthRow, maxMinute int) (*TripLengthUtility, error) {
	if maxMinute < 0 {
		return nil, fmt.Errorf("trip length: max minute must be >= 0, got %d", maxMinute)
	}
	weights := make([]float64, maxMinute+1)
	for i, row := range rows {
		if row.Minutes < 0 {
			return nil, fmt.Errorf("trip length row %d: minutes must be >= 0, got %d", i, row.Minutes)
		}
		if row.Utility < 0 {
			return nil, fmt.Errorf("trip length row %d: utility must be >= 0, got %f", i, row.Utility)
		}
		if row.Minutes > maxMinute {
			continue
		}
		weights[row.Minutes] = row.Utility
	}
	return &TripLengthUtility{weights: weights}, nil
}

// At returns the utility of a trip of the given length in minutes.
func (u *TripLengthUtility) At(minutes int) float64 {
	if minutes < 0 || minutes >= len(u.weights) {
		return 0
	}
	return u.weights[minutes]
}

// MaxMinute returns the longest tabulated trip length.
func (u *TripLengthUtility) MaxMinute() int {
	return len(u.weights) - 1
}
