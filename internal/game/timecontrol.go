package game

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const DefaultTimeControl = "5+0"

// TimeControl is a parsed clock setting such as "3+2" or "90/40+30".
// MovesPerPeriod is informational; the clock never adds time per period.
type TimeControl struct {
	BaseSeconds      int    `json:"base_seconds"`
	IncrementSeconds int    `json:"increment_seconds"`
	MovesPerPeriod   int    `json:"moves_per_period,omitempty"`
	Label            string `json:"label"`
}

// ParseTimeControl reads "M+S" or "M/N+S" where M is minutes (fractions
// allowed, "0.5+0" is thirty seconds), N moves per period and S the
// increment in seconds. An empty label is DefaultTimeControl.
func ParseTimeControl(label string) (TimeControl, error) {
	label = strings.ReplaceAll(strings.TrimSpace(label), " ", "")
	if label == "" {
		label = DefaultTimeControl
	}

	base, inc, ok := strings.Cut(label, "+")
	if !ok {
		return TimeControl{}, fmt.Errorf("%w: %q", ErrInvalidTimeControl, label)
	}

	tc := TimeControl{Label: label}

	minutesText, movesText, hasMoves := strings.Cut(base, "/")
	if hasMoves {
		moves, err := strconv.Atoi(movesText)
		if err != nil || moves <= 0 {
			return TimeControl{}, fmt.Errorf("%w: %q", ErrInvalidTimeControl, label)
		}
		tc.MovesPerPeriod = moves
	}

	minutes, err := strconv.ParseFloat(minutesText, 64)
	if err != nil || minutes <= 0 || math.IsInf(minutes, 0) || math.IsNaN(minutes) {
		return TimeControl{}, fmt.Errorf("%w: %q", ErrInvalidTimeControl, label)
	}
	tc.BaseSeconds = int(math.Round(minutes * 60))
	if tc.BaseSeconds <= 0 {
		return TimeControl{}, fmt.Errorf("%w: %q", ErrInvalidTimeControl, label)
	}

	increment, err := strconv.Atoi(inc)
	if err != nil || increment < 0 {
		return TimeControl{}, fmt.Errorf("%w: %q", ErrInvalidTimeControl, label)
	}
	tc.IncrementSeconds = increment

	return tc, nil
}

func (tc TimeControl) String() string {
	return tc.Label
}
