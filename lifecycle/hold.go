package lifecycle

import (
	"fmt"
	"math"
	"time"

	"github.com/agencydesk/lifeline"
)

// Preset hold lengths an administrator may pick without naming an explicit
// end timestamp.
const (
	MinPresetHoldDays = 1
	MaxPresetHoldDays = 3
)

// A HoldWindow describes how long an account should be held:
// either a preset day count or an explicit end timestamp, never both.
type HoldWindow struct {
	days  int
	until time.Time
}

// HoldFor builds a HoldWindow lasting the preset number of calendar days.
func HoldFor(days int) HoldWindow { return HoldWindow{days: days} }

// HoldUntil builds a HoldWindow ending at the explicit timestamp ts.
func HoldUntil(ts time.Time) HoldWindow { return HoldWindow{until: ts} }

// schedule computes the hold triple from the window relative to now.
//
// With a preset day count, the hold ends exactly that many calendar days from
// now. With an explicit timestamp, the day count derives from the remaining
// duration with fractional days rounding up, so a hold ending 30 minutes from
// now counts as 1 day and one ending in 25 hours counts as 2.
func (w HoldWindow) schedule(now time.Time) (days int, start, end time.Time, err error) {
	hasDays := w.days != 0
	hasUntil := !w.until.IsZero()

	switch {
	case hasDays && hasUntil:
		err = fmt.Errorf("%w: both day count and end timestamp supplied", lifeline.ErrInvalidHoldWindow)
	case !hasDays && !hasUntil:
		err = fmt.Errorf("%w: neither day count nor end timestamp supplied", lifeline.ErrInvalidHoldWindow)
	case hasDays && (w.days < MinPresetHoldDays || w.days > MaxPresetHoldDays):
		err = fmt.Errorf("%w: preset day count must be between %d and %d, got %d",
			lifeline.ErrInvalidHoldWindow, MinPresetHoldDays, MaxPresetHoldDays, w.days)
	case hasUntil && !w.until.After(now):
		err = fmt.Errorf("%w: end timestamp %s is not in the future", lifeline.ErrInvalidHoldWindow, w.until)
	}
	if err != nil {
		return 0, time.Time{}, time.Time{}, err
	}

	start = now
	if hasDays {
		return w.days, start, now.AddDate(0, 0, w.days), nil
	}

	days = int(math.Ceil(w.until.Sub(now).Hours() / 24))
	return days, start, w.until, nil
}
