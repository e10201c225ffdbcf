// internal/notifications/scheduler/quiethours.go
package scheduler

import (
	"strconv"
	"strings"
	"time"

	"github.com/andeslee444/Project-H-sub007/internal/models"
)

// adjustForQuietHours moves t out of the user's quiet-hours window. Start >
// end means the window wraps midnight. The adjustment rule: move to the next
// occurrence of the window's end time-of-day at or after t: same local day
// when end is still ahead, otherwise the next calendar day. This covers the
// wrap-midnight case uniformly: a late-evening t lands on tomorrow morning's
// end, an early-morning t lands on today's.
//
// Returns the adjusted time and whether an adjustment happened. A disabled,
// malformed, or zero-width window never adjusts.
func adjustForQuietHours(t time.Time, qh models.QuietHours, fallbackTimezone string) (time.Time, bool) {
	if !qh.Enabled {
		return t, false
	}

	startMin, ok := parseClock(qh.Start)
	if !ok {
		return t, false
	}
	endMin, ok := parseClock(qh.End)
	if !ok {
		return t, false
	}
	if startMin == endMin {
		return t, false
	}

	loc := loadLocation(qh.Timezone, fallbackTimezone)
	local := t.In(loc)
	tod := local.Hour()*60 + local.Minute()

	inWindow := false
	if startMin < endMin {
		inWindow = tod >= startMin && tod < endMin
	} else {
		// Wraps midnight, e.g. 22:00 to 07:00.
		inWindow = tod >= startMin || tod < endMin
	}
	if !inWindow {
		return t, false
	}

	adjusted := time.Date(local.Year(), local.Month(), local.Day(),
		endMin/60, endMin%60, 0, 0, loc)
	if !adjusted.After(local) {
		adjusted = adjusted.AddDate(0, 0, 1)
	}

	return adjusted.In(t.Location()), true
}

// parseClock parses "HH:MM" into minutes since midnight.
func parseClock(clock string) (int, bool) {
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}

func loadLocation(timezone, fallback string) *time.Location {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err == nil {
			return loc
		}
	}
	if fallback != "" {
		if loc, err := time.LoadLocation(fallback); err == nil {
			return loc
		}
	}
	return time.UTC
}
