package earnings

import "time"

// Day and month keys are formatted so lexicographic order matches
// chronological order, which lets rollover detection be a string compare.
const (
	dayKeyLayout   = "2006-01-02"
	monthKeyLayout = "2006-01"
)

// boundaryLocation is the game's reset timezone. All players share one clock
// regardless of where their requests originate.
var boundaryLocation = mustLoadLocation()

func mustLoadLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// Containers without tzdata still get correct boundaries.
		return time.FixedZone("IST", 5*3600+1800)
	}
	return loc
}

// DayKey returns the IST calendar-day key for t.
func DayKey(t time.Time) string {
	return t.In(boundaryLocation).Format(dayKeyLayout)
}

// MonthKey returns the IST calendar-month key for t.
func MonthKey(t time.Time) string {
	return t.In(boundaryLocation).Format(monthKeyLayout)
}
