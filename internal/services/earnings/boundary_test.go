package earnings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDayKey_MidnightIST(t *testing.T) {
	// 18:30 UTC is exactly midnight IST: the day rolls there, not at UTC
	// midnight.
	before := time.Date(2025, 3, 14, 18, 29, 59, 0, time.UTC)
	after := time.Date(2025, 3, 14, 18, 30, 0, 0, time.UTC)

	assert.Equal(t, "2025-03-14", DayKey(before))
	assert.Equal(t, "2025-03-15", DayKey(after))
}

func TestMonthKey_RollsAtISTMonthStart(t *testing.T) {
	// Still Feb 28 in UTC, already Mar 1 in IST.
	at := time.Date(2025, 2, 28, 19, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-03", MonthKey(at))
	assert.Equal(t, "2025-03-01", DayKey(at))
}

func TestKeys_LexicographicOrderIsChronological(t *testing.T) {
	older := time.Date(2025, 9, 30, 12, 0, 0, 0, boundaryLocation)
	newer := time.Date(2025, 10, 1, 12, 0, 0, 0, boundaryLocation)

	assert.Less(t, DayKey(older), DayKey(newer))
	assert.Less(t, MonthKey(older), MonthKey(newer))
}

func TestDayKey_LocalTimeInputNormalized(t *testing.T) {
	// A timestamp already in IST formats identically to its UTC equivalent.
	ist := time.Date(2025, 6, 1, 0, 30, 0, 0, boundaryLocation)
	assert.Equal(t, DayKey(ist), DayKey(ist.UTC()))
}
