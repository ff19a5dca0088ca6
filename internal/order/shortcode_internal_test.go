package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// The counter row key rolls over at UTC midnight. Distinct keys address
// distinct rows in daily_counters, and inserting a fresh row seeds next at 1,
// so the first code of a new day is FormatShortCode(0) = "000".
func TestShortCodeAllocator_DayRollover(t *testing.T) {
	lateTuesday := time.Date(2025, 10, 7, 23, 59, 0, 0, time.UTC)
	earlyWednesday := time.Date(2025, 10, 8, 0, 1, 0, 0, time.UTC)

	tuesday := newShortCodeAllocator(nil, fixedClock(lateTuesday))
	wednesday := newShortCodeAllocator(nil, fixedClock(earlyWednesday))

	assert.Equal(t, "2025-10-07", tuesday.day())
	assert.Equal(t, "2025-10-08", wednesday.day())
	assert.NotEqual(t, tuesday.day(), wednesday.day())
}

func TestShortCodeAllocator_DayIsUTC(t *testing.T) {
	male := time.FixedZone("MVT", 5*60*60)

	// 02:00 Wednesday in Male is still 21:00 Tuesday UTC.
	localWednesday := time.Date(2025, 10, 8, 2, 0, 0, 0, male)
	a := newShortCodeAllocator(nil, fixedClock(localWednesday))

	assert.Equal(t, "2025-10-07", a.day())
}

func TestShortCodeAllocator_SameDaySameKey(t *testing.T) {
	morning := newShortCodeAllocator(nil, fixedClock(time.Date(2025, 10, 7, 8, 0, 0, 0, time.UTC)))
	evening := newShortCodeAllocator(nil, fixedClock(time.Date(2025, 10, 7, 20, 0, 0, 0, time.UTC)))

	assert.Equal(t, morning.day(), evening.day())
}
