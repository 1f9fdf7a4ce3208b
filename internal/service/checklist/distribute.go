// Package checklist spreads one-off checklist tasks across a date interval.
package checklist

import (
	"math/rand"
	"time"

	"katrina-one-backend/internal/domain"
)

// maxWeekdayRolls caps the re-roll loop when weekends are excluded. An
// interval containing no weekday falls through with whatever date the last
// roll produced.
const maxWeekdayRolls = 100

// RandomDate picks a uniformly random date in [from, to]. With
// excludeWeekends set it re-rolls on Saturday/Sunday up to maxWeekdayRolls
// times.
func RandomDate(rng *rand.Rand, from, to time.Time, excludeWeekends bool) time.Time {
	days := int(truncateDay(to).Sub(truncateDay(from)).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	d := truncateDay(from).AddDate(0, 0, rng.Intn(days))
	if !excludeWeekends {
		return d
	}
	for i := 0; i < maxWeekdayRolls && isWeekend(d); i++ {
		d = truncateDay(from).AddDate(0, 0, rng.Intn(days))
	}
	return d
}

// Distribute assigns each task an independent random date in the interval.
func Distribute(rng *rand.Rand, tasks []domain.Task, from, to time.Time, excludeWeekends bool) map[string]time.Time {
	out := make(map[string]time.Time, len(tasks))
	for _, t := range tasks {
		out[t.ID] = RandomDate(rng, from, to, excludeWeekends)
	}
	return out
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
