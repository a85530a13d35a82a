package timecalc

import (
	"math"
	"time"
)

// ComputeHours derives the worked hours of an entry spanning from start on
// startDate to end on endDate. The day span is taken from the calendar dates
// alone; times of day never shift it.
//
// A same-day entry whose start is after its end produces a negative result.
// That mirrors the behavior reports have always shown for such rows and is
// deliberately not corrected here.
func ComputeHours(startDate time.Time, start TimeOfDay, endDate time.Time, end TimeOfDay) float64 {
	days := daysBetween(startDate, endDate)

	if days == 0 {
		return round2(end.Hours() - start.Hours())
	}

	total := 24 - start.Hours()
	total += float64(days-1) * 24
	total += end.Hours()
	return round2(total)
}

// daysBetween counts whole calendar days from a to b, ignoring time of day.
func daysBetween(a, b time.Time) int {
	a = time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// round2 rounds to 2 decimal places, half away from zero.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
