package service

import (
	"math"
	"time"
)

// FeeSchedule computes the parking fee for a session duration.
//
// The rate applies to the ENTIRE duration once the grace period is exceeded,
// not only the excess minutes, so the amount jumps at the boundary
// (15 min -> 0, 16 min -> 1600).
type FeeSchedule struct {
	Grace         time.Duration
	RatePerMinute int64
}

// DefaultFeeSchedule is the deployed schedule: 15 minutes free, then 100
// currency units per minute.
func DefaultFeeSchedule() FeeSchedule {
	return FeeSchedule{
		Grace:         15 * time.Minute,
		RatePerMinute: 100,
	}
}

// Amount returns the fee for a stay from entry to exit. A non-positive
// duration (including exit == entry) is free; the amount is never negative.
func (f FeeSchedule) Amount(entry, exit time.Time) int64 {
	d := exit.Sub(entry)
	if d <= f.Grace {
		return 0
	}
	minutes := d.Minutes()
	if minutes < 0 {
		return 0
	}
	return int64(math.Round(minutes * float64(f.RatePerMinute)))
}

// Resolve computes the fee and the exit time it was billed against. When
// exit is nil the current time is used and reported back, so the caller
// persists exactly the timestamp that produced the amount.
func (f FeeSchedule) Resolve(entry time.Time, exit *time.Time, now func() time.Time) (int64, time.Time) {
	resolved := time.Time{}
	if exit != nil {
		resolved = *exit
	} else {
		resolved = now().UTC()
	}
	return f.Amount(entry, resolved), resolved
}
