package service_test

import (
	"testing"
	"time"

	"github.com/parksmart-iot/parksmart/server/internal/parksmart/service"
)

var feeBase = time.Date(2023, 11, 1, 10, 0, 0, 0, time.UTC)

func TestFeeSchedule_GracePeriodFree(t *testing.T) {
	fees := service.DefaultFeeSchedule()

	for _, mins := range []int{0, 1, 5, 14, 15} {
		exit := feeBase.Add(time.Duration(mins) * time.Minute)
		if got := fees.Amount(feeBase, exit); got != 0 {
			t.Errorf("fee for %d min = %d, want 0 (grace)", mins, got)
		}
	}
}

func TestFeeSchedule_RateAppliesToEntireDuration(t *testing.T) {
	fees := service.DefaultFeeSchedule()

	// Past the grace period the rate covers the whole stay, not just the
	// excess: the amount jumps at the boundary.
	if got := fees.Amount(feeBase, feeBase.Add(16*time.Minute)); got != 1600 {
		t.Errorf("fee for 16 min = %d, want 1600", got)
	}
	if got := fees.Amount(feeBase, feeBase.Add(20*time.Minute)); got != 2000 {
		t.Errorf("fee for 20 min = %d, want 2000", got)
	}
	if got := fees.Amount(feeBase, feeBase.Add(90*time.Minute)); got != 9000 {
		t.Errorf("fee for 90 min = %d, want 9000", got)
	}
}

func TestFeeSchedule_LiteralExample(t *testing.T) {
	fees := service.DefaultFeeSchedule()

	entry := time.Date(2023, 11, 1, 10, 0, 0, 0, time.UTC)
	exit := time.Date(2023, 11, 1, 10, 20, 0, 0, time.UTC)
	if got := fees.Amount(entry, exit); got != 2000 {
		t.Errorf("fee(10:00:00, 10:20:00) = %d, want 2000", got)
	}
}

func TestFeeSchedule_NonDecreasing(t *testing.T) {
	fees := service.DefaultFeeSchedule()

	var prev int64
	for mins := 0; mins <= 240; mins++ {
		got := fees.Amount(feeBase, feeBase.Add(time.Duration(mins)*time.Minute))
		if got < prev {
			t.Fatalf("fee decreased: %d min -> %d, previous %d", mins, got, prev)
		}
		prev = got
	}
}

func TestFeeSchedule_NeverNegative(t *testing.T) {
	fees := service.DefaultFeeSchedule()

	if got := fees.Amount(feeBase, feeBase); got != 0 {
		t.Errorf("fee for zero duration = %d, want 0", got)
	}
	// Clock skew between devices should never bill a negative amount.
	if got := fees.Amount(feeBase, feeBase.Add(-time.Hour)); got != 0 {
		t.Errorf("fee for negative duration = %d, want 0", got)
	}
}

func TestFeeSchedule_ResolveReportsBilledExitTime(t *testing.T) {
	fees := service.DefaultFeeSchedule()
	now := feeBase.Add(30 * time.Minute)

	amount, resolved := fees.Resolve(feeBase, nil, func() time.Time { return now })
	if !resolved.Equal(now) {
		t.Errorf("resolved exit = %v, want %v", resolved, now)
	}
	if amount != 3000 {
		t.Errorf("amount = %d, want 3000", amount)
	}

	// An explicit exit time is billed against as-is.
	exit := feeBase.Add(10 * time.Minute)
	amount, resolved = fees.Resolve(feeBase, &exit, func() time.Time { return now })
	if !resolved.Equal(exit) {
		t.Errorf("resolved exit = %v, want explicit %v", resolved, exit)
	}
	if amount != 0 {
		t.Errorf("amount = %d, want 0 within grace", amount)
	}
}
