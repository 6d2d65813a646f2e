// Package crm provides pure functions for client lifecycle and program
// tracking calculations. These functions have ZERO dependencies on HTTP,
// database, or any other infrastructure — making them trivially testable
// and reusable.
package crm

import (
	"math"
	"time"
)

// ── Lifecycle States ─────────────────────────────────────────────
// The lifecycle state is stored on the client record and drives dashboard
// grouping. It is validated at the API boundary, never inferred.

const (
	StateColdLead    = "cold_lead"
	StateWarmLead    = "warm_lead"
	StateActive      = "active"
	StateOffboarding = "offboarding"
	StateDead        = "dead"
)

// LifecycleStates lists the five valid states in funnel order.
var LifecycleStates = []string{
	StateColdLead, StateWarmLead, StateActive, StateOffboarding, StateDead,
}

// IsValidLifecycleState reports whether s is one of the five states.
func IsValidLifecycleState(s string) bool {
	for _, v := range LifecycleStates {
		if v == s {
			return true
		}
	}
	return false
}

// IsRevenueState reports whether clients in this state contribute to MRR.
// Offboarding clients still pay until their program ends.
func IsRevenueState(s string) bool {
	return s == StateActive || s == StateOffboarding
}

// ── Program Tracking ─────────────────────────────────────────────
// A client may be enrolled in a coaching program: a start date plus a
// duration in weeks. End date and progress are always derived, never
// stored.

// ProgramEnd returns the end date of a program window.
func ProgramEnd(start time.Time, durationWeeks int) time.Time {
	return start.AddDate(0, 0, durationWeeks*7)
}

// ProgramProgress returns the completion percentage of a program window
// in [0,100], relative to now.
// Parameters:
//   - start:         program start date (nil → no program, returns nil)
//   - durationWeeks: program length (<=0 → returns nil)
//   - now:           current time (injected for testability)
func ProgramProgress(start *time.Time, durationWeeks int, now time.Time) *float64 {
	if start == nil || durationWeeks <= 0 {
		return nil
	}

	startDay := truncateToDay(*start)
	endDay := truncateToDay(ProgramEnd(startDay, durationWeeks))
	today := truncateToDay(now)

	totalDays := endDay.Sub(startDay).Hours() / 24
	elapsedDays := today.Sub(startDay).Hours() / 24

	pct := elapsedDays / totalDays * 100
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	pct = math.Round(pct*10) / 10
	return &pct
}

// ProgramDaysRemaining returns the number of days until the program ends.
// Positive = days left, negative = days past the end, nil = no program.
func ProgramDaysRemaining(start *time.Time, durationWeeks int, now time.Time) *int {
	if start == nil || durationWeeks <= 0 {
		return nil
	}
	end := truncateToDay(ProgramEnd(truncateToDay(*start), durationWeeks))
	days := int(end.Sub(truncateToDay(now)).Hours() / 24)
	return &days
}

// ── Revenue Helpers ──────────────────────────────────────────────

// AnnualizeMRR converts monthly recurring revenue to ARR, both in cents.
func AnnualizeMRR(mrrCents int64) int64 {
	return mrrCents * 12
}

// SumMRR totals the estimated MRR of clients in revenue states.
// states and mrrCents are parallel slices.
func SumMRR(states []string, mrrCents []int64) int64 {
	var total int64
	for i, s := range states {
		if i < len(mrrCents) && IsRevenueState(s) {
			total += mrrCents[i]
		}
	}
	return total
}

// ── Internal Helpers ─────────────────────────────────────────────

// truncateToDay strips the time component, keeping only the date.
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
