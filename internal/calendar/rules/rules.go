// Package rules holds the individual booking constraints. Every function is
// pure; callers pass times already converted to the operating time zone.
package rules

import (
	"time"

	"vistoria/pkg/duration"
	"vistoria/pkg/model"
)

const DefaultDailyCapSeconds = 6 * duration.SecondsPerHour

func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func SameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.In(a.Location()).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// WeekStart returns midnight of the Monday of t's ISO week.
func WeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return StartOfDay(t).AddDate(0, 0, -offset)
}

// WeekID identifies a Monday-based week, e.g. "2025-03-10".
func WeekID(t time.Time) string {
	return WeekStart(t).Format(time.DateOnly)
}

func NextBusinessDay(t time.Time) time.Time {
	for IsWeekend(t) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// BookedOnDay sums, in seconds, every booking starting on the same calendar day
// as day, skipping excludedID.
func BookedOnDay(bookings []*model.Booking, day time.Time, excludedID string) int64 {
	var total int64
	for _, b := range bookings {
		if excludedID != "" && b.ID == excludedID {
			continue
		}
		if SameDay(day, b.Start) {
			total += b.DurationSeconds()
		}
	}
	return total
}

// ExceedsDailyCap is inclusive at the boundary: booked+proposed == cap is allowed.
func ExceedsDailyCap(bookedSeconds, proposedSeconds, capSeconds int64) bool {
	return bookedSeconds+proposedSeconds > capSeconds
}

// AvailableBudget is the time the equipment can still hand out. When a booking
// is being moved its own duration is already deducted from the ledger, so it is
// counted as available again.
func AvailableBudget(eq *model.Equipment, bookings []*model.Booking, excludedID string) int64 {
	available := eq.RemainingDuration
	if excludedID == "" {
		return available
	}
	for _, b := range bookings {
		if b.ID == excludedID && b.EquipmentID == eq.ID {
			available += b.DurationSeconds()
			break
		}
	}
	return available
}

func ExceedsBudget(proposedSeconds, availableSeconds int64) bool {
	return proposedSeconds > availableSeconds
}

// BookedThisWeek returns the first other booking of equipmentID whose start
// falls inside the Monday to Sunday week containing at.
func BookedThisWeek(bookings []*model.Booking, equipmentID string, at time.Time, excludedID string) (*model.Booking, bool) {
	from := WeekStart(at)
	to := from.AddDate(0, 0, 7)
	for _, b := range bookings {
		if b.EquipmentID != equipmentID {
			continue
		}
		if excludedID != "" && b.ID == excludedID {
			continue
		}
		if !b.Start.Before(from) && b.Start.Before(to) {
			return b, true
		}
	}
	return nil, false
}
