package rules

import (
	"testing"
	"time"

	"vistoria/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2025-03-10 is a Monday.
func at(day, hour int) time.Time {
	return time.Date(2025, time.March, day, hour, 0, 0, 0, time.UTC)
}

func booking(id, equipmentID string, start time.Time, hours int) *model.Booking {
	return &model.Booking{
		ID:          id,
		EquipmentID: equipmentID,
		Start:       start,
		End:         start.Add(time.Duration(hours) * time.Hour),
	}
}

func TestIsWeekend(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"monday", at(10, 9), false},
		{"friday", at(14, 9), false},
		{"saturday", at(15, 9), true},
		{"sunday", at(16, 23), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsWeekend(tt.t))
		})
	}
}

func TestWeekStart(t *testing.T) {
	monday := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	for day := 10; day <= 16; day++ {
		assert.Equal(t, monday, WeekStart(at(day, 15)), "day %d", day)
	}
	assert.Equal(t, monday.AddDate(0, 0, 7), WeekStart(at(17, 0)))
	assert.Equal(t, "2025-03-10", WeekID(at(16, 22)))
}

func TestNextBusinessDay(t *testing.T) {
	assert.Equal(t, at(17, 8), NextBusinessDay(at(15, 8)))
	assert.Equal(t, at(17, 8), NextBusinessDay(at(16, 8)))
	assert.Equal(t, at(12, 8), NextBusinessDay(at(12, 8)))
}

func TestSameDay_UsesFirstLocation(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	local := time.Date(2025, time.March, 10, 22, 0, 0, 0, loc)
	utcNextDay := time.Date(2025, time.March, 11, 0, 30, 0, 0, time.UTC)
	assert.True(t, SameDay(local, utcNextDay))
	assert.False(t, SameDay(utcNextDay.In(time.UTC), local.AddDate(0, 0, -1)))
}

func TestBookedOnDay(t *testing.T) {
	bookings := []*model.Booking{
		booking("a", "eq1", at(10, 8), 3),
		booking("b", "eq2", at(10, 13), 2),
		booking("c", "eq1", at(11, 8), 4),
	}
	assert.Equal(t, int64(5*3600), BookedOnDay(bookings, at(10, 16), ""))
	assert.Equal(t, int64(2*3600), BookedOnDay(bookings, at(10, 16), "a"))
	assert.Equal(t, int64(0), BookedOnDay(bookings, at(12, 9), ""))
}

func TestExceedsDailyCap(t *testing.T) {
	booked := int64(5 * 3600)
	assert.True(t, ExceedsDailyCap(booked, 2*3600, DefaultDailyCapSeconds))
	assert.False(t, ExceedsDailyCap(booked, 1*3600, DefaultDailyCapSeconds))
	assert.False(t, ExceedsDailyCap(0, 6*3600, DefaultDailyCapSeconds))
}

func TestAvailableBudget(t *testing.T) {
	eq := &model.Equipment{ID: "eq1", TotalDuration: 28800, RemainingDuration: 18000}
	bookings := []*model.Booking{
		booking("a", "eq1", at(10, 8), 3),
		booking("b", "eq2", at(10, 13), 2),
	}
	assert.Equal(t, int64(18000), AvailableBudget(eq, bookings, ""))
	assert.Equal(t, int64(28800), AvailableBudget(eq, bookings, "a"))
	assert.Equal(t, int64(18000), AvailableBudget(eq, bookings, "b"), "other equipment's booking is not credited")
	assert.True(t, ExceedsBudget(7200, 3600))
	assert.False(t, ExceedsBudget(3600, 3600))
}

func TestBookedThisWeek(t *testing.T) {
	bookings := []*model.Booking{
		booking("monday", "eq1", at(10, 8), 2),
		booking("other", "eq2", at(12, 8), 2),
	}

	conflict, ok := BookedThisWeek(bookings, "eq1", at(13, 9), "")
	require.True(t, ok)
	assert.Equal(t, "monday", conflict.ID)

	_, ok = BookedThisWeek(bookings, "eq1", at(17, 9), "")
	assert.False(t, ok, "next week is free")

	_, ok = BookedThisWeek(bookings, "eq1", at(13, 9), "monday")
	assert.False(t, ok, "a moved booking does not conflict with itself")

	_, ok = BookedThisWeek(bookings, "eq2", at(16, 20), "")
	assert.True(t, ok, "sunday belongs to the same week")
}
