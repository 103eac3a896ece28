package ledger

import (
	"testing"
	"time"

	"vistoria/pkg/model"

	"github.com/stretchr/testify/assert"
)

func TestSchedule(t *testing.T) {
	eq := &model.Equipment{ID: "eq1", TotalDuration: 28800, RemainingDuration: 28800}

	m := Schedule(eq, 3*3600)
	assert.Equal(t, int64(28800), m.Previous)
	assert.Equal(t, int64(18000), m.Next)
	assert.Equal(t, int64(-10800), m.Delta())
	assert.True(t, m.Changed())
}

func TestSchedule_FloorsAtZero(t *testing.T) {
	eq := &model.Equipment{ID: "eq1", TotalDuration: 28800, RemainingDuration: 1800}
	assert.Equal(t, int64(0), Schedule(eq, 3600).Next)
}

func TestMove(t *testing.T) {
	eq := &model.Equipment{ID: "eq1", TotalDuration: 28800, RemainingDuration: 18000}

	assert.Equal(t, int64(21600), Move(eq, 3*3600, 2*3600).Next)
	assert.Equal(t, int64(14400), Move(eq, 3*3600, 4*3600).Next)
	assert.False(t, Move(eq, 3600, 3600).Changed())
}

func TestMove_Clamped(t *testing.T) {
	eq := &model.Equipment{ID: "eq1", TotalDuration: 28800, RemainingDuration: 27000}
	assert.Equal(t, int64(28800), Move(eq, 4*3600, 3600).Next)

	eq.RemainingDuration = 600
	assert.Equal(t, int64(0), Move(eq, 3600, 3*3600).Next)
}

func TestCancel_ClampedToTotal(t *testing.T) {
	eq := &model.Equipment{ID: "eq1", TotalDuration: 28800, RemainingDuration: 25200}
	assert.Equal(t, int64(28800), Cancel(eq, 2*3600).Next)
}

func TestDrift(t *testing.T) {
	start := time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)
	bookings := []*model.Booking{
		{ID: "a", EquipmentID: "eq1", Start: start, End: start.Add(3 * time.Hour)},
		{ID: "b", EquipmentID: "eq2", Start: start, End: start.Add(time.Hour)},
	}
	eq := &model.Equipment{ID: "eq1", TotalDuration: 28800, RemainingDuration: 18000}

	assert.Equal(t, int64(10800), Consumed(bookings, "eq1"))
	assert.Equal(t, int64(0), Drift(eq, bookings))
	assert.True(t, Consistent(eq, bookings))

	eq.RemainingDuration = 28800
	assert.Equal(t, int64(10800), Drift(eq, bookings))
	assert.False(t, Consistent(eq, bookings))
}
