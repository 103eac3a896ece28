// Package ledger computes the remaining-time mutation paired with each booking
// transition. It never re-derives the balance from the booking list: each
// transition applies an exact integer-second delta to the current balance.
package ledger

import (
	"vistoria/pkg/duration"
	"vistoria/pkg/model"
)

// ToleranceSeconds is the drift still considered consistent.
const ToleranceSeconds = 1

type Mutation struct {
	EquipmentID string
	Previous    int64
	Next        int64
}

func (m Mutation) Delta() int64 {
	return m.Next - m.Previous
}

func (m Mutation) Changed() bool {
	return m.Next != m.Previous
}

func Schedule(eq *model.Equipment, seconds int64) Mutation {
	return mutate(eq, eq.RemainingDuration-seconds)
}

// Move charges only the difference between the new and old durations.
func Move(eq *model.Equipment, oldSeconds, newSeconds int64) Mutation {
	return mutate(eq, eq.RemainingDuration-(newSeconds-oldSeconds))
}

func Cancel(eq *model.Equipment, seconds int64) Mutation {
	return mutate(eq, eq.RemainingDuration+seconds)
}

func mutate(eq *model.Equipment, next int64) Mutation {
	return Mutation{
		EquipmentID: eq.ID,
		Previous:    eq.RemainingDuration,
		Next:        duration.Clamp(next, eq.TotalDuration),
	}
}

// Consumed sums the booked seconds of equipmentID.
func Consumed(bookings []*model.Booking, equipmentID string) int64 {
	var total int64
	for _, b := range bookings {
		if b.EquipmentID == equipmentID {
			total += b.DurationSeconds()
		}
	}
	return total
}

// Drift returns consumed + remaining - total. Zero means the ledger agrees
// with the bookings referencing the equipment.
func Drift(eq *model.Equipment, bookings []*model.Booking) int64 {
	return Consumed(bookings, eq.ID) + eq.RemainingDuration - eq.TotalDuration
}

func Consistent(eq *model.Equipment, bookings []*model.Booking) bool {
	d := Drift(eq, bookings)
	return d >= -ToleranceSeconds && d <= ToleranceSeconds
}
