package model

import (
	"time"

	"vistoria/pkg/duration"
)

// Booking is one scheduled inspection session stored in calendarioEventos.
type Booking struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty"`
	Title         string    `json:"title" bson:"title"`
	Start         time.Time `json:"start" bson:"start"`
	End           time.Time `json:"end" bson:"end"`
	EquipmentID   string    `json:"equipment_id" bson:"serviceId"`
	EquipmentName string    `json:"resource" bson:"resource"`
	AllDay        bool      `json:"all_day" bson:"allDay"`
}

func (b *Booking) DurationSeconds() int64 {
	return duration.FromElapsed(b.End.Sub(b.Start))
}

func (b *Booking) DurationHours() float64 {
	return duration.Hours(b.DurationSeconds())
}

type ScheduleRequest struct {
	EquipmentID   string    `json:"equipment_id" validate:"required"`
	Start         time.Time `json:"start" validate:"required"`
	DurationHours float64   `json:"duration_hours" validate:"gt=0,max=24"`
}

type MoveRequest struct {
	Start time.Time `json:"start" validate:"required"`
	End   time.Time `json:"end" validate:"required,gtfield=Start"`
}
