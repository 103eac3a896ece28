//go:build integration

package testutil

import (
	"fmt"
	"time"

	"vistoria/pkg/model"

	"github.com/google/uuid"
)

type EquipmentBuilder struct {
	reg model.EquipmentRegistration
}

// NewEquipmentBuilder starts from a uniquely named 8h weekly equipment.
func NewEquipmentBuilder() *EquipmentBuilder {
	return &EquipmentBuilder{
		reg: model.EquipmentRegistration{
			Name:    fmt.Sprintf("Compressor %s", uuid.NewString()[:8]),
			Hours:   8,
			Minutes: 0,
			Period:  model.Period{Value: 1, Unit: model.PeriodWeek},
			Checklist: []model.ChecklistGroup{
				{Items: []model.ChecklistItem{{Label: "Verificar pressao"}, {Label: "Trocar filtro"}}},
			},
		},
	}
}

func (b *EquipmentBuilder) WithName(name string) *EquipmentBuilder {
	b.reg.Name = name
	return b
}

func (b *EquipmentBuilder) WithBudget(hours, minutes int) *EquipmentBuilder {
	b.reg.Hours = hours
	b.reg.Minutes = minutes
	return b
}

func (b *EquipmentBuilder) Build() model.EquipmentRegistration {
	return b.reg
}

// FarMonday returns a Monday 09:00 in São Paulo, offset by weeks into the future
// so separate tests do not collide in the service's snapshot.
func FarMonday(weeks int) time.Time {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		loc = time.FixedZone("BRT", -3*60*60)
	}
	now := time.Now().In(loc)
	offset := (int(time.Monday) - int(now.Weekday()) + 7) % 7
	monday := time.Date(now.Year(), now.Month(), now.Day()+offset, 9, 0, 0, 0, loc)
	return monday.AddDate(0, 0, 7*(weeks+52))
}

func Schedule(equipmentID string, start time.Time, hours float64) model.ScheduleRequest {
	return model.ScheduleRequest{
		EquipmentID:   equipmentID,
		Start:         start,
		DurationHours: hours,
	}
}
