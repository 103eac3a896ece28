// Package inspection aggregates checklist state into completion figures.
package inspection

import (
	"math"
	"time"

	"vistoria/internal/calendar/rules"
	"vistoria/pkg/model"
)

// FullyInspected is true only when there is at least one group, every group
// has at least one item and every item is inspected.
func FullyInspected(checklist []model.ChecklistGroup) bool {
	if len(checklist) == 0 {
		return false
	}
	for _, g := range checklist {
		if len(g.Items) == 0 {
			return false
		}
		for _, item := range g.Items {
			if !item.Inspected {
				return false
			}
		}
	}
	return true
}

// Progress is the whole percentage of inspected items, 0 without items.
func Progress(checklist []model.ChecklistGroup) int {
	total, done := 0, 0
	for _, g := range checklist {
		for _, item := range g.Items {
			total++
			if item.Inspected {
				done++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(done) * 100 / float64(total)))
}

// Available reports whether equipment still has inspection work left.
func Available(e *model.Equipment) bool {
	return !FullyInspected(e.Checklist)
}

// Schedulable additionally requires budget to book against.
func Schedulable(e *model.Equipment) bool {
	return Available(e) && e.RemainingDuration > 0
}

type Summary struct {
	Registered int `json:"registered"`
	Today      int `json:"today"`
	Completed  int `json:"completed"`
	Pending    int `json:"pending"`
	Overdue    int `json:"overdue"`
}

// Summarize computes dashboard counters. Day boundaries follow now's location.
func Summarize(equipment []*model.Equipment, bookings []*model.Booking, now time.Time) Summary {
	s := Summary{Registered: len(equipment)}

	complete := make(map[string]bool, len(equipment))
	for _, e := range equipment {
		if FullyInspected(e.Checklist) {
			complete[e.ID] = true
			s.Completed++
		} else {
			s.Pending++
		}
	}

	for _, b := range bookings {
		if rules.SameDay(now, b.Start) {
			s.Today++
		}
		if b.End.Before(now) && !complete[b.EquipmentID] {
			s.Overdue++
		}
	}
	return s
}
