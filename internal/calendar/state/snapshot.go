// Package state keeps the in-memory mirror of the equipment ledger and the
// calendar bookings. Records handed out are copies; the only way to change the
// mirror is through the Commit methods, called after the store writes succeed.
package state

import (
	"sort"
	"sync"

	"vistoria/internal/calendar/ledger"
	"vistoria/pkg/model"
)

type Snapshot struct {
	mu        sync.RWMutex
	equipment map[string]*model.Equipment
	bookings  map[string]*model.Booking
	version   uint64
}

func NewSnapshot() *Snapshot {
	return &Snapshot{
		equipment: map[string]*model.Equipment{},
		bookings:  map[string]*model.Booking{},
	}
}

// Replace swaps both collections at once, e.g. after a full reload from the store.
func (s *Snapshot) Replace(equipment []*model.Equipment, bookings []*model.Booking) uint64 {
	eqs := make(map[string]*model.Equipment, len(equipment))
	for _, e := range equipment {
		eqs[e.ID] = e.Clone()
	}
	bks := make(map[string]*model.Booking, len(bookings))
	for _, b := range bookings {
		c := *b
		bks[b.ID] = &c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.equipment = eqs
	s.bookings = bks
	s.version++
	return s.version
}

func (s *Snapshot) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *Snapshot) Equipment(id string) (*model.Equipment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.equipment[id]
	if !ok {
		return nil, false
	}
	return e.Clone(), true
}

// AllEquipment is ordered by name, then id.
func (s *Snapshot) AllEquipment() []*model.Equipment {
	s.mu.RLock()
	out := make([]*model.Equipment, 0, len(s.equipment))
	for _, e := range s.equipment {
		out = append(out, e.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Snapshot) Booking(id string) (*model.Booking, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, false
	}
	c := *b
	return &c, true
}

// Bookings is ordered by start, then id.
func (s *Snapshot) Bookings() []*model.Booking {
	s.mu.RLock()
	out := make([]*model.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		c := *b
		out = append(out, &c)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *Snapshot) CommitSchedule(m ledger.Mutation, booking *model.Booking) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(m)
	c := *booking
	s.bookings[booking.ID] = &c
	s.version++
	return s.version
}

func (s *Snapshot) CommitMove(m ledger.Mutation, booking *model.Booking) uint64 {
	return s.CommitSchedule(m, booking)
}

func (s *Snapshot) CommitCancel(m ledger.Mutation, bookingID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(m)
	delete(s.bookings, bookingID)
	s.version++
	return s.version
}

// SyncEquipmentDetails mirrors fields owned outside the calendar (name, period,
// checklist). A known record keeps its ledger; an unknown one is added as is.
func (s *Snapshot) SyncEquipmentDetails(e *model.Equipment) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := e.Clone()
	if existing, ok := s.equipment[e.ID]; ok {
		c.TotalDuration = existing.TotalDuration
		c.RemainingDuration = existing.RemainingDuration
	}
	s.equipment[e.ID] = c
	s.version++
	return s.version
}

func (s *Snapshot) applyLocked(m ledger.Mutation) {
	if e, ok := s.equipment[m.EquipmentID]; ok {
		e.RemainingDuration = m.Next
	}
}
