package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"vistoria/internal/calendar/decoration"
	calendarerrors "vistoria/internal/calendar/errors"
	"vistoria/internal/calendar/events"
	"vistoria/internal/calendar/validator"
	"vistoria/pkg/config"
	"vistoria/pkg/logger"
	"vistoria/pkg/model"

	"github.com/stretchr/testify/require"
)

var errStoreDown = errors.New("store unavailable")

type fakeEquipment struct {
	mu        sync.Mutex
	items     map[string]*model.Equipment
	updateErr error
	updates   int
}

func newFakeEquipment(items ...*model.Equipment) *fakeEquipment {
	f := &fakeEquipment{items: map[string]*model.Equipment{}}
	for _, e := range items {
		f.items[e.ID] = e.Clone()
	}
	return f
}

func (f *fakeEquipment) FindAll(context.Context) ([]*model.Equipment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.Equipment, 0, len(f.items))
	for _, e := range f.items {
		out = append(out, e.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeEquipment) UpdateRemaining(_ context.Context, id string, remaining int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	e, ok := f.items[id]
	if !ok {
		return fmt.Errorf("equipment %s not found", id)
	}
	e.RemainingDuration = remaining
	f.updates++
	return nil
}

func (f *fakeEquipment) remaining(id string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[id].RemainingDuration
}

type fakeBookings struct {
	mu        sync.Mutex
	items     map[string]*model.Booking
	next      int
	createErr error
	updateErr error
	deleteErr error
}

func newFakeBookings(items ...*model.Booking) *fakeBookings {
	f := &fakeBookings{items: map[string]*model.Booking{}}
	for _, b := range items {
		c := *b
		f.items[b.ID] = &c
	}
	return f
}

func (f *fakeBookings) Create(_ context.Context, b *model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.next++
	b.ID = fmt.Sprintf("booking-%d", f.next)
	c := *b
	f.items[b.ID] = &c
	return nil
}

func (f *fakeBookings) FindByID(_ context.Context, id string) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.items[id]
	if !ok {
		return nil, calendarerrors.ErrNotFound
	}
	c := *b
	return &c, nil
}

func (f *fakeBookings) FindAll(context.Context) ([]*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.Booking, 0, len(f.items))
	for _, b := range f.items {
		c := *b
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (f *fakeBookings) UpdateSchedule(_ context.Context, b *model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	existing, ok := f.items[b.ID]
	if !ok {
		return calendarerrors.ErrNotFound
	}
	existing.Title, existing.Start, existing.End = b.Title, b.Start, b.End
	return nil
}

func (f *fakeBookings) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.items[id]; !ok {
		return calendarerrors.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeBookings) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

type fakeJournal struct {
	mu        sync.Mutex
	items     map[string]*model.Transition
	order     []string
	createErr error
}

func newFakeJournal() *fakeJournal {
	return &fakeJournal{items: map[string]*model.Transition{}}
}

func (f *fakeJournal) Create(_ context.Context, t *model.Transition) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	c := *t
	f.items[t.ID] = &c
	f.order = append(f.order, t.ID)
	return nil
}

func (f *fakeJournal) FindByID(_ context.Context, id string) (*model.Transition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.items[id]
	if !ok {
		return nil, calendarerrors.ErrTransitionNotFound
	}
	c := *t
	return &c, nil
}

func (f *fakeJournal) FindUnresolved(context.Context) ([]*model.Transition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Transition
	for _, id := range f.order {
		if t := f.items[id]; t.Unresolved() {
			c := *t
			out = append(out, &c)
		}
	}
	return out, nil
}

func (f *fakeJournal) MarkStatus(_ context.Context, id string, status model.TransitionStatus, bookingID, cause string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.items[id]
	if !ok {
		return calendarerrors.ErrTransitionNotFound
	}
	t.Status = status
	if bookingID != "" {
		t.BookingID = bookingID
	}
	t.Error = cause
	return nil
}

func (f *fakeJournal) last() *model.Transition {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.order) == 0 {
		return nil
	}
	c := *f.items[f.order[len(f.order)-1]]
	return &c
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	svc       *calendarService
	equipment *fakeEquipment
	bookings  *fakeBookings
	journal   *fakeJournal
	publisher *recordingPublisher
}

func newFixture(t *testing.T, equipment []*model.Equipment, bookings ...*model.Booking) *fixture {
	t.Helper()

	log := logger.Nop()
	cfg := &config.Config{Log: log, ReadTimeout: time.Second, WriteTimeout: time.Second, Location: time.UTC}
	f := &fixture{
		equipment: newFakeEquipment(equipment...),
		bookings:  newFakeBookings(bookings...),
		journal:   newFakeJournal(),
		publisher: &recordingPublisher{},
	}

	svc := NewCalendarService(
		f.equipment,
		f.bookings,
		f.journal,
		validator.NewBookingValidator(log, time.UTC, 0),
		decoration.NewDecorator(nil, ""),
		f.publisher,
		nil,
		cfg,
	)
	f.svc = svc.(*calendarService)
	f.svc.now = func() time.Time { return monday(10) }

	require.NoError(t, f.svc.Load(context.Background()))
	return f
}

// monday returns 2025-03-10 at the given hour, UTC.
func monday(hour int) time.Time {
	return time.Date(2025, time.March, 10, hour, 0, 0, 0, time.UTC)
}

func hours(n int) int64 {
	return int64(n) * 3600
}

func equipmentWithBudget(id string, h int) *model.Equipment {
	return &model.Equipment{ID: id, Name: "Gerador " + id, TotalDuration: hours(h), RemainingDuration: hours(h)}
}
