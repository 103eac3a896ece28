package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"vistoria/internal/calendar/decoration"
	calendarerrors "vistoria/internal/calendar/errors"
	"vistoria/internal/calendar/events"
	"vistoria/internal/calendar/ledger"
	"vistoria/internal/calendar/repository"
	"vistoria/internal/calendar/state"
	"vistoria/internal/calendar/validator"
	"vistoria/internal/inspection"
	"vistoria/pkg/config"
	"vistoria/pkg/duration"
	apperrors "vistoria/pkg/errors"
	"vistoria/pkg/metrics"
	"vistoria/pkg/model"

	"github.com/google/uuid"
)

// EquipmentLedger is the part of the equipment store the calendar writes to.
type EquipmentLedger interface {
	FindAll(ctx context.Context) ([]*model.Equipment, error)
	UpdateRemaining(ctx context.Context, id string, remainingSeconds int64) error
}

type CalendarService interface {
	Load(ctx context.Context) error
	Refresh(ctx context.Context, trigger string) error

	Calendar(ctx context.Context, from, to *time.Time) (*CalendarView, error)
	Schedule(ctx context.Context, req *model.ScheduleRequest) (*model.Booking, error)
	Move(ctx context.Context, id string, req *model.MoveRequest) (*model.Booking, error)
	Cancel(ctx context.Context, id string, confirmed bool) error
	Checklist(ctx context.Context, bookingID string) (*BookingChecklist, error)

	AvailableEquipment(ctx context.Context) []*model.Equipment
	Dashboard(ctx context.Context) inspection.Summary
	SyncEquipment(equipment *model.Equipment)

	Audit(ctx context.Context) (*AuditReport, error)
	Acknowledge(ctx context.Context, transitionID string) (*model.Transition, error)
}

type CalendarEvent struct {
	*model.Booking
	Decoration decoration.Decoration `json:"decoration"`
}

type CalendarView struct {
	Events  []CalendarEvent
	Version uint64
}

type BookingChecklist struct {
	Booking        *model.Booking         `json:"booking"`
	EquipmentID    string                 `json:"equipment_id"`
	EquipmentName  string                 `json:"equipment_name"`
	Checklist      []model.ChecklistGroup `json:"checklist"`
	Progress       int                    `json:"progress"`
	FullyInspected bool                   `json:"fully_inspected"`
}

type calendarService struct {
	// mu serializes transitions and reloads; the snapshot has its own lock for readers.
	mu sync.Mutex

	equipment EquipmentLedger
	bookings  repository.BookingRepository
	journal   repository.TransitionRepository
	validator *validator.BookingValidator
	decorator *decoration.Decorator
	publisher events.Publisher
	metrics   *metrics.Metrics
	state     *state.Snapshot
	cfg       *config.Config
	now       func() time.Time
}

func NewCalendarService(
	equipment EquipmentLedger,
	bookings repository.BookingRepository,
	journal repository.TransitionRepository,
	validator *validator.BookingValidator,
	decorator *decoration.Decorator,
	publisher events.Publisher,
	metrics *metrics.Metrics,
	cfg *config.Config,
) CalendarService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &calendarService{
		equipment: equipment,
		bookings:  bookings,
		journal:   journal,
		validator: validator,
		decorator: decorator,
		publisher: publisher,
		metrics:   metrics,
		state:     state.NewSnapshot(),
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *calendarService) Load(ctx context.Context) error {
	return s.Refresh(ctx, "startup")
}

// Refresh replaces the snapshot with the store contents. Equipment and
// bookings are read concurrently under a shared deadline.
func (s *calendarService) Refresh(ctx context.Context, trigger string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sharedCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var equipment []*model.Equipment
	var bookings []*model.Booking
	var errEquipment, errBookings error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		equipment, errEquipment = s.equipment.FindAll(sharedCtx)
	}()

	go func() {
		defer wg.Done()
		bookings, errBookings = s.bookings.FindAll(sharedCtx)
	}()

	wg.Wait()

	if errEquipment != nil {
		s.cfg.Log.Error("Failed to load equipment", "trigger", trigger, "error", errEquipment)
		return apperrors.Internal("Failed to load equipment", errEquipment)
	}
	if errBookings != nil {
		s.cfg.Log.Error("Failed to load bookings", "trigger", trigger, "error", errBookings)
		return apperrors.Internal("Failed to load bookings", errBookings)
	}

	for _, e := range equipment {
		if e.LedgerCorrupt() {
			s.cfg.Log.Warn("Equipment ledger is corrupt, scheduling against it will be refused",
				"equipment_id", e.ID,
				"total", duration.Encode(e.TotalDuration),
				"remaining", duration.Encode(e.RemainingDuration),
			)
		}
	}

	version := s.state.Replace(equipment, bookings)
	s.metrics.SnapshotRefreshed(trigger)
	s.cfg.Log.Info("Calendar snapshot loaded",
		"trigger", trigger,
		"equipment", len(equipment),
		"bookings", len(bookings),
		"version", version,
	)
	return nil
}

// Calendar lists bookings overlapping [from, to) with their decorations.
func (s *calendarService) Calendar(_ context.Context, from, to *time.Time) (*CalendarView, error) {
	version := s.state.Version()
	bookings := s.state.Bookings()

	out := make([]CalendarEvent, 0, len(bookings))
	for _, b := range bookings {
		if from != nil && !b.End.After(*from) {
			continue
		}
		if to != nil && !b.Start.Before(*to) {
			continue
		}
		eq, _ := s.state.Equipment(b.EquipmentID)
		out = append(out, CalendarEvent{
			Booking:    b,
			Decoration: s.decorator.Decorate(b, eq),
		})
	}

	return &CalendarView{Events: out, Version: version}, nil
}

func (s *calendarService) Schedule(ctx context.Context, req *model.ScheduleRequest) (*model.Booking, error) {
	if err := s.validator.ValidateSchedule(req); err != nil {
		s.cfg.Log.Warn("Schedule request validation failed", "equipment_id", req.EquipmentID, "error", err)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	eq, ok := s.state.Equipment(req.EquipmentID)
	if !ok {
		return nil, apperrors.NotFoundWithID("Equipment", req.EquipmentID)
	}

	seconds := duration.FromHours(req.DurationHours)
	if seconds <= 0 {
		return nil, emptyDuration(req.DurationHours)
	}
	proposal := validator.Proposal{Equipment: eq, Start: req.Start, DurationSeconds: seconds}
	if err := s.validator.Check(proposal, s.state.Bookings()); err != nil {
		return nil, s.rejected(model.TransitionSchedule, eq, req.Start, err)
	}

	mutation := ledger.Schedule(eq, seconds)
	booking := &model.Booking{
		Title:         bookingTitle(eq.Name, seconds),
		Start:         req.Start,
		End:           req.Start.Add(time.Duration(seconds) * time.Second),
		EquipmentID:   eq.ID,
		EquipmentName: eq.Name,
	}

	tr, err := s.pairedWrite(ctx, model.TransitionSchedule, mutation, booking, func(ctx context.Context) error {
		return s.bookings.Create(ctx, booking)
	})
	if err != nil {
		return nil, err
	}

	s.state.CommitSchedule(mutation, booking)
	s.publish(ctx, events.BookingScheduled, tr, "")

	s.cfg.Log.Info("Booking scheduled successfully",
		"booking_id", booking.ID,
		"equipment_id", eq.ID,
		"start", booking.Start,
		"duration", duration.Encode(seconds),
		"remaining", duration.Encode(mutation.Next),
	)
	return booking, nil
}

// emptyDuration rejects a request whose duration rounds to zero seconds, since
// the stored booking would end where it starts.
func emptyDuration(hours float64) *apperrors.AppError {
	appErr := apperrors.Validation("Booking duration must be at least one second", map[string]any{
		"duration_hours": hours,
	})
	appErr.Err = calendarerrors.ErrEmptyDuration
	return appErr
}

func (s *calendarService) Move(ctx context.Context, id string, req *model.MoveRequest) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	if err := s.validator.ValidateMove(req); err != nil {
		s.cfg.Log.Warn("Move request validation failed", "booking_id", id, "error", err)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	booking, ok := s.state.Booking(id)
	if !ok {
		return nil, apperrors.NotFoundWithID("Booking", id)
	}
	eq, ok := s.state.Equipment(booking.EquipmentID)
	if !ok {
		return nil, apperrors.NotFoundWithID("Equipment", booking.EquipmentID)
	}

	oldSeconds := booking.DurationSeconds()
	newSeconds := duration.FromElapsed(req.End.Sub(req.Start))
	if newSeconds <= 0 {
		return nil, emptyDuration(req.End.Sub(req.Start).Hours())
	}
	proposal := validator.Proposal{Equipment: eq, Start: req.Start, DurationSeconds: newSeconds, ExcludedID: booking.ID}
	if err := s.validator.Check(proposal, s.state.Bookings()); err != nil {
		return nil, s.rejected(model.TransitionMove, eq, req.Start, err)
	}

	mutation := ledger.Move(eq, oldSeconds, newSeconds)
	moved := *booking
	moved.Start = req.Start
	moved.End = req.End
	moved.Title = bookingTitle(eq.Name, newSeconds)

	tr, err := s.pairedWrite(ctx, model.TransitionMove, mutation, &moved, func(ctx context.Context) error {
		return s.bookings.UpdateSchedule(ctx, &moved)
	})
	if err != nil {
		return nil, err
	}

	s.state.CommitMove(mutation, &moved)
	s.publish(ctx, events.BookingMoved, tr, "")

	s.cfg.Log.Info("Booking moved successfully",
		"booking_id", moved.ID,
		"equipment_id", eq.ID,
		"start", moved.Start,
		"delta_seconds", mutation.Delta(),
		"remaining", duration.Encode(mutation.Next),
	)
	return &moved, nil
}

func (s *calendarService) Cancel(ctx context.Context, id string, confirmed bool) error {
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}
	if !confirmed {
		appErr := apperrors.PreconditionRequired("Unschedule must be confirmed with confirm=true")
		appErr.Err = calendarerrors.ErrNotConfirmed
		return appErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	booking, ok := s.state.Booking(id)
	if !ok {
		return apperrors.NotFoundWithID("Booking", id)
	}

	// A booking whose equipment is gone is removed without a ledger mutation.
	mutation := ledger.Mutation{EquipmentID: booking.EquipmentID}
	if eq, ok := s.state.Equipment(booking.EquipmentID); ok {
		mutation = ledger.Cancel(eq, booking.DurationSeconds())
	} else {
		s.cfg.Log.Warn("Cancelling booking of unknown equipment", "booking_id", id, "equipment_id", booking.EquipmentID)
	}

	tr, err := s.pairedWrite(ctx, model.TransitionCancel, mutation, booking, func(ctx context.Context) error {
		return s.bookings.Delete(ctx, booking.ID)
	})
	if err != nil {
		return err
	}

	s.state.CommitCancel(mutation, booking.ID)
	s.publish(ctx, events.BookingCancelled, tr, "")

	s.cfg.Log.Info("Booking cancelled successfully",
		"booking_id", booking.ID,
		"equipment_id", booking.EquipmentID,
		"remaining", duration.Encode(mutation.Next),
	)
	return nil
}

func (s *calendarService) Checklist(_ context.Context, bookingID string) (*BookingChecklist, error) {
	booking, ok := s.state.Booking(bookingID)
	if !ok {
		return nil, apperrors.NotFoundWithID("Booking", bookingID)
	}
	eq, ok := s.state.Equipment(booking.EquipmentID)
	if !ok {
		return nil, apperrors.NotFoundWithID("Equipment", booking.EquipmentID)
	}
	return &BookingChecklist{
		Booking:        booking,
		EquipmentID:    eq.ID,
		EquipmentName:  eq.Name,
		Checklist:      eq.Checklist,
		Progress:       inspection.Progress(eq.Checklist),
		FullyInspected: inspection.FullyInspected(eq.Checklist),
	}, nil
}

// AvailableEquipment lists what the scheduling picker can offer.
func (s *calendarService) AvailableEquipment(_ context.Context) []*model.Equipment {
	all := s.state.AllEquipment()
	out := make([]*model.Equipment, 0, len(all))
	for _, e := range all {
		if inspection.Schedulable(e) {
			out = append(out, e)
		}
	}
	return out
}

func (s *calendarService) Dashboard(_ context.Context) inspection.Summary {
	return inspection.Summarize(s.state.AllEquipment(), s.state.Bookings(), s.now().In(s.validator.Location()))
}

func (s *calendarService) SyncEquipment(equipment *model.Equipment) {
	version := s.state.SyncEquipmentDetails(equipment)
	s.cfg.Log.Debug("Equipment details synced into snapshot", "equipment_id", equipment.ID, "version", version)
}

// pairedWrite journals the transition, writes the ledger, then runs the
// booking write. It returns the resolved journal entry; on error nothing may be
// reflected in the snapshot.
func (s *calendarService) pairedWrite(
	ctx context.Context,
	kind model.TransitionKind,
	mutation ledger.Mutation,
	booking *model.Booking,
	bookingWrite func(ctx context.Context) error,
) (*model.Transition, error) {
	tr := &model.Transition{
		ID:                uuid.NewString(),
		Kind:              kind,
		EquipmentID:       mutation.EquipmentID,
		BookingID:         booking.ID,
		PreviousRemaining: mutation.Previous,
		NextRemaining:     mutation.Next,
		DeltaSeconds:      mutation.Delta(),
		Start:             booking.Start,
		End:               booking.End,
		Status:            model.TransitionPending,
		CreatedAt:         s.now().UTC().Truncate(time.Millisecond),
	}

	if err := s.journal.Create(ctx, tr); err != nil {
		s.metrics.Transition(string(kind), string(model.TransitionAborted))
		s.cfg.Log.Error("Failed to journal transition", "kind", kind, "equipment_id", tr.EquipmentID, "error", err)
		return nil, storeWriteFailed("Failed to record transition", err)
	}

	if mutation.Changed() {
		if err := s.equipment.UpdateRemaining(ctx, mutation.EquipmentID, mutation.Next); err != nil {
			s.mark(ctx, tr, model.TransitionAborted, err.Error())
			s.metrics.Transition(string(kind), string(model.TransitionAborted))
			s.cfg.Log.Error("Failed to update equipment ledger",
				"kind", kind,
				"transition_id", tr.ID,
				"equipment_id", mutation.EquipmentID,
				"error", err,
			)
			return nil, storeWriteFailed("Failed to update remaining time", err)
		}
	}

	if err := bookingWrite(ctx); err != nil {
		if !mutation.Changed() {
			s.mark(ctx, tr, model.TransitionAborted, err.Error())
			s.metrics.Transition(string(kind), string(model.TransitionAborted))
			s.cfg.Log.Error("Failed to write booking", "kind", kind, "transition_id", tr.ID, "error", err)
			return nil, storeWriteFailed("Failed to write booking", err)
		}

		s.mark(ctx, tr, model.TransitionStranded, err.Error())
		s.metrics.Transition(string(kind), string(model.TransitionStranded))
		s.metrics.Stranded()
		s.cfg.Log.Error("Reconciliation alert: ledger written but booking write failed",
			"kind", kind,
			"transition_id", tr.ID,
			"equipment_id", mutation.EquipmentID,
			"booking_id", booking.ID,
			"previous_remaining", duration.Encode(mutation.Previous),
			"next_remaining", duration.Encode(mutation.Next),
			"error", err,
		)
		s.publish(ctx, events.ReconciliationAlert, tr, err.Error())
		return nil, storeWriteFailed("Failed to write booking after the ledger was updated", err)
	}

	tr.BookingID = booking.ID
	tr.Status = model.TransitionResolved
	s.mark(ctx, tr, model.TransitionResolved, "")
	s.metrics.Transition(string(kind), string(model.TransitionResolved))
	return tr, nil
}

// mark records the outcome of a journal entry. A failure here leaves the entry
// pending, which the audit reports, so it is only logged.
func (s *calendarService) mark(ctx context.Context, tr *model.Transition, status model.TransitionStatus, cause string) {
	tr.Status = status
	tr.Error = cause
	if err := s.journal.MarkStatus(ctx, tr.ID, status, tr.BookingID, cause); err != nil {
		s.cfg.Log.Warn("Failed to update transition status",
			"transition_id", tr.ID,
			"status", status,
			"error", err,
		)
	}
}

func (s *calendarService) publish(ctx context.Context, eventType events.Type, tr *model.Transition, reason string) {
	event := events.Event{
		Type:              eventType,
		EquipmentID:       tr.EquipmentID,
		BookingID:         tr.BookingID,
		TransitionID:      tr.ID,
		PreviousRemaining: tr.PreviousRemaining,
		NextRemaining:     tr.NextRemaining,
		Start:             tr.Start,
		End:               tr.End,
		Reason:            reason,
		OccurredAt:        s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.cfg.Log.Warn("Failed to publish calendar event",
			"event_type", eventType,
			"transition_id", tr.ID,
			"error", err,
		)
	}
}

func (s *calendarService) rejected(kind model.TransitionKind, eq *model.Equipment, start time.Time, err error) error {
	rejection, ok := calendarerrors.AsRejection(err)
	if !ok {
		return apperrors.Internal("Failed to validate booking", err)
	}

	s.metrics.Rejection(string(rejection.Kind))
	s.cfg.Log.Warn("Booking rejected",
		"operation", kind,
		"reason", rejection.Kind,
		"equipment_id", eq.ID,
		"start", start,
	)

	appErr := apperrors.Validation(rejection.Error(), rejection.Details())
	appErr.Err = rejection
	return appErr
}

func storeWriteFailed(message string, err error) error {
	return apperrors.Internal(message, fmt.Errorf("%w: %w", calendarerrors.ErrStoreWriteFailed, err)).
		WithDetails(map[string]any{"kind": "StoreWriteFailed"})
}

func bookingTitle(name string, seconds int64) string {
	return fmt.Sprintf("%s (%.2fh)", name, duration.Hours(seconds))
}

// IsStoreWriteFailure reports whether err came from a failed store write.
func IsStoreWriteFailure(err error) bool {
	return errors.Is(err, calendarerrors.ErrStoreWriteFailed)
}
