package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	calendarerrors "vistoria/internal/calendar/errors"
	"vistoria/internal/calendar/ledger"
	apperrors "vistoria/pkg/errors"
	"vistoria/pkg/model"
)

type FindingKind string

const (
	FindingUnresolvedTransition FindingKind = "unresolved_transition"
	FindingLedgerDrift          FindingKind = "ledger_drift"
	FindingCorruptLedger        FindingKind = "corrupt_ledger"
)

type Finding struct {
	Kind         FindingKind `json:"kind"`
	EquipmentID  string      `json:"equipment_id"`
	TransitionID string      `json:"transition_id,omitempty"`
	DriftSeconds int64       `json:"drift_seconds,omitempty"`
	Detail       string      `json:"detail"`
}

type AuditReport struct {
	CheckedAt time.Time `json:"checked_at"`
	Findings  []Finding `json:"findings"`
}

func (r *AuditReport) Clean() bool {
	return len(r.Findings) == 0
}

// Audit compares the stored ledgers with the stored bookings and lists journal
// entries that never resolved. It reads the store, not the snapshot, and never
// repairs anything.
func (s *calendarService) Audit(ctx context.Context) (*AuditReport, error) {
	sharedCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	var equipment []*model.Equipment
	var bookings []*model.Booking
	var transitions []*model.Transition
	var errEquipment, errBookings, errTransitions error
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		equipment, errEquipment = s.equipment.FindAll(sharedCtx)
	}()

	go func() {
		defer wg.Done()
		bookings, errBookings = s.bookings.FindAll(sharedCtx)
	}()

	go func() {
		defer wg.Done()
		transitions, errTransitions = s.journal.FindUnresolved(sharedCtx)
	}()

	wg.Wait()

	for _, err := range []error{errEquipment, errBookings, errTransitions} {
		if err != nil {
			s.cfg.Log.Error("Failed to load audit inputs", "error", err)
			return nil, apperrors.Internal("Failed to run ledger audit", err)
		}
	}

	report := &AuditReport{CheckedAt: s.now().UTC(), Findings: []Finding{}}

	for _, t := range transitions {
		report.Findings = append(report.Findings, Finding{
			Kind:         FindingUnresolvedTransition,
			EquipmentID:  t.EquipmentID,
			TransitionID: t.ID,
			Detail:       string(t.Kind) + " transition is " + string(t.Status),
		})
	}

	for _, e := range equipment {
		if e.LedgerCorrupt() {
			report.Findings = append(report.Findings, Finding{
				Kind:        FindingCorruptLedger,
				EquipmentID: e.ID,
				Detail:      "remaining duration exceeds total duration",
			})
			continue
		}
		if !ledger.Consistent(e, bookings) {
			report.Findings = append(report.Findings, Finding{
				Kind:         FindingLedgerDrift,
				EquipmentID:  e.ID,
				DriftSeconds: ledger.Drift(e, bookings),
				Detail:       "booked seconds plus remaining differ from total",
			})
		}
	}

	sort.SliceStable(report.Findings, func(i, j int) bool {
		return report.Findings[i].EquipmentID < report.Findings[j].EquipmentID
	})

	s.metrics.ReconciliationFindings(len(report.Findings))
	if report.Clean() {
		s.cfg.Log.Info("Ledger audit clean", "equipment", len(equipment), "bookings", len(bookings))
	} else {
		s.cfg.Log.Warn("Ledger audit found inconsistencies", "findings", len(report.Findings))
	}
	return report, nil
}

// Acknowledge marks an unresolved journal entry as handled by an operator and
// reloads the snapshot so any manual repair becomes visible.
func (s *calendarService) Acknowledge(ctx context.Context, transitionID string) (*model.Transition, error) {
	if transitionID == "" {
		return nil, apperrors.InvalidInput("Transition ID cannot be empty")
	}

	t, err := s.journal.FindByID(ctx, transitionID)
	if err != nil {
		if errors.Is(err, calendarerrors.ErrTransitionNotFound) {
			return nil, apperrors.NotFoundWithID("Transition", transitionID)
		}
		return nil, apperrors.Internal("Failed to retrieve transition", err)
	}
	if !t.Unresolved() {
		return nil, apperrors.Conflict("Transition is already " + string(t.Status))
	}

	if err := s.journal.MarkStatus(ctx, t.ID, model.TransitionResolved, t.BookingID, t.Error); err != nil {
		s.cfg.Log.Error("Failed to acknowledge transition", "transition_id", t.ID, "error", err)
		return nil, apperrors.Internal("Failed to acknowledge transition", err)
	}
	t.Status = model.TransitionResolved
	resolvedAt := s.now().UTC()
	t.ResolvedAt = &resolvedAt

	if err := s.Refresh(ctx, "acknowledge"); err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Transition acknowledged", "transition_id", t.ID, "equipment_id", t.EquipmentID)
	return t, nil
}
