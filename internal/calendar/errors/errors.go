package errors

import (
	"errors"
	"fmt"

	"vistoria/pkg/duration"
)

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrEquipmentNotFound = errors.New("equipment not found in calendar snapshot")

	ErrNotConfirmed = errors.New("unschedule requires confirmation")

	ErrEmptyDuration = errors.New("booking duration rounds to zero seconds")

	ErrStoreWriteFailed = errors.New("store write failed")

	ErrTransitionNotFound = errors.New("transition not found")
)

// Kind names the reason a proposed booking was refused.
type Kind string

const (
	KindCorruptLedger                  Kind = "CorruptLedger"
	KindWeekendNotAllowed              Kind = "WeekendNotAllowed"
	KindDailyCapExceeded               Kind = "DailyCapExceeded"
	KindInsufficientBudget             Kind = "InsufficientBudget"
	KindEquipmentAlreadyBookedThisWeek Kind = "EquipmentAlreadyBookedThisWeek"
)

// Rejection is returned by the booking validator. It carries enough context to
// render a message to the operator.
type Rejection struct {
	Kind Kind

	// AvailableSeconds is set for InsufficientBudget.
	AvailableSeconds int64
	// BookedSeconds is the hours already booked that day, set for DailyCapExceeded.
	BookedSeconds int64
	// ConflictID is the booking that already uses the equipment this week.
	ConflictID string
}

func (r *Rejection) Error() string {
	switch r.Kind {
	case KindCorruptLedger:
		return "remaining time cannot exceed total time"
	case KindWeekendNotAllowed:
		return "bookings are not allowed on weekends"
	case KindDailyCapExceeded:
		return fmt.Sprintf("daily limit exceeded (%.2fh already booked)", duration.Hours(r.BookedSeconds))
	case KindInsufficientBudget:
		return fmt.Sprintf("insufficient remaining time (%s available)", duration.Encode(r.AvailableSeconds))
	case KindEquipmentAlreadyBookedThisWeek:
		return "equipment is already booked this week"
	default:
		return string(r.Kind)
	}
}

// Details is the payload exposed next to validation errors.
func (r *Rejection) Details() map[string]any {
	details := map[string]any{"kind": string(r.Kind)}
	switch r.Kind {
	case KindInsufficientBudget:
		details["available"] = duration.Encode(r.AvailableSeconds)
		details["available_seconds"] = r.AvailableSeconds
	case KindDailyCapExceeded:
		details["booked_seconds"] = r.BookedSeconds
	case KindEquipmentAlreadyBookedThisWeek:
		details["conflict_id"] = r.ConflictID
	}
	return details
}

func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}
