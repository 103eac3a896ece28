package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	calendarerrors "vistoria/internal/calendar/errors"
	"vistoria/internal/calendar/rules"
	"vistoria/pkg/logger"
	"vistoria/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Proposal is a booking under consideration. ExcludedID is set when an
// existing booking is being moved so it does not conflict with itself.
type Proposal struct {
	Equipment       *model.Equipment
	Start           time.Time
	DurationSeconds int64
	ExcludedID      string
}

type BookingValidator struct {
	validate        *validator.Validate
	logger          *logger.Logger
	location        *time.Location
	dailyCapSeconds int64
}

func NewBookingValidator(log *logger.Logger, location *time.Location, dailyCapSeconds int64) *BookingValidator {
	if location == nil {
		location = time.UTC
	}
	if dailyCapSeconds <= 0 {
		dailyCapSeconds = rules.DefaultDailyCapSeconds
	}

	log.Info("Booking validator initialized successfully",
		"time_zone", location.String(),
		"daily_cap_seconds", dailyCapSeconds,
	)

	return &BookingValidator{
		validate:        validator.New(),
		logger:          log,
		location:        location,
		dailyCapSeconds: dailyCapSeconds,
	}
}

func (v *BookingValidator) Location() *time.Location {
	return v.location
}

func (v *BookingValidator) ValidateSchedule(req *model.ScheduleRequest) error {
	return v.validateStruct(req)
}

func (v *BookingValidator) ValidateMove(req *model.MoveRequest) error {
	return v.validateStruct(req)
}

// Check runs the booking constraints in order and stops at the first failure.
// It returns nil when the proposal is accepted, otherwise a *calendarerrors.Rejection.
func (v *BookingValidator) Check(p Proposal, bookings []*model.Booking) error {
	eq := p.Equipment
	if eq.LedgerCorrupt() {
		return &calendarerrors.Rejection{Kind: calendarerrors.KindCorruptLedger}
	}

	start := p.Start.In(v.location)
	if rules.IsWeekend(start) {
		return &calendarerrors.Rejection{Kind: calendarerrors.KindWeekendNotAllowed}
	}

	booked := rules.BookedOnDay(bookings, start, p.ExcludedID)
	if rules.ExceedsDailyCap(booked, p.DurationSeconds, v.dailyCapSeconds) {
		return &calendarerrors.Rejection{
			Kind:          calendarerrors.KindDailyCapExceeded,
			BookedSeconds: booked,
		}
	}

	available := rules.AvailableBudget(eq, bookings, p.ExcludedID)
	if rules.ExceedsBudget(p.DurationSeconds, available) {
		return &calendarerrors.Rejection{
			Kind:             calendarerrors.KindInsufficientBudget,
			AvailableSeconds: available,
		}
	}

	if conflict, ok := rules.BookedThisWeek(bookings, eq.ID, start, p.ExcludedID); ok {
		return &calendarerrors.Rejection{
			Kind:       calendarerrors.KindEquipmentAlreadyBookedThisWeek,
			ConflictID: conflict.ID,
		}
	}

	return nil
}

func (v *BookingValidator) validateStruct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "gtfield":
			message = fmt.Sprintf("%s must be after %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
