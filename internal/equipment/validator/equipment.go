package validator

import (
	"errors"
	"fmt"
	"strings"

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

type EquipmentValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewEquipmentValidator(log *logger.Logger) *EquipmentValidator {
	v := validator.New()
	v.RegisterStructValidation(validateBudget, model.EquipmentRegistration{})

	log.Info("Equipment validator initialized successfully")

	return &EquipmentValidator{
		validate: v,
		logger:   log,
	}
}

// validateBudget refuses registrations whose hours and minutes add up to nothing.
func validateBudget(sl validator.StructLevel) {
	reg := sl.Current().Interface().(model.EquipmentRegistration)
	if reg.Hours == 0 && reg.Minutes == 0 {
		sl.ReportError(reg.Hours, "Hours", "hours", "valid_budget", "")
	}
}

func (v *EquipmentValidator) ValidateRegistration(reg *model.EquipmentRegistration) error {
	return v.validateStruct(reg)
}

func (v *EquipmentValidator) ValidateToggle(toggle *model.ChecklistToggle) error {
	return v.validateStruct(toggle)
}

func (v *EquipmentValidator) validateStruct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *EquipmentValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "valid_budget":
			message = "hours and minutes must add up to a positive inspection budget"
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
