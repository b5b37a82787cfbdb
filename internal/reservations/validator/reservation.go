package validator

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/timschopinski/hotel-management-system/pkg/logger"
	"github.com/timschopinski/hotel-management-system/pkg/model"
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

type ReservationValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewReservationValidator(log *logger.Logger) *ReservationValidator {
	return &ReservationValidator{
		validate: validator.New(),
		logger:   log,
	}
}

func (v *ReservationValidator) Validate(reservation *model.Reservation) error {
	if err := v.validate.Struct(reservation); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	// Half-open interval: the end day is not part of the stay, so it must
	// be strictly after the start day.
	if !reservation.StartDate.Before(reservation.EndDate) {
		return ValidationErrors{
			ValidationError{
				Field:   "EndDate",
				Message: "end_date must be after start_date",
			},
		}
	}

	return nil
}

func (v *ReservationValidator) ValidateUpdate(update *model.ReservationUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

// ValidateFilter enforces the sort allow-list: listing requests may only
// order by a known field name, never an arbitrary attribute.
func (v *ReservationValidator) ValidateFilter(filter *model.ReservationFilter) error {
	if filter == nil {
		return nil
	}

	if filter.SortBy != "" {
		if _, ok := model.ReservationSortFields[filter.SortBy]; !ok {
			return ValidationErrors{
				ValidationError{
					Field:   "SortBy",
					Message: fmt.Sprintf("sort_by must be one of: %s", strings.Join(sortFieldNames(), ", ")),
				},
			}
		}
	}

	switch filter.SortOrder {
	case "", model.SortAsc, model.SortDesc:
	default:
		return ValidationErrors{
			ValidationError{
				Field:   "SortOrder",
				Message: "sort_order must be either asc or desc",
			},
		}
	}

	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return ValidationErrors{
			ValidationError{
				Field:   "EndDate",
				Message: "end_date filter cannot be before start_date filter",
			},
		}
	}

	return nil
}

func sortFieldNames() []string {
	names := make([]string, 0, len(model.ReservationSortFields))
	for name := range model.ReservationSortFields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (v *ReservationValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid object ID", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
