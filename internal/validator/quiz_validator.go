package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a single request validation failure.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// QuizValidator validates inbound quiz requests.
type QuizValidator struct {
	validate *validator.Validate
}

// New creates a quiz validator with the custom rules registered.
func New() *QuizValidator {
	validate := validator.New()

	qv := &QuizValidator{validate: validate}
	qv.registerRules()

	return qv
}

// Validate validates a request struct. A nil return means the request
// passed.
func (qv *QuizValidator) Validate(s interface{}) ValidationErrors {
	err := qv.validate.Struct(s)
	if err == nil {
		return nil
	}

	var errors ValidationErrors
	for _, fieldErr := range err.(validator.ValidationErrors) {
		errors = append(errors, ValidationError{
			Field:   fieldErr.Field(),
			Message: qv.getErrorMessage(fieldErr),
			Value:   fieldErr.Value(),
			Rule:    fieldErr.Tag(),
		})
	}
	return errors
}

func (qv *QuizValidator) registerRules() {
	// Exam and question ids are upstream database ids, never zero.
	qv.validate.RegisterValidation("entity_id", func(fl validator.FieldLevel) bool {
		return fl.Field().Uint() > 0
	})
}

// getErrorMessage returns user-friendly error messages
func (qv *QuizValidator) getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "entity_id":
		return "must be a positive id"
	default:
		return fmt.Sprintf("failed %s validation", err.Tag())
	}
}
