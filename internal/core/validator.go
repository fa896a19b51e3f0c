package core

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"floodaura/internal/types"
)

// errCodeValidationFailed is the generic code for request payloads that fail
// a non-required constraint. The validation_ prefix maps it to 400.
const errCodeValidationFailed types.ErrorCode = "validation_failed"

// Validator wraps go-playground/validator and translates its errors into the
// AppError vocabulary the response layer understands.
type Validator struct {
	logger   *slog.Logger
	validate *validator.Validate
}

// NewValidator creates a new Validator and registers custom validation tags.
func NewValidator(logger *slog.Logger) *Validator {
	v := validator.New()

	// vehicle_class validates against the recognized vehicle classes.
	_ = v.RegisterValidation("vehicle_class", func(fl validator.FieldLevel) bool {
		raw := strings.ToLower(strings.TrimSpace(fl.Field().String()))
		for _, vc := range types.AllVehicleClasses {
			if raw == string(vc) {
				return true
			}
		}
		return false
	})

	return &Validator{
		logger:   logger,
		validate: v,
	}
}

// ValidateStruct checks a decoded request payload against its validate tags.
// Failures return a *types.AppError: missing required fields map to
// validation_missing_required_field; everything else to validation_failed.
// Details carry one entry per offending field.
func (v *Validator) ValidateStruct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// InvalidValidationError: the payload is not a struct. Programming
		// error at the call site, not client input.
		return types.NewAppError(types.ErrCodeInternalUnexpected, "validation target must be a struct", err)
	}

	details := make(map[string]any, len(verrs))
	allRequired := true
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		if fe.Tag() == "required" {
			details[field] = "this field is required"
		} else {
			allRequired = false
			details[field] = "failed constraint: " + fe.Tag()
		}
	}

	code := errCodeValidationFailed
	msg := "request validation failed"
	if allRequired {
		code = types.ErrCodeValidationMissingField
		msg = "missing required field(s)"
	}
	return types.NewAppErrorWithDetails(code, msg, err, details)
}
