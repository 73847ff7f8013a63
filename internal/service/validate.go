package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sportevents/backend/internal/model"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("maxbytes", maxBytes); err != nil {
		panic(err)
	}
	return v
}

// maxBytes checks len(field) <= param for string fields. bcrypt's 72 limit
// is in bytes, so multi-byte passwords can pass max=72 and still be too long.
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

type registration struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6,max=72,maxbytes=72"`
}

type passwordChange struct {
	Password string `validate:"required,min=6,max=72,maxbytes=72"`
}

var authMessages = map[string]string{
	"Name":              "Name is required",
	"Email":             "Please provide a valid email",
	"Password.required": "Password is required",
	"Password.min":      "Password must be at least 6 characters",
	"Password.max":      "Password must be at most 72 characters",
	"Password.maxbytes": msgPasswordTooLong,
	"RefreshToken":      "Refresh token is required",
	"Token":             "Reset token is required",
}

var eventMessages = map[string]string{
	"Name.required":            "Event name is required",
	"Name":                     "Event name must be between 3 and 100 characters",
	"Sport.required":           "Sport type is required",
	"Sport":                    "Sport must be one of: " + strings.Join(model.SportTypes, ", "),
	"MaxParticipants.required": "Maximum participants is required",
	"MaxParticipants":          "Maximum participants must be between 2 and 100",
	"StartTime":                "Start time is required",
	"EndTime.required":         "End time is required",
	"EndTime":                  "End time must be after start time",
}

// TranslateValidation turns a validator error (from this package or from
// gin binding) into a ValidationError carrying a client-facing message.
func TranslateValidation(err error) *AppError {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return ValidationError("Invalid request body", err)
	}
	return ValidationError(messageFor(fieldErrs[0]), err)
}

func messageFor(fe validator.FieldError) string {
	table := authMessages
	switch strings.SplitN(fe.StructNamespace(), ".", 2)[0] {
	case "SportEvent", "CreateEventRequest", "UpdateEventRequest":
		table = eventMessages
	}
	if msg, ok := table[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	if msg, ok := table[fe.Field()]; ok {
		return msg
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

func validateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		return TranslateValidation(err)
	}
	return nil
}
