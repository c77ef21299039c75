package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/course-marketplace/internal/course"
)

const maxRequestBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "notblank", validators.NotBlank)
	mustRegister(v, "maxbytes", maxBytes)
	mustRegister(v, "cents", wholeCents)
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("failed to register %q validation: %v", tag, err))
	}
}

// maxBytes limits the encoded length of a string, unlike max which counts runes.
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

func wholeCents(fl validator.FieldLevel) bool {
	return course.WholeCents(fl.Field().Float())
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationErrorResponse struct {
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors"`
}

type requestError struct {
	status  int
	message string
	details []FieldError
}

func (e *requestError) Error() string {
	return e.message
}

func (e *requestError) write(w http.ResponseWriter) {
	if len(e.details) > 0 {
		respondWithJSON(w, e.status, ValidationErrorResponse{Message: e.message, Errors: e.details})
		return
	}
	respondWithError(w, e.status, e.message)
}

// decodeRequest reads a JSON body into T and validates it. It returns either
// the typed value or a requestError ready to be written to the client.
func decodeRequest[T any](r *http.Request) (T, *requestError) {
	var payload T

	decoder := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&payload); err != nil {
		log.Warn().Err(err).Str("path", r.URL.Path).Msg("Failed to decode request body")
		return payload, &requestError{status: http.StatusBadRequest, message: "Invalid request payload"}
	}

	if err := validate.Struct(payload); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return payload, &requestError{
				status:  http.StatusBadRequest,
				message: "Validation failed",
				details: formatValidationErrors(validationErrors),
			}
		}
		log.Error().Err(err).Type("validation_error_type", err).Msg("Unexpected error type during validation")
		return payload, &requestError{status: http.StatusInternalServerError, message: "Internal validation error"}
	}

	return payload, nil
}

func formatValidationErrors(errs validator.ValidationErrors) []FieldError {
	details := make([]FieldError, 0, len(errs))
	for _, fe := range errs {
		details = append(details, FieldError{Field: fe.Field(), Message: validationMessage(fe)})
	}
	return details
}

func validationMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Field '%s' is required", field)
	case "email":
		return fmt.Sprintf("Field '%s' must be a valid email address", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Field '%s' must be at least %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("Field '%s' must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Field '%s' must be at most %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("Field '%s' must be at most %s", field, fe.Param())
	case "maxbytes":
		return fmt.Sprintf("Field '%s' must be at most %s bytes long", field, fe.Param())
	case "notblank":
		return fmt.Sprintf("Field '%s' must not be blank", field)
	case "cents":
		return fmt.Sprintf("Field '%s' must have at most 2 decimal places", field)
	case "gt":
		return fmt.Sprintf("Field '%s' must be greater than %s", field, fe.Param())
	case "url":
		return fmt.Sprintf("Field '%s' must be a valid URL", field)
	case "uuid":
		return fmt.Sprintf("Field '%s' must be a valid UUID", field)
	case "oneof":
		return fmt.Sprintf("Field '%s' must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("Field '%s' is invalid", field)
	}
}
