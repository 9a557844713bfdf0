package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ErrorResponse interface {
	error
	Code() int
}

type SimpleError struct {
	Status  int    `json:"-"`
	Kind    string `json:"error"`
	Message string `json:"message"`
}

func (s *SimpleError) Code() int     { return s.Status }
func (s *SimpleError) Error() string { return s.Message }

type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

type ValidationError struct {
	SimpleError
	Fields []FieldError `json:"fields"`
}

func NewMissingParamError(param string) *SimpleError {
	return &SimpleError{
		Status:  http.StatusBadRequest,
		Kind:    "missing_param",
		Message: fmt.Sprintf("Missing required parameter '%s'", param),
	}
}

// FromValidationError converts validator output into a 400 response listing
// every failing field. Any other error becomes MalformedBodyError.
func FromValidationError(err error) ErrorResponse {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return MalformedBodyError
	}

	fields := make([]FieldError, len(verrs))
	names := make([]string, len(verrs))
	for i, fe := range verrs {
		fields[i] = FieldError{Field: fe.Field(), Rule: fe.Tag()}
		names[i] = fe.Field()
	}
	return &ValidationError{
		SimpleError: SimpleError{
			Status:  http.StatusBadRequest,
			Kind:    "validation_failed",
			Message: "Invalid fields: " + strings.Join(names, ", "),
		},
		Fields: fields,
	}
}

var (
	MalformedBodyError = &SimpleError{Status: http.StatusBadRequest, Kind: "malformed_body", Message: "Could not parse request body"}

	InvalidAuthTokenError       = &SimpleError{Status: http.StatusUnauthorized, Kind: "authentication_required", Message: "Invalid or expired authentication token"}
	AuthenticationRequiredError = &SimpleError{Status: http.StatusUnauthorized, Kind: "authentication_required", Message: "Authentication is required"}
	ForbiddenError              = &SimpleError{Status: http.StatusForbidden, Kind: "forbidden", Message: "You are not allowed to perform this action"}
	NotFoundError               = &SimpleError{Status: http.StatusNotFound, Kind: "not_found", Message: "Resource not found"}
	DoctorNotFoundError         = &SimpleError{Status: http.StatusNotFound, Kind: "not_found", Message: "Doctor not found"}
	PatientNotFoundError        = &SimpleError{Status: http.StatusNotFound, Kind: "not_found", Message: "Patient profile not found"}

	SlotAlreadyBookedError  = &SimpleError{Status: http.StatusConflict, Kind: "slot_already_booked", Message: "This slot has just been booked by someone else"}
	AppointmentNotActiveErr = &SimpleError{Status: http.StatusConflict, Kind: "appointment_not_active", Message: "Appointment is not confirmed"}
	AppointmentInPastError  = &SimpleError{Status: http.StatusUnprocessableEntity, Kind: "appointment_in_past", Message: "Appointment must be in the future"}
	SlotNotOfferedError     = &SimpleError{Status: http.StatusUnprocessableEntity, Kind: "slot_not_offered", Message: "The doctor does not offer this slot"}

	IllegalStateError     = &SimpleError{Status: http.StatusInternalServerError, Kind: "illegal_state", Message: "Doctor data is not loaded"}
	InternalServerError   = &SimpleError{Status: http.StatusInternalServerError, Kind: "internal_error", Message: "Internal server error"}
	StoreUnavailableError = &SimpleError{Status: http.StatusServiceUnavailable, Kind: "store_unavailable", Message: "Data store is unavailable, please retry"}
)
