package booking

import (
	"errors"
	"fmt"
	"net/http"
)

// Error categories. Every error returned by the service matches exactly one of them.
var (
	ErrValidation     = errors.New("validation failed")
	ErrConflict       = errors.New("booking conflict")
	ErrNotFound       = errors.New("not found")
	ErrInfrastructure = errors.New("infrastructure failure")
)

// Reasons carried inside the category errors.
var (
	ErrInvalidInterval       = errors.New("end time must be after start time")
	ErrInvalidID             = errors.New("identifier must be a positive integer")
	ErrCapacityExceeded      = errors.New("class is at full capacity")
	ErrDuplicateRegistration = errors.New("member is already registered for this class")
	ErrTrainerUnavailable    = errors.New("trainer already has a session in this time slot")
	ErrRoomUnavailable       = errors.New("room is already booked in this time slot")
	ErrMemberDoubleBooked    = errors.New("member already has a session in this time slot")
	ErrLockTimeout           = errors.New("timed out waiting for resource lock")
)

type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() []error {
	return []error{ErrValidation, e.Err}
}

// ConflictError is a rejection caused by the current state of a resource.
// SessionID is set when an existing PT session caused the conflict.
type ConflictError struct {
	Reason    error
	Resource  ResourceKey
	SessionID int
}

func (e *ConflictError) Error() string {
	if e.SessionID > 0 {
		return fmt.Sprintf("%v (%s, session %d)", e.Reason, e.Resource, e.SessionID)
	}
	return fmt.Sprintf("%v (%s)", e.Reason, e.Resource)
}

func (e *ConflictError) Unwrap() []error {
	return []error{ErrConflict, e.Reason}
}

type NotFoundError struct {
	Resource ResourceKey
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource.Kind, e.Resource.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// InfrastructureError wraps storage, lock or transport failures. The cause is
// kept intact for logs.
type InfrastructureError struct {
	Op  string
	Err error
}

func (e *InfrastructureError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InfrastructureError) Unwrap() []error {
	return []error{ErrInfrastructure, e.Err}
}

// classify passes categorized errors through and wraps anything else as an
// infrastructure failure.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrNotFound) || errors.Is(err, ErrInfrastructure) {
		return err
	}
	return &InfrastructureError{Op: op, Err: err}
}

// Code returns the stable machine-readable code for err.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInterval):
		return "INVALID_INTERVAL"
	case errors.Is(err, ErrCapacityExceeded):
		return "CAPACITY_EXCEEDED"
	case errors.Is(err, ErrDuplicateRegistration):
		return "DUPLICATE_REGISTRATION"
	case errors.Is(err, ErrTrainerUnavailable):
		return "TRAINER_UNAVAILABLE"
	case errors.Is(err, ErrRoomUnavailable):
		return "ROOM_UNAVAILABLE"
	case errors.Is(err, ErrMemberDoubleBooked):
		return "MEMBER_DOUBLE_BOOKED"
	case errors.Is(err, ErrValidation):
		return "VALIDATION_ERROR"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrLockTimeout):
		return "LOCK_TIMEOUT"
	default:
		return "INFRASTRUCTURE_ERROR"
	}
}

// HTTPStatus maps an error category to a response status.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrLockTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
