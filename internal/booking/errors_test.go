package booking

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCategories(t *testing.T) {
	classKey := ResourceKey{Kind: KindClass, ID: 4}

	tests := []struct {
		name     string
		err      error
		category error
		code     string
		status   int
	}{
		{"invalid interval", &ValidationError{Field: "end_time", Err: ErrInvalidInterval}, ErrValidation, "INVALID_INTERVAL", http.StatusBadRequest},
		{"invalid id", &ValidationError{Field: "class_id", Err: ErrInvalidID}, ErrValidation, "VALIDATION_ERROR", http.StatusBadRequest},
		{"capacity", &ConflictError{Reason: ErrCapacityExceeded, Resource: classKey}, ErrConflict, "CAPACITY_EXCEEDED", http.StatusConflict},
		{"duplicate", &ConflictError{Reason: ErrDuplicateRegistration, Resource: classKey}, ErrConflict, "DUPLICATE_REGISTRATION", http.StatusConflict},
		{"trainer", &ConflictError{Reason: ErrTrainerUnavailable}, ErrConflict, "TRAINER_UNAVAILABLE", http.StatusConflict},
		{"room", &ConflictError{Reason: ErrRoomUnavailable}, ErrConflict, "ROOM_UNAVAILABLE", http.StatusConflict},
		{"member", &ConflictError{Reason: ErrMemberDoubleBooked}, ErrConflict, "MEMBER_DOUBLE_BOOKED", http.StatusConflict},
		{"not found", &NotFoundError{Resource: classKey}, ErrNotFound, "NOT_FOUND", http.StatusNotFound},
		{"lock timeout", &InfrastructureError{Op: "acquire", Err: fmt.Errorf("%w: class:4", ErrLockTimeout)}, ErrInfrastructure, "LOCK_TIMEOUT", http.StatusServiceUnavailable},
		{"storage", &InfrastructureError{Op: "insert", Err: errors.New("connection reset")}, ErrInfrastructure, "INFRASTRUCTURE_ERROR", http.StatusInternalServerError},
	}

	categories := []error{ErrValidation, ErrConflict, ErrNotFound, ErrInfrastructure}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, c := range categories {
				assert.Equal(t, c == tt.category, errors.Is(tt.err, c), "category %v", c)
			}
			assert.Equal(t, tt.code, Code(tt.err))
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	err := &ConflictError{Reason: ErrTrainerUnavailable, Resource: ResourceKey{Kind: KindTrainer, ID: 5}, SessionID: 9}
	assert.Contains(t, err.Error(), "trainer:5")
	assert.Contains(t, err.Error(), "session 9")

	nf := &NotFoundError{Resource: ResourceKey{Kind: KindRoom, ID: 2}}
	assert.Equal(t, "room 2 not found", nf.Error())
}

func TestClassify(t *testing.T) {
	assert.Nil(t, classify("op", nil))

	conflict := &ConflictError{Reason: ErrCapacityExceeded}
	assert.Same(t, conflict, classify("op", conflict))

	wrapped := classify("count registrations", errors.New("driver: bad connection"))
	var infra *InfrastructureError
	assert.ErrorAs(t, wrapped, &infra)
	assert.Equal(t, "count registrations", infra.Op)
}

func TestSortKeys(t *testing.T) {
	keys := []ResourceKey{
		{Kind: KindTrainer, ID: 5},
		{Kind: KindMember, ID: 9},
		{Kind: KindRoom, ID: 1},
		{Kind: KindMember, ID: 2},
		{Kind: KindTrainer, ID: 5},
	}

	assert.Equal(t, []ResourceKey{
		{Kind: KindMember, ID: 2},
		{Kind: KindMember, ID: 9},
		{Kind: KindRoom, ID: 1},
		{Kind: KindTrainer, ID: 5},
	}, SortKeys(keys))
	assert.Equal(t, "trainer:5", keys[0].String())
}
