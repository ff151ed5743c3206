package booking

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) MemberExists(ctx context.Context, memberID int) (bool, error) {
	args := m.Called(ctx, memberID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) TrainerExists(ctx context.Context, trainerID int) (bool, error) {
	args := m.Called(ctx, trainerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) RoomExists(ctx context.Context, roomID int) (bool, error) {
	args := m.Called(ctx, roomID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) GetClassCapacity(ctx context.Context, classID int) (int, error) {
	args := m.Called(ctx, classID)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) CountRegistrations(ctx context.Context, classID int) (int, error) {
	args := m.Called(ctx, classID)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) HasRegistration(ctx context.Context, memberID, classID int) (bool, error) {
	args := m.Called(ctx, memberID, classID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) InsertRegistration(ctx context.Context, memberID, classID int, at time.Time) (*ClassRegistration, error) {
	args := m.Called(ctx, memberID, classID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ClassRegistration), args.Error(1)
}

func (m *MockStore) FindOverlapping(ctx context.Context, kind ResourceKind, id int, start, end time.Time) ([]PTSession, error) {
	args := m.Called(ctx, kind, id, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]PTSession), args.Error(1)
}

func (m *MockStore) InsertPTSession(ctx context.Context, session PTSession) (*PTSession, error) {
	args := m.Called(ctx, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PTSession), args.Error(1)
}

func (m *MockStore) GetLatestMetric(ctx context.Context, memberID int) (*HealthMetric, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*HealthMetric), args.Error(1)
}

func (m *MockStore) CountRegistrationsForMember(ctx context.Context, memberID int) (int, error) {
	args := m.Called(ctx, memberID)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) CountFuturePTSessions(ctx context.Context, memberID int, now time.Time) (int, error) {
	args := m.Called(ctx, memberID, now)
	return args.Int(0), args.Error(1)
}

// InTx runs fn against the mock itself so expectations cover the whole unit of work.
func (m *MockStore) InTx(ctx context.Context, lockKeys []ResourceKey, fn func(Store) error) error {
	args := m.Called(ctx, lockKeys)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(m)
}
