package booking

import (
	"context"
	"time"
)

// Store is the persistence contract used by the booking service and the
// member dashboard. Implementations must enforce registration uniqueness,
// class capacity and PT-session exclusion at insert time and report
// violations as *ConflictError. The capacity guard is exact only inside
// InTx holding the class key; outside it two inserts may still race.
type Store interface {
	MemberExists(ctx context.Context, memberID int) (bool, error)
	TrainerExists(ctx context.Context, trainerID int) (bool, error)
	RoomExists(ctx context.Context, roomID int) (bool, error)

	// GetClassCapacity returns a *NotFoundError when the class does not exist.
	GetClassCapacity(ctx context.Context, classID int) (int, error)
	CountRegistrations(ctx context.Context, classID int) (int, error)
	HasRegistration(ctx context.Context, memberID, classID int) (bool, error)
	InsertRegistration(ctx context.Context, memberID, classID int, at time.Time) (*ClassRegistration, error)

	// FindOverlapping returns sessions held by the resource that overlap [start, end).
	FindOverlapping(ctx context.Context, kind ResourceKind, id int, start, end time.Time) ([]PTSession, error)
	InsertPTSession(ctx context.Context, session PTSession) (*PTSession, error)

	// GetLatestMetric returns nil, nil when the member has no metrics.
	GetLatestMetric(ctx context.Context, memberID int) (*HealthMetric, error)
	CountRegistrationsForMember(ctx context.Context, memberID int) (int, error)
	CountFuturePTSessions(ctx context.Context, memberID int, now time.Time) (int, error)

	// InTx runs fn against a Store bound to a single transaction holding
	// exclusive access to lockKeys. Nothing fn wrote survives an error.
	InTx(ctx context.Context, lockKeys []ResourceKey, fn func(Store) error) error
}
