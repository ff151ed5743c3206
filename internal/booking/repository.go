package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fitclub/internal/db"

	"github.com/jmoiron/sqlx"
)

// lockSpaces gives each resource kind its own pg_advisory_xact_lock key space.
var lockSpaces = map[ResourceKind]int{
	KindClass:   1,
	KindTrainer: 2,
	KindRoom:    3,
	KindMember:  4,
}

var overlapColumns = map[ResourceKind]string{
	KindTrainer: "trainer_id",
	KindRoom:    "room_id",
	KindMember:  "member_id",
}

var exclusionReasons = map[string]struct {
	kind   ResourceKind
	reason error
}{
	"ptsession_trainer_no_overlap": {KindTrainer, ErrTrainerUnavailable},
	"ptsession_room_no_overlap":    {KindRoom, ErrRoomUnavailable},
	"ptsession_member_no_overlap":  {KindMember, ErrMemberDoubleBooked},
}

// Repository is the postgres Store.
type Repository struct {
	db *sqlx.DB
	q  sqlx.ExtContext
}

func NewRepository(conn *sqlx.DB) *Repository {
	return &Repository{db: conn, q: conn}
}

func (r *Repository) InTx(ctx context.Context, lockKeys []ResourceKey, fn func(Store) error) error {
	if _, inTx := r.q.(*sqlx.Tx); inTx {
		return fn(r)
	}

	return db.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for _, key := range SortKeys(lockKeys) {
			if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1, $2)`, lockSpaces[key.Kind], key.ID); err != nil {
				return fmt.Errorf("advisory lock %s: %w", key, err)
			}
		}
		return fn(&Repository{db: r.db, q: tx})
	})
}

func (r *Repository) MemberExists(ctx context.Context, memberID int) (bool, error) {
	return db.Exists(ctx, r.q, `SELECT EXISTS(SELECT 1 FROM member WHERE member_id = $1)`, memberID)
}

func (r *Repository) TrainerExists(ctx context.Context, trainerID int) (bool, error) {
	return db.Exists(ctx, r.q, `SELECT EXISTS(SELECT 1 FROM trainer WHERE trainer_id = $1)`, trainerID)
}

func (r *Repository) RoomExists(ctx context.Context, roomID int) (bool, error) {
	return db.Exists(ctx, r.q, `SELECT EXISTS(SELECT 1 FROM room WHERE room_id = $1)`, roomID)
}

func (r *Repository) GetClassCapacity(ctx context.Context, classID int) (int, error) {
	var capacity int
	err := sqlx.GetContext(ctx, r.q, &capacity, `SELECT capacity FROM class WHERE class_id = $1 FOR UPDATE`, classID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, &NotFoundError{Resource: ResourceKey{Kind: KindClass, ID: classID}}
	}
	return capacity, err
}

func (r *Repository) CountRegistrations(ctx context.Context, classID int) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, r.q, &count, `SELECT COUNT(*) FROM class_registration WHERE class_id = $1`, classID)
	return count, err
}

func (r *Repository) HasRegistration(ctx context.Context, memberID, classID int) (bool, error) {
	return db.Exists(ctx, r.q,
		`SELECT EXISTS(SELECT 1 FROM class_registration WHERE member_id = $1 AND class_id = $2)`,
		memberID, classID)
}

func (r *Repository) InsertRegistration(ctx context.Context, memberID, classID int, at time.Time) (*ClassRegistration, error) {
	// the capacity guard lives in the statement itself, so a caller that
	// skipped the count still cannot overbook
	query := `
		INSERT INTO class_registration (member_id, class_id, registered_at)
		SELECT $1, c.class_id, $3
		FROM class c
		WHERE c.class_id = $2
		  AND (SELECT COUNT(*) FROM class_registration r WHERE r.class_id = c.class_id) < c.capacity
		RETURNING registration_id, member_id, class_id, registered_at
	`

	var reg ClassRegistration
	err := sqlx.GetContext(ctx, r.q, &reg, query, memberID, classID, at)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.noSeat(ctx, classID)
		}
		if _, ok := db.PgError(err, db.CodeUniqueViolation); ok {
			return nil, &ConflictError{Reason: ErrDuplicateRegistration, Resource: ResourceKey{Kind: KindClass, ID: classID}}
		}
		if pqErr, ok := db.PgError(err, db.CodeForeignKeyViolation); ok {
			if pqErr.Constraint == "class_registration_member_id_fkey" {
				return nil, &NotFoundError{Resource: ResourceKey{Kind: KindMember, ID: memberID}}
			}
			return nil, &NotFoundError{Resource: ResourceKey{Kind: KindClass, ID: classID}}
		}
		return nil, err
	}

	return &reg, nil
}

// noSeat explains an insert that selected no class row.
func (r *Repository) noSeat(ctx context.Context, classID int) error {
	classKey := ResourceKey{Kind: KindClass, ID: classID}
	ok, err := db.Exists(ctx, r.q, `SELECT EXISTS(SELECT 1 FROM class WHERE class_id = $1)`, classID)
	if err != nil {
		return err
	}
	if !ok {
		return &NotFoundError{Resource: classKey}
	}
	return &ConflictError{Reason: ErrCapacityExceeded, Resource: classKey}
}

func (r *Repository) FindOverlapping(ctx context.Context, kind ResourceKind, id int, start, end time.Time) ([]PTSession, error) {
	column, ok := overlapColumns[kind]
	if !ok {
		return nil, fmt.Errorf("no session column for resource kind %q", kind)
	}

	query := fmt.Sprintf(`
		SELECT session_id, member_id, trainer_id, room_id, start_time, end_time
		FROM ptsession
		WHERE %s = $1 AND start_time < $3 AND end_time > $2
		ORDER BY start_time
	`, column)

	var sessions []PTSession
	err := sqlx.SelectContext(ctx, r.q, &sessions, query, id, start, end)
	return sessions, err
}

func (r *Repository) InsertPTSession(ctx context.Context, session PTSession) (*PTSession, error) {
	query := `
		INSERT INTO ptsession (member_id, trainer_id, room_id, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING session_id, member_id, trainer_id, room_id, start_time, end_time
	`

	var created PTSession
	err := sqlx.GetContext(ctx, r.q, &created, query,
		session.MemberID, session.TrainerID, session.RoomID, session.StartTime, session.EndTime)
	if err != nil {
		return nil, ptSessionError(err, session)
	}

	return &created, nil
}

// ptSessionError translates constraint violations raised by the ptsession
// table into the matching booking errors.
func ptSessionError(err error, session PTSession) error {
	if pqErr, ok := db.PgError(err, db.CodeExclusionViolation); ok {
		if ex, known := exclusionReasons[pqErr.Constraint]; known {
			return &ConflictError{
				Reason:   ex.reason,
				Resource: ResourceKey{Kind: ex.kind, ID: session.ResourceID(ex.kind)},
			}
		}
	}
	if _, ok := db.PgError(err, db.CodeCheckViolation); ok {
		return &ValidationError{Field: "end_time", Err: ErrInvalidInterval}
	}
	if pqErr, ok := db.PgError(err, db.CodeForeignKeyViolation); ok {
		for kind, column := range overlapColumns {
			if pqErr.Constraint == "ptsession_"+column+"_fkey" {
				return &NotFoundError{Resource: ResourceKey{Kind: kind, ID: session.ResourceID(kind)}}
			}
		}
	}
	return err
}

func (r *Repository) GetLatestMetric(ctx context.Context, memberID int) (*HealthMetric, error) {
	query := `
		SELECT metric_id, member_id, metric_type, metric_value, measured_at
		FROM health_metric
		WHERE member_id = $1
		ORDER BY measured_at DESC, metric_id DESC
		LIMIT 1
	`

	var m HealthMetric
	err := sqlx.GetContext(ctx, r.q, &m, query, memberID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repository) CountRegistrationsForMember(ctx context.Context, memberID int) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, r.q, &count, `SELECT COUNT(*) FROM class_registration WHERE member_id = $1`, memberID)
	return count, err
}

func (r *Repository) CountFuturePTSessions(ctx context.Context, memberID int, now time.Time) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, r.q, &count,
		`SELECT COUNT(*) FROM ptsession WHERE member_id = $1 AND start_time > $2`, memberID, now)
	return count, err
}
