package booking

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	return sqlx.NewDb(raw, "sqlmock"), mock
}

var sessionColumns = []string{"session_id", "member_id", "trainer_id", "room_id", "start_time", "end_time"}

func TestRepository_InTxTakesAdvisoryLocksInOrder(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_advisory_xact_lock($1, $2)`)).WithArgs(4, 9).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_advisory_xact_lock($1, $2)`)).WithArgs(3, 1).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_advisory_xact_lock($1, $2)`)).WithArgs(2, 5).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM trainer WHERE trainer_id = $1)`)).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectCommit()

	keys := []ResourceKey{{Kind: KindTrainer, ID: 5}, {Kind: KindRoom, ID: 1}, {Kind: KindMember, ID: 9}}
	err := repo.InTx(context.Background(), keys, func(tx Store) error {
		ok, err := tx.TrainerExists(context.Background(), 5)
		assert.True(t, ok)
		return err
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_InTxRollsBackOnRejection(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_advisory_xact_lock($1, $2)`)).WithArgs(1, 3).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT capacity FROM class WHERE class_id = $1 FOR UPDATE`)).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM class_registration WHERE class_id = $1`)).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	err := repo.InTx(context.Background(), []ResourceKey{{Kind: KindClass, ID: 3}}, func(tx Store) error {
		capacity, err := tx.GetClassCapacity(context.Background(), 3)
		require.NoError(t, err)
		count, err := tx.CountRegistrations(context.Background(), 3)
		require.NoError(t, err)
		if count >= capacity {
			return &ConflictError{Reason: ErrCapacityExceeded}
		}
		return nil
	})

	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetClassCapacity_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT capacity FROM class WHERE class_id = $1 FOR UPDATE`)).
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"capacity"}))

	_, err := repo.GetClassCapacity(context.Background(), 42)

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, ResourceKey{Kind: KindClass, ID: 42}, nf.Resource)
}

func TestRepository_InsertRegistration(t *testing.T) {
	now := time.Date(2025, 11, 3, 8, 0, 0, 0, time.UTC)
	insert := regexp.QuoteMeta(`INSERT INTO class_registration (member_id, class_id, registered_at) SELECT $1, c.class_id, $3 FROM class c`)

	t.Run("success", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewRepository(db)

		mock.ExpectQuery(insert).
			WithArgs(2, 3, now).
			WillReturnRows(sqlmock.NewRows([]string{"registration_id", "member_id", "class_id", "registered_at"}).
				AddRow(11, 2, 3, now))

		reg, err := repo.InsertRegistration(context.Background(), 2, 3, now)
		require.NoError(t, err)
		assert.Equal(t, 11, reg.ID)
		assert.Equal(t, now, reg.RegisteredAt)
	})

	t.Run("unique violation is a duplicate", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewRepository(db)

		mock.ExpectQuery(insert).
			WithArgs(2, 3, now).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "class_registration_member_class_key"})

		_, err := repo.InsertRegistration(context.Background(), 2, 3, now)
		assert.ErrorIs(t, err, ErrDuplicateRegistration)
	})

	t.Run("missing member", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewRepository(db)

		mock.ExpectQuery(insert).
			WithArgs(2, 3, now).
			WillReturnError(&pq.Error{Code: "23503", Constraint: "class_registration_member_id_fkey"})

		_, err := repo.InsertRegistration(context.Background(), 2, 3, now)
		var nf *NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, KindMember, nf.Resource.Kind)
	})

	t.Run("full class selects no row", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewRepository(db)

		mock.ExpectQuery(insert).
			WithArgs(2, 3, now).
			WillReturnRows(sqlmock.NewRows([]string{"registration_id", "member_id", "class_id", "registered_at"}))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM class WHERE class_id = $1)`)).
			WithArgs(3).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		_, err := repo.InsertRegistration(context.Background(), 2, 3, now)
		assert.ErrorIs(t, err, ErrCapacityExceeded)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing class selects no row", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewRepository(db)

		mock.ExpectQuery(insert).
			WithArgs(2, 3, now).
			WillReturnRows(sqlmock.NewRows([]string{"registration_id", "member_id", "class_id", "registered_at"}))
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM class WHERE class_id = $1)`)).
			WithArgs(3).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		_, err := repo.InsertRegistration(context.Background(), 2, 3, now)
		var nf *NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, ResourceKey{Kind: KindClass, ID: 3}, nf.Resource)
	})

	t.Run("other errors pass through", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewRepository(db)
		boom := errors.New("connection reset")

		mock.ExpectQuery(insert).WithArgs(2, 3, now).WillReturnError(boom)

		_, err := repo.InsertRegistration(context.Background(), 2, 3, now)
		assert.ErrorIs(t, err, boom)
	})
}

func TestRepository_FindOverlapping(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRepository(db)
	start, end := at(10, 30), at(11, 30)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM ptsession WHERE room_id = $1 AND start_time < $3 AND end_time > $2`)).
		WithArgs(2, start, end).
		WillReturnRows(sqlmock.NewRows(sessionColumns).AddRow(7, 1, 5, 2, at(10, 0), at(11, 0)))

	sessions, err := repo.FindOverlapping(context.Background(), KindRoom, 2, start, end)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, 7, sessions[0].ID)

	_, err = repo.FindOverlapping(context.Background(), KindClass, 2, start, end)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_InsertPTSession_ConstraintMapping(t *testing.T) {
	session := PTSession{MemberID: 1, TrainerID: 5, RoomID: 2, StartTime: at(10, 0), EndTime: at(11, 0)}

	tests := []struct {
		name     string
		pqErr    *pq.Error
		expected error
		resource ResourceKey
	}{
		{"trainer exclusion", &pq.Error{Code: "23P01", Constraint: "ptsession_trainer_no_overlap"}, ErrTrainerUnavailable, ResourceKey{Kind: KindTrainer, ID: 5}},
		{"room exclusion", &pq.Error{Code: "23P01", Constraint: "ptsession_room_no_overlap"}, ErrRoomUnavailable, ResourceKey{Kind: KindRoom, ID: 2}},
		{"member exclusion", &pq.Error{Code: "23P01", Constraint: "ptsession_member_no_overlap"}, ErrMemberDoubleBooked, ResourceKey{Kind: KindMember, ID: 1}},
		{"interval check", &pq.Error{Code: "23514", Constraint: "ptsession_interval_check"}, ErrInvalidInterval, ResourceKey{}},
		{"missing room", &pq.Error{Code: "23503", Constraint: "ptsession_room_id_fkey"}, ErrNotFound, ResourceKey{Kind: KindRoom, ID: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			repo := NewRepository(db)

			mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO ptsession`)).
				WithArgs(1, 5, 2, session.StartTime, session.EndTime).
				WillReturnError(tt.pqErr)

			_, err := repo.InsertPTSession(context.Background(), session)
			require.ErrorIs(t, err, tt.expected)

			var conflict *ConflictError
			if errors.As(err, &conflict) {
				assert.Equal(t, tt.resource, conflict.Resource)
			}
			var nf *NotFoundError
			if errors.As(err, &nf) {
				assert.Equal(t, tt.resource, nf.Resource)
			}
		})
	}
}

func TestRepository_GetLatestMetric(t *testing.T) {
	query := regexp.QuoteMeta(`ORDER BY measured_at DESC, metric_id DESC LIMIT 1`)

	t.Run("latest row", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewRepository(db)
		measured := time.Date(2025, 11, 3, 7, 0, 0, 0, time.UTC)

		mock.ExpectQuery(query).
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"metric_id", "member_id", "metric_type", "metric_value", "measured_at"}).
				AddRow(3, 1, "weight", 147.0, measured))

		m, err := repo.GetLatestMetric(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, 147.0, m.MetricValue)
		assert.Equal(t, "weight", m.MetricType)
	})

	t.Run("no metrics", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := NewRepository(db)

		mock.ExpectQuery(query).
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"metric_id", "member_id", "metric_type", "metric_value", "measured_at"}))

		m, err := repo.GetLatestMetric(context.Background(), 1)
		require.NoError(t, err)
		assert.Nil(t, m)
	})
}

func TestRepository_Counts(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRepository(db)
	now := at(8, 0)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM class_registration WHERE member_id = $1`)).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM ptsession WHERE member_id = $1 AND start_time > $2`)).
		WithArgs(1, now).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	classes, err := repo.CountRegistrationsForMember(context.Background(), 1)
	require.NoError(t, err)
	sessions, err := repo.CountFuturePTSessions(context.Background(), 1, now)
	require.NoError(t, err)

	assert.Equal(t, 4, classes)
	assert.Equal(t, 2, sessions)
	assert.NoError(t, mock.ExpectationsWereMet())
}
