package member

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var memberColumns = []string{"member_id", "name", "dob", "gender", "email", "phone", "password_hash", "created_at"}

func setupMemberMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestCreateAndFindMember(t *testing.T) {
	repo, mock := setupMemberMock(t)
	now := time.Now()
	dob := time.Date(1990, 4, 12, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO member (name, dob, gender, email, phone, password_hash) VALUES ($1, $2, $3, $4, $5, $6)")).
		WithArgs("Alice", dob, nil, "a@example.com", nil, "hash").
		WillReturnRows(sqlmock.NewRows(memberColumns).AddRow(1, "Alice", dob, nil, "a@example.com", nil, "hash", now))

	m, err := repo.Create(context.Background(), Member{Name: "Alice", DOB: dob, Email: "a@example.com", PasswordHash: "hash"})
	require.NoError(t, err)
	require.Equal(t, 1, m.ID)
	assert.Nil(t, m.Gender)

	mock.ExpectQuery(regexp.QuoteMeta("FROM member WHERE member_id = $1")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(memberColumns).AddRow(1, "Alice", dob, "female", "a@example.com", "555-0100", "hash", now))

	found, err := repo.FindByID(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, found.Gender)
	assert.Equal(t, "female", *found.Gender)

	mock.ExpectQuery(regexp.QuoteMeta("FROM member WHERE member_id = $1")).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows(memberColumns))

	_, err = repo.FindByID(context.Background(), 2)
	assert.ErrorIs(t, err, ErrMemberNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateMember_DuplicateEmail(t *testing.T) {
	repo, mock := setupMemberMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO member")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "member_email_key"})

	_, err := repo.Create(context.Background(), Member{Name: "Alice", Email: "a@example.com", PasswordHash: "hash"})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestAddMetric(t *testing.T) {
	repo, mock := setupMemberMock(t)
	at := time.Date(2025, 11, 3, 7, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO health_metric (member_id, metric_type, metric_value, measured_at)")).
		WithArgs(1, "weight", 72.5, at).
		WillReturnRows(sqlmock.NewRows([]string{"metric_id", "member_id", "metric_type", "metric_value", "measured_at"}).
			AddRow(5, 1, "weight", 72.5, at))

	metric, err := repo.AddMetric(context.Background(), 1, "weight", 72.5, at)
	require.NoError(t, err)
	assert.Equal(t, 5, metric.ID)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO health_metric")).
		WillReturnError(&pq.Error{Code: "23503", Constraint: "health_metric_member_id_fkey"})

	_, err = repo.AddMetric(context.Background(), 99, "weight", 72.5, at)
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestListMetrics_NewestFirst(t *testing.T) {
	repo, mock := setupMemberMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE member_id = $1 ORDER BY measured_at DESC, metric_id DESC")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"metric_id", "member_id", "metric_type", "metric_value", "measured_at"}))

	metrics, err := repo.ListMetrics(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, metrics)
	assert.Empty(t, metrics)
}

func TestAddGoal(t *testing.T) {
	repo, mock := setupMemberMock(t)
	target := 70.0
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO fitness_goal (member_id, goal_type, target_value, status)")).
		WithArgs(1, "weight_loss", &target, "active").
		WillReturnRows(sqlmock.NewRows([]string{"goal_id", "member_id", "goal_type", "target_value", "status", "created_at"}).
			AddRow(2, 1, "weight_loss", 70.0, "active", now))

	goal, err := repo.AddGoal(context.Background(), FitnessGoal{MemberID: 1, GoalType: "weight_loss", TargetValue: &target, Status: "active"})
	require.NoError(t, err)
	assert.Equal(t, 2, goal.ID)
	require.NotNil(t, goal.TargetValue)
	assert.Equal(t, 70.0, *goal.TargetValue)
}
