package member

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"fitclub/internal/db"

	"github.com/jmoiron/sqlx"
)

type PostgresRepository struct {
	db *sqlx.DB
}

func NewRepository(conn *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

func (r *PostgresRepository) Create(ctx context.Context, m Member) (*Member, error) {
	query := `
		INSERT INTO member (name, dob, gender, email, phone, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING member_id, name, dob, gender, email, phone, password_hash, created_at
	`

	var created Member
	err := r.db.GetContext(ctx, &created, query, m.Name, m.DOB, m.Gender, m.Email, m.Phone, m.PasswordHash)
	if err != nil {
		if _, ok := db.PgError(err, db.CodeUniqueViolation); ok {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	return &created, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int) (*Member, error) {
	query := `
		SELECT member_id, name, dob, gender, email, phone, password_hash, created_at
		FROM member
		WHERE member_id = $1
	`

	var m Member
	err := r.db.GetContext(ctx, &m, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	return &m, nil
}

func (r *PostgresRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return db.Exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM member WHERE email = $1)`, email)
}

func (r *PostgresRepository) Exists(ctx context.Context, id int) (bool, error) {
	return db.Exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM member WHERE member_id = $1)`, id)
}

func (r *PostgresRepository) AddMetric(ctx context.Context, memberID int, metricType string, value float64, measuredAt time.Time) (*HealthMetric, error) {
	query := `
		INSERT INTO health_metric (member_id, metric_type, metric_value, measured_at)
		VALUES ($1, $2, $3, $4)
		RETURNING metric_id, member_id, metric_type, metric_value, measured_at
	`

	var metric HealthMetric
	err := r.db.GetContext(ctx, &metric, query, memberID, metricType, value, measuredAt)
	if err != nil {
		if _, ok := db.PgError(err, db.CodeForeignKeyViolation); ok {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	return &metric, nil
}

func (r *PostgresRepository) ListMetrics(ctx context.Context, memberID int) ([]HealthMetric, error) {
	query := `
		SELECT metric_id, member_id, metric_type, metric_value, measured_at
		FROM health_metric
		WHERE member_id = $1
		ORDER BY measured_at DESC, metric_id DESC
	`

	metrics := []HealthMetric{}
	if err := r.db.SelectContext(ctx, &metrics, query, memberID); err != nil {
		return nil, err
	}

	return metrics, nil
}

func (r *PostgresRepository) AddGoal(ctx context.Context, g FitnessGoal) (*FitnessGoal, error) {
	query := `
		INSERT INTO fitness_goal (member_id, goal_type, target_value, status)
		VALUES ($1, $2, $3, $4)
		RETURNING goal_id, member_id, goal_type, target_value, status, created_at
	`

	var goal FitnessGoal
	err := r.db.GetContext(ctx, &goal, query, g.MemberID, g.GoalType, g.TargetValue, g.Status)
	if err != nil {
		if _, ok := db.PgError(err, db.CodeForeignKeyViolation); ok {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	return &goal, nil
}

func (r *PostgresRepository) ListGoals(ctx context.Context, memberID int) ([]FitnessGoal, error) {
	query := `
		SELECT goal_id, member_id, goal_type, target_value, status, created_at
		FROM fitness_goal
		WHERE member_id = $1
		ORDER BY created_at DESC, goal_id DESC
	`

	goals := []FitnessGoal{}
	if err := r.db.SelectContext(ctx, &goals, query, memberID); err != nil {
		return nil, err
	}

	return goals, nil
}
