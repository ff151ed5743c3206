package trainer

import (
	"context"
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

func (r *PostgresRepository) Create(ctx context.Context, t Trainer) (*Trainer, error) {
	query := `
		INSERT INTO trainer (name, email, specialization, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING trainer_id, name, email, specialization, password_hash, created_at
	`

	var created Trainer
	err := r.db.GetContext(ctx, &created, query, t.Name, t.Email, t.Specialization, t.PasswordHash)
	if err != nil {
		if _, ok := db.PgError(err, db.CodeUniqueViolation); ok {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	return &created, nil
}

func (r *PostgresRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return db.Exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM trainer WHERE email = $1)`, email)
}

func (r *PostgresRepository) Exists(ctx context.Context, id int) (bool, error) {
	return db.Exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM trainer WHERE trainer_id = $1)`, id)
}

func (r *PostgresRepository) AddAvailability(ctx context.Context, trainerID int, start, end time.Time) (*Availability, error) {
	query := `
		INSERT INTO trainer_availability (trainer_id, start_time, end_time)
		VALUES ($1, $2, $3)
		RETURNING availability_id, trainer_id, start_time, end_time
	`

	var a Availability
	err := r.db.GetContext(ctx, &a, query, trainerID, start, end)
	if err != nil {
		if _, ok := db.PgError(err, db.CodeForeignKeyViolation); ok {
			return nil, notFound(trainerID)
		}
		return nil, err
	}

	return &a, nil
}

func (r *PostgresRepository) ListAvailability(ctx context.Context, trainerID int) ([]Availability, error) {
	query := `
		SELECT availability_id, trainer_id, start_time, end_time
		FROM trainer_availability
		WHERE trainer_id = $1
		ORDER BY start_time
	`

	blocks := []Availability{}
	if err := r.db.SelectContext(ctx, &blocks, query, trainerID); err != nil {
		return nil, err
	}

	return blocks, nil
}

func (r *PostgresRepository) ListSessionItems(ctx context.Context, trainerID int) ([]ScheduleItem, error) {
	query := `
		SELECT 'pt_session' AS item_type, start_time, end_time,
		       'PT session with member ' || member_id::text AS title
		FROM ptsession
		WHERE trainer_id = $1
	`

	items := []ScheduleItem{}
	if err := r.db.SelectContext(ctx, &items, query, trainerID); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *PostgresRepository) ListClassItems(ctx context.Context, trainerID int) ([]ScheduleItem, error) {
	query := `
		SELECT 'class' AS item_type, start_time, NULL::timestamptz AS end_time, name AS title
		FROM class
		WHERE trainer_id = $1
	`

	items := []ScheduleItem{}
	if err := r.db.SelectContext(ctx, &items, query, trainerID); err != nil {
		return nil, err
	}

	return items, nil
}
