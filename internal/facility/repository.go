package facility

import (
	"context"
	"errors"
	"time"

	"fitclub/internal/db"

	"github.com/jmoiron/sqlx"
)

var ErrRoomNameTaken = errors.New("room name already exists")

type PostgresRepository struct {
	db *sqlx.DB
}

func NewRepository(conn *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

func (r *PostgresRepository) CreateRoom(ctx context.Context, name string, capacity int) (*Room, error) {
	query := `
		INSERT INTO room (name, capacity)
		VALUES ($1, $2)
		RETURNING room_id, name, capacity
	`

	var room Room
	err := r.db.GetContext(ctx, &room, query, name, capacity)
	if err != nil {
		if _, ok := db.PgError(err, db.CodeUniqueViolation); ok {
			return nil, ErrRoomNameTaken
		}
		return nil, err
	}

	return &room, nil
}

func (r *PostgresRepository) ListRooms(ctx context.Context) ([]Room, error) {
	query := `
		SELECT room_id, name, capacity
		FROM room
		ORDER BY name ASC
	`

	rooms := []Room{}
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, err
	}

	return rooms, nil
}

func (r *PostgresRepository) RoomExists(ctx context.Context, id int) (bool, error) {
	return db.Exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM room WHERE room_id = $1)`, id)
}

func (r *PostgresRepository) TrainerExists(ctx context.Context, id int) (bool, error) {
	return db.Exists(ctx, r.db, `SELECT EXISTS(SELECT 1 FROM trainer WHERE trainer_id = $1)`, id)
}

func (r *PostgresRepository) CreateClass(ctx context.Context, name string, startTime time.Time, capacity, trainerID, roomID int) (*FitnessClass, error) {
	query := `
		INSERT INTO class (name, start_time, capacity, trainer_id, room_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING class_id, name, start_time, capacity, trainer_id, room_id
	`

	var class FitnessClass
	err := r.db.GetContext(ctx, &class, query, name, startTime, capacity, trainerID, roomID)
	if err != nil {
		if pqErr, ok := db.PgError(err, db.CodeForeignKeyViolation); ok {
			if pqErr.Constraint == "class_room_id_fkey" {
				return nil, ErrRoomNotFound
			}
			return nil, ErrTrainerNotFound
		}
		return nil, err
	}

	return &class, nil
}

func (r *PostgresRepository) ListClassesWithAvailability(ctx context.Context, onlyFuture bool) ([]ClassWithAvailability, error) {
	query := `
		SELECT c.class_id, c.name, c.start_time, c.capacity, c.trainer_id, c.room_id,
		       COUNT(cr.registration_id) AS registered
		FROM class c
		LEFT JOIN class_registration cr ON cr.class_id = c.class_id
	`
	if onlyFuture {
		query += " WHERE c.start_time > NOW()"
	}
	query += " GROUP BY c.class_id ORDER BY c.start_time ASC"

	classes := []ClassWithAvailability{}
	if err := r.db.SelectContext(ctx, &classes, query); err != nil {
		return nil, err
	}

	for i := range classes {
		classes[i].Available = classes[i].Capacity - classes[i].Registered
		classes[i].IsFull = classes[i].Available <= 0
	}

	return classes, nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return db.Health(ctx, r.db)
}
