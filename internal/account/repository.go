package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fitclub/internal/auth"
	"fitclub/internal/db"

	"github.com/jmoiron/sqlx"
)

type principalTable struct {
	table, idColumn string
}

// Each role logs in against its own table.
var principalTables = map[string]principalTable{
	auth.RoleMember:  {"member", "member_id"},
	auth.RoleTrainer: {"trainer", "trainer_id"},
	auth.RoleAdmin:   {"admin", "admin_id"},
}

type PostgresRepository struct {
	db *sqlx.DB
}

func NewRepository(conn *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, role, email string) (*Principal, error) {
	return r.findOne(ctx, role, "email", email)
}

func (r *PostgresRepository) FindByID(ctx context.Context, role string, id int) (*Principal, error) {
	t, ok := principalTables[role]
	if !ok {
		return nil, auth.ErrUnknownRole
	}
	return r.findOne(ctx, role, t.idColumn, id)
}

func (r *PostgresRepository) findOne(ctx context.Context, role, column string, value interface{}) (*Principal, error) {
	t, ok := principalTables[role]
	if !ok {
		return nil, auth.ErrUnknownRole
	}

	query := fmt.Sprintf(`
		SELECT %s AS id, name, email, password_hash, created_at
		FROM %s
		WHERE %s = $1
	`, t.idColumn, t.table, column)

	var p Principal
	if err := r.db.GetContext(ctx, &p, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	p.Role = role
	return &p, nil
}

func (r *PostgresRepository) CreateAdmin(ctx context.Context, name, email, passwordHash string) (*Principal, error) {
	query := `
		INSERT INTO admin (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING admin_id AS id, name, email, password_hash, created_at
	`

	var p Principal
	if err := r.db.GetContext(ctx, &p, query, name, email, passwordHash); err != nil {
		if _, ok := db.PgError(err, db.CodeUniqueViolation); ok {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	p.Role = auth.RoleAdmin
	return &p, nil
}
