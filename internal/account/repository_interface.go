package account

import "context"

type Repository interface {
	FindByEmail(ctx context.Context, role, email string) (*Principal, error)
	FindByID(ctx context.Context, role string, id int) (*Principal, error)
	CreateAdmin(ctx context.Context, name, email, passwordHash string) (*Principal, error)
}
