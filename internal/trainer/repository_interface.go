package trainer

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, t Trainer) (*Trainer, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Exists(ctx context.Context, id int) (bool, error)
	AddAvailability(ctx context.Context, trainerID int, start, end time.Time) (*Availability, error)
	ListAvailability(ctx context.Context, trainerID int) ([]Availability, error)
	ListSessionItems(ctx context.Context, trainerID int) ([]ScheduleItem, error)
	ListClassItems(ctx context.Context, trainerID int) ([]ScheduleItem, error)
}
