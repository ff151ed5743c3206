package facility

import (
	"context"
	"time"
)

type Repository interface {
	CreateRoom(ctx context.Context, name string, capacity int) (*Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	RoomExists(ctx context.Context, id int) (bool, error)
	TrainerExists(ctx context.Context, id int) (bool, error)
	CreateClass(ctx context.Context, name string, startTime time.Time, capacity, trainerID, roomID int) (*FitnessClass, error)
	ListClassesWithAvailability(ctx context.Context, onlyFuture bool) ([]ClassWithAvailability, error)
	Ping(ctx context.Context) error
}
