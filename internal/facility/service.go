package facility

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrTrainerNotFound = errors.New("trainer not found")
	ErrInvalidRoom     = errors.New("room needs a name and a positive capacity")
	ErrInvalidClass    = errors.New("invalid class")
)

type Service interface {
	CreateRoom(ctx context.Context, req CreateRoomRequest) (*Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	CreateClass(ctx context.Context, req CreateClassRequest) (*FitnessClass, error)
	ListClasses(ctx context.Context, onlyFuture bool) ([]ClassWithAvailability, error)
	DatabaseHealth(ctx context.Context) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateRoom(ctx context.Context, req CreateRoomRequest) (*Room, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || req.Capacity <= 0 {
		return nil, ErrInvalidRoom
	}
	return s.repo.CreateRoom(ctx, name, req.Capacity)
}

func (s *service) ListRooms(ctx context.Context) ([]Room, error) {
	return s.repo.ListRooms(ctx)
}

func (s *service) CreateClass(ctx context.Context, req CreateClassRequest) (*FitnessClass, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || req.Capacity <= 0 {
		return nil, ErrInvalidClass
	}

	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return nil, ErrInvalidClass
	}

	ok, err := s.repo.TrainerExists(ctx, req.TrainerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTrainerNotFound
	}

	ok, err = s.repo.RoomExists(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrRoomNotFound
	}

	return s.repo.CreateClass(ctx, name, startTime, req.Capacity, req.TrainerID, req.RoomID)
}

func (s *service) ListClasses(ctx context.Context, onlyFuture bool) ([]ClassWithAvailability, error) {
	return s.repo.ListClassesWithAvailability(ctx, onlyFuture)
}

func (s *service) DatabaseHealth(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
