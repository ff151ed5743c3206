package trainer

import (
	"context"
	"errors"
	"sort"
	"strings"

	"fitclub/internal/auth"
	"fitclub/internal/booking"
)

var ErrEmailExists = errors.New("email already exists")

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*Trainer, string, string, error)
	AddAvailability(ctx context.Context, trainerID int, req AddAvailabilityRequest) (*Availability, error)
	ListAvailability(ctx context.Context, trainerID int) ([]Availability, error)
	Schedule(ctx context.Context, trainerID int) ([]ScheduleItem, error)
}

type service struct {
	repo          Repository
	accessSecret  string
	refreshSecret string
}

func NewService(repo Repository, accessSecret, refreshSecret string) Service {
	return &service{repo: repo, accessSecret: accessSecret, refreshSecret: refreshSecret}
}

func notFound(trainerID int) error {
	return &booking.NotFoundError{Resource: booking.ResourceKey{Kind: booking.KindTrainer, ID: trainerID}}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*Trainer, string, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, "", "", err
	}
	if exists {
		return nil, "", "", ErrEmailExists
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, "", "", err
	}

	t, err := s.repo.Create(ctx, Trainer{
		Name:           strings.TrimSpace(req.Name),
		Email:          email,
		Specialization: req.Specialization,
		PasswordHash:   passwordHash,
	})
	if err != nil {
		return nil, "", "", err
	}

	accessToken, refreshToken, err := auth.GenerateTokens(t.ID, t.Email, auth.RoleTrainer, s.accessSecret, s.refreshSecret)
	if err != nil {
		return nil, "", "", err
	}

	return t, accessToken, refreshToken, nil
}

func (s *service) AddAvailability(ctx context.Context, trainerID int, req AddAvailabilityRequest) (*Availability, error) {
	if err := (booking.Interval{Start: req.StartTime, End: req.EndTime}).Validate(); err != nil {
		return nil, &booking.ValidationError{Field: "end_time", Err: err}
	}

	if err := s.mustExist(ctx, trainerID); err != nil {
		return nil, err
	}

	return s.repo.AddAvailability(ctx, trainerID, req.StartTime, req.EndTime)
}

func (s *service) ListAvailability(ctx context.Context, trainerID int) ([]Availability, error) {
	if err := s.mustExist(ctx, trainerID); err != nil {
		return nil, err
	}
	return s.repo.ListAvailability(ctx, trainerID)
}

// Schedule merges the trainer's PT sessions and classes ordered by start time.
func (s *service) Schedule(ctx context.Context, trainerID int) ([]ScheduleItem, error) {
	if err := s.mustExist(ctx, trainerID); err != nil {
		return nil, err
	}

	sessions, err := s.repo.ListSessionItems(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	classes, err := s.repo.ListClassItems(ctx, trainerID)
	if err != nil {
		return nil, err
	}

	items := append(sessions, classes...)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].StartTime.Before(items[j].StartTime)
	})
	return items, nil
}

func (s *service) mustExist(ctx context.Context, trainerID int) error {
	ok, err := s.repo.Exists(ctx, trainerID)
	if err != nil {
		return err
	}
	if !ok {
		return notFound(trainerID)
	}
	return nil
}
