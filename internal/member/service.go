package member

import (
	"context"
	"errors"
	"strings"
	"time"

	"fitclub/internal/auth"
)

var (
	ErrEmailExists    = errors.New("email already exists")
	ErrMemberNotFound = errors.New("member not found")
	ErrInvalidDOB     = errors.New("dob must be a YYYY-MM-DD date in the past")
	ErrInvalidMetric  = errors.New("metric needs a type and a positive value")
	ErrInvalidGoal    = errors.New("goal type is required")
)

const defaultGoalStatus = "active"

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*Member, string, string, error)
	GetByID(ctx context.Context, memberID int) (*Member, error)
	AddHealthMetric(ctx context.Context, memberID int, req AddMetricRequest) (*HealthMetric, error)
	ListHealthMetrics(ctx context.Context, memberID int) ([]HealthMetric, error)
	AddGoal(ctx context.Context, memberID int, req AddGoalRequest) (*FitnessGoal, error)
	ListGoals(ctx context.Context, memberID int) ([]FitnessGoal, error)
	// Contact returns the name and email confirmations are sent to.
	Contact(ctx context.Context, memberID int) (string, string, error)
}

type service struct {
	repo          Repository
	accessSecret  string
	refreshSecret string
	now           func() time.Time
}

func NewService(repo Repository, accessSecret, refreshSecret string) Service {
	return &service{
		repo:          repo,
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		now:           time.Now,
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*Member, string, string, error) {
	dob, err := time.Parse(dobLayout, req.DOB)
	if err != nil || !dob.Before(s.now()) {
		return nil, "", "", ErrInvalidDOB
	}

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

	m, err := s.repo.Create(ctx, Member{
		Name:         strings.TrimSpace(req.Name),
		DOB:          dob,
		Gender:       req.Gender,
		Email:        email,
		Phone:        req.Phone,
		PasswordHash: passwordHash,
	})
	if err != nil {
		return nil, "", "", err
	}

	accessToken, refreshToken, err := auth.GenerateTokens(m.ID, m.Email, auth.RoleMember, s.accessSecret, s.refreshSecret)
	if err != nil {
		return nil, "", "", err
	}

	return m, accessToken, refreshToken, nil
}

func (s *service) GetByID(ctx context.Context, memberID int) (*Member, error) {
	return s.repo.FindByID(ctx, memberID)
}

func (s *service) AddHealthMetric(ctx context.Context, memberID int, req AddMetricRequest) (*HealthMetric, error) {
	metricType := strings.TrimSpace(req.MetricType)
	if metricType == "" || req.MetricValue <= 0 {
		return nil, ErrInvalidMetric
	}

	if err := s.mustExist(ctx, memberID); err != nil {
		return nil, err
	}

	measuredAt := s.now()
	if req.MeasuredAt != nil && !req.MeasuredAt.IsZero() {
		measuredAt = *req.MeasuredAt
	}

	return s.repo.AddMetric(ctx, memberID, metricType, req.MetricValue, measuredAt)
}

func (s *service) ListHealthMetrics(ctx context.Context, memberID int) ([]HealthMetric, error) {
	if err := s.mustExist(ctx, memberID); err != nil {
		return nil, err
	}
	return s.repo.ListMetrics(ctx, memberID)
}

func (s *service) AddGoal(ctx context.Context, memberID int, req AddGoalRequest) (*FitnessGoal, error) {
	goalType := strings.TrimSpace(req.GoalType)
	if goalType == "" {
		return nil, ErrInvalidGoal
	}

	if err := s.mustExist(ctx, memberID); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = defaultGoalStatus
	}

	return s.repo.AddGoal(ctx, FitnessGoal{
		MemberID:    memberID,
		GoalType:    goalType,
		TargetValue: req.TargetValue,
		Status:      status,
	})
}

func (s *service) ListGoals(ctx context.Context, memberID int) ([]FitnessGoal, error) {
	if err := s.mustExist(ctx, memberID); err != nil {
		return nil, err
	}
	return s.repo.ListGoals(ctx, memberID)
}

func (s *service) Contact(ctx context.Context, memberID int) (string, string, error) {
	m, err := s.repo.FindByID(ctx, memberID)
	if err != nil {
		return "", "", err
	}
	return m.Name, m.Email, nil
}

func (s *service) mustExist(ctx context.Context, memberID int) error {
	ok, err := s.repo.Exists(ctx, memberID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrMemberNotFound
	}
	return nil
}
