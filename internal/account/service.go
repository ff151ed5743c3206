package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"fitclub/internal/auth"
	"fitclub/internal/logger"
	"fitclub/internal/metrics"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountNotFound    = errors.New("account not found")
	ErrEmailExists        = errors.New("email already exists")
)

type Service interface {
	Login(ctx context.Context, role string, req LoginRequest) (*LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error)
	Me(ctx context.Context, role string, id int) (*Principal, error)
	Logout(ctx context.Context, tokenID string, expiresAt time.Time) error
	RegisterAdmin(ctx context.Context, req RegisterAdminRequest) (*Principal, error)
	// EnsureAdmin creates the admin unless an account with that email exists.
	EnsureAdmin(ctx context.Context, req RegisterAdminRequest) error
}

type service struct {
	repo          Repository
	revoker       auth.Revoker
	accessSecret  string
	refreshSecret string
	now           func() time.Time
}

// NewService builds the account service. A nil revoker turns logout into a no-op.
func NewService(repo Repository, revoker auth.Revoker, accessSecret, refreshSecret string) Service {
	return &service{
		repo:          repo,
		revoker:       revoker,
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		now:           time.Now,
	}
}

func (s *service) Login(ctx context.Context, role string, req LoginRequest) (*LoginResponse, error) {
	if !auth.ValidRole(role) {
		return nil, auth.ErrUnknownRole
	}

	p, err := s.repo.FindByEmail(ctx, role, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			metrics.RecordLogin(role, "failure")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(p.PasswordHash, req.Password) {
		metrics.RecordLogin(role, "failure")
		return nil, ErrInvalidCredentials
	}

	accessToken, refreshToken, err := auth.GenerateTokens(p.ID, p.Email, role, s.accessSecret, s.refreshSecret)
	if err != nil {
		return nil, err
	}

	metrics.RecordLogin(role, "success")
	logger.Info("login", "role", role, "user_id", p.ID)

	return &LoginResponse{AccessToken: accessToken, RefreshToken: refreshToken, User: *p}, nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	accessToken, claims, err := auth.RefreshAccessToken(refreshToken, s.refreshSecret, s.accessSecret)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.FindByID(ctx, claims.Role, claims.UserID)
	if err != nil {
		return nil, err
	}

	return &RefreshResponse{AccessToken: accessToken, User: *p}, nil
}

func (s *service) Me(ctx context.Context, role string, id int) (*Principal, error) {
	return s.repo.FindByID(ctx, role, id)
}

func (s *service) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if s.revoker == nil {
		return nil
	}
	return s.revoker.Revoke(ctx, tokenID, expiresAt.Sub(s.now()))
}

func (s *service) RegisterAdmin(ctx context.Context, req RegisterAdminRequest) (*Principal, error) {
	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	return s.repo.CreateAdmin(ctx, strings.TrimSpace(req.Name), normalizeEmail(req.Email), passwordHash)
}

func (s *service) EnsureAdmin(ctx context.Context, req RegisterAdminRequest) error {
	_, err := s.repo.FindByEmail(ctx, auth.RoleAdmin, normalizeEmail(req.Email))
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return err
	}

	p, err := s.RegisterAdmin(ctx, req)
	if errors.Is(err, ErrEmailExists) {
		return nil
	}
	if err != nil {
		return err
	}

	logger.Info("bootstrap admin created", "admin_id", p.ID, "email", p.Email)
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
