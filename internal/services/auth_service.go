package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"quiz-admin/internal/auth"
	"quiz-admin/internal/config"
	"quiz-admin/internal/models"
	"quiz-admin/internal/repository"

	"github.com/sirupsen/logrus"
)

type LoginResult struct {
	Token     string        `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresAt time.Time     `json:"expiresAt"`
	User      auth.Identity `json:"user"`
}

type AuthService interface {
	// Initialize creates the first administrator with the configured default credentials.
	Initialize(ctx context.Context) (*models.Admin, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Verify(ctx context.Context, token string) (*auth.Identity, error)
	ChangePassword(ctx context.Context, adminID uint, currentPassword, newPassword string) error
}

type authService struct {
	repo   repository.AdminRepository
	tokens *auth.TokenManager
	cfg    config.AuthConfig
	logger *logrus.Logger
}

func NewAuthService(repo repository.AdminRepository, tokens *auth.TokenManager, cfg config.AuthConfig, logger *logrus.Logger) AuthService {
	return &authService{
		repo:   repo,
		tokens: tokens,
		cfg:    cfg,
		logger: logger,
	}
}

func (s *authService) Initialize(ctx context.Context) (*models.Admin, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count administrators: %w", err)
	}
	if count > 0 {
		return nil, ErrAlreadyInitialized
	}

	hash, err := auth.HashPassword(s.cfg.DefaultPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &models.Admin{
		Username:     s.cfg.AdminUsername,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		// A concurrent initialize may have won the unique username race.
		if count, cerr := s.repo.Count(ctx); cerr == nil && count > 0 {
			return nil, ErrAlreadyInitialized
		}
		return nil, fmt.Errorf("failed to create administrator: %w", err)
	}

	s.logger.WithField("username", admin.Username).Warn("Default administrator created; change the password")
	return admin, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, newValidationError("username and password are required")
	}

	admin, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to load administrator: %w", err)
	}
	if admin == nil {
		s.logger.WithField("username", username).Info("Login rejected: unknown user")
		return nil, ErrInvalidCredentials
	}

	ok, err := auth.CheckPassword(admin.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		s.logger.WithField("username", username).Info("Login rejected: wrong password")
		return nil, ErrInvalidCredentials
	}

	identity := auth.Identity{ID: admin.ID, Username: admin.Username}
	token, expiresAt, err := s.tokens.Generate(identity)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      identity,
	}, nil
}

func (s *authService) Verify(_ context.Context, token string) (*auth.Identity, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	identity, err := s.tokens.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	return identity, nil
}

func (s *authService) ChangePassword(ctx context.Context, adminID uint, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return newValidationError("currentPassword and newPassword are required")
	}
	if len([]rune(newPassword)) < s.cfg.MinPasswordLen {
		return newValidationError(fmt.Sprintf("new password must be at least %d characters", s.cfg.MinPasswordLen))
	}

	admin, err := s.repo.FindByID(ctx, adminID)
	if err != nil {
		return fmt.Errorf("failed to load administrator: %w", err)
	}
	if admin == nil {
		return ErrNotFound
	}

	ok, err := auth.CheckPassword(admin.PasswordHash, currentPassword)
	if err != nil {
		return fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.repo.UpdatePasswordHash(ctx, admin.ID, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.WithField("admin_id", admin.ID).Info("Administrator password changed")
	return nil
}
