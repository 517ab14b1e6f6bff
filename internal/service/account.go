package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dropline/dropline/internal/docstore"
	"github.com/dropline/dropline/internal/metrics"
	"github.com/dropline/dropline/internal/model"
	"github.com/dropline/dropline/internal/repository"
)

// AccountService handles signup, login and profile logic.
type AccountService struct {
	repo    *repository.Repository
	logger  *slog.Logger
	metrics metrics.Recorder
	now     func() time.Time
}

// NewAccountService creates a new AccountService.
func NewAccountService(repo *repository.Repository, logger *slog.Logger, recorder metrics.Recorder) *AccountService {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AccountService{
		repo:    repo,
		logger:  logger,
		metrics: recorder,
		now:     time.Now,
	}
}

// ProfileInput carries the user-editable profile fields.
type ProfileInput struct {
	Email     string
	Name      *string
	AvatarURL *string
}

// Signup returns the user with the given email, creating it when absent.
// created reports whether a new user was inserted.
func (s *AccountService) Signup(ctx context.Context, input ProfileInput) (user *model.User, created bool, err error) {
	if strings.TrimSpace(input.Email) == "" {
		return nil, false, ErrInvalidInput
	}

	existing, err := s.lookup(ctx, input.Email)
	if err == nil {
		s.metrics.IncSignup(metrics.OutcomeExisting)
		return existing, false, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, false, err
	}

	user = &model.User{
		Email:     input.Email,
		Name:      input.Name,
		AvatarURL: input.AvatarURL,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		s.metrics.IncStoreError()
		return nil, false, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.IncSignup(metrics.OutcomeCreated)
	return user, true, nil
}

// Login returns the user with the given email or ErrUserNotFound.
func (s *AccountService) Login(ctx context.Context, email string) (*model.User, error) {
	user, err := s.lookup(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.metrics.IncLogin(metrics.OutcomeNotFound)
		}
		return nil, err
	}

	s.metrics.IncLogin(metrics.OutcomeSuccess)
	return user, nil
}

// GetProfile returns the user with the given email or ErrUserNotFound.
func (s *AccountService) GetProfile(ctx context.Context, email string) (*model.User, error) {
	return s.lookup(ctx, email)
}

// UpdateProfile overwrites name and avatar_url for the email, creating the
// user if needed, and returns the stored result. Omitted fields become null.
func (s *AccountService) UpdateProfile(ctx context.Context, input ProfileInput) (*model.User, error) {
	if !s.repo.Available() {
		return nil, ErrStoreUnavailable
	}
	if strings.TrimSpace(input.Email) == "" {
		return nil, ErrInvalidInput
	}

	if err := s.repo.UpsertProfile(ctx, input.Email, input.Name, input.AvatarURL, s.now().UTC()); err != nil {
		s.metrics.IncStoreError()
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	user, err := s.repo.GetUserByEmail(ctx, input.Email)
	if err != nil {
		s.metrics.IncStoreError()
		return nil, fmt.Errorf("failed to reload profile: %w", err)
	}

	s.metrics.IncProfileUpdated()
	return user, nil
}

// lookup finds a user by email. An unavailable store counts as a miss.
func (s *AccountService) lookup(ctx context.Context, email string) (*model.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, repository.ErrUserNotFound):
		return nil, ErrUserNotFound
	case errors.Is(err, docstore.ErrUnavailable):
		s.logger.Warn("user lookup without database", "error", err)
		return nil, ErrUserNotFound
	default:
		s.metrics.IncStoreError()
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
}
