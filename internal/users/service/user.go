package service

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	userserrors "github.com/timschopinski/hotel-management-system/internal/users/errors"
	"github.com/timschopinski/hotel-management-system/internal/users/repository"
	"github.com/timschopinski/hotel-management-system/internal/users/validator"
	"github.com/timschopinski/hotel-management-system/pkg/config"
	apperrors "github.com/timschopinski/hotel-management-system/pkg/errors"
	"github.com/timschopinski/hotel-management-system/pkg/model"
	"github.com/timschopinski/hotel-management-system/pkg/sanitizer"
	"github.com/timschopinski/hotel-management-system/pkg/token"
)

type UserService interface {
	Register(ctx context.Context, credentials *model.Credentials) (*model.User, error)
	Login(ctx context.Context, credentials *model.Credentials) (*model.TokenResponse, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
}

type userService struct {
	repo      repository.UserRepository
	validator *validator.UserValidator
	tokens    *token.Manager
	cfg       *config.Config
}

func NewUserService(
	repo repository.UserRepository,
	validator *validator.UserValidator,
	tokens *token.Manager,
	cfg *config.Config,
) UserService {
	return &userService{
		repo:      repo,
		validator: validator,
		tokens:    tokens,
		cfg:       cfg,
	}
}

func (s *userService) Register(ctx context.Context, credentials *model.Credentials) (*model.User, error) {
	credentials.Email = sanitizer.NormalizeEmail(credentials.Email)

	if err := s.validator.ValidateCredentials(credentials); err != nil {
		s.cfg.Log.Warn("Registration validation failed", "error", err)
		return nil, apperrors.Validation("Invalid credentials", map[string]any{"error": err.Error()})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(credentials.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal("Failed to hash password", err)
	}

	user := &model.User{
		Email:        credentials.Email,
		PasswordHash: string(hash),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, userserrors.ErrDuplicateEmail) {
			return nil, apperrors.Conflict("Email is already registered")
		}
		return nil, apperrors.Internal("Failed to create user", err)
	}

	s.cfg.Log.Info("User registered", "id", user.ID)
	return user, nil
}

// Login verifies credentials and issues a bearer token. Unknown email and
// wrong password produce the same error, so the endpoint does not reveal
// which emails are registered.
func (s *userService) Login(ctx context.Context, credentials *model.Credentials) (*model.TokenResponse, error) {
	credentials.Email = sanitizer.NormalizeEmail(credentials.Email)

	user, err := s.repo.FindByEmail(ctx, credentials.Email)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("invalid email or password")
		}
		return nil, apperrors.Internal("Failed to look up user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credentials.Password)); err != nil {
		return nil, apperrors.Unauthorized("invalid email or password")
	}

	signed, err := s.tokens.Sign(user.ID)
	if err != nil {
		return nil, apperrors.Internal("Failed to issue token", err)
	}

	s.cfg.Log.Info("User logged in", "id", user.ID)
	return &model.TokenResponse{
		AccessToken: signed,
		TokenType:   "bearer",
	}, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) || errors.Is(err, userserrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("User", id)
		}
		return nil, apperrors.Internal("Failed to retrieve user", err)
	}
	return user, nil
}
