package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/monchobi/artschool/internal/app/models"
	"github.com/monchobi/artschool/internal/app/models/dto"
	"github.com/monchobi/artschool/internal/pkg/apperrors"
	"github.com/monchobi/artschool/internal/pkg/auth"
	"github.com/monchobi/artschool/internal/pkg/helpers"
	"github.com/monchobi/artschool/internal/pkg/validation"
)

// AuthService handles user profiles, roles and access tokens.
type AuthService struct {
	users      UserStore
	jwtService *auth.JWTService
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(users UserStore, jwtService *auth.JWTService, logger zerolog.Logger) *AuthService {
	return &AuthService{
		users:      users,
		jwtService: jwtService,
		logger:     logger,
	}
}

// validateEmail normalizes and validates an email address
func validateEmail(email string) (string, error) {
	email = helpers.NormalizeEmail(email)
	if email == "" {
		return "", apperrors.NewBadRequestError("email cannot be empty")
	}
	if !validation.IsEmail(email) {
		return "", apperrors.ErrInvalidEmail
	}
	return email, nil
}

// IssueToken signs an access token for email carrying its stored role.
// Unknown users get a student token.
func (s *AuthService) IssueToken(ctx context.Context, email string) (*dto.TokenResponse, error) {
	email, err := validateEmail(email)
	if err != nil {
		return nil, err
	}

	role := models.RoleStudent
	user, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		role = user.Role
	case !errors.Is(err, apperrors.ErrResourceNotFound):
		return nil, err
	}

	token, expiresIn, err := s.jwtService.GenerateToken(email, role)
	if err != nil {
		s.logger.Error().Err(err).Str("email", email).Msg("Failed to sign access token")
		return nil, err
	}

	return &dto.TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: expiresIn,
		Role:      string(role),
	}, nil
}

// UpsertUser creates the profile of email or updates its name and photo.
func (s *AuthService) UpsertUser(ctx context.Context, email, name, photoURL string) (*models.User, error) {
	email, err := validateEmail(email)
	if err != nil {
		return nil, err
	}
	return s.users.Upsert(ctx, &models.User{
		Email:    email,
		Name:     name,
		PhotoURL: photoURL,
		Role:     models.RoleStudent,
	})
}

// GetUser retrieves a profile by email
func (s *AuthService) GetUser(ctx context.Context, email string) (*models.User, error) {
	return s.users.GetByEmail(ctx, helpers.NormalizeEmail(email))
}

// ListUsers returns every profile.
func (s *AuthService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.users.List(ctx)
}

// SetRole changes the role of an existing user.
func (s *AuthService) SetRole(ctx context.Context, email string, role string) (*models.User, error) {
	parsed, ok := models.ParseRole(role)
	if !ok {
		return nil, apperrors.ErrUnknownRole
	}
	user, err := s.users.SetRole(ctx, helpers.NormalizeEmail(email), parsed)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("email", user.Email).Str("role", string(parsed)).Msg("User role changed")
	return user, nil
}

// GrantAdmin makes sure every email in emails exists with the admin role.
func (s *AuthService) GrantAdmin(ctx context.Context, emails []string) error {
	for _, e := range emails {
		email, err := validateEmail(e)
		if err != nil {
			s.logger.Warn().Str("email", e).Msg("Skipping invalid admin email")
			continue
		}
		if _, err := s.users.EnsureRole(ctx, email, models.RoleAdmin); err != nil {
			return err
		}
	}
	return nil
}
