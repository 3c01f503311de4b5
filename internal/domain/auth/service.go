package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/eduquest/eduquest-api/internal/domain/user"
	"github.com/eduquest/eduquest-api/internal/pkg/jwt"
)

// Service handles authentication
type Service struct {
	users user.Repository
	jwt   *jwt.Service
}

// NewService creates the auth service
func NewService(users user.Repository, jwtService *jwt.Service) *Service {
	return &Service{users: users, jwt: jwtService}
}

// Login verifies the password and issues a token pair. A missing user and a
// wrong password produce the identical error.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*TokenResponse, error) {
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(u)
}

// Refresh validates a refresh token and issues a fresh pair. The user's
// current role is re-read so a role change takes effect on the next refresh.
func (s *Service) Refresh(ctx context.Context, req *RefreshRequest) (*TokenResponse, error) {
	claims, err := s.jwt.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidRefresh
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}

	return s.issueTokens(u)
}

// Me returns the authenticated user's record.
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *Service) issueTokens(u *user.User) (*TokenResponse, error) {
	access, err := s.jwt.GenerateAccessToken(u.ID, string(u.Role))
	if err != nil {
		return nil, err
	}
	refresh, err := s.jwt.GenerateRefreshToken(u.ID)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{AccessToken: access, RefreshToken: refresh, User: u}, nil
}

// HashPassword produces the stored bcrypt hash for a new account.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
