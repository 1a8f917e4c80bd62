package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"private-scribe-server/internal/domain"
	"private-scribe-server/internal/repository"
	"private-scribe-server/internal/session"
	"private-scribe-server/pkg/hash"
	"private-scribe-server/pkg/jwt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type AuthService struct {
	uow               repository.UnitOfWork
	sessions          session.Store
	jwtSecret         string
	jwtExpiration     time.Duration
	refreshExpiration time.Duration
	logger            zerolog.Logger
}

func NewAuthService(
	uow repository.UnitOfWork,
	sessions session.Store,
	jwtSecret string,
	jwtExp, refreshExp time.Duration,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		uow:               uow,
		sessions:          sessions,
		jwtSecret:         jwtSecret,
		jwtExpiration:     jwtExp,
		refreshExpiration: refreshExp,
		logger:            logger.With().Str("component", "auth").Logger(),
	}
}

func (s *AuthService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, error) {
	return s.createUser(ctx, req, domain.RoleUser)
}

// CreateAdmin provisions an admin account. Only reachable from the admin CLI.
func (s *AuthService) CreateAdmin(ctx context.Context, req *domain.RegisterRequest) (*domain.User, error) {
	return s.createUser(ctx, req, domain.RoleAdmin)
}

func (s *AuthService) createUser(ctx context.Context, req *domain.RegisterRequest, role domain.Role) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	hashedPassword, err := hash.Hash(req.Password)
	if err != nil {
		return nil, NewValidationError("password", err.Error())
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        email,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PasswordHash: hashedPassword,
		Role:         role,
		CreatedAt:    now,
		LastLogin:    now,
	}

	err = s.uow.Do(ctx, func(repos *repository.Repositories) error {
		exists, err := repos.Users.EmailExists(email)
		if err != nil {
			return fmt.Errorf("failed to check email existence: %w", err)
		}
		if exists {
			return ErrEmailTaken
		}
		return repos.Users.Create(user)
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Str("role", string(role)).Msg("user registered")
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user *domain.User
	err := s.uow.Do(ctx, func(repos *repository.Repositories) error {
		found, err := repos.Users.FindByEmail(email)
		if err != nil {
			return notFoundAs(err, ErrInvalidCredentials)
		}
		if err := hash.Compare(found.PasswordHash, req.Password); err != nil {
			return ErrInvalidCredentials
		}

		found.LastLogin = time.Now().UTC()
		if err := repos.Users.UpdateLastLogin(found.ID, found.LastLogin); err != nil {
			return err
		}
		user = found
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			s.logger.Warn().Str("email", email).Msg("failed login")
		}
		return nil, err
	}

	accessToken, err := jwt.GenerateToken(user.ID, s.jwtExpiration, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, tokenID, err := jwt.IssueRefreshToken(user.ID, s.refreshExpiration, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	if err := s.sessions.Save(ctx, tokenID, user.ID, s.refreshExpiration); err != nil {
		return nil, err
	}

	return &domain.LoginResponse{
		User:         user.Summary(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtExpiration.Seconds()),
	}, nil
}

// Refresh issues a new access token for a live refresh session.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenResponse, error) {
	claims, err := jwt.ValidateTyped(refreshToken, s.jwtSecret, jwt.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	live, err := s.sessions.Exists(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if !live {
		return nil, ErrInvalidToken
	}

	err = s.uow.Do(ctx, func(repos *repository.Repositories) error {
		_, err := repos.Users.FindByID(claims.UserID)
		return notFoundAs(err, ErrInvalidToken)
	})
	if err != nil {
		return nil, err
	}

	accessToken, err := jwt.GenerateToken(claims.UserID, s.jwtExpiration, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &domain.TokenResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(s.jwtExpiration.Seconds()),
	}, nil
}

// Logout revokes the refresh session. Tokens that no longer verify have
// nothing left to revoke.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := jwt.ValidateTyped(refreshToken, s.jwtSecret, jwt.RefreshToken)
	if err != nil {
		return nil
	}
	return s.sessions.Revoke(ctx, claims.ID)
}

func (s *AuthService) ValidateToken(accessToken string) (*domain.UserIdentity, error) {
	claims, err := jwt.ValidateTyped(accessToken, s.jwtSecret, jwt.AccessToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	identity := &domain.UserIdentity{UserID: claims.UserID}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}
	return identity, nil
}
