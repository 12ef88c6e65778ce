package services

import (
	"context"
	"time"

	"github.com/admitflow/admitflow/internal/app/models"
	"github.com/admitflow/admitflow/internal/app/models/dto"
	"github.com/admitflow/admitflow/internal/pkg/apperrors"
	"github.com/admitflow/admitflow/internal/pkg/auth"
	"github.com/admitflow/admitflow/internal/pkg/logger"
)

// userStore is the account surface the auth and admin services depend on
type userStore interface {
	Create(ctx context.Context, user *models.User) (int64, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	ListByRole(ctx context.Context, role models.RoleType) ([]models.User, error)
	SetActive(ctx context.Context, id int64, active bool) error
	StoreRefreshToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	GetUserByRefreshToken(ctx context.Context, token string) (*models.User, error)
	DeleteRefreshToken(ctx context.Context, token string) error
}

// AuthService authenticates users and issues token pairs
type AuthService interface {
	// Login verifies credentials and returns a token pair with the user
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)

	// Refresh rotates a refresh token for a new token pair
	Refresh(ctx context.Context, req dto.RefreshTokenRequest) (*dto.TokenResponse, error)
}

type authService struct {
	users userStore
	jwt   *auth.JWTService
}

// NewAuthService creates a new AuthService
func NewAuthService(users userStore, jwtService *auth.JWTService) AuthService {
	return &authService{users: users, jwt: jwtService}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		// Same answer for unknown email and wrong password
		logger.Warn().Str("email", req.Email).Msg("Login attempt for unknown email")
		return nil, apperrors.ErrInvalidCredentials
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		logger.Warn().Int64("userID", user.ID).Msg("Login attempt with wrong password")
		return nil, apperrors.ErrInvalidCredentials
	}

	if !user.Active {
		logger.Warn().Int64("userID", user.ID).Msg("Login attempt on disabled account")
		return nil, apperrors.ErrAccountDisabled
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	logger.Info().Int64("userID", user.ID).Str("role", string(user.Role)).Msg("User logged in")
	return &dto.LoginResponse{
		Tokens: *tokens,
		User:   dto.ToUserResponse(user),
	}, nil
}

func (s *authService) Refresh(ctx context.Context, req dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	user, err := s.users.GetUserByRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, apperrors.ErrTokenInvalid
	}
	if !user.Active {
		return nil, apperrors.ErrAccountDisabled
	}

	// Rotate: the presented token is single use
	if err := s.users.DeleteRefreshToken(ctx, req.RefreshToken); err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

func (s *authService) issueTokens(ctx context.Context, user *models.User) (*dto.TokenResponse, error) {
	accessToken, refreshToken, expiresIn, refreshExpiresIn, err := s.jwt.GenerateTokenPair(user)
	if err != nil {
		logger.Error().Err(err).Int64("userID", user.ID).Msg("Error generating token pair")
		return nil, err
	}

	if err := s.users.StoreRefreshToken(ctx, user.ID, refreshToken, s.jwt.GetRefreshTokenExpiry()); err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		ExpiresIn:        expiresIn,
		RefreshExpiresIn: refreshExpiresIn,
	}, nil
}
