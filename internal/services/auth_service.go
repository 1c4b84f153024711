package services

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/solrent/solrent/internal/auth"
	"github.com/solrent/solrent/internal/config"
	"github.com/solrent/solrent/internal/models"
	"github.com/solrent/solrent/internal/security"
	"github.com/solrent/solrent/internal/validation"
	pkgauth "github.com/solrent/solrent/pkg/auth"
	pkglogger "github.com/solrent/solrent/pkg/logger"
)

// Rate-limit key prefix for auth attempts, scoped per submitted email so a
// brute-force against one account cannot hide behind rotating source IPs.
const authAttemptKey = "auth"

const maxDisplayNameLength = 100

// UserRepository defines the account-store operations the auth flow needs.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
}

// AuthService handles registration and login.
type AuthService struct {
	repo    UserRepository
	tm      *auth.TokenManager
	limiter *security.RateLimiter
	monitor *security.Monitor
	cfg     config.SecurityConfig
	logger  *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	repo UserRepository,
	tm *auth.TokenManager,
	limiter *security.RateLimiter,
	monitor *security.Monitor,
	cfg config.SecurityConfig,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		repo:    repo,
		tm:      tm,
		limiter: limiter,
		monitor: monitor,
		cfg:     cfg,
		logger:  logger,
	}
}

// UserResponse represents a user in the HTTP response.
type UserResponse struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	DisplayName   string `json:"display_name"`
	WalletAddress string `json:"wallet_address,omitempty"`
	Role          string `json:"role"`
	CreatedAt     string `json:"created_at"`
}

// AuthResponse represents the response from auth operations.
type AuthResponse struct {
	AccessToken string        `json:"access_token"`
	User        *UserResponse `json:"user"`
}

// Register creates a new account. The display name passes through the same
// sanitizer as listing text; the wallet address, when provided, must be a
// well-formed base58 public key.
func (s *AuthService) Register(ctx context.Context, email, password, displayName, walletAddress string) (*AuthResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if !s.checkAuthLimit(email) {
		return nil, models.ErrRateLimited
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return nil, models.NewValidationError("email", "invalid email address")
	}

	if err := pkgauth.ValidatePassword(password); err != nil {
		s.monitor.LogAuthFailure("weak_password", "", map[string]any{
			"email": pkglogger.SanitizedEmail(email),
		})
		// The generic message is deliberate; requirements are documented,
		// not echoed.
		return nil, models.NewValidationError("password", err.Error())
	}

	displayName = validation.SanitizeText(displayName, maxDisplayNameLength)
	if displayName == "" {
		return nil, models.NewValidationError("display_name", "display name is required")
	}

	walletAddress = strings.TrimSpace(walletAddress)
	if walletAddress != "" {
		if result := validation.ValidateMintAddress(walletAddress); !result.Valid {
			return nil, models.NewValidationError("wallet_address", result.Err)
		}
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		s.monitor.LogAuthFailure("duplicate_account", "", map[string]any{
			"email": pkglogger.SanitizedEmail(email),
		})
		return nil, models.ErrConflict
	} else if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check existing account", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	hash, err := pkgauth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	user, err := s.repo.Create(ctx, &models.User{
		Email:         email,
		PasswordHash:  hash,
		DisplayName:   displayName,
		WalletAddress: walletAddress,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			s.monitor.LogAuthFailure("duplicate_account", "", map[string]any{
				"email": pkglogger.SanitizedEmail(email),
			})
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("email", pkglogger.SanitizedEmail(user.Email)))

	return s.issueResponse(user)
}

// Login authenticates a user and returns a signed token. A miss and a bad
// password produce the same error so the response never reveals whether the
// account exists.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if !s.checkAuthLimit(email) {
		return nil, models.ErrRateLimited
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("login failed: invalid credentials")
			s.monitor.LogAuthFailure("invalid_credentials", "", map[string]any{
				"email": pkglogger.SanitizedEmail(email),
			})
			return nil, models.ErrUnauthorized
		}
		s.logger.Error("failed to get user by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, password); err != nil {
		s.logger.Info("login failed: invalid credentials")
		s.monitor.LogAuthFailure("invalid_credentials", user.ID, map[string]any{
			"email": pkglogger.SanitizedEmail(email),
		})
		return nil, models.ErrUnauthorized
	}

	s.logger.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("email", pkglogger.SanitizedEmail(user.Email)))

	return s.issueResponse(user)
}

// checkAuthLimit records one auth attempt for the email and reports whether
// it is still under the window's budget.
func (s *AuthService) checkAuthLimit(email string) bool {
	allowed, _ := s.limiter.Check(
		authAttemptKey+"-"+email,
		s.cfg.AuthMaxAttempts,
		s.cfg.AuthWindow,
	)
	if !allowed {
		s.monitor.LogRateLimitExceeded(authAttemptKey, pkglogger.SanitizedEmail(email), s.cfg.AuthMaxAttempts)
	}
	return allowed
}

func (s *AuthService) issueResponse(user *models.User) (*AuthResponse, error) {
	token, err := s.tm.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		s.logger.Error("failed to issue token",
			slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return &AuthResponse{
		AccessToken: token,
		User: &UserResponse{
			ID:            user.ID,
			Email:         user.Email,
			DisplayName:   user.DisplayName,
			WalletAddress: user.WalletAddress,
			Role:          user.Role,
			CreatedAt:     user.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		},
	}, nil
}
