package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// AuthService handles registration, login, and password management.
type AuthService struct {
	users   repository.UserRepository
	resets  repository.PasswordResetRepository
	tokens  *auth.TokenManager
	logger  *zap.Logger
	authCfg config.AuthConfig
}

// AuthDependencies bundles collaborators for the auth service.
type AuthDependencies struct {
	UserRepo  repository.UserRepository
	ResetRepo repository.PasswordResetRepository
	Tokens    *auth.TokenManager
	Logger    *zap.Logger
	AuthCfg   config.AuthConfig
}

// RegisterInput carries account creation payload. Role defaults to
// employee; elevated roles may only be granted by an admin.
type RegisterInput struct {
	FullName   string
	Email      string
	Password   string
	Department string
	Role       domain.Role
}

// AuthResult is returned on successful login or registration.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// NewAuthService constructs the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	return &AuthService{
		users:   deps.UserRepo,
		resets:  deps.ResetRepo,
		tokens:  deps.Tokens,
		logger:  deps.Logger,
		authCfg: deps.AuthCfg,
	}
}

// Register creates an account and signs the caller in. actor may be nil
// for self-registration, which always yields an employee account.
func (s *AuthService) Register(ctx context.Context, actor *domain.User, input RegisterInput) (*AuthResult, error) {
	fullName := strings.TrimSpace(input.FullName)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if fullName == "" || email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.NewValidationError("full_name and a valid email required", nil)
	}
	if len(input.Password) < 8 {
		return nil, apperrors.NewValidationError("password must be at least 8 characters", nil)
	}

	role := input.Role
	if role == "" {
		role = domain.RoleEmployee
	}
	switch role {
	case domain.RoleEmployee:
	case domain.RoleSupport, domain.RoleAdmin:
		if actor == nil || actor.Role != domain.RoleAdmin {
			return nil, apperrors.NewForbidden("only admins may grant elevated roles")
		}
	default:
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": role})
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.authCfg.BcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Department:   strings.TrimSpace(input.Department),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return s.issueToken(user)
}

// Login verifies credentials and issues a token. Unknown email and bad
// password produce the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return s.issueToken(user)
}

// ChangePassword rotates the actor's password after verifying the
// current one.
func (s *AuthService) ChangePassword(ctx context.Context, actor *domain.User, current, next string) error {
	if err := auth.ComparePassword(actor.PasswordHash, current); err != nil {
		return apperrors.NewUnauthorized("current password does not match")
	}
	if len(next) < 8 {
		return apperrors.NewValidationError("password must be at least 8 characters", nil)
	}
	hash, err := auth.HashPassword(next, s.authCfg.BcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	actor.PasswordHash = hash
	if err := s.users.Update(ctx, actor); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// RequestPasswordReset issues a one-time reset token. To avoid leaking
// which emails exist, an unknown address returns success with no token.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", apperrors.MapError(err)
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", apperrors.NewInternalError(err)
	}
	token := &repository.PasswordResetToken{
		UserID:    user.ID,
		Token:     hex.EncodeToString(raw),
		ExpiresAt: time.Now().Add(time.Duration(s.authCfg.PasswordResetTTLMinutes) * time.Minute),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return "", apperrors.MapError(err)
	}
	s.logger.Info("password reset token issued", zap.String("user_id", user.ID))
	return token.Token, nil
}

// ConfirmPasswordReset consumes a reset token and sets the new password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, tokenStr, newPassword string) error {
	if len(newPassword) < 8 {
		return apperrors.NewValidationError("password must be at least 8 characters", nil)
	}
	token, err := s.resets.GetByToken(ctx, tokenStr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("invalid or expired reset token")
		}
		return apperrors.MapError(err)
	}
	if token.UsedAt != nil || time.Now().After(token.ExpiresAt) {
		return apperrors.NewUnauthorized("invalid or expired reset token")
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		return apperrors.MapError(err)
	}
	hash, err := auth.HashPassword(newPassword, s.authCfg.BcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.MapError(err)
	}
	if err := s.resets.MarkUsed(ctx, token.ID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *AuthService) issueToken(user *domain.User) (*AuthResult, error) {
	tokenStr, expiresAt, err := s.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &AuthResult{User: user, Token: tokenStr, ExpiresAt: expiresAt}, nil
}
