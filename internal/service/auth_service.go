package service

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/project-service/internal/auth"
	"github.com/spec-kit/project-service/internal/cache"
	"github.com/spec-kit/project-service/internal/config"
	"github.com/spec-kit/project-service/internal/domain"
	"github.com/spec-kit/project-service/internal/repository"
	apperrors "github.com/spec-kit/project-service/pkg/util"
)

// AuthService coordinates registration, login and profile flows.
type AuthService struct {
	users       repository.UserRepository
	profiles    repository.ProfileRepository
	cache       *cache.ProfileCache
	tokenMgr    *auth.TokenManager
	bcryptCost  int
	minPassword int
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo     repository.UserRepository
	ProfileRepo  repository.ProfileRepository
	ProfileCache *cache.ProfileCache
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	minPassword := cfg.Auth.MinPasswordLength
	if minPassword <= 0 {
		minPassword = 6
	}
	return &AuthService{
		users:       deps.UserRepo,
		profiles:    deps.ProfileRepo,
		cache:       deps.ProfileCache,
		tokenMgr:    auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost:  cfg.Auth.BcryptCost,
		minPassword: minPassword,
	}
}

// SignUp creates a principal and its profile, then issues a session token.
func (s *AuthService) SignUp(ctx context.Context, email, password, fullName string) (*domain.Profile, string, time.Time, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, "", time.Time{}, apperrors.NewValidationError("email required", nil)
	}
	if len(password) < s.minPassword {
		return nil, "", time.Time{}, apperrors.NewValidationError("password too short",
			map[string]any{"min_length": s.minPassword})
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("email already registered", nil)
	} else if err != pgx.ErrNoRows {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	user := &domain.User{Email: email, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	profile := &domain.Profile{
		UserID:   user.ID,
		Role:     domain.GlobalRoleUser,
		Timezone: "UTC",
	}
	if name := strings.TrimSpace(fullName); name != "" {
		profile.FullName = &name
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	s.cache.Set(ctx, profile)

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, profile.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return profile, token, exp, nil
}

// SignIn authenticates a principal and loads its profile.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*domain.Profile, string, time.Time, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}

	profile, err := s.loadOrProvisionProfile(ctx, user.ID)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	s.cache.Set(ctx, profile)

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, profile.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return profile, token, exp, nil
}

// SignOut clears local session state. The cache drop is best-effort and the
// call never fails: local state clearing must not depend on the backend.
func (s *AuthService) SignOut(ctx context.Context, userID string) {
	s.cache.Invalidate(ctx, userID)
}

// UpdateProfile persists only the provided fields. An empty trimmed full
// name is rejected before anything is written.
func (s *AuthService) UpdateProfile(ctx context.Context, userID, fullName string, timezone *string) (*domain.Profile, error) {
	name := strings.TrimSpace(fullName)
	if name == "" {
		return nil, apperrors.NewValidationError("full name required", nil)
	}

	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("profile", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}

	profile.FullName = &name
	if timezone != nil && strings.TrimSpace(*timezone) != "" {
		profile.Timezone = strings.TrimSpace(*timezone)
	}
	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.cache.Invalidate(ctx, userID)
	s.cache.Set(ctx, profile)
	return profile, nil
}

// UpdatePassword replaces the principal's password.
func (s *AuthService) UpdatePassword(ctx context.Context, userID, newPassword string) error {
	if len(newPassword) < s.minPassword {
		return apperrors.NewValidationError("password too short",
			map[string]any{"min_length": s.minPassword})
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return apperrors.MapError(err)
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// RefreshProfile re-fetches the profile for the current principal and
// refreshes the cache. A missing principal id is a no-op.
func (s *AuthService) RefreshProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	if userID == "" {
		return nil, nil
	}
	profile, err := s.loadOrProvisionProfile(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.cache.Set(ctx, profile)
	return profile, nil
}

// loadOrProvisionProfile upholds the invariant that a profile exists for
// every authenticated principal.
func (s *AuthService) loadOrProvisionProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if err != pgx.ErrNoRows {
		return nil, err
	}
	profile = &domain.Profile{
		UserID:   userID,
		Role:     domain.GlobalRoleUser,
		Timezone: "UTC",
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
