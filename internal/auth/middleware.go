package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/project-service/internal/authz"
	"github.com/spec-kit/project-service/internal/cache"
	"github.com/spec-kit/project-service/internal/domain"
	"github.com/spec-kit/project-service/internal/repository"
	apperrors "github.com/spec-kit/project-service/pkg/util"
)

const principalKey = "auth_principal"

// ActingRoleHeader carries the explicit assume-role parameter. It is only
// honored for super admins and every use is logged.
const ActingRoleHeader = "X-Acting-Role"

// Principal represents the authenticated caller with its resolved global
// role (persisted role plus any acting-role override).
type Principal struct {
	UserID  string
	Profile *domain.Profile
	Role    domain.GlobalRole
}

// Privileged reports whether the principal may operate on any ticket.
func (p *Principal) Privileged() bool {
	return authz.IsPrivileged(p.Role)
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens   *TokenManager
	profiles repository.ProfileRepository
	cache    *cache.ProfileCache
	logger   *zap.Logger
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, profiles repository.ProfileRepository, profileCache *cache.ProfileCache, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, profiles: profiles, cache: profileCache, logger: logger}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	profile, err := m.loadProfile(c, claims.UserID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewUnauthorized("profile not found")
		}
		return apperrors.MapError(err)
	}

	role := profile.Role
	if acting := domain.GlobalRole(c.Get(ActingRoleHeader)); acting != "" {
		resolved := authz.ResolveGlobalRole(profile.Role, acting)
		if resolved != profile.Role {
			m.logger.Info("acting role assumed",
				zap.String("user_id", profile.UserID),
				zap.String("persisted_role", string(profile.Role)),
				zap.String("acting_role", string(resolved)))
		}
		role = resolved
	}

	c.Locals(principalKey, &Principal{
		UserID:  profile.UserID,
		Profile: profile,
		Role:    role,
	})
	return c.Next()
}

func (m *AuthMiddleware) loadProfile(c *fiber.Ctx, userID string) (*domain.Profile, error) {
	if profile, ok := m.cache.Get(c.UserContext(), userID); ok {
		return profile, nil
	}
	profile, err := m.profiles.GetByUserID(c.UserContext(), userID)
	if err != nil {
		return nil, err
	}
	m.cache.Set(c.UserContext(), profile)
	return profile, nil
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

// RequireSuperAdmin ensures the resolved role is super_admin.
func RequireSuperAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if principal.Role != domain.GlobalRoleSuperAdmin {
			return apperrors.NewForbidden("super admin required")
		}
		return c.Next()
	}
}

// RequirePrivileged ensures the resolved role may operate on any ticket.
func RequirePrivileged() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !principal.Privileged() {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
