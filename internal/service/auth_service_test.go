package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/project-service/internal/config"
	"github.com/spec-kit/project-service/internal/domain"
	apperrors "github.com/spec-kit/project-service/pkg/util"
)

func newAuthFixture() (*AuthService, *fakeUserRepo, *fakeProfileRepo) {
	users := newFakeUserRepo()
	profiles := newFakeProfileRepo()
	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 60,
			BcryptCost:            4,
			MinPasswordLength:     6,
		},
	}
	svc := NewAuthService(cfg, AuthDependencies{
		UserRepo:    users,
		ProfileRepo: profiles,
	})
	return svc, users, profiles
}

func TestSignUpAndSignIn(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	profile, token, exp, err := svc.SignUp(ctx, "Alice@Example.com", "hunter22", "Alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, exp.IsZero())
	require.Equal(t, domain.GlobalRoleUser, profile.Role)
	require.Equal(t, "UTC", profile.Timezone)
	require.NotNil(t, profile.FullName)
	require.Equal(t, "Alice", *profile.FullName)

	// Email is normalized, so sign-in with different casing succeeds.
	signedIn, token, _, err := svc.SignIn(ctx, "alice@example.COM", "hunter22")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, profile.UserID, signedIn.UserID)
}

func TestSignUpRejectsDuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	_, _, _, err := svc.SignUp(ctx, "alice@example.com", "hunter22", "")
	require.NoError(t, err)

	_, _, _, err = svc.SignUp(ctx, "alice@example.com", "hunter22", "")
	require.True(t, apperrors.IsCode(err, "CONFLICT"))
}

func TestSignUpPasswordPolicy(t *testing.T) {
	svc, _, _ := newAuthFixture()

	_, _, _, err := svc.SignUp(context.Background(), "alice@example.com", "abc", "")
	require.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestSignInInvalidCredentials(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	_, _, _, err := svc.SignIn(ctx, "ghost@example.com", "whatever")
	require.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))

	_, _, _, err = svc.SignUp(ctx, "alice@example.com", "hunter22", "")
	require.NoError(t, err)

	_, _, _, err = svc.SignIn(ctx, "alice@example.com", "wrongpass")
	require.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))
}

func TestUpdateProfileRejectsEmptyNameBeforeWrite(t *testing.T) {
	svc, _, profiles := newAuthFixture()
	ctx := context.Background()

	profile, _, _, err := svc.SignUp(ctx, "alice@example.com", "hunter22", "Alice")
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, profile.UserID, "   ", nil)
	require.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	stored, err := profiles.GetByUserID(ctx, profile.UserID)
	require.NoError(t, err)
	require.NotNil(t, stored.FullName)
	require.Equal(t, "Alice", *stored.FullName)
}

func TestUpdateProfileAppliesFields(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	profile, _, _, err := svc.SignUp(ctx, "alice@example.com", "hunter22", "Alice")
	require.NoError(t, err)

	tz := "Europe/Berlin"
	updated, err := svc.UpdateProfile(ctx, profile.UserID, "Alice B", &tz)
	require.NoError(t, err)
	require.Equal(t, "Alice B", *updated.FullName)
	require.Equal(t, "Europe/Berlin", updated.Timezone)
}

func TestUpdatePassword(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	profile, _, _, err := svc.SignUp(ctx, "alice@example.com", "hunter22", "")
	require.NoError(t, err)

	require.True(t, apperrors.IsCode(svc.UpdatePassword(ctx, profile.UserID, "abc"), "VALIDATION_FAILED"))
	require.NoError(t, svc.UpdatePassword(ctx, profile.UserID, "newpassword"))

	_, _, _, err = svc.SignIn(ctx, "alice@example.com", "hunter22")
	require.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))

	_, _, _, err = svc.SignIn(ctx, "alice@example.com", "newpassword")
	require.NoError(t, err)
}

func TestRefreshProfileProvisionsMissingRow(t *testing.T) {
	svc, users, _ := newAuthFixture()
	ctx := context.Background()

	user := &domain.User{Email: "orphan@example.com", PasswordHash: "x"}
	require.NoError(t, users.Create(ctx, user))

	profile, err := svc.RefreshProfile(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, domain.GlobalRoleUser, profile.Role)
	require.Equal(t, "UTC", profile.Timezone)
}

func TestRefreshProfileEmptyIDIsNoop(t *testing.T) {
	svc, _, _ := newAuthFixture()

	profile, err := svc.RefreshProfile(context.Background(), "")
	require.NoError(t, err)
	require.Nil(t, profile)
}
