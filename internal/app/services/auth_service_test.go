package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monchobi/artschool/internal/app/models"
	"github.com/monchobi/artschool/internal/pkg/apperrors"
	"github.com/monchobi/artschool/internal/pkg/auth"
)

func newAuthFixture(t *testing.T) (*AuthService, *memStore, *auth.JWTService) {
	t.Helper()
	store := newMemStore()
	jwtService := auth.NewJWTService(auth.JWTConfig{
		SecretKey:      "test-secret",
		AccessTokenExp: time.Hour,
		TokenIssuer:    "artschool-test",
	})
	return NewAuthService(userStore{store}, jwtService, zerolog.Nop()), store, jwtService
}

func TestIssueToken_RoleFromProfile(t *testing.T) {
	svc, _, jwtService := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.GrantAdmin(ctx, []string{"Boss@Studio.art"}))

	tests := []struct {
		email string
		role  models.RoleType
	}{
		{email: "boss@studio.art", role: models.RoleAdmin},
		{email: "new@student.art", role: models.RoleStudent},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			resp, err := svc.IssueToken(ctx, tt.email)
			require.NoError(t, err)
			assert.Equal(t, "Bearer", resp.TokenType)
			assert.Equal(t, int64(3600), resp.ExpiresIn)
			assert.Equal(t, string(tt.role), resp.Role)

			claims, err := jwtService.ValidateAndExtractClaims(resp.Token)
			require.NoError(t, err)
			assert.Equal(t, tt.email, claims.Email)
			assert.Equal(t, string(tt.role), claims.RoleType)
		})
	}
}

func TestIssueToken_RejectsBadEmail(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, err := svc.IssueToken(context.Background(), "")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.IssueToken(context.Background(), "not-an-email")
	assert.ErrorIs(t, err, apperrors.ErrInvalidEmail)
}

func TestUpsertUser_KeepsRole(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	created, err := svc.UpsertUser(ctx, "ana@example.com", "Ana", "")
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, created.Role)

	_, err = svc.SetRole(ctx, "ana@example.com", "instructor")
	require.NoError(t, err)

	updated, err := svc.UpsertUser(ctx, "ANA@example.com", "Ana Sousa", "http://img/ana.png")
	require.NoError(t, err)
	assert.Equal(t, "Ana Sousa", updated.Name)
	assert.Equal(t, models.RoleInstructor, updated.Role)

	got, err := svc.GetUser(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, "http://img/ana.png", got.PhotoURL)
}

func TestSetRole_Errors(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.SetRole(ctx, "ghost@example.com", "admin")
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	_, err = svc.SetRole(ctx, "ghost@example.com", "superuser")
	assert.ErrorIs(t, err, apperrors.ErrUnknownRole)
}

func TestGrantAdmin_SkipsInvalidEmails(t *testing.T) {
	svc, store, _ := newAuthFixture(t)

	require.NoError(t, svc.GrantAdmin(context.Background(), []string{"", "nope", "root@studio.art"}))

	require.Len(t, store.users, 1)
	assert.Equal(t, models.RoleAdmin, store.users["root@studio.art"].Role)

	users, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
