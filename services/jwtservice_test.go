package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kalavedi/config"
	"kalavedi/repository/memory"
)

func newTestAuthService(ttl time.Duration) *AuthService {
	return NewAuthService(memory.NewAdminRepository(), config.AuthConfig{JWTSecret: "test-secret", TokenTTL: ttl}, zap.NewNop())
}

func TestAuthService_CreateAdminAndLogin(t *testing.T) {
	svc := newTestAuthService(time.Hour)
	ctx := context.Background()

	admin, err := svc.CreateAdmin(ctx, " Secretary@BKV.org ", "Secretary", "kalavedi-1987")
	require.NoError(t, err)
	assert.Equal(t, "secretary@bkv.org", admin.Email)
	assert.Equal(t, RoleAdmin, admin.Role)
	assert.NotEqual(t, "kalavedi-1987", admin.Password)

	_, err = svc.CreateAdmin(ctx, "secretary@bkv.org", "Again", "another-password")
	assert.ErrorIs(t, err, ErrAdminExists)
	_, err = svc.CreateAdmin(ctx, "short@bkv.org", "Short", "1234")
	assert.Error(t, err)

	res, err := svc.Login(ctx, "SECRETARY@bkv.org", "kalavedi-1987")
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.WithinDuration(t, time.Now().Add(time.Hour), res.ExpiresAt, time.Minute)

	claims, err := svc.ParseAccessToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, admin.AdminID, claims.UserID)
	assert.Equal(t, RoleAdmin, claims.Role)

	_, err = svc.Login(ctx, "secretary@bkv.org", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody@bkv.org", "kalavedi-1987")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_ParseAccessTokenRejects(t *testing.T) {
	svc := newTestAuthService(time.Hour)

	expired := newTestAuthService(-time.Minute)
	token, _, err := expired.CreateAccessToken("admin-1", "a@bkv.org", RoleAdmin)
	require.NoError(t, err)
	_, err = svc.ParseAccessToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	other := NewAuthService(memory.NewAdminRepository(), config.AuthConfig{JWTSecret: "other", TokenTTL: time.Hour}, zap.NewNop())
	token, _, err = other.CreateAccessToken("admin-1", "a@bkv.org", RoleAdmin)
	require.NoError(t, err)
	_, err = svc.ParseAccessToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	_, err = svc.ParseAccessToken("not.a.token")
	assert.Error(t, err)

	token, _, err = svc.CreateAccessToken("", "a@bkv.org", RoleAdmin)
	require.NoError(t, err)
	_, err = svc.ParseAccessToken(token)
	assert.Error(t, err)
}
