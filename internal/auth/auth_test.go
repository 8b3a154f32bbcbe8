package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	service, err := NewService("test-secret", "operator", "hunter22", 24*time.Hour)
	require.NoError(t, err)
	return service
}

func TestNewService(t *testing.T) {
	service := newTestService(t)
	assert.NotNil(t, service)
	assert.NotEmpty(t, service.jwtSecret)
	assert.Equal(t, 24*time.Hour, service.tokenExp)
	assert.NotEqual(t, "hunter22", service.passwordHash, "password must not be stored in plain text")

	_, err := NewService("", "operator", "hunter22", time.Hour)
	assert.Error(t, err)
}

func TestService_Authenticate(t *testing.T) {
	service := newTestService(t)

	assert.NoError(t, service.Authenticate("operator", "hunter22"))
	assert.ErrorIs(t, service.Authenticate("operator", "wrong"), ErrInvalidCredentials)
	assert.ErrorIs(t, service.Authenticate("intruder", "hunter22"), ErrInvalidCredentials)
}

func TestService_TokenRoundTrip(t *testing.T) {
	service := newTestService(t)

	token, err := service.GenerateToken("operator")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "operator", claims.Username)
	assert.Greater(t, claims.Exp, time.Now().Unix())
}

func TestService_ValidateToken_BearerPrefix(t *testing.T) {
	service := newTestService(t)
	token, err := service.GenerateToken("operator")
	require.NoError(t, err)

	claims, err := service.ValidateToken("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "operator", claims.Username)
}

func TestService_ValidateToken_Invalid(t *testing.T) {
	service := newTestService(t)

	_, err := service.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_ValidateToken_WrongSecret(t *testing.T) {
	service := newTestService(t)
	other, err := NewService("other-secret", "operator", "hunter22", time.Hour)
	require.NoError(t, err)

	token, err := other.GenerateToken("operator")
	require.NoError(t, err)

	_, err = service.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_ValidateToken_Expired(t *testing.T) {
	service, err := NewService("test-secret", "operator", "hunter22", -time.Hour)
	require.NoError(t, err)

	token, err := service.GenerateToken("operator")
	require.NoError(t, err)

	_, err = service.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}
