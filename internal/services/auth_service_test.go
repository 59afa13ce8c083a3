// internal/services/auth_service_test.go
package services

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerRequest() *RegisterRequest {
	suffix := uuid.New().String()[:8]
	return &RegisterRequest{
		Username: "buyer_" + suffix,
		Email:    fmt.Sprintf("buyer-%s@example.com", suffix),
		Password: "password123",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	db := testDB(t)
	svc := NewAuthService(db, testConfig())

	req := registerRequest()
	resp, err := svc.Register(req)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, req.Username, resp.User.Username)

	login, err := svc.Login(&LoginRequest{Email: req.Email, Password: req.Password})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := testDB(t)
	svc := NewAuthService(db, testConfig())

	req := registerRequest()
	_, err := svc.Register(req)
	require.NoError(t, err)

	dup := registerRequest()
	dup.Email = req.Email
	_, err = svc.Register(dup)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginWrongPassword(t *testing.T) {
	db := testDB(t)
	svc := NewAuthService(db, testConfig())

	req := registerRequest()
	_, err := svc.Register(req)
	require.NoError(t, err)

	_, err = svc.Login(&LoginRequest{Email: req.Email, Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(&LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
