package service_test

import (
	"context"
	"testing"

	"woms/internal/model"
	"woms/internal/service"
	"woms/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00}

func TestRegisterEmployeeIsUsableImmediately(t *testing.T) {
	env := newTestEnv(t)

	profile, err := env.auth.Register(context.Background(), service.RegisterDTO{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleEmployee, profile.Role)
	assert.True(t, profile.IsRoleConfirmed)
}

func TestRegisterElevatedRoleNotifiesAdmins(t *testing.T) {
	env := newTestEnv(t)
	admin := env.newUser(t, "root", model.RoleWarehouseAdmin, false)

	profile, err := env.auth.Register(context.Background(), service.RegisterDTO{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "password123",
		Role:     model.RoleBudgetAnalyst,
	})
	require.NoError(t, err)
	assert.False(t, profile.IsRoleConfirmed)

	notifications := env.notificationsFor(t, admin)
	require.Len(t, notifications, 1)
	assert.Contains(t, notifications[0].Message, "bob")
}

func TestRegisterRejectsUnknownRoleAndDuplicates(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auth.Register(context.Background(), service.RegisterDTO{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password123",
		Role:     "superuser",
	})
	assert.Equal(t, apperror.Validation, apperror.KindOf(err))

	_, err = env.auth.Register(context.Background(), service.RegisterDTO{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	_, err = env.auth.Register(context.Background(), service.RegisterDTO{
		Username: "alice2",
		Email:    "alice@example.com",
		Password: "password123",
	})
	assert.Equal(t, apperror.Validation, apperror.KindOf(err))

	_, err = env.auth.Register(context.Background(), service.RegisterDTO{
		Username: "alice",
		Email:    "other@example.com",
		Password: "password123",
	})
	assert.Equal(t, apperror.Validation, apperror.KindOf(err))
}

func TestLoginAndRefreshRotation(t *testing.T) {
	env := newTestEnv(t)
	env.newUser(t, "alice", model.RoleEmployee, false)

	ctx := context.Background()
	pair, profile, err := env.auth.Login(ctx, service.LoginDTO{
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "alice", profile.Username)

	rotated, err := env.auth.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// The presented token is single-use.
	_, err = env.auth.Refresh(ctx, pair.RefreshToken)
	assert.Equal(t, apperror.Unauthorized, apperror.KindOf(err))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.newUser(t, "alice", model.RoleEmployee, false)

	_, _, err := env.auth.Login(context.Background(), service.LoginDTO{
		Email:    "alice@example.com",
		Password: "wrong-password",
	})
	assert.Equal(t, apperror.Unauthorized, apperror.KindOf(err))

	_, _, err = env.auth.Login(context.Background(), service.LoginDTO{
		Email:    "nobody@example.com",
		Password: "password123",
	})
	assert.Equal(t, apperror.Unauthorized, apperror.KindOf(err))
}

func TestUploadSignatureValidatesPNG(t *testing.T) {
	env := newTestEnv(t)
	analyst := env.newUser(t, "bob", model.RoleBudgetAnalyst, false)

	ctx := context.Background()
	err := env.auth.UploadSignature(ctx, analyst.ID.String(), []byte("not a png"))
	assert.Equal(t, apperror.Validation, apperror.KindOf(err))

	require.NoError(t, env.auth.UploadSignature(ctx, analyst.ID.String(), pngHeader))

	var updated model.User
	require.NoError(t, env.db.First(&updated, "id = ?", analyst.ID).Error)
	assert.Equal(t, "signatures/"+analyst.ID.String()+".png", updated.SignaturePath)
	assert.True(t, env.store.Exists(updated.SignaturePath))

	profile, err := env.auth.Me(ctx, analyst.ID.String())
	require.NoError(t, err)
	assert.True(t, profile.HasSignature)
}
