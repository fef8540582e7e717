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

// registerElevated registers an account requesting an elevated role, leaving
// it unconfirmed.
func registerElevated(t *testing.T, env *testEnv, username, role string) *model.User {
	t.Helper()
	_, err := env.auth.Register(context.Background(), service.RegisterDTO{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
		Role:     role,
	})
	require.NoError(t, err)

	var user model.User
	require.NoError(t, env.db.First(&user, "username = ?", username).Error)
	require.False(t, user.IsRoleConfirmed)
	return &user
}

func TestApproveRoleConfirmsAndRecords(t *testing.T) {
	env := newTestEnv(t)
	admin := env.newUser(t, "root", model.RoleWarehouseAdmin, false)
	subject := registerElevated(t, env, "bob", model.RoleBudgetAnalyst)

	require.NoError(t, env.roles.Approve(context.Background(), subject.ID.String(), admin.ID.String()))

	var updated model.User
	require.NoError(t, env.db.First(&updated, "id = ?", subject.ID).Error)
	assert.True(t, updated.IsRoleConfirmed)
	assert.Equal(t, model.RoleBudgetAnalyst, updated.Role)

	var records []model.RoleRequestRecord
	require.NoError(t, env.db.Where("user_id = ?", subject.ID).Find(&records).Error)
	require.Len(t, records, 1)
	assert.Equal(t, model.RoleRequestApproved, records[0].Status)
	assert.Equal(t, model.RoleBudgetAnalyst, records[0].RequestedRole)
	require.NotNil(t, records[0].ProcessedBy)
	assert.Equal(t, admin.ID, *records[0].ProcessedBy)

	// Registration pending + approval = two notifications for the subject.
	notifications := env.notificationsFor(t, subject)
	require.Len(t, notifications, 2)
	assert.Contains(t, notifications[1].Message, "approved")
}

func TestApproveRoleIsIdempotentButAlwaysRecorded(t *testing.T) {
	env := newTestEnv(t)
	admin := env.newUser(t, "root", model.RoleWarehouseAdmin, false)
	subject := registerElevated(t, env, "bob", model.RoleEngineering)

	require.NoError(t, env.roles.Approve(context.Background(), subject.ID.String(), admin.ID.String()))
	require.NoError(t, env.roles.Approve(context.Background(), subject.ID.String(), admin.ID.String()))

	var count int64
	require.NoError(t, env.db.Model(&model.RoleRequestRecord{}).Where("user_id = ?", subject.ID).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestRejectRoleFallsBackToEmployee(t *testing.T) {
	env := newTestEnv(t)
	admin := env.newUser(t, "root", model.RoleWarehouseAdmin, false)
	subject := registerElevated(t, env, "bob", model.RoleBudgetAnalyst)

	require.NoError(t, env.roles.Reject(context.Background(), subject.ID.String(), admin.ID.String()))

	var updated model.User
	require.NoError(t, env.db.First(&updated, "id = ?", subject.ID).Error)
	assert.Equal(t, model.RoleEmployee, updated.Role)
	assert.True(t, updated.IsRoleConfirmed)

	var record model.RoleRequestRecord
	require.NoError(t, env.db.First(&record, "user_id = ?", subject.ID).Error)
	assert.Equal(t, model.RoleRequestRejected, record.Status)
	// The record keeps the role that was asked for, not the fallback.
	assert.Equal(t, model.RoleBudgetAnalyst, record.RequestedRole)

	notifications := env.notificationsFor(t, subject)
	require.Len(t, notifications, 2)
	assert.Contains(t, notifications[1].Message, "rejected")
}

func TestRoleManagementRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	analyst := env.newUser(t, "bob", model.RoleBudgetAnalyst, false)
	subject := registerElevated(t, env, "carol", model.RoleEngineering)

	err := env.roles.Approve(context.Background(), subject.ID.String(), analyst.ID.String())
	assert.Equal(t, apperror.Unauthorized, apperror.KindOf(err))

	_, _, err = env.roles.ListPending(context.Background(), analyst.ID.String(), 0, 10)
	assert.Equal(t, apperror.Unauthorized, apperror.KindOf(err))
}

func TestPendingRoleRequestsExcludesEmployees(t *testing.T) {
	env := newTestEnv(t)
	admin := env.newUser(t, "root", model.RoleWarehouseAdmin, false)
	registerElevated(t, env, "bob", model.RoleBudgetAnalyst)
	registerElevated(t, env, "carol", model.RoleEngineering)

	// Plain employees are auto-confirmed and never pend.
	_, err := env.auth.Register(context.Background(), service.RegisterDTO{
		Username: "dave",
		Email:    "dave@example.com",
		Password: "password123",
	})
	require.NoError(t, err)

	pending, total, err := env.roles.ListPending(context.Background(), admin.ID.String(), 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, pending, 2)
}

func TestRoleHistorySearch(t *testing.T) {
	env := newTestEnv(t)
	admin := env.newUser(t, "root", model.RoleWarehouseAdmin, false)
	bob := registerElevated(t, env, "bob", model.RoleBudgetAnalyst)
	carol := registerElevated(t, env, "carol", model.RoleEngineering)

	ctx := context.Background()
	require.NoError(t, env.roles.Approve(ctx, bob.ID.String(), admin.ID.String()))
	require.NoError(t, env.roles.Reject(ctx, carol.ID.String(), admin.ID.String()))

	all, total, err := env.roles.History(ctx, admin.ID.String(), service.RoleHistoryFilter{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, all, 2)

	rejected, total, err := env.roles.History(ctx, admin.ID.String(), service.RoleHistoryFilter{
		Status: model.RoleRequestRejected,
		Limit:  10,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "carol", rejected[0].Username)

	// Case-insensitive match on the subject's username.
	matched, total, err := env.roles.History(ctx, admin.ID.String(), service.RoleHistoryFilter{
		Username: "BOB",
		Limit:    10,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "bob", matched[0].Username)

	// Matching the processing admin returns everything they decided.
	_, total, err = env.roles.History(ctx, admin.ID.String(), service.RoleHistoryFilter{
		Username: "root",
		Limit:    10,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}
