package authz_test

import (
	"testing"

	"woms/internal/authz"
	"woms/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func user(role string, confirmed bool) *model.User {
	return &model.User{ID: uuid.New(), Role: role, IsRoleConfirmed: confirmed}
}

func TestRoleGates(t *testing.T) {
	policy := authz.NewRolePolicy()

	cases := []struct {
		name   string
		actor  *model.User
		action authz.Action
		want   bool
	}{
		{"confirmed analyst approves", user(model.RoleBudgetAnalyst, true), authz.ActionApproveRestock, true},
		{"unconfirmed analyst blocked", user(model.RoleBudgetAnalyst, false), authz.ActionApproveRestock, false},
		{"employee cannot approve", user(model.RoleEmployee, true), authz.ActionApproveRestock, false},
		{"analyst cannot countersign", user(model.RoleBudgetAnalyst, true), authz.ActionSignVoucher, false},
		{"confirmed engineer countersigns", user(model.RoleEngineering, true), authz.ActionSignVoucher, true},
		{"admin manages roles", user(model.RoleWarehouseAdmin, true), authz.ActionManageRoles, true},
		{"engineer cannot manage roles", user(model.RoleEngineering, true), authz.ActionManageRoles, false},
		{"anyone creates requests", user(model.RoleEmployee, true), authz.ActionCreateRestock, true},
		{"anyone rejects requests", user(model.RoleWarehouseStaff, false), authz.ActionRejectRestock, true},
		{"nil actor denied", nil, authz.ActionCreateRestock, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, policy.Can(tc.actor, tc.action, nil))
		})
	}
}

func TestDraftOwnership(t *testing.T) {
	policy := authz.NewRolePolicy()
	owner := user(model.RoleWarehouseStaff, true)
	other := user(model.RoleWarehouseStaff, true)
	draft := &model.DraftPurchaseOrder{ID: uuid.New(), CreatedBy: owner.ID}

	assert.True(t, policy.Can(owner, authz.ActionEditDraftPO, draft))
	assert.True(t, policy.Can(owner, authz.ActionFinalizePO, draft))
	assert.True(t, policy.Can(owner, authz.ActionPreviewPO, draft))

	assert.False(t, policy.Can(other, authz.ActionEditDraftPO, draft))
	assert.False(t, policy.Can(other, authz.ActionFinalizePO, draft))
	assert.False(t, policy.Can(other, authz.ActionPreviewPO, draft))

	// A missing resource never grants ownership-scoped actions.
	assert.False(t, policy.Can(owner, authz.ActionEditDraftPO, nil))
}
