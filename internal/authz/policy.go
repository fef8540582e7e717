package authz

import (
	"woms/internal/model"
)

// Action identifies a capability checked against the policy.
type Action string

const (
	ActionCreateRestock  Action = "restocking.create"
	ActionApproveRestock Action = "restocking.approve"
	ActionRejectRestock  Action = "restocking.reject"
	ActionViewHistory    Action = "restocking.history"
	ActionSignVoucher    Action = "restocking.sign"
	ActionCreateDraftPO  Action = "po.create_draft"
	ActionEditDraftPO    Action = "po.edit_draft"
	ActionFinalizePO     Action = "po.finalize"
	ActionPreviewPO      Action = "po.preview"
	ActionManageRoles    Action = "roles.manage"
)

// Policy is the single capability check the workflow engines depend on.
// Resource carries the entity being acted on when ownership matters (e.g.
// *model.DraftPurchaseOrder); it may be nil for purely role-gated actions.
type Policy interface {
	Can(actor *model.User, action Action, resource interface{}) bool
}

// RolePolicy implements Policy from the static role table of this system.
type RolePolicy struct{}

func NewRolePolicy() *RolePolicy { return &RolePolicy{} }

// roleGates maps actions to the roles allowed to perform them. Actions
// absent from the table are open to any authenticated user.
var roleGates = map[Action][]string{
	ActionApproveRestock: {model.RoleBudgetAnalyst},
	ActionViewHistory:    {model.RoleBudgetAnalyst},
	ActionSignVoucher:    {model.RoleEngineering},
	ActionManageRoles:    {model.RoleWarehouseAdmin},
}

func (p *RolePolicy) Can(actor *model.User, action Action, resource interface{}) bool {
	if actor == nil {
		return false
	}

	if roles, gated := roleGates[action]; gated {
		allowed := false
		for _, role := range roles {
			if actor.Role == role {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
		// Elevated capabilities require the role to be admin-confirmed.
		if !actor.IsRoleConfirmed {
			return false
		}
	}

	// Ownership rules on draft purchase orders.
	switch action {
	case ActionEditDraftPO, ActionFinalizePO, ActionPreviewPO:
		draft, ok := resource.(*model.DraftPurchaseOrder)
		if !ok || draft == nil {
			return false
		}
		return draft.CreatedBy == actor.ID
	}

	return true
}
