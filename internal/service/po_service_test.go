package service_test

import (
	"context"
	"strings"
	"testing"

	"woms/internal/model"
	"woms/internal/service"
	"woms/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// approvedRequest runs a request through budget approval so a PO can be
// drafted against it.
func approvedRequest(t *testing.T, env *testEnv) (service.RestockRequestResponse, *model.User) {
	t.Helper()
	requester := env.newUser(t, "alice", model.RoleEmployee, false)
	analyst := env.newUser(t, "bob", model.RoleBudgetAnalyst, true)
	resp := submitRequest(t, env, requester)
	_, err := env.restocking.Approve(context.Background(), resp.ID, analyst.ID.String())
	require.NoError(t, err)
	return resp, requester
}

func TestCreateDraftRequiresApprovedRequest(t *testing.T) {
	env := newTestEnv(t)
	requester := env.newUser(t, "alice", model.RoleEmployee, false)
	staff := env.newUser(t, "frank", model.RoleWarehouseStaff, false)

	resp := submitRequest(t, env, requester)
	_, err := env.po.CreateDraft(context.Background(), resp.ID, staff.ID.String())
	assert.Equal(t, apperror.PreconditionFailed, apperror.KindOf(err))
}

func TestCreateDraftMintsNumbersAndIsExclusive(t *testing.T) {
	env := newTestEnv(t)
	resp, _ := approvedRequest(t, env)
	staff := env.newUser(t, "frank", model.RoleWarehouseStaff, false)

	draft, err := env.po.CreateDraft(context.Background(), resp.ID, staff.ID.String())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(draft.PONumber, "PO-"))
	assert.True(t, strings.HasPrefix(draft.RVNumber, "RV-"))
	assert.Equal(t, model.DraftOpen, draft.Status)

	// The PO number is projected onto the request.
	var request model.MaterialRestockRequest
	require.NoError(t, env.db.First(&request, "id = ?", resp.ID).Error)
	assert.Equal(t, draft.PONumber, request.PONumber)

	// One draft per request.
	_, err = env.po.CreateDraft(context.Background(), resp.ID, staff.ID.String())
	assert.Equal(t, apperror.AlreadyProcessed, apperror.KindOf(err))
}

func TestSaveDraftMergesFields(t *testing.T) {
	env := newTestEnv(t)
	resp, _ := approvedRequest(t, env)
	staff := env.newUser(t, "frank", model.RoleWarehouseStaff, false)

	draft, err := env.po.CreateDraft(context.Background(), resp.ID, staff.ID.String())
	require.NoError(t, err)

	ctx := context.Background()
	actor := staff.ID.String()

	_, err = env.po.SaveDraft(ctx, draft.ID, actor, map[string]interface{}{
		"supplier": "ACME Hardware",
		"remarks":  "rush order",
	})
	require.NoError(t, err)

	// A later save only overwrites the keys it mentions.
	updated, err := env.po.SaveDraft(ctx, draft.ID, actor, map[string]interface{}{
		"remarks":     "standard delivery",
		"grand_total": "1234.50",
	})
	require.NoError(t, err)
	assert.Equal(t, "ACME Hardware", updated.FillableFields["supplier"])
	assert.Equal(t, "standard delivery", updated.FillableFields["remarks"])
	assert.Equal(t, "1234.50", updated.FillableFields["grand_total"])
}

func TestSaveDraftRejectsNestedValues(t *testing.T) {
	env := newTestEnv(t)
	resp, _ := approvedRequest(t, env)
	staff := env.newUser(t, "frank", model.RoleWarehouseStaff, false)

	draft, err := env.po.CreateDraft(context.Background(), resp.ID, staff.ID.String())
	require.NoError(t, err)

	_, err = env.po.SaveDraft(context.Background(), draft.ID, staff.ID.String(), map[string]interface{}{
		"supplier": map[string]interface{}{"name": "nested"},
	})
	assert.Equal(t, apperror.Validation, apperror.KindOf(err))

	// The items key is the sanctioned exception: a list of flat rows.
	_, err = env.po.SaveDraft(context.Background(), draft.ID, staff.ID.String(), map[string]interface{}{
		"items": []interface{}{
			map[string]interface{}{"description": "Hard Hat", "quantity": "10", "unit_price": "25.00"},
		},
	})
	assert.NoError(t, err)
}

func TestSaveDraftEnforcesOwnership(t *testing.T) {
	env := newTestEnv(t)
	resp, _ := approvedRequest(t, env)
	owner := env.newUser(t, "frank", model.RoleWarehouseStaff, false)
	other := env.newUser(t, "grace", model.RoleWarehouseStaff, false)

	draft, err := env.po.CreateDraft(context.Background(), resp.ID, owner.ID.String())
	require.NoError(t, err)

	_, err = env.po.SaveDraft(context.Background(), draft.ID, other.ID.String(), map[string]interface{}{
		"remarks": "takeover",
	})
	assert.Equal(t, apperror.Unauthorized, apperror.KindOf(err))

	_, err = env.po.Finalize(context.Background(), draft.ID, other.ID.String())
	assert.Equal(t, apperror.Unauthorized, apperror.KindOf(err))

	_, err = env.po.Preview(context.Background(), draft.ID, other.ID.String())
	assert.Equal(t, apperror.Unauthorized, apperror.KindOf(err))
}

func TestFinalizeCreatesImmutableOrderOnce(t *testing.T) {
	env := newTestEnv(t)
	resp, requester := approvedRequest(t, env)
	staff := env.newUser(t, "frank", model.RoleWarehouseStaff, false)

	ctx := context.Background()
	actor := staff.ID.String()

	draft, err := env.po.CreateDraft(ctx, resp.ID, actor)
	require.NoError(t, err)
	_, err = env.po.SaveDraft(ctx, draft.ID, actor, map[string]interface{}{
		"supplier":    "ACME Hardware",
		"grand_total": "1234.50",
		"remarks":     "rush order",
	})
	require.NoError(t, err)

	result, err := env.po.Finalize(ctx, draft.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, draft.PONumber, result.PONumber)
	assert.Equal(t, "1234.50", result.GrandTotal)
	assert.True(t, env.store.Exists("purchase_orders/"+draft.PONumber+".pdf"))

	var order model.PurchaseOrder
	require.NoError(t, env.db.First(&order, "po_number = ?", draft.PONumber).Error)
	assert.Equal(t, "ACME Hardware", order.Supplier)
	assert.Equal(t, "rush order", order.Remarks)
	assert.Equal(t, "1234.5", order.GrandTotal.String())

	// The draft is closed and frozen.
	var stored model.DraftPurchaseOrder
	require.NoError(t, env.db.First(&stored, "id = ?", draft.ID).Error)
	assert.Equal(t, model.DraftFinalized, stored.Status)

	_, err = env.po.Finalize(ctx, draft.ID, actor)
	assert.Equal(t, apperror.AlreadyProcessed, apperror.KindOf(err))
	_, err = env.po.SaveDraft(ctx, draft.ID, actor, map[string]interface{}{"remarks": "late edit"})
	assert.Equal(t, apperror.AlreadyProcessed, apperror.KindOf(err))

	// The requester hears about the finalized order (after the approval one).
	notifications := env.notificationsFor(t, requester)
	require.Len(t, notifications, 2)
	assert.Contains(t, notifications[1].Message, draft.PONumber)
}

func TestFinalizeLosesWhenDraftClosesMidTransition(t *testing.T) {
	env := newTestEnv(t)
	resp, _ := approvedRequest(t, env)
	staff := env.newUser(t, "frank", model.RoleWarehouseStaff, false)

	ctx := context.Background()
	actor := staff.ID.String()

	draft, err := env.po.CreateDraft(ctx, resp.ID, actor)
	require.NoError(t, err)
	_, err = env.po.SaveDraft(ctx, draft.ID, actor, map[string]interface{}{"grand_total": "50"})
	require.NoError(t, err)

	// A competing finalization closes the draft after this one has read it
	// but before its guarded update runs.
	interleaveUpdate(t, env, "draft_purchase_orders", func(tx *gorm.DB) {
		require.NoError(t, tx.Exec(
			"UPDATE draft_purchase_orders SET status = ? WHERE id = ?",
			model.DraftFinalized, draft.ID,
		).Error)
	})

	_, err = env.po.Finalize(ctx, draft.ID, actor)
	assert.Equal(t, apperror.AlreadyProcessed, apperror.KindOf(err))

	// The losing finalization rolled back whole: no purchase order row.
	var count int64
	require.NoError(t, env.db.Model(&model.PurchaseOrder{}).Where("po_number = ?", draft.PONumber).Count(&count).Error)
	assert.Zero(t, count)
}

func TestFinalizeRejectsMalformedGrandTotal(t *testing.T) {
	env := newTestEnv(t)
	resp, _ := approvedRequest(t, env)
	staff := env.newUser(t, "frank", model.RoleWarehouseStaff, false)

	ctx := context.Background()
	actor := staff.ID.String()

	draft, err := env.po.CreateDraft(ctx, resp.ID, actor)
	require.NoError(t, err)
	_, err = env.po.SaveDraft(ctx, draft.ID, actor, map[string]interface{}{"grand_total": "a lot"})
	require.NoError(t, err)

	_, err = env.po.Finalize(ctx, draft.ID, actor)
	assert.Equal(t, apperror.Validation, apperror.KindOf(err))

	// Nothing was finalized.
	var stored model.DraftPurchaseOrder
	require.NoError(t, env.db.First(&stored, "id = ?", draft.ID).Error)
	assert.Equal(t, model.DraftOpen, stored.Status)
}

func TestPurchaseOrderPDFVisibility(t *testing.T) {
	env := newTestEnv(t)
	resp, requester := approvedRequest(t, env)
	staff := env.newUser(t, "frank", model.RoleWarehouseStaff, false)
	outsider := env.newUser(t, "eve", model.RoleEmployee, false)

	ctx := context.Background()
	actor := staff.ID.String()

	draft, err := env.po.CreateDraft(ctx, resp.ID, actor)
	require.NoError(t, err)
	_, err = env.po.Finalize(ctx, draft.ID, actor)
	require.NoError(t, err)

	// Drafter and requester can fetch it, others cannot.
	_, name, err := env.po.PurchaseOrderPDF(ctx, resp.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, draft.PONumber+".pdf", name)

	_, _, err = env.po.PurchaseOrderPDF(ctx, resp.ID, requester.ID.String())
	assert.NoError(t, err)

	_, _, err = env.po.PurchaseOrderPDF(ctx, resp.ID, outsider.ID.String())
	assert.Equal(t, apperror.Unauthorized, apperror.KindOf(err))
}

func TestPurchaseOrderPDFRegeneratesLostBlob(t *testing.T) {
	env := newTestEnv(t)
	resp, _ := approvedRequest(t, env)
	staff := env.newUser(t, "frank", model.RoleWarehouseStaff, false)

	ctx := context.Background()
	actor := staff.ID.String()

	draft, err := env.po.CreateDraft(ctx, resp.ID, actor)
	require.NoError(t, err)
	_, err = env.po.Finalize(ctx, draft.ID, actor)
	require.NoError(t, err)

	env.store.Delete("purchase_orders/" + draft.PONumber + ".pdf")

	pdf, _, err := env.po.PurchaseOrderPDF(ctx, resp.ID, actor)
	require.NoError(t, err)
	assert.Contains(t, string(pdf), draft.PONumber)
	assert.True(t, env.store.Exists("purchase_orders/"+draft.PONumber+".pdf"))
}
