package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"woms/internal/authz"
	"woms/internal/document"
	"woms/internal/metrics"
	"woms/internal/model"
	"woms/internal/repository"
	"woms/internal/storage"
	"woms/pkg/apperror"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// --- DTOs ---

type DraftPOResponse struct {
	ID             string                 `json:"id"`
	RequestID      string                 `json:"request_id"`
	PONumber       string                 `json:"po_number"`
	RVNumber       string                 `json:"rv_number"`
	Status         string                 `json:"status"`
	FillableFields map[string]interface{} `json:"fillable_fields"`
	CreatedAt      string                 `json:"created_at"`
	UpdatedAt      string                 `json:"updated_at"`
}

type FinalizePOResponse struct {
	PONumber   string `json:"po_number"`
	RVNumber   string `json:"rv_number"`
	GrandTotal string `json:"grand_total"`
	PDFPath    string `json:"pdf_path"`
}

// --- Interface ---

// POService manages the two-phase purchase order lifecycle: a mutable
// per-request draft that accumulates form fields, and the immutable
// purchase order produced by finalizing it.
type POService interface {
	CreateDraft(ctx context.Context, requestID, actorID string) (DraftPOResponse, error)
	SaveDraft(ctx context.Context, draftID, actorID string, fields map[string]interface{}) (DraftPOResponse, error)
	GetDraft(ctx context.Context, draftID, actorID string) (DraftPOResponse, error)
	DraftForRequest(ctx context.Context, requestID, actorID string) (DraftPOResponse, error)
	Finalize(ctx context.Context, draftID, actorID string) (FinalizePOResponse, error)
	Preview(ctx context.Context, draftID, actorID string) ([]byte, error)
	PurchaseOrderPDF(ctx context.Context, requestID, actorID string) ([]byte, string, error)
}

type poService struct {
	db       *gorm.DB
	txm      repository.TransactionManager
	drafts   repository.DraftPORepository
	orders   repository.PurchaseOrderRepository
	users    repository.UserRepository
	policy   authz.Policy
	renderer document.Renderer
	store    storage.Store
	notifier Notifier
}

func NewPOService(
	db *gorm.DB,
	txm repository.TransactionManager,
	drafts repository.DraftPORepository,
	orders repository.PurchaseOrderRepository,
	users repository.UserRepository,
	policy authz.Policy,
	renderer document.Renderer,
	store storage.Store,
	notifier Notifier,
) POService {
	return &poService{
		db:       db,
		txm:      txm,
		drafts:   drafts,
		orders:   orders,
		users:    users,
		policy:   policy,
		renderer: renderer,
		store:    store,
		notifier: notifier,
	}
}

// --- Implementation ---

func (s *poService) CreateDraft(ctx context.Context, requestID, actorID string) (DraftPOResponse, error) {
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return DraftPOResponse{}, err
	}

	var draft model.DraftPurchaseOrder
	err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		var request model.MaterialRestockRequest
		if findErr := repository.GetDB(txCtx, s.db).First(&request, "id = ?", requestID).Error; findErr != nil {
			return notFoundOr(findErr, "restocking request not found")
		}
		if request.Status != model.RestockApproved {
			return apperror.New(apperror.PreconditionFailed, "purchase orders can only be drafted for approved requests")
		}

		if _, existErr := s.drafts.GetByRequestID(txCtx, requestID); existErr == nil {
			return apperror.New(apperror.AlreadyProcessed, "a draft purchase order already exists for this request")
		} else if !errors.Is(existErr, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check for existing draft: %w", existErr)
		}

		poNumber, rvNumber := draftPONumbers(actor.ID, time.Now(), request.ID)
		draft = model.DraftPurchaseOrder{
			RequestID:      request.ID,
			CreatedBy:      actor.ID,
			PONumber:       poNumber,
			RVNumber:       rvNumber,
			Status:         model.DraftOpen,
			FillableFields: datatypes.JSONMap{},
		}
		if createErr := s.drafts.Create(txCtx, &draft); createErr != nil {
			return fmt.Errorf("failed to create draft purchase order: %w", createErr)
		}

		// Projection of the PO number onto the request for list views.
		if updErr := repository.GetDB(txCtx, s.db).Model(&request).Update("po_number", poNumber).Error; updErr != nil {
			return fmt.Errorf("failed to project po number: %w", updErr)
		}

		entry := model.AuditLog{
			UserID:     &actor.ID,
			Action:     model.ActionCreateDraftPO,
			EntityID:   draft.ID.String(),
			EntityName: poNumber,
		}
		if auditErr := repository.GetDB(txCtx, s.db).Create(&entry).Error; auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return DraftPOResponse{}, err
	}

	metrics.WorkflowTransitions.WithLabelValues("purchase_order", "drafted").Inc()
	return toDraftResponse(&draft), nil
}

func (s *poService) SaveDraft(ctx context.Context, draftID, actorID string, fields map[string]interface{}) (DraftPOResponse, error) {
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return DraftPOResponse{}, err
	}

	if err := validateFillableFields(fields); err != nil {
		return DraftPOResponse{}, err
	}

	draft, err := s.ownedDraft(ctx, draftID, actor, authz.ActionEditDraftPO)
	if err != nil {
		return DraftPOResponse{}, err
	}
	if draft.Status != model.DraftOpen {
		return DraftPOResponse{}, apperror.New(apperror.AlreadyProcessed, "draft has already been finalized")
	}

	// Key-wise merge: unmentioned fields survive, mentioned fields win.
	if draft.FillableFields == nil {
		draft.FillableFields = datatypes.JSONMap{}
	}
	for k, v := range fields {
		draft.FillableFields[k] = v
	}

	if saveErr := s.drafts.Save(ctx, draft); saveErr != nil {
		return DraftPOResponse{}, fmt.Errorf("failed to save draft: %w", saveErr)
	}
	return toDraftResponse(draft), nil
}

func (s *poService) GetDraft(ctx context.Context, draftID, actorID string) (DraftPOResponse, error) {
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return DraftPOResponse{}, err
	}
	draft, err := s.ownedDraft(ctx, draftID, actor, authz.ActionPreviewPO)
	if err != nil {
		return DraftPOResponse{}, err
	}
	return toDraftResponse(draft), nil
}

func (s *poService) DraftForRequest(ctx context.Context, requestID, actorID string) (DraftPOResponse, error) {
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return DraftPOResponse{}, err
	}
	draft, err := s.drafts.GetByRequestID(ctx, requestID)
	if err != nil {
		return DraftPOResponse{}, notFoundOr(err, "no draft purchase order for this request")
	}
	if !s.policy.Can(actor, authz.ActionPreviewPO, draft) {
		return DraftPOResponse{}, apperror.New(apperror.Unauthorized, "not the owner of this draft")
	}
	return toDraftResponse(draft), nil
}

func (s *poService) Finalize(ctx context.Context, draftID, actorID string) (FinalizePOResponse, error) {
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return FinalizePOResponse{}, err
	}

	var (
		order   model.PurchaseOrder
		request model.MaterialRestockRequest
	)
	err = s.txm.RunInTx(ctx, func(txCtx context.Context) error {
		draft, draftErr := s.ownedDraft(txCtx, draftID, actor, authz.ActionFinalizePO)
		if draftErr != nil {
			return draftErr
		}
		if draft.Status != model.DraftOpen {
			return apperror.New(apperror.AlreadyProcessed, "draft has already been finalized")
		}

		if findErr := repository.GetDB(txCtx, s.db).First(&request, "id = ?", draft.RequestID).Error; findErr != nil {
			return notFoundOr(findErr, "restocking request not found")
		}

		grandTotal, totalErr := parseGrandTotal(draft.FillableFields)
		if totalErr != nil {
			return totalErr
		}

		pdf, renderErr := s.renderer.RenderPurchaseOrder(poDataFrom(draft))
		if renderErr != nil {
			return apperror.Wrap(apperror.Rendering, renderErr, "failed to render purchase order PDF")
		}
		key := purchaseOrderPDFKey(draft.PONumber)
		if saveErr := s.store.Save(key, pdf); saveErr != nil {
			return apperror.Wrap(apperror.Rendering, saveErr, "failed to persist purchase order PDF")
		}
		metrics.DocumentsRendered.WithLabelValues("purchase_order").Inc()

		// Single winner on concurrent finalization.
		affected, casErr := s.drafts.MarkFinalized(txCtx, draftID)
		if casErr != nil {
			return fmt.Errorf("failed to finalize draft: %w", casErr)
		}
		if affected == 0 {
			return apperror.New(apperror.AlreadyProcessed, "draft has already been finalized")
		}

		order = model.PurchaseOrder{
			PONumber:   draft.PONumber,
			RVNumber:   draft.RVNumber,
			RequestID:  draft.RequestID,
			CreatedBy:  actor.ID,
			Supplier:   stringField(draft.FillableFields, model.FieldSupplier),
			GrandTotal: grandTotal,
			Remarks:    stringField(draft.FillableFields, model.FieldRemarks),
			PDFPath:    key,
		}
		if createErr := s.orders.Create(txCtx, &order); createErr != nil {
			return fmt.Errorf("failed to create purchase order: %w", createErr)
		}

		entry := model.AuditLog{
			UserID:     &actor.ID,
			Action:     model.ActionFinalizePO,
			EntityID:   order.ID.String(),
			EntityName: order.PONumber,
		}
		if auditErr := repository.GetDB(txCtx, s.db).Create(&entry).Error; auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return FinalizePOResponse{}, err
	}

	metrics.WorkflowTransitions.WithLabelValues("purchase_order", "finalized").Inc()
	s.notifier.Notify(ctx, request.RequestedBy,
		fmt.Sprintf("A purchase order (%s) has been created for your restocking request (Ref: %s).", order.PONumber, request.RequestReference))

	return FinalizePOResponse{
		PONumber:   order.PONumber,
		RVNumber:   order.RVNumber,
		GrandTotal: order.GrandTotal.StringFixed(2),
		PDFPath:    order.PDFPath,
	}, nil
}

func (s *poService) Preview(ctx context.Context, draftID, actorID string) ([]byte, error) {
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	draft, err := s.ownedDraft(ctx, draftID, actor, authz.ActionPreviewPO)
	if err != nil {
		return nil, err
	}

	pdf, err := s.renderer.RenderPurchaseOrder(poDataFrom(draft))
	if err != nil {
		return nil, apperror.Wrap(apperror.Rendering, err, "failed to render purchase order preview")
	}
	metrics.DocumentsRendered.WithLabelValues("po_preview").Inc()
	return pdf, nil
}

func (s *poService) PurchaseOrderPDF(ctx context.Context, requestID, actorID string) ([]byte, string, error) {
	actor, err := s.loadActor(ctx, actorID)
	if err != nil {
		return nil, "", err
	}

	order, err := s.orders.LatestByRequestID(ctx, requestID)
	if err != nil {
		return nil, "", notFoundOr(err, "purchase order not found")
	}

	var request model.MaterialRestockRequest
	if findErr := s.db.WithContext(ctx).First(&request, "id = ?", order.RequestID).Error; findErr != nil {
		return nil, "", notFoundOr(findErr, "restocking request not found")
	}

	// Visible to the drafter and to the original requester only.
	if order.CreatedBy != actor.ID && request.RequestedBy != actor.ID {
		return nil, "", apperror.New(apperror.Unauthorized, "not allowed to view this purchase order")
	}

	pdf, readErr := s.store.Read(order.PDFPath)
	if readErr != nil {
		// The draft outlives finalization as an audit record, so the
		// document can be rebuilt from it if the blob is lost.
		draft, draftErr := s.drafts.GetByRequestID(ctx, order.RequestID.String())
		if draftErr != nil || draft.PONumber != order.PONumber {
			return nil, "", apperror.Wrap(apperror.NotFound, readErr, "purchase order document not found")
		}
		pdf, readErr = s.renderer.RenderPurchaseOrder(poDataFrom(draft))
		if readErr != nil {
			return nil, "", apperror.Wrap(apperror.Rendering, readErr, "failed to regenerate purchase order PDF")
		}
		if saveErr := s.store.Save(order.PDFPath, pdf); saveErr != nil {
			return nil, "", apperror.Wrap(apperror.Rendering, saveErr, "failed to persist regenerated purchase order")
		}
		metrics.DocumentsRendered.WithLabelValues("purchase_order").Inc()
	}
	return pdf, order.PONumber + ".pdf", nil
}

// --- Helpers ---

func toDraftResponse(d *model.DraftPurchaseOrder) DraftPOResponse {
	return DraftPOResponse{
		ID:             d.ID.String(),
		RequestID:      d.RequestID.String(),
		PONumber:       d.PONumber,
		RVNumber:       d.RVNumber,
		Status:         d.Status,
		FillableFields: d.FillableFields,
		CreatedAt:      d.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      d.UpdatedAt.Format(time.RFC3339),
	}
}

func (s *poService) loadActor(ctx context.Context, actorID string) (*model.User, error) {
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		return nil, notFoundOr(err, "user not found")
	}
	return actor, nil
}

func (s *poService) ownedDraft(ctx context.Context, draftID string, actor *model.User, action authz.Action) (*model.DraftPurchaseOrder, error) {
	draft, err := s.drafts.GetByID(ctx, draftID)
	if err != nil {
		return nil, notFoundOr(err, "draft purchase order not found")
	}
	if !s.policy.Can(actor, action, draft) {
		return nil, apperror.New(apperror.Unauthorized, "not the owner of this draft")
	}
	return draft, nil
}

// validateFillableFields accepts a flat map of scalar values, with one
// exception: "items" may carry a list of flat string maps describing the
// priced rows of the order form.
func validateFillableFields(fields map[string]interface{}) error {
	if fields == nil {
		return apperror.New(apperror.Validation, "fillable_fields must be an object")
	}
	for key, value := range fields {
		if key == "items" {
			items, ok := value.([]interface{})
			if !ok {
				return apperror.New(apperror.Validation, "items must be an array of objects")
			}
			for _, raw := range items {
				row, ok := raw.(map[string]interface{})
				if !ok {
					return apperror.New(apperror.Validation, "items must be an array of objects")
				}
				for rowKey, rowValue := range row {
					if !isScalar(rowValue) {
						return apperror.New(apperror.Validation, "item field %q must be a scalar value", rowKey)
					}
				}
			}
			continue
		}
		if !isScalar(value) {
			return apperror.New(apperror.Validation, "field %q must be a scalar value", key)
		}
	}
	return nil
}

func isScalar(value interface{}) bool {
	switch value.(type) {
	case nil, string, bool, float64, int, int64, json.Number:
		return true
	}
	return false
}

func parseGrandTotal(fields datatypes.JSONMap) (decimal.Decimal, error) {
	raw, ok := fields[model.FieldGrandTotal]
	if !ok || raw == nil {
		return decimal.Zero, nil
	}
	switch v := raw.(type) {
	case string:
		if v == "" {
			return decimal.Zero, nil
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, apperror.New(apperror.Validation, "grand_total is not a valid amount")
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	}
	return decimal.Zero, apperror.New(apperror.Validation, "grand_total is not a valid amount")
}

func stringField(fields map[string]interface{}, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}

func poDataFrom(draft *model.DraftPurchaseOrder) document.POData {
	fields := draft.FillableFields
	data := document.POData{
		PONumber:     draft.PONumber,
		RVNumber:     draft.RVNumber,
		Supplier:     stringField(fields, model.FieldSupplier),
		Address:      stringField(fields, "address"),
		Date:         stringField(fields, "date"),
		Discount:     stringField(fields, "discount"),
		GrandTotal:   stringField(fields, model.FieldGrandTotal),
		AuthorizedBy: stringField(fields, "authorized_by"),
		Remarks:      stringField(fields, model.FieldRemarks),
	}
	if data.Date == "" {
		data.Date = draft.CreatedAt.Format("2006-01-02")
	}
	if raw, ok := fields["items"].([]interface{}); ok {
		for _, entry := range raw {
			row, ok := entry.(map[string]interface{})
			if !ok {
				continue
			}
			data.Items = append(data.Items, document.POItemLine{
				Unit:        stringField(row, "unit"),
				Description: stringField(row, "description"),
				Quantity:    stringField(row, "quantity"),
				UnitPrice:   stringField(row, "unit_price"),
				TotalPrice:  stringField(row, "total_price"),
			})
		}
	}
	return data
}
