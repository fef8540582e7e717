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
	"woms/internal/storage"
	"woms/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// --- DTOs ---

type RestockItemDTO struct {
	ItemName          string `json:"item_name" binding:"required"`
	QuantityRequested int    `json:"quantity_requested" binding:"required"`
	Unit              string `json:"unit"`
}

type CreateRestockRequestDTO struct {
	Items []RestockItemDTO `json:"items" binding:"required"`
}

// ProcessedFilter narrows the history listing. Dates are inclusive day
// bounds on created_at; Ordering is one of created_at, approved_at,
// rejected_at with an optional leading "-" for descending.
type ProcessedFilter struct {
	Status    string
	StartDate string
	EndDate   string
	Ordering  string
	Offset    int
	Limit     int
}

type RestockRequestResponse struct {
	ID               string           `json:"id"`
	RequestReference string           `json:"request_reference"`
	RequestedBy      string           `json:"requested_by"`
	Status           string           `json:"status"`
	RVNumber         string           `json:"rv_number"`
	PONumber         string           `json:"po_number"`
	Items            []RestockItemDTO `json:"items"`
	CreatedAt        string           `json:"created_at"`
	ApprovedBy       string           `json:"approved_by,omitempty"`
	ApprovedAt       *string          `json:"approved_at"`
	RejectedBy       string           `json:"rejected_by,omitempty"`
	RejectedAt       *string          `json:"rejected_at"`
}

// SignResult reports a completed signature overlay.
type SignResult struct {
	RVNumber  string `json:"rv_number"`
	SignedPDF string `json:"signed_pdf"`
}

// --- Interface ---

// RestockingService owns the restock request lifecycle: creation with
// voucher issuance, budget approval/rejection with signature overlays,
// engineering countersigning, and the read surfaces over it.
type RestockingService interface {
	Create(ctx context.Context, requesterID string, req CreateRestockRequestDTO) (RestockRequestResponse, error)
	Approve(ctx context.Context, id, actorID string) (SignResult, error)
	Reject(ctx context.Context, id, actorID string) error
	Countersign(ctx context.Context, id, actorID string) (SignResult, error)

	ListPending(ctx context.Context, offset, limit int) ([]RestockRequestResponse, int64, error)
	ListProcessed(ctx context.Context, filter ProcessedFilter) ([]RestockRequestResponse, int64, error)
	ListApproved(ctx context.Context, offset, limit int) ([]RestockRequestResponse, int64, error)
	ListMine(ctx context.Context, requesterID string, offset, limit int) ([]RestockRequestResponse, int64, error)
	ListAll(ctx context.Context, offset, limit int) ([]RestockRequestResponse, int64, error)

	VoucherPDF(ctx context.Context, requestID string) ([]byte, string, error)
	PreviewVoucher(ctx context.Context, userID string, items []RestockItemDTO) ([]byte, error)
}

type restockingService struct {
	db       *gorm.DB
	policy   authz.Policy
	renderer document.Renderer
	signer   document.Signer
	store    storage.Store
	notifier Notifier
}

func NewRestockingService(db *gorm.DB, policy authz.Policy, renderer document.Renderer, signer document.Signer, store storage.Store, notifier Notifier) RestockingService {
	return &restockingService{
		db:       db,
		policy:   policy,
		renderer: renderer,
		signer:   signer,
		store:    store,
		notifier: notifier,
	}
}

// --- Implementation ---

func (s *restockingService) Create(ctx context.Context, requesterID string, req CreateRestockRequestDTO) (RestockRequestResponse, error) {
	if len(req.Items) == 0 {
		return RestockRequestResponse{}, apperror.New(apperror.Validation, "at least one item is required")
	}
	for _, item := range req.Items {
		if item.QuantityRequested <= 0 {
			return RestockRequestResponse{}, apperror.New(apperror.Validation, "quantity must be greater than zero")
		}
	}

	requester, err := s.loadUser(ctx, requesterID)
	if err != nil {
		return RestockRequestResponse{}, err
	}

	// Two same-year creations can count to the same reference; the unique
	// index rejects the loser, which recounts on a fresh transaction.
	var request model.MaterialRestockRequest
	for attempt := 1; ; attempt++ {
		request, err = s.createRequest(ctx, requester, req)
		if err == nil {
			break
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) && attempt < referenceAttempts {
			continue
		}
		return RestockRequestResponse{}, err
	}

	metrics.WorkflowTransitions.WithLabelValues("restock_request", "created").Inc()

	// Best-effort fanout to every confirmed budget analyst.
	var analysts []model.User
	if listErr := s.db.WithContext(ctx).
		Where("role = ? AND is_role_confirmed = ?", model.RoleBudgetAnalyst, true).
		Find(&analysts).Error; listErr != nil {
		logrus.WithError(listErr).Warn("failed to list budget analysts for notification")
	} else {
		s.notifier.NotifyAll(ctx, analysts,
			fmt.Sprintf("New RV created for a restocking request by %s.", requester.Username))
	}

	request.Requester = requester
	return toRestockResponse(request), nil
}

// createRequest is a single creation attempt: request, items, voucher and
// rendered PDF in one transaction.
func (s *restockingService) createRequest(ctx context.Context, requester *model.User, req CreateRestockRequestDTO) (model.MaterialRestockRequest, error) {
	var request model.MaterialRestockRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		reference, refErr := nextRequestReference(tx, now)
		if refErr != nil {
			return fmt.Errorf("failed to generate request reference: %w", refErr)
		}

		request = model.MaterialRestockRequest{
			RequestedBy:      requester.ID,
			Status:           model.RestockPending,
			RequestReference: reference,
		}
		if createErr := tx.Create(&request).Error; createErr != nil {
			return fmt.Errorf("failed to create restock request: %w", createErr)
		}

		items := make([]model.RestockItem, 0, len(req.Items))
		for _, dto := range req.Items {
			unit := dto.Unit
			if unit == "" {
				unit = "pcs"
			}
			items = append(items, model.RestockItem{
				RequestID:         request.ID,
				ItemName:          dto.ItemName,
				QuantityRequested: dto.QuantityRequested,
				Unit:              unit,
			})
		}
		if createErr := tx.Create(&items).Error; createErr != nil {
			return fmt.Errorf("failed to create restock items: %w", createErr)
		}
		request.Items = items

		rvNumber, rvErr := nextRVNumber(tx)
		if rvErr != nil {
			return fmt.Errorf("failed to allocate rv number: %w", rvErr)
		}

		snapshot, snapErr := model.SnapshotOf(items)
		if snapErr != nil {
			return fmt.Errorf("failed to snapshot items: %w", snapErr)
		}

		voucher := model.RequisitionVoucher{
			RVNumber:  rvNumber,
			RequestID: request.ID,
			Items:     snapshot,
		}
		if createErr := tx.Create(&voucher).Error; createErr != nil {
			return fmt.Errorf("failed to create requisition voucher: %w", createErr)
		}

		// The PDF must exist before the request becomes visible, so render
		// and persist before the transaction commits.
		pdf, renderErr := s.renderVoucher(&voucher, requester.Username)
		if renderErr != nil {
			return renderErr
		}
		key := voucherPDFKey(rvNumber)
		if saveErr := s.store.Save(key, pdf); saveErr != nil {
			return apperror.Wrap(apperror.Rendering, saveErr, "failed to persist voucher PDF")
		}
		if updErr := tx.Model(&voucher).Update("pdf_path", key).Error; updErr != nil {
			return fmt.Errorf("failed to record voucher PDF path: %w", updErr)
		}

		// Projection of the latest voucher onto the request.
		request.RVNumber = rvNumber
		if updErr := tx.Model(&request).Update("rv_number", rvNumber).Error; updErr != nil {
			return fmt.Errorf("failed to project rv number: %w", updErr)
		}

		return s.audit(tx, &requester.ID, model.ActionCreateRestockRequest, request.ID.String(), reference, map[string]interface{}{
			"rv_number":  rvNumber,
			"item_count": len(items),
		})
	})
	if err != nil {
		return model.MaterialRestockRequest{}, err
	}
	return request, nil
}

func (s *restockingService) Approve(ctx context.Context, id, actorID string) (SignResult, error) {
	actor, err := s.loadUser(ctx, actorID)
	if err != nil {
		return SignResult{}, err
	}

	var (
		request model.MaterialRestockRequest
		result  SignResult
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if findErr := tx.Preload("Requester").First(&request, "id = ?", id).Error; findErr != nil {
			return notFoundOr(findErr, "restocking request not found")
		}

		if !s.policy.Can(actor, authz.ActionApproveRestock, &request) {
			return apperror.New(apperror.Unauthorized, "only a confirmed budget analyst may approve restocking requests")
		}
		if request.Status != model.RestockPending {
			return apperror.New(apperror.AlreadyProcessed, "request is already processed")
		}
		if actor.SignaturePath == "" {
			return apperror.New(apperror.PreconditionFailed, "no signature on file for the approving analyst")
		}

		voucher, pdf, loadErr := s.voucherWithPDF(tx, &request)
		if loadErr != nil {
			return loadErr
		}

		signature, sigErr := s.store.Read(actor.SignaturePath)
		if sigErr != nil {
			return apperror.Wrap(apperror.PreconditionFailed, sigErr, "signature file not found")
		}

		signed, stampErr := s.signer.StampSignature(pdf, signature, actor.Username, document.BudgetStamp)
		if stampErr != nil {
			return apperror.Wrap(apperror.Rendering, stampErr, "failed to add signature to voucher")
		}
		signedKey := signedVoucherPDFKey(voucher.RVNumber)
		if saveErr := s.store.Save(signedKey, signed); saveErr != nil {
			return apperror.Wrap(apperror.Rendering, saveErr, "failed to persist signed voucher")
		}
		metrics.DocumentsRendered.WithLabelValues("voucher_signed").Inc()

		// Guarded transition: exactly one concurrent approval can win; the
		// loser sees zero rows and reports AlreadyProcessed.
		now := time.Now()
		res := tx.Model(&model.MaterialRestockRequest{}).
			Where("id = ? AND status = ?", request.ID, model.RestockPending).
			Updates(map[string]interface{}{
				"status":      model.RestockApproved,
				"approved_by": actor.ID,
				"approved_at": now,
				"rejected_by": nil,
				"rejected_at": nil,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to update restock request: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperror.New(apperror.AlreadyProcessed, "request is already processed")
		}

		// The signed artifact becomes the authoritative voucher document.
		if updErr := tx.Model(voucher).Update("pdf_path", signedKey).Error; updErr != nil {
			return fmt.Errorf("failed to record signed voucher path: %w", updErr)
		}

		result = SignResult{RVNumber: voucher.RVNumber, SignedPDF: signedKey}
		return s.audit(tx, &actor.ID, model.ActionApproveRestock, request.ID.String(), request.RequestReference, map[string]interface{}{
			"rv_number": voucher.RVNumber,
		})
	})
	if err != nil {
		return SignResult{}, err
	}

	metrics.WorkflowTransitions.WithLabelValues("restock_request", "approved").Inc()
	s.notifier.Notify(ctx, request.RequestedBy,
		fmt.Sprintf("Your restocking request (Ref: %s) has been approved. Please wait for PO creation.", request.RequestReference))

	return result, nil
}

func (s *restockingService) Reject(ctx context.Context, id, actorID string) error {
	actor, err := s.loadUser(ctx, actorID)
	if err != nil {
		return err
	}

	var request model.MaterialRestockRequest
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if findErr := tx.First(&request, "id = ?", id).Error; findErr != nil {
			return notFoundOr(findErr, "restocking request not found")
		}

		if !s.policy.Can(actor, authz.ActionRejectRestock, &request) {
			return apperror.New(apperror.Unauthorized, "not allowed to reject restocking requests")
		}
		if request.Status != model.RestockPending {
			return apperror.New(apperror.AlreadyProcessed, "request is already processed")
		}

		now := time.Now()
		res := tx.Model(&model.MaterialRestockRequest{}).
			Where("id = ? AND status = ?", request.ID, model.RestockPending).
			Updates(map[string]interface{}{
				"status":      model.RestockRejected,
				"rejected_by": actor.ID,
				"rejected_at": now,
				"approved_by": nil,
				"approved_at": nil,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to update restock request: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperror.New(apperror.AlreadyProcessed, "request is already processed")
		}

		return s.audit(tx, &actor.ID, model.ActionRejectRestock, request.ID.String(), request.RequestReference, nil)
	})
	if err != nil {
		return err
	}

	metrics.WorkflowTransitions.WithLabelValues("restock_request", "rejected").Inc()
	s.notifier.Notify(ctx, request.RequestedBy,
		fmt.Sprintf("Your restocking request (Ref: %s) has been rejected.", request.RequestReference))

	return nil
}

// Countersign overlays the engineering signature onto the voucher. It does
// not change the request status.
func (s *restockingService) Countersign(ctx context.Context, id, actorID string) (SignResult, error) {
	actor, err := s.loadUser(ctx, actorID)
	if err != nil {
		return SignResult{}, err
	}

	var result SignResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var request model.MaterialRestockRequest
		if findErr := tx.Preload("Requester").First(&request, "id = ?", id).Error; findErr != nil {
			return notFoundOr(findErr, "restocking request not found")
		}

		if !s.policy.Can(actor, authz.ActionSignVoucher, &request) {
			return apperror.New(apperror.Unauthorized, "only confirmed engineering staff may countersign vouchers")
		}
		if actor.SignaturePath == "" {
			return apperror.New(apperror.PreconditionFailed, "no signature on file")
		}

		voucher, pdf, loadErr := s.voucherWithPDF(tx, &request)
		if loadErr != nil {
			return loadErr
		}

		signature, sigErr := s.store.Read(actor.SignaturePath)
		if sigErr != nil {
			return apperror.Wrap(apperror.PreconditionFailed, sigErr, "signature file not found")
		}

		signed, stampErr := s.signer.StampSignature(pdf, signature, actor.Username, document.EngineeringStamp)
		if stampErr != nil {
			return apperror.Wrap(apperror.Rendering, stampErr, "failed to add signature to voucher")
		}
		signedKey := signedVoucherPDFKey(voucher.RVNumber)
		if saveErr := s.store.Save(signedKey, signed); saveErr != nil {
			return apperror.Wrap(apperror.Rendering, saveErr, "failed to persist signed voucher")
		}
		metrics.DocumentsRendered.WithLabelValues("voucher_signed").Inc()

		if updErr := tx.Model(voucher).Update("pdf_path", signedKey).Error; updErr != nil {
			return fmt.Errorf("failed to record signed voucher path: %w", updErr)
		}

		result = SignResult{RVNumber: voucher.RVNumber, SignedPDF: signedKey}
		return s.audit(tx, &actor.ID, model.ActionSignVoucher, request.ID.String(), request.RequestReference, map[string]interface{}{
			"rv_number": voucher.RVNumber,
		})
	})
	if err != nil {
		return SignResult{}, err
	}
	return result, nil
}

func (s *restockingService) ListPending(ctx context.Context, offset, limit int) ([]RestockRequestResponse, int64, error) {
	return s.list(ctx, s.db.WithContext(ctx).Where("status = ?", model.RestockPending), "created_at DESC", offset, limit)
}

func (s *restockingService) ListProcessed(ctx context.Context, filter ProcessedFilter) ([]RestockRequestResponse, int64, error) {
	query := s.db.WithContext(ctx).Where("status <> ?", model.RestockPending)

	if filter.Status == model.RestockApproved || filter.Status == model.RestockRejected {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.StartDate != "" && filter.EndDate != "" {
		start, err := time.Parse("2006-01-02", filter.StartDate)
		if err != nil {
			return nil, 0, apperror.New(apperror.Validation, "invalid start_date, expected YYYY-MM-DD")
		}
		end, err := time.Parse("2006-01-02", filter.EndDate)
		if err != nil {
			return nil, 0, apperror.New(apperror.Validation, "invalid end_date, expected YYYY-MM-DD")
		}
		query = query.Where("created_at >= ? AND created_at < ?", start, end.AddDate(0, 0, 1))
	}

	order, err := processedOrdering(filter.Ordering)
	if err != nil {
		return nil, 0, err
	}

	return s.list(ctx, query, order, filter.Offset, filter.Limit)
}

func (s *restockingService) ListApproved(ctx context.Context, offset, limit int) ([]RestockRequestResponse, int64, error) {
	return s.list(ctx, s.db.WithContext(ctx).Where("status = ?", model.RestockApproved), "approved_at DESC", offset, limit)
}

func (s *restockingService) ListMine(ctx context.Context, requesterID string, offset, limit int) ([]RestockRequestResponse, int64, error) {
	return s.list(ctx, s.db.WithContext(ctx).Where("requested_by = ?", requesterID), "created_at DESC", offset, limit)
}

func (s *restockingService) ListAll(ctx context.Context, offset, limit int) ([]RestockRequestResponse, int64, error) {
	return s.list(ctx, s.db.WithContext(ctx), "created_at DESC", offset, limit)
}

func (s *restockingService) VoucherPDF(ctx context.Context, requestID string) ([]byte, string, error) {
	var request model.MaterialRestockRequest
	if err := s.db.WithContext(ctx).Preload("Requester").First(&request, "id = ?", requestID).Error; err != nil {
		return nil, "", notFoundOr(err, "restocking request not found")
	}

	var pdf []byte
	var name string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		voucher, bytes, loadErr := s.voucherWithPDF(tx, &request)
		if loadErr != nil {
			return loadErr
		}
		pdf = bytes
		name = voucher.RVNumber + ".pdf"
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return pdf, name, nil
}

func (s *restockingService) PreviewVoucher(ctx context.Context, userID string, items []RestockItemDTO) ([]byte, error) {
	if len(items) == 0 {
		return nil, apperror.New(apperror.Validation, "no items provided")
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	lines := make([]document.ItemLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, document.ItemLine{Name: item.ItemName, Quantity: item.QuantityRequested, Unit: item.Unit})
	}

	pdf, err := s.renderer.RenderVoucher(document.VoucherData{
		RVNumber:    "-- PREVIEW --",
		RequestedBy: user.Username,
		Items:       lines,
		Date:        time.Now(),
	})
	if err != nil {
		return nil, apperror.Wrap(apperror.Rendering, err, "failed to render voucher preview")
	}
	metrics.DocumentsRendered.WithLabelValues("voucher_preview").Inc()
	return pdf, nil
}

// --- Helpers ---

// voucherWithPDF loads the latest voucher of a request together with its PDF
// bytes, regenerating the document from the item snapshot when the stored
// blob has gone missing. Missing artifacts are recoverable, not fatal.
func (s *restockingService) voucherWithPDF(tx *gorm.DB, request *model.MaterialRestockRequest) (*model.RequisitionVoucher, []byte, error) {
	var voucher model.RequisitionVoucher
	if err := tx.Where("request_id = ?", request.ID).Order("created_at DESC").First(&voucher).Error; err != nil {
		return nil, nil, notFoundOr(err, "requisition voucher not found")
	}

	if voucher.PDFPath != "" && s.store.Exists(voucher.PDFPath) {
		pdf, err := s.store.Read(voucher.PDFPath)
		if err == nil {
			return &voucher, pdf, nil
		}
		logrus.WithError(err).WithField("rv_number", voucher.RVNumber).Warn("stored voucher unreadable, regenerating")
	}

	requestedBy := ""
	if request.Requester != nil {
		requestedBy = request.Requester.Username
	}
	pdf, err := s.renderVoucher(&voucher, requestedBy)
	if err != nil {
		return nil, nil, err
	}
	key := voucherPDFKey(voucher.RVNumber)
	if saveErr := s.store.Save(key, pdf); saveErr != nil {
		return nil, nil, apperror.Wrap(apperror.Rendering, saveErr, "failed to persist regenerated voucher")
	}
	if updErr := tx.Model(&voucher).Update("pdf_path", key).Error; updErr != nil {
		return nil, nil, fmt.Errorf("failed to record voucher PDF path: %w", updErr)
	}
	voucher.PDFPath = key
	return &voucher, pdf, nil
}

func (s *restockingService) renderVoucher(voucher *model.RequisitionVoucher, requestedBy string) ([]byte, error) {
	snapshot, err := voucher.SnapshotItems()
	if err != nil {
		return nil, apperror.Wrap(apperror.Rendering, err, "corrupt voucher item snapshot")
	}

	lines := make([]document.ItemLine, 0, len(snapshot))
	for _, item := range snapshot {
		lines = append(lines, document.ItemLine{Name: item.ItemName, Quantity: item.QuantityRequested, Unit: item.Unit})
	}

	pdf, err := s.renderer.RenderVoucher(document.VoucherData{
		RVNumber:    voucher.RVNumber,
		RequestedBy: requestedBy,
		Items:       lines,
		Date:        voucher.CreatedAt,
	})
	if err != nil {
		return nil, apperror.Wrap(apperror.Rendering, err, "failed to render voucher PDF")
	}
	metrics.DocumentsRendered.WithLabelValues("voucher").Inc()
	return pdf, nil
}

func (s *restockingService) list(ctx context.Context, query *gorm.DB, order string, offset, limit int) ([]RestockRequestResponse, int64, error) {
	query = query.Model(&model.MaterialRestockRequest{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count restock requests: %w", err)
	}

	var requests []model.MaterialRestockRequest
	if err := query.
		Preload("Items").
		Preload("Requester").
		Preload("Approver").
		Preload("Rejecter").
		Order(order).
		Offset(offset).
		Limit(limit).
		Find(&requests).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch restock requests: %w", err)
	}

	result := make([]RestockRequestResponse, 0, len(requests))
	for _, r := range requests {
		result = append(result, toRestockResponse(r))
	}
	return result, total, nil
}

func (s *restockingService) loadUser(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "user not found")
	}
	return &user, nil
}

func (s *restockingService) audit(tx *gorm.DB, userID *uuid.UUID, action, entityID, entityName string, details map[string]interface{}) error {
	payload := ""
	if details != nil {
		raw, _ := json.Marshal(details)
		payload = string(raw)
	}
	entry := model.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    payload,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func processedOrdering(ordering string) (string, error) {
	if ordering == "" {
		return "created_at DESC", nil
	}
	direction := "ASC"
	column := ordering
	if column[0] == '-' {
		direction = "DESC"
		column = column[1:]
	}
	switch column {
	case "created_at", "approved_at", "rejected_at":
		return column + " " + direction, nil
	}
	return "", apperror.New(apperror.Validation, "unsupported ordering field %q", column)
}

func notFoundOr(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.New(apperror.NotFound, "%s", message)
	}
	return err
}

func toRestockResponse(r model.MaterialRestockRequest) RestockRequestResponse {
	resp := RestockRequestResponse{
		ID:               r.ID.String(),
		RequestReference: r.RequestReference,
		Status:           r.Status,
		RVNumber:         r.RVNumber,
		PONumber:         r.PONumber,
		CreatedAt:        r.CreatedAt.Format(time.RFC3339),
	}
	if r.Requester != nil {
		resp.RequestedBy = r.Requester.Username
	}
	if r.Approver != nil {
		resp.ApprovedBy = r.Approver.Username
	}
	if r.Rejecter != nil {
		resp.RejectedBy = r.Rejecter.Username
	}
	if r.ApprovedAt != nil {
		s := r.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &s
	}
	if r.RejectedAt != nil {
		s := r.RejectedAt.Format(time.RFC3339)
		resp.RejectedAt = &s
	}
	for _, item := range r.Items {
		resp.Items = append(resp.Items, RestockItemDTO{
			ItemName:          item.ItemName,
			QuantityRequested: item.QuantityRequested,
			Unit:              item.Unit,
		})
	}
	return resp
}
