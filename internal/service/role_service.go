package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"woms/internal/authz"
	"woms/internal/metrics"
	"woms/internal/model"
	"woms/internal/repository"
	"woms/pkg/apperror"

	"gorm.io/gorm"
)

// --- DTOs ---

type PendingRoleRequestResponse struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	RequestedRole   string `json:"requested_role"`
	RoleRequestedAt string `json:"role_requested_at"`
}

// RoleHistoryFilter narrows the decision history listing. Username matches
// either the subject or the processing admin, case-insensitively.
type RoleHistoryFilter struct {
	Status    string
	Username  string
	StartDate string
	EndDate   string
	Offset    int
	Limit     int
}

type RoleHistoryResponse struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	RequestedRole string `json:"requested_role"`
	Status        string `json:"status"`
	ProcessedBy   string `json:"processed_by"`
	ProcessedAt   string `json:"processed_at"`
}

// --- Interface ---

// RoleService confirms or rejects role elevations requested at
// registration. Decisions are final per request and leave an append-only
// history record.
type RoleService interface {
	Approve(ctx context.Context, userID, actorID string) error
	Reject(ctx context.Context, userID, actorID string) error
	ListPending(ctx context.Context, actorID string, offset, limit int) ([]PendingRoleRequestResponse, int64, error)
	History(ctx context.Context, actorID string, filter RoleHistoryFilter) ([]RoleHistoryResponse, int64, error)
}

type roleService struct {
	db       *gorm.DB
	users    repository.UserRepository
	policy   authz.Policy
	notifier Notifier
}

func NewRoleService(db *gorm.DB, users repository.UserRepository, policy authz.Policy, notifier Notifier) RoleService {
	return &roleService{db: db, users: users, policy: policy, notifier: notifier}
}

// --- Implementation ---

func (s *roleService) Approve(ctx context.Context, userID, actorID string) error {
	actor, err := s.requireAdmin(ctx, actorID)
	if err != nil {
		return err
	}

	var subject model.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if findErr := tx.First(&subject, "id = ?", userID).Error; findErr != nil {
			return notFoundOr(findErr, "user not found")
		}

		// Re-approving an already confirmed user is a harmless no-op flip,
		// but the decision still lands in the history trail.
		if updErr := tx.Model(&subject).Update("is_role_confirmed", true).Error; updErr != nil {
			return fmt.Errorf("failed to confirm user role: %w", updErr)
		}

		record := model.RoleRequestRecord{
			UserID:        subject.ID,
			RequestedRole: subject.Role,
			Status:        model.RoleRequestApproved,
			ProcessedBy:   &actor.ID,
		}
		if createErr := tx.Create(&record).Error; createErr != nil {
			return fmt.Errorf("failed to record role decision: %w", createErr)
		}

		return s.auditRole(tx, actor, model.ActionApproveRole, &subject)
	})
	if err != nil {
		return err
	}

	metrics.WorkflowTransitions.WithLabelValues("role_request", "approved").Inc()
	s.notifier.Notify(ctx, subject.ID,
		fmt.Sprintf("Your account has been approved as %s. You can now use the system.", subject.Role))
	return nil
}

func (s *roleService) Reject(ctx context.Context, userID, actorID string) error {
	actor, err := s.requireAdmin(ctx, actorID)
	if err != nil {
		return err
	}

	var (
		subject       model.User
		requestedRole string
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if findErr := tx.First(&subject, "id = ?", userID).Error; findErr != nil {
			return notFoundOr(findErr, "user not found")
		}
		requestedRole = subject.Role

		// The account survives rejection but falls back to the baseline
		// employee role with nothing pending.
		if updErr := tx.Model(&subject).Updates(map[string]interface{}{
			"role":              model.RoleEmployee,
			"is_role_confirmed": true,
		}).Error; updErr != nil {
			return fmt.Errorf("failed to reset user role: %w", updErr)
		}

		record := model.RoleRequestRecord{
			UserID:        subject.ID,
			RequestedRole: requestedRole,
			Status:        model.RoleRequestRejected,
			ProcessedBy:   &actor.ID,
		}
		if createErr := tx.Create(&record).Error; createErr != nil {
			return fmt.Errorf("failed to record role decision: %w", createErr)
		}

		return s.auditRole(tx, actor, model.ActionRejectRole, &subject)
	})
	if err != nil {
		return err
	}

	metrics.WorkflowTransitions.WithLabelValues("role_request", "rejected").Inc()
	s.notifier.Notify(ctx, subject.ID,
		fmt.Sprintf("Your request for the %s role was rejected. Your account remains active as an employee.", requestedRole))
	return nil
}

func (s *roleService) ListPending(ctx context.Context, actorID string, offset, limit int) ([]PendingRoleRequestResponse, int64, error) {
	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, 0, err
	}

	users, total, err := s.users.ListUnconfirmed(ctx, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list pending role requests: %w", err)
	}

	result := make([]PendingRoleRequestResponse, 0, len(users))
	for _, u := range users {
		resp := PendingRoleRequestResponse{
			ID:            u.ID.String(),
			Username:      u.Username,
			Email:         u.Email,
			RequestedRole: u.Role,
		}
		if !u.RoleRequestedAt.IsZero() {
			resp.RoleRequestedAt = u.RoleRequestedAt.Format(time.RFC3339)
		}
		result = append(result, resp)
	}
	return result, total, nil
}

func (s *roleService) History(ctx context.Context, actorID string, filter RoleHistoryFilter) ([]RoleHistoryResponse, int64, error) {
	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, 0, err
	}

	query := s.db.WithContext(ctx).Model(&model.RoleRequestRecord{})

	if filter.Status == model.RoleRequestApproved || filter.Status == model.RoleRequestRejected {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Username != "" {
		pattern := "%" + filter.Username + "%"
		query = query.
			Joins("LEFT JOIN users AS subjects ON subjects.id = role_request_records.user_id").
			Joins("LEFT JOIN users AS processors ON processors.id = role_request_records.processed_by").
			Where("LOWER(subjects.username) LIKE LOWER(?) OR LOWER(processors.username) LIKE LOWER(?)", pattern, pattern)
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
		query = query.Where("role_request_records.processed_at >= ? AND role_request_records.processed_at < ?", start, end.AddDate(0, 0, 1))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count role history: %w", err)
	}

	var records []model.RoleRequestRecord
	if err := query.
		Preload("User").
		Preload("Processor").
		Order("role_request_records.processed_at DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&records).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch role history: %w", err)
	}

	result := make([]RoleHistoryResponse, 0, len(records))
	for _, r := range records {
		resp := RoleHistoryResponse{
			ID:            r.ID.String(),
			RequestedRole: r.RequestedRole,
			Status:        r.Status,
			ProcessedAt:   r.ProcessedAt.Format(time.RFC3339),
		}
		if r.User != nil {
			resp.Username = r.User.Username
		}
		if r.Processor != nil {
			resp.ProcessedBy = r.Processor.Username
		}
		result = append(result, resp)
	}
	return result, total, nil
}

// --- Helpers ---

func (s *roleService) requireAdmin(ctx context.Context, actorID string) (*model.User, error) {
	actor, err := s.users.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(apperror.NotFound, "user not found")
		}
		return nil, err
	}
	if !s.policy.Can(actor, authz.ActionManageRoles, nil) {
		return nil, apperror.New(apperror.Unauthorized, "only a warehouse admin may manage role requests")
	}
	return actor, nil
}

func (s *roleService) auditRole(tx *gorm.DB, actor *model.User, action string, subject *model.User) error {
	entry := model.AuditLog{
		UserID:     &actor.ID,
		Action:     action,
		EntityID:   subject.ID.String(),
		EntityName: subject.Username,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}
