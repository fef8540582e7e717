package service

import (
	"context"
	"encoding/json"

	"woms/internal/metrics"
	"woms/internal/model"
	"woms/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Pusher delivers a payload to a user's live connections. The websocket hub
// satisfies this; a nil pusher disables live delivery.
type Pusher interface {
	Push(userID string, payload []byte)
}

// Notifier is the append-only notification sink every workflow transition
// writes to. All writes are best-effort: a failure is logged and counted but
// never propagated, so it can never roll back a primary state transition.
type Notifier interface {
	Notify(ctx context.Context, recipient uuid.UUID, message string)
	NotifyAll(ctx context.Context, recipients []model.User, message string)
	List(ctx context.Context, recipient string, offset, limit int) ([]model.Notification, int64, error)
	MarkRead(ctx context.Context, id, recipient string) (bool, error)
}

type notifier struct {
	repo   repository.NotificationRepository
	pusher Pusher
}

func NewNotifier(repo repository.NotificationRepository, pusher Pusher) Notifier {
	return &notifier{repo: repo, pusher: pusher}
}

func (n *notifier) Notify(ctx context.Context, recipient uuid.UUID, message string) {
	record := &model.Notification{
		Recipient: recipient,
		Message:   message,
	}
	if err := n.repo.Create(ctx, record); err != nil {
		metrics.NotificationFailures.Inc()
		logrus.WithError(err).WithField("recipient", recipient).Warn("failed to persist notification")
		return
	}

	if n.pusher != nil {
		payload, err := json.Marshal(record)
		if err == nil {
			n.pusher.Push(recipient.String(), payload)
		}
	}
}

func (n *notifier) NotifyAll(ctx context.Context, recipients []model.User, message string) {
	for _, u := range recipients {
		n.Notify(ctx, u.ID, message)
	}
}

func (n *notifier) List(ctx context.Context, recipient string, offset, limit int) ([]model.Notification, int64, error) {
	return n.repo.ListByRecipient(ctx, recipient, offset, limit)
}

func (n *notifier) MarkRead(ctx context.Context, id, recipient string) (bool, error) {
	affected, err := n.repo.MarkRead(ctx, id, recipient)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
