package service_test

import (
	"context"
	"testing"

	"woms/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyPersistsAndPushes(t *testing.T) {
	env := newTestEnv(t)
	alice := env.newUser(t, "alice", model.RoleEmployee, false)

	env.notifier.Notify(context.Background(), alice.ID, "hello")

	notifications := env.notificationsFor(t, alice)
	require.Len(t, notifications, 1)
	assert.Equal(t, "hello", notifications[0].Message)
	assert.False(t, notifications[0].IsRead)
	assert.Equal(t, 1, env.pusher.count())
}

func TestMarkReadOnlyByRecipient(t *testing.T) {
	env := newTestEnv(t)
	alice := env.newUser(t, "alice", model.RoleEmployee, false)
	bob := env.newUser(t, "bob", model.RoleEmployee, false)

	ctx := context.Background()
	env.notifier.Notify(ctx, alice.ID, "for alice")
	notification := env.notificationsFor(t, alice)[0]

	ok, err := env.notifier.MarkRead(ctx, notification.ID.String(), bob.ID.String())
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = env.notifier.MarkRead(ctx, notification.ID.String(), alice.ID.String())
	require.NoError(t, err)
	assert.True(t, ok)

	updated := env.notificationsFor(t, alice)[0]
	assert.True(t, updated.IsRead)
}

func TestListNotificationsScopedToRecipient(t *testing.T) {
	env := newTestEnv(t)
	alice := env.newUser(t, "alice", model.RoleEmployee, false)
	bob := env.newUser(t, "bob", model.RoleEmployee, false)

	ctx := context.Background()
	env.notifier.Notify(ctx, alice.ID, "one")
	env.notifier.Notify(ctx, alice.ID, "two")
	env.notifier.Notify(ctx, bob.ID, "three")

	results, total, err := env.notifier.List(ctx, alice.ID.String(), 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, results, 2)
}
