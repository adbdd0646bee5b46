package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comunavision/backend/internal/models"
)

func TestNotifyStoresInApp(t *testing.T) {
	db := openTestDB(t)
	svc := NewNotificationService(db, nil)

	svc.Notify(models.NotificationWarning, "Comunero eliminado", "detalle")

	list, err := svc.List(false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.NotificationWarning, list[0].Type)
	assert.Equal(t, "Comunero eliminado", list[0].Title)
	assert.False(t, list[0].Read)
}

func TestMarkAsRead(t *testing.T) {
	db := openTestDB(t)
	svc := NewNotificationService(db, nil)

	svc.Notify(models.NotificationInfo, "uno", "a")
	svc.Notify(models.NotificationInfo, "dos", "b")

	unread, err := svc.List(true)
	require.NoError(t, err)
	require.Len(t, unread, 2)

	require.NoError(t, svc.MarkAsRead(unread[0].ID))
	unread, err = svc.List(true)
	require.NoError(t, err)
	assert.Len(t, unread, 1)

	require.NoError(t, svc.MarkAllAsRead())
	unread, err = svc.List(true)
	require.NoError(t, err)
	assert.Len(t, unread, 0)

	all, err := svc.List(false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
