package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/comunavision/backend/internal/audit"
	"github.com/comunavision/backend/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsnName := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_journal_mode=WAL&_busy_timeout=5000", dsnName)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Comunero{},
		&models.FieldDefinition{},
		&models.AuditLog{},
		&models.Notification{},
	))
	return db
}

func seedAdmin(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := models.User{Email: "admin@test.local", Name: "Admin", Role: models.RoleAdmin, Active: true}
	require.NoError(t, user.SetPassword("secret123"))
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func seedSchema(t *testing.T, db *gorm.DB) {
	t.Helper()
	fields := []models.FieldDefinition{
		{Name: "zona", Type: models.FieldTypeSelect, Required: true, Options: []string{"A", "B", "C"}, Order: 1, Active: true},
		{Name: "telefono", Type: models.FieldTypeText, Order: 2, Active: true},
		{Name: "edad", Type: models.FieldTypeInteger, Order: 3, Active: true},
	}
	for i := range fields {
		require.NoError(t, db.Create(&fields[i]).Error)
	}
}

func testCoordinator(db *gorm.DB) *audit.Coordinator {
	return audit.NewCoordinator(db)
}

func auditCount(t *testing.T, db *gorm.DB, entity string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.AuditLog{}).Where("entidad = ?", entity).Count(&n).Error)
	return n
}
