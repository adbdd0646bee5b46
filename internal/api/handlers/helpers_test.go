package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/comunavision/backend/internal/api/middleware"
	"github.com/comunavision/backend/internal/audit"
	"github.com/comunavision/backend/internal/models"
	"github.com/comunavision/backend/internal/services"
)

// newTestRouter mounts the protected API surface with the given user already
// authenticated, mirroring the production wiring minus the token handshake.
func newTestRouter(t *testing.T, db *gorm.DB, user *models.User) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	api := router.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, user.ID)
		c.Set(middleware.RoleKey, string(user.Role))
		c.Set(middleware.CurrentUserKey, user)
		c.Next()
	})

	coord := audit.NewCoordinator(db)
	notifier := services.NewNotificationService(db, nil)

	comuneroService := services.NewComuneroService(db, coord, notifier)
	fieldService := services.NewFieldService(db, coord)
	userService := services.NewUserService(db, coord)
	auditService := audit.NewService(db)
	statsService := services.NewStatsService(db)
	exportService := services.NewExportService(db)

	NewComuneroHandler(comuneroService).RegisterRoutes(api)
	NewFieldHandler(fieldService).RegisterRoutes(api)
	NewUserHandler(userService).RegisterRoutes(api)
	NewLogsHandler(auditService).RegisterRoutes(api)
	NewStatsHandler(statsService, fieldService).RegisterRoutes(api)
	NewExportHandler(exportService).RegisterRoutes(api)
	NewNotificationHandler(notifier).RegisterRoutes(api)

	return router
}

func seedTestAdmin(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := models.User{Email: "admin@test.local", Name: "Admin", Role: models.RoleAdmin, Active: true}
	require.NoError(t, user.SetPassword("secret123"))
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func seedTestOperator(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := models.User{Email: "op@test.local", Name: "Operadora", Role: models.RoleOperator, Active: true}
	require.NoError(t, user.SetPassword("secret123"))
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func seedTestSchema(t *testing.T, db *gorm.DB) {
	t.Helper()
	fields := []models.FieldDefinition{
		{Name: "zona", Type: models.FieldTypeSelect, Required: true, Options: []string{"A", "B", "C"}, Order: 1, Active: true},
		{Name: "telefono", Type: models.FieldTypeText, Order: 2, Active: true},
	}
	for i := range fields {
		require.NoError(t, db.Create(&fields[i]).Error)
	}
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var out []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
