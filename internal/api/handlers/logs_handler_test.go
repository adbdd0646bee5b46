package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogsEndpoint(t *testing.T) {
	db := OpenTestDB(t)
	admin := seedTestAdmin(t, db)
	operator := seedTestOperator(t, db)
	seedTestSchema(t, db)

	adminRouter := newTestRouter(t, db, admin)
	operatorRouter := newTestRouter(t, db, operator)

	// Two governed writes produce two audit rows.
	w := doJSON(t, adminRouter, http.MethodPost, "/api/v1/comuneros", map[string]any{
		"nombre":          "Maria",
		"documento":       "D-1",
		"datos_dinamicos": map[string]any{"zona": "A"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, adminRouter, http.MethodPut, "/api/v1/comuneros/1", map[string]any{"nombre": "Maria Lopez"})
	require.Equal(t, http.StatusOK, w.Code)

	// Operators cannot read the audit log.
	w = doJSON(t, operatorRouter, http.MethodGet, "/api/v1/logs", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, adminRouter, http.MethodGet, "/api/v1/logs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	logs := decodeList(t, w)
	require.Len(t, logs, 2)
	// Newest first.
	assert.Equal(t, "edit", logs[0]["accion"])
	assert.Equal(t, "create", logs[1]["accion"])

	w = doJSON(t, adminRouter, http.MethodGet, "/api/v1/logs?accion=create", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeList(t, w), 1)

	w = doJSON(t, adminRouter, http.MethodGet, "/api/v1/logs?entidad=usuarios", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeList(t, w), 0)

	w = doJSON(t, adminRouter, http.MethodGet, "/api/v1/logs?usuario_id=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
