package handlers

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comunavision/backend/internal/models"
)

func TestComuneroCreateEndpoint(t *testing.T) {
	db := OpenTestDB(t)
	admin := seedTestAdmin(t, db)
	seedTestSchema(t, db)
	router := newTestRouter(t, db, admin)

	w := doJSON(t, router, http.MethodPost, "/api/v1/comuneros", map[string]any{
		"nombre":          "Maria Perez",
		"documento":       "D-100",
		"datos_dinamicos": map[string]any{"zona": "A"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Maria Perez", body["nombre"])
	assert.NotZero(t, body["id"])
}

func TestComuneroCreateValidationError(t *testing.T) {
	db := OpenTestDB(t)
	admin := seedTestAdmin(t, db)
	seedTestSchema(t, db)
	router := newTestRouter(t, db, admin)

	w := doJSON(t, router, http.MethodPost, "/api/v1/comuneros", map[string]any{
		"nombre":          "Maria",
		"documento":       "D-100",
		"datos_dinamicos": map[string]any{"telefono": "555"},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "MISSING_REQUIRED", body["code"])
	assert.Equal(t, "zona", body["field"])
}

func TestComuneroCreateDuplicateEndpoint(t *testing.T) {
	db := OpenTestDB(t)
	admin := seedTestAdmin(t, db)
	seedTestSchema(t, db)
	router := newTestRouter(t, db, admin)

	payload := map[string]any{
		"nombre":          "Maria",
		"documento":       "D-200",
		"datos_dinamicos": map[string]any{"zona": "A"},
	}
	w := doJSON(t, router, http.MethodPost, "/api/v1/comuneros", payload)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/comuneros", payload)
	require.Equal(t, http.StatusConflict, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "DOCUMENTO_DUPLICADO", body["code"])
	assert.Equal(t, "documento", body["field"])
	assert.Equal(t, "uq_comuneros_documento", body["constraint"])
}

func TestComuneroListEndpoint(t *testing.T) {
	db := OpenTestDB(t)
	admin := seedTestAdmin(t, db)
	seedTestSchema(t, db)
	router := newTestRouter(t, db, admin)

	for _, c := range []map[string]any{
		{"nombre": "Ana", "documento": "D-1", "datos_dinamicos": map[string]any{"zona": "A"}},
		{"nombre": "Beto", "documento": "D-2", "datos_dinamicos": map[string]any{"zona": "B"}},
	} {
		w := doJSON(t, router, http.MethodPost, "/api/v1/comuneros", c)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, router, http.MethodGet, "/api/v1/comuneros", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeList(t, w), 2)

	filtered := "/api/v1/comuneros?filtros_and=" + url.QueryEscape(`{"zona":"B"}`)
	w = doJSON(t, router, http.MethodGet, filtered, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeList(t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "Beto", list[0]["nombre"])

	w = doJSON(t, router, http.MethodGet, "/api/v1/comuneros?filtros_and=no-json", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestComuneroUpdateMergesUnsetFields(t *testing.T) {
	db := OpenTestDB(t)
	admin := seedTestAdmin(t, db)
	seedTestSchema(t, db)
	router := newTestRouter(t, db, admin)

	w := doJSON(t, router, http.MethodPost, "/api/v1/comuneros", map[string]any{
		"nombre":          "Maria",
		"documento":       "D-300",
		"datos_dinamicos": map[string]any{"zona": "A", "telefono": "555"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeBody(t, w)["id"].(float64)

	// Only the name travels; documento and datos are merged from storage.
	w = doJSON(t, router, http.MethodPut, "/api/v1/comuneros/1", map[string]any{"nombre": "Maria Lopez"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Maria Lopez", body["nombre"])
	assert.Equal(t, "D-300", body["documento"])
	datos := body["datos_dinamicos"].(map[string]any)
	assert.Equal(t, "A", datos["zona"])
	assert.Equal(t, "555", datos["telefono"])
	assert.EqualValues(t, id, body["id"])
}

func TestComuneroDeleteRequiresAdmin(t *testing.T) {
	db := OpenTestDB(t)
	admin := seedTestAdmin(t, db)
	operator := seedTestOperator(t, db)
	seedTestSchema(t, db)

	adminRouter := newTestRouter(t, db, admin)
	operatorRouter := newTestRouter(t, db, operator)

	w := doJSON(t, adminRouter, http.MethodPost, "/api/v1/comuneros", map[string]any{
		"nombre":          "Maria",
		"documento":       "D-400",
		"datos_dinamicos": map[string]any{"zona": "A"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, operatorRouter, http.MethodDelete, "/api/v1/comuneros/1", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, adminRouter, http.MethodDelete, "/api/v1/comuneros/1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, adminRouter, http.MethodGet, "/api/v1/comuneros/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var row models.Comunero
	require.NoError(t, db.First(&row, 1).Error)
	assert.True(t, row.IsDeleted)
}

func TestComuneroBadID(t *testing.T) {
	db := OpenTestDB(t)
	admin := seedTestAdmin(t, db)
	router := newTestRouter(t, db, admin)

	w := doJSON(t, router, http.MethodGet, "/api/v1/comuneros/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
