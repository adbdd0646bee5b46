package handlers

import (
	"encoding/csv"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportCSVEndpoint(t *testing.T) {
	db := OpenTestDB(t)
	admin := seedTestAdmin(t, db)
	seedTestSchema(t, db)
	router := newTestRouter(t, db, admin)

	w := doJSON(t, router, http.MethodPost, "/api/v1/comuneros", map[string]any{
		"nombre":          "Ana",
		"documento":       "D-1",
		"datos_dinamicos": map[string]any{"zona": "A"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/exportaciones/comuneros?formato=csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment; filename=comuneros_")
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")

	records, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Ana", records[1][1])
}

func TestExportJSONEndpoint(t *testing.T) {
	db := OpenTestDB(t)
	admin := seedTestAdmin(t, db)
	seedTestSchema(t, db)
	router := newTestRouter(t, db, admin)

	w := doJSON(t, router, http.MethodGet, "/api/v1/exportaciones/comuneros?formato=json", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".json")
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

func TestExportBadFormat(t *testing.T) {
	db := OpenTestDB(t)
	admin := seedTestAdmin(t, db)
	router := newTestRouter(t, db, admin)

	w := doJSON(t, router, http.MethodGet, "/api/v1/exportaciones/comuneros?formato=xml", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportRequiresAdmin(t *testing.T) {
	db := OpenTestDB(t)
	operator := seedTestOperator(t, db)
	router := newTestRouter(t, db, operator)

	w := doJSON(t, router, http.MethodGet, "/api/v1/exportaciones/comuneros", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
