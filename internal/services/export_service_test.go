package services

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comunavision/backend/internal/models"
)

func TestWriteCSV(t *testing.T) {
	db := openTestDB(t)
	admin := seedAdmin(t, db)
	seedSchema(t, db)
	svc := NewExportService(db)

	rows := []models.Comunero{
		{Name: "Ana", Document: "D-1", Datos: map[string]any{"zona": "A", "telefono": "555"}, CreatedBy: admin.ID},
		{Name: "Beto", Document: "D-2", Datos: map[string]any{"zona": "B"}, CreatedBy: admin.ID, IsDeleted: true},
	}
	for i := range rows {
		require.NoError(t, db.Create(&rows[i]).Error)
	}

	var buf bytes.Buffer
	require.NoError(t, svc.WriteCSV(&buf, false))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2) // header + Ana

	header := records[0]
	assert.Equal(t, []string{"id", "nombre", "documento", "is_deleted", "created_at", "zona", "telefono", "edad"}, header)

	ana := records[1]
	assert.Equal(t, "Ana", ana[1])
	assert.Equal(t, "D-1", ana[2])
	assert.Equal(t, "A", ana[5])
	assert.Equal(t, "555", ana[6])
	assert.Equal(t, "", ana[7]) // unset dynamic value

	// include_deleted brings the soft-deleted row back.
	buf.Reset()
	require.NoError(t, svc.WriteCSV(&buf, true))
	records, err = csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestWriteJSON(t *testing.T) {
	db := openTestDB(t)
	admin := seedAdmin(t, db)
	seedSchema(t, db)
	svc := NewExportService(db)

	c := models.Comunero{Name: "Ana", Document: "D-1", Datos: map[string]any{"zona": "A"}, CreatedBy: admin.ID}
	require.NoError(t, db.Create(&c).Error)

	var buf bytes.Buffer
	require.NoError(t, svc.WriteJSON(&buf, false))

	var out []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "Ana", out[0]["nombre"])
	datos := out[0]["datos_dinamicos"].(map[string]any)
	assert.Equal(t, "A", datos["zona"])
}

func TestFilename(t *testing.T) {
	svc := NewExportService(nil)
	name := svc.Filename("csv")
	assert.True(t, strings.HasPrefix(name, "comuneros_"))
	assert.True(t, strings.HasSuffix(name, ".csv"))
}

func TestCellValue(t *testing.T) {
	assert.Equal(t, "", cellValue(nil))
	assert.Equal(t, "texto", cellValue("texto"))
	assert.Equal(t, "42", cellValue(42))
	assert.Equal(t, `["a","b"]`, cellValue([]any{"a", "b"}))
	assert.Equal(t, `{"k":"v"}`, cellValue(map[string]any{"k": "v"}))
}
