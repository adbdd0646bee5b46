package services

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gorm.io/gorm"

	"github.com/comunavision/backend/internal/models"
)

// ExportService renders registry contents as CSV or JSON downloads.
type ExportService struct {
	db *gorm.DB
}

// NewExportService returns an ExportService reading from db.
func NewExportService(db *gorm.DB) *ExportService {
	return &ExportService{db: db}
}

func (s *ExportService) fetch(includeDeleted bool) ([]models.Comunero, []models.FieldDefinition, error) {
	q := s.db.Order("id asc")
	if !includeDeleted {
		q = q.Where("is_deleted = ?", false)
	}
	var comuneros []models.Comunero
	if err := q.Find(&comuneros).Error; err != nil {
		return nil, nil, err
	}

	fields, err := ActiveFields(s.db)
	if err != nil {
		return nil, nil, err
	}
	return comuneros, fields, nil
}

// WriteCSV streams comuneros as CSV: fixed columns followed by one column
// per active field in schema order. Historical values for deactivated fields
// are not exported; they remain in the JSON export.
func (s *ExportService) WriteCSV(w io.Writer, includeDeleted bool) error {
	comuneros, fields, err := s.fetch(includeDeleted)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	header := []string{"id", "nombre", "documento", "is_deleted", "created_at"}
	for _, f := range fields {
		header = append(header, f.Name)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, c := range comuneros {
		row := []string{
			fmt.Sprint(c.ID),
			c.Name,
			c.Document,
			fmt.Sprint(c.IsDeleted),
			c.CreatedAt.UTC().Format(time.RFC3339),
		}
		for _, f := range fields {
			row = append(row, cellValue(c.Datos[f.Name]))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteJSON streams comuneros as a JSON array with the complete dynamic
// payload, deactivated field values included.
func (s *ExportService) WriteJSON(w io.Writer, includeDeleted bool) error {
	comuneros, _, err := s.fetch(includeDeleted)
	if err != nil {
		return err
	}
	if comuneros == nil {
		comuneros = []models.Comunero{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(comuneros)
}

// Filename builds the timestamped download name.
func (s *ExportService) Filename(format string) string {
	return fmt.Sprintf("comuneros_%s.%s", time.Now().UTC().Format("20060102_150405"), format)
}

func cellValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any, map[string]any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}
