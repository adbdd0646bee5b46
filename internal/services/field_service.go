package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/comunavision/backend/internal/audit"
	"github.com/comunavision/backend/internal/metrics"
	"github.com/comunavision/backend/internal/models"
)

var (
	ErrFieldNotFound = errors.New("campo no encontrado")
	ErrFieldName     = errors.New("nombre de campo requerido")
	ErrFieldType     = errors.New("tipo de campo no soportado")
)

// ActiveFields returns the active field schema ordered by orden asc, with
// insertion order breaking ties. Callers inside a write transaction pass the
// transaction handle so the snapshot and the commit share isolation.
func ActiveFields(db *gorm.DB) ([]models.FieldDefinition, error) {
	var fields []models.FieldDefinition
	err := db.Where("activo = ?", true).
		Order("orden asc").Order("id asc").
		Find(&fields).Error
	return fields, err
}

// FieldInput carries a new field definition.
type FieldInput struct {
	Name     string           `json:"nombre_campo" binding:"required"`
	Type     models.FieldType `json:"tipo" binding:"required"`
	Required bool             `json:"obligatorio"`
	Options  []string         `json:"opciones"`
	Order    int              `json:"orden"`
}

// FieldPatch is an explicit whitelisted partial update; nil means "leave
// unchanged". No reflection-driven attribute assignment.
type FieldPatch struct {
	Name     *string           `json:"nombre_campo"`
	Type     *models.FieldType `json:"tipo"`
	Required *bool             `json:"obligatorio"`
	Options  *[]string         `json:"opciones"`
	Order    *int              `json:"orden"`
	Active   *bool             `json:"activo"`
}

// FieldService is the administrative surface of the field schema store. All
// mutations go through the audit coordinator.
type FieldService struct {
	db    *gorm.DB
	coord *audit.Coordinator
}

// NewFieldService returns a FieldService writing through db.
func NewFieldService(db *gorm.DB, coord *audit.Coordinator) *FieldService {
	return &FieldService{db: db, coord: coord}
}

// List returns every field definition, active or not, in schema order.
func (s *FieldService) List() ([]models.FieldDefinition, error) {
	var fields []models.FieldDefinition
	err := s.db.Order("orden asc").Order("id asc").Find(&fields).Error
	return fields, err
}

// GetByName fetches one definition by its unique name, regardless of state.
func (s *FieldService) GetByName(name string) (*models.FieldDefinition, error) {
	var field models.FieldDefinition
	if err := s.db.Where("nombre_campo = ?", name).First(&field).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFieldNotFound
		}
		return nil, err
	}
	return &field, nil
}

// Get fetches one definition by id.
func (s *FieldService) Get(id uint) (*models.FieldDefinition, error) {
	var field models.FieldDefinition
	if err := s.db.First(&field, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFieldNotFound
		}
		return nil, err
	}
	return &field, nil
}

// Create adds a definition and audits it. Name uniqueness is enforced by the
// storage constraint and surfaces as a ConflictError.
func (s *FieldService) Create(actor *models.User, input FieldInput) (*models.FieldDefinition, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, ErrFieldName
	}
	if !models.KnownFieldType(input.Type) {
		return nil, ErrFieldType
	}

	var created models.FieldDefinition
	_, err := s.coord.Apply(actor.ID, models.AuditCreate, models.EntityFields, nil, func(tx *gorm.DB) (uint, audit.Snapshot, error) {
		created = models.FieldDefinition{
			Name:     input.Name,
			Type:     input.Type,
			Required: input.Required,
			Options:  input.Options,
			Order:    input.Order,
			Active:   true,
		}
		if err := tx.Create(&created).Error; err != nil {
			return 0, nil, err
		}
		return created.ID, snapshotField(&created), nil
	})
	if err != nil {
		return nil, countConflict(err)
	}

	metrics.IncGovernedWrite(models.EntityFields, string(models.AuditCreate))
	return &created, nil
}

// Update applies a partial patch and audits before/after.
func (s *FieldService) Update(actor *models.User, id uint, patch FieldPatch) (*models.FieldDefinition, error) {
	field, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, ErrFieldName
	}
	if patch.Type != nil && !models.KnownFieldType(*patch.Type) {
		return nil, ErrFieldType
	}

	before := snapshotField(field)

	_, err = s.coord.Apply(actor.ID, models.AuditEdit, models.EntityFields, before, func(tx *gorm.DB) (uint, audit.Snapshot, error) {
		if patch.Name != nil {
			field.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Type != nil {
			field.Type = *patch.Type
		}
		if patch.Required != nil {
			field.Required = *patch.Required
		}
		if patch.Options != nil {
			field.Options = *patch.Options
		}
		if patch.Order != nil {
			field.Order = *patch.Order
		}
		if patch.Active != nil {
			field.Active = *patch.Active
		}
		if err := tx.Save(field).Error; err != nil {
			return 0, nil, err
		}
		return field.ID, snapshotField(field), nil
	})
	if err != nil {
		return nil, countConflict(err)
	}

	metrics.IncGovernedWrite(models.EntityFields, string(models.AuditEdit))
	return field, nil
}

// Deactivate soft-deletes a definition. The row stays so historical audit
// snapshots keep resolving its name, and the name stays reserved.
func (s *FieldService) Deactivate(actor *models.User, id uint) error {
	field, err := s.Get(id)
	if err != nil {
		return err
	}

	before := snapshotField(field)

	_, err = s.coord.Apply(actor.ID, models.AuditDelete, models.EntityFields, before, func(tx *gorm.DB) (uint, audit.Snapshot, error) {
		field.Active = false
		if err := tx.Save(field).Error; err != nil {
			return 0, nil, err
		}
		return field.ID, snapshotField(field), nil
	})
	if err != nil {
		return countConflict(err)
	}

	metrics.IncGovernedWrite(models.EntityFields, string(models.AuditDelete))
	return nil
}

func snapshotField(f *models.FieldDefinition) audit.Snapshot {
	return audit.Snapshot{
		"id":           f.ID,
		"nombre_campo": f.Name,
		"tipo":         string(f.Type),
		"obligatorio":  f.Required,
		"opciones":     f.Options,
		"orden":        f.Order,
		"activo":       f.Active,
		"created_at":   f.CreatedAt,
		"updated_at":   f.UpdatedAt,
	}
}

func countConflict(err error) error {
	var conflict *audit.ConflictError
	if errors.As(err, &conflict) {
		metrics.IncIntegrityConflict()
	}
	return err
}
