package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/comunavision/backend/internal/audit"
	"github.com/comunavision/backend/internal/metrics"
	"github.com/comunavision/backend/internal/models"
	"github.com/comunavision/backend/internal/validation"
)

var ErrComuneroNotFound = errors.New("comunero no encontrado")

// ComuneroInput is the full intended state of a comunero write. Updates are
// not partial at this layer: the handler merges unset fields with stored
// values before calling in, and the whole dynamic payload is revalidated
// against the current active schema.
type ComuneroInput struct {
	Name     string         `json:"nombre" binding:"required"`
	Document string         `json:"documento" binding:"required"`
	Datos    map[string]any `json:"datos_dinamicos"`
}

// ComuneroFilter narrows and pages the listing. AND filters must all match a
// dynamic field value; OR filters match any.
type ComuneroFilter struct {
	Skip       int
	Limit      int
	FiltrosAnd map[string]any
	FiltrosOr  map[string]any
}

// ComuneroService owns comunero reads and governed writes.
type ComuneroService struct {
	db       *gorm.DB
	coord    *audit.Coordinator
	notifier *NotificationService
}

// NewComuneroService returns a ComuneroService writing through db. notifier
// may be nil in tests.
func NewComuneroService(db *gorm.DB, coord *audit.Coordinator, notifier *NotificationService) *ComuneroService {
	return &ComuneroService{db: db, coord: coord, notifier: notifier}
}

// Get fetches one non-deleted comunero.
func (s *ComuneroService) Get(id uint) (*models.Comunero, error) {
	var c models.Comunero
	if err := s.db.First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrComuneroNotFound
		}
		return nil, err
	}
	if c.IsDeleted {
		return nil, ErrComuneroNotFound
	}
	return &c, nil
}

// List returns non-deleted comuneros with pagination and dynamic-field
// filters evaluated via SQLite's json_extract.
func (s *ComuneroService) List(f ComuneroFilter) ([]models.Comunero, error) {
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Limit > 200 {
		f.Limit = 200
	}

	q := s.db.Where("is_deleted = ?", false)

	// Compare on the text form; json_extract yields typed values and the
	// filter arrives as text.
	const cond = "cast(json_extract(datos_dinamicos, ?) as text) = ?"

	for key, value := range f.FiltrosAnd {
		q = q.Where(cond, jsonPath(key), fmt.Sprint(value))
	}

	if len(f.FiltrosOr) > 0 {
		or := s.db.Session(&gorm.Session{NewDB: true})
		grouped := or
		first := true
		for key, value := range f.FiltrosOr {
			if first {
				grouped = or.Where(cond, jsonPath(key), fmt.Sprint(value))
				first = false
			} else {
				grouped = grouped.Or(cond, jsonPath(key), fmt.Sprint(value))
			}
		}
		q = q.Where(grouped)
	}

	var out []models.Comunero
	err := q.Order("id asc").Offset(f.Skip).Limit(f.Limit).Find(&out).Error
	return out, err
}

// Create validates the dynamic payload against the active schema and commits
// the new comunero together with its audit record.
func (s *ComuneroService) Create(actor *models.User, input ComuneroInput) (*models.Comunero, error) {
	var created models.Comunero

	_, err := s.coord.Apply(actor.ID, models.AuditCreate, models.EntityComuneros, nil, func(tx *gorm.DB) (uint, audit.Snapshot, error) {
		if err := s.validate(tx, input.Datos); err != nil {
			return 0, nil, err
		}

		created = models.Comunero{
			Name:      strings.TrimSpace(input.Name),
			Document:  strings.TrimSpace(input.Document),
			Datos:     datosOrEmpty(input.Datos),
			CreatedBy: actor.ID,
		}
		if err := tx.Create(&created).Error; err != nil {
			return 0, nil, err
		}
		return created.ID, snapshotComunero(&created), nil
	})
	if err != nil {
		return nil, countComuneroFailure(err)
	}

	metrics.IncGovernedWrite(models.EntityComuneros, string(models.AuditCreate))
	return &created, nil
}

// Update replaces the comunero's fields with the full intended state after
// revalidating the complete dynamic payload.
func (s *ComuneroService) Update(actor *models.User, id uint, input ComuneroInput) (*models.Comunero, error) {
	comunero, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	before := snapshotComunero(comunero)

	_, err = s.coord.Apply(actor.ID, models.AuditEdit, models.EntityComuneros, before, func(tx *gorm.DB) (uint, audit.Snapshot, error) {
		if err := s.validate(tx, input.Datos); err != nil {
			return 0, nil, err
		}

		comunero.Name = strings.TrimSpace(input.Name)
		comunero.Document = strings.TrimSpace(input.Document)
		comunero.Datos = datosOrEmpty(input.Datos)
		if err := tx.Save(comunero).Error; err != nil {
			return 0, nil, err
		}
		return comunero.ID, snapshotComunero(comunero), nil
	})
	if err != nil {
		return nil, countComuneroFailure(err)
	}

	metrics.IncGovernedWrite(models.EntityComuneros, string(models.AuditEdit))
	return comunero, nil
}

// SoftDelete marks the comunero deleted. It is audited like any other edit,
// with action delete. The row, and its documento uniqueness, remain.
func (s *ComuneroService) SoftDelete(actor *models.User, id uint) error {
	comunero, err := s.Get(id)
	if err != nil {
		return err
	}

	before := snapshotComunero(comunero)

	_, err = s.coord.Apply(actor.ID, models.AuditDelete, models.EntityComuneros, before, func(tx *gorm.DB) (uint, audit.Snapshot, error) {
		comunero.IsDeleted = true
		if err := tx.Save(comunero).Error; err != nil {
			return 0, nil, err
		}
		return comunero.ID, snapshotComunero(comunero), nil
	})
	if err != nil {
		return countComuneroFailure(err)
	}

	metrics.IncGovernedWrite(models.EntityComuneros, string(models.AuditDelete))
	if s.notifier != nil {
		s.notifier.Notify(models.NotificationWarning, "Comunero eliminado",
			fmt.Sprintf("El comunero %q (documento %s) fue eliminado por el usuario %d.", comunero.Name, comunero.Document, actor.ID))
	}
	return nil
}

// validate reads the active schema inside the write transaction so the
// snapshot the validator sees and the state the commit sees share isolation.
func (s *ComuneroService) validate(tx *gorm.DB, datos map[string]any) error {
	schema, err := ActiveFields(tx)
	if err != nil {
		return err
	}
	if err := validation.Validate(schema, datosOrEmpty(datos)); err != nil {
		metrics.IncValidationRejected()
		return err
	}
	return nil
}

func datosOrEmpty(datos map[string]any) map[string]any {
	if datos == nil {
		return map[string]any{}
	}
	return datos
}

func snapshotComunero(c *models.Comunero) audit.Snapshot {
	return audit.Snapshot{
		"id":              c.ID,
		"nombre":          c.Name,
		"documento":       c.Document,
		"datos_dinamicos": datosOrEmpty(c.Datos),
		"creado_por":      c.CreatedBy,
		"is_deleted":      c.IsDeleted,
		"created_at":      c.CreatedAt,
		"updated_at":      c.UpdatedAt,
	}
}

func countComuneroFailure(err error) error {
	var verr *validation.ValidationError
	if errors.As(err, &verr) {
		return err
	}
	return countConflict(err)
}

func jsonPath(key string) string {
	return "$." + key
}
