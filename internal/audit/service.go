package audit

import (
	"gorm.io/gorm"

	"github.com/comunavision/backend/internal/models"
)

// ListFilter narrows the audit query surface. Zero values mean "no filter".
type ListFilter struct {
	UserID   *uint
	Entity   string
	Action   models.AuditAction
	EntityID *uint
	Skip     int
	Limit    int
}

// Service is the read-only audit log store exposed to the request layer.
type Service struct {
	db *gorm.DB
}

// NewService returns a Service reading from the provided DB.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// List returns audit records newest first, filtered and paginated.
func (s *Service) List(f ListFilter) ([]models.AuditLog, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Limit > 200 {
		f.Limit = 200
	}

	q := s.db.Order("timestamp desc").Order("id desc")
	if f.UserID != nil {
		q = q.Where("usuario_id = ?", *f.UserID)
	}
	if f.Entity != "" {
		q = q.Where("entidad = ?", f.Entity)
	}
	if f.Action != "" {
		q = q.Where("accion = ?", f.Action)
	}
	if f.EntityID != nil {
		q = q.Where("entidad_id = ?", *f.EntityID)
	}

	var logs []models.AuditLog
	if err := q.Offset(f.Skip).Limit(f.Limit).Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// CountForEntity reports how many audit records exist for one entity row.
func (s *Service) CountForEntity(entity string, entityID uint) (int64, error) {
	var n int64
	err := s.db.Model(&models.AuditLog{}).
		Where("entidad = ? AND entidad_id = ?", entity, entityID).
		Count(&n).Error
	return n, err
}
