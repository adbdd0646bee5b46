package models

import (
	"time"
)

// AuditAction enumerates the governed mutations recorded in the audit log.
type AuditAction string

const (
	AuditCreate AuditAction = "create"
	AuditEdit   AuditAction = "edit"
	AuditDelete AuditAction = "delete"
)

// Governed entity kinds as recorded in the audit log.
const (
	EntityComuneros = "comuneros"
	EntityUsers     = "usuarios"
	EntityFields    = "campos_formulario"
)

// AuditLog is an immutable before/after snapshot of one governed mutation.
// Rows are written exclusively by the audit coordinator, in the same
// transaction as the mutation they record, and are never updated or deleted.
type AuditLog struct {
	ID       uint        `json:"id" gorm:"primaryKey"`
	UserID   uint        `json:"usuario_id" gorm:"column:usuario_id;not null;index"`
	Action   AuditAction `json:"accion" gorm:"column:accion;size:20;not null;index"`
	Entity   string      `json:"entidad" gorm:"column:entidad;size:100;not null;index:ix_logs_entidad_entidad_id"`
	EntityID uint        `json:"entidad_id" gorm:"column:entidad_id;not null;index:ix_logs_entidad_entidad_id"`

	Before map[string]any `json:"datos_anteriores" gorm:"column:datos_anteriores;serializer:json"`
	After  map[string]any `json:"datos_nuevos" gorm:"column:datos_nuevos;serializer:json"`

	Timestamp time.Time `json:"timestamp" gorm:"not null;index"`
}

// TableName keeps the table shared with the original deployment schema.
func (AuditLog) TableName() string { return "logs_auditoria" }
