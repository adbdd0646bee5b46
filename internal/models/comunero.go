package models

import (
	"time"
)

// Comunero is a person record in the municipal registry. Fixed columns cover
// identity; everything else lives in Datos, a free-form JSON object validated
// against the administrator-defined field schema on every write.
//
// Records are soft-deleted only. Documento stays unique across deleted rows
// too, enforced by the stable-named uq_comuneros_documento constraint.
type Comunero struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"nombre" gorm:"column:nombre;size:150;not null;index"`
	Document  string         `json:"documento" gorm:"column:documento;size:50;not null;uniqueIndex:uq_comuneros_documento"`
	Datos     map[string]any `json:"datos_dinamicos" gorm:"column:datos_dinamicos;serializer:json;not null"`
	CreatedBy uint           `json:"creado_por" gorm:"column:creado_por;not null;index"`
	Creator   *User          `json:"-" gorm:"foreignKey:CreatedBy;constraint:OnDelete:RESTRICT"`
	IsDeleted bool           `json:"is_deleted" gorm:"column:is_deleted;not null;default:false;index"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName keeps the table shared with the original deployment schema.
func (Comunero) TableName() string { return "comuneros" }
