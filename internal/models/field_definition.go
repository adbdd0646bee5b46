package models

import (
	"time"
)

// FieldType enumerates the declared types a dynamic form field may carry.
type FieldType string

const (
	FieldTypeText        FieldType = "text"
	FieldTypeNumber      FieldType = "number"
	FieldTypeInteger     FieldType = "integer"
	FieldTypeBoolean     FieldType = "boolean"
	FieldTypeDate        FieldType = "date"
	FieldTypeSelect      FieldType = "select"
	FieldTypeMultiselect FieldType = "multiselect"
)

// KnownFieldType reports whether t is in the supported enumeration. A stored
// definition outside this set is schema corruption and is surfaced to the
// caller by the validator rather than silently accepted.
func KnownFieldType(t FieldType) bool {
	switch t {
	case FieldTypeText, FieldTypeNumber, FieldTypeInteger, FieldTypeBoolean,
		FieldTypeDate, FieldTypeSelect, FieldTypeMultiselect:
		return true
	}
	return false
}

// FieldDefinition is an administrator-authored description of one dynamic
// comunero attribute. Name is unique schema-wide, including inactive rows, so
// historical audit snapshots keep resolving by name. Deactivation flips
// Active; definitions are never physically removed.
type FieldDefinition struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	Name     string    `json:"nombre_campo" gorm:"column:nombre_campo;size:150;not null;uniqueIndex:uq_campos_nombre"`
	Type     FieldType `json:"tipo" gorm:"column:tipo;size:50;not null;index"`
	Required bool      `json:"obligatorio" gorm:"column:obligatorio;not null;default:false"`
	Options  []string  `json:"opciones" gorm:"column:opciones;serializer:json"`
	Order    int       `json:"orden" gorm:"column:orden;not null;default:0;index"`
	Active   bool      `json:"activo" gorm:"column:activo;not null;default:true;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName keeps the table shared with the original deployment schema.
func (FieldDefinition) TableName() string { return "campos_formulario" }
