// Package audit pairs every governed mutation with an immutable before/after
// snapshot, written in the same transaction as the mutation itself. Either
// both the entity write and its audit row commit, or neither does.
package audit

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/comunavision/backend/internal/models"
)

// ConflictError reports a storage-level uniqueness or foreign-key rejection.
// The transaction that produced it was rolled back in full, including the
// staged audit record.
type ConflictError struct {
	Constraint string
	Field      string
	Code       string
}

func (e *ConflictError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("conflicto de integridad en %s (%s)", e.Field, e.Constraint)
	}
	return fmt.Sprintf("conflicto de integridad (%s)", e.Constraint)
}

// Stable constraint names, kept aligned with the migrated schema so the
// request layer can produce field-specific 409 responses.
var uniqueConstraints = map[string]ConflictError{
	"comuneros.documento":           {Constraint: "uq_comuneros_documento", Field: "documento", Code: "DOCUMENTO_DUPLICADO"},
	"usuarios.email":                {Constraint: "uq_usuarios_email", Field: "email", Code: "EMAIL_DUPLICADO"},
	"campos_formulario.nombre_campo": {Constraint: "uq_campos_nombre", Field: "nombre_campo", Code: "CAMPO_DUPLICADO"},
}

// Snapshot is a JSON-serializable view of an entity's fields as stored in the
// audit log.
type Snapshot = map[string]any

// MutateFunc applies one governed mutation inside the open transaction and
// returns the flushed entity's id and after-snapshot. Returning an error
// aborts the transaction; nothing, audit row included, is committed.
type MutateFunc func(tx *gorm.DB) (uint, Snapshot, error)

// Coordinator wraps governed writes in an atomic mutation-plus-audit unit.
// It holds no entity state; every Apply operates on entities fetched fresh
// inside its transaction.
type Coordinator struct {
	db  *gorm.DB
	now func() time.Time
}

// NewCoordinator returns a Coordinator writing through the provided DB.
func NewCoordinator(db *gorm.DB) *Coordinator {
	return &Coordinator{db: db, now: time.Now}
}

// Apply runs mutate in one transaction and stages the paired audit record
// before committing. before is nil on create. Storage conflicts surface as
// *ConflictError; validation failures raised inside mutate pass through
// untouched.
func (c *Coordinator) Apply(actorID uint, action models.AuditAction, entity string, before Snapshot, mutate MutateFunc) (*models.AuditLog, error) {
	var record models.AuditLog

	err := c.db.Transaction(func(tx *gorm.DB) error {
		entityID, after, err := mutate(tx)
		if err != nil {
			return TranslateError(err)
		}

		record = models.AuditLog{
			UserID:    actorID,
			Action:    action,
			Entity:    entity,
			EntityID:  entityID,
			Before:    before,
			After:     after,
			Timestamp: c.now().UTC(),
		}
		if err := tx.Create(&record).Error; err != nil {
			return TranslateError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &record, nil
}

// TranslateError maps storage-engine rejections to typed conflicts. Anything
// that is not a uniqueness or FK violation is returned unchanged.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}

	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return err
	}

	msg := err.Error()

	const uniqueMarker = "UNIQUE constraint failed: "
	if idx := strings.Index(msg, uniqueMarker); idx >= 0 {
		cols := strings.TrimSpace(msg[idx+len(uniqueMarker):])
		// Multi-column violations list columns comma-separated; match on the
		// first one.
		if c := strings.IndexByte(cols, ','); c >= 0 {
			cols = strings.TrimSpace(cols[:c])
		}
		if known, ok := uniqueConstraints[cols]; ok {
			return &known
		}
		return &ConflictError{Constraint: cols, Code: "UNIQUE_VIOLATION"}
	}

	if strings.Contains(msg, "FOREIGN KEY constraint failed") || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return &ConflictError{Constraint: "foreign_key", Code: "FK_VIOLATION"}
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &ConflictError{Constraint: "unique", Code: "UNIQUE_VIOLATION"}
	}

	return err
}
