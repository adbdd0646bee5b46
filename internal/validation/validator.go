// Package validation decides whether a free-form comunero payload satisfies
// the administrator-defined field schema. Validate is a pure function of the
// schema snapshot and the payload; callers fetch the snapshot (normally
// inside the write transaction) and inject it.
package validation

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/comunavision/backend/internal/models"
)

// Violation codes surfaced to the request layer.
const (
	CodeMissingRequired = "MISSING_REQUIRED"
	CodeUnknownField    = "UNKNOWN_FIELD"
	CodeInvalidType     = "INVALID_TYPE"
	CodeInvalidOption   = "INVALID_OPTION"
	CodeUnsupportedType = "UNSUPPORTED_TYPE"
)

// ValidationError reports the first payload violation found. Validation is
// fail-fast: one error, not an accumulated list.
type ValidationError struct {
	Field  string
	Code   string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func fail(field, code, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Code: code, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks payload against the active schema snapshot, in order:
// required fields present and non-empty, no unknown keys, then per-type
// checks. The snapshot is walked in (orden, id) order and unknown keys in
// sorted order so repeated calls with equal inputs fail identically.
func Validate(schema []models.FieldDefinition, payload map[string]any) error {
	fields := make(map[string]models.FieldDefinition, len(schema))
	ordered := make([]models.FieldDefinition, len(schema))
	copy(ordered, schema)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Order != ordered[j].Order {
			return ordered[i].Order < ordered[j].Order
		}
		return ordered[i].ID < ordered[j].ID
	})
	for _, f := range ordered {
		fields[f.Name] = f
	}

	for _, f := range ordered {
		if !f.Required {
			continue
		}
		v, ok := payload[f.Name]
		if !ok || isEmpty(v) {
			return fail(f.Name, CodeMissingRequired, "el campo '%s' es obligatorio", f.Name)
		}
	}

	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, ok := fields[k]; !ok {
			return fail(k, CodeUnknownField, "campo no permitido: %s", k)
		}
	}

	for _, f := range ordered {
		v, ok := payload[f.Name]
		if !ok {
			continue
		}
		if v == nil {
			// Required-ness was already checked; null is fine otherwise.
			continue
		}
		if err := checkType(f, v); err != nil {
			return err
		}
	}

	return nil
}

func checkType(f models.FieldDefinition, v any) error {
	switch f.Type {
	case models.FieldTypeText:
		if _, ok := v.(string); !ok {
			return fail(f.Name, CodeInvalidType, "%s debe ser texto", f.Name)
		}

	case models.FieldTypeNumber:
		if !isNumeric(v) {
			return fail(f.Name, CodeInvalidType, "%s debe ser numérico", f.Name)
		}

	case models.FieldTypeInteger:
		if !isIntegral(v) {
			return fail(f.Name, CodeInvalidType, "%s debe ser entero", f.Name)
		}

	case models.FieldTypeBoolean:
		if _, ok := v.(bool); !ok {
			return fail(f.Name, CodeInvalidType, "%s debe ser booleano", f.Name)
		}

	case models.FieldTypeDate:
		if !isDate(v) {
			return fail(f.Name, CodeInvalidType, "%s debe ser fecha YYYY-MM-DD", f.Name)
		}

	case models.FieldTypeSelect:
		s, ok := v.(string)
		if !ok {
			return fail(f.Name, CodeInvalidType, "%s debe ser texto (select)", f.Name)
		}
		if len(f.Options) > 0 && !contains(f.Options, s) {
			return fail(f.Name, CodeInvalidOption, "%s contiene valor inválido", f.Name)
		}

	case models.FieldTypeMultiselect:
		values, ok := stringSlice(v)
		if !ok {
			return fail(f.Name, CodeInvalidType, "%s debe ser lista de textos", f.Name)
		}
		if len(f.Options) > 0 {
			for _, s := range values {
				if !contains(f.Options, s) {
					return fail(f.Name, CodeInvalidOption, "%s contiene opciones inválidas", f.Name)
				}
			}
		}

	default:
		// Schema corruption, not user error, but it must reach the caller.
		return fail(f.Name, CodeUnsupportedType, "tipo de campo no soportado: %s (%s)", f.Name, f.Type)
	}

	return nil
}

// isEmpty defines "vacío" for required-field checks: null, empty string,
// empty list or empty object. false and 0 are values, not absences.
func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}

func isNumeric(v any) bool {
	switch v.(type) {
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

func isIntegral(v any) bool {
	switch t := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case float64:
		// JSON decoding hands every number over as float64.
		return t == math.Trunc(t)
	case float32:
		return float64(t) == math.Trunc(float64(t))
	}
	return false
}

func isDate(v any) bool {
	switch t := v.(type) {
	case time.Time:
		return true
	case string:
		_, err := time.Parse("2006-01-02", strings.TrimSpace(t))
		return err == nil
	}
	return false
}

func stringSlice(v any) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return t, true
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

func contains(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}
