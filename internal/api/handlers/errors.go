package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comunavision/backend/internal/audit"
	"github.com/comunavision/backend/internal/services"
	"github.com/comunavision/backend/internal/validation"
)

// respondError maps service failures to wire responses: validation failures
// to 400 with a violation code, storage conflicts to 409 with the violated
// constraint, not-found to 404, everything else to 500.
func respondError(c *gin.Context, err error) {
	var verr *validation.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": verr.Reason,
			"code":  verr.Code,
			"field": verr.Field,
		})
		return
	}

	var conflict *audit.ConflictError
	if errors.As(err, &conflict) {
		c.JSON(http.StatusConflict, gin.H{
			"error":      conflict.Error(),
			"code":       conflict.Code,
			"field":      conflict.Field,
			"constraint": conflict.Constraint,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrComuneroNotFound),
		errors.Is(err, services.ErrFieldNotFound),
		errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrFieldName),
		errors.Is(err, services.ErrFieldType),
		errors.Is(err, services.ErrUserRole):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
