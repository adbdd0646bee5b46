package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/comunavision/backend/internal/api/middleware"
	"github.com/comunavision/backend/internal/audit"
	"github.com/comunavision/backend/internal/models"
)

type LogsHandler struct {
	Service *audit.Service
}

func NewLogsHandler(service *audit.Service) *LogsHandler {
	return &LogsHandler{Service: service}
}

func (h *LogsHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/logs", middleware.RequireRole("admin"), h.List)
}

// List returns audit records newest first, filtered by actor, entity, action
// and entity id.
func (h *LogsHandler) List(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	filter := audit.ListFilter{
		Skip:   skip,
		Limit:  limit,
		Entity: c.Query("entidad"),
		Action: models.AuditAction(c.Query("accion")),
	}

	if raw := c.Query("usuario_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "usuario_id inválido"})
			return
		}
		uid := uint(id)
		filter.UserID = &uid
	}
	if raw := c.Query("entidad_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "entidad_id inválido"})
			return
		}
		eid := uint(id)
		filter.EntityID = &eid
	}

	logs, err := h.Service.List(filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}
