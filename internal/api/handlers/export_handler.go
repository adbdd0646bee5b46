package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comunavision/backend/internal/api/middleware"
	"github.com/comunavision/backend/internal/services"
)

type ExportHandler struct {
	Service *services.ExportService
}

func NewExportHandler(service *services.ExportService) *ExportHandler {
	return &ExportHandler{Service: service}
}

func (h *ExportHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/exportaciones/comuneros", middleware.RequireRole("admin"), h.Comuneros)
}

// Comuneros streams the registry as a CSV or JSON download. Admin only.
func (h *ExportHandler) Comuneros(c *gin.Context) {
	format := c.DefaultQuery("formato", "csv")
	includeDeleted := c.Query("include_deleted") == "true"

	switch format {
	case "csv":
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", h.Service.Filename("csv")))
		c.Header("Content-Type", "text/csv")
		c.Status(http.StatusOK)
		if err := h.Service.WriteCSV(c.Writer, includeDeleted); err != nil {
			_ = c.Error(err)
		}
	case "json":
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", h.Service.Filename("json")))
		c.Header("Content-Type", "application/json")
		c.Status(http.StatusOK)
		if err := h.Service.WriteJSON(c.Writer, includeDeleted); err != nil {
			_ = c.Error(err)
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "formato debe ser csv o json"})
	}
}
