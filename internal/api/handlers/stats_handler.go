package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/comunavision/backend/internal/services"
)

type StatsHandler struct {
	Stats  *services.StatsService
	Fields *services.FieldService
}

func NewStatsHandler(stats *services.StatsService, fields *services.FieldService) *StatsHandler {
	return &StatsHandler{Stats: stats, Fields: fields}
}

func (h *StatsHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/estadisticas", h.Dashboard)
}

// Dashboard returns registry totals, the daily creation series and a top-5
// breakdown of one dynamic field. The field name is resolved against the
// schema before being used in a query path.
func (h *StatsHandler) Dashboard(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))
	campoTop := c.DefaultQuery("campo_top", "zona")

	if campoTop != "" {
		if _, err := h.Fields.GetByName(campoTop); err != nil {
			// Unknown field: keep the dashboard useful, just skip the top-5.
			campoTop = ""
		}
	}

	stats, err := h.Stats.Dashboard(campoTop, days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
