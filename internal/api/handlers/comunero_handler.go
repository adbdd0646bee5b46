package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/comunavision/backend/internal/api/middleware"
	"github.com/comunavision/backend/internal/services"
)

type ComuneroHandler struct {
	Service *services.ComuneroService
}

func NewComuneroHandler(service *services.ComuneroService) *ComuneroHandler {
	return &ComuneroHandler{Service: service}
}

func (h *ComuneroHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/comuneros", h.List)
	r.POST("/comuneros", h.Create)
	r.GET("/comuneros/:id", h.Get)
	r.PUT("/comuneros/:id", h.Update)
	r.DELETE("/comuneros/:id", middleware.RequireRole("admin"), h.Delete)
}

// List returns non-deleted comuneros. filtros_and / filtros_or arrive as
// JSON-encoded query params, e.g. {"zona":"A"}.
func (h *ComuneroHandler) List(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	filter := services.ComuneroFilter{Skip: skip, Limit: limit}

	if raw := c.Query("filtros_and"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &filter.FiltrosAnd); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "filtros_and debe ser JSON válido"})
			return
		}
	}
	if raw := c.Query("filtros_or"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &filter.FiltrosOr); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "filtros_or debe ser JSON válido"})
			return
		}
	}

	comuneros, err := h.Service.List(filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comuneros)
}

// Get returns one comunero.
func (h *ComuneroHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	comunero, err := h.Service.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comunero)
}

// Create registers a comunero. Admin and operator may create.
func (h *ComuneroHandler) Create(c *gin.Context) {
	var input services.ComuneroInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := middleware.CurrentUser(c)
	created, err := h.Service.Create(actor, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// updateRequest allows callers to omit fields; the handler merges them with
// the stored record before the service revalidates the complete payload.
type updateRequest struct {
	Name     *string         `json:"nombre"`
	Document *string         `json:"documento"`
	Datos    *map[string]any `json:"datos_dinamicos"`
}

// Update replaces a comunero with the merged full state.
func (h *ComuneroHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	current, err := h.Service.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}

	input := services.ComuneroInput{
		Name:     current.Name,
		Document: current.Document,
		Datos:    current.Datos,
	}
	if req.Name != nil {
		input.Name = *req.Name
	}
	if req.Document != nil {
		input.Document = *req.Document
	}
	if req.Datos != nil {
		input.Datos = *req.Datos
	}

	actor := middleware.CurrentUser(c)
	updated, err := h.Service.Update(actor, id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete soft-deletes a comunero. Admin only.
func (h *ComuneroHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	actor := middleware.CurrentUser(c)
	if err := h.Service.SoftDelete(actor, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id inválido"})
		return 0, false
	}
	return uint(id), true
}
