package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comunavision/backend/internal/api/middleware"
	"github.com/comunavision/backend/internal/services"
)

type FieldHandler struct {
	Service *services.FieldService
}

func NewFieldHandler(service *services.FieldService) *FieldHandler {
	return &FieldHandler{Service: service}
}

func (h *FieldHandler) RegisterRoutes(r *gin.RouterGroup) {
	// Both roles read the schema; only admins mutate it.
	r.GET("/campos", h.List)
	r.POST("/campos", middleware.RequireRole("admin"), h.Create)
	r.PUT("/campos/:id", middleware.RequireRole("admin"), h.Update)
	r.DELETE("/campos/:id", middleware.RequireRole("admin"), h.Delete)
}

// List returns every field definition, active or not, in schema order.
func (h *FieldHandler) List(c *gin.Context) {
	fields, err := h.Service.List()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fields)
}

// Create adds a field definition.
func (h *FieldHandler) Create(c *gin.Context) {
	var input services.FieldInput
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

// Update applies a partial patch to a field definition.
func (h *FieldHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var patch services.FieldPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := middleware.CurrentUser(c)
	updated, err := h.Service.Update(actor, id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete deactivates a field definition; the row is kept.
func (h *FieldHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	actor := middleware.CurrentUser(c)
	if err := h.Service.Deactivate(actor, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
