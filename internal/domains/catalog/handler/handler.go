package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"novelpedia-backend/internal/domains/catalog/model"
	"novelpedia-backend/internal/domains/catalog/service"
	"novelpedia-backend/internal/shared/middleware"
	"novelpedia-backend/internal/shared/response"
)

// CatalogHandler serves /tags and /genres. One instance per kind.
type CatalogHandler struct {
	service service.ServiceInterface
	kind    model.Kind
}

func NewCatalogHandler(s service.ServiceInterface, kind model.Kind) *CatalogHandler {
	return &CatalogHandler{service: s, kind: kind}
}

// List handles GET /tags and GET /genres
func (h *CatalogHandler) List(c *gin.Context) {
	terms, err := h.service.List(c.Request.Context(), h.kind)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, terms)
}

func termID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "Invalid id")
		return 0, false
	}
	return id, true
}

// Get handles GET /tags/:id and GET /genres/:id
func (h *CatalogHandler) Get(c *gin.Context) {
	id, ok := termID(c)
	if !ok {
		return
	}

	term, err := h.service.Get(c.Request.Context(), h.kind, id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, term)
}

// Create handles POST /tags and POST /genres
func (h *CatalogHandler) Create(c *gin.Context) {
	var req model.CreateTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	term, err := h.service.Create(c.Request.Context(), middleware.Actor(c), h.kind, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, term)
}

// Update handles PUT /tags/:id and PUT /genres/:id
func (h *CatalogHandler) Update(c *gin.Context) {
	id, ok := termID(c)
	if !ok {
		return
	}
	var req model.UpdateTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	term, err := h.service.Update(c.Request.Context(), middleware.Actor(c), h.kind, id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, term)
}

// Delete handles DELETE /tags/:id and DELETE /genres/:id
func (h *CatalogHandler) Delete(c *gin.Context) {
	id, ok := termID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), middleware.Actor(c), h.kind, id); err != nil {
		response.FromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
