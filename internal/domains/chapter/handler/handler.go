package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"novelpedia-backend/internal/domains/chapter/model"
	"novelpedia-backend/internal/domains/chapter/service"
	"novelpedia-backend/internal/shared/middleware"
	"novelpedia-backend/internal/shared/response"
)

// Handler serves chapters and their paragraphs.
type Handler struct {
	service service.ServiceInterface
}

func NewHandler(s service.ServiceInterface) *Handler {
	return &Handler{service: s}
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "Invalid id")
		return 0, false
	}
	return id, true
}

// =====================================================
// CHAPTERS
// =====================================================

// ListChapters - GET /novels/:slug/chapters?search=
func (h *Handler) ListChapters(c *gin.Context) {
	var filter model.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	chapters, err := h.service.ListChapters(c.Request.Context(), middleware.Actor(c), c.Param("slug"), filter)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, chapters)
}

// CreateChapter - POST /novels/:slug/chapters
func (h *Handler) CreateChapter(c *gin.Context) {
	var req model.CreateChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	ch, err := h.service.CreateChapter(c.Request.Context(), middleware.Actor(c), c.Param("slug"), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.Header("Location", "/api/v1/chapters/"+strconv.FormatInt(ch.ID, 10))
	response.Success(c, http.StatusCreated, ch)
}

// ReorderChapters - PUT /novels/:slug/chapters/order
func (h *Handler) ReorderChapters(c *gin.Context) {
	var req model.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "chapter_ids is required")
		return
	}

	chapters, err := h.service.ReorderChapters(c.Request.Context(), middleware.Actor(c), c.Param("slug"), req.ChapterIDs)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, chapters)
}

// GetChapter - GET /chapters/:id
func (h *Handler) GetChapter(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	ch, err := h.service.GetChapter(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, ch)
}

// UpdateChapter - PUT /chapters/:id
func (h *Handler) UpdateChapter(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req model.UpdateChapterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	ch, err := h.service.UpdateChapter(c.Request.Context(), middleware.Actor(c), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, ch)
}

// DeleteChapter - DELETE /chapters/:id
func (h *Handler) DeleteChapter(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.service.DeleteChapter(c.Request.Context(), middleware.Actor(c), id); err != nil {
		response.FromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ChapterStats - GET /chapters/:id/stats
func (h *Handler) ChapterStats(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	stats, err := h.service.ChapterStats(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

// Autosave - POST /chapters/:id/autosave
func (h *Handler) Autosave(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req model.AutosaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	res, err := h.service.Autosave(c.Request.Context(), middleware.Actor(c), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// =====================================================
// PARAGRAPHS
// =====================================================

// ListParagraphs - GET /chapters/:id/paragraphs
func (h *Handler) ListParagraphs(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	paragraphs, err := h.service.ListParagraphs(c.Request.Context(), middleware.Actor(c), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, paragraphs)
}

// CreateParagraph - POST /chapters/:id/paragraphs
func (h *Handler) CreateParagraph(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req model.CreateParagraphRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	p, err := h.service.CreateParagraph(c.Request.Context(), middleware.Actor(c), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, p)
}

// UpdateParagraph - PUT /paragraphs/:id
func (h *Handler) UpdateParagraph(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req model.UpdateParagraphRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	p, err := h.service.UpdateParagraph(c.Request.Context(), middleware.Actor(c), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

// DeleteParagraph - DELETE /paragraphs/:id
func (h *Handler) DeleteParagraph(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.service.DeleteParagraph(c.Request.Context(), middleware.Actor(c), id); err != nil {
		response.FromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
