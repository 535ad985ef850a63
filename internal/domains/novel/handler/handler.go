package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"novelpedia-backend/internal/domains/novel/model"
	"novelpedia-backend/internal/domains/novel/service"
	"novelpedia-backend/internal/infrastructure/storage"
	"novelpedia-backend/internal/shared/middleware"
	"novelpedia-backend/internal/shared/response"
)

const coverFormField = "cover_image"

// Handler serves novels, bookmarks and the featured list.
type Handler struct {
	service service.ServiceInterface
}

func NewHandler(s service.ServiceInterface) *Handler {
	return &Handler{service: s}
}

// =====================================================
// PUBLIC READS
// =====================================================

// ListNovels - GET /novels
// Query params: search, status, author, genre, tag, ordering, limit, offset
func (h *Handler) ListNovels(c *gin.Context) {
	var filter model.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	novels, total, err := h.service.ListNovels(c.Request.Context(), filter)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, novels, pageMeta(filter, total))
}

// GetNovel - GET /novels/:slug
func (h *Handler) GetNovel(c *gin.Context) {
	n, err := h.service.GetNovel(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, n)
}

// Trending - GET /novels/trending
func (h *Handler) Trending(c *gin.Context) {
	novels, err := h.service.Trending(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, novels)
}

// Latest - GET /novels/latest
func (h *Handler) Latest(c *gin.Context) {
	novels, err := h.service.Latest(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, novels)
}

// AuthorNovels - GET /authors/:name/novels
func (h *Handler) AuthorNovels(c *gin.Context) {
	var filter model.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	novels, total, err := h.service.AuthorNovels(c.Request.Context(), c.Param("name"), filter)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, novels, pageMeta(filter, total))
}

// IncrementViews - POST /novels/:slug/view
func (h *Handler) IncrementViews(c *gin.Context) {
	views, err := h.service.IncrementViews(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"views": views})
}

// =====================================================
// AUTHOR WRITES
// =====================================================

// CreateNovel - POST /novels
func (h *Handler) CreateNovel(c *gin.Context) {
	var req model.CreateNovelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	n, err := h.service.CreateNovel(c.Request.Context(), middleware.Actor(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.Header("Location", "/api/v1/novels/"+n.Slug)
	response.Success(c, http.StatusCreated, n)
}

// UpdateNovel - PUT /novels/:slug
func (h *Handler) UpdateNovel(c *gin.Context) {
	var req model.UpdateNovelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	n, err := h.service.UpdateNovel(c.Request.Context(), middleware.Actor(c), c.Param("slug"), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, n)
}

// DeleteNovel - DELETE /novels/:slug
func (h *Handler) DeleteNovel(c *gin.Context) {
	if err := h.service.DeleteNovel(c.Request.Context(), middleware.Actor(c), c.Param("slug")); err != nil {
		response.FromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MyNovels - GET /me/novels
func (h *Handler) MyNovels(c *gin.Context) {
	var filter model.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	novels, total, err := h.service.MyNovels(c.Request.Context(), middleware.Actor(c), filter)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, novels, pageMeta(filter, total))
}

// UploadCover - POST /novels/:slug/cover (multipart, field cover_image)
func (h *Handler) UploadCover(c *gin.Context) {
	file, err := c.FormFile(coverFormField)
	if err != nil {
		response.BadRequest(c, "cover_image file is required")
		return
	}
	if file.Size > storage.DefaultMaxImageSize {
		response.BadRequest(c, storage.ErrTooLarge.Error())
		return
	}

	f, err := file.Open()
	if err != nil {
		response.BadRequest(c, "Cannot read uploaded file")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, storage.DefaultMaxImageSize+1))
	if err != nil {
		response.BadRequest(c, "Cannot read uploaded file")
		return
	}

	n, err := h.service.UploadCover(c.Request.Context(), middleware.Actor(c), c.Param("slug"), data)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, n)
}

// =====================================================
// BOOKMARKS
// =====================================================

// ListBookmarks - GET /me/bookmarks
func (h *Handler) ListBookmarks(c *gin.Context) {
	bookmarks, err := h.service.ListBookmarks(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, bookmarks)
}

// AddBookmark - POST /novels/:slug/bookmark
func (h *Handler) AddBookmark(c *gin.Context) {
	b, err := h.service.AddBookmark(c.Request.Context(), middleware.Actor(c), c.Param("slug"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, b)
}

// RemoveBookmark - DELETE /novels/:slug/bookmark
func (h *Handler) RemoveBookmark(c *gin.Context) {
	if err := h.service.RemoveBookmark(c.Request.Context(), middleware.Actor(c), c.Param("slug")); err != nil {
		response.FromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// =====================================================
// FEATURED
// =====================================================

// ListFeatured - GET /novels/featured
func (h *Handler) ListFeatured(c *gin.Context) {
	featured, err := h.service.ListFeatured(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, featured)
}

// FeatureNovel - POST /featured (staff)
func (h *Handler) FeatureNovel(c *gin.Context) {
	var req model.FeatureNovelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	f, err := h.service.FeatureNovel(c.Request.Context(), middleware.Actor(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, f)
}

// UnfeatureNovel - DELETE /featured/:id (staff)
func (h *Handler) UnfeatureNovel(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "Invalid featured ID")
		return
	}

	if err := h.service.UnfeatureNovel(c.Request.Context(), middleware.Actor(c), id); err != nil {
		response.FromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func pageMeta(f model.ListFilter, total int) *response.Meta {
	f.Normalize()
	return &response.Meta{
		Page:  f.Offset/f.Limit + 1,
		Limit: f.Limit,
		Total: total,
	}
}
