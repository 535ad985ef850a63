package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"novelpedia-backend/internal/domains/comment/model"
	"novelpedia-backend/internal/domains/comment/service"
	"novelpedia-backend/internal/shared/middleware"
	"novelpedia-backend/internal/shared/response"
)

type CommentHandler struct {
	commentService service.ServiceInterface
}

func NewCommentHandler(commentService service.ServiceInterface) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

func commentID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "Invalid comment ID")
		return 0, false
	}
	return id, true
}

// ListComments - GET /comments?chapter=&paragraph=
func (h *CommentHandler) ListComments(c *gin.Context) {
	var req model.ListCommentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.commentService.ListComments(c.Request.Context(), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// GetComment - GET /comments/:id
func (h *CommentHandler) GetComment(c *gin.Context) {
	id, ok := commentID(c)
	if !ok {
		return
	}

	comment, err := h.commentService.GetComment(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, comment)
}

// GetThread - GET /comments/:id/thread
func (h *CommentHandler) GetThread(c *gin.Context) {
	id, ok := commentID(c)
	if !ok {
		return
	}

	thread, err := h.commentService.Thread(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, thread)
}

// CreateComment - POST /comments
func (h *CommentHandler) CreateComment(c *gin.Context) {
	var req model.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	comment, err := h.commentService.CreateComment(c.Request.Context(), middleware.Actor(c), req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, comment)
}

// UpdateComment - PUT /comments/:id
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	id, ok := commentID(c)
	if !ok {
		return
	}
	var req model.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	comment, err := h.commentService.UpdateComment(c.Request.Context(), middleware.Actor(c), id, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, comment)
}

// DeleteComment - DELETE /comments/:id
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	id, ok := commentID(c)
	if !ok {
		return
	}

	if err := h.commentService.DeleteComment(c.Request.Context(), middleware.Actor(c), id); err != nil {
		response.FromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
