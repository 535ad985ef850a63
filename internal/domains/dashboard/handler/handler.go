package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"novelpedia-backend/internal/domains/dashboard/service"
	"novelpedia-backend/internal/shared/middleware"
	"novelpedia-backend/internal/shared/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type DashboardHandler struct {
	service service.ServiceInterface
}

func NewDashboardHandler(s service.ServiceInterface) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// GetStats - GET /dashboard/stats
func (h *DashboardHandler) GetStats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

// ExportStats - GET /dashboard/stats/export
func (h *DashboardHandler) ExportStats(c *gin.Context) {
	data, err := h.service.ExportStats(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		response.FromError(c, err)
		return
	}

	filename := fmt.Sprintf("dashboard-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
