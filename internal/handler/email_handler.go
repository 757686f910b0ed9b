package handler

import (
	"net/http"

	"stationops/internal/middleware"
	"stationops/internal/permission"
	"stationops/internal/service"
	"stationops/pkg/pagination"
	"stationops/pkg/response"

	"github.com/gin-gonic/gin"
)

type EmailHandler struct {
	emailService service.EmailService
}

func NewEmailHandler(emailService service.EmailService) *EmailHandler {
	return &EmailHandler{emailService: emailService}
}

func (h *EmailHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/email-logs")
	{
		group.GET("", middleware.RequirePermission(permission.PageEmailAutomation, permission.CapView), h.ListEmailLogs)
	}
}

// ListEmailLogs handles GET /api/email-logs
// @Summary      List email automation events
// @Description  Returns the outbound automation feed (alerts, confirmations), newest first
// @Tags         email
// @Produce      json
// @Security     BearerAuth
// @Param        category  query     string  false  "Filter by category"
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        limit     query     int     false  "Number of items per page (default 20)"
// @Success      200       {object}  response.Response{data=object}
// @Failure      500       {object}  response.Response
// @Router       /api/email-logs [get]
func (h *EmailHandler) ListEmailLogs(c *gin.Context) {
	params := pagination.Parse(c)

	logs, total, err := h.emailService.List(c.Request.Context(), c.Query("category"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch email logs"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"logs":  logs,
		"total": total,
		"page":  params.Page,
		"limit": params.Limit,
	}))
}
