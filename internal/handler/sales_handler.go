package handler

import (
	"net/http"
	"time"

	"stationops/internal/middleware"
	"stationops/internal/permission"
	"stationops/internal/repository"
	"stationops/internal/service"
	"stationops/pkg/pagination"
	"stationops/pkg/response"

	"github.com/gin-gonic/gin"
)

type SalesHandler struct {
	salesService service.SalesService
}

func NewSalesHandler(salesService service.SalesService) *SalesHandler {
	return &SalesHandler{salesService: salesService}
}

func (h *SalesHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/sales-reports")
	{
		group.GET("", middleware.RequirePermission(permission.PageSalesReports, permission.CapView), h.ListReports)
		group.POST("", middleware.RequirePermission(permission.PageSalesReports, permission.CapCreate), h.CreateReport)
		group.GET("/summary", middleware.RequirePermission(permission.PageSalesReports, permission.CapExport), h.Summary)
	}
}

// CreateReport handles POST /api/sales-reports
// @Summary      Submit a daily sales report
// @Description  Records one station's sales for a day; one report per station per day
// @Tags         sales
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateSalesReportRequest  true  "Sales Report Payload"
// @Success      201      {object}  response.Response{data=service.SalesReportResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/sales-reports [post]
func (h *SalesHandler) CreateReport(c *gin.Context) {
	var req service.CreateSalesReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	report, err := h.salesService.CreateReport(c.Request.Context(), actorID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, report))
}

// ListReports handles GET /api/sales-reports
// @Summary      List sales reports
// @Description  Returns daily reports filtered by station and date range, newest first
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        station_id  query     string  false  "Filter by station UUID"
// @Param        from        query     string  false  "Start date (YYYY-MM-DD)"
// @Param        to          query     string  false  "End date (YYYY-MM-DD)"
// @Param        page        query     int     false  "Page number (default 1)"
// @Param        limit       query     int     false  "Number of items per page (default 20)"
// @Success      200         {object}  response.Response{data=object}
// @Failure      500         {object}  response.Response
// @Router       /api/sales-reports [get]
func (h *SalesHandler) ListReports(c *gin.Context) {
	params := pagination.Parse(c)

	filter := repository.SalesFilter{StationID: c.Query("station_id")}
	if from, err := time.Parse("2006-01-02", c.Query("from")); err == nil {
		filter.From = from
	}
	if to, err := time.Parse("2006-01-02", c.Query("to")); err == nil {
		filter.To = to
	}

	reports, total, err := h.salesService.ListReports(c.Request.Context(), filter, params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch sales reports"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"reports": reports,
		"total":   total,
		"page":    params.Page,
		"limit":   params.Limit,
	}))
}

// Summary handles GET /api/sales-reports/summary
// @Summary      Sales summary
// @Description  Aggregates sales per station over a date range; defaults to the last 30 days
// @Tags         sales
// @Produce      json
// @Security     BearerAuth
// @Param        from  query     string  false  "Start date (YYYY-MM-DD)"
// @Param        to    query     string  false  "End date (YYYY-MM-DD)"
// @Success      200   {object}  response.Response{data=service.SalesSummaryResponse}
// @Failure      500   {object}  response.Response
// @Router       /api/sales-reports/summary [get]
func (h *SalesHandler) Summary(c *gin.Context) {
	to := time.Now()
	from := to.AddDate(0, 0, -30)

	if parsed, err := time.Parse("2006-01-02", c.Query("from")); err == nil {
		from = parsed
	}
	if parsed, err := time.Parse("2006-01-02", c.Query("to")); err == nil {
		to = parsed
	}

	summary, err := h.salesService.Summary(c.Request.Context(), from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to aggregate sales"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}
