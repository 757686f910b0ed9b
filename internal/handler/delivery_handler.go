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

type DeliveryHandler struct {
	deliveryService service.DeliveryService
}

func NewDeliveryHandler(deliveryService service.DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{deliveryService: deliveryService}
}

func (h *DeliveryHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/deliveries")
	{
		group.GET("", middleware.RequirePermission(permission.PageDelivery, permission.CapView), h.ListDeliveries)
		group.POST("", middleware.RequirePermission(permission.PageDelivery, permission.CapCreate), h.CreateDelivery)
	}
}

// CreateDelivery handles POST /api/deliveries
// @Summary      Record a fuel delivery
// @Description  Records a tanker drop by BOL number; when a tank is given its volume is increased atomically
// @Tags         deliveries
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateDeliveryRequest  true  "Delivery Payload"
// @Success      201      {object}  response.Response{data=service.DeliveryResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/deliveries [post]
func (h *DeliveryHandler) CreateDelivery(c *gin.Context) {
	var req service.CreateDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	delivery, err := h.deliveryService.CreateDelivery(c.Request.Context(), actorID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, delivery))
}

// ListDeliveries handles GET /api/deliveries
// @Summary      List fuel deliveries
// @Description  Returns deliveries filtered by station, fuel type and date range
// @Tags         deliveries
// @Produce      json
// @Security     BearerAuth
// @Param        station_id  query     string  false  "Filter by station UUID"
// @Param        fuel_type   query     string  false  "Filter by fuel type"
// @Param        from        query     string  false  "Start date (YYYY-MM-DD)"
// @Param        to          query     string  false  "End date (YYYY-MM-DD)"
// @Param        page        query     int     false  "Page number (default 1)"
// @Param        limit       query     int     false  "Number of items per page (default 20)"
// @Success      200         {object}  response.Response{data=object}
// @Failure      500         {object}  response.Response
// @Router       /api/deliveries [get]
func (h *DeliveryHandler) ListDeliveries(c *gin.Context) {
	params := pagination.Parse(c)

	filter := repository.DeliveryFilter{
		StationID: c.Query("station_id"),
		FuelType:  c.Query("fuel_type"),
	}
	if from, err := time.Parse("2006-01-02", c.Query("from")); err == nil {
		filter.From = from
	}
	if to, err := time.Parse("2006-01-02", c.Query("to")); err == nil {
		filter.To = to
	}

	deliveries, total, err := h.deliveryService.ListDeliveries(c.Request.Context(), filter, params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch deliveries"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"deliveries": deliveries,
		"total":      total,
		"page":       params.Page,
		"limit":      params.Limit,
	}))
}
