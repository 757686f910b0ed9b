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

type TankHandler struct {
	tankService service.TankService
}

func NewTankHandler(tankService service.TankService) *TankHandler {
	return &TankHandler{tankService: tankService}
}

func (h *TankHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/tanks")
	{
		group.GET("", middleware.RequirePermission(permission.PageInventory, permission.CapView), h.ListTanks)
		group.POST("", middleware.RequirePermission(permission.PageInventory, permission.CapCreate), h.CreateTank)
		group.GET("/:id/readings", middleware.RequirePermission(permission.PageInventory, permission.CapView), h.ListReadings)
		group.POST("/:id/readings", middleware.RequirePermission(permission.PageInventory, permission.CapEdit), h.RecordReading)
	}
}

// ListTanks handles GET /api/tanks
// @Summary      List tanks
// @Description  Returns tanks with fill percentages, optionally filtered by station
// @Tags         tanks
// @Produce      json
// @Security     BearerAuth
// @Param        station_id  query     string  false  "Filter by station UUID"
// @Success      200         {object}  response.Response{data=[]service.TankResponse}
// @Failure      500         {object}  response.Response
// @Router       /api/tanks [get]
func (h *TankHandler) ListTanks(c *gin.Context) {
	tanks, err := h.tankService.ListTanks(c.Request.Context(), c.Query("station_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch tanks"))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, tanks))
}

// CreateTank handles POST /api/tanks
// @Summary      Create a tank
// @Description  Registers a new fuel tank at a station
// @Tags         tanks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateTankRequest  true  "Create Tank Payload"
// @Success      201      {object}  response.Response{data=service.TankResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/tanks [post]
func (h *TankHandler) CreateTank(c *gin.Context) {
	var req service.CreateTankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	tank, err := h.tankService.CreateTank(c.Request.Context(), actorID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, tank))
}

// RecordReading handles POST /api/tanks/:id/readings
// @Summary      Record a tank reading
// @Description  Records a stick/ATG reading, updates the tank volume and raises a low-level alert when under threshold
// @Tags         tanks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "Tank ID"
// @Param        payload  body      service.RecordReadingRequest  true  "Reading Payload"
// @Success      200      {object}  response.Response{data=service.TankResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/tanks/{id}/readings [post]
func (h *TankHandler) RecordReading(c *gin.Context) {
	var req service.RecordReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	tank, err := h.tankService.RecordReading(c.Request.Context(), actorID(c), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, tank))
}

// ListReadings handles GET /api/tanks/:id/readings
// @Summary      List tank readings
// @Description  Returns the reading history for one tank, newest first
// @Tags         tanks
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true   "Tank ID"
// @Param        page   query     int     false  "Page number (default 1)"
// @Param        limit  query     int     false  "Number of items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Failure      500    {object}  response.Response
// @Router       /api/tanks/{id}/readings [get]
func (h *TankHandler) ListReadings(c *gin.Context) {
	params := pagination.Parse(c)

	readings, total, err := h.tankService.ListReadings(c.Request.Context(), c.Param("id"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch readings"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"readings": readings,
		"total":    total,
		"page":     params.Page,
		"limit":    params.Limit,
	}))
}
