package handler

import (
	"net/http"

	"stationops/internal/middleware"
	"stationops/internal/permission"
	"stationops/internal/service"
	"stationops/pkg/response"

	"github.com/gin-gonic/gin"
)

type StationHandler struct {
	stationService service.StationService
}

func NewStationHandler(stationService service.StationService) *StationHandler {
	return &StationHandler{stationService: stationService}
}

func (h *StationHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/stations")
	{
		group.GET("", middleware.RequireAuth(), h.ListStations)
		group.POST("", middleware.RequirePermission(permission.PageSettings, permission.CapCreate), h.CreateStation)
		group.PUT("/:id", middleware.RequirePermission(permission.PageSettings, permission.CapEdit), h.UpdateStation)
	}
}

// ListStations handles GET /api/stations
// @Summary      List stations
// @Description  Returns every station; any authenticated user can read the list for dropdowns
// @Tags         stations
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.StationResponse}
// @Failure      500  {object}  response.Response
// @Router       /api/stations [get]
func (h *StationHandler) ListStations(c *gin.Context) {
	stations, err := h.stationService.ListStations(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to fetch stations"))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, stations))
}

// CreateStation handles POST /api/stations
// @Summary      Create a station
// @Description  Registers a new station with a unique code
// @Tags         stations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateStationRequest  true  "Create Station Payload"
// @Success      201      {object}  response.Response{data=service.StationResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/stations [post]
func (h *StationHandler) CreateStation(c *gin.Context) {
	var req service.CreateStationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	station, err := h.stationService.CreateStation(c.Request.Context(), actorID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, station))
}

// UpdateStation handles PUT /api/stations/:id
// @Summary      Update a station
// @Description  Updates a station's name, address or active flag
// @Tags         stations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                        true  "Station ID"
// @Param        payload  body      service.UpdateStationRequest  true  "Update Station Payload"
// @Success      200      {object}  response.Response{data=service.StationResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/stations/{id} [put]
func (h *StationHandler) UpdateStation(c *gin.Context) {
	var req service.UpdateStationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	station, err := h.stationService.UpdateStation(c.Request.Context(), actorID(c), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, station))
}
