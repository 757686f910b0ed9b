package handler

import (
	"errors"
	"net/http"

	"stationops/internal/middleware"
	"stationops/internal/permission"
	"stationops/internal/service"
	"stationops/pkg/response"

	"github.com/gin-gonic/gin"
)

type PermissionHandler struct {
	permissionService service.PermissionService
}

func NewPermissionHandler(permissionService service.PermissionService) *PermissionHandler {
	return &PermissionHandler{permissionService: permissionService}
}

func (h *PermissionHandler) RegisterRoutes(router *gin.RouterGroup) {
	// The page catalog and role templates are static reference data needed by
	// any client that renders permission-aware navigation.
	meta := router.Group("/api/permissions")
	meta.Use(middleware.RequireAuth())
	{
		meta.GET("/pages", h.GetPages)
		meta.GET("/templates/:role", h.GetTemplate)
	}

	// Editing another user's matrix requires the user_management page.
	users := router.Group("/api/users/:id/permissions")
	{
		users.GET("", middleware.RequirePermission(permission.PageUserManagement, permission.CapView), h.GetPermissions)
		users.PUT("", middleware.RequirePermission(permission.PageUserManagement, permission.CapEdit), h.SavePermissions)
		users.PATCH("", middleware.RequirePermission(permission.PageUserManagement, permission.CapEdit), h.ApplyEdit)
		users.POST("/reset", middleware.RequirePermission(permission.PageUserManagement, permission.CapEdit), h.ResetPermissions)
	}
}

// writePermissionError maps a lost save race to 409 so the editor reloads.
func writePermissionError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrPermissionVersionConflict) {
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
		return
	}
	c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
}

// GetPages returns the page catalog and bulk groups
// @Summary      Permission page catalog
// @Description  Returns the canonical pages, capabilities, bulk groups and known roles
// @Tags         permissions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/permissions/pages [get]
func (h *PermissionHandler) GetPages(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"pages":        permission.Pages,
		"capabilities": permission.AllCapabilities,
		"groups":       permission.PageGroups,
		"roles":        permission.Roles,
	}))
}

// GetTemplate returns the default permission record for a role
// @Summary      Role template
// @Description  Returns the default permission record for a role; unknown roles get the minimal fallback
// @Tags         permissions
// @Produce      json
// @Security     BearerAuth
// @Param        role  path      string  true  "Role name"
// @Success      200   {object}  response.Response{data=object}
// @Router       /api/permissions/templates/{role} [get]
func (h *PermissionHandler) GetTemplate(c *gin.Context) {
	role := c.Param("role")
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"role":   role,
		"known":  permission.IsKnownRole(role),
		"record": permission.ResolveTemplate(role),
	}))
}

// GetPermissions loads a user's effective permission record
// @Summary      Load user permissions
// @Description  Returns the user's permission record, its source (stored or role default), template marker and version
// @Tags         permissions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response{data=service.PermissionLoad}
// @Failure      404  {object}  response.Response
// @Router       /api/users/{id}/permissions [get]
func (h *PermissionHandler) GetPermissions(c *gin.Context) {
	load, err := h.permissionService.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, load))
}

// SavePermissions replaces a user's full permission record
// @Summary      Save user permissions
// @Description  Persists a full permission record; rejected with 409 when another editor saved first
// @Tags         permissions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                          true  "User ID"
// @Param        payload  body      service.SavePermissionsRequest  true  "Record and the version it was loaded at"
// @Success      200      {object}  response.Response{data=service.PermissionLoad}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/users/{id}/permissions [put]
func (h *PermissionHandler) SavePermissions(c *gin.Context) {
	id := c.Param("id")
	var req service.SavePermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	load, err := h.permissionService.Save(c.Request.Context(), actorID(c), id, req.Record, req.Version)
	if err != nil {
		writePermissionError(c, err)
		return
	}

	middleware.ClearPermissionCache(id)

	c.JSON(http.StatusOK, response.Success(http.StatusOK, load))
}

// ApplyEdit applies one editor operation to a user's record
// @Summary      Apply a permission edit
// @Description  Applies a single set/bulk_page/bulk_group operation server-side and saves the result
// @Tags         permissions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                         true  "User ID"
// @Param        payload  body      service.PermissionEditRequest  true  "Edit operation"
// @Success      200      {object}  response.Response{data=service.PermissionLoad}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/users/{id}/permissions [patch]
func (h *PermissionHandler) ApplyEdit(c *gin.Context) {
	id := c.Param("id")
	var req service.PermissionEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	load, err := h.permissionService.ApplyEdit(c.Request.Context(), actorID(c), id, req)
	if err != nil {
		writePermissionError(c, err)
		return
	}

	middleware.ClearPermissionCache(id)

	c.JSON(http.StatusOK, response.Success(http.StatusOK, load))
}

// ResetPermissions restores a user's record to their role template
// @Summary      Reset user permissions
// @Description  Discards the stored record and persists the user's current role template
// @Tags         permissions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response{data=service.PermissionLoad}
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/users/{id}/permissions/reset [post]
func (h *PermissionHandler) ResetPermissions(c *gin.Context) {
	id := c.Param("id")

	load, err := h.permissionService.ResetToTemplate(c.Request.Context(), actorID(c), id)
	if err != nil {
		writePermissionError(c, err)
		return
	}

	middleware.ClearPermissionCache(id)

	c.JSON(http.StatusOK, response.Success(http.StatusOK, load))
}
