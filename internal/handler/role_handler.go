package handler

import (
	"net/http"

	"woms/internal/middleware"
	"woms/internal/model"
	"woms/internal/service"
	"woms/pkg/pagination"
	"woms/pkg/response"

	"github.com/gin-gonic/gin"
)

// rolePageSize is the fixed page size of the role request surfaces.
const rolePageSize = 10

type RoleHandler struct {
	roleService service.RoleService
}

// NewRoleHandler sets up the routing dependencies for role administration
func NewRoleHandler(roleService service.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

// RegisterRoutes binds the endpoints to the gin RouterGroup
func (h *RoleHandler) RegisterRoutes(router *gin.RouterGroup) {
	admin := router.Group("/warehouse-admin", middleware.RequireRole(model.RoleWarehouseAdmin))
	{
		admin.GET("/pending-requests", h.ListPending)
		admin.PATCH("/approve-request/:id", h.Approve)
		admin.POST("/reject-request/:user_id", h.Reject)
		admin.GET("/role-history", h.History)
	}
}

// ListPending returns users awaiting role confirmation
// @Summary      List pending role requests
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Page
// @Router       /warehouse-admin/pending-requests [get]
func (h *RoleHandler) ListPending(c *gin.Context) {
	params := pagination.Parse(c, rolePageSize)
	results, total, err := h.roleService.ListPending(c.Request.Context(), c.GetString(middleware.CtxUserID), params.Offset, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(total, params.Limit, results))
}

// Approve confirms a user's requested role
// @Summary      Approve role request
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /warehouse-admin/approve-request/{id} [patch]
func (h *RoleHandler) Approve(c *gin.Context) {
	if err := h.roleService.Approve(c.Request.Context(), c.Param("id"), c.GetString(middleware.CtxUserID)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "role request approved"}))
}

// Reject declines a role request, keeping the account as plain employee
// @Summary      Reject role request
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        user_id  path      string  true  "User ID"
// @Success      200      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /warehouse-admin/reject-request/{user_id} [post]
func (h *RoleHandler) Reject(c *gin.Context) {
	if err := h.roleService.Reject(c.Request.Context(), c.Param("user_id"), c.GetString(middleware.CtxUserID)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "role request rejected"}))
}

// History returns the append-only role decision trail
// @Summary      Role decision history
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        status      query     string  false  "approved or rejected"
// @Param        username    query     string  false  "Matches subject or processing admin"
// @Param        start_date  query     string  false  "YYYY-MM-DD"
// @Param        end_date    query     string  false  "YYYY-MM-DD"
// @Success      200         {object}  response.Page
// @Router       /warehouse-admin/role-history [get]
func (h *RoleHandler) History(c *gin.Context) {
	params := pagination.Parse(c, rolePageSize)
	filter := service.RoleHistoryFilter{
		Status:    c.Query("status"),
		Username:  c.Query("username"),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
		Offset:    params.Offset,
		Limit:     params.Limit,
	}
	results, total, err := h.roleService.History(c.Request.Context(), c.GetString(middleware.CtxUserID), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(total, params.Limit, results))
}
