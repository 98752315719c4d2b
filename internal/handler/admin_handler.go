package handler

import (
	"strconv"

	"contenthub/internal/middleware"
	"contenthub/internal/model"
	"contenthub/internal/service"
	"contenthub/pkg/log"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the admin-only user management API.
type AdminHandler struct {
	adminService service.AdminService
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(adminService service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// ListUsers handles GET /admin/users?page=&size=.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	users, err := h.adminService.ListUsers(c.Request.Context(), middleware.CallerFrom(c), page, size)
	if err != nil {
		respondError(c, "ListUsers", err)
		return
	}
	respond(c, "Users retrieved successfully", users)
}

// SetRoleRequest is the body of PUT /admin/users/:userId/role.
type SetRoleRequest struct {
	Role model.Role `json:"role" binding:"required"`
}

// SetRole handles PUT /admin/users/:userId/role.
func (h *AdminHandler) SetRole(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("userId"), 10, 64)
	if err != nil {
		log.Warnf("SetRole: invalid user id %q", c.Param("userId"))
		badRequest(c, "invalid user id")
		return
	}
	var req SetRoleRequest
	if !bindJSON(c, "SetRole", &req) {
		return
	}

	user, err := h.adminService.SetRole(c.Request.Context(), middleware.CallerFrom(c), uint(userID), req.Role)
	if err != nil {
		respondError(c, "SetRole", err)
		return
	}
	log.Infow("user role changed", "userId", user.ID, "role", user.Role)
	respond(c, "Role updated successfully", user)
}
