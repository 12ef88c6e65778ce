package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/admitflow/admitflow/internal/app/models/dto"
	"github.com/admitflow/admitflow/internal/app/services"
	"github.com/admitflow/admitflow/internal/middleware"
)

// AdminController handles staff account management endpoints
type AdminController struct {
	users services.UserService
}

// NewAdminController creates a new AdminController
func NewAdminController(users services.UserService) *AdminController {
	return &AdminController{users: users}
}

// CreateSubAdmin handles provisioning a sub-admin account
// @Summary Create sub-admin
// @Description Provisions a capability-restricted reviewer account. Admin only.
// @Tags admin
// @Accept json
// @Produce json
// @Param request body dto.CreateSubAdminRequest true "Sub-admin account data"
// @Success 201 {object} dto.APIResponse{data=dto.UserResponse}
// @Failure 403 {object} dto.ErrorResponse "Only administrators may create sub-admins"
// @Failure 409 {object} dto.ErrorResponse "Email already exists"
// @Security Bearer
// @Router /admin/sub-admins [post]
func (c *AdminController) CreateSubAdmin(ctx *gin.Context) {
	actor, err := middleware.CurrentActor(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.CreateSubAdminRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	user, err := c.users.CreateSubAdmin(ctx, actor, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.ToUserResponse(user)))
}

// ListSubAdmins handles listing sub-admin accounts
// @Summary List sub-admins
// @Description Returns all sub-admin accounts. Admin only.
// @Tags admin
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.UserResponse}
// @Failure 403 {object} dto.ErrorResponse "Only administrators may list sub-admins"
// @Security Bearer
// @Router /admin/sub-admins [get]
func (c *AdminController) ListSubAdmins(ctx *gin.Context) {
	actor, err := middleware.CurrentActor(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	users, err := c.users.ListSubAdmins(ctx, actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, dto.ToUserResponse(&users[i]))
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(responses))
}

// SetUserActive handles enabling or disabling an account
// @Summary Enable or disable a user
// @Description Changes a user's active state, subject to the caller's authority over the target's role
// @Tags admin
// @Produce json
// @Param id path int true "User ID"
// @Param active query bool true "New active state"
// @Success 204 "Updated"
// @Failure 403 {object} dto.ErrorResponse "No authority over the target role"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Security Bearer
// @Router /admin/users/{id}/active [patch]
func (c *AdminController) SetUserActive(ctx *gin.Context) {
	actor, err := middleware.CurrentActor(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	active := ctx.Query("active") == "true"
	if ctx.Query("active") == "" {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "active query parameter is required").WithField("active")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}

	if err := c.users.SetUserActive(ctx, actor, id, active); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
