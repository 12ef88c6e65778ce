package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/admitflow/admitflow/internal/app/models/dto"
	"github.com/admitflow/admitflow/internal/app/services"
	"github.com/admitflow/admitflow/internal/middleware"
)

// UserController handles the caller's own account endpoints
type UserController struct {
	users services.UserService
}

// NewUserController creates a new UserController
func NewUserController(users services.UserService) *UserController {
	return &UserController{users: users}
}

// Me handles returning the caller's own account
// @Summary Get own profile
// @Description Returns the authenticated caller's account
// @Tags users
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.UserResponse}
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Security Bearer
// @Router /users/me [get]
func (c *UserController) Me(ctx *gin.Context) {
	actor, err := middleware.CurrentActor(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	user, err := c.users.GetProfile(ctx, actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ToUserResponse(user)))
}
