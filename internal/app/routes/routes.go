// Package routes wires URL paths to controllers.
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/admitflow/admitflow/internal/app/controllers"
	"github.com/admitflow/admitflow/internal/app/models"
	"github.com/admitflow/admitflow/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	applicationController *controllers.ApplicationController,
	adminController *controllers.AdminController,
	programController *controllers.ProgramController,
	userController *controllers.UserController,
	authMiddleware *middleware.AuthMiddleware,
) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	{
		auth.POST("/login", authController.Login)
		auth.POST("/refresh", authController.Refresh)
	}

	// Everything else requires a valid token
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.GET("/users/me", userController.Me)

		programs := authenticated.Group("/programs")
		{
			programs.GET("", programController.List)
			programs.GET("/:id", programController.Get)
		}

		applications := authenticated.Group("/applications")
		{
			applications.GET("", applicationController.List)
			applications.POST("", applicationController.Create)
			applications.GET("/:id", applicationController.Get)
			applications.PATCH("/:id/status", applicationController.UpdateStatus)
			applications.GET("/:id/history", applicationController.GetHistory)
			applications.POST("/:id/documents", applicationController.UploadDocument)
			applications.GET("/:id/documents/bulk", applicationController.ExportDocuments)
			applications.GET("/:id/documents/:documentId", applicationController.DownloadDocument)

			// Review-side operations
			reviewers := applications.Group("")
			reviewers.Use(middleware.RoleRequired(models.RoleSubAdmin, models.RoleAdmin, models.RoleSuperAdmin))
			{
				reviewers.PATCH("/:id/notes", applicationController.UpdateNotes)
				reviewers.DELETE("/:id/documents/:documentId", applicationController.DeleteDocument)
			}

			// Archive and restore allow owning agents; the service
			// enforces ownership
			applications.PATCH("/:id/archive", applicationController.Archive)
			applications.PATCH("/:id/restore", applicationController.Restore)

			// Hard delete, full admins only
			admins := applications.Group("")
			admins.Use(middleware.RoleRequired(models.RoleAdmin, models.RoleSuperAdmin))
			{
				admins.DELETE("/:id", applicationController.Delete)
			}
		}

		admin := authenticated.Group("/admin")
		{
			subAdmins := admin.Group("/sub-admins")
			subAdmins.Use(middleware.RoleRequired(models.RoleAdmin, models.RoleSuperAdmin))
			{
				subAdmins.POST("", adminController.CreateSubAdmin)
				subAdmins.GET("", adminController.ListSubAdmins)
			}

			users := admin.Group("/users")
			users.Use(middleware.RoleRequired(models.RoleSubAdmin, models.RoleAdmin, models.RoleSuperAdmin))
			{
				users.PATCH("/:id/active", adminController.SetUserActive)
			}
		}
	}
}
