package notification

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kalavedi/controller"
	"kalavedi/dto"
	"kalavedi/middleware"
	"kalavedi/services"
)

type Deps struct {
	Notifications *services.NotificationService
	Tokens        middleware.TokenParser
	Logger        *zap.Logger
}

func NotificationController(router *gin.Engine, deps Deps) {
	router.GET("/api/notification", func(c *gin.Context) {
		GetNotification(c, deps)
	})
	router.PUT("/api/admin/notification",
		middleware.AccessTokenMiddleware(deps.Tokens),
		middleware.RoleMiddleware(services.RoleAdmin),
		func(c *gin.Context) {
			UpdateNotification(c, deps)
		})
}

func GetNotification(c *gin.Context, deps Deps) {
	n, err := deps.Notifications.Get(c.Request.Context())
	if err != nil {
		controller.WriteError(c, deps.Logger, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func UpdateNotification(c *gin.Context, deps Deps) {
	var req dto.NotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Alert message is required"})
		return
	}
	n, err := deps.Notifications.Update(c.Request.Context(), req.Title, req.Alert)
	if err != nil {
		controller.WriteError(c, deps.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification updated successfully", "notification": n})
}
