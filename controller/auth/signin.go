package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kalavedi/controller"
	"kalavedi/dto"
	"kalavedi/services"
)

func SignInController(router *gin.Engine, authService *services.AuthService, logger *zap.Logger) {
	router.POST("/api/admin/login", func(c *gin.Context) {
		Signin(c, authService, logger)
	})
}

func Signin(c *gin.Context, authService *services.AuthService, logger *zap.Logger) {
	var request dto.SigninRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	result, err := authService.Login(c.Request.Context(), request.Email, request.Password)
	if err != nil {
		controller.WriteError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login Successfully",
		"token": gin.H{
			"accessToken": result.AccessToken,
			"expiresAt":   result.ExpiresAt,
		},
		"admin": result.Admin,
	})
}
