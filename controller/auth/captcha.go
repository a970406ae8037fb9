package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kalavedi/dto"
	"kalavedi/services"
)

// CaptchaController lets the front-end verify a token before it starts a
// registration. verifier is nil when reCAPTCHA is not configured.
func CaptchaController(router *gin.Engine, verifier services.CaptchaVerifier, logger *zap.Logger) {
	routes := router.Group("/api/captcha")
	{
		routes.POST("/verify", func(c *gin.Context) {
			VerifyCaptcha(c, verifier, logger)
		})
	}
}

func VerifyCaptcha(c *gin.Context, verifier services.CaptchaVerifier, logger *zap.Logger) {
	var req dto.CaptchaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Token is required",
		})
		return
	}

	if verifier == nil {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Captcha verification is disabled",
		})
		return
	}

	result, err := verifier.Verify(c.Request.Context(), req.Token, req.Action, c.ClientIP(), c.Request.UserAgent())
	if errors.Is(err, services.ErrCaptchaFailed) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": services.ErrCaptchaFailed.Error(),
		})
		return
	}
	if err != nil {
		logger.Error("reCAPTCHA assessment failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Internal server error",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"score":   result.Score,
		"action":  result.Action,
		"reasons": result.Reasons,
		"message": "Captcha verified successfully",
	})
}
