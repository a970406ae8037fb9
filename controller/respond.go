// Package controller holds the response helpers shared by the route
// packages below it.
package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kalavedi/repository"
	"kalavedi/services"
)

var badRequest = []error{
	services.ErrUnknownField,
	services.ErrAffidavitRequired,
	services.ErrNotOnFinalStep,
	services.ErrInvalidTransaction,
	services.ErrInvalidFilter,
	services.ErrActivityFields,
	services.ErrTooManyPhotos,
	services.ErrEmptyAlert,
}

var notFound = []error{
	repository.ErrNotFound,
	services.ErrMemberNotFound,
	services.ErrDraftNotFound,
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// Lang picks the applicant's language from ?lang or Accept-Language.
func Lang(c *gin.Context) string {
	if lang := c.Query("lang"); lang != "" {
		return services.NormalizeLang(lang)
	}
	return services.NormalizeLang(c.GetHeader("Accept-Language"))
}

// WriteError maps a service error to a status code and the {"error": ...}
// body. Unexpected errors are logged and reported generically.
func WriteError(c *gin.Context, logger *zap.Logger, err error) {
	var validation *services.ValidationError
	var duplicate *services.DuplicateError

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": validation.Message, "fields": validation.Fields})
	case errors.As(err, &duplicate):
		c.JSON(http.StatusConflict, gin.H{
			"error":    duplicate.Message(Lang(c)),
			"field":    duplicate.Field,
			"memberId": duplicate.MemberID,
		})
	case isAny(err, notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundMessage(err)})
	case isAny(err, badRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidTransition), errors.Is(err, services.ErrAlreadySubmitted), errors.Is(err, services.ErrAdminExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrCaptchaFailed):
		c.JSON(http.StatusForbidden, gin.H{"error": services.ErrCaptchaFailed.Error()})
	case errors.Is(err, services.ErrUploadsDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrDuplicateCheck):
		logger.Error("duplicate check failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": services.Translate(Lang(c), services.MsgDuplicateCheck)})
	default:
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrDraftNotFound):
		return services.ErrDraftNotFound.Error()
	case errors.Is(err, services.ErrMemberNotFound):
		return services.ErrMemberNotFound.Error()
	}
	return "Not found"
}
