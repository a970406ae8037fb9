package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"kalavedi/repository"
	"kalavedi/services"
)

func TestWriteError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"not found", fmt.Errorf("get member: %w", repository.ErrNotFound), http.StatusNotFound, "Not found"},
		{"member not found", services.ErrMemberNotFound, http.StatusNotFound, "Registration ID not found"},
		{"draft expired", services.ErrDraftNotFound, http.StatusNotFound, services.ErrDraftNotFound.Error()},
		{"transition", fmt.Errorf("%w: pending to banned", services.ErrInvalidTransition), http.StatusConflict, "status change not allowed: pending to banned"},
		{"captcha", services.ErrCaptchaFailed, http.StatusForbidden, "reCAPTCHA verification failed"},
		{"bad ledger input", services.ErrInvalidTransaction, http.StatusBadRequest, services.ErrInvalidTransaction.Error()},
		{"credentials", services.ErrInvalidCredentials, http.StatusUnauthorized, "invalid email or password"},
		{"store down", fmt.Errorf("%w: %w", services.ErrDuplicateCheck, errors.New("deadline exceeded")), http.StatusServiceUnavailable,
			"An error occurred while checking registration status. Please try again."},
		{"unexpected", errors.New("rpc error: code = Internal"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			WriteError(c, zap.NewNop(), tt.err)

			assert.Equal(t, tt.status, w.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.message, body["error"])
		})
	}
}

func TestWriteError_TypedErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.ErrorLevel)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/?lang=en", nil)
	WriteError(c, zap.New(core), &services.ValidationError{Message: "Please fill all required fields before proceeding.", Fields: map[string]string{"age": ""}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"fields":{"age":""}`)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	WriteError(c, zap.New(core), &services.DuplicateError{Field: repository.FieldPhone, MemberID: "012"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "You are already registered with this Phone Number. Check Status With Your member ID is 012")

	assert.Zero(t, logs.Len(), "client errors are not logged")
}

func TestLang(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("Accept-Language", "ml-IN,ml;q=0.9")
	assert.Equal(t, "ml", Lang(c))

	c.Request = httptest.NewRequest(http.MethodGet, "/?lang=fr", nil)
	assert.Equal(t, "en", Lang(c))
}
