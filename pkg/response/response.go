package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/survey-app/backend/pkg/apperr"
)

// MessageUnexpected is returned for unclassified failures so internals never leak.
const MessageUnexpected = "An unexpected error occurred"

// Body is the standard API response envelope.
type Body struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Message   string      `json:"message,omitempty"`
	Status    int         `json:"status,omitempty"`
	Timestamp string      `json:"timestamp,omitempty"`
}

// OK sends a 200 JSON response with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Body{Success: true, Data: data})
}

// Created sends a 201 JSON response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Body{Success: true, Data: data})
}

// Accepted sends a 202 JSON response with data.
func Accepted(c *gin.Context, data interface{}) {
	c.JSON(http.StatusAccepted, Body{Success: true, Data: data})
}

// NoContent sends 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends 400 with error message.
func BadRequest(c *gin.Context, msg string) { fail(c, http.StatusBadRequest, msg) }

// Unauthorized sends 401.
func Unauthorized(c *gin.Context, msg string) { fail(c, http.StatusUnauthorized, msg) }

// Forbidden sends 403.
func Forbidden(c *gin.Context, msg string) { fail(c, http.StatusForbidden, msg) }

// NotFound sends 404.
func NotFound(c *gin.Context, msg string) { fail(c, http.StatusNotFound, msg) }

// ServiceUnavailable sends 503.
func ServiceUnavailable(c *gin.Context, msg string) { fail(c, http.StatusServiceUnavailable, msg) }

// Internal sends 500 with the generic message.
func Internal(c *gin.Context) { fail(c, http.StatusInternalServerError, MessageUnexpected) }

// Error renders err according to its apperr classification.
// Duplicate completion (conflict) is a business-rule failure and shares 400 with bad_request.
func Error(c *gin.Context, err error) {
	e, ok := apperr.As(err)
	if !ok {
		_ = c.Error(err)
		Internal(c)
		return
	}
	switch e.Code {
	case apperr.CodeNotFound:
		NotFound(c, e.Message)
	case apperr.CodeBadRequest, apperr.CodeConflict:
		BadRequest(c, e.Message)
	case apperr.CodeUnauthorized:
		Unauthorized(c, e.Message)
	case apperr.CodeForbidden:
		Forbidden(c, e.Message)
	default:
		_ = c.Error(err)
		Internal(c)
	}
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, Body{
		Success:   false,
		Message:   msg,
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
