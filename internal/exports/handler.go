package exports

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/survey-app/backend/internal/middleware"
	"github.com/survey-app/backend/internal/surveys"
	"github.com/survey-app/backend/pkg/response"
)

const msgDisabled = "Exports are not available"

// Handler handles export endpoints (admin).
type Handler struct {
	svc *Service
}

// NewHandler creates an exports handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Request handles POST /api/surveys/:id/responses/export.
func (h *Handler) Request(c *gin.Context) {
	surveyID, ok := surveys.ParseID(c, "id")
	if !ok {
		return
	}
	e, err := h.svc.Request(c.Request.Context(), surveyID, middleware.UserID(c))
	if errors.Is(err, ErrDisabled) {
		response.ServiceUnavailable(c, msgDisabled)
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, e)
}

// Get handles GET /api/exports/:id.
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid export id")
		return
	}
	e, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, e)
}
