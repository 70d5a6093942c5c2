package categories

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/survey-app/backend/internal/models"
	"github.com/survey-app/backend/pkg/response"
)

// Store is the category persistence used by the handler.
type Store interface {
	List(ctx context.Context) ([]models.SurveyCategory, error)
	Create(ctx context.Context, c *models.SurveyCategory) error
}

// CreateRequest is the body for POST /api/categories.
type CreateRequest struct {
	Name        string `json:"name" binding:"required,max=255"`
	Description string `json:"description"`
}

// Handler handles category endpoints.
type Handler struct {
	store Store
}

// NewHandler creates a categories handler.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// List handles GET /api/categories.
func (h *Handler) List(c *gin.Context) {
	list, err := h.store.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if list == nil {
		list = []models.SurveyCategory{}
	}
	response.OK(c, list)
}

// Create handles POST /api/categories (admin).
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	cat := &models.SurveyCategory{Name: strings.TrimSpace(req.Name), Description: req.Description}
	if cat.Name == "" {
		response.BadRequest(c, "name is required")
		return
	}
	if err := h.store.Create(c.Request.Context(), cat); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, cat)
}
