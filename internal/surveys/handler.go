package surveys

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/survey-app/backend/internal/middleware"
	"github.com/survey-app/backend/pkg/response"
)

// SurveyRequest is the body for creating or replacing a survey.
type SurveyRequest struct {
	Title           string            `json:"title" binding:"required,max=255"`
	Description     string            `json:"description"`
	CategoryID      *int64            `json:"categoryId" binding:"required"`
	DurationMinutes int               `json:"durationMinutes" binding:"min=0"`
	Questions       []QuestionRequest `json:"questions" binding:"dive"`
}

// QuestionRequest is one question of a SurveyRequest.
type QuestionRequest struct {
	ID           *int64          `json:"id"`
	QuestionText string          `json:"questionText" binding:"required"`
	QuestionType string          `json:"questionType" binding:"required"`
	OrderNumber  int             `json:"orderNumber"`
	Required     bool            `json:"required"`
	Options      []OptionRequest `json:"options" binding:"dive"`
}

// OptionRequest is one option of a QuestionRequest.
type OptionRequest struct {
	ID          *int64 `json:"id"`
	OptionText  string `json:"optionText" binding:"required"`
	OrderNumber int    `json:"orderNumber"`
}

func (r SurveyRequest) input() Input {
	in := Input{
		Title:           r.Title,
		Description:     r.Description,
		CategoryID:      r.CategoryID,
		DurationMinutes: r.DurationMinutes,
		Questions:       make([]QuestionInput, 0, len(r.Questions)),
	}
	for _, q := range r.Questions {
		qi := QuestionInput{
			ID:          q.ID,
			Text:        q.QuestionText,
			Type:        q.QuestionType,
			OrderNumber: q.OrderNumber,
			Required:    q.Required,
			Options:     make([]OptionInput, 0, len(q.Options)),
		}
		for _, o := range q.Options {
			qi.Options = append(qi.Options, OptionInput{ID: o.ID, OptionText: o.OptionText, OrderNumber: o.OrderNumber})
		}
		in.Questions = append(in.Questions, qi)
	}
	return in
}

// Handler handles survey CRUD endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a surveys handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// List handles GET /api/surveys.
func (h *Handler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// ListByCategory handles GET /api/surveys/category/:categoryId.
func (h *Handler) ListByCategory(c *gin.Context) {
	id, ok := ParseID(c, "categoryId")
	if !ok {
		return
	}
	list, err := h.svc.ListByCategory(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// Get handles GET /api/surveys/:id.
func (h *Handler) Get(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}
	s, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, s)
}

// Create handles POST /api/surveys (admin).
func (h *Handler) Create(c *gin.Context) {
	var req SurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	s, err := h.svc.Create(c.Request.Context(), middleware.UserID(c), req.input())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, s)
}

// Update handles PUT /api/surveys/:id (admin).
func (h *Handler) Update(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}
	var req SurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	s, err := h.svc.Update(c.Request.Context(), id, req.input())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, s)
}

// Delete handles DELETE /api/surveys/:id (admin).
func (h *Handler) Delete(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ParseID reads a positive integer path parameter, writing 400 when it is malformed.
func ParseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid "+param)
		return 0, false
	}
	return id, true
}
