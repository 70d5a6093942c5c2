package responses

import (
	"github.com/gin-gonic/gin"

	"github.com/survey-app/backend/internal/middleware"
	"github.com/survey-app/backend/internal/surveys"
	"github.com/survey-app/backend/pkg/response"
)

// SubmitRequest is the body for POST /api/surveys/:id/submit.
type SubmitRequest struct {
	UserID  *int64          `json:"userId"`
	Answers []AnswerRequest `json:"answers" binding:"dive"`
}

// AnswerRequest is one submitted answer.
type AnswerRequest struct {
	QuestionID       int64  `json:"questionId" binding:"required"`
	AnswerText       string `json:"answerText"`
	SelectedOptionID *int64 `json:"selectedOptionId"`
}

// Handler handles response submission and response reads.
type Handler struct {
	svc *Service
}

// NewHandler creates a responses handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Submit handles POST /api/surveys/:id/submit.
// The respondent is the caller; only admins may submit on behalf of another user.
func (h *Handler) Submit(c *gin.Context) {
	surveyID, ok := surveys.ParseID(c, "id")
	if !ok {
		return
	}
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	userID := middleware.UserID(c)
	if req.UserID != nil && *req.UserID != userID {
		if !middleware.Role(c).IsAdmin() {
			response.Forbidden(c, "cannot submit a response for another user")
			return
		}
		userID = *req.UserID
	}

	answers := make([]Answer, 0, len(req.Answers))
	for _, a := range req.Answers {
		answers = append(answers, Answer{QuestionID: a.QuestionID, AnswerText: a.AnswerText, SelectedOptionID: a.SelectedOptionID})
	}
	resp, err := h.svc.Submit(c.Request.Context(), surveyID, userID, answers)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, resp)
}

// HasCompleted handles GET /api/surveys/:id/user/:userId/completed.
func (h *Handler) HasCompleted(c *gin.Context) {
	surveyID, ok := surveys.ParseID(c, "id")
	if !ok {
		return
	}
	userID, ok := surveys.ParseID(c, "userId")
	if !ok {
		return
	}
	done, err := h.svc.HasCompleted(c.Request.Context(), userID, surveyID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, done)
}

// ListByUser handles GET /api/surveys/responses/user/:userId.
func (h *Handler) ListByUser(c *gin.Context) {
	userID, ok := surveys.ParseID(c, "userId")
	if !ok {
		return
	}
	list, err := h.svc.ListByUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// ListDetails handles GET /api/surveys/:id/responses (admin).
func (h *Handler) ListDetails(c *gin.Context) {
	surveyID, ok := surveys.ParseID(c, "id")
	if !ok {
		return
	}
	list, err := h.svc.ListDetails(c.Request.Context(), surveyID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}
