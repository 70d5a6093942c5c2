package stats

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/survey-app/backend/internal/middleware"
	"github.com/survey-app/backend/pkg/response"
)

// Handler serves statistics and ranking endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a stats handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// UserSurveyStats handles GET /api/surveys/user-stats/:userId.
func (h *Handler) UserSurveyStats(c *gin.Context) {
	userID, ok := userParam(c)
	if !ok {
		return
	}
	st, err := h.svc.UserSurveyStats(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, st)
}

// Dashboard handles GET /api/surveys/stats/:userId.
func (h *Handler) Dashboard(c *gin.Context) {
	userID, ok := userParam(c)
	if !ok {
		return
	}
	d, err := h.svc.Dashboard(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, d)
}

// CategoryStats handles GET /api/surveys/stats/categories.
func (h *Handler) CategoryStats(c *gin.Context) {
	list, err := h.svc.CategoryStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// Rankings handles GET /api/rankings.
func (h *Handler) Rankings(c *gin.Context) {
	list, err := h.svc.Rankings(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// Top handles GET /api/rankings/top?limit=N.
func (h *Handler) Top(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	list, err := h.svc.Top(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// Me handles GET /api/rankings/me.
func (h *Handler) Me(c *gin.Context) {
	e, err := h.svc.Position(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, e)
}

func userParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid userId")
		return 0, false
	}
	return id, true
}
