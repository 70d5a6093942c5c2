package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/survey-app/backend/internal/models"
	"github.com/survey-app/backend/pkg/response"
)

// RegisterRequest is the body for POST /api/auth/register.
type RegisterRequest struct {
	Username   string `json:"username" binding:"required,min=3,max=100"`
	Password   string `json:"password" binding:"required,min=6"`
	FullName   string `json:"fullName"`
	Email      string `json:"email" binding:"omitempty,email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	Occupation string `json:"occupation"`
	Education  string `json:"education"`
	BirthDate  string `json:"birthDate"`
	Gender     string `json:"gender"`
}

// LoginRequest is the body for POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates an auth handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register handles POST /api/auth/register.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	res, err := h.svc.Register(c.Request.Context(), req.Username, req.Password, models.UserProfile{
		FullName:   req.FullName,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
		Occupation: req.Occupation,
		Education:  req.Education,
		BirthDate:  req.BirthDate,
		Gender:     req.Gender,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	res, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}
