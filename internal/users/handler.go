package users

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/survey-app/backend/internal/middleware"
	"github.com/survey-app/backend/internal/models"
	"github.com/survey-app/backend/pkg/response"
)

// CreateRequest is the body for POST /api/users (admin).
type CreateRequest struct {
	Username   string `json:"username" binding:"required,min=3,max=100"`
	Password   string `json:"password" binding:"required,min=6"`
	Role       string `json:"role"`
	FullName   string `json:"fullName"`
	Email      string `json:"email" binding:"omitempty,email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	Occupation string `json:"occupation"`
	Education  string `json:"education"`
	BirthDate  string `json:"birthDate"`
	Gender     string `json:"gender"`
}

// UpdateRequest is the body for PUT /api/admin/users/:id.
type UpdateRequest struct {
	Username string `json:"username" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

// Handler handles user and admin user-management endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a users handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Create handles POST /api/users.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	role := models.RoleUser
	if req.Role != "" {
		r, err := models.ParseRole(req.Role)
		if err != nil {
			response.BadRequest(c, msgInvalidRole)
			return
		}
		role = r
	}
	u, err := h.svc.Create(c.Request.Context(), NewUser{
		Username: req.Username,
		Password: req.Password,
		Role:     role,
		Profile: models.UserProfile{
			FullName:   req.FullName,
			Email:      req.Email,
			Phone:      req.Phone,
			Address:    req.Address,
			Occupation: req.Occupation,
			Education:  req.Education,
			BirthDate:  req.BirthDate,
			Gender:     req.Gender,
		},
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, u.ToPublic())
}

// GetByID handles GET /api/users/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	u, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, u)
}

// Me handles GET /api/users/me.
func (h *Handler) Me(c *gin.Context) {
	u, err := h.svc.Get(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, u)
}

// List handles GET /api/users (admin).
func (h *Handler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// AdminList handles GET /api/admin/users.
func (h *Handler) AdminList(c *gin.Context) {
	list, err := h.svc.ListManagement(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

// AdminUpdate handles PUT /api/admin/users/:id.
func (h *Handler) AdminUpdate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	m, err := h.svc.Update(c.Request.Context(), id, UpdateUser{Username: req.Username, Role: req.Role})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, m)
}

// AdminDelete handles DELETE /api/admin/users/:id.
func (h *Handler) AdminDelete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Profiles handles GET /api/admin/users/profiles.
func (h *Handler) Profiles(c *gin.Context) {
	list, err := h.svc.ListProfiles(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, list)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid user id")
		return 0, false
	}
	return id, true
}
