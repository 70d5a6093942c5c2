package responses

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/survey-app/backend/internal/middleware"
	"github.com/survey-app/backend/internal/models"
)

func asCaller(id int64, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, id)
		c.Set(middleware.ContextUserRole, role)
		c.Next()
	}
}

func submit(t *testing.T, caller gin.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(newTestService(&memStore{}, nil, nil))
	r.POST("/api/surveys/:id/submit", caller, h.Submit)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/surveys/10/submit", strings.NewReader(body)))
	return w
}

func TestSubmitHandler(t *testing.T) {
	body := `{"answers":[{"questionId":1,"answerText":"blue"},{"questionId":2,"selectedOptionId":7}]}`
	w := submit(t, asCaller(1, models.RoleUser), body)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"answerText":"blue"`)
	assert.Contains(t, w.Body.String(), `"selectedOptionId":7`)
}

func TestSubmitHandlerOnBehalfOfAnotherUser(t *testing.T) {
	body := `{"userId":1,"answers":[{"questionId":1,"answerText":"blue"}]}`

	w := submit(t, asCaller(5, models.RoleUser), body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = submit(t, asCaller(5, models.RoleAdmin), body)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"userId":1`)
}

func TestSubmitHandlerMapsNotFound(t *testing.T) {
	w := submit(t, asCaller(1, models.RoleUser), `{"answers":[{"questionId":3}]}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Question not found")
}
