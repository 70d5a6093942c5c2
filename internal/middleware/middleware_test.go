package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/survey-app/backend/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func fakeValidator(token string) (Principal, error) {
	switch token {
	case "admin-token":
		return Principal{UserID: 1, Username: "admin", Role: models.RoleAdmin}, nil
	case "user-token":
		return Principal{UserID: 2, Username: "user", Role: models.RoleUser}, nil
	}
	return Principal{}, errors.New("bad token")
}

func newRouter() *gin.Engine {
	r := gin.New()
	r.Use(Logger(zap.NewNop()))
	api := r.Group("/api", JWT(fakeValidator))
	api.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": UserID(c), "role": Role(c)})
	})
	api.GET("/admin", RequireRole(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })
	api.GET("/users/:userId/stats", RequireSelfOrAdmin("userId"), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWT(t *testing.T) {
	r := newRouter()

	tests := []struct {
		name   string
		token  string
		header string
		want   int
	}{
		{name: "missing header", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "invalid token", token: "nope", want: http.StatusUnauthorized},
		{name: "valid token", token: "user-token", want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			switch {
			case tt.header != "":
				req.Header.Set("Authorization", tt.header)
			case tt.token != "":
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}

	w := do(r, "/api/me", "user-token")
	assert.JSONEq(t, `{"id":2,"role":"USER"}`, w.Body.String())
}

func TestRequireRole(t *testing.T) {
	r := newRouter()
	assert.Equal(t, http.StatusOK, do(r, "/api/admin", "admin-token").Code)
	assert.Equal(t, http.StatusForbidden, do(r, "/api/admin", "user-token").Code)
}

func TestRequireSelfOrAdmin(t *testing.T) {
	r := newRouter()
	assert.Equal(t, http.StatusOK, do(r, "/api/users/2/stats", "user-token").Code)
	assert.Equal(t, http.StatusForbidden, do(r, "/api/users/3/stats", "user-token").Code)
	assert.Equal(t, http.StatusOK, do(r, "/api/users/3/stats", "admin-token").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, "/api/users/abc/stats", "admin-token").Code)
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173"}))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.test")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
