package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/quantumgenie/ElearningApplication/pkg/auth"
)

func newAuthRouter(jwtManager *auth.JWTManager, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	group := router.Group("", AuthMiddleware(jwtManager))
	if len(roles) > 0 {
		group.Use(RequireRole(roles...))
	}
	group.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	router := newAuthRouter(jwtManager)

	token, err := jwtManager.GenerateToken(primitive.NewObjectID(), "user@example.com", "student")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	router := newAuthRouter(auth.NewJWTManager("test-secret", time.Hour))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareBadFormat(t *testing.T) {
	router := newAuthRouter(auth.NewJWTManager("test-secret", time.Hour))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareInvalidToken(t *testing.T) {
	router := newAuthRouter(auth.NewJWTManager("test-secret", time.Hour))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRoleAllowsMatchingRole(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	router := newAuthRouter(jwtManager, "teacher")

	token, err := jwtManager.GenerateToken(primitive.NewObjectID(), "t@example.com", "teacher")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRoleRejectsOtherRole(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	router := newAuthRouter(jwtManager, "teacher")

	token, err := jwtManager.GenerateToken(primitive.NewObjectID(), "s@example.com", "student")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
