package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/quantumgenie/ElearningApplication/internal/config"
	"github.com/quantumgenie/ElearningApplication/internal/handlers"
	"github.com/quantumgenie/ElearningApplication/internal/realtime"
	"github.com/quantumgenie/ElearningApplication/internal/services"
	"github.com/quantumgenie/ElearningApplication/internal/storage"
	"github.com/quantumgenie/ElearningApplication/pkg/auth"
)

// newTestRouter собирает полный роутер без подключения к базе:
// проверяются только маршруты и их защита, до хранилищ запросы не доходят
func newTestRouter(jwtManager *auth.JWTManager) *gin.Engine {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		AllowedOrigins: []string{"http://localhost:3000"},
	}

	userStore := storage.NewUserStore(nil)
	courseStore := storage.NewCourseStore(nil)
	materialStore := storage.NewMaterialStore(nil)
	enrollmentStore := storage.NewEnrollmentStore(nil)
	notificationStore := storage.NewNotificationStore(nil)
	feedbackStore := storage.NewFeedbackStore(nil)
	chatStore := storage.NewChatStore(nil)

	hub := realtime.NewHub()

	authHandler := handlers.NewAuthHandler(userStore, jwtManager)
	userHandler := handlers.NewUserHandler(userStore)
	courseHandler := handlers.NewCourseHandler(courseStore, materialStore, enrollmentStore, feedbackStore)
	notificationHandler := handlers.NewNotificationHandler(services.NewNotificationService(notificationStore))
	wsHandler := handlers.NewWebSocketHandler(hub, jwtManager, chatStore)

	return setupRouter(cfg, authHandler, userHandler, courseHandler, notificationHandler, wsHandler, jwtManager, hub, nil)
}

func tokenFor(t *testing.T, jwtManager *auth.JWTManager, role string) string {
	t.Helper()
	token, err := jwtManager.GenerateToken(primitive.NewObjectID(), role+"@example.com", role)
	require.NoError(t, err)
	return token
}

func doRequest(router *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	router.ServeHTTP(w, req)
	return w
}

func TestUserSearchRequiresTeacherRole(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	router := newTestRouter(jwtManager)

	// Без токена — 401
	w := doRequest(router, http.MethodGet, "/api/v1/users/search?q=jane", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Студент — 403
	w = doRequest(router, http.MethodGet, "/api/v1/users/search?q=jane", tokenFor(t, jwtManager, "student"), "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Преподаватель проходит защиту: без q хендлер отвечает 400
	w = doRequest(router, http.MethodGet, "/api/v1/users/search", tokenFor(t, jwtManager, "teacher"), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRemoveStudentRequiresTeacherRole(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	router := newTestRouter(jwtManager)

	w := doRequest(router, http.MethodDelete, "/api/v1/enrollments/abc", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(router, http.MethodDelete, "/api/v1/enrollments/abc", tokenFor(t, jwtManager, "student"), "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Преподаватель проходит защиту: некорректный ID отклоняется хендлером
	w = doRequest(router, http.MethodDelete, "/api/v1/enrollments/not-an-id", tokenFor(t, jwtManager, "teacher"), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateProfileRoute(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	router := newTestRouter(jwtManager)

	w := doRequest(router, http.MethodPut, "/api/v1/users/me", "", `{"bio":"hi"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Пустое обновление отклоняется до обращения к базе
	w = doRequest(router, http.MethodPut, "/api/v1/users/me", tokenFor(t, jwtManager, "student"), `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTeacherRoutesRejectStudent(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	router := newTestRouter(jwtManager)
	student := tokenFor(t, jwtManager, "student")

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/courses"},
		{http.MethodPut, "/api/v1/enrollments/abc/block"},
		{http.MethodDelete, "/api/v1/enrollments/abc"},
		{http.MethodGet, "/api/v1/users/search?q=x"},
	} {
		w := doRequest(router, tc.method, tc.path, student, "")
		assert.Equalf(t, http.StatusForbidden, w.Code, "%s %s", tc.method, tc.path)
	}
}
