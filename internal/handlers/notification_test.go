package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/quantumgenie/ElearningApplication/internal/models"
)

type fakeNotificationService struct {
	unread []models.Notification
	read   []models.Notification
	marked int64
	err    error
}

func (f *fakeNotificationService) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, []models.Notification, error) {
	return f.unread, f.read, f.err
}

func (f *fakeNotificationService) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return int64(len(f.unread)), f.err
}

func (f *fakeNotificationService) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	marked := int64(len(f.unread))
	f.marked += marked
	f.read = append(f.read, f.unread...)
	f.unread = nil
	return marked, nil
}

// newNotificationRouter собирает роутер с заглушкой авторизации:
// user_id кладется в контекст напрямую
func newNotificationRouter(service NotificationService, userID primitive.ObjectID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	})

	handler := NewNotificationHandler(service)
	router.GET("/notifications", handler.GetNotifications)
	router.GET("/notifications/unread-count", handler.GetUnreadCount)
	router.PUT("/notifications/read-all", handler.MarkAllAsRead)
	return router
}

func notification(userID primitive.ObjectID, message string, isRead bool) models.Notification {
	return models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Message:   message,
		IsRead:    isRead,
		CreatedAt: time.Now(),
	}
}

func TestGetNotificationsPartition(t *testing.T) {
	userID := primitive.NewObjectID()
	service := &fakeNotificationService{
		unread: []models.Notification{
			notification(userID, "'Lecture 2' added to the course 'Databases'.", false),
			notification(userID, "'Lecture 1' added to the course 'Databases'.", false),
		},
		read: []models.Notification{
			notification(userID, "'Jane Doe' has enrolled in 'Databases'.", true),
		},
	}
	router := newNotificationRouter(service, userID)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Unread      []models.Notification `json:"unread"`
		Read        []models.Notification `json:"read"`
		UnreadCount int                   `json:"unread_count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Unread, 2)
	assert.Len(t, resp.Read, 1)
	assert.Equal(t, 2, resp.UnreadCount)
}

func TestGetNotificationsEmptyListsNotNull(t *testing.T) {
	userID := primitive.NewObjectID()
	router := newNotificationRouter(&fakeNotificationService{}, userID)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	// Пустые списки сериализуются как [], не null
	body := w.Body.String()
	assert.Contains(t, body, `"unread":[]`)
	assert.Contains(t, body, `"read":[]`)
	assert.Contains(t, body, `"unread_count":0`)
}

func TestGetNotificationsServiceError(t *testing.T) {
	userID := primitive.NewObjectID()
	router := newNotificationRouter(&fakeNotificationService{err: errors.New("mongo down")}, userID)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetUnreadCount(t *testing.T) {
	userID := primitive.NewObjectID()
	service := &fakeNotificationService{
		unread: []models.Notification{notification(userID, "x", false)},
	}
	router := newNotificationRouter(service, userID)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/notifications/unread-count", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"unread_count":1`)
}

func TestMarkAllAsReadIdempotent(t *testing.T) {
	userID := primitive.NewObjectID()
	service := &fakeNotificationService{
		unread: []models.Notification{
			notification(userID, "a", false),
			notification(userID, "b", false),
		},
	}
	router := newNotificationRouter(service, userID)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/notifications/read-all", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"updated_count":2`)

	// Повторный вызов — корректный no-op
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/notifications/read-all", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"updated_count":0`)
	assert.Equal(t, int64(2), service.marked)
}
