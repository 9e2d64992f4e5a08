// internal/handlers/notification.go

package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/quantumgenie/ElearningApplication/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationService — поверхность уведомлений, которую потребляет UI
type NotificationService interface {
	ListForUser(ctx context.Context, userID primitive.ObjectID) (unread, read []models.Notification, err error)
	UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error)
	MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

type NotificationHandler struct {
	service NotificationService
}

func NewNotificationHandler(service NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// GetNotifications возвращает уведомления пользователя, разделенные
// на непрочитанные и прочитанные
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	userID, _ := c.Get("user_id")
	userIDObj := userID.(primitive.ObjectID)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	unread, read, err := h.service.ListForUser(ctx, userIDObj)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error fetching notifications",
		})
		return
	}

	// Пустые списки отдаем как [], не null
	if unread == nil {
		unread = []models.Notification{}
	}
	if read == nil {
		read = []models.Notification{}
	}

	c.JSON(http.StatusOK, gin.H{
		"unread":       unread,
		"read":         read,
		"unread_count": len(unread),
	})
}

func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	userID, _ := c.Get("user_id")
	userIDObj := userID.(primitive.ObjectID)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := h.service.UnreadCount(ctx, userIDObj)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error counting notifications",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"unread_count": count,
	})
}

// MarkAllAsRead помечает все уведомления пользователя прочитанными.
// Повторный вызов — корректный no-op.
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	userID, _ := c.Get("user_id")
	userIDObj := userID.(primitive.ObjectID)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	updated, err := h.service.MarkAllRead(ctx, userIDObj)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error marking notifications as read",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "All notifications marked as read",
		"updated_count": updated,
	})
}
