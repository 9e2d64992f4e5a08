package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/quantumgenie/ElearningApplication/internal/models"
	"github.com/quantumgenie/ElearningApplication/internal/storage"
)

// NotificationService — внешняя поверхность работы с уведомлениями:
// страница уведомлений, бейдж непрочитанных, действие "прочитать все".
// Хранилище остается источником истины независимо от судьбы realtime-доставки.
type NotificationService struct {
	store *storage.NotificationStore
}

func NewNotificationService(store *storage.NotificationStore) *NotificationService {
	return &NotificationService{store: store}
}

func (s *NotificationService) ListForUser(ctx context.Context, userID primitive.ObjectID) (unread, read []models.Notification, err error) {
	return s.store.ListForUser(ctx, userID)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.store.UnreadCount(ctx, userID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.store.MarkAllRead(ctx, userID)
}
