package storage

import (
	"context"
	"time"

	"github.com/quantumgenie/ElearningApplication/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationStore — единственный владелец коллекции notifications.
// Записи создаются слоем триггеров, мутирует только флаг is_read.
type NotificationStore struct {
	collection *mongo.Collection
}

func NewNotificationStore(collection *mongo.Collection) *NotificationStore {
	return &NotificationStore{collection: collection}
}

func (s *NotificationStore) Create(ctx context.Context, userID, courseID primitive.ObjectID, message string) (*models.Notification, error) {
	notification := models.Notification{
		UserID:    userID,
		CourseID:  courseID,
		Message:   message,
		IsRead:    false,
		CreatedAt: time.Now(),
	}

	result, err := s.collection.InsertOne(ctx, notification)
	if err != nil {
		return nil, err
	}

	notification.ID = result.InsertedID.(primitive.ObjectID)
	return &notification, nil
}

// ListForUser возвращает уведомления пользователя, разделенные на
// непрочитанные и прочитанные, каждая часть отсортирована по убыванию даты.
func (s *NotificationStore) ListForUser(ctx context.Context, userID primitive.ObjectID) (unread, read []models.Notification, err error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := s.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, nil, err
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, nil, err
	}

	// Точное разбиение: каждое уведомление ровно в одном списке
	for _, n := range notifications {
		if n.IsRead {
			read = append(read, n)
		} else {
			unread = append(unread, n)
		}
	}

	return unread, read, nil
}

// UnreadCount считает непрочитанные уведомления напрямую в базе,
// без кеширования — счетчик отражает последний завершенный Create/MarkAllRead.
func (s *NotificationStore) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.collection.CountDocuments(ctx, bson.M{
		"user_id": userID,
		"is_read": false,
	})
}

// MarkAllRead помечает все непрочитанные уведомления пользователя.
// Идемпотентна: повторный вызов затрагивает ноль записей.
func (s *NotificationStore) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	result, err := s.collection.UpdateMany(ctx, bson.M{
		"user_id": userID,
		"is_read": false,
	}, bson.M{
		"$set": bson.M{
			"is_read": true,
			"read_at": time.Now(),
		},
	})
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}
