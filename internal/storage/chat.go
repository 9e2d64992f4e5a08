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

type ChatStore struct {
	collection *mongo.Collection
}

func NewChatStore(collection *mongo.Collection) *ChatStore {
	return &ChatStore{collection: collection}
}

func (s *ChatStore) Create(ctx context.Context, message *models.ChatMessage) error {
	message.SentAt = time.Now()

	result, err := s.collection.InsertOne(ctx, message)
	if err != nil {
		return err
	}

	message.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

// ListByRoom возвращает последние сообщения комнаты, новые первыми
func (s *ChatStore) ListByRoom(ctx context.Context, room string, limit int64) ([]models.ChatMessage, error) {
	opts := options.Find().
		SetLimit(limit).
		SetSort(bson.D{{Key: "sent_at", Value: -1}})

	cursor, err := s.collection.Find(ctx, bson.M{"room": room}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []models.ChatMessage
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}
