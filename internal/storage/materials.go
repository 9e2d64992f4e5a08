package storage

import (
	"context"
	"sync"
	"time"

	"github.com/quantumgenie/ElearningApplication/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MaterialCreatedHandler вызывается после успешной вставки материала.
// Ошибки обработчика не влияют на результат вставки.
type MaterialCreatedHandler func(ctx context.Context, material *models.Material)

type MaterialStore struct {
	collection *mongo.Collection

	mu       sync.RWMutex
	onCreate []MaterialCreatedHandler
}

func NewMaterialStore(collection *mongo.Collection) *MaterialStore {
	return &MaterialStore{collection: collection}
}

// OnCreate регистрирует обработчик события создания материала.
// Обработчики срабатывают только при первой вставке, не при обновлениях.
func (s *MaterialStore) OnCreate(handler MaterialCreatedHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onCreate = append(s.onCreate, handler)
}

func (s *MaterialStore) Create(ctx context.Context, material *models.Material) error {
	material.AddedAt = time.Now()

	result, err := s.collection.InsertOne(ctx, material)
	if err != nil {
		return err
	}

	material.ID = result.InsertedID.(primitive.ObjectID)

	// Запись уже зафиксирована, обработчики выполняются после коммита
	s.mu.RLock()
	handlers := s.onCreate
	s.mu.RUnlock()

	for _, handler := range handlers {
		handler(ctx, material)
	}

	return nil
}

func (s *MaterialStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Material, error) {
	var material models.Material
	if err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&material); err != nil {
		return nil, err
	}
	return &material, nil
}

func (s *MaterialStore) ListByCourse(ctx context.Context, courseID primitive.ObjectID) ([]models.Material, error) {
	opts := options.Find().SetSort(bson.D{{Key: "added_at", Value: -1}})

	cursor, err := s.collection.Find(ctx, bson.M{"course_id": courseID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var materials []models.Material
	if err := cursor.All(ctx, &materials); err != nil {
		return nil, err
	}
	return materials, nil
}

func (s *MaterialStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (s *MaterialStore) DeleteByCourse(ctx context.Context, courseID primitive.ObjectID) error {
	_, err := s.collection.DeleteMany(ctx, bson.M{"course_id": courseID})
	return err
}
