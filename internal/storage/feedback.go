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

type FeedbackStore struct {
	collection *mongo.Collection
}

func NewFeedbackStore(collection *mongo.Collection) *FeedbackStore {
	return &FeedbackStore{collection: collection}
}

func (s *FeedbackStore) Create(ctx context.Context, feedback *models.Feedback) error {
	feedback.SentAt = time.Now()

	result, err := s.collection.InsertOne(ctx, feedback)
	if err != nil {
		return err
	}

	feedback.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *FeedbackStore) ListByCourse(ctx context.Context, courseID primitive.ObjectID) ([]models.Feedback, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sent_at", Value: -1}})

	cursor, err := s.collection.Find(ctx, bson.M{"course_id": courseID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var feedback []models.Feedback
	if err := cursor.All(ctx, &feedback); err != nil {
		return nil, err
	}
	return feedback, nil
}
