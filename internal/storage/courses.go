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

type CourseStore struct {
	collection *mongo.Collection
}

func NewCourseStore(collection *mongo.Collection) *CourseStore {
	return &CourseStore{collection: collection}
}

func (s *CourseStore) Create(ctx context.Context, course *models.Course) error {
	now := time.Now()
	course.CreatedAt = now
	course.UpdatedAt = now

	result, err := s.collection.InsertOne(ctx, course)
	if err != nil {
		return err
	}

	course.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *CourseStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Course, error) {
	var course models.Course
	if err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&course); err != nil {
		return nil, err
	}
	return &course, nil
}

func (s *CourseStore) List(ctx context.Context) ([]models.Course, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var courses []models.Course
	if err := cursor.All(ctx, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (s *CourseStore) ListByCreator(ctx context.Context, creatorID primitive.ObjectID) ([]models.Course, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := s.collection.Find(ctx, bson.M{"creator_id": creatorID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var courses []models.Course
	if err := cursor.All(ctx, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (s *CourseStore) Update(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	update["updated_at"] = time.Now()

	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (s *CourseStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
