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

// EnrollmentCreatedHandler вызывается после успешной записи студента на курс
type EnrollmentCreatedHandler func(ctx context.Context, enrollment *models.Enrollment)

type EnrollmentStore struct {
	collection *mongo.Collection

	mu       sync.RWMutex
	onCreate []EnrollmentCreatedHandler
}

func NewEnrollmentStore(collection *mongo.Collection) *EnrollmentStore {
	return &EnrollmentStore{collection: collection}
}

// OnCreate регистрирует обработчик события записи на курс.
// Срабатывает только при первой вставке, не при блокировке/разблокировке.
func (s *EnrollmentStore) OnCreate(handler EnrollmentCreatedHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onCreate = append(s.onCreate, handler)
}

func (s *EnrollmentStore) Create(ctx context.Context, enrollment *models.Enrollment) error {
	enrollment.EnrolledAt = time.Now()
	enrollment.Blocked = false

	result, err := s.collection.InsertOne(ctx, enrollment)
	if err != nil {
		return err
	}

	enrollment.ID = result.InsertedID.(primitive.ObjectID)

	s.mu.RLock()
	handlers := s.onCreate
	s.mu.RUnlock()

	for _, handler := range handlers {
		handler(ctx, enrollment)
	}

	return nil
}

func (s *EnrollmentStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	if err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&enrollment); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (s *EnrollmentStore) FindByCourseAndStudent(ctx context.Context, courseID, studentID primitive.ObjectID) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := s.collection.FindOne(ctx, bson.M{
		"course_id":  courseID,
		"student_id": studentID,
	}).Decode(&enrollment)
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// ListActiveByCourse возвращает записи курса без заблокированных студентов.
// Используется для вычисления получателей уведомлений о материалах.
func (s *EnrollmentStore) ListActiveByCourse(ctx context.Context, courseID primitive.ObjectID) ([]models.Enrollment, error) {
	cursor, err := s.collection.Find(ctx, bson.M{
		"course_id": courseID,
		"blocked":   false,
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var enrollments []models.Enrollment
	if err := cursor.All(ctx, &enrollments); err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (s *EnrollmentStore) ListByCourse(ctx context.Context, courseID primitive.ObjectID) ([]models.Enrollment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "enrolled_at", Value: -1}})

	cursor, err := s.collection.Find(ctx, bson.M{"course_id": courseID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var enrollments []models.Enrollment
	if err := cursor.All(ctx, &enrollments); err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (s *EnrollmentStore) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.Enrollment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "enrolled_at", Value: -1}})

	cursor, err := s.collection.Find(ctx, bson.M{"student_id": studentID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var enrollments []models.Enrollment
	if err := cursor.All(ctx, &enrollments); err != nil {
		return nil, err
	}
	return enrollments, nil
}

func (s *EnrollmentStore) SetBlocked(ctx context.Context, id primitive.ObjectID, blocked bool) error {
	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"blocked": blocked},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (s *EnrollmentStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (s *EnrollmentStore) DeleteByCourse(ctx context.Context, courseID primitive.ObjectID) error {
	_, err := s.collection.DeleteMany(ctx, bson.M{"course_id": courseID})
	return err
}
