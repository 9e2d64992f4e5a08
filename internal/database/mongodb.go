// internal/database/mongodb.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/quantumgenie/ElearningApplication/internal/config"
	"github.com/quantumgenie/ElearningApplication/internal/logging"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoDB(cfg *config.Config) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.MongoTimeout)*time.Second)
	defer cancel()

	// Настройки клиента
	clientOptions := options.Client().
		ApplyURI(cfg.MongoURI).
		SetMaxPoolSize(100).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(30 * time.Second)

	// Создание клиента
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к MongoDB: %w", err)
	}

	// Проверка подключения
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ошибка пинга MongoDB: %w", err)
	}

	database := client.Database(cfg.DatabaseName)

	logging.Logger.Infof("Успешно подключен к MongoDB: %s", cfg.DatabaseName)

	return &MongoDB{
		Client:   client,
		Database: database,
	}, nil
}

func (m *MongoDB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := m.Client.Disconnect(ctx); err != nil {
		return fmt.Errorf("ошибка отключения от MongoDB: %w", err)
	}

	logging.Logger.Info("Отключен от MongoDB")
	return nil
}

// CreateIndexes создает индексы для всех коллекций
// ВАЖНО: Используем bson.D вместо map для сохранения порядка ключей
func (m *MongoDB) CreateIndexes(ctx context.Context) error {
	// Создание индексов для пользователей
	userCollection := m.Database.Collection("users")
	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "role", Value: 1}},
		},
	}

	if _, err := userCollection.Indexes().CreateMany(ctx, userIndexes); err != nil {
		return fmt.Errorf("ошибка создания индексов для пользователей: %w", err)
	}

	// Создание индексов для курсов
	courseCollection := m.Database.Collection("courses")
	courseIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "creator_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "title", Value: 1}},
		},
	}

	if _, err := courseCollection.Indexes().CreateMany(ctx, courseIndexes); err != nil {
		return fmt.Errorf("ошибка создания индексов для курсов: %w", err)
	}

	// Создание индексов для материалов
	materialCollection := m.Database.Collection("materials")
	materialIndexes := []mongo.IndexModel{
		{
			// Составной индекс для материалов курса по дате добавления
			Keys: bson.D{
				{Key: "course_id", Value: 1},
				{Key: "added_at", Value: -1},
			},
		},
	}

	if _, err := materialCollection.Indexes().CreateMany(ctx, materialIndexes); err != nil {
		return fmt.Errorf("ошибка создания индексов для материалов: %w", err)
	}

	// Создание индексов для записей на курсы
	enrollmentCollection := m.Database.Collection("enrollments")
	enrollmentIndexes := []mongo.IndexModel{
		{
			// Студент записывается на курс только один раз
			Keys: bson.D{
				{Key: "course_id", Value: 1},
				{Key: "student_id", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			// Индекс для выборки активных записей курса
			Keys: bson.D{
				{Key: "course_id", Value: 1},
				{Key: "blocked", Value: 1},
			},
		},
		{
			Keys: bson.D{{Key: "student_id", Value: 1}},
		},
	}

	if _, err := enrollmentCollection.Indexes().CreateMany(ctx, enrollmentIndexes); err != nil {
		return fmt.Errorf("ошибка создания индексов для записей: %w", err)
	}

	// Создание индексов для уведомлений
	notificationCollection := m.Database.Collection("notifications")
	notificationIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "is_read", Value: 1},
			},
		},
	}

	if _, err := notificationCollection.Indexes().CreateMany(ctx, notificationIndexes); err != nil {
		return fmt.Errorf("ошибка создания индексов для уведомлений: %w", err)
	}

	// Создание индексов для отзывов
	feedbackCollection := m.Database.Collection("feedback")
	feedbackIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "course_id", Value: 1},
				{Key: "sent_at", Value: -1},
			},
		},
	}

	if _, err := feedbackCollection.Indexes().CreateMany(ctx, feedbackIndexes); err != nil {
		return fmt.Errorf("ошибка создания индексов для отзывов: %w", err)
	}

	// Создание индексов для сообщений чата
	chatCollection := m.Database.Collection("chat_messages")
	chatIndexes := []mongo.IndexModel{
		{
			// Составной индекс для получения сообщений комнаты
			Keys: bson.D{
				{Key: "room", Value: 1},
				{Key: "sent_at", Value: -1},
			},
		},
	}

	if _, err := chatCollection.Indexes().CreateMany(ctx, chatIndexes); err != nil {
		return fmt.Errorf("ошибка создания индексов для сообщений чата: %w", err)
	}

	logging.Logger.Info("Индексы успешно созданы для всех коллекций")
	return nil
}
