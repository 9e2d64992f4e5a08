package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification — постоянная запись уведомления. Получатель и курс неизменны
// после создания, мутирует только флаг is_read.
type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	CourseID  primitive.ObjectID `bson:"course_id" json:"course_id"`
	Message   string             `bson:"message" json:"message"`
	IsRead    bool               `bson:"is_read" json:"is_read"`
	ReadAt    *time.Time         `bson:"read_at,omitempty" json:"read_at,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
