package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Course struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title       string             `bson:"title" json:"title" validate:"required,min=3,max=255"`
	Level       string             `bson:"level" json:"level" validate:"required,oneof=L4 L5 L6"`
	Description string             `bson:"description,omitempty" json:"description,omitempty" validate:"max=2000"`

	// Создатель курса (преподаватель) — получатель уведомлений о записи студентов
	CreatorID primitive.ObjectID `bson:"creator_id" json:"creator_id"`

	StartDate *time.Time `bson:"start_date,omitempty" json:"start_date,omitempty"`
	EndDate   *time.Time `bson:"end_date,omitempty" json:"end_date,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Уровни курсов
const (
	CourseLevel4 = "L4"
	CourseLevel5 = "L5"
	CourseLevel6 = "L6"
)
