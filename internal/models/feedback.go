package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Feedback struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	CourseID primitive.ObjectID `bson:"course_id" json:"course_id"`
	UserID   primitive.ObjectID `bson:"user_id" json:"user_id"`
	Message  string             `bson:"message" json:"message" validate:"required,max=2000"`
	SentAt   time.Time          `bson:"sent_at" json:"sent_at"`
}
