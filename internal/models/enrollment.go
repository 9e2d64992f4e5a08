package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Enrollment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	CourseID  primitive.ObjectID `bson:"course_id" json:"course_id"`
	StudentID primitive.ObjectID `bson:"student_id" json:"student_id"`

	// Заблокированный студент остается записанным, но не получает уведомления
	Blocked bool `bson:"blocked" json:"blocked"`

	EnrolledAt time.Time `bson:"enrolled_at" json:"enrolled_at"`
}
