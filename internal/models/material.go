package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Material — учебный материал курса. Хранение самих файлов вне зоны
// ответственности сервера, здесь только путь.
type Material struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	CourseID  primitive.ObjectID `bson:"course_id" json:"course_id"`
	CreatorID primitive.ObjectID `bson:"creator_id" json:"creator_id"`
	Name      string             `bson:"name" json:"name" validate:"required,min=1,max=255"`
	Path      string             `bson:"path,omitempty" json:"path,omitempty"`
	AddedAt   time.Time          `bson:"added_at" json:"added_at"`
}
