package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatMessage — сообщение живого чата. Комната задается именем, без
// отдельной сущности в базе.
type ChatMessage struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Room    string             `bson:"room" json:"room" validate:"required,max=100"`
	UserID  primitive.ObjectID `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Message string             `bson:"message" json:"message" validate:"required,max=1000"`
	SentAt  time.Time          `bson:"sent_at" json:"sent_at"`
}
