package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Email        string             `bson:"email" json:"email" validate:"required,email"`
	PasswordHash string             `bson:"password_hash" json:"-"`

	// Личная информация
	FirstName   string     `bson:"first_name" json:"first_name" validate:"required,min=2,max=50"`
	LastName    string     `bson:"last_name" json:"last_name" validate:"required,min=2,max=50"`
	DateOfBirth *time.Time `bson:"date_of_birth,omitempty" json:"date_of_birth,omitempty"`
	Bio         string     `bson:"bio,omitempty" json:"bio,omitempty" validate:"max=500"`
	Status      string     `bson:"status,omitempty" json:"status,omitempty" validate:"max=200"`

	// Роль определяет права: преподаватель создает курсы, студент записывается
	Role string `bson:"role" json:"role" validate:"required,oneof=teacher student"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Роли пользователей
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func (u *User) IsTeacher() bool {
	return u.Role == RoleTeacher
}
