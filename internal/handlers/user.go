// internal/handlers/user.go

package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/quantumgenie/ElearningApplication/internal/storage"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserHandler struct {
	users *storage.UserStore
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"max=200"`
}

type UpdateProfileRequest struct {
	FirstName   string     `json:"first_name" binding:"omitempty,min=2,max=50"`
	LastName    string     `json:"last_name" binding:"omitempty,min=2,max=50"`
	Bio         string     `json:"bio" binding:"max=500"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
}

func NewUserHandler(users *storage.UserStore) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, _ := c.Get("user_id")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := h.users.FindByID(ctx, userID.(primitive.ObjectID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error fetching profile",
		})
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateProfile обновляет личные данные текущего пользователя.
// Пустые поля не затираются.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	update := bson.M{}
	if req.FirstName != "" {
		update["first_name"] = req.FirstName
	}
	if req.LastName != "" {
		update["last_name"] = req.LastName
	}
	if req.Bio != "" {
		update["bio"] = req.Bio
	}
	if req.DateOfBirth != nil {
		update["date_of_birth"] = req.DateOfBirth
	}

	if len(update) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Nothing to update",
		})
		return
	}

	userID, _ := c.Get("user_id")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := h.users.UpdateProfile(ctx, userID.(primitive.ObjectID), update); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error updating profile",
		})
		return
	}

	user, err := h.users.FindByID(ctx, userID.(primitive.ObjectID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error fetching profile",
		})
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	userID, _ := c.Get("user_id")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := h.users.UpdateStatus(ctx, userID.(primitive.ObjectID), req.Status); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error updating status",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Status updated successfully",
	})
}

// SearchUsers ищет пользователей по имени или email (для преподавателей)
func (h *UserHandler) SearchUsers(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Query parameter 'q' is required",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	users, err := h.users.Search(ctx, query, 20)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error searching users",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
	})
}
