// internal/handlers/course.go

package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/quantumgenie/ElearningApplication/internal/models"
	"github.com/quantumgenie/ElearningApplication/internal/storage"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type CourseHandler struct {
	courses     *storage.CourseStore
	materials   *storage.MaterialStore
	enrollments *storage.EnrollmentStore
	feedback    *storage.FeedbackStore
}

type CreateCourseRequest struct {
	Title       string     `json:"title" binding:"required,min=3,max=255"`
	Level       string     `json:"level" binding:"required,oneof=L4 L5 L6"`
	Description string     `json:"description" binding:"max=2000"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
}

type UpdateCourseRequest struct {
	Title       string `json:"title" binding:"omitempty,min=3,max=255"`
	Level       string `json:"level" binding:"omitempty,oneof=L4 L5 L6"`
	Description string `json:"description" binding:"max=2000"`
}

type AddMaterialRequest struct {
	Name string `json:"name" binding:"required,min=1,max=255"`
	Path string `json:"path" binding:"max=500"`
}

type BlockStudentRequest struct {
	Blocked *bool `json:"blocked" binding:"required"`
}

type SendFeedbackRequest struct {
	Message string `json:"message" binding:"required,max=2000"`
}

func NewCourseHandler(
	courses *storage.CourseStore,
	materials *storage.MaterialStore,
	enrollments *storage.EnrollmentStore,
	feedback *storage.FeedbackStore,
) *CourseHandler {
	return &CourseHandler{
		courses:     courses,
		materials:   materials,
		enrollments: enrollments,
		feedback:    feedback,
	}
}

func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	userID, _ := c.Get("user_id")

	course := models.Course{
		Title:       req.Title,
		Level:       req.Level,
		Description: req.Description,
		CreatorID:   userID.(primitive.ObjectID),
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := h.courses.Create(ctx, &course); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error creating course",
		})
		return
	}

	c.JSON(http.StatusCreated, course)
}

func (h *CourseHandler) GetCourses(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	courses, err := h.courses.List(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error fetching courses",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"courses": courses,
	})
}

func (h *CourseHandler) GetCourse(c *gin.Context) {
	courseID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid course ID",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	course, err := h.courses.FindByID(ctx, courseID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Course not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error fetching course",
		})
		return
	}

	materials, err := h.materials.ListByCourse(ctx, courseID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error fetching materials",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"course":    course,
		"materials": materials,
	})
}

func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	courseID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid course ID",
		})
		return
	}

	var req UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if !h.requireCreator(c, ctx, courseID) {
		return
	}

	update := bson.M{}
	if req.Title != "" {
		update["title"] = req.Title
	}
	if req.Level != "" {
		update["level"] = req.Level
	}
	if req.Description != "" {
		update["description"] = req.Description
	}

	if len(update) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Nothing to update",
		})
		return
	}

	if err := h.courses.Update(ctx, courseID, update); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error updating course",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Course updated successfully",
	})
}

func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	courseID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid course ID",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if !h.requireCreator(c, ctx, courseID) {
		return
	}

	// Курс удаляется вместе с материалами и записями студентов.
	// Уведомления сохраняются как история.
	if err := h.materials.DeleteByCourse(ctx, courseID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error deleting course materials",
		})
		return
	}
	if err := h.enrollments.DeleteByCourse(ctx, courseID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error deleting course enrollments",
		})
		return
	}
	if err := h.courses.Delete(ctx, courseID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error deleting course",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Course deleted successfully",
	})
}

// AddMaterial добавляет материал курса. Уведомления студентам создает
// слой триггеров по хуку вставки, до отправки ответа.
func (h *CourseHandler) AddMaterial(c *gin.Context) {
	courseID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid course ID",
		})
		return
	}

	var req AddMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if !h.requireCreator(c, ctx, courseID) {
		return
	}

	userID, _ := c.Get("user_id")

	material := models.Material{
		CourseID:  courseID,
		CreatorID: userID.(primitive.ObjectID),
		Name:      req.Name,
		Path:      req.Path,
	}

	if err := h.materials.Create(ctx, &material); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error adding material",
		})
		return
	}

	c.JSON(http.StatusCreated, material)
}

func (h *CourseHandler) GetMaterials(c *gin.Context) {
	courseID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid course ID",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	materials, err := h.materials.ListByCourse(ctx, courseID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error fetching materials",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"materials": materials,
	})
}

func (h *CourseHandler) DeleteMaterial(c *gin.Context) {
	materialID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid material ID",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	material, err := h.materials.FindByID(ctx, materialID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Material not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error fetching material",
		})
		return
	}

	if !h.requireCreator(c, ctx, material.CourseID) {
		return
	}

	if err := h.materials.Delete(ctx, materialID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error deleting material",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Material deleted successfully",
	})
}

// Enroll записывает текущего студента на курс. Уведомление создателю
// курса создает слой триггеров по хуку вставки.
func (h *CourseHandler) Enroll(c *gin.Context) {
	courseID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid course ID",
		})
		return
	}

	userID, _ := c.Get("user_id")
	studentID := userID.(primitive.ObjectID)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := h.courses.FindByID(ctx, courseID); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Course not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error fetching course",
		})
		return
	}

	if _, err := h.enrollments.FindByCourseAndStudent(ctx, courseID, studentID); err == nil {
		c.JSON(http.StatusConflict, gin.H{
			"error": "Already enrolled in this course",
		})
		return
	} else if err != mongo.ErrNoDocuments {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Database error",
		})
		return
	}

	enrollment := models.Enrollment{
		CourseID:  courseID,
		StudentID: studentID,
	}

	if err := h.enrollments.Create(ctx, &enrollment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error enrolling in course",
		})
		return
	}

	c.JSON(http.StatusCreated, enrollment)
}

func (h *CourseHandler) Unenroll(c *gin.Context) {
	courseID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid course ID",
		})
		return
	}

	userID, _ := c.Get("user_id")
	studentID := userID.(primitive.ObjectID)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	enrollment, err := h.enrollments.FindByCourseAndStudent(ctx, courseID, studentID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Enrollment not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Database error",
		})
		return
	}

	if err := h.enrollments.Delete(ctx, enrollment.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error leaving course",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Unenrolled from course successfully",
	})
}

func (h *CourseHandler) GetEnrollments(c *gin.Context) {
	courseID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid course ID",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if !h.requireCreator(c, ctx, courseID) {
		return
	}

	enrollments, err := h.enrollments.ListByCourse(ctx, courseID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error fetching enrollments",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"enrollments": enrollments,
	})
}

// BlockStudent блокирует или разблокирует студента на курсе.
// Заблокированный студент перестает получать уведомления о материалах.
func (h *CourseHandler) BlockStudent(c *gin.Context) {
	enrollmentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid enrollment ID",
		})
		return
	}

	var req BlockStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	enrollment, err := h.enrollments.FindByID(ctx, enrollmentID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Enrollment not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Database error",
		})
		return
	}

	if !h.requireCreator(c, ctx, enrollment.CourseID) {
		return
	}

	if err := h.enrollments.SetBlocked(ctx, enrollmentID, *req.Blocked); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error updating enrollment",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Enrollment updated successfully",
		"blocked": *req.Blocked,
	})
}

// RemoveStudent отчисляет студента с курса по решению создателя.
// В отличие от блокировки запись удаляется полностью.
func (h *CourseHandler) RemoveStudent(c *gin.Context) {
	enrollmentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid enrollment ID",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	enrollment, err := h.enrollments.FindByID(ctx, enrollmentID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Enrollment not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Database error",
		})
		return
	}

	if !h.requireCreator(c, ctx, enrollment.CourseID) {
		return
	}

	if err := h.enrollments.Delete(ctx, enrollmentID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error removing student",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Student removed from course",
	})
}

// SendFeedback принимает отзыв от записанного студента
func (h *CourseHandler) SendFeedback(c *gin.Context) {
	courseID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid course ID",
		})
		return
	}

	var req SendFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	userID, _ := c.Get("user_id")
	studentID := userID.(primitive.ObjectID)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := h.enrollments.FindByCourseAndStudent(ctx, courseID, studentID); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Must be enrolled to leave feedback",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Database error",
		})
		return
	}

	feedback := models.Feedback{
		CourseID: courseID,
		UserID:   studentID,
		Message:  req.Message,
	}

	if err := h.feedback.Create(ctx, &feedback); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error sending feedback",
		})
		return
	}

	c.JSON(http.StatusCreated, feedback)
}

func (h *CourseHandler) GetFeedback(c *gin.Context) {
	courseID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid course ID",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if !h.requireCreator(c, ctx, courseID) {
		return
	}

	feedback, err := h.feedback.ListByCourse(ctx, courseID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Error fetching feedback",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"feedback": feedback,
	})
}

// requireCreator проверяет, что текущий пользователь — создатель курса.
// При отказе сам пишет ответ и возвращает false.
func (h *CourseHandler) requireCreator(c *gin.Context, ctx context.Context, courseID primitive.ObjectID) bool {
	course, err := h.courses.FindByID(ctx, courseID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Course not found",
			})
			return false
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Database error",
		})
		return false
	}

	userID, _ := c.Get("user_id")
	if course.CreatorID != userID.(primitive.ObjectID) {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Only the course creator can perform this action",
		})
		return false
	}

	return true
}
