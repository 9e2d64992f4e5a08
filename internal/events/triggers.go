package events

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/quantumgenie/ElearningApplication/internal/logging"
	"github.com/quantumgenie/ElearningApplication/internal/models"
)

type NotificationCreator interface {
	Create(ctx context.Context, userID, courseID primitive.ObjectID, message string) (*models.Notification, error)
}

type EnrollmentLister interface {
	ListActiveByCourse(ctx context.Context, courseID primitive.ObjectID) ([]models.Enrollment, error)
}

type CourseGetter interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Course, error)
}

type UserGetter interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// Deliverer — мост realtime-доставки; ошибки глотает сам
type Deliverer interface {
	Notify(ctx context.Context, notification *models.Notification)
}

// Triggers реагирует на доменные события хранилищ и порождает уведомления.
// Регистрируется на хуках MaterialStore.OnCreate / EnrollmentStore.OnCreate.
// Сбои триггера — независимый побочный эффект: логируются и не
// откатывают исходную доменную запись.
type Triggers struct {
	notifications NotificationCreator
	enrollments   EnrollmentLister
	courses       CourseGetter
	users         UserGetter
	notifier      Deliverer
}

func NewTriggers(
	notifications NotificationCreator,
	enrollments EnrollmentLister,
	courses CourseGetter,
	users UserGetter,
	notifier Deliverer,
) *Triggers {
	return &Triggers{
		notifications: notifications,
		enrollments:   enrollments,
		courses:       courses,
		users:         users,
		notifier:      notifier,
	}
}

// HandleMaterialCreated создает уведомление каждому активному студенту курса.
// Заблокированные записи исключаются на уровне выборки.
func (t *Triggers) HandleMaterialCreated(ctx context.Context, material *models.Material) {
	course, err := t.courses.FindByID(ctx, material.CourseID)
	if err != nil {
		logging.Logger.Errorf("Material trigger: failed to resolve course %s: %v", material.CourseID.Hex(), err)
		return
	}

	enrollments, err := t.enrollments.ListActiveByCourse(ctx, material.CourseID)
	if err != nil {
		logging.Logger.Errorf("Material trigger: failed to list enrollments for course %s: %v", material.CourseID.Hex(), err)
		return
	}

	message := fmt.Sprintf("'%s' added to the course '%s'.", material.Name, course.Title)

	for _, enrollment := range enrollments {
		notification, err := t.notifications.Create(ctx, enrollment.StudentID, material.CourseID, message)
		if err != nil {
			// Хранилище недоступно — оставшихся получателей не обрабатываем
			logging.Logger.Errorf("Material trigger: failed to store notification for user %s, aborting: %v", enrollment.StudentID.Hex(), err)
			return
		}

		t.notifier.Notify(ctx, notification)
	}
}

// HandleEnrollmentCreated уведомляет создателя курса о новом студенте.
// Сам студент уведомление не получает.
func (t *Triggers) HandleEnrollmentCreated(ctx context.Context, enrollment *models.Enrollment) {
	course, err := t.courses.FindByID(ctx, enrollment.CourseID)
	if err != nil {
		logging.Logger.Errorf("Enrollment trigger: failed to resolve course %s: %v", enrollment.CourseID.Hex(), err)
		return
	}

	student, err := t.users.FindByID(ctx, enrollment.StudentID)
	if err != nil {
		logging.Logger.Errorf("Enrollment trigger: failed to resolve student %s: %v", enrollment.StudentID.Hex(), err)
		return
	}

	message := fmt.Sprintf("'%s %s' has enrolled in '%s'.", student.FirstName, student.LastName, course.Title)

	notification, err := t.notifications.Create(ctx, course.CreatorID, course.ID, message)
	if err != nil {
		logging.Logger.Errorf("Enrollment trigger: failed to store notification for user %s: %v", course.CreatorID.Hex(), err)
		return
	}

	t.notifier.Notify(ctx, notification)
}
