package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/quantumgenie/ElearningApplication/internal/models"
)

// Фейки хранилищ: держат данные в памяти и фиксируют вызовы

type fakeNotificationStore struct {
	created   []models.Notification
	failAfter int // после скольких успешных Create начинать возвращать ошибку; -1 — никогда
}

func (f *fakeNotificationStore) Create(ctx context.Context, userID, courseID primitive.ObjectID, message string) (*models.Notification, error) {
	if f.failAfter >= 0 && len(f.created) >= f.failAfter {
		return nil, errors.New("storage unavailable")
	}
	notification := models.Notification{
		ID:       primitive.NewObjectID(),
		UserID:   userID,
		CourseID: courseID,
		Message:  message,
	}
	f.created = append(f.created, notification)
	return &notification, nil
}

type fakeEnrollmentStore struct {
	enrollments []models.Enrollment
	err         error
}

func (f *fakeEnrollmentStore) ListActiveByCourse(ctx context.Context, courseID primitive.ObjectID) ([]models.Enrollment, error) {
	if f.err != nil {
		return nil, f.err
	}
	var active []models.Enrollment
	for _, e := range f.enrollments {
		if e.CourseID == courseID && !e.Blocked {
			active = append(active, e)
		}
	}
	return active, nil
}

type fakeCourseStore struct {
	courses map[primitive.ObjectID]*models.Course
}

func (f *fakeCourseStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Course, error) {
	course, ok := f.courses[id]
	if !ok {
		return nil, errors.New("course not found")
	}
	return course, nil
}

type fakeUserStore struct {
	users map[primitive.ObjectID]*models.User
}

func (f *fakeUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return user, nil
}

type fakeDeliverer struct {
	delivered []*models.Notification
}

func (f *fakeDeliverer) Notify(ctx context.Context, notification *models.Notification) {
	f.delivered = append(f.delivered, notification)
}

type fixture struct {
	notifications *fakeNotificationStore
	enrollments   *fakeEnrollmentStore
	courses       *fakeCourseStore
	users         *fakeUserStore
	deliverer     *fakeDeliverer
	triggers      *Triggers
}

func newFixture() *fixture {
	f := &fixture{
		notifications: &fakeNotificationStore{failAfter: -1},
		enrollments:   &fakeEnrollmentStore{},
		courses:       &fakeCourseStore{courses: map[primitive.ObjectID]*models.Course{}},
		users:         &fakeUserStore{users: map[primitive.ObjectID]*models.User{}},
		deliverer:     &fakeDeliverer{},
	}
	f.triggers = NewTriggers(f.notifications, f.enrollments, f.courses, f.users, f.deliverer)
	return f
}

func (f *fixture) addCourse(title string) *models.Course {
	course := &models.Course{
		ID:        primitive.NewObjectID(),
		Title:     title,
		CreatorID: primitive.NewObjectID(),
	}
	f.courses.courses[course.ID] = course
	return course
}

func (f *fixture) enroll(courseID primitive.ObjectID, blocked bool) primitive.ObjectID {
	studentID := primitive.NewObjectID()
	f.enrollments.enrollments = append(f.enrollments.enrollments, models.Enrollment{
		ID:        primitive.NewObjectID(),
		CourseID:  courseID,
		StudentID: studentID,
		Blocked:   blocked,
	})
	return studentID
}

func TestHandleMaterialCreatedNotifiesActiveStudents(t *testing.T) {
	f := newFixture()
	course := f.addCourse("Advanced Databases")

	first := f.enroll(course.ID, false)
	second := f.enroll(course.ID, false)

	f.triggers.HandleMaterialCreated(context.Background(), &models.Material{
		CourseID: course.ID,
		Name:     "Lecture 1",
	})

	require.Len(t, f.notifications.created, 2)
	require.Len(t, f.deliverer.delivered, 2)

	want := "'Lecture 1' added to the course 'Advanced Databases'."
	recipients := map[primitive.ObjectID]bool{}
	for _, n := range f.notifications.created {
		assert.Equal(t, want, n.Message)
		assert.Equal(t, course.ID, n.CourseID)
		recipients[n.UserID] = true
	}
	assert.True(t, recipients[first])
	assert.True(t, recipients[second])
}

func TestHandleMaterialCreatedSkipsBlockedStudents(t *testing.T) {
	f := newFixture()
	course := f.addCourse("Networks")

	active := f.enroll(course.ID, false)
	f.enroll(course.ID, true) // заблокирован — уведомление не создается

	f.triggers.HandleMaterialCreated(context.Background(), &models.Material{
		CourseID: course.ID,
		Name:     "Exam prep",
	})

	require.Len(t, f.notifications.created, 1)
	assert.Equal(t, active, f.notifications.created[0].UserID)
}

func TestHandleMaterialCreatedNoEnrollments(t *testing.T) {
	f := newFixture()
	course := f.addCourse("Empty Course")

	f.triggers.HandleMaterialCreated(context.Background(), &models.Material{
		CourseID: course.ID,
		Name:     "Syllabus",
	})

	assert.Empty(t, f.notifications.created)
	assert.Empty(t, f.deliverer.delivered)
}

func TestHandleMaterialCreatedUnknownCourse(t *testing.T) {
	f := newFixture()

	// Курс не существует — триггер молча завершается
	f.triggers.HandleMaterialCreated(context.Background(), &models.Material{
		CourseID: primitive.NewObjectID(),
		Name:     "Orphan",
	})

	assert.Empty(t, f.notifications.created)
}

func TestHandleMaterialCreatedStorageFailureAborts(t *testing.T) {
	f := newFixture()
	course := f.addCourse("Compilers")
	for i := 0; i < 4; i++ {
		f.enroll(course.ID, false)
	}

	// Вторая запись падает — оставшиеся получатели не обрабатываются
	f.notifications.failAfter = 1

	f.triggers.HandleMaterialCreated(context.Background(), &models.Material{
		CourseID: course.ID,
		Name:     "Lecture 2",
	})

	assert.Len(t, f.notifications.created, 1)
	assert.Len(t, f.deliverer.delivered, 1)
}

func TestHandleEnrollmentCreatedNotifiesCreatorOnly(t *testing.T) {
	f := newFixture()
	course := f.addCourse("Operating Systems")

	student := &models.User{
		ID:        primitive.NewObjectID(),
		FirstName: "Jane",
		LastName:  "Doe",
		Role:      models.RoleStudent,
	}
	f.users.users[student.ID] = student

	f.triggers.HandleEnrollmentCreated(context.Background(), &models.Enrollment{
		CourseID:  course.ID,
		StudentID: student.ID,
	})

	require.Len(t, f.notifications.created, 1)
	notification := f.notifications.created[0]
	assert.Equal(t, course.CreatorID, notification.UserID)
	assert.Equal(t, "'Jane Doe' has enrolled in 'Operating Systems'.", notification.Message)

	require.Len(t, f.deliverer.delivered, 1)
	assert.Equal(t, course.CreatorID, f.deliverer.delivered[0].UserID)
}

func TestHandleEnrollmentCreatedUnknownStudent(t *testing.T) {
	f := newFixture()
	course := f.addCourse("Algorithms")

	f.triggers.HandleEnrollmentCreated(context.Background(), &models.Enrollment{
		CourseID:  course.ID,
		StudentID: primitive.NewObjectID(),
	})

	assert.Empty(t, f.notifications.created)
}

func TestHandleEnrollmentCreatedStorageFailure(t *testing.T) {
	f := newFixture()
	course := f.addCourse("Statistics")

	student := &models.User{ID: primitive.NewObjectID(), FirstName: "John", LastName: "Smith"}
	f.users.users[student.ID] = student

	f.notifications.failAfter = 0

	f.triggers.HandleEnrollmentCreated(context.Background(), &models.Enrollment{
		CourseID:  course.ID,
		StudentID: student.ID,
	})

	// Запись не удалась — доставка не вызывается
	assert.Empty(t, f.deliverer.delivered)
}
