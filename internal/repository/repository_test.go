package repository_test

import (
	"fmt"
	"testing"

	"skillorbit_backend/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database with the same error
// translation the production MySQL connection uses, so duplicate-key races
// surface as gorm.ErrDuplicatedKey here too.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}

	err = db.AutoMigrate(
		&model.Training{},
		&model.TrainingTrainer{},
		&model.TrainingAssignment{},
		&model.SharedAssignment{},
		&model.AssignmentSubmission{},
		&model.SharedFeedback{},
		&model.FeedbackResponse{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// seedTraining creates a training with the given trainers and returns its ID.
func seedTraining(t *testing.T, db *gorm.DB, trainers ...string) uint {
	t.Helper()

	training := &model.Training{Name: "Effective Code Review"}
	for _, username := range trainers {
		training.Trainers = append(training.Trainers, model.TrainingTrainer{Username: username})
	}
	if err := db.Create(training).Error; err != nil {
		t.Fatalf("seed training: %v", err)
	}
	return training.ID
}

func assignEmployee(t *testing.T, db *gorm.DB, trainingID uint, employee, manager string) {
	t.Helper()

	a := &model.TrainingAssignment{
		TrainingID:       trainingID,
		EmployeeUsername: employee,
		ManagerUsername:  manager,
	}
	if err := db.Create(a).Error; err != nil {
		t.Fatalf("seed assignment: %v", err)
	}
}

func assignmentWithQuestions(t *testing.T, title string) *model.SharedAssignment {
	t.Helper()

	rec := &model.SharedAssignment{Title: title}
	err := rec.SetQuestions([]model.Question{
		{
			Text: "what gates merge?",
			Kind: model.SingleChoice,
			Options: []model.Option{
				{Text: "review", IsCorrect: true},
				{Text: "luck"},
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return rec
}
