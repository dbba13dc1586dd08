package repository_test

import (
	"errors"
	"testing"

	"skillorbit_backend/internal/model"
	"skillorbit_backend/internal/repository"
	"skillorbit_backend/internal/util"
)

func TestPublishFirstWriterWinsAuthorship(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewAssignmentRepository(db)
	trainingID := seedTraining(t, db, "trainer.a", "trainer.b")

	first, err := repo.Publish(trainingID, "trainer.a", assignmentWithQuestions(t, "Quiz v1"))
	if err != nil {
		t.Fatalf("first publish: %v", err)
	}
	if first.TrainerUsername != "trainer.a" {
		t.Errorf("author = %q, want trainer.a", first.TrainerUsername)
	}

	_, err = repo.Publish(trainingID, "trainer.b", assignmentWithQuestions(t, "Quiz v2"))
	var conflict *util.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("second trainer should get ConflictError, got %v", err)
	}
	if conflict.ExistingAuthor != "trainer.a" {
		t.Errorf("conflict names %q, want trainer.a", conflict.ExistingAuthor)
	}

	// The loser's attempt must not have touched the record.
	kept, err := repo.FindByTraining(trainingID)
	if err != nil {
		t.Fatal(err)
	}
	if kept.Title != "Quiz v1" || kept.TrainerUsername != "trainer.a" {
		t.Errorf("record was disturbed: title=%q author=%q", kept.Title, kept.TrainerUsername)
	}
}

func TestPublishSameAuthorEdits(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewAssignmentRepository(db)
	trainingID := seedTraining(t, db, "trainer.a")

	if _, err := repo.Publish(trainingID, "trainer.a", assignmentWithQuestions(t, "Quiz v1")); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	updated, err := repo.Publish(trainingID, "trainer.a", assignmentWithQuestions(t, "Quiz v2"))
	if err != nil {
		t.Fatalf("republish by author: %v", err)
	}
	if updated.Title != "Quiz v2" {
		t.Errorf("title = %q, want Quiz v2", updated.Title)
	}

	var count int64
	db.Model(&model.SharedAssignment{}).Where("training_id = ?", trainingID).Count(&count)
	if count != 1 {
		t.Errorf("got %d rows for training, want exactly 1", count)
	}
}

func TestPublishIndependentPerTraining(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewAssignmentRepository(db)
	first := seedTraining(t, db, "trainer.a", "trainer.b")
	second := seedTraining(t, db, "trainer.a", "trainer.b")

	if _, err := repo.Publish(first, "trainer.a", assignmentWithQuestions(t, "A's quiz")); err != nil {
		t.Fatal(err)
	}
	// A different training is a fresh slate for the other trainer.
	if _, err := repo.Publish(second, "trainer.b", assignmentWithQuestions(t, "B's quiz")); err != nil {
		t.Fatalf("publish on other training: %v", err)
	}
}

func TestExistsAuthoredBy(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewAssignmentRepository(db)
	trainingID := seedTraining(t, db, "trainer.a", "trainer.b")

	if _, err := repo.Publish(trainingID, "trainer.a", assignmentWithQuestions(t, "Quiz")); err != nil {
		t.Fatal(err)
	}

	mine, err := repo.ExistsAuthoredBy(trainingID, "trainer.a")
	if err != nil || !mine {
		t.Errorf("author check failed: mine=%v err=%v", mine, err)
	}
	theirs, err := repo.ExistsAuthoredBy(trainingID, "trainer.b")
	if err != nil || theirs {
		t.Errorf("co-trainer should not be the author: theirs=%v err=%v", theirs, err)
	}
}

func TestFeedbackPublishConflictIndependentOfAssignment(t *testing.T) {
	db := newTestDB(t)
	assignments := repository.NewAssignmentRepository(db)
	feedback := repository.NewFeedbackRepository(db)
	trainingID := seedTraining(t, db, "trainer.a", "trainer.b")

	// Trainer A owns the assignment; trainer B can still own the feedback form.
	if _, err := assignments.Publish(trainingID, "trainer.a", assignmentWithQuestions(t, "Quiz")); err != nil {
		t.Fatal(err)
	}

	form := &model.SharedFeedback{}
	if err := form.SetCustomQuestions(nil); err != nil {
		t.Fatal(err)
	}
	published, err := feedback.Publish(trainingID, "trainer.b", form)
	if err != nil {
		t.Fatalf("feedback publish: %v", err)
	}
	if published.TrainerUsername != "trainer.b" {
		t.Errorf("feedback author = %q, want trainer.b", published.TrainerUsername)
	}

	// And now A loses the feedback race.
	again := &model.SharedFeedback{}
	if err := again.SetCustomQuestions(nil); err != nil {
		t.Fatal(err)
	}
	_, err = feedback.Publish(trainingID, "trainer.a", again)
	var conflict *util.ConflictError
	if !errors.As(err, &conflict) || conflict.ExistingAuthor != "trainer.b" {
		t.Fatalf("expected ConflictError naming trainer.b, got %v", err)
	}
}
