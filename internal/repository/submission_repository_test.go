package repository_test

import (
	"encoding/json"
	"errors"
	"testing"

	"skillorbit_backend/internal/model"
	"skillorbit_backend/internal/repository"
	"skillorbit_backend/internal/util"
)

func grade(score, correct, total int) *model.GradeResult {
	return &model.GradeResult{Score: score, CorrectCount: correct, TotalQuestions: total}
}

func record(t *testing.T, repo *repository.SubmissionRepository, employee string, trainingID uint, g *model.GradeResult) (*model.AssignmentSubmission, error) {
	t.Helper()
	payload, _ := json.Marshal([]model.Answer{})
	return repo.Record(employee, trainingID, payload, payload, g)
}

func TestRecordFirstSubmission(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewSubmissionRepository(db)
	trainingID := seedTraining(t, db, "trainer.a")

	sub, err := record(t, repo, "emp.1", trainingID, grade(50, 1, 2))
	if err != nil {
		t.Fatalf("first record: %v", err)
	}
	if sub.Score != 50 || sub.ID == "" {
		t.Errorf("got score=%d id=%q", sub.Score, sub.ID)
	}
}

func TestRetakeReplacesLiveSubmission(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewSubmissionRepository(db)
	trainingID := seedTraining(t, db, "trainer.a")

	if _, err := record(t, repo, "emp.1", trainingID, grade(50, 1, 2)); err != nil {
		t.Fatal(err)
	}
	sub, err := record(t, repo, "emp.1", trainingID, grade(0, 0, 2))
	if err != nil {
		t.Fatalf("retake: %v", err)
	}
	// The retake replaces outright, even with a lower score.
	if sub.Score != 0 {
		t.Errorf("score = %d, want 0", sub.Score)
	}

	var count int64
	db.Model(&model.AssignmentSubmission{}).
		Where("training_id = ? AND employee_username = ?", trainingID, "emp.1").
		Count(&count)
	if count != 1 {
		t.Errorf("got %d rows for the pair, want exactly 1", count)
	}
}

func TestPerfectScoreIsTerminal(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewSubmissionRepository(db)
	trainingID := seedTraining(t, db, "trainer.a")

	if _, err := record(t, repo, "emp.1", trainingID, grade(100, 2, 2)); err != nil {
		t.Fatal(err)
	}

	_, err := record(t, repo, "emp.1", trainingID, grade(50, 1, 2))
	if !errors.Is(err, util.ErrSubmissionLocked) {
		t.Fatalf("expected ErrSubmissionLocked, got %v", err)
	}

	// The terminal row is untouched.
	kept, err := repo.FindByEmployeeAndTraining("emp.1", trainingID)
	if err != nil {
		t.Fatal(err)
	}
	if kept.Score != 100 {
		t.Errorf("terminal score = %d, want 100", kept.Score)
	}
}

func TestEligibility(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewSubmissionRepository(db)
	trainingID := seedTraining(t, db, "trainer.a")

	e, err := repo.EligibleToSubmit("emp.1", trainingID)
	if err != nil {
		t.Fatal(err)
	}
	if !e.Eligible || e.PriorScore != nil {
		t.Errorf("fresh pair: eligible=%v prior=%v", e.Eligible, e.PriorScore)
	}

	if _, err := record(t, repo, "emp.1", trainingID, grade(60, 3, 5)); err != nil {
		t.Fatal(err)
	}
	e, err = repo.EligibleToSubmit("emp.1", trainingID)
	if err != nil {
		t.Fatal(err)
	}
	if !e.Eligible || e.PriorScore == nil || *e.PriorScore != 60 {
		t.Errorf("after 60: eligible=%v prior=%v", e.Eligible, e.PriorScore)
	}

	if _, err := record(t, repo, "emp.1", trainingID, grade(100, 5, 5)); err != nil {
		t.Fatal(err)
	}
	e, err = repo.EligibleToSubmit("emp.1", trainingID)
	if err != nil {
		t.Fatal(err)
	}
	if e.Eligible || e.PriorScore == nil || *e.PriorScore != 100 {
		t.Errorf("after 100: eligible=%v prior=%v", e.Eligible, e.PriorScore)
	}
}

func TestSubmissionsIsolatedPerEmployee(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewSubmissionRepository(db)
	trainingID := seedTraining(t, db, "trainer.a")

	if _, err := record(t, repo, "emp.1", trainingID, grade(100, 2, 2)); err != nil {
		t.Fatal(err)
	}
	// emp.1's lock must not leak onto emp.2.
	if _, err := record(t, repo, "emp.2", trainingID, grade(50, 1, 2)); err != nil {
		t.Fatalf("second employee: %v", err)
	}

	subs, err := repo.ListByTraining(trainingID)
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 2 {
		t.Errorf("got %d submissions, want 2", len(subs))
	}
}

func TestFeedbackResponseRecordedOnce(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewFeedbackRepository(db)
	trainingID := seedTraining(t, db, "trainer.a")

	payload := json.RawMessage(`{"0":"Excellent"}`)
	if _, err := repo.RecordResponse("emp.1", trainingID, payload); err != nil {
		t.Fatalf("first response: %v", err)
	}

	_, err := repo.RecordResponse("emp.1", trainingID, payload)
	if !errors.Is(err, util.ErrFeedbackAlreadySubmitted) {
		t.Fatalf("expected ErrFeedbackAlreadySubmitted, got %v", err)
	}

	responded, err := repo.HasResponded("emp.1", trainingID)
	if err != nil || !responded {
		t.Errorf("HasResponded = %v, %v", responded, err)
	}
	other, err := repo.HasResponded("emp.2", trainingID)
	if err != nil || other {
		t.Errorf("unrelated employee marked as responded: %v, %v", other, err)
	}
}
