package service_test

import (
	"errors"
	"testing"

	"skillorbit_backend/internal/model"
	"skillorbit_backend/internal/service"
	"skillorbit_backend/internal/util"
)

func TestCreateTrainingBindsTrainers(t *testing.T) {
	f := newFixture(t)

	training, err := f.training.CreateTraining(service.TrainingReq{
		Name:         "Threat Modeling",
		TrainingDate: "2026-09-15",
		Trainers:     []string{"trainer.a", "trainer.b"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if training.TrainingDate == nil {
		t.Error("training date not parsed")
	}

	got, err := f.training.GetTraining(training.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Trainers) != 2 {
		t.Errorf("got %d trainers, want 2", len(got.Trainers))
	}
}

func TestCreateTrainingValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.training.CreateTraining(service.TrainingReq{Name: "No trainers"})
	var validation *util.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	_, err = f.training.CreateTraining(service.TrainingReq{
		Name:         "Bad date",
		TrainingDate: "15/09/2026",
		Trainers:     []string{"trainer.a"},
	})
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError for date, got %v", err)
	}
}

func TestAssignTraining(t *testing.T) {
	f := newFixture(t)
	trainingID := f.seedTraining(t, []string{"trainer.a"})

	if _, err := f.training.AssignTraining("mgr.1", service.AssignTrainingReq{
		TrainingID:       trainingID,
		EmployeeUsername: "emp.1",
	}); err != nil {
		t.Fatalf("assign: %v", err)
	}

	_, err := f.training.AssignTraining("mgr.2", service.AssignTrainingReq{
		TrainingID:       trainingID,
		EmployeeUsername: "emp.1",
	})
	if !errors.Is(err, util.ErrAlreadyAssigned) {
		t.Fatalf("expected ErrAlreadyAssigned, got %v", err)
	}

	_, err = f.training.AssignTraining("mgr.1", service.AssignTrainingReq{
		TrainingID:       999,
		EmployeeUsername: "emp.1",
	})
	if !errors.Is(err, util.ErrTrainingNotFound) {
		t.Fatalf("expected ErrTrainingNotFound, got %v", err)
	}

	mine, err := f.training.MyTrainings("emp.1")
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 1 || mine[0].ID != trainingID {
		t.Errorf("MyTrainings = %v", mine)
	}

	team, err := f.training.TeamAssignments("mgr.1")
	if err != nil {
		t.Fatal(err)
	}
	if len(team) != 1 {
		t.Errorf("TeamAssignments = %v", team)
	}
}

func TestUnassignTrainingOwnership(t *testing.T) {
	f := newFixture(t)
	trainingID := f.seedTraining(t, []string{"trainer.a"}, "emp.1")

	err := f.training.UnassignTraining("mgr.other", trainingID, "emp.1")
	var validation *util.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("foreign manager should be rejected, got %v", err)
	}

	if err := f.training.UnassignTraining("mgr.1", trainingID, "emp.1"); err != nil {
		t.Fatalf("owning manager unassign: %v", err)
	}
}

func TestDeleteTrainingCascades(t *testing.T) {
	f := newFixture(t)
	trainingID := f.seedTraining(t, []string{"trainer.a"}, "emp.1")

	if _, err := f.shared.PublishAssignment("trainer.a", quizRequest(trainingID)); err != nil {
		t.Fatal(err)
	}
	if _, err := f.shared.PublishFeedback("trainer.a", feedbackReq(trainingID)); err != nil {
		t.Fatal(err)
	}
	if _, err := f.shared.SubmitExam("emp.1", submitReq(trainingID, quizAnswers(true, true, false, "x"))); err != nil {
		t.Fatal(err)
	}
	if _, err := f.shared.SubmitFeedback("emp.1", feedbackSubmit(trainingID)); err != nil {
		t.Fatal(err)
	}

	if err := f.training.DeleteTraining(trainingID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := f.shared.StartExam("emp.1", trainingID); !errors.Is(err, util.ErrTrainingNotFound) {
		t.Errorf("exam still reachable: %v", err)
	}

	for _, table := range []interface{}{
		&model.SharedAssignment{},
		&model.AssignmentSubmission{},
		&model.SharedFeedback{},
		&model.FeedbackResponse{},
		&model.TrainingAssignment{},
		&model.TrainingTrainer{},
	} {
		var count int64
		f.db.Model(table).Where("training_id = ?", trainingID).Count(&count)
		if count != 0 {
			t.Errorf("%T: %d rows survived the cascade", table, count)
		}
	}

	if err := f.training.DeleteTraining(trainingID); !errors.Is(err, util.ErrTrainingNotFound) {
		t.Errorf("second delete: %v", err)
	}
}
