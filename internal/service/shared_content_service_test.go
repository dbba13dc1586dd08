package service_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"skillorbit_backend/internal/grading"
	"skillorbit_backend/internal/util"
)

func TestPublishAssignmentRequiresTrainerBinding(t *testing.T) {
	f := newFixture(t)
	trainingID := f.seedTraining(t, []string{"trainer.a"})

	_, err := f.shared.PublishAssignment("trainer.b", quizRequest(trainingID))
	if !errors.Is(err, util.ErrNotTrainerForTraining) {
		t.Fatalf("unbound trainer should be rejected, got %v", err)
	}

	_, err = f.shared.PublishAssignment("trainer.a", quizRequest(999))
	if !errors.Is(err, util.ErrTrainingNotFound) {
		t.Fatalf("unknown training should 404, got %v", err)
	}
}

func TestPublishAssignmentValidation(t *testing.T) {
	f := newFixture(t)
	trainingID := f.seedTraining(t, []string{"trainer.a"})

	t.Run("no questions", func(t *testing.T) {
		req := quizRequest(trainingID)
		req.Questions = nil
		_, err := f.shared.PublishAssignment("trainer.a", req)
		var validation *util.ValidationError
		if !errors.As(err, &validation) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("choice with one option", func(t *testing.T) {
		req := quizRequest(trainingID)
		req.Questions[0].Options = req.Questions[0].Options[:1]
		_, err := f.shared.PublishAssignment("trainer.a", req)
		var validation *util.ValidationError
		if !errors.As(err, &validation) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("choice without a correct option", func(t *testing.T) {
		req := quizRequest(trainingID)
		for i := range req.Questions[0].Options {
			req.Questions[0].Options[i].IsCorrect = false
		}
		_, err := f.shared.PublishAssignment("trainer.a", req)
		var validation *util.ValidationError
		if !errors.As(err, &validation) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("unknown kind", func(t *testing.T) {
		req := quizRequest(trainingID)
		req.Questions[0].Kind = "essay"
		_, err := f.shared.PublishAssignment("trainer.a", req)
		var validation *util.ValidationError
		if !errors.As(err, &validation) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})
}

func TestCoTrainerConflictSurfacesAuthor(t *testing.T) {
	f := newFixture(t)
	trainingID := f.seedTraining(t, []string{"trainer.a", "trainer.b"})

	if _, err := f.shared.PublishAssignment("trainer.a", quizRequest(trainingID)); err != nil {
		t.Fatalf("first publish: %v", err)
	}

	_, err := f.shared.PublishAssignment("trainer.b", quizRequest(trainingID))
	var conflict *util.ConflictError
	if !errors.As(err, &conflict) || conflict.ExistingAuthor != "trainer.a" {
		t.Fatalf("expected conflict naming trainer.a, got %v", err)
	}

	// The loser can still see who owns the content.
	view, err := f.shared.OpenAssignmentForTrainer(trainingID, "trainer.b")
	if err != nil {
		t.Fatal(err)
	}
	if !view.Shared || view.IsAuthor || view.Author != "trainer.a" {
		t.Errorf("view = shared:%v isAuthor:%v author:%q", view.Shared, view.IsAuthor, view.Author)
	}
}

func TestStartExamStripsAnswerKey(t *testing.T) {
	f := newFixture(t)
	trainingID := f.seedTraining(t, []string{"trainer.a"}, "emp.1")

	if _, err := f.shared.PublishAssignment("trainer.a", quizRequest(trainingID)); err != nil {
		t.Fatal(err)
	}

	result, err := f.shared.StartExam("emp.1", trainingID)
	if err != nil {
		t.Fatal(err)
	}
	if result.Status != "shared" || result.Exam == nil {
		t.Fatalf("status = %q, exam = %v", result.Status, result.Exam)
	}
	if len(result.Exam.Questions) != 4 {
		t.Fatalf("got %d questions, want 4", len(result.Exam.Questions))
	}

	// The serialized payload must never carry a correctness flag.
	data, err := json.Marshal(result.Exam)
	if err != nil {
		t.Fatal(err)
	}
	for _, leaked := range []string{"isCorrect", "IsCorrect", "correctOptions"} {
		if strings.Contains(string(data), leaked) {
			t.Errorf("exam payload leaks %q: %s", leaked, data)
		}
	}
	if result.Exam.Questions[0].Options[0] != "The on-call engineer" {
		t.Errorf("option text lost: %v", result.Exam.Questions[0].Options)
	}
}

func TestStartExamGates(t *testing.T) {
	f := newFixture(t)
	trainingID := f.seedTraining(t, []string{"trainer.a"}, "emp.1")

	// Nothing shared yet.
	_, err := f.shared.StartExam("emp.1", trainingID)
	if !errors.Is(err, util.ErrAssignmentNotShared) {
		t.Fatalf("expected ErrAssignmentNotShared, got %v", err)
	}

	// Not assigned.
	if _, err := f.shared.PublishAssignment("trainer.a", quizRequest(trainingID)); err != nil {
		t.Fatal(err)
	}
	_, err = f.shared.StartExam("emp.2", trainingID)
	if !errors.Is(err, util.ErrTrainingNotAssigned) {
		t.Fatalf("expected ErrTrainingNotAssigned, got %v", err)
	}
}

func TestSubmitGradeAndRetakeFlow(t *testing.T) {
	f := newFixture(t)
	trainingID := f.seedTraining(t, []string{"trainer.a"}, "emp.1")
	if _, err := f.shared.PublishAssignment("trainer.a", quizRequest(trainingID)); err != nil {
		t.Fatal(err)
	}

	// Three of four correct: 75.
	view, err := f.shared.SubmitExam("emp.1", submitReq(trainingID, quizAnswers(true, true, false, "improve runbooks")))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if view.Score != 75 || view.CorrectCount != 3 || view.TotalQuestions != 4 {
		t.Errorf("got score=%d correct=%d total=%d, want 75/3/4", view.Score, view.CorrectCount, view.TotalQuestions)
	}

	// Reopening shows the retake state with the prior score.
	start, err := f.shared.StartExam("emp.1", trainingID)
	if err != nil {
		t.Fatal(err)
	}
	if start.Status != "shared" || start.PriorScore == nil || *start.PriorScore != 75 {
		t.Errorf("retake state: status=%q prior=%v", start.Status, start.PriorScore)
	}

	// Perfect retake locks the pair.
	view, err = f.shared.SubmitExam("emp.1", submitReq(trainingID, quizAnswers(true, true, true, "nothing left")))
	if err != nil {
		t.Fatalf("perfect submit: %v", err)
	}
	if view.Score != 100 {
		t.Fatalf("score = %d, want 100", view.Score)
	}

	start, err = f.shared.StartExam("emp.1", trainingID)
	if err != nil {
		t.Fatal(err)
	}
	if start.Status != "completed" || start.Exam != nil || start.Score == nil || *start.Score != 100 {
		t.Errorf("completed state: status=%q exam=%v score=%v", start.Status, start.Exam, start.Score)
	}

	// A stale client that kept the exam open is rejected, not merged.
	_, err = f.shared.SubmitExam("emp.1", submitReq(trainingID, quizAnswers(false, false, false, "")))
	if !errors.Is(err, util.ErrSubmissionLocked) {
		t.Fatalf("expected ErrSubmissionLocked, got %v", err)
	}

	// The stored result still reflects the perfect run.
	stored, err := f.shared.ViewResult("emp.1", trainingID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Score != 100 {
		t.Errorf("stored score = %d, want 100", stored.Score)
	}
}

func TestSubmitExamShapeMismatch(t *testing.T) {
	f := newFixture(t)
	trainingID := f.seedTraining(t, []string{"trainer.a"}, "emp.1")
	if _, err := f.shared.PublishAssignment("trainer.a", quizRequest(trainingID)); err != nil {
		t.Fatal(err)
	}

	req := submitReq(trainingID, quizAnswers(true, true, true, "x")[:2])
	if _, err := f.shared.SubmitExam("emp.1", req); !errors.Is(err, grading.ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}

	// Nothing was recorded for the malformed attempt.
	if _, err := f.shared.ViewResult("emp.1", trainingID); !errors.Is(err, util.ErrNotSubmittedYet) {
		t.Fatalf("expected ErrNotSubmittedYet, got %v", err)
	}
}

func TestFeedbackFlow(t *testing.T) {
	f := newFixture(t)
	trainingID := f.seedTraining(t, []string{"trainer.a"}, "emp.1")

	// Form not shared yet.
	_, err := f.shared.GetFeedbackForm("emp.1", trainingID)
	if !errors.Is(err, util.ErrFeedbackNotShared) {
		t.Fatalf("expected ErrFeedbackNotShared, got %v", err)
	}

	_, err = f.shared.PublishFeedback("trainer.a", feedbackReq(trainingID, "Anything else?"))
	if err != nil {
		t.Fatalf("publish feedback: %v", err)
	}

	form, err := f.shared.GetFeedbackForm("emp.1", trainingID)
	if err != nil {
		t.Fatal(err)
	}
	if len(form.DefaultQuestions) != 10 {
		t.Errorf("got %d default questions, want 10", len(form.DefaultQuestions))
	}
	if len(form.CustomQuestions) != 1 || form.CustomQuestions[0].Text != "Anything else?" {
		t.Errorf("custom questions = %v", form.CustomQuestions)
	}
	if form.AlreadySubmitted {
		t.Error("fresh form marked as submitted")
	}

	resp, err := f.shared.SubmitFeedback("emp.1", feedbackSubmit(trainingID))
	if err != nil {
		t.Fatalf("submit feedback: %v", err)
	}
	if resp.ID == "" {
		t.Error("response got no id")
	}

	// Feedback is terminal.
	_, err = f.shared.SubmitFeedback("emp.1", feedbackSubmit(trainingID))
	if !errors.Is(err, util.ErrFeedbackAlreadySubmitted) {
		t.Fatalf("expected ErrFeedbackAlreadySubmitted, got %v", err)
	}

	form, err = f.shared.GetFeedbackForm("emp.1", trainingID)
	if err != nil {
		t.Fatal(err)
	}
	if !form.AlreadySubmitted {
		t.Error("form should report the prior submission")
	}
}

func TestTrainerListings(t *testing.T) {
	f := newFixture(t)
	trainingID := f.seedTraining(t, []string{"trainer.a", "trainer.b"}, "emp.1", "emp.2")
	if _, err := f.shared.PublishAssignment("trainer.a", quizRequest(trainingID)); err != nil {
		t.Fatal(err)
	}
	if _, err := f.shared.PublishFeedback("trainer.a", feedbackReq(trainingID)); err != nil {
		t.Fatal(err)
	}

	if _, err := f.shared.SubmitExam("emp.1", submitReq(trainingID, quizAnswers(true, false, false, "notes"))); err != nil {
		t.Fatal(err)
	}
	if _, err := f.shared.SubmitFeedback("emp.2", feedbackSubmit(trainingID)); err != nil {
		t.Fatal(err)
	}

	// A co-trainer who authored nothing can still review.
	subs, err := f.shared.ListSubmissions(trainingID, "trainer.b")
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 1 || subs[0].EmployeeUsername != "emp.1" {
		t.Errorf("submissions = %v", subs)
	}

	responses, err := f.shared.ListFeedbackResponses(trainingID, "trainer.b")
	if err != nil {
		t.Fatal(err)
	}
	if len(responses) != 1 || responses[0].EmployeeUsername != "emp.2" {
		t.Errorf("responses = %v", responses)
	}

	// But an employee can not.
	if _, err := f.shared.ListSubmissions(trainingID, "emp.1"); !errors.Is(err, util.ErrNotTrainerForTraining) {
		t.Fatalf("employee listing submissions: %v", err)
	}
}
