package repository

import (
	"errors"
	"time"

	"skillorbit_backend/internal/model"
	"skillorbit_backend/internal/util"

	"gorm.io/gorm"
)

// SubmissionRepository tracks the single live result per (employee, training)
// and is the final authority on the retake rule: rows at score 100 are
// terminal and can not be replaced, whatever the caller believed earlier.
type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

// Eligibility is the answer to "may this employee submit right now".
type Eligibility struct {
	Eligible   bool `json:"eligible"`
	PriorScore *int `json:"priorScore,omitempty"`
}

func (r *SubmissionRepository) EligibleToSubmit(employee string, trainingID uint) (*Eligibility, error) {
	sub, err := r.FindByEmployeeAndTraining(employee, trainingID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Eligibility{Eligible: true}, nil
	}
	if err != nil {
		return nil, err
	}
	score := sub.Score
	return &Eligibility{Eligible: score < 100, PriorScore: &score}, nil
}

// Record stores a graded result, replacing the prior non-terminal submission
// of the pair in a single conditional write. Returns ErrSubmissionLocked if
// the pair is already at 100.
func (r *SubmissionRepository) Record(employee string, trainingID uint, answers, results []byte, grade *model.GradeResult) (*model.AssignmentSubmission, error) {
	sub := &model.AssignmentSubmission{
		TrainingID:       trainingID,
		EmployeeUsername: employee,
		Score:            grade.Score,
		CorrectCount:     grade.CorrectCount,
		TotalQuestions:   grade.TotalQuestions,
		Answers:          answers,
		Results:          results,
		SubmittedAt:      time.Now(),
	}

	// Replace path: the score < 100 guard closes the double-submit window.
	// A terminal row matches nothing and stays untouched.
	replaced, err := r.replaceLive(sub)
	if err != nil {
		return nil, err
	}
	if replaced {
		return r.FindByEmployeeAndTraining(employee, trainingID)
	}

	err = r.DB.Create(sub).Error
	if err == nil {
		return sub, nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// A row appeared between the update and the insert. Retry the
		// replace once; if it still matches nothing the row is terminal.
		replaced, rerr := r.replaceLive(sub)
		if rerr != nil {
			return nil, rerr
		}
		if replaced {
			return r.FindByEmployeeAndTraining(employee, trainingID)
		}
		return nil, util.ErrSubmissionLocked
	}
	return nil, err
}

func (r *SubmissionRepository) replaceLive(sub *model.AssignmentSubmission) (bool, error) {
	res := r.DB.Model(&model.AssignmentSubmission{}).
		Where("training_id = ? AND employee_username = ? AND score < 100", sub.TrainingID, sub.EmployeeUsername).
		Updates(map[string]interface{}{
			"score":           sub.Score,
			"correct_count":   sub.CorrectCount,
			"total_questions": sub.TotalQuestions,
			"answers":         sub.Answers,
			"results":         sub.Results,
			"submitted_at":    sub.SubmittedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *SubmissionRepository) FindByEmployeeAndTraining(employee string, trainingID uint) (*model.AssignmentSubmission, error) {
	var sub model.AssignmentSubmission
	err := r.DB.First(&sub, "training_id = ? AND employee_username = ?", trainingID, employee).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubmissionRepository) ListByTraining(trainingID uint) ([]model.AssignmentSubmission, error) {
	var subs []model.AssignmentSubmission
	err := r.DB.Where("training_id = ?", trainingID).Order("submitted_at desc").Find(&subs).Error
	return subs, err
}

func (r *SubmissionRepository) DeleteByTraining(trainingID uint) error {
	return r.DB.Where("training_id = ?", trainingID).Delete(&model.AssignmentSubmission{}).Error
}
