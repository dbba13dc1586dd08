package repository

import (
	"errors"
	"time"

	"skillorbit_backend/internal/model"
	"skillorbit_backend/internal/util"

	"gorm.io/gorm"
)

// FeedbackRepository owns the canonical feedback form per training and the
// terminal feedback responses. Authorship follows the same conditional-write
// rule as assignments but lives an independent lifecycle: the assignment and
// the feedback form of one training may have different authors.
type FeedbackRepository struct {
	DB *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{DB: db}
}

func (r *FeedbackRepository) Publish(trainingID uint, author string, rec *model.SharedFeedback) (*model.SharedFeedback, error) {
	res := r.DB.Model(&model.SharedFeedback{}).
		Where("training_id = ? AND trainer_username = ?", trainingID, author).
		Updates(map[string]interface{}{"custom_questions": rec.CustomQuestions})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 1 {
		return r.FindByTraining(trainingID)
	}

	rec.TrainingID = trainingID
	rec.TrainerUsername = author
	err := r.DB.Create(rec).Error
	if err == nil {
		return rec, nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		existing, ferr := r.FindByTraining(trainingID)
		if ferr != nil {
			return nil, err
		}
		if existing.TrainerUsername == author {
			rec.ID = 0
			return r.Publish(trainingID, author, rec)
		}
		return nil, &util.ConflictError{ExistingAuthor: existing.TrainerUsername}
	}
	return nil, err
}

func (r *FeedbackRepository) FindByTraining(trainingID uint) (*model.SharedFeedback, error) {
	var rec model.SharedFeedback
	err := r.DB.First(&rec, "training_id = ?", trainingID).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *FeedbackRepository) ExistsAuthoredBy(trainingID uint, username string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.SharedFeedback{}).
		Where("training_id = ? AND trainer_username = ?", trainingID, username).
		Count(&count).Error
	return count > 0, err
}

// RecordResponse stores an employee's feedback exactly once. The composite
// unique index makes the second write lose regardless of interleaving.
func (r *FeedbackRepository) RecordResponse(employee string, trainingID uint, responses []byte) (*model.FeedbackResponse, error) {
	resp := &model.FeedbackResponse{
		TrainingID:       trainingID,
		EmployeeUsername: employee,
		Responses:        responses,
		SubmittedAt:      time.Now(),
	}
	err := r.DB.Create(resp).Error
	if err == nil {
		return resp, nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, util.ErrFeedbackAlreadySubmitted
	}
	return nil, err
}

func (r *FeedbackRepository) HasResponded(employee string, trainingID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.FeedbackResponse{}).
		Where("training_id = ? AND employee_username = ?", trainingID, employee).
		Count(&count).Error
	return count > 0, err
}

func (r *FeedbackRepository) ListResponses(trainingID uint) ([]model.FeedbackResponse, error) {
	var responses []model.FeedbackResponse
	err := r.DB.Where("training_id = ?", trainingID).Order("submitted_at desc").Find(&responses).Error
	return responses, err
}

func (r *FeedbackRepository) DeleteByTraining(trainingID uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("training_id = ?", trainingID).Delete(&model.FeedbackResponse{}).Error; err != nil {
			return err
		}
		return tx.Where("training_id = ?", trainingID).Delete(&model.SharedFeedback{}).Error
	})
}
