package repository

import (
	"errors"

	"skillorbit_backend/internal/model"
	"skillorbit_backend/internal/util"

	"gorm.io/gorm"
)

// AssignmentRepository owns the canonical shared assignment of each training.
// The single-record-per-training invariant is held by a unique index on
// training_id; publish is a conditional write, never read-then-write.
type AssignmentRepository struct {
	DB *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{DB: db}
}

// Publish creates the training's assignment, or overwrites it when the caller
// already authored it. A record held by a different trainer is never touched;
// the caller gets a ConflictError naming the existing author instead.
func (r *AssignmentRepository) Publish(trainingID uint, author string, rec *model.SharedAssignment) (*model.SharedAssignment, error) {
	// Edit path first: only rows authored by the caller match, so a
	// co-trainer's record can not be overwritten by this update.
	res := r.DB.Model(&model.SharedAssignment{}).
		Where("training_id = ? AND trainer_username = ?", trainingID, author).
		Updates(map[string]interface{}{
			"title":       rec.Title,
			"description": rec.Description,
			"questions":   rec.Questions,
		})
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
		// Lost an insert race. If the winner is the caller (double click,
		// parallel tabs) fall back to the edit path; otherwise report who won.
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

func (r *AssignmentRepository) FindByTraining(trainingID uint) (*model.SharedAssignment, error) {
	var rec model.SharedAssignment
	err := r.DB.First(&rec, "training_id = ?", trainingID).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ExistsAuthoredBy distinguishes "shared by me" from "shared by a co-trainer".
func (r *AssignmentRepository) ExistsAuthoredBy(trainingID uint, username string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.SharedAssignment{}).
		Where("training_id = ? AND trainer_username = ?", trainingID, username).
		Count(&count).Error
	return count > 0, err
}

// DeleteByTraining is the cascade hook for the training registry.
func (r *AssignmentRepository) DeleteByTraining(trainingID uint) error {
	return r.DB.Where("training_id = ?", trainingID).Delete(&model.SharedAssignment{}).Error
}
