package repository

import (
	"errors"

	"skillorbit_backend/internal/model"
	"skillorbit_backend/internal/util"

	"gorm.io/gorm"
)

type TrainingRepository struct {
	DB *gorm.DB
}

func NewTrainingRepository(db *gorm.DB) *TrainingRepository {
	return &TrainingRepository{DB: db}
}

func (r *TrainingRepository) Create(training *model.Training) error {
	return r.DB.Create(training).Error
}

func (r *TrainingRepository) FindByID(id uint) (*model.Training, error) {
	var training model.Training
	err := r.DB.Preload("Trainers").First(&training, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &training, nil
}

func (r *TrainingRepository) List(page, limit int) ([]model.Training, int64, error) {
	var total int64
	if err := r.DB.Model(&model.Training{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var trainings []model.Training
	query := r.DB.Preload("Trainers").Order("training_date desc, created_at desc")
	if limit > 0 {
		query = query.Offset((page - 1) * limit).Limit(limit)
	}
	err := query.Find(&trainings).Error
	return trainings, total, err
}

func (r *TrainingRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("training_id = ?", id).Delete(&model.TrainingTrainer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("training_id = ?", id).Delete(&model.TrainingAssignment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Training{}, "id = ?", id).Error
	})
}

// IsTrainer reports whether the identity is bound as a trainer (or
// co-trainer) of the training.
func (r *TrainingRepository) IsTrainer(trainingID uint, username string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.TrainingTrainer{}).
		Where("training_id = ? AND username = ?", trainingID, username).
		Count(&count).Error
	return count > 0, err
}

// IsAssigned reports whether the training was assigned to the employee.
func (r *TrainingRepository) IsAssigned(trainingID uint, employee string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.TrainingAssignment{}).
		Where("training_id = ? AND employee_username = ?", trainingID, employee).
		Count(&count).Error
	return count > 0, err
}

func (r *TrainingRepository) CreateAssignment(a *model.TrainingAssignment) error {
	err := r.DB.Create(a).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return util.ErrAlreadyAssigned
	}
	return err
}

func (r *TrainingRepository) DeleteAssignment(trainingID uint, employee, manager string) error {
	res := r.DB.Where("training_id = ? AND employee_username = ? AND manager_username = ?",
		trainingID, employee, manager).
		Delete(&model.TrainingAssignment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListAssignedTrainings returns the trainings assigned to an employee.
func (r *TrainingRepository) ListAssignedTrainings(employee string) ([]model.Training, error) {
	var trainings []model.Training
	err := r.DB.
		Joins("JOIN training_assignments ta ON ta.training_id = trainings.id AND ta.deleted_at IS NULL").
		Where("ta.employee_username = ?", employee).
		Preload("Trainers").
		Find(&trainings).Error
	return trainings, err
}

// ListTeamAssignments returns every assignment made by a manager, used by the
// manager dashboard for duplicate checking.
func (r *TrainingRepository) ListTeamAssignments(manager string) ([]model.TrainingAssignment, error) {
	var assignments []model.TrainingAssignment
	err := r.DB.Where("manager_username = ?", manager).Find(&assignments).Error
	return assignments, err
}
