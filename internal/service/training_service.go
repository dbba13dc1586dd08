package service

import (
	"errors"
	"time"

	"skillorbit_backend/internal/model"
	"skillorbit_backend/internal/repository"
	"skillorbit_backend/internal/util"
	"skillorbit_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TrainingService manages the training registry and the manager-to-employee
// assignments that gate who may take a training's content.
type TrainingService struct {
	Repo        *repository.TrainingRepository
	Assignments *repository.AssignmentRepository
	Submissions *repository.SubmissionRepository
	Feedback    *repository.FeedbackRepository
	Shared      *SharedContentService
}

func NewTrainingService(
	repo *repository.TrainingRepository,
	assignments *repository.AssignmentRepository,
	submissions *repository.SubmissionRepository,
	feedback *repository.FeedbackRepository,
	shared *SharedContentService,
) *TrainingService {
	return &TrainingService{
		Repo:        repo,
		Assignments: assignments,
		Submissions: submissions,
		Feedback:    feedback,
		Shared:      shared,
	}
}

type TrainingReq struct {
	Name          string   `json:"name" binding:"required"`
	Topics        string   `json:"topics"`
	Competency    string   `json:"competency"`
	Skill         string   `json:"skill"`
	SkillCategory string   `json:"skillCategory"`
	TrainingDate  string   `json:"trainingDate"`
	Duration      string   `json:"duration"`
	TrainingType  string   `json:"trainingType"`
	Seats         int      `json:"seats"`
	Trainers      []string `json:"trainers" binding:"required"`
}

func (s *TrainingService) CreateTraining(req TrainingReq) (*model.Training, error) {
	if len(req.Trainers) == 0 {
		return nil, util.Invalid("a training needs at least one trainer")
	}

	training := &model.Training{
		Name:          req.Name,
		Topics:        req.Topics,
		Competency:    req.Competency,
		Skill:         req.Skill,
		SkillCategory: req.SkillCategory,
		Duration:      req.Duration,
		TrainingType:  req.TrainingType,
		Seats:         req.Seats,
	}
	if req.TrainingDate != "" {
		date, err := parseDate(req.TrainingDate)
		if err != nil {
			return nil, util.Invalid("trainingDate must be YYYY-MM-DD")
		}
		training.TrainingDate = &date
	}
	for _, username := range req.Trainers {
		training.Trainers = append(training.Trainers, model.TrainingTrainer{Username: username})
	}

	if err := s.Repo.Create(training); err != nil {
		return nil, err
	}
	return training, nil
}

func (s *TrainingService) GetTraining(id uint) (*model.Training, error) {
	training, err := s.Repo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrTrainingNotFound
	}
	return training, err
}

func (s *TrainingService) ListTrainings(page, limit int) ([]model.Training, int64, error) {
	return s.Repo.List(page, limit)
}

// DeleteTraining removes the training and cascade-invalidates every piece of
// content scoped to it: shared assignment, submissions, feedback form and
// responses, trainer bindings and employee assignments.
func (s *TrainingService) DeleteTraining(id uint) error {
	if _, err := s.GetTraining(id); err != nil {
		return err
	}

	if err := s.Assignments.DeleteByTraining(id); err != nil {
		return err
	}
	if err := s.Submissions.DeleteByTraining(id); err != nil {
		return err
	}
	if err := s.Feedback.DeleteByTraining(id); err != nil {
		return err
	}
	if err := s.Repo.Delete(id); err != nil {
		return err
	}

	s.Shared.invalidateExamPayload(id)
	logger.Log.Info("training deleted", zap.Uint("trainingId", id))
	return nil
}

type AssignTrainingReq struct {
	TrainingID       uint   `json:"trainingId" binding:"required"`
	EmployeeUsername string `json:"employeeUsername" binding:"required"`
}

func (s *TrainingService) AssignTraining(manager string, req AssignTrainingReq) (*model.TrainingAssignment, error) {
	if _, err := s.GetTraining(req.TrainingID); err != nil {
		return nil, err
	}

	assignment := &model.TrainingAssignment{
		TrainingID:       req.TrainingID,
		EmployeeUsername: req.EmployeeUsername,
		ManagerUsername:  manager,
	}
	if err := s.Repo.CreateAssignment(assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

// UnassignTraining deletes an assignment; only the manager who made it may
// remove it.
func (s *TrainingService) UnassignTraining(manager string, trainingID uint, employee string) error {
	err := s.Repo.DeleteAssignment(trainingID, employee, manager)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.Invalid("assignment not found or you are not authorized to delete it")
	}
	return err
}

func (s *TrainingService) MyTrainings(employee string) ([]model.Training, error) {
	return s.Repo.ListAssignedTrainings(employee)
}

func (s *TrainingService) TeamAssignments(manager string) ([]model.TrainingAssignment, error) {
	return s.Repo.ListTeamAssignments(manager)
}

func parseDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}
