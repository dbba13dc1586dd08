package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"skillorbit_backend/internal/grading"
	"skillorbit_backend/internal/model"
	"skillorbit_backend/internal/repository"
	"skillorbit_backend/internal/util"
	"skillorbit_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const examPayloadTTL = 5 * time.Minute

// SharedContentService is the façade trainers and employees call. It
// orchestrates the assignment store, submission tracker and feedback store,
// and resolves authorization against the training registry. All terminal
// decisions (conflicts, locks) are made by the stores; this layer only
// pre-checks for friendlier errors and never trusts its own reads at write
// time.
type SharedContentService struct {
	Assignments *repository.AssignmentRepository
	Submissions *repository.SubmissionRepository
	Feedback    *repository.FeedbackRepository
	Trainings   *repository.TrainingRepository
	Cache       *redis.Client // optional; nil disables the exam payload cache
}

func NewSharedContentService(
	assignments *repository.AssignmentRepository,
	submissions *repository.SubmissionRepository,
	feedback *repository.FeedbackRepository,
	trainings *repository.TrainingRepository,
	cache *redis.Client,
) *SharedContentService {
	return &SharedContentService{
		Assignments: assignments,
		Submissions: submissions,
		Feedback:    feedback,
		Trainings:   trainings,
		Cache:       cache,
	}
}

// --- Requests ---

type OptionReq struct {
	Text      string `json:"text" binding:"required"`
	IsCorrect bool   `json:"isCorrect"`
}

type QuestionReq struct {
	Text       string      `json:"text" binding:"required"`
	HelperText string      `json:"helperText"`
	Kind       string      `json:"kind" binding:"required"`
	Options    []OptionReq `json:"options"`
}

type ShareAssignmentReq struct {
	TrainingID  uint          `json:"trainingId" binding:"required"`
	Title       string        `json:"title" binding:"required"`
	Description string        `json:"description"`
	Questions   []QuestionReq `json:"questions" binding:"required"`
}

type FeedbackQuestionReq struct {
	Text    string   `json:"text" binding:"required"`
	Options []string `json:"options"`
}

type ShareFeedbackReq struct {
	TrainingID      uint                  `json:"trainingId" binding:"required"`
	CustomQuestions []FeedbackQuestionReq `json:"customQuestions"`
}

type AnswerReq struct {
	SelectedOptions []int  `json:"selectedOptions"`
	Text            string `json:"text"`
}

type SubmitExamReq struct {
	TrainingID uint        `json:"trainingId" binding:"required"`
	Answers    []AnswerReq `json:"answers" binding:"required"`
}

type SubmitFeedbackReq struct {
	TrainingID uint            `json:"trainingId" binding:"required"`
	Responses  json.RawMessage `json:"responses" binding:"required"`
}

// --- Views ---

// TrainerAssignmentView tells a trainer whether content exists and whether
// they authored it, without mutating anything.
type TrainerAssignmentView struct {
	Shared     bool                    `json:"shared"`
	IsAuthor   bool                    `json:"isAuthor"`
	Author     string                  `json:"author,omitempty"`
	Assignment *model.SharedAssignment `json:"assignment,omitempty"`
	Questions  []model.Question        `json:"questions,omitempty"`
}

type TrainerFeedbackView struct {
	Shared           bool                     `json:"shared"`
	IsAuthor         bool                     `json:"isAuthor"`
	Author           string                   `json:"author,omitempty"`
	DefaultQuestions []model.FeedbackQuestion `json:"defaultQuestions"`
	CustomQuestions  []model.FeedbackQuestion `json:"customQuestions,omitempty"`
}

// ExamQuestion is a question as shown to a test-taker: the correct-option
// flags are stripped so the payload can never leak the answer key.
type ExamQuestion struct {
	Index      int                `json:"index"`
	Text       string             `json:"text"`
	HelperText string             `json:"helperText,omitempty"`
	Kind       model.QuestionKind `json:"kind"`
	Options    []string           `json:"options,omitempty"`
}

type ExamPayload struct {
	TrainingID  uint           `json:"trainingId"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Questions   []ExamQuestion `json:"questions"`
}

// StartExamResult is the caller-facing state of the assignment flow:
// "completed" is terminal, "shared" carries the exam and, on a retake, the
// prior score.
type StartExamResult struct {
	Status     string       `json:"status"` // shared, completed
	Score      *int         `json:"score,omitempty"`
	PriorScore *int         `json:"priorScore,omitempty"`
	Exam       *ExamPayload `json:"exam,omitempty"`
}

type SubmissionView struct {
	SubmissionID   string                 `json:"submissionId"`
	TrainingID     uint                   `json:"trainingId"`
	Score          int                    `json:"score"`
	CorrectCount   int                    `json:"correctCount"`
	TotalQuestions int                    `json:"totalQuestions"`
	Results        []model.QuestionResult `json:"results"`
	SubmittedAt    time.Time              `json:"submittedAt"`
}

type FeedbackFormView struct {
	TrainingID       uint                     `json:"trainingId"`
	DefaultQuestions []model.FeedbackQuestion `json:"defaultQuestions"`
	CustomQuestions  []model.FeedbackQuestion `json:"customQuestions"`
	AlreadySubmitted bool                     `json:"alreadySubmitted"`
}

// --- Trainer operations ---

// PublishAssignment validates the question set and delegates to the store's
// conditional write. A ConflictError from the store names the co-trainer who
// got there first.
func (s *SharedContentService) PublishAssignment(caller string, req ShareAssignmentReq) (*model.SharedAssignment, error) {
	if err := s.requireTrainer(req.TrainingID, caller); err != nil {
		return nil, err
	}

	questions, err := buildQuestions(req.Questions)
	if err != nil {
		return nil, err
	}

	rec := &model.SharedAssignment{
		Title:       req.Title,
		Description: req.Description,
	}
	if err := rec.SetQuestions(questions); err != nil {
		return nil, err
	}

	published, err := s.Assignments.Publish(req.TrainingID, caller, rec)
	if err != nil {
		return nil, err
	}

	s.invalidateExamPayload(req.TrainingID)
	return published, nil
}

// OpenAssignmentForTrainer returns the existing content, if any, plus whether
// the caller authored it. Read-only.
func (s *SharedContentService) OpenAssignmentForTrainer(trainingID uint, caller string) (*TrainerAssignmentView, error) {
	if err := s.requireTrainer(trainingID, caller); err != nil {
		return nil, err
	}

	rec, err := s.Assignments.FindByTraining(trainingID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &TrainerAssignmentView{Shared: false}, nil
	}
	if err != nil {
		return nil, err
	}

	questions, err := rec.DecodeQuestions()
	if err != nil {
		return nil, err
	}
	return &TrainerAssignmentView{
		Shared:     true,
		IsAuthor:   rec.TrainerUsername == caller,
		Author:     rec.TrainerUsername,
		Assignment: rec,
		Questions:  questions,
	}, nil
}

func (s *SharedContentService) PublishFeedback(caller string, req ShareFeedbackReq) (*model.SharedFeedback, error) {
	if err := s.requireTrainer(req.TrainingID, caller); err != nil {
		return nil, err
	}

	custom := make([]model.FeedbackQuestion, 0, len(req.CustomQuestions))
	for _, q := range req.CustomQuestions {
		custom = append(custom, model.FeedbackQuestion{Text: q.Text, Options: q.Options})
	}

	rec := &model.SharedFeedback{}
	if err := rec.SetCustomQuestions(custom); err != nil {
		return nil, err
	}
	return s.Feedback.Publish(req.TrainingID, caller, rec)
}

func (s *SharedContentService) OpenFeedbackForTrainer(trainingID uint, caller string) (*TrainerFeedbackView, error) {
	if err := s.requireTrainer(trainingID, caller); err != nil {
		return nil, err
	}

	view := &TrainerFeedbackView{DefaultQuestions: model.DefaultFeedbackQuestions()}

	rec, err := s.Feedback.FindByTraining(trainingID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return view, nil
	}
	if err != nil {
		return nil, err
	}

	custom, err := rec.DecodeCustomQuestions()
	if err != nil {
		return nil, err
	}
	view.Shared = true
	view.IsAuthor = rec.TrainerUsername == caller
	view.Author = rec.TrainerUsername
	view.CustomQuestions = custom
	return view, nil
}

// ListSubmissions lets any trainer of the training review recorded results.
func (s *SharedContentService) ListSubmissions(trainingID uint, caller string) ([]model.AssignmentSubmission, error) {
	if err := s.requireTrainer(trainingID, caller); err != nil {
		return nil, err
	}
	return s.Submissions.ListByTraining(trainingID)
}

func (s *SharedContentService) ListFeedbackResponses(trainingID uint, caller string) ([]model.FeedbackResponse, error) {
	if err := s.requireTrainer(trainingID, caller); err != nil {
		return nil, err
	}
	return s.Feedback.ListResponses(trainingID)
}

// --- Employee operations ---

// StartExam renders the exam for an assigned employee. Terminal submissions
// short-circuit to the completed state; a prior score below 100 is reported
// alongside the questions so the client can present it as a retake.
func (s *SharedContentService) StartExam(employee string, trainingID uint) (*StartExamResult, error) {
	if err := s.requireAssigned(trainingID, employee); err != nil {
		return nil, err
	}

	eligibility, err := s.Submissions.EligibleToSubmit(employee, trainingID)
	if err != nil {
		return nil, err
	}
	if !eligibility.Eligible {
		return &StartExamResult{Status: "completed", Score: eligibility.PriorScore}, nil
	}

	payload, err := s.examPayload(trainingID)
	if err != nil {
		return nil, err
	}
	return &StartExamResult{
		Status:     "shared",
		PriorScore: eligibility.PriorScore,
		Exam:       payload,
	}, nil
}

// SubmitExam grades and records a submission. Eligibility is re-checked here
// and enforced again inside the tracker's conditional write, so a client that
// opened the exam before another session finished at 100 is rejected, not
// merged.
func (s *SharedContentService) SubmitExam(employee string, req SubmitExamReq) (*SubmissionView, error) {
	if err := s.requireAssigned(req.TrainingID, employee); err != nil {
		return nil, err
	}

	rec, err := s.Assignments.FindByTraining(req.TrainingID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrAssignmentNotShared
	}
	if err != nil {
		return nil, err
	}

	eligibility, err := s.Submissions.EligibleToSubmit(employee, req.TrainingID)
	if err != nil {
		return nil, err
	}
	if !eligibility.Eligible {
		return nil, util.ErrSubmissionLocked
	}

	questions, err := rec.DecodeQuestions()
	if err != nil {
		return nil, err
	}

	answers := make([]model.Answer, len(req.Answers))
	for i, a := range req.Answers {
		answers[i] = model.Answer{SelectedOptions: a.SelectedOptions, Text: a.Text}
	}

	grade, err := grading.Grade(questions, answers)
	if err != nil {
		return nil, err
	}

	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return nil, err
	}
	resultsJSON, err := json.Marshal(grade.Results)
	if err != nil {
		return nil, err
	}

	sub, err := s.Submissions.Record(employee, req.TrainingID, answersJSON, resultsJSON, grade)
	if err != nil {
		return nil, err
	}

	logger.Log.Info("exam submitted",
		zap.String("employee", employee),
		zap.Uint("trainingId", req.TrainingID),
		zap.Int("score", grade.Score))

	return &SubmissionView{
		SubmissionID:   sub.ID,
		TrainingID:     sub.TrainingID,
		Score:          sub.Score,
		CorrectCount:   sub.CorrectCount,
		TotalQuestions: sub.TotalQuestions,
		Results:        grade.Results,
		SubmittedAt:    sub.SubmittedAt,
	}, nil
}

// ViewResult returns the stored submission verbatim.
func (s *SharedContentService) ViewResult(employee string, trainingID uint) (*SubmissionView, error) {
	if err := s.requireAssigned(trainingID, employee); err != nil {
		return nil, err
	}

	sub, err := s.Submissions.FindByEmployeeAndTraining(employee, trainingID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrNotSubmittedYet
	}
	if err != nil {
		return nil, err
	}

	results, err := sub.DecodeResults()
	if err != nil {
		return nil, err
	}
	return &SubmissionView{
		SubmissionID:   sub.ID,
		TrainingID:     sub.TrainingID,
		Score:          sub.Score,
		CorrectCount:   sub.CorrectCount,
		TotalQuestions: sub.TotalQuestions,
		Results:        results,
		SubmittedAt:    sub.SubmittedAt,
	}, nil
}

func (s *SharedContentService) GetFeedbackForm(employee string, trainingID uint) (*FeedbackFormView, error) {
	if err := s.requireAssigned(trainingID, employee); err != nil {
		return nil, err
	}

	rec, err := s.Feedback.FindByTraining(trainingID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrFeedbackNotShared
	}
	if err != nil {
		return nil, err
	}

	custom, err := rec.DecodeCustomQuestions()
	if err != nil {
		return nil, err
	}
	responded, err := s.Feedback.HasResponded(employee, trainingID)
	if err != nil {
		return nil, err
	}
	return &FeedbackFormView{
		TrainingID:       trainingID,
		DefaultQuestions: model.DefaultFeedbackQuestions(),
		CustomQuestions:  custom,
		AlreadySubmitted: responded,
	}, nil
}

// SubmitFeedback records a response once; the store rejects the second write.
func (s *SharedContentService) SubmitFeedback(employee string, req SubmitFeedbackReq) (*model.FeedbackResponse, error) {
	if err := s.requireAssigned(req.TrainingID, employee); err != nil {
		return nil, err
	}

	if _, err := s.Feedback.FindByTraining(req.TrainingID); errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrFeedbackNotShared
	} else if err != nil {
		return nil, err
	}

	return s.Feedback.RecordResponse(employee, req.TrainingID, req.Responses)
}

// --- internals ---

func (s *SharedContentService) requireTrainer(trainingID uint, username string) error {
	if _, err := s.Trainings.FindByID(trainingID); errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrTrainingNotFound
	} else if err != nil {
		return err
	}
	ok, err := s.Trainings.IsTrainer(trainingID, username)
	if err != nil {
		return err
	}
	if !ok {
		return util.ErrNotTrainerForTraining
	}
	return nil
}

func (s *SharedContentService) requireAssigned(trainingID uint, employee string) error {
	if _, err := s.Trainings.FindByID(trainingID); errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrTrainingNotFound
	} else if err != nil {
		return err
	}
	ok, err := s.Trainings.IsAssigned(trainingID, employee)
	if err != nil {
		return err
	}
	if !ok {
		return util.ErrTrainingNotAssigned
	}
	return nil
}

// examPayload builds the stripped exam view, with a short read-through cache.
// Staleness is bounded by the TTL and by explicit invalidation on publish;
// the submit path never reads the cache.
func (s *SharedContentService) examPayload(trainingID uint) (*ExamPayload, error) {
	key := examPayloadKey(trainingID)
	if s.Cache != nil {
		if data, err := s.Cache.Get(context.Background(), key).Bytes(); err == nil {
			var payload ExamPayload
			if err := json.Unmarshal(data, &payload); err == nil {
				return &payload, nil
			}
		}
	}

	rec, err := s.Assignments.FindByTraining(trainingID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrAssignmentNotShared
	}
	if err != nil {
		return nil, err
	}

	questions, err := rec.DecodeQuestions()
	if err != nil {
		return nil, err
	}

	payload := &ExamPayload{
		TrainingID:  trainingID,
		Title:       rec.Title,
		Description: rec.Description,
		Questions:   make([]ExamQuestion, len(questions)),
	}
	for i, q := range questions {
		eq := ExamQuestion{
			Index:      i,
			Text:       q.Text,
			HelperText: q.HelperText,
			Kind:       q.Kind,
		}
		for _, opt := range q.Options {
			eq.Options = append(eq.Options, opt.Text)
		}
		payload.Questions[i] = eq
	}

	if s.Cache != nil {
		if data, err := json.Marshal(payload); err == nil {
			if err := s.Cache.Set(context.Background(), key, data, examPayloadTTL).Err(); err != nil {
				logger.Log.Warn("exam payload cache set failed", zap.Error(err))
			}
		}
	}
	return payload, nil
}

func (s *SharedContentService) invalidateExamPayload(trainingID uint) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Del(context.Background(), examPayloadKey(trainingID)).Err(); err != nil {
		logger.Log.Warn("exam payload cache invalidation failed", zap.Error(err))
	}
}

func examPayloadKey(trainingID uint) string {
	return fmt.Sprintf("exam:payload:%d", trainingID)
}

func buildQuestions(reqs []QuestionReq) ([]model.Question, error) {
	if len(reqs) == 0 {
		return nil, util.Invalid("an assignment needs at least one question")
	}
	questions := make([]model.Question, len(reqs))
	for i, q := range reqs {
		kind := model.QuestionKind(q.Kind)
		switch kind {
		case model.SingleChoice, model.MultipleChoice:
			if len(q.Options) < 2 {
				return nil, util.Invalid("question %d: choice questions need at least two options", i+1)
			}
			correct := 0
			for _, opt := range q.Options {
				if opt.IsCorrect {
					correct++
				}
			}
			if correct == 0 {
				return nil, util.Invalid("question %d: at least one option must be marked correct", i+1)
			}
		case model.FreeText:
			// no options to validate
		default:
			return nil, util.Invalid("question %d: unknown kind %q", i+1, q.Kind)
		}

		question := model.Question{
			Text:       q.Text,
			HelperText: q.HelperText,
			Kind:       kind,
		}
		for _, opt := range q.Options {
			question.Options = append(question.Options, model.Option{Text: opt.Text, IsCorrect: opt.IsCorrect})
		}
		questions[i] = question
	}
	return questions, nil
}
