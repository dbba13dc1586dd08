package model

import (
	"encoding/json"
	"time"
)

// FeedbackQuestion is one survey item. Default questions are fixed; trainers
// may append custom ones with their own option lists.
type FeedbackQuestion struct {
	Text      string   `json:"text"`
	Options   []string `json:"options"`
	IsDefault bool     `json:"isDefault"`
}

var feedbackRatingScale = []string{"Excellent", "Good", "Average", "Below Average", "Poor"}

// DefaultFeedbackQuestions is the standard ten-item survey included in every
// published feedback form, independent of what the trainer adds.
func DefaultFeedbackQuestions() []FeedbackQuestion {
	texts := []string{
		"How would you rate the trainer's knowledge of the subject?",
		"How clearly were the concepts explained?",
		"How would you rate the pace of the training?",
		"How useful were the training materials provided?",
		"How relevant was the content to your current role?",
		"How would you rate the opportunities for interaction and questions?",
		"Was the duration of the training appropriate for the content?",
		"How well was the training organized?",
		"How would you rate the training environment and logistics?",
		"How would you rate the training overall?",
	}
	qs := make([]FeedbackQuestion, len(texts))
	for i, t := range texts {
		qs[i] = FeedbackQuestion{Text: t, Options: feedbackRatingScale, IsDefault: true}
	}
	return qs
}

// SharedFeedback is the one canonical feedback form of a training. Authorship
// is tracked independently from the training's assignment.
// swagger:model SharedFeedback
type SharedFeedback struct {
	BaseModel
	TrainingID      uint            `gorm:"uniqueIndex:uq_shared_feedback_training;type:bigint unsigned" json:"trainingId"`
	TrainerUsername string          `gorm:"index;size:50;not null" json:"trainerUsername"`
	CustomQuestions json.RawMessage `gorm:"type:json;not null" json:"customQuestions"` // []FeedbackQuestion
}

func (SharedFeedback) TableName() string {
	return "shared_feedback"
}

func (f *SharedFeedback) SetCustomQuestions(qs []FeedbackQuestion) error {
	data, err := json.Marshal(qs)
	if err != nil {
		return err
	}
	f.CustomQuestions = data
	return nil
}

func (f *SharedFeedback) DecodeCustomQuestions() ([]FeedbackQuestion, error) {
	var qs []FeedbackQuestion
	if err := json.Unmarshal(f.CustomQuestions, &qs); err != nil {
		return nil, err
	}
	return qs, nil
}

// FeedbackResponse is terminal: one per (employee, training), no retakes.
// swagger:model FeedbackResponse
type FeedbackResponse struct {
	UUIDBase
	TrainingID       uint            `gorm:"uniqueIndex:uq_feedback_response_pair;type:bigint unsigned" json:"trainingId"`
	EmployeeUsername string          `gorm:"uniqueIndex:uq_feedback_response_pair;size:50;not null" json:"employeeUsername"`
	Responses        json.RawMessage `gorm:"type:json;not null" json:"responses"`
	SubmittedAt      time.Time       `json:"submittedAt"`
}

func (FeedbackResponse) TableName() string {
	return "feedback_responses"
}
