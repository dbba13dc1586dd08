package model

import (
	"encoding/json"
	"time"
)

// Answer is one submitted answer, positionally aligned with the question list.
type Answer struct {
	SelectedOptions []int  `json:"selectedOptions,omitempty"`
	Text            string `json:"text,omitempty"`
}

// QuestionResult is the graded verdict for one question. Correct-option
// indices are only revealed post-submission.
type QuestionResult struct {
	Index           int    `json:"index"`
	IsCorrect       bool   `json:"isCorrect"`
	CorrectOptions  []int  `json:"correctOptions"`
	SelectedOptions []int  `json:"selectedOptions"`
	Text            string `json:"text,omitempty"`
}

// GradeResult is the outcome of grading a full submission.
type GradeResult struct {
	Score          int              `json:"score"` // 0-100, rounded half away from zero
	CorrectCount   int              `json:"correctCount"`
	TotalQuestions int              `json:"totalQuestions"`
	Results        []QuestionResult `json:"results"`
}

// AssignmentSubmission is the single live result per (employee, training).
// A row with Score == 100 is terminal and must never be replaced.
// swagger:model AssignmentSubmission
type AssignmentSubmission struct {
	UUIDBase
	TrainingID       uint            `gorm:"uniqueIndex:uq_submission_pair;type:bigint unsigned" json:"trainingId"`
	EmployeeUsername string          `gorm:"uniqueIndex:uq_submission_pair;size:50;not null" json:"employeeUsername"`
	Score            int             `gorm:"not null" json:"score"`
	CorrectCount     int             `gorm:"not null" json:"correctCount"`
	TotalQuestions   int             `gorm:"not null" json:"totalQuestions"`
	Answers          json.RawMessage `gorm:"type:json;not null" json:"answers"` // []Answer
	Results          json.RawMessage `gorm:"type:json;not null" json:"results"` // []QuestionResult
	SubmittedAt      time.Time       `json:"submittedAt"`
}

func (AssignmentSubmission) TableName() string {
	return "assignment_submissions"
}

func (s *AssignmentSubmission) DecodeResults() ([]QuestionResult, error) {
	var results []QuestionResult
	if err := json.Unmarshal(s.Results, &results); err != nil {
		return nil, err
	}
	return results, nil
}
