package model

import "encoding/json"

type QuestionKind string

const (
	SingleChoice   QuestionKind = "single-choice"
	MultipleChoice QuestionKind = "multiple-choice"
	FreeText       QuestionKind = "free-text"
)

// Option is one selectable answer of a choice question.
type Option struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// Question is a single item of an assignment. Choice kinds carry an ordered
// option list; free-text questions have no answer key.
type Question struct {
	Text       string       `json:"text"`
	HelperText string       `json:"helperText,omitempty"`
	Kind       QuestionKind `json:"kind"`
	Options    []Option     `json:"options,omitempty"`
}

// CorrectOptions returns the indices of the options flagged correct, in order.
func (q Question) CorrectOptions() []int {
	var indices []int
	for i, opt := range q.Options {
		if opt.IsCorrect {
			indices = append(indices, i)
		}
	}
	return indices
}

// SharedAssignment is the one canonical graded quiz of a training. The unique
// index on TrainingID is what makes publish races lose at the database rather
// than overwrite each other.
// swagger:model SharedAssignment
type SharedAssignment struct {
	BaseModel
	TrainingID      uint            `gorm:"uniqueIndex:uq_shared_assignment_training;type:bigint unsigned" json:"trainingId"`
	TrainerUsername string          `gorm:"index;size:50;not null" json:"trainerUsername"`
	Title           string          `gorm:"size:255;not null" json:"title"`
	Description     string          `gorm:"type:text" json:"description"`
	Questions       json.RawMessage `gorm:"type:json;not null" json:"questions"` // []Question
}

func (SharedAssignment) TableName() string {
	return "shared_assignments"
}

func (a *SharedAssignment) SetQuestions(qs []Question) error {
	data, err := json.Marshal(qs)
	if err != nil {
		return err
	}
	a.Questions = data
	return nil
}

func (a *SharedAssignment) DecodeQuestions() ([]Question, error) {
	var qs []Question
	if err := json.Unmarshal(a.Questions, &qs); err != nil {
		return nil, err
	}
	return qs, nil
}
