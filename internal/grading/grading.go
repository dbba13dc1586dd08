// Package grading scores assignment submissions. It is pure: no I/O, no
// store access, deterministic for a given definition and answer list.
package grading

import (
	"errors"
	"math"
	"strings"

	"skillorbit_backend/internal/model"
)

// ErrShapeMismatch is returned when the answer list does not line up with the
// question list. Nothing is graded partially in that case.
var ErrShapeMismatch = errors.New("answer count does not match question count")

// Grade evaluates answers against a shared assignment's questions. Answers
// are positional: answers[i] answers questions[i].
//
// Single-choice questions are correct iff exactly one option was selected
// and it is among the authored correct options (authors may flag more than
// one to support partial-credit variants). Multiple-choice questions are
// correct iff the submitted index set equals the authored correct-index set;
// order never matters and there is no partial credit. Free-text questions
// carry no answer key and count as correct when a non-blank answer was given.
func Grade(questions []model.Question, answers []model.Answer) (*model.GradeResult, error) {
	if len(answers) != len(questions) {
		return nil, ErrShapeMismatch
	}

	result := &model.GradeResult{
		TotalQuestions: len(questions),
		Results:        make([]model.QuestionResult, len(questions)),
	}

	for i, q := range questions {
		ans := answers[i]
		correct := q.CorrectOptions()

		qr := model.QuestionResult{
			Index:           i,
			CorrectOptions:  correct,
			SelectedOptions: ans.SelectedOptions,
		}

		switch q.Kind {
		case model.SingleChoice:
			qr.IsCorrect = singleChoiceCorrect(ans.SelectedOptions, correct)
		case model.MultipleChoice:
			qr.IsCorrect = sameIndexSet(ans.SelectedOptions, correct)
		case model.FreeText:
			qr.Text = ans.Text
			qr.IsCorrect = strings.TrimSpace(ans.Text) != ""
		}

		if qr.IsCorrect {
			result.CorrectCount++
		}
		result.Results[i] = qr
	}

	if result.TotalQuestions > 0 {
		result.Score = int(math.Round(100 * float64(result.CorrectCount) / float64(result.TotalQuestions)))
	}
	return result, nil
}

// singleChoiceCorrect accepts exactly one selection that carries a correct flag.
func singleChoiceCorrect(submitted, correct []int) bool {
	set := make(map[int]bool, len(submitted))
	for _, idx := range submitted {
		set[idx] = true
	}
	if len(set) != 1 {
		return false
	}
	for _, idx := range correct {
		if set[idx] {
			return true
		}
	}
	return false
}

// sameIndexSet compares two index slices as sets. Duplicates in the
// submission collapse; selecting an option twice is still one selection.
func sameIndexSet(submitted, correct []int) bool {
	if len(correct) == 0 {
		return false
	}
	want := make(map[int]bool, len(correct))
	for _, idx := range correct {
		want[idx] = true
	}
	got := make(map[int]bool, len(submitted))
	for _, idx := range submitted {
		got[idx] = true
	}
	if len(got) != len(want) {
		return false
	}
	for idx := range got {
		if !want[idx] {
			return false
		}
	}
	return true
}
