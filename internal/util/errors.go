package util

import (
	"errors"
	"fmt"
)

var (
	ErrUsernameRegistered       = errors.New("username already registered")
	ErrEmailRegistered          = errors.New("email already registered")
	ErrPermissionDenied         = errors.New("permission denied")
	ErrTrainingNotFound         = errors.New("training not found")
	ErrNotTrainerForTraining    = errors.New("you can only share content for trainings you are a trainer of")
	ErrTrainingNotAssigned      = errors.New("training is not assigned to you")
	ErrAlreadyAssigned          = errors.New("this training is already assigned to this employee")
	ErrAssignmentNotShared      = errors.New("no assignment has been shared for this training")
	ErrFeedbackNotShared        = errors.New("no feedback form has been shared for this training")
	ErrSubmissionLocked         = errors.New("a perfect score has been recorded; no further attempts are accepted")
	ErrNotSubmittedYet          = errors.New("no submission recorded for this training")
	ErrFeedbackAlreadySubmitted = errors.New("feedback has already been submitted for this training")
)

// ConflictError reports a lost authorship race: content for the training
// already exists under a different trainer. Callers surface ExistingAuthor so
// the UI can route to "edit the existing one".
type ConflictError struct {
	ExistingAuthor string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("content already shared by %s", e.ExistingAuthor)
}

// ValidationError marks caller mistakes that map to a 400 rather than a 500.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func Invalid(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
