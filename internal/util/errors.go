package util

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrExamNotFound       = errors.New("exam not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrExamNotVisible     = errors.New("exam not accessible")

	ErrExamNotYetOpen    = errors.New("exam has not started yet")
	ErrExamWindowClosed  = errors.New("exam is no longer available")
	ErrAlreadyCompleted  = errors.New("exam already completed")
	ErrWarnedOut         = errors.New("exam closed due to warnings, contact admin")
	ErrTimeExpired       = errors.New("exam time expired")
	ErrNoActiveSession   = errors.New("no active exam session")
	ErrNotReopenable     = errors.New("submission is not in a terminal state")
	ErrNotAnswerable     = errors.New("question type is not answerable")
	ErrResultsHidden     = errors.New("results are not yet available")
	ErrAudioNotAllowed   = errors.New("this question type does not accept audio")
	ErrInvalidTimeWindow = errors.New("availableUntil must be after availableFrom")
)
