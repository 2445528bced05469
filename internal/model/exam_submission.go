package model

import "time"

// Submission states. warned_out, auto_closed and completed are terminal
// except via admin reopen/reset.
const (
	SubmissionNotStarted = "not_started"
	SubmissionInProgress = "in_progress"
	SubmissionCompleted  = "completed"
	SubmissionWarnedOut  = "warned_out"
	SubmissionAutoClosed = "auto_closed"
)

// ExamSubmission is one attempt per (exam, user).
// swagger:model ExamSubmission
type ExamSubmission struct {
	BaseModel
	ExamID       uint       `gorm:"uniqueIndex:idx_exam_user;type:bigint unsigned;not null" json:"examId"`
	UserID       uint       `gorm:"uniqueIndex:idx_exam_user;type:bigint unsigned;not null" json:"userId"`
	Status       string     `gorm:"size:20;default:'not_started'" json:"status"`
	StartedAt    *time.Time `json:"startedAt,omitempty"`
	FinishedAt   *time.Time `json:"finishedAt,omitempty"`
	WarningCount int        `gorm:"default:0" json:"warningCount"`
	IsReopened   bool       `gorm:"default:false" json:"isReopened"`
	Score        *float64   `json:"score,omitempty"`
	TotalPoints  *float64   `json:"totalPoints,omitempty"`
	EarnedPoints *float64   `json:"earnedPoints,omitempty"`
}

func (ExamSubmission) TableName() string {
	return "exam_submissions"
}

// IsTerminal reports whether the submission can no longer be driven by the
// student without admin recovery.
func (s *ExamSubmission) IsTerminal() bool {
	switch s.Status {
	case SubmissionCompleted, SubmissionWarnedOut, SubmissionAutoClosed:
		return true
	}
	return false
}
