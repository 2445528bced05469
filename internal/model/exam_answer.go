package model

import (
	"encoding/json"
	"time"
)

// ExamAnswer is one saved answer per (submission, question), upserted on
// every save. Grading fields stay null until final submission.
// swagger:model ExamAnswer
type ExamAnswer struct {
	BaseModel
	SubmissionID uint            `gorm:"uniqueIndex:idx_submission_question;type:bigint unsigned;not null" json:"submissionId"`
	QuestionID   uint            `gorm:"uniqueIndex:idx_submission_question;type:bigint unsigned;not null" json:"questionId"`
	UserAnswer   json.RawMessage `gorm:"type:json" json:"userAnswer"`
	AnsweredAt   time.Time       `json:"answeredAt"`
	IsCorrect    *bool           `json:"isCorrect,omitempty"`
	PointsEarned *float64        `json:"pointsEarned,omitempty"`
}

func (ExamAnswer) TableName() string {
	return "exam_answers"
}
