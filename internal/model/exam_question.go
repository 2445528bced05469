package model

import "encoding/json"

// swagger:model ExamQuestion
type ExamQuestion struct {
	BaseModel
	ExamID uint `gorm:"index;type:bigint unsigned;not null" json:"examId"`
	// Order is 1-based and kept dense within an exam; reordering and
	// deletion renormalize it.
	Order int    `gorm:"default:0" json:"order"`
	Type  string `gorm:"size:50;not null" json:"type"`
	// Data holds the type-specific payload including the answer key.
	// Shape is validated at the boundary, see grading.ValidateData.
	Data json.RawMessage `gorm:"type:json" json:"data"`
	// AudioURL is either a stored asset URL or a direct external link.
	// AudioAssetID is set only for uploaded assets; external links are
	// never targeted for deletion.
	AudioURL     string `gorm:"size:500" json:"audioUrl,omitempty"`
	AudioAssetID string `gorm:"size:255" json:"audioAssetId,omitempty"`
	// Points has no column default so that structural questions persist
	// with an honest 0; AddQuestion assigns the fallback for answerable
	// types.
	Points float64 `json:"points"`
}

func (ExamQuestion) TableName() string {
	return "exam_questions"
}
